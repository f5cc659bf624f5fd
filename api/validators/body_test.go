package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/Saadasw/BookOrderBackend/pkg/errors"
)

type testPayload struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	Address     string `json:"address" validate:"required,min=5"`
	Pin         string `json:"pin,omitempty" validate:"omitempty,pin"`
}

func decode(t *testing.T, body string, dest any) error {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	return DecodeJSONBody(req, dest)
}

func TestDecodeJSONBody(t *testing.T) {
	var dest testPayload
	err := decode(t, `{"phone_number":"+8801712345678","address":"12 Mirpur Road, Dhaka"}`, &dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.PhoneNumber != "+8801712345678" {
		t.Fatalf("unexpected decode result: %+v", dest)
	}
}

func TestDecodeJSONBody_UnknownField(t *testing.T) {
	var dest testPayload
	err := decode(t, `{"phone_number":"+8801712345678","address":"12 Mirpur Road","bogus":1}`, &dest)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBody_PhoneFormat(t *testing.T) {
	cases := map[string]bool{
		"+8801712345678":   true,
		"8801712345678":    true,
		"+123456789012345": true,
		"abc":              false,
		"+":                false,
		"+0":               false,
		"12345678901234567890": false,
	}
	for phone, ok := range cases {
		var dest testPayload
		err := decode(t, `{"phone_number":"`+phone+`","address":"12 Mirpur Road"}`, &dest)
		if ok && err != nil {
			t.Errorf("%s: unexpected error: %v", phone, err)
		}
		if !ok && err == nil {
			t.Errorf("%s: expected validation error", phone)
		}
	}
}

func TestDecodeJSONBody_PinFormat(t *testing.T) {
	for pin, ok := range map[string]bool{"1234": true, "12345678": true, "123": false, "123456789": false, "12a4": false} {
		var dest testPayload
		err := decode(t, `{"phone_number":"+8801712345678","address":"12 Mirpur Road","pin":"`+pin+`"}`, &dest)
		if ok && err != nil {
			t.Errorf("pin %s: unexpected error: %v", pin, err)
		}
		if !ok && err == nil {
			t.Errorf("pin %s: expected validation error", pin)
		}
	}
}

func TestDecodeJSONBody_AddressTooShort(t *testing.T) {
	var dest testPayload
	err := decode(t, `{"phone_number":"+8801712345678","address":"x"}`, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if _, present := details["address"]; !present {
		t.Fatalf("expected address in details, got %v", details)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest("GET", "/?limit=20&offset=bad", nil)
	if v, err := ParseQueryInt(req, "limit", 100, 1, 500); err != nil || v != 20 {
		t.Fatalf("limit: got %d, %v", v, err)
	}
	if v, err := ParseQueryInt(req, "missing", 100, 0, 500); err != nil || v != 100 {
		t.Fatalf("default: got %d, %v", v, err)
	}
	if _, err := ParseQueryInt(req, "offset", 0, 0, 500); err == nil {
		t.Fatal("expected error for non-numeric offset")
	}
	req = httptest.NewRequest("GET", "/?limit=9999", nil)
	if _, err := ParseQueryInt(req, "limit", 100, 1, 500); err == nil {
		t.Fatal("expected error for out-of-range limit")
	}
}

func TestNormalizePhone(t *testing.T) {
	if got := NormalizePhone(" +880 171-234 5678 "); got != "+8801712345678" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}
