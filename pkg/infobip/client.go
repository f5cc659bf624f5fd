package infobip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Saadasw/BookOrderBackend/pkg/config"
	"github.com/Saadasw/BookOrderBackend/pkg/errors"
)

// PinSender delivers verification PINs over SMS and checks submitted codes.
type PinSender interface {
	SendPin(ctx context.Context, phoneNumber string) (string, error)
	VerifyPin(ctx context.Context, pinID, code string) (VerifyResult, error)
}

// VerifyResult is the provider's verdict on a submitted code. AttemptsRemaining
// reflects the provider-side budget, which the session mirrors locally.
type VerifyResult struct {
	Verified          bool
	AttemptsRemaining int
	PinError          string
}

// Client talks to the Infobip 2FA API. The application and message template
// ids select a pre-provisioned SMS template on the Infobip side.
type Client struct {
	cfg  config.InfobipConfig
	http *http.Client
}

func NewClient(cfg config.InfobipConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type sendPinRequest struct {
	ApplicationID string `json:"applicationId"`
	MessageID     string `json:"messageId"`
	To            string `json:"to"`
}

type sendPinResponse struct {
	PinID     string `json:"pinId"`
	To        string `json:"to"`
	SMSStatus string `json:"smsStatus"`
}

type verifyPinRequest struct {
	Pin string `json:"pin"`
}

type verifyPinResponse struct {
	PinID             string `json:"pinId"`
	Verified          bool   `json:"verified"`
	AttemptsRemaining int    `json:"attemptsRemaining"`
	PinError          string `json:"pinError"`
}

// SendPin asks Infobip to generate and deliver a PIN to the phone number.
// Infobip expects msisdns without the leading plus.
func (c *Client) SendPin(ctx context.Context, phoneNumber string) (string, error) {
	payload := sendPinRequest{
		ApplicationID: c.cfg.AppID,
		MessageID:     c.cfg.MessageID,
		To:            strings.TrimPrefix(phoneNumber, "+"),
	}

	var resp sendPinResponse
	if err := c.do(ctx, http.MethodPost, "/2fa/2/pin", payload, &resp); err != nil {
		return "", err
	}
	if resp.PinID == "" {
		return "", errors.New(errors.CodeDependency, "sms provider returned no pin id")
	}
	return resp.PinID, nil
}

// VerifyPin submits the customer's code for the given pin id. A rejected code
// is a successful call; only transport and provider failures return an error.
func (c *Client) VerifyPin(ctx context.Context, pinID, code string) (VerifyResult, error) {
	path := fmt.Sprintf("/2fa/2/pin/%s/verify", pinID)

	var resp verifyPinResponse
	if err := c.do(ctx, http.MethodPost, path, verifyPinRequest{Pin: code}, &resp); err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{
		Verified:          resp.Verified,
		AttemptsRemaining: resp.AttemptsRemaining,
		PinError:          resp.PinError,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "encoding provider request")
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimSuffix(c.cfg.BaseURL, "/")+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "building provider request")
	}
	req.Header.Set("Authorization", "App "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "sms provider unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "reading provider response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New(errors.CodeDependency,
			fmt.Sprintf("sms provider returned status %d", resp.StatusCode)).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "decoding provider response")
	}
	return nil
}
