package orders

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Saadasw/BookOrderBackend/api/middleware"
	"github.com/Saadasw/BookOrderBackend/api/responses"
	"github.com/Saadasw/BookOrderBackend/api/validators"
	internalorders "github.com/Saadasw/BookOrderBackend/internal/orders"
	"github.com/Saadasw/BookOrderBackend/internal/verification"
	"github.com/Saadasw/BookOrderBackend/pkg/db/models"
	"github.com/Saadasw/BookOrderBackend/pkg/enums"
	pkgerrors "github.com/Saadasw/BookOrderBackend/pkg/errors"
	"github.com/Saadasw/BookOrderBackend/pkg/logger"
)

const maxListLimit = 500

type bookRequest struct {
	ID       string          `json:"id" validate:"required"`
	Title    string          `json:"title" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"required,gt=0"`
}

type initiateRequest struct {
	PhoneNumber   string        `json:"phone_number" validate:"required,phone"`
	Address       string        `json:"address" validate:"required,min=5"`
	PaymentMethod string        `json:"payment_method" validate:"required,oneof=cash_on_delivery bkash nagad card"`
	Books         []bookRequest `json:"books" validate:"required,min=1,dive"`
}

type verifyRequest struct {
	SessionToken string `json:"session_token" validate:"required"`
	PinCode      string `json:"pin_code" validate:"required,pin"`
}

type resendRequest struct {
	SessionToken string `json:"session_token" validate:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type initiateResponse struct {
	SessionToken     string          `json:"session_token"`
	ExpiresInSeconds int             `json:"expires_in_seconds"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
}

type resendResponse struct {
	ExpiresInSeconds int `json:"expires_in_seconds"`
}

type lineItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	BookID    string          `json:"book_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	PhoneNumber   string              `json:"phone_number"`
	Address       string              `json:"address"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Status        enums.OrderStatus   `json:"status"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	Verified      bool                `json:"verified"`
	Items         []lineItemResponse  `json:"items"`
	CancelledAt   *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func toOrderResponse(order *models.Order) orderResponse {
	items := make([]lineItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, lineItemResponse{
			ID:        item.ID,
			BookID:    item.BookID,
			Title:     item.Title,
			UnitPrice: decimal.New(int64(item.UnitPriceCents), -2),
			Quantity:  item.Quantity,
			Total:     decimal.New(int64(item.TotalCents), -2),
		})
	}
	return orderResponse{
		ID:            order.ID,
		PhoneNumber:   order.PhoneNumber,
		Address:       order.Address,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		Status:        order.Status,
		TotalAmount:   decimal.New(int64(order.TotalAmountCents), -2),
		Verified:      order.Verified,
		Items:         items,
		CancelledAt:   order.CancelledAt,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

// Initiate captures the order intent and dispatches the verification PIN.
// Nothing durable exists for the order until the PIN is confirmed, so the
// handler answers 202 rather than 201.
func Initiate(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
			return
		}

		var payload initiateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		books := make([]verification.BookInput, 0, len(payload.Books))
		for _, book := range payload.Books {
			books = append(books, verification.BookInput{
				ID:       validators.SanitizeString(book.ID, 128),
				Title:    validators.SanitizeString(book.Title, 512),
				Price:    book.Price,
				Quantity: book.Quantity,
			})
		}

		input := verification.InitiateInput{
			PhoneNumber:   validators.NormalizePhone(payload.PhoneNumber),
			Address:       validators.SanitizeString(payload.Address, 1024),
			PaymentMethod: method,
			Books:         books,
		}

		result, err := svc.Initiate(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, initiateResponse{
			SessionToken:     result.SessionToken,
			ExpiresInSeconds: int(result.ExpiresIn.Seconds()),
			TotalAmount:      result.TotalAmount,
		})
	}
}

// Verify submits the PIN and, on success, returns the freshly created order.
func Verify(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
			return
		}

		var payload verifyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Confirm(r.Context(), payload.SessionToken, payload.PinCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

// ResendCode issues a fresh PIN for a pending session.
func ResendCode(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
			return
		}

		var payload resendRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ResendCode(r.Context(), payload.SessionToken)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resendResponse{ExpiresInSeconds: int(result.ExpiresIn.Seconds())})
	}
}

// List returns orders newest first, optionally filtered by phone number.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		phone, err := validators.ParseQueryPhone(r, "phone_number")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, maxListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.List(r.Context(), internalorders.ListFilters{
			PhoneNumber: validators.NormalizePhone(phone),
			Offset:      offset,
			Limit:       limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(orders))
		for i := range orders {
			out = append(out, toOrderResponse(&orders[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// Detail returns one order by id.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

// UpdateStatus moves the authenticated caller's order along its lifecycle.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		phone := middleware.SessionPhoneFromContext(r.Context())
		if phone == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session identity missing"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orderID, status, phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

// Cancel cancels the authenticated caller's order. Orders are never deleted;
// a cancel is the terminal cancelled status.
func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		phone := middleware.SessionPhoneFromContext(r.Context())
		if phone == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session identity missing"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Cancel(r.Context(), orderID, phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return parsed, nil
}
