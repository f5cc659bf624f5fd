package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Saadasw/BookOrderBackend/pkg/config"
	"github.com/Saadasw/BookOrderBackend/pkg/db/models"
	pkgerrors "github.com/Saadasw/BookOrderBackend/pkg/errors"
	"github.com/Saadasw/BookOrderBackend/pkg/infobip"
	"github.com/Saadasw/BookOrderBackend/pkg/logger"
	"github.com/Saadasw/BookOrderBackend/pkg/security"
	"github.com/Saadasw/BookOrderBackend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// OrderMaterializer turns a verified intent into a durable order inside the
// caller's transaction.
type OrderMaterializer interface {
	CreateFromIntent(ctx context.Context, tx *gorm.DB, intent types.OrderIntent) (*models.Order, error)
}

// Service owns the two-phase order confirmation flow.
type Service interface {
	Initiate(ctx context.Context, input InitiateInput) (*InitiateResult, error)
	Confirm(ctx context.Context, sessionToken, pinCode string) (*models.Order, error)
	ResendCode(ctx context.Context, sessionToken string) (*ResendResult, error)
	PhoneForToken(ctx context.Context, token string) (string, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	provider infobip.PinSender
	limiter  rateLimiter
	orders   OrderMaterializer
	cfg      config.VerificationConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the verification service with the required dependencies.
func NewService(repo Repository, tx txRunner, provider infobip.PinSender, limiter rateLimiter, orders OrderMaterializer, cfg config.VerificationConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("verification repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if provider == nil {
		return nil, fmt.Errorf("pin provider required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order materializer required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		provider: provider,
		limiter:  limiter,
		orders:   orders,
		cfg:      cfg,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Initiate captures the order intent, dispatches a PIN over SMS and hands the
// caller an opaque session token. Nothing durable exists for the order yet.
func (s *service) Initiate(ctx context.Context, input InitiateInput) (*InitiateResult, error) {
	if len(input.Books) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one book must be ordered")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}

	intent, totalCents, err := buildIntent(input)
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		ctx = s.logg.WithPhoneHash(ctx, security.HashPhone(input.PhoneNumber))
	}

	// The attempt counts against the window before the provider is called,
	// so failed sends still consume budget.
	allowed, count, err := s.limiter.FixedWindowAllow(ctx, "initiate:"+input.PhoneNumber, int64(s.cfg.RateLimitMax), s.cfg.RateLimitWindow)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting")
	}
	if !allowed {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "attempts", count), "verification.rate_limit.blocked")
		}
		return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many verification attempts, please try again later")
	}

	pinID, err := s.provider.SendPin(ctx, input.PhoneNumber)
	if err != nil {
		return nil, err
	}

	token, err := security.NewSessionToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue session token")
	}

	session := &models.VerificationSession{
		SessionToken: token,
		PhoneNumber:  input.PhoneNumber,
		PinID:        pinID,
		OrderData:    &intent,
		ExpiresAt:    s.now().Add(s.cfg.SessionTTL),
	}
	if _, err := s.repo.Create(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist verification session")
	}

	if s.logg != nil {
		s.logg.Info(ctx, "verification.initiated")
	}

	return &InitiateResult{
		SessionToken: token,
		ExpiresIn:    s.cfg.SessionTTL,
		TotalCents:   totalCents,
		TotalAmount:  decimal.New(int64(totalCents), -2),
	}, nil
}

// Confirm submits the PIN to the provider and, on success, promotes the
// session's intent into an order. The claim, the order insert and the session
// delete commit or roll back together; an aborted transaction leaves the
// session live so the customer can retry.
func (s *service) Confirm(ctx context.Context, sessionToken, pinCode string) (*models.Order, error) {
	session, err := s.loadLive(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	if session.Verified {
		return nil, pkgerrors.New(pkgerrors.CodeSessionConsumed, "order already verified")
	}
	if session.OrderData == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session has no order intent")
	}

	if s.logg != nil {
		ctx = s.logg.WithPhoneHash(ctx, security.HashPhone(session.PhoneNumber))
	}

	result, err := s.provider.VerifyPin(ctx, session.PinID, pinCode)
	if err != nil {
		// Provider failure mutates nothing; the caller retries the same session.
		return nil, err
	}

	if !result.Verified {
		// The one deliberate partial mutation: the provider has burned an
		// attempt, so the session records it even though confirm failed.
		if err := s.repo.IncrementAttempts(ctx, session.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record failed attempt")
		}
		if result.AttemptsRemaining <= 0 {
			if err := s.repo.Delete(ctx, session.ID); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retire exhausted session")
			}
			if s.logg != nil {
				s.logg.Warn(ctx, "verification.attempts_exhausted")
			}
			return nil, pkgerrors.New(pkgerrors.CodePinExhausted, "maximum verification attempts exceeded, please restart the order")
		}
		return nil, pkgerrors.New(pkgerrors.CodePinRejected, "invalid verification code").
			WithDetails(map[string]any{"attempts_remaining": result.AttemptsRemaining})
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		won, err := repo.ClaimForVerification(ctx, sessionToken, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim session")
		}
		if !won {
			// A concurrent confirm got here first; exactly one order exists.
			return pkgerrors.New(pkgerrors.CodeSessionConsumed, "order already verified")
		}

		created, err := s.orders.CreateFromIntent(ctx, tx, *session.OrderData)
		if err != nil {
			return err
		}
		order = created

		return repo.Delete(ctx, session.ID)
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "verification.order_created")
	}
	return order, nil
}

// ResendCode issues a fresh PIN for a live session, resetting the attempt
// budget and pushing the expiry forward. A missing or expired session is a
// lost resource here, not a credential failure, so it maps to not-found.
func (s *service) ResendCode(ctx context.Context, sessionToken string) (*ResendResult, error) {
	session, err := s.loadLive(ctx, sessionToken)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeSessionInvalid {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "session not found or expired")
		}
		return nil, err
	}
	if session.Verified {
		return nil, pkgerrors.New(pkgerrors.CodeSessionConsumed, "order already verified")
	}

	if s.logg != nil {
		ctx = s.logg.WithPhoneHash(ctx, security.HashPhone(session.PhoneNumber))
	}

	pinID, err := s.provider.SendPin(ctx, session.PhoneNumber)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ResetPin(ctx, session.ID, pinID, s.now().Add(s.cfg.SessionTTL)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh session pin")
	}

	if s.logg != nil {
		s.logg.Info(ctx, "verification.code_resent")
	}
	return &ResendResult{ExpiresIn: s.cfg.SessionTTL}, nil
}

// PhoneForToken resolves a bearer session token to its phone number for
// order mutation authorization. Verified state is deliberately ignored.
func (s *service) PhoneForToken(ctx context.Context, token string) (string, error) {
	session, err := s.loadLive(ctx, token)
	if err != nil {
		return "", err
	}
	return session.PhoneNumber, nil
}

func (s *service) loadLive(ctx context.Context, token string) (*models.VerificationSession, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeSessionInvalid, "invalid or expired session")
	}
	session, err := s.repo.FindLiveByToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeSessionInvalid, "invalid or expired session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verification session")
	}
	return session, nil
}

func buildIntent(input InitiateInput) (types.OrderIntent, int, error) {
	books := make([]types.IntentBook, 0, len(input.Books))
	total := 0
	for _, book := range input.Books {
		if book.Quantity <= 0 {
			return types.OrderIntent{}, 0, pkgerrors.New(pkgerrors.CodeValidation, "book quantity must be positive").
				WithDetails(map[string]any{"book_id": book.ID})
		}
		if book.Price.IsNegative() {
			return types.OrderIntent{}, 0, pkgerrors.New(pkgerrors.CodeValidation, "book price must not be negative").
				WithDetails(map[string]any{"book_id": book.ID})
		}
		unitCents := int(book.Price.Shift(2).Round(0).IntPart())
		lineTotal := unitCents * book.Quantity
		total += lineTotal
		books = append(books, types.IntentBook{
			BookID:         book.ID,
			Title:          book.Title,
			UnitPriceCents: unitCents,
			Quantity:       book.Quantity,
			TotalCents:     lineTotal,
		})
	}
	return types.OrderIntent{
		PhoneNumber:   input.PhoneNumber,
		Address:       input.Address,
		PaymentMethod: input.PaymentMethod,
		Books:         books,
		TotalCents:    total,
	}, total, nil
}
