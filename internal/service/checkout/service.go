// Package checkout runs a purchase attempt for a session: it validates the
// active items, prices them, obtains a payment order when paying online and
// records the order once payment is confirmed.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/service/order"
	"storefront/internal/store"
	"storefront/internal/validate"
)

type Method string

const (
	MethodCOD      Method = "cod"
	MethodRazorpay Method = "razorpay"
)

type Status string

const (
	StatusIdle                  Status = "idle"
	StatusAwaitingPaymentOrder  Status = "awaiting_payment_order"
	StatusAwaitingGatewayResult Status = "awaiting_gateway_result"
	StatusRecordingOrder        Status = "recording_order"
	StatusDone                  Status = "done"
	StatusFailed                Status = "failed"
)

type Request struct {
	Method  Method         `json:"method" validate:"required,oneof=cod razorpay"`
	Email   string         `json:"email" validate:"required,email"`
	Address domain.Address `json:"address"`
}

// Quote is the price breakdown of the active items, in rupees.
type Quote struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Total    int64 `json:"total"`
}

// GatewayHandle is what the client needs to open the payment widget.
type GatewayHandle struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
}

// GatewayResult is the payment widget's success callback.
type GatewayResult struct {
	PaymentID string `json:"paymentId" validate:"required"`
	OrderID   string `json:"orderId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type Attempt struct {
	ID         string            `json:"id"`
	SessionID  string            `json:"-"`
	Method     Method            `json:"method"`
	Status     Status            `json:"status"`
	Reason     string            `json:"reason,omitempty"`
	Quote      Quote             `json:"quote"`
	Items      []domain.CartItem `json:"items"`
	Email      string            `json:"email"`
	Address    domain.Address    `json:"address"`
	FromIntent bool              `json:"fromIntent"`
	Gateway    *GatewayHandle    `json:"gateway,omitempty"`
	PaymentID  string            `json:"paymentId,omitempty"`
	Order      *domain.Order     `json:"order,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	ExpiresAt  time.Time         `json:"expiresAt"`
}

type sessionStore interface {
	Hydrate(ctx context.Context, id string) (store.State, error)
	Apply(ctx context.Context, id string, fn func(store.State) store.State) (store.State, error)
}

type paymentGateway interface {
	CreateOrder(ctx context.Context, amount int64) (*payment.Order, error)
	VerifySignature(orderID, paymentID, signature string) error
	KeyID() string
}

type orderRecorder interface {
	Create(ctx context.Context, in order.CreateInput) (*domain.Order, bool, error)
}

type attemptEntry struct {
	mu sync.Mutex
	a  Attempt
}

type Service struct {
	sessions sessionStore
	gateway  paymentGateway
	orders   orderRecorder
	cfg      config.CheckoutConfig
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	attempts map[string]*attemptEntry
}

func New(sessions sessionStore, gateway paymentGateway, orders orderRecorder, cfg config.CheckoutConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AttemptTTL <= 0 {
		cfg.AttemptTTL = 30 * time.Minute
	}
	return &Service{
		sessions: sessions,
		gateway:  gateway,
		orders:   orders,
		cfg:      cfg,
		logger:   logger.Named("checkout"),
		now:      time.Now,
		attempts: make(map[string]*attemptEntry),
	}
}

// Price applies the shipping rule to a subtotal.
func (s *Service) Price(subtotal int64) Quote {
	q := Quote{Subtotal: subtotal}
	if subtotal < s.cfg.FreeShippingThreshold {
		q.Shipping = s.cfg.ShippingFee
	}
	q.Total = q.Subtotal + q.Shipping
	return q
}

// Quote prices the session's active items.
func (s *Service) Quote(ctx context.Context, sessionID string) (Quote, error) {
	st, err := s.sessions.Hydrate(ctx, sessionID)
	if err != nil {
		return Quote{}, err
	}
	return s.Price(store.Total(st.ActiveItems())), nil
}

// Begin starts an attempt over the session's active items. Validation
// failures return a *domain.ValidationError and create no attempt. A cash on
// delivery attempt is recorded straight away; an online one stops at
// StatusAwaitingGatewayResult with the gateway handle set.
func (s *Service) Begin(ctx context.Context, sessionID string, req Request) (Attempt, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Method = Method(strings.ToLower(strings.TrimSpace(string(req.Method))))

	st, err := s.sessions.Hydrate(ctx, sessionID)
	if err != nil {
		return Attempt{}, err
	}
	items := st.ActiveItems()
	if err := checkItems(items); err != nil {
		return Attempt{}, err
	}
	if err := validate.Struct(req); err != nil {
		return Attempt{}, err
	}
	quote := s.Price(store.Total(items))
	if req.Method == MethodCOD && quote.Total < s.cfg.CODMinTotal {
		return Attempt{}, domain.Invalid("method", fmt.Sprintf("cash on delivery needs a total of at least Rs. %d", s.cfg.CODMinTotal))
	}

	now := s.now()
	e := &attemptEntry{a: Attempt{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Method:     req.Method,
		Status:     StatusIdle,
		Quote:      quote,
		Items:      append([]domain.CartItem(nil), items...),
		Email:      req.Email,
		Address:    req.Address,
		FromIntent: st.CheckoutItem != nil,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(s.cfg.AttemptTTL),
	}}
	e.mu.Lock()
	defer e.mu.Unlock()
	s.mu.Lock()
	s.attempts[e.a.ID] = e
	s.mu.Unlock()

	log := s.logger.With(zap.String("attempt_id", e.a.ID), zap.String("method", string(req.Method)))
	log.Info("checkout started", zap.Int64("total", quote.Total), zap.Int("items", len(items)))

	if req.Method == MethodCOD {
		e.a.PaymentID = domain.CODPaymentID
		return s.record(ctx, e, log)
	}

	s.transition(e, StatusAwaitingPaymentOrder, "")
	po, err := s.gateway.CreateOrder(ctx, quote.Total)
	if err != nil {
		log.Warn("payment order failed", zap.Error(err))
		s.transition(e, StatusFailed, err.Error())
		if !errors.Is(err, domain.ErrUpstream) && !errors.Is(err, payment.ErrCredentialsMissing) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstream, err)
		}
		return e.a, err
	}
	e.a.Gateway = &GatewayHandle{
		OrderID:  po.ID,
		Amount:   po.Amount,
		Currency: po.Currency,
		KeyID:    s.gateway.KeyID(),
	}
	s.transition(e, StatusAwaitingGatewayResult, "")
	return e.a, nil
}

// Confirm completes an online attempt with the gateway callback. It can be
// called again after a failed recording; a finished attempt is returned as
// it is.
func (s *Service) Confirm(ctx context.Context, sessionID, attemptID string, res GatewayResult) (Attempt, error) {
	e, err := s.lookup(sessionID, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.a.Status == StatusDone:
		return e.a, nil
	case e.a.Status == StatusAwaitingGatewayResult:
	case e.a.Status == StatusFailed && e.a.Gateway != nil && e.a.PaymentID != "":
		if res.PaymentID != e.a.PaymentID {
			return e.a, fmt.Errorf("%w: attempt already bound to another payment", domain.ErrConflict)
		}
	default:
		return e.a, fmt.Errorf("%w: attempt is %s", domain.ErrConflict, e.a.Status)
	}

	if err := validate.Struct(res); err != nil {
		return e.a, err
	}
	if res.OrderID != e.a.Gateway.OrderID {
		return e.a, domain.Invalid("orderId", "does not match the attempt")
	}
	if err := s.gateway.VerifySignature(res.OrderID, res.PaymentID, res.Signature); err != nil {
		s.logger.Warn("signature rejected", zap.String("attempt_id", e.a.ID), zap.Error(err))
		if errors.Is(err, domain.ErrInvalidInput) {
			return e.a, domain.Invalid("signature", "is invalid")
		}
		return e.a, err
	}

	e.a.PaymentID = res.PaymentID
	return s.record(ctx, e, s.logger.With(zap.String("attempt_id", e.a.ID), zap.String("method", string(e.a.Method))))
}

// record stores the order and clears the purchased items. e.mu must be held.
func (s *Service) record(ctx context.Context, e *attemptEntry, log *zap.Logger) (Attempt, error) {
	s.transition(e, StatusRecordingOrder, "")
	o, created, err := s.orders.Create(ctx, order.CreateInput{
		Cart:            e.a.Items,
		PaymentID:       e.a.PaymentID,
		Email:           e.a.Email,
		ShippingAddress: order.FormatAddress(e.a.Address),
		TotalAmount:     e.a.Quote.Total,
	})
	if err != nil {
		log.Error("record order failed", zap.String("payment_id", e.a.PaymentID), zap.Error(err))
		s.transition(e, StatusFailed, err.Error())
		if !errors.Is(err, domain.ErrInvalidInput) && !errors.Is(err, domain.ErrUpstream) {
			err = fmt.Errorf("%w: record order: %w", domain.ErrUpstream, err)
		}
		return e.a, err
	}
	e.a.Order = o

	drop := store.State.ClearCart
	if e.a.FromIntent {
		drop = store.State.ClearCheckoutItem
	}
	if _, err := s.sessions.Apply(ctx, e.a.SessionID, drop); err != nil {
		log.Error("clear purchased items failed", zap.Error(err))
	}

	s.transition(e, StatusDone, "")
	log.Info("checkout done",
		zap.String("order_number", o.OrderNumber),
		zap.Bool("created", created),
	)
	return e.a, nil
}

func (s *Service) transition(e *attemptEntry, to Status, reason string) {
	e.a.Status = to
	e.a.Reason = reason
	e.a.UpdatedAt = s.now()
}

// Attempt returns a copy of the session's attempt.
func (s *Service) Attempt(sessionID, attemptID string) (Attempt, error) {
	e, err := s.lookup(sessionID, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.a, nil
}

func (s *Service) lookup(sessionID, attemptID string) (*attemptEntry, error) {
	s.mu.Lock()
	e, ok := s.attempts[attemptID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("attempt %s: %w", attemptID, domain.ErrNotFound)
	}
	// SessionID and ExpiresAt never change after Begin.
	if e.a.SessionID != sessionID || !s.now().Before(e.a.ExpiresAt) {
		return nil, fmt.Errorf("attempt %s: %w", attemptID, domain.ErrNotFound)
	}
	return e, nil
}

// Sweep drops expired attempts and reports how many were removed.
func (s *Service) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for id, e := range s.attempts {
		if !now.Before(e.a.ExpiresAt) {
			delete(s.attempts, id)
			dropped++
		}
	}
	return dropped
}

func checkItems(items []domain.CartItem) error {
	if len(items) == 0 {
		return domain.Invalid("cart", "is empty")
	}
	for _, item := range items {
		if item.SizeType.RequiresSize() && item.SelectedSize == "" {
			return domain.Invalid("size", fmt.Sprintf("select a size for %s", item.Title))
		}
	}
	return nil
}
