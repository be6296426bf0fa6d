package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/validate"
)

const numberAttempts = 3

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, bool, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Order, error)
}

type Service struct {
	repo   orderRepo
	logger *zap.Logger
	now    func() time.Time
	suffix func() int
}

func New(repo orderRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		logger: logger.Named("orders"),
		now:    time.Now,
		suffix: func() int { return rand.Intn(1000) },
	}
}

// CreateInput is an order-record request. TotalAmount is in rupees.
type CreateInput struct {
	Cart            []domain.CartItem `json:"cart" validate:"required,min=1"`
	PaymentID       string            `json:"paymentId" validate:"required"`
	Email           string            `json:"email" validate:"required,email"`
	ShippingAddress string            `json:"shippingAddress"`
	TotalAmount     int64             `json:"totalAmount" validate:"min=0"`
}

// Create records an order with status pending. A gateway payment id is
// recorded once: repeating the call returns the first order with
// created=false.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Order, bool, error) {
	in.PaymentID = strings.TrimSpace(in.PaymentID)
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, false, err
	}

	o := domain.Order{
		PaymentID:       in.PaymentID,
		Email:           in.Email,
		Lines:           toLines(in.Cart),
		TotalPrice:      in.TotalAmount,
		Status:          domain.OrderPending,
		ShippingAddress: in.ShippingAddress,
	}

	for attempt := 0; ; attempt++ {
		o.OrderNumber = fmt.Sprintf("ORD-%d-%d", s.now().UnixMilli(), s.suffix())
		out, created, err := s.repo.Create(ctx, o)
		if errors.Is(err, domain.ErrAlreadyExists) && attempt+1 < numberAttempts {
			s.logger.Warn("order number collision, retrying", zap.String("order_number", o.OrderNumber))
			continue
		}
		if err != nil {
			return nil, false, err
		}
		return out, created, nil
	}
}

func (s *Service) ListByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.Invalid("email", "is required")
	}
	list, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Order{}
	}
	return list, nil
}

func toLines(items []domain.CartItem) []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.OrderLine{
			Key:       item.ID + item.SelectedSize + item.SelectedColor,
			ProductID: item.ID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			Size:      item.SelectedSize,
			Color:     item.SelectedColor,
			Price:     item.Price,
		})
	}
	return lines
}

// AddressText turns a request's shipping address into stored text: a JSON
// string is kept as is, anything else is stored as compact JSON.
func AddressText(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", domain.Invalid("shippingAddress", "is malformed")
		}
		return s, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", domain.Invalid("shippingAddress", "is malformed")
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// FormatAddress stores a structured address as JSON text.
func FormatAddress(a domain.Address) string {
	out, _ := json.Marshal(a)
	return string(out)
}
