package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/service/checkout"
)

func TestBeginCheckout(t *testing.T) {
	deps := testDeps()
	deps.Checkout = &stubCheckout{attempt: checkout.Attempt{
		ID:      "a1",
		Status:  checkout.StatusAwaitingGatewayResult,
		Gateway: &checkout.GatewayHandle{OrderID: "order_1", Amount: 215000, Currency: "INR", KeyID: "rzp"},
	}}
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodPost, "/api/checkout", `{"method":"razorpay","email":"a@b.co"}`, "tok-s1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	got := decode[checkout.Attempt](t, rec)
	if got.ID != "a1" || got.Gateway == nil || got.Gateway.OrderID != "order_1" {
		t.Fatalf("unexpected attempt %+v", got)
	}

	if rec := do(router, http.MethodGet, "/api/checkout/a1", "", "tok-s1"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/api/checkout/zzz", "", "tok-s1"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec = do(router, http.MethodPost, "/api/checkout/a1/confirm", `{"paymentId":"pay_1","orderId":"order_1","signature":"sig"}`, "tok-s1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCheckoutQuote(t *testing.T) {
	router := newTestRouter(t, testDeps())
	q := decode[checkout.Quote](t, do(router, http.MethodGet, "/api/checkout/quote", "", "tok-s1"))
	if q.Total != 250 || q.Shipping != 150 {
		t.Fatalf("unexpected quote %+v", q)
	}
}

func TestBeginCheckout_Errors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		field  string
	}{
		{"validation", domain.Invalid("address.phone", "is required"), http.StatusBadRequest, "address.phone"},
		{"gateway", &payment.GatewayError{Status: 500, Code: "SERVER_ERROR", Description: "down"}, http.StatusBadGateway, ""},
		{"credentials", payment.ErrCredentialsMissing, http.StatusInternalServerError, ""},
		{"conflict", domain.ErrConflict, http.StatusConflict, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deps := testDeps()
			deps.Checkout = &stubCheckout{err: tc.err}
			router := newTestRouter(t, deps)
			rec := do(router, http.MethodPost, "/api/checkout", `{"method":"cod"}`, "tok-s1")
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if body := decode[errorBody](t, rec); body.Field != tc.field {
				t.Fatalf("expected field %q, got %+v", tc.field, body)
			}
		})
	}
}

func TestCreatePaymentOrder(t *testing.T) {
	router := newTestRouter(t, testDeps())
	rec := do(router, http.MethodPost, "/api/razorpay", `{"amount":500}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	out := decode[map[string]any](t, rec)
	if out["id"] != "order_1" || out["currency"] != "INR" || out["amount"] != float64(50000) {
		t.Fatalf("unexpected body %v", out)
	}
}

func TestCreatePaymentOrder_Failures(t *testing.T) {
	deps := testDeps()
	deps.Payments = stubPayments{err: payment.ErrCredentialsMissing}
	rec := do(newTestRouter(t, deps), http.MethodPost, "/api/razorpay", `{"amount":500}`, "")
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "Razorpay credentials missing") {
		t.Fatalf("expected credentials error, got %d %s", rec.Code, rec.Body.String())
	}

	deps.Payments = stubPayments{err: errors.Join(domain.ErrUpstream, errors.New("dial tcp"))}
	rec = do(newTestRouter(t, deps), http.MethodPost, "/api/razorpay", `{"amount":500}`, "")
	if rec.Code != http.StatusBadGateway || !strings.Contains(rec.Body.String(), "Order creation failed") {
		t.Fatalf("expected 502, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestCreateOrder(t *testing.T) {
	deps := testDeps()
	orders := &stubOrders{created: true}
	deps.Orders = orders
	router := newTestRouter(t, deps)

	body := `{"cart":[{"id":"p1","quantity":1,"selectedSize":"M"}],"paymentId":"pay_1","email":"a@b.co",` +
		`"shippingAddress":{"city":"Pune"},"totalAmount":2150}`
	rec := do(router, http.MethodPost, "/api/create-order", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if out := decode[map[string]string](t, rec); out["orderId"] != "o1" {
		t.Fatalf("unexpected body %v", out)
	}
	if orders.last.ShippingAddress != `{"city":"Pune"}` || orders.last.TotalAmount != 2150 || len(orders.last.Cart) != 1 {
		t.Fatalf("unexpected input %+v", orders.last)
	}

	orders.created = false
	if rec := do(router, http.MethodPost, "/api/create-order", body, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for repeated payment, got %d", rec.Code)
	}

	orders.err = domain.Invalid("email", "is required")
	if rec := do(router, http.MethodPost, "/api/create-order", `{"cart":[]}`, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListOrders(t *testing.T) {
	router := newTestRouter(t, testDeps())
	if rec := do(router, http.MethodGet, "/api/orders", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without email, got %d", rec.Code)
	}
	rec := do(router, http.MethodGet, "/api/orders?email=a@b.co", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"email":"a@b.co"`) {
		t.Fatalf("unexpected %d %s", rec.Code, rec.Body.String())
	}
}
