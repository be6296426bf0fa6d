package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/service/checkout"
	"storefront/internal/service/order"
)

func (h *handlers) beginCheckout(c *gin.Context) {
	var req checkout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}
	attempt, err := h.Checkout.Begin(c.Request.Context(), sessionIDFrom(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, attempt)
}

func (h *handlers) confirmCheckout(c *gin.Context) {
	var res checkout.GatewayResult
	if err := c.ShouldBindJSON(&res); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}
	attempt, err := h.Checkout.Confirm(c.Request.Context(), sessionIDFrom(c), c.Param("attemptID"), res)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

func (h *handlers) getAttempt(c *gin.Context) {
	attempt, err := h.Checkout.Attempt(sessionIDFrom(c), c.Param("attemptID"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

func (h *handlers) quote(c *gin.Context) {
	q, err := h.Checkout.Quote(c.Request.Context(), sessionIDFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

type paymentOrderRequest struct {
	Amount int64 `json:"amount"`
}

// createPaymentOrder requests a gateway order for an amount in rupees.
func (h *handlers) createPaymentOrder(c *gin.Context) {
	var req paymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "amount", "invalid request body")
		return
	}
	o, err := h.Payments.CreateOrder(c.Request.Context(), req.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrUpstream) {
			h.logger.Error("payment order failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadGateway, errorBody{Error: "Order creation failed"})
			return
		}
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": o.ID, "currency": o.Currency, "amount": o.Amount})
}

type createOrderRequest struct {
	Cart            []domain.CartItem `json:"cart"`
	PaymentID       string            `json:"paymentId"`
	Email           string            `json:"email"`
	ShippingAddress json.RawMessage   `json:"shippingAddress"`
	TotalAmount     int64             `json:"totalAmount"`
}

func (h *handlers) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}
	address, err := order.AddressText(req.ShippingAddress)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	o, created, err := h.Orders.Create(c.Request.Context(), order.CreateInput{
		Cart:            req.Cart,
		PaymentID:       req.PaymentID,
		Email:           req.Email,
		ShippingAddress: address,
		TotalAmount:     req.TotalAmount,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"orderId":     o.ID,
		"orderNumber": o.OrderNumber,
		"message":     "Order created successfully",
	})
}

func (h *handlers) listOrders(c *gin.Context) {
	list, err := h.Orders.ListByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}
