package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/service/checkout"
	"storefront/internal/service/order"
	"storefront/internal/service/review"
	"storefront/internal/store"
)

type sessionTokens interface {
	Issue() (token, sessionID string, expiresAt time.Time, err error)
	Lookup(token string) (string, error)
}

type sessionService interface {
	Hydrate(ctx context.Context, id string) (store.State, error)
	State(id string) (store.State, bool)
	Apply(ctx context.Context, id string, fn func(store.State) store.State) (store.State, error)
}

type checkoutService interface {
	Begin(ctx context.Context, sessionID string, req checkout.Request) (checkout.Attempt, error)
	Confirm(ctx context.Context, sessionID, attemptID string, res checkout.GatewayResult) (checkout.Attempt, error)
	Attempt(sessionID, attemptID string) (checkout.Attempt, error)
	Quote(ctx context.Context, sessionID string) (checkout.Quote, error)
}

type catalogService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, slug string) (*domain.Product, error)
	ByID(ctx context.Context, id string) (*domain.Product, error)
	Recommended(ctx context.Context, slug string) ([]domain.Product, error)
	Search(ctx context.Context, term string) ([]domain.Product, error)
	Upsells(ctx context.Context, cartProductIDs []string) ([]domain.Product, error)
}

type collectionService interface {
	List(ctx context.Context) ([]domain.Collection, error)
	Get(ctx context.Context, slug string) (*domain.Collection, error)
}

type reviewService interface {
	Create(ctx context.Context, slug string, in review.CreateInput) (*domain.Review, error)
	ListApproved(ctx context.Context, slug string) ([]domain.Review, error)
}

type orderService interface {
	Create(ctx context.Context, in order.CreateInput) (*domain.Order, bool, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Order, error)
}

type paymentOrders interface {
	CreateOrder(ctx context.Context, amount int64) (*payment.Order, error)
}

// Deps are the services the router dispatches to.
type Deps struct {
	Tokens      sessionTokens
	Sessions    sessionService
	Checkout    checkoutService
	Catalog     catalogService
	Collections collectionService
	Reviews     reviewService
	Orders      orderService
	Payments    paymentOrders
	CORSOrigins []string
}

func (d Deps) validate() error {
	switch {
	case d.Tokens == nil:
		return errors.New("httpserver: session tokens missing")
	case d.Sessions == nil:
		return errors.New("httpserver: session service missing")
	case d.Checkout == nil:
		return errors.New("httpserver: checkout service missing")
	case d.Catalog == nil:
		return errors.New("httpserver: catalog service missing")
	case d.Collections == nil:
		return errors.New("httpserver: collection service missing")
	case d.Reviews == nil:
		return errors.New("httpserver: review service missing")
	case d.Orders == nil:
		return errors.New("httpserver: order service missing")
	case d.Payments == nil:
		return errors.New("httpserver: payment client missing")
	}
	return nil
}

type handlers struct {
	Deps
	logger *zap.Logger
	now    func() time.Time
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handlers{Deps: deps, logger: logger.Named("http"), now: time.Now}

	router := gin.New()
	router.Use(requestID(), accessLog(h.logger), recovery(h.logger), cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")
	api.POST("/session", h.createSession)

	api.GET("/products", h.listProducts)
	api.GET("/products/:slug", h.getProduct)
	api.GET("/products/:slug/recommended", h.recommended)
	api.GET("/products/:slug/reviews", h.listReviews)
	api.POST("/products/:slug/reviews", h.createReview)
	api.GET("/search", h.search)
	api.POST("/upsells", h.upsells)
	api.GET("/collections", h.listCollections)
	api.GET("/collections/:slug", h.getCollection)

	api.POST("/razorpay", h.createPaymentOrder)
	api.POST("/create-order", h.createOrder)
	api.GET("/orders", h.listOrders)

	sess := api.Group("", sessionMiddleware(deps.Tokens, h.logger))
	sess.GET("/session/state", h.getState)
	sess.POST("/session/hydrate", h.hydrate)

	sess.POST("/cart/items", h.addToCart)
	sess.DELETE("/cart/items", h.removeFromCart)
	sess.PATCH("/cart/items", h.updateQuantity)
	sess.DELETE("/cart", h.clearCart)

	sess.POST("/wishlist/toggle", h.toggleWishlist)
	sess.POST("/wishlist/items", h.addToWishlist)
	sess.GET("/wishlist/items/:id", h.inWishlist)
	sess.DELETE("/wishlist/items/:id", h.removeFromWishlist)
	sess.DELETE("/wishlist", h.clearWishlist)

	sess.PUT("/checkout-item", h.setCheckoutItem)
	sess.PATCH("/checkout-item", h.updateCheckoutItem)
	sess.DELETE("/checkout-item", h.clearCheckoutItem)

	sess.POST("/overlay/:name/:action", h.overlay)

	sess.POST("/checkout", h.beginCheckout)
	sess.GET("/checkout/quote", h.quote)
	sess.GET("/checkout/:attemptID", h.getAttempt)
	sess.POST("/checkout/:attemptID/confirm", h.confirmCheckout)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", headerRequestID},
		ExposeHeaders:    []string{headerRequestID},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
