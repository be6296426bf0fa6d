package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/store"
)

type stateView struct {
	Cart           []domain.CartItem     `json:"cart"`
	Wishlist       []domain.WishlistItem `json:"wishlist"`
	CheckoutItem   *domain.CartItem      `json:"checkoutItem"`
	IsCartOpen     bool                  `json:"isCartOpen"`
	IsWishlistOpen bool                  `json:"isWishlistOpen"`
	CartTotal      int64                 `json:"cartTotal"`
	ItemCount      int                   `json:"itemCount"`
	Hydrated       bool                  `json:"hydrated"`
}

func toStateView(st store.State, hydrated bool) stateView {
	return stateView{
		Cart:           st.Cart,
		Wishlist:       st.Wishlist,
		CheckoutItem:   st.CheckoutItem,
		IsCartOpen:     st.IsCartOpen(),
		IsWishlistOpen: st.IsWishlistOpen(),
		CartTotal:      st.CartTotal(),
		ItemCount:      st.ItemCount(),
		Hydrated:       hydrated,
	}
}

type lineRequest struct {
	ProductID string `json:"productId" form:"productId"`
	Size      string `json:"size" form:"size"`
	Color     string `json:"color" form:"color"`
	Delta     int    `json:"delta" form:"delta"`
	Quantity  int    `json:"quantity" form:"quantity"`
}

func (h *handlers) createSession(c *gin.Context) {
	token, sid, expiresAt, err := h.Tokens.Issue()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token":     token,
		"sessionId": sid,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *handlers) getState(c *gin.Context) {
	st, hydrated := h.Sessions.State(sessionIDFrom(c))
	c.JSON(http.StatusOK, toStateView(st, hydrated))
}

func (h *handlers) hydrate(c *gin.Context) {
	st, err := h.Sessions.Hydrate(c.Request.Context(), sessionIDFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toStateView(st, true))
}

// apply runs fn on the session and writes the resulting state.
func (h *handlers) apply(c *gin.Context, fn func(store.State) store.State) {
	st, err := h.Sessions.Apply(c.Request.Context(), sessionIDFrom(c), fn)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toStateView(st, true))
}

func (h *handlers) bindLine(c *gin.Context) (lineRequest, bool) {
	var req lineRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return req, false
	}
	if req.ProductID == "" {
		badRequest(c, "productId", "is required")
		return req, false
	}
	return req, true
}

func (h *handlers) product(c *gin.Context, id string) (*domain.Product, bool) {
	p, err := h.Catalog.ByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return nil, false
	}
	return p, true
}

func (h *handlers) addToCart(c *gin.Context) {
	req, ok := h.bindLine(c)
	if !ok {
		return
	}
	p, ok := h.product(c, req.ProductID)
	if !ok {
		return
	}
	h.apply(c, func(s store.State) store.State { return s.AddToCart(*p, req.Size, req.Color) })
}

func (h *handlers) removeFromCart(c *gin.Context) {
	req, ok := h.bindLine(c)
	if !ok {
		return
	}
	h.apply(c, func(s store.State) store.State { return s.RemoveFromCart(req.ProductID, req.Size, req.Color) })
}

func (h *handlers) updateQuantity(c *gin.Context) {
	req, ok := h.bindLine(c)
	if !ok {
		return
	}
	h.apply(c, func(s store.State) store.State {
		return s.UpdateQuantity(req.ProductID, req.Size, req.Color, req.Delta)
	})
}

func (h *handlers) clearCart(c *gin.Context) {
	h.apply(c, store.State.ClearCart)
}

func (h *handlers) toggleWishlist(c *gin.Context) {
	req, ok := h.bindLine(c)
	if !ok {
		return
	}
	p, ok := h.product(c, req.ProductID)
	if !ok {
		return
	}
	now := h.now()
	st, err := h.Sessions.Apply(c.Request.Context(), sessionIDFrom(c), func(s store.State) store.State {
		return s.ToggleWishlist(*p, now)
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"inWishlist": st.IsInWishlist(p.ID),
		"state":      toStateView(st, true),
	})
}

func (h *handlers) addToWishlist(c *gin.Context) {
	req, ok := h.bindLine(c)
	if !ok {
		return
	}
	p, ok := h.product(c, req.ProductID)
	if !ok {
		return
	}
	now := h.now()
	h.apply(c, func(s store.State) store.State { return s.AddToWishlist(*p, now) })
}

func (h *handlers) inWishlist(c *gin.Context) {
	st, err := h.Sessions.Hydrate(c.Request.Context(), sessionIDFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inWishlist": st.IsInWishlist(c.Param("id"))})
}

func (h *handlers) removeFromWishlist(c *gin.Context) {
	id := c.Param("id")
	h.apply(c, func(s store.State) store.State { return s.RemoveFromWishlist(id) })
}

func (h *handlers) clearWishlist(c *gin.Context) {
	h.apply(c, store.State.ClearWishlist)
}

func (h *handlers) setCheckoutItem(c *gin.Context) {
	req, ok := h.bindLine(c)
	if !ok {
		return
	}
	p, ok := h.product(c, req.ProductID)
	if !ok {
		return
	}
	item := domain.CartItem{Product: *p, Quantity: req.Quantity, SelectedSize: req.Size, SelectedColor: req.Color}
	h.apply(c, func(s store.State) store.State { return s.SetCheckoutItem(item) })
}

func (h *handlers) updateCheckoutItem(c *gin.Context) {
	var req lineRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}
	h.apply(c, func(s store.State) store.State { return s.UpdateCheckoutItemQuantity(req.Delta) })
}

func (h *handlers) clearCheckoutItem(c *gin.Context) {
	h.apply(c, store.State.ClearCheckoutItem)
}

var overlayActions = map[string]map[string]func(store.State) store.State{
	"cart": {
		"open":   store.State.OpenCart,
		"close":  store.State.CloseCart,
		"toggle": store.State.ToggleCart,
	},
	"wishlist": {
		"open":   store.State.OpenWishlist,
		"close":  store.State.CloseWishlist,
		"toggle": store.State.ToggleWishlistDrawer,
	},
}

func (h *handlers) overlay(c *gin.Context) {
	actions, ok := overlayActions[c.Param("name")]
	if !ok {
		writeError(c, h.logger, domain.ErrNotFound)
		return
	}
	fn, ok := actions[c.Param("action")]
	if !ok {
		writeError(c, h.logger, domain.ErrNotFound)
		return
	}
	h.apply(c, fn)
}
