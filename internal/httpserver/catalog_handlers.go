package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/service/review"
)

func (h *handlers) listProducts(c *gin.Context) {
	list, err := h.Catalog.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": list})
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.Catalog.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) recommended(c *gin.Context) {
	list, err := h.Catalog.Recommended(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": list})
}

func (h *handlers) search(c *gin.Context) {
	list, err := h.Catalog.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": list})
}

type upsellRequest struct {
	ProductIDs []string `json:"productIds"`
}

func (h *handlers) upsells(c *gin.Context) {
	var req upsellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "productIds", "invalid request body")
		return
	}
	list, err := h.Catalog.Upsells(c.Request.Context(), req.ProductIDs)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": list})
}

func (h *handlers) listCollections(c *gin.Context) {
	list, err := h.Collections.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": list})
}

func (h *handlers) getCollection(c *gin.Context) {
	col, err := h.Collections.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, col)
}

func (h *handlers) listReviews(c *gin.Context) {
	list, err := h.Reviews.ListApproved(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": list})
}

func (h *handlers) createReview(c *gin.Context) {
	var in review.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}
	r, err := h.Reviews.Create(c.Request.Context(), c.Param("slug"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": r, "message": "Review submitted for moderation"})
}
