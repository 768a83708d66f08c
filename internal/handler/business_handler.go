package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bizdir-backend/internal/dto/result"
	"bizdir-backend/internal/service"
)

// BusinessHandler exposes the single-listing read surface and the rating
// mutation that drives cache invalidation.
type BusinessHandler struct {
	listing *service.ListingService
	log     *zap.Logger
}

func NewBusinessHandler(listing *service.ListingService, log *zap.Logger) *BusinessHandler {
	return &BusinessHandler{listing: listing, log: log}
}

// RegisterRoutes binds listing endpoints.
func (h *BusinessHandler) RegisterRoutes(r *gin.Engine) {
	group := r.Group("/business")
	group.GET("/:id", h.getListing)
	group.POST("/:id/rating", h.applyRating)
}

func (h *BusinessHandler) getListing(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, result.Fail("invalid id"))
		return
	}
	listing, source, err := h.listing.GetByID(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result.OkWithData(gin.H{
		"listing": listing,
		"source":  source,
	}))
}

func (h *BusinessHandler) applyRating(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, result.Fail("invalid id"))
		return
	}
	var body struct {
		Stars int `json:"stars"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, result.Fail("invalid payload"))
		return
	}
	listing, err := h.listing.ApplyRating(ctx.Request.Context(), id, body.Stars)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result.OkWithData(gin.H{
		"ratingAvg":   listing.RatingAvg,
		"reviewCount": listing.ReviewCount,
	}))
}
