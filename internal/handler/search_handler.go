package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bizdir-backend/internal/dto/result"
	"bizdir-backend/internal/service"
	"bizdir-backend/internal/utils"
)

// SearchHandler exposes the discovery endpoints.
type SearchHandler struct {
	search *service.SearchService
	log    *zap.Logger
}

func NewSearchHandler(search *service.SearchService, log *zap.Logger) *SearchHandler {
	return &SearchHandler{search: search, log: log}
}

// RegisterRoutes binds search endpoints.
func (h *SearchHandler) RegisterRoutes(r *gin.Engine) {
	group := r.Group("/search")
	group.GET("", h.searchListings)
	group.GET("/nearby", h.nearbyListings)
	group.GET("/browse", h.browseListings)
	group.GET("/autocomplete", h.autocomplete)
}

func (h *SearchHandler) searchListings(ctx *gin.Context) {
	params, err := parseSearchParams(ctx, utils.MAX_SEARCH_PAGE_SIZE)
	if err != nil {
		respondError(ctx, err)
		return
	}
	resp, err := h.search.Search(ctx.Request.Context(), params)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result.OkWithData(resp))
}

func (h *SearchHandler) nearbyListings(ctx *gin.Context) {
	params, err := parseSearchParams(ctx, utils.MAX_NEARBY_PAGE_SIZE)
	if err != nil {
		respondError(ctx, err)
		return
	}
	// The nearby feed is meaningless without a position.
	if !params.HasGeo {
		respondError(ctx, service.NewValidationError(service.CodeInvalidCoordinates, "lat and lng are required"))
		return
	}
	resp, err := h.search.Nearby(ctx.Request.Context(), params)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result.OkWithData(resp))
}

func (h *SearchHandler) browseListings(ctx *gin.Context) {
	params, err := parseSearchParams(ctx, utils.MAX_BROWSE_PAGE_SIZE)
	if err != nil {
		respondError(ctx, err)
		return
	}
	resp, err := h.search.Browse(ctx.Request.Context(), params)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result.OkWithData(resp))
}

func (h *SearchHandler) autocomplete(ctx *gin.Context) {
	text := ctx.Query("q")
	limit := utils.ParseLimit(ctx.Query("limit"), 10, utils.MAX_SEARCH_PAGE_SIZE)
	suggestions, source, err := h.search.Autocomplete(ctx.Request.Context(), text, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result.OkWithData(gin.H{
		"suggestions": suggestions,
		"source":      source,
	}))
}

// parseSearchParams coerces the optional knobs (page, limit, rating, prices,
// radius fall back to defaults) and validates the mandatory ones
// (coordinates, cursor tokens are rejected when malformed).
func parseSearchParams(ctx *gin.Context, maxLimit int) (service.SearchParams, error) {
	params := service.SearchParams{
		Query:       ctx.Query("q"),
		Location:    ctx.Query("location"),
		ServiceName: ctx.Query("service"),
		Gender:      ctx.Query("gender"),
		Sort:        ctx.Query("sort"),
		Page:        utils.ParsePage(ctx.Query("page"), 1),
		Limit:       utils.ParseLimit(ctx.Query("limit"), utils.DEFAULT_PAGE_SIZE, maxLimit),
		MinRating:   utils.ParseFloat(ctx.Query("minRating"), 0),
		Cursor:      ctx.Query("cursor"),
		HasOffers:   ctx.Query("offers") == "true",
	}

	params.Category = ctx.Query("category")
	if params.Category == "" {
		params.Category = ctx.Query("type")
	}
	if amenities := ctx.Query("amenities"); amenities != "" {
		for _, a := range strings.Split(amenities, ",") {
			if trimmed := strings.TrimSpace(a); trimmed != "" {
				params.Amenities = append(params.Amenities, trimmed)
			}
		}
	}

	radius := ctx.Query("radius")
	if radius == "" {
		radius = ctx.Query("maxDistance")
	}
	params.RadiusM = utils.ParseFloat(radius, 0)

	minPrice, maxPrice := ctx.Query("minPrice"), ctx.Query("maxPrice")
	if minPrice != "" || maxPrice != "" {
		params.HasPriceFilter = true
		params.MinPrice = utils.ParseFloat(minPrice, 0)
		params.MaxPrice = utils.ParseFloat(maxPrice, 0)
	}

	hasGeo, lat, lng, err := parseCoordinates(ctx.Query("lat"), ctx.Query("lng"))
	if err != nil {
		return params, err
	}
	params.HasGeo = hasGeo
	params.Lat = lat
	params.Lng = lng

	// cursorDistance/cursorId are the split form of the geo cursor token.
	if params.Cursor == "" && ctx.Query("cursorId") != "" {
		id, idErr := strconv.ParseInt(ctx.Query("cursorId"), 10, 64)
		if idErr != nil || id <= 0 {
			return params, service.NewValidationError(service.CodeInvalidCursor, "malformed cursor")
		}
		params.Cursor = service.EncodeCursor(service.Cursor{
			D:  utils.ParseFloat(ctx.Query("cursorDistance"), 0),
			ID: id,
		})
	}
	return params, nil
}

// parseCoordinates validates the lat/lng pair. Coordinates are mandatory
// fields when present: malformed or half-supplied pairs are a client error,
// never coerced.
func parseCoordinates(latStr, lngStr string) (bool, float64, float64, error) {
	if latStr == "" && lngStr == "" {
		return false, 0, 0, nil
	}
	if latStr == "" || lngStr == "" {
		return false, 0, 0, service.NewValidationError(service.CodeInvalidCoordinates, "lat and lng must be supplied together")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return false, 0, 0, service.NewValidationError(service.CodeInvalidCoordinates, "lat is not a number")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return false, 0, 0, service.NewValidationError(service.CodeInvalidCoordinates, "lng is not a number")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return false, 0, 0, service.NewValidationError(service.CodeInvalidCoordinates, "coordinates out of range")
	}
	return true, lat, lng, nil
}

// respondError maps the service error taxonomy onto HTTP statuses.
func respondError(ctx *gin.Context, err error) {
	if ve, ok := service.AsValidation(err); ok {
		ctx.JSON(http.StatusBadRequest, result.FailWithCode(ve.Message, ve.Code))
		return
	}
	if errors.Is(err, service.ErrListingNotFound) {
		ctx.JSON(http.StatusNotFound, result.Fail("listing not found"))
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		ctx.JSON(http.StatusServiceUnavailable, result.Fail("store temporarily unavailable, retry the request"))
		return
	}
	ctx.JSON(http.StatusInternalServerError, result.Fail(err.Error()))
}
