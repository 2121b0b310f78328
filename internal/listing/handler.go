// File: internal/listing/handler.go
package listing

import (
	"errors"
	"time"

	"flipradar_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for listing handlers.
type Handler struct {
	repo   Repository
	logger *zap.Logger
}

// NewHandler creates a new listing handler.
func NewHandler(repo Repository, logger *zap.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// RegisterRoutes sets up the routes for listing operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	listingGroup := router.Group("/listings")
	{
		listingGroup.GET("/top", h.getTopListings)
	}
}

func (h *Handler) getTopListings(c *gin.Context) {
	var query TopListingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid query parameters: "+err.Error()))
		return
	}

	since := time.Now().UTC().Add(-time.Duration(query.Hours) * time.Hour)
	listings, err := h.repo.TopRanked(c.Request.Context(), since, query.Limit)
	if err != nil {
		h.logger.Error("Failed to fetch top listings", zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not fetch listings."))
		return
	}

	responses := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		responses = append(responses, ToListingResponse(&listings[i]))
	}
	common.RespondOK(c, "Top listings retrieved successfully.", responses)
}
