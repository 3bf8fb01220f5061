package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trefstays/stays-backend/internal/database"
	"github.com/trefstays/stays-backend/internal/middleware"
	"github.com/trefstays/stays-backend/internal/models"
	"github.com/trefstays/stays-backend/internal/services"
)

// ListingHandler serves published listings and an owner's own listings
type ListingHandler struct {
	listingService *services.ListingService
	logger         *logrus.Logger
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listingService *services.ListingService, logger *logrus.Logger) *ListingHandler {
	return &ListingHandler{listingService: listingService, logger: logger}
}

// Search lists published properties
// @Summary Search properties
// @Tags Properties
// @Produce json
// @Param city query string false "City"
// @Param country query string false "Country code"
// @Param property_type query string false "Property type"
// @Param min_guests query int false "Minimum guests"
// @Param max_price query number false "Maximum nightly price in the display currency"
// @Param currency query string false "Display currency"
// @Router /properties [get]
func (h *ListingHandler) Search(c *gin.Context) {
	filter := models.PropertyFilter{
		City:         c.Query("city"),
		Country:      c.Query("country"),
		PropertyType: c.Query("property_type"),
	}

	var err error
	if filter.MinGuests, err = queryInt(c, "min_guests"); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "min_guests must be a number", "INVALID_QUERY")
		return
	}
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "limit must be a number", "INVALID_QUERY")
		return
	}
	if filter.Offset, err = queryInt(c, "offset"); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "offset must be a number", "INVALID_QUERY")
		return
	}
	if raw := c.Query("max_price"); raw != "" {
		if filter.MaxPrice, err = strconv.ParseFloat(raw, 64); err != nil {
			respondError(c, http.StatusBadRequest, "invalid_request", "max_price must be a number", "INVALID_QUERY")
			return
		}
	}

	results, err := h.listingService.Search(c.Request.Context(), filter, c.Query("currency"))
	if err != nil {
		h.logger.WithError(err).Error("Property search failed")
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to search properties", "INTERNAL_ERROR")
		return
	}

	c.JSON(http.StatusOK, gin.H{"properties": results, "count": len(results)})
}

// Get returns a published property with its photos
func (h *ListingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "not_found", "Property not found", "PROPERTY_NOT_FOUND")
		return
	}

	detail, err := h.listingService.Detail(c.Request.Context(), id, c.Query("currency"))
	if err != nil {
		if errors.Is(err, database.ErrPropertyNotFound) {
			respondError(c, http.StatusNotFound, "not_found", "Property not found", "PROPERTY_NOT_FOUND")
			return
		}
		h.logger.WithError(err).WithField("property_id", id).Error("Failed to load property")
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to load property", "INTERNAL_ERROR")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Mine lists the caller's own properties in every status
func (h *ListingHandler) Mine(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "Sign in required", "MISSING_SESSION")
		return
	}

	properties, err := h.listingService.ListByOwner(c.Request.Context(), sess.AccountID)
	if err != nil {
		h.logger.WithError(err).WithField("account_id", sess.AccountID).Error("Failed to list owner properties")
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to list properties", "INTERNAL_ERROR")
		return
	}

	c.JSON(http.StatusOK, gin.H{"properties": properties})
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
