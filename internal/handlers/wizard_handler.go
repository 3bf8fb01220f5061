package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trefstays/stays-backend/internal/models"
	"github.com/trefstays/stays-backend/internal/services"
	"github.com/trefstays/stays-backend/internal/wizard"
)

// WizardHandler serves the listing wizard API
type WizardHandler struct {
	registry      *wizard.Registry
	service       *services.WizardService
	options       wizard.Options
	maxImageBytes int64
	logger        *logrus.Logger
}

// NewWizardHandler creates a new wizard handler
func NewWizardHandler(
	registry *wizard.Registry,
	service *services.WizardService,
	maxImages int,
	maxImageBytes int64,
	logger *logrus.Logger,
) *WizardHandler {
	return &WizardHandler{
		registry:      registry,
		service:       service,
		options:       wizard.ListingOptions(maxImages),
		maxImageBytes: maxImageBytes,
		logger:        logger,
	}
}

// RegisterRoutes mounts the wizard routes on rg. Session creation and image
// uploads, the two routes that allocate memory, go through limiter.
func (h *WizardHandler) RegisterRoutes(rg *gin.RouterGroup, limiter gin.HandlerFunc) {
	w := rg.Group("/wizard")
	w.GET("/options", h.Options)
	w.POST("", limiter, h.Create)
	w.GET("/:id", h.Get)
	w.DELETE("/:id", h.Delete)
	w.POST("/:id/mode", h.SetMode)
	w.POST("/:id/role", h.Choose)
	w.PATCH("/:id/account", h.UpdateAccount)
	w.PATCH("/:id/listing", h.UpdateListing)
	w.POST("/:id/amenities/toggle", h.ToggleAmenity)
	w.POST("/:id/amenities/custom", h.AddCustomAmenity)
	w.DELETE("/:id/amenities/custom/:amenity", h.RemoveCustomAmenity)
	w.POST("/:id/images", limiter, h.AddImages)
	w.GET("/:id/images/:ref", h.PreviewImage)
	w.DELETE("/:id/images/:ref", h.RemoveImage)
	w.PUT("/:id/images/main", h.SetMainImage)
	w.POST("/:id/next", h.Next)
	w.POST("/:id/back", h.Back)
	w.POST("/:id/complete", h.Complete)
	w.POST("/:id/signin", h.SignIn)
}

type modeRequest struct {
	Mode wizard.Mode `json:"mode" binding:"required"`
}

type roleRequest struct {
	Role wizard.Role `json:"role"`
}

type amenityRequest struct {
	Amenity string `json:"amenity" binding:"required"`
}

type mainImageRequest struct {
	Index *int `json:"index" binding:"required"`
}

func (h *WizardHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "not_found", "Wizard session not found", "SESSION_NOT_FOUND")
		return uuid.Nil, false
	}
	return id, true
}

// respond writes view on success, or maps a wizard error to its status
func (h *WizardHandler) respond(c *gin.Context, view wizard.View, err error) {
	if err == nil {
		c.JSON(http.StatusOK, view)
		return
	}

	var status int
	var errCode, code string
	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		respondError(c, http.StatusNotFound, "not_found", "Wizard session not found", "SESSION_NOT_FOUND")
		return
	case errors.Is(err, wizard.ErrImageNotFound):
		respondError(c, http.StatusNotFound, "not_found", "Staged image not found", "IMAGE_NOT_FOUND")
		return
	case errors.Is(err, wizard.ErrRegistryFull):
		c.Header("Retry-After", "60")
		respondError(c, http.StatusServiceUnavailable, "unavailable", "Too many sign ups in progress. Please try again shortly.", "TOO_MANY_SESSIONS")
		return
	case errors.Is(err, wizard.ErrBusy):
		status, errCode, code = http.StatusConflict, "busy", "SUBMISSION_IN_PROGRESS"
	case errors.Is(err, wizard.ErrInvalidTransition):
		status, errCode, code = http.StatusConflict, "invalid_transition", "INVALID_TRANSITION"
	case errors.Is(err, wizard.ErrInvalidMode):
		status, errCode, code = http.StatusBadRequest, "invalid_request", "INVALID_MODE"
	case errors.Is(err, wizard.ErrStepInvalid), errors.Is(err, wizard.ErrInvalidRole),
		errors.Is(err, wizard.ErrCapacity), errors.Is(err, wizard.ErrNotImage):
		status, errCode, code = http.StatusUnprocessableEntity, "validation_failed", "VALIDATION_FAILED"
	default:
		h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Wizard request failed")
		respondError(c, http.StatusInternalServerError, "internal_error", "Something went wrong", "INTERNAL_ERROR")
		return
	}

	body := ErrorResponse{Error: errCode, Message: err.Error(), Code: code}
	if view.ID != uuid.Nil {
		body.Session = view
	}
	c.AbortWithStatusJSON(status, body)
}

// update runs fn on the session named in the path and writes the result
func (h *WizardHandler) update(c *gin.Context, fn func(*wizard.Session) error) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	view, err := h.registry.Update(id, fn)
	h.respond(c, view, err)
}

// Options lists property types, amenities, countries and currencies
// @Summary Wizard options
// @Tags Wizard
// @Produce json
// @Router /wizard/options [get]
func (h *WizardHandler) Options(c *gin.Context) {
	c.JSON(http.StatusOK, h.options)
}

// Create starts a new wizard session
// @Summary Start wizard
// @Tags Wizard
// @Produce json
// @Success 201 {object} wizard.View
// @Router /wizard [post]
func (h *WizardHandler) Create(c *gin.Context) {
	_, view, err := h.registry.Create()
	if err != nil {
		h.respond(c, view, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Get returns the current state of a session
func (h *WizardHandler) Get(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	view, err := h.registry.Get(id)
	h.respond(c, view, err)
}

// Delete abandons a session
func (h *WizardHandler) Delete(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	if err := h.registry.Delete(id); err != nil {
		h.respond(c, wizard.View{}, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WizardHandler) SetMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request body", "INVALID_REQUEST")
		return
	}
	h.update(c, func(s *wizard.Session) error { return s.SetMode(req.Mode) })
}

func (h *WizardHandler) Choose(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request body", "INVALID_REQUEST")
		return
	}
	h.update(c, func(s *wizard.Session) error { return s.Choose(req.Role) })
}

func (h *WizardHandler) UpdateAccount(c *gin.Context) {
	var patch wizard.AccountPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request body", "INVALID_REQUEST")
		return
	}
	h.update(c, func(s *wizard.Session) error {
		s.UpdateAccount(patch)
		return nil
	})
}

func (h *WizardHandler) UpdateListing(c *gin.Context) {
	var patch wizard.ListingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request body", "INVALID_REQUEST")
		return
	}
	h.update(c, func(s *wizard.Session) error {
		s.UpdateListing(patch)
		return nil
	})
}

func (h *WizardHandler) ToggleAmenity(c *gin.Context) {
	var req amenityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Amenity is required", "INVALID_REQUEST")
		return
	}
	h.update(c, func(s *wizard.Session) error {
		s.ToggleAmenity(req.Amenity)
		return nil
	})
}

func (h *WizardHandler) AddCustomAmenity(c *gin.Context) {
	var req amenityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Amenity is required", "INVALID_REQUEST")
		return
	}
	h.update(c, func(s *wizard.Session) error {
		s.AddCustomAmenity(req.Amenity)
		return nil
	})
}

func (h *WizardHandler) RemoveCustomAmenity(c *gin.Context) {
	amenity := c.Param("amenity")
	h.update(c, func(s *wizard.Session) error {
		s.RemoveCustomAmenity(amenity)
		return nil
	})
}

// AddImages stages the images of a multipart upload (field "images" or "images[]")
// @Summary Stage images
// @Tags Wizard
// @Accept multipart/form-data
// @Produce json
// @Failure 422 {object} ErrorResponse
// @Router /wizard/{id}/images [post]
func (h *WizardHandler) AddImages(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Expected a multipart upload", "INVALID_REQUEST")
		return
	}
	headers := append(form.File["images"], form.File["images[]"]...)
	if len(headers) == 0 {
		respondError(c, http.StatusBadRequest, "invalid_request", "No images uploaded", "INVALID_REQUEST")
		return
	}

	files := make([]wizard.ImageFile, 0, len(headers))
	for _, fh := range headers {
		if h.maxImageBytes > 0 && fh.Size > h.maxImageBytes {
			respondError(c, http.StatusRequestEntityTooLarge, "file_too_large",
				fmt.Sprintf("%s exceeds the %d byte limit", fh.Filename, h.maxImageBytes), "IMAGE_TOO_LARGE")
			return
		}
		data, err := readUpload(fh)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid_request", "Could not read uploaded file", "INVALID_REQUEST")
			return
		}
		files = append(files, wizard.ImageFile{Filename: fh.Filename, Data: data})
	}

	view, err := h.registry.Update(id, func(s *wizard.Session) error { return s.AddImages(files) })
	h.respond(c, view, err)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// PreviewImage streams a staged image back to the client for preview
func (h *WizardHandler) PreviewImage(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	img, err := h.registry.Image(id, c.Param("ref"))
	if err != nil {
		h.respond(c, wizard.View{}, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, img.ContentType, img.Data)
}

func (h *WizardHandler) RemoveImage(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("ref"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Image index must be a number", "INVALID_REQUEST")
		return
	}
	h.update(c, func(s *wizard.Session) error {
		if !s.RemoveImage(index) {
			return wizard.ErrImageNotFound
		}
		return nil
	})
}

func (h *WizardHandler) SetMainImage(c *gin.Context) {
	var req mainImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Image index is required", "INVALID_REQUEST")
		return
	}
	h.update(c, func(s *wizard.Session) error {
		if !s.SetMainImage(*req.Index) {
			return wizard.ErrImageNotFound
		}
		return nil
	})
}

// Next validates the current step and advances
func (h *WizardHandler) Next(c *gin.Context) {
	h.update(c, (*wizard.Session).Next)
}

// Back returns to the previous step
func (h *WizardHandler) Back(c *gin.Context) {
	h.update(c, (*wizard.Session).Back)
}

// Complete submits the wizard and returns the signed-in session
// @Summary Complete sign up
// @Tags Wizard
// @Produce json
// @Success 201 {object} services.CompleteResult
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /wizard/{id}/complete [post]
func (h *WizardHandler) Complete(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	out, view, err := h.service.Complete(c.Request.Context(), id)
	if err != nil {
		if view.ID != uuid.Nil && view.Errors.General() != "" {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "signup_failed",
				Message: view.Errors.General(),
				Code:    "SIGNUP_FAILED",
				Session: view,
			})
			return
		}
		h.respond(c, view, err)
		return
	}

	c.JSON(http.StatusCreated, out)
}

// SignIn authenticates from a session in sign-in mode
func (h *WizardHandler) SignIn(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request body", "INVALID_REQUEST")
		return
	}

	sess, view, err := h.service.SignIn(c.Request.Context(), id, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_credentials",
				Message: view.Errors.General(),
				Code:    "INVALID_CREDENTIALS",
				Session: view,
			})
		case view.Errors.General() != "":
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "signin_failed",
				Message: view.Errors.General(),
				Code:    "SIGNIN_FAILED",
				Session: view,
			})
		default:
			h.respond(c, view, err)
		}
		return
	}

	c.JSON(http.StatusOK, sess)
}
