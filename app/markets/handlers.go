package markets

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/betbet/exchange/app/api"
	"github.com/betbet/exchange/internal/sanitizer"
	"github.com/betbet/exchange/internal/validator"
	"github.com/betbet/exchange/models"
)

// Handler handles HTTP requests for markets
type Handler struct {
	service   Service
	config    *Config
	sanitizer sanitizer.HTMLStripperer
}

// NewHandler creates a new market handler
func NewHandler(service Service, config *Config, stripper sanitizer.HTMLStripperer) *Handler {
	return &Handler{
		service:   service,
		config:    config,
		sanitizer: stripper,
	}
}

// parseUUIDFromParam extracts and validates UUID from path parameter
func (h *Handler) parseUUIDFromParam(c *gin.Context, paramName string) (uuid.UUID, bool) {
	param := c.Param(paramName)
	id, err := uuid.Parse(param)
	if err != nil {
		api.BadRequestResponse(c, "Invalid "+paramName+" format")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSONRequest binds JSON request body to the provided struct
func (h *Handler) bindJSONRequest(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		api.BadRequestResponse(c, err.Error())
		return false
	}
	return true
}

// callerID returns the authenticated caller's identity from the
// request context.
func (h *Handler) callerID(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		api.UnauthorizedResponse(c)
		return "", false
	}
	return userID, true
}

// handleServiceError handles common service errors with appropriate responses
func (h *Handler) handleServiceError(c *gin.Context, err error, entityName, operation string) {
	switch {
	case errors.Is(err, models.ErrRecordNotFound):
		api.NotFoundResponse(c, entityName)
	case errors.Is(err, models.ErrForbidden):
		api.ForbiddenResponse(c, "Only the market creator may perform this action")
	case errors.Is(err, models.ErrMarketNotOpen),
		errors.Is(err, models.ErrMarketNotClosed),
		errors.Is(err, models.ErrMarketAlreadySettled):
		api.ConflictResponse(c, err.Error())
	case h.isValidationError(err):
		api.BadRequestResponse(c, err.Error())
	default:
		api.InternalErrorResponse(c, "Failed to "+operation)
	}
}

// CreateMarket creates a market with its outcomes
func (h *Handler) CreateMarket(c *gin.Context) {
	creatorID, ok := h.callerID(c)
	if !ok {
		return
	}

	var req CreateMarketRequest
	if !h.bindJSONRequest(c, &req) {
		return
	}

	v := validator.New()
	if !req.Validate(v, h.sanitizer, h.config) {
		api.ValidationErrorResponse(c, validator.NewValidationError("Validation failed", v.Errors))
		return
	}

	market, err := h.service.CreateMarket(c.Request.Context(), creatorID, &req)
	if err != nil {
		h.handleServiceError(c, err, "Market", "create market")
		return
	}

	api.CreatedResponse(c, "Market created successfully", market)
}

// GetMarketByID returns full market details with outcomes and live odds
func (h *Handler) GetMarketByID(c *gin.Context) {
	id, ok := h.parseUUIDFromParam(c, "id")
	if !ok {
		return
	}

	market, err := h.service.GetMarketByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Market", "fetch market")
		return
	}

	api.SuccessResponse(c, 200, "Market retrieved successfully", market)
}

// GetMarketOdds returns the current odds per outcome
func (h *Handler) GetMarketOdds(c *gin.Context) {
	id, ok := h.parseUUIDFromParam(c, "id")
	if !ok {
		return
	}

	odds, err := h.service.GetMarketOdds(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Market", "fetch odds")
		return
	}

	api.SuccessResponse(c, 200, "Market odds retrieved successfully", odds)
}

// CloseMarket closes an open market ahead of its closing time
func (h *Handler) CloseMarket(c *gin.Context) {
	id, ok := h.parseUUIDFromParam(c, "id")
	if !ok {
		return
	}
	callerID, ok := h.callerID(c)
	if !ok {
		return
	}

	market, err := h.service.CloseMarket(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleServiceError(c, err, "Market", "close market")
		return
	}

	api.SuccessResponse(c, 200, "Market closed successfully", market)
}

// ResolveMarket resolves a closed market and settles winning positions
func (h *Handler) ResolveMarket(c *gin.Context) {
	id, ok := h.parseUUIDFromParam(c, "id")
	if !ok {
		return
	}
	callerID, ok := h.callerID(c)
	if !ok {
		return
	}

	var req ResolveMarketRequest
	if !h.bindJSONRequest(c, &req) {
		return
	}

	market, err := h.service.ResolveMarket(c.Request.Context(), id, callerID, &req)
	if err != nil {
		h.handleServiceError(c, err, "Market", "resolve market")
		return
	}

	api.SuccessResponse(c, 200, "Market resolved successfully", market)
}

// CancelMarket voids a market and its open positions
func (h *Handler) CancelMarket(c *gin.Context) {
	id, ok := h.parseUUIDFromParam(c, "id")
	if !ok {
		return
	}
	callerID, ok := h.callerID(c)
	if !ok {
		return
	}

	market, err := h.service.CancelMarket(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleServiceError(c, err, "Market", "cancel market")
		return
	}

	api.SuccessResponse(c, 200, "Market cancelled successfully", market)
}

func (h *Handler) isValidationError(err error) bool {
	return errors.Is(err, models.ErrInvalidMarketTitle) ||
		errors.Is(err, models.ErrInvalidMarketType) ||
		errors.Is(err, models.ErrInvalidClosesAt) ||
		errors.Is(err, models.ErrInvalidOutcomeText) ||
		errors.Is(err, models.ErrInvalidStake)
}
