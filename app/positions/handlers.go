package positions

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/betbet/exchange/app/api"
	"github.com/betbet/exchange/internal/validator"
	"github.com/betbet/exchange/models"
)

// Handler handles HTTP requests for positions
type Handler struct {
	service Service
	config  *Config
}

// NewHandler creates a new positions handler
func NewHandler(service Service, config *Config) *Handler {
	return &Handler{
		service: service,
		config:  config,
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
	case errors.Is(err, models.ErrRecordNotFound),
		errors.Is(err, models.ErrOutcomeNotInMarket):
		api.NotFoundResponse(c, entityName)
	case errors.Is(err, models.ErrMarketNotOpen):
		api.ConflictResponse(c, err.Error())
	case errors.Is(err, models.ErrInvalidStake),
		errors.Is(err, models.ErrInvalidPositionType):
		api.BadRequestResponse(c, err.Error())
	default:
		api.InternalErrorResponse(c, "Failed to "+operation)
	}
}

// PlacePosition places a back or lay position on a market outcome
func (h *Handler) PlacePosition(c *gin.Context) {
	marketID, ok := h.parseUUIDFromParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	var req PlacePositionRequest
	if !h.bindJSONRequest(c, &req) {
		return
	}

	v := validator.New()
	if !req.Validate(v, h.config) {
		api.ValidationErrorResponse(c, validator.NewValidationError("Validation failed", v.Errors))
		return
	}

	position, err := h.service.PlacePosition(c.Request.Context(), userID, marketID, &req)
	if err != nil {
		h.handleServiceError(c, err, "Market", "place position")
		return
	}

	api.CreatedResponse(c, "Position placed successfully", position)
}

// GetOrderBook returns the aggregated order book for one outcome
func (h *Handler) GetOrderBook(c *gin.Context) {
	marketID, ok := h.parseUUIDFromParam(c, "id")
	if !ok {
		return
	}

	outcomeID, err := uuid.Parse(c.Query("outcome_id"))
	if err != nil {
		api.BadRequestResponse(c, "Invalid outcome_id format")
		return
	}

	book, err := h.service.GetOrderBook(c.Request.Context(), marketID, outcomeID)
	if err != nil {
		h.handleServiceError(c, err, "Outcome", "fetch order book")
		return
	}

	api.SuccessResponse(c, 200, "Order book retrieved successfully", book)
}
