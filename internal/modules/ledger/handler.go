package ledger

import (
	"errors"
	"net/http"
	"strconv"

	"admarket/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, adOwnership gin.HandlerFunc) {
	rg.GET("/ledgers/ad/:adId", adOwnership, h.ListByAd)
	rg.GET("/ledgers/:id", h.Get)
	rg.POST("/ledgers/:id/withdraw", h.Withdraw)
}

// ListByAd godoc
// @Summary      Funding ledgers for one ad
// @Tags         Ledgers
// @Security     BearerAuth
// @Produce      json
// @Param        adId path integer true "Ad ID"
// @Success      200 {array} domain.PaymentTracker
// @Router       /ledgers/ad/{adId} [get]
func (h *Handler) ListByAd(c *gin.Context) {
	adID, err := strconv.ParseInt(c.Param("adId"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid ad id")
		return
	}

	trackers, err := h.service.ListByAd(c.Request.Context(), adID)
	if err != nil {
		response.Internal(c, "failed to load ledgers")
		return
	}
	response.Success(c, http.StatusOK, trackers)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid ledger id")
		return
	}

	t, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "ledger not found")
			return
		}
		response.Internal(c, "failed to load ledger")
		return
	}
	response.Success(c, http.StatusOK, t)
}

// Withdraw godoc
// @Summary      Withdraw an available ledger
// @Description  Legal only from the available state; pending or withdrawn ledgers are rejected unchanged
// @Tags         Ledgers
// @Security     BearerAuth
// @Produce      json
// @Param        id path integer true "Ledger ID"
// @Success      200 {object} domain.PaymentTracker
// @Failure      409 {string} string "invalid state"
// @Router       /ledgers/{id}/withdraw [post]
func (h *Handler) Withdraw(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid ledger id")
		return
	}

	t, err := h.service.Withdraw(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "ledger not found")
		case errors.Is(err, ErrInvalidState):
			response.InvalidState(c, "ledger is not available for withdrawal")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "you don't own this ledger")
		default:
			response.Internal(c, "withdrawal failed")
		}
		return
	}
	response.Success(c, http.StatusOK, t)
}
