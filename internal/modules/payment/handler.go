package payment

import (
	"errors"
	"io"
	"net/http"

	"admarket/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf}
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/payment/init", h.Init)
	rg.POST("/payment/cancel", h.Cancel)
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/payment/verify", h.Verify)
	rg.POST("/payment/check-direct", h.CheckDirect)
	rg.GET("/payment/poll-status", h.PollStatus)
	rg.POST("/payment/webhook", h.Webhook)
}

// Init godoc
// @Summary      Initialize a funding transaction
// @Tags         Payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body InitTransactionRequest true "Funding payload"
// @Success      200 {object} InitTransactionResponse
// @Failure      400 {object} ErrorResponse
// @Router       /payment/init [post]
func (h *Handler) Init(c *gin.Context) {
	var req InitTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.InitTransaction(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		if errors.Is(err, ErrNotAdOwner) {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
			return
		}
		h.loggerf("level=error msg=payment init failed request=%+v err=%v", req, err)
		response.Internal(c, "failed to initialize payment")
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Verify godoc
// @Summary      Synchronous post-redirect verification
// @Description  Verifies a payment with the gateway by transaction id; idempotent
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Param        body body VerifyRequest true "Gateway transaction id"
// @Success      200 {object} VerifyResponse
// @Router       /payment/verify [post]
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.VerifySync(c.Request.Context(), req.TransactionID)
	h.respondVerification(c, resp, err)
}

// CheckDirect godoc
// @Summary      Verify a payment by its tx_ref
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Param        body body CheckDirectRequest true "Idempotency reference"
// @Success      200 {object} VerifyResponse
// @Router       /payment/check-direct [post]
func (h *Handler) CheckDirect(c *gin.Context) {
	var req CheckDirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.CheckDirect(c.Request.Context(), req.TxRef)
	h.respondVerification(c, resp, err)
}

// PollStatus godoc
// @Summary      Client poll for transaction status
// @Description  Read-only; never advances the transaction state
// @Tags         Payments
// @Produce      json
// @Param        tx_ref query string true "Idempotency reference"
// @Success      200 {object} PollStatusResponse
// @Router       /payment/poll-status [get]
func (h *Handler) PollStatus(c *gin.Context) {
	txRef := c.Query("tx_ref")
	if txRef == "" {
		response.BadRequest(c, "tx_ref is required")
		return
	}

	status, err := h.service.PollStatus(c.Request.Context(), txRef)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			response.NotFound(c, "transaction not found")
			return
		}
		response.Internal(c, "failed to read status")
		return
	}
	c.JSON(http.StatusOK, PollStatusResponse{Status: status})
}

// Webhook godoc
// @Summary      Gateway webhook notification
// @Description  At-least-once delivery; duplicate events are no-ops
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Success      200 {object} VerifyResponse
// @Failure      401 {string} string "unauthorized"
// @Router       /payment/webhook [post]
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "unreadable body")
		return
	}
	signature := c.GetHeader("verif-hash")

	resp, err := h.service.HandleWebhook(c.Request.Context(), signature, body)
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			h.loggerf("level=warn msg=webhook rejected reason=bad_signature client_ip=%s", c.ClientIP())
			c.String(http.StatusUnauthorized, "unauthorized")
			return
		}
		if errors.Is(err, ErrTransactionNotFound) {
			// Acknowledge unknown refs so the gateway stops redelivering.
			h.loggerf("level=warn msg=webhook for unknown transaction client_ip=%s", c.ClientIP())
			c.JSON(http.StatusOK, VerifyResponse{Success: false, Message: "unknown transaction"})
			return
		}
		h.respondVerification(c, resp, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary      Explicitly cancel an in-flight transaction
// @Tags         Payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body CancelRequest true "Idempotency reference"
// @Success      200 {object} VerifyResponse
// @Router       /payment/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), req.TxRef)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			response.NotFound(c, "transaction not found")
			return
		}
		response.Internal(c, "failed to cancel transaction")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// respondVerification keeps the payment path's promise: the caller always
// gets a definite outcome, and transient gateway failures never disturb the
// stored transaction.
func (h *Handler) respondVerification(c *gin.Context, resp *VerifyResponse, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, ErrGatewayUnavailable):
		c.JSON(http.StatusOK, VerifyResponse{Success: false, Message: "unable to verify payment, please retry"})
	case errors.Is(err, ErrAmountMismatch):
		c.JSON(http.StatusOK, VerifyResponse{Success: false, Message: "payment amount mismatch"})
	case errors.Is(err, ErrTransactionNotFound):
		response.NotFound(c, "transaction not found")
	default:
		h.loggerf("level=error msg=verification failed err=%v", err)
		response.Internal(c, "verification failed")
	}
}
