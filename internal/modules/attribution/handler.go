package attribution

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(format string, args ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf}
}

// RegisterRoutes mounts the public beacon endpoints. They are called from
// third-party pages, so they carry no auth and sit behind the permissive
// widget CORS policy.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/ads/:adId/view", h.RecordView)
	r.POST("/ads/:adId/click", h.RecordClick)
	r.GET("/ads/:adId/go", h.ClickThrough)
}

// RecordView godoc
// @Summary Record one ad view
// @Tags attribution
// @Produce json
// @Param adId path int true "Ad ID"
// @Success 200 {object} map[string]int64
// @Failure 404 {object} map[string]string
// @Router /ads/{adId}/view [post]
func (h *Handler) RecordView(c *gin.Context) {
	adID, ok := h.adID(c)
	if !ok {
		return
	}

	views, err := h.service.RecordView(c.Request.Context(), adID)
	if err != nil {
		h.fail(c, adID, "view", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"views": views})
}

// RecordClick godoc
// @Summary Record one ad click
// @Tags attribution
// @Produce json
// @Param adId path int true "Ad ID"
// @Success 200 {object} map[string]int64
// @Failure 404 {object} map[string]string
// @Router /ads/{adId}/click [post]
func (h *Handler) RecordClick(c *gin.Context) {
	adID, ok := h.adID(c)
	if !ok {
		return
	}

	clicks, err := h.service.RecordClick(c.Request.Context(), adID)
	if err != nil {
		h.fail(c, adID, "click", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clicks": clicks})
}

// ClickThrough counts the click and forwards the visitor to the advertiser's
// site. Used as the anchor href inside the embedded fragment.
func (h *Handler) ClickThrough(c *gin.Context) {
	adID, ok := h.adID(c)
	if !ok {
		return
	}

	target, err := h.service.ClickThrough(c.Request.Context(), adID)
	if err != nil {
		h.fail(c, adID, "click-through", err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

func (h *Handler) adID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("adId"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ad id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, adID int64, op string, err error) {
	if errors.Is(err, ErrAdNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "ad not found"})
		return
	}
	h.loggerf("level=error msg=attribution_failed op=%s ad_id=%d err=%v", op, adID, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
