package approval

import (
	"errors"
	"net/http"
	"strconv"

	"admarket/internal/middleware"
	"admarket/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service   *Service
	ownership *middleware.OwnershipChecker
}

func NewHandler(service *Service, ownership *middleware.OwnershipChecker) *Handler {
	return &Handler{service: service, ownership: ownership}
}

// RegisterRoutes mounts the publisher review endpoints. All of them require
// an authenticated publisher who owns the website in the path.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.PUT("/ad-categories/approve/:adId/website/:websiteId", h.ownership.CheckWebsiteOwnership(), h.Approve)
	r.PUT("/ad-categories/revoke/:adId/website/:websiteId", h.ownership.CheckWebsiteOwnership(), h.Revoke)
	r.GET("/websites/:websiteId/pending-ads", h.ownership.CheckWebsiteOwnership(), h.ListPending)
}

// Approve godoc
// @Summary Approve an ad's placement on a website
// @Tags approval
// @Security BearerAuth
// @Produce json
// @Param adId path int true "Ad ID"
// @Param websiteId path int true "Website ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {string} string "selection not found"
// @Router /ad-categories/approve/{adId}/website/{websiteId} [put]
func (h *Handler) Approve(c *gin.Context) {
	h.setApproval(c, true, "ad approved for website")
}

// Revoke godoc
// @Summary Withdraw approval of an ad's placement
// @Tags approval
// @Security BearerAuth
// @Produce json
// @Param adId path int true "Ad ID"
// @Param websiteId path int true "Website ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {string} string "selection not found"
// @Router /ad-categories/revoke/{adId}/website/{websiteId} [put]
func (h *Handler) Revoke(c *gin.Context) {
	h.setApproval(c, false, "ad approval revoked")
}

func (h *Handler) setApproval(c *gin.Context, approved bool, message string) {
	adID, websiteID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var err error
	if approved {
		err = h.service.Approve(c.Request.Context(), adID, websiteID)
	} else {
		err = h.service.Revoke(c.Request.Context(), adID, websiteID)
	}
	if err != nil {
		if errors.Is(err, ErrSelectionNotFound) {
			response.NotFound(c, "selection not found")
			return
		}
		response.Internal(c, "could not update approval")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": message, "ad_id": adID, "website_id": websiteID, "approved": approved})
}

// ListPending godoc
// @Summary List placements awaiting review
// @Tags approval
// @Security BearerAuth
// @Produce json
// @Param websiteId path int true "Website ID"
// @Success 200 {array} domain.AdSelection
// @Router /websites/{websiteId}/pending-ads [get]
func (h *Handler) ListPending(c *gin.Context) {
	websiteID, err := strconv.ParseInt(c.Param("websiteId"), 10, 64)
	if err != nil || websiteID <= 0 {
		response.BadRequest(c, "invalid website id")
		return
	}

	pending, err := h.service.ListPending(c.Request.Context(), websiteID)
	if err != nil {
		response.Internal(c, "could not load pending ads")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"pending": pending, "count": len(pending)})
}

func (h *Handler) pathIDs(c *gin.Context) (adID, websiteID int64, ok bool) {
	adID, err := strconv.ParseInt(c.Param("adId"), 10, 64)
	if err != nil || adID <= 0 {
		response.BadRequest(c, "invalid ad id")
		return 0, 0, false
	}
	websiteID, err = strconv.ParseInt(c.Param("websiteId"), 10, 64)
	if err != nil || websiteID <= 0 {
		response.BadRequest(c, "invalid website id")
		return 0, 0, false
	}
	return adID, websiteID, true
}
