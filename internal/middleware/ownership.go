package middleware

import (
	"net/http"
	"strconv"

	"admarket/internal/pkg/response"
	"admarket/internal/repository"

	"github.com/gin-gonic/gin"
)

// OwnershipChecker verifies that the caller owns the resource named in the
// URL before a mutating handler runs.
type OwnershipChecker struct {
	websiteRepo *repository.WebsiteRepository
	adRepo      *repository.AdRepository
}

func NewOwnershipChecker(websiteRepo *repository.WebsiteRepository, adRepo *repository.AdRepository) *OwnershipChecker {
	return &OwnershipChecker{websiteRepo: websiteRepo, adRepo: adRepo}
}

// CheckWebsiteOwnership expects the website ID in URL param "websiteId".
func (oc *OwnershipChecker) CheckWebsiteOwnership() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt64("user_id")
		if userID == 0 {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			c.Abort()
			return
		}

		websiteID, err := strconv.ParseInt(c.Param("websiteId"), 10, 64)
		if err != nil {
			response.BadRequest(c, "Invalid website ID")
			c.Abort()
			return
		}

		site, err := oc.websiteRepo.GetByID(c.Request.Context(), websiteID)
		if err != nil {
			response.NotFound(c, "Website not found")
			c.Abort()
			return
		}

		if site.OwnerID != userID {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this website")
			c.Abort()
			return
		}

		c.Next()
	}
}

// CheckAdOwnership expects the ad ID in URL param "adId".
func (oc *OwnershipChecker) CheckAdOwnership() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt64("user_id")
		if userID == 0 {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			c.Abort()
			return
		}

		adID, err := strconv.ParseInt(c.Param("adId"), 10, 64)
		if err != nil {
			response.BadRequest(c, "Invalid ad ID")
			c.Abort()
			return
		}

		ad, err := oc.adRepo.GetByID(c.Request.Context(), adID)
		if err != nil {
			response.NotFound(c, "Ad not found")
			c.Abort()
			return
		}

		if ad.UserID != userID {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this ad")
			c.Abort()
			return
		}

		c.Next()
	}
}
