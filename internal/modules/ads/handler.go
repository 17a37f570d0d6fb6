package ads

import (
	"errors"
	"net/http"
	"strconv"

	"admarket/internal/domain"
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

// RegisterRoutes mounts the authenticated inventory endpoints.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/ads", middleware.RequireRole(domain.RoleAdvertiser), h.CreateAd)
	r.GET("/ads/my", h.ListMyAds)
	r.POST("/ads/:adId/selections", middleware.RequireRole(domain.RoleAdvertiser), h.PlaceAd)

	r.POST("/websites", middleware.RequireRole(domain.RolePublisher), h.CreateWebsite)
	r.GET("/websites/my", h.ListMyWebsites)
	r.POST("/websites/:websiteId/categories", h.ownership.CheckWebsiteOwnership(), h.CreateCategory)
	r.GET("/websites/:websiteId/categories", h.ownership.CheckWebsiteOwnership(), h.ListCategories)
}

// CreateAd godoc
// @Summary Create an ad
// @Tags ads
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateAdRequest true "Ad data"
// @Success 201 {object} domain.Ad
// @Router /ads [post]
func (h *Handler) CreateAd(c *gin.Context) {
	var req CreateAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ad, err := h.service.CreateAd(c.Request.Context(), userID(c), req)
	if err != nil {
		response.Internal(c, "could not create ad")
		return
	}
	response.Success(c, http.StatusCreated, ad)
}

func (h *Handler) ListMyAds(c *gin.Context) {
	ads, err := h.service.ListMyAds(c.Request.Context(), userID(c))
	if err != nil {
		response.Internal(c, "could not load ads")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ads": ads, "count": len(ads)})
}

// PlaceAd godoc
// @Summary Place an ad on a website's categories
// @Tags ads
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param adId path int true "Ad ID"
// @Param request body PlaceAdRequest true "Placement"
// @Success 201 {object} domain.AdSelection
// @Failure 409 {string} string "ad already placed on this website"
// @Router /ads/{adId}/selections [post]
func (h *Handler) PlaceAd(c *gin.Context) {
	adID, err := strconv.ParseInt(c.Param("adId"), 10, 64)
	if err != nil || adID <= 0 {
		response.BadRequest(c, "invalid ad id")
		return
	}

	var req PlaceAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sel, err := h.service.PlaceAd(c.Request.Context(), userID(c), adID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "ad or website not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "you do not own this ad")
		case errors.Is(err, ErrCategoryMismatch):
			response.BadRequest(c, "category does not belong to the website")
		case errors.Is(err, ErrAlreadyPlaced):
			response.Error(c, http.StatusConflict, "ALREADY_PLACED", "ad already placed on this website")
		default:
			response.Internal(c, "could not place ad")
		}
		return
	}
	response.Success(c, http.StatusCreated, sel)
}

func (h *Handler) CreateWebsite(c *gin.Context) {
	var req CreateWebsiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	w, err := h.service.CreateWebsite(c.Request.Context(), userID(c), req)
	if err != nil {
		response.Internal(c, "could not create website")
		return
	}
	response.Success(c, http.StatusCreated, w)
}

func (h *Handler) ListMyWebsites(c *gin.Context) {
	sites, err := h.service.ListMyWebsites(c.Request.Context(), userID(c))
	if err != nil {
		response.Internal(c, "could not load websites")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"websites": sites, "count": len(sites)})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	websiteID, err := strconv.ParseInt(c.Param("websiteId"), 10, 64)
	if err != nil || websiteID <= 0 {
		response.BadRequest(c, "invalid website id")
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), websiteID, req)
	if err != nil {
		response.Internal(c, "could not create category")
		return
	}
	response.Success(c, http.StatusCreated, category)
}

func (h *Handler) ListCategories(c *gin.Context) {
	websiteID, err := strconv.ParseInt(c.Param("websiteId"), 10, 64)
	if err != nil || websiteID <= 0 {
		response.BadRequest(c, "invalid website id")
		return
	}

	categories, err := h.service.ListCategories(c.Request.Context(), websiteID)
	if err != nil {
		response.Internal(c, "could not load categories")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"categories": categories, "count": len(categories)})
}

func userID(c *gin.Context) int64 {
	v, _ := c.Get("user_id")
	id, _ := v.(int64)
	return id
}
