package stats

import (
	"context"
	"net/http"
	"strconv"

	"admarket/internal/domain"
	jwtsvc "admarket/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // Allow all origins (configure in prod)
}

type adReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Ad, error)
}

type Handler struct {
	hub     *Hub
	jwt     *jwtsvc.Service
	ads     adReader
	loggerf func(format string, args ...interface{})
}

func NewHandler(hub *Hub, jwt *jwtsvc.Service, ads adReader, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(format string, args ...interface{}) {}
	}
	return &Handler{hub: hub, jwt: jwt, ads: ads, loggerf: loggerf}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws/ads/:adId/stats", h.Stream)
}

// Stream upgrades to a websocket and pushes live counter updates for one ad.
// Browsers cannot set headers on websocket dials, so the token rides in the
// query string. Only the ad's owner may subscribe.
func (h *Handler) Stream(c *gin.Context) {
	adID, err := strconv.ParseInt(c.Param("adId"), 10, 64)
	if err != nil || adID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ad id"})
		return
	}

	claims, err := h.jwt.ValidateToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	ad, err := h.ads.GetByID(c.Request.Context(), adID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ad not found"})
		return
	}
	if ad.UserID != claims.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your ad"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.loggerf("level=error msg=ws_upgrade_failed ad_id=%d err=%v", adID, err)
		return
	}

	h.hub.Register(adID, conn)
	h.loggerf("level=info msg=stats_subscribed ad_id=%d user_id=%d", adID, claims.UserID)

	// Send the current counters immediately so the dashboard does not sit
	// empty until the next beacon.
	_ = conn.WriteJSON(StatsEvent{AdID: ad.ID, Views: ad.Views, Clicks: ad.Clicks})

	go func() {
		defer h.hub.Unregister(adID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
