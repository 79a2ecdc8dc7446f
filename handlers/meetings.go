package handlers

import (
	"net/http"

	"github.com/apt-tech/connect-backend/internal/meetings"
	"github.com/apt-tech/connect-backend/internal/sessions"
	"github.com/apt-tech/connect-backend/pkg/metrics"
	"github.com/apt-tech/connect-backend/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// MeetingHandler records that a video room was opened. The signaling itself
// happens elsewhere; this endpoint only persists the MeetingRecord.
type MeetingHandler struct {
	svc       *meetings.Service
	verifier  middleware.Verifier
	blacklist *sessions.Blacklist
}

func NewMeetingHandler(svc *meetings.Service, ver middleware.Verifier, bl *sessions.Blacklist) *MeetingHandler {
	return &MeetingHandler{svc: svc, verifier: ver, blacklist: bl}
}

func (h *MeetingHandler) Register(r *gin.Engine) {
	r.POST("/meetings", middleware.AuthMiddleware(h.verifier, h.blacklist), h.Create)
}

func (h *MeetingHandler) Create(c *gin.Context) {
	var req struct {
		RoomID string `json:"roomId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomId is required"})
		return
	}
	claims, _ := c.Get("claims")
	var host string
	if cm, ok := claims.(map[string]interface{}); ok {
		host, _ = cm["sub"].(string)
	}
	if err := h.svc.CreateRoom(c.Request.Context(), req.RoomID, host); err != nil {
		if err == meetings.ErrRoomExists {
			c.JSON(http.StatusConflict, gin.H{"error": "room already exists"})
			return
		}
		metrics.StoreErrors.WithLabelValues("meetings").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"roomId": req.RoomID})
}
