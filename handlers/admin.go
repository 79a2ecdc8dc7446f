package handlers

import (
	"net/http"

	"github.com/apt-tech/connect-backend/internal/activity"
	"github.com/apt-tech/connect-backend/internal/models"
	"github.com/apt-tech/connect-backend/internal/sessions"
	"github.com/apt-tech/connect-backend/internal/users"
	"github.com/apt-tech/connect-backend/pkg/metrics"
	"github.com/apt-tech/connect-backend/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// AdminHandler owns the role-gated /admin routes: the student roster, the
// approval write and the activity log.
type AdminHandler struct {
	users     *users.Service
	activity  *activity.Service
	verifier  middleware.Verifier
	blacklist *sessions.Blacklist
}

func NewAdminHandler(u *users.Service, a *activity.Service, ver middleware.Verifier, bl *sessions.Blacklist) *AdminHandler {
	return &AdminHandler{users: u, activity: a, verifier: ver, blacklist: bl}
}

// Register routes under /admin. Every route requires a verified bearer token
// whose role resolves to admin (claim-first, users document fallback).
func (h *AdminHandler) Register(r *gin.Engine) {
	a := r.Group("/admin",
		middleware.AuthMiddleware(h.verifier, h.blacklist),
		middleware.RequireRole(h.users, models.RoleAdmin),
	)
	a.GET("/students", h.ListStudents)
	a.PATCH("/students/:id/approval", h.SetApproval)
	a.GET("/activities", h.ListActivities)
}

// ListStudents returns the roster projection sorted pending, approved, rejected.
func (h *AdminHandler) ListStudents(c *gin.Context) {
	out, err := h.users.ListStudents(c.Request.Context())
	if err != nil {
		metrics.StoreErrors.WithLabelValues("users").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

// SetApproval records an approve/reject decision for a student account.
func (h *AdminHandler) SetApproval(c *gin.Context) {
	var req struct {
		Approved *bool `json:"approved" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Approved == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "approved is required"})
		return
	}
	err := h.users.SetApproval(c.Request.Context(), c.Param("id"), *req.Approved)
	if err != nil {
		if err == users.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		metrics.StoreErrors.WithLabelValues("users").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "approval updated"})
}

// ListActivities returns the 50 most recent audit entries, newest first,
// timestamps normalized to ISO-8601.
func (h *AdminHandler) ListActivities(c *gin.Context) {
	out, err := h.activity.ListRecent(c.Request.Context())
	if err != nil {
		metrics.StoreErrors.WithLabelValues("activities").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}
