package api

import (
	"net/http"
	"strconv"

	"alcyxob/workout-telemetry/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the read-only /db views.
type AdminHandler struct {
	adminService service.AdminService
	queryService service.QueryService
}

func NewAdminHandler(adminService service.AdminService, queryService service.QueryService) *AdminHandler {
	return &AdminHandler{adminService: adminService, queryService: queryService}
}

func limitParam(c *gin.Context) int64 {
	limit, err := strconv.ParseInt(c.Query("limit"), 10, 64)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// Health godoc
// @Summary Database health
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} gin.H "health"
// @Failure 503 {object} gin.H "Database unreachable"
// @Router /db/health [get]
func (h *AdminHandler) Health(c *gin.Context) {
	report := h.adminService.Health(c.Request.Context())
	status := http.StatusOK
	if report.Error != "" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"success": report.Error == "", "health": report})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"stats": stats})
}

func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.adminService.Users(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// Sessions godoc
// @Summary Latest sessions, pending ones included
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of sessions"
// @Success 200 {object} gin.H "sessions and count"
// @Router /db/sessions [get]
func (h *AdminHandler) Sessions(c *gin.Context) {
	sessions, err := h.adminService.Sessions(c.Request.Context(), limitParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

func (h *AdminHandler) Session(c *gin.Context) {
	session, err := h.queryService.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"session": session})
}

// Reps godoc
// @Summary Reps of one session, or the latest reps overall
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param sessionId query string false "Session ID"
// @Param limit query int false "Maximum number of reps"
// @Success 200 {object} gin.H "reps and count"
// @Router /db/reps [get]
func (h *AdminHandler) Reps(c *gin.Context) {
	reps, err := h.adminService.Reps(c.Request.Context(), c.Query("sessionId"), limitParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"reps": reps, "count": len(reps)})
}

func (h *AdminHandler) Athletes(c *gin.Context) {
	athletes, err := h.adminService.Athletes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"athletes": athletes, "count": len(athletes)})
}
