package api

import (
	"net/http"

	"alcyxob/workout-telemetry/internal/service"

	"github.com/gin-gonic/gin"
)

type ConnectionHandler struct {
	connectionService service.ConnectionService
}

func NewConnectionHandler(connectionService service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connectionService: connectionService}
}

type ConnectionRequest struct {
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
}

// Request godoc
// @Summary Send a connection request
// @Tags Connections
// @Accept json
// @Produce json
// @Param request body ConnectionRequest true "Sender and receiver"
// @Success 201 {object} gin.H "connection"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 409 {object} gin.H "Connection already exists"
// @Router /connections/request [post]
func (h *ConnectionHandler) Request(c *gin.Context) {
	var req ConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	conn, err := h.connectionService.SendRequest(c.Request.Context(), req.FromUserID, req.ToUserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"message": "connection request sent", "connection": conn})
}

// Accept godoc
// @Summary Accept a pending connection request
// @Tags Connections
// @Produce json
// @Param requestId path string true "Connection request ID"
// @Success 200 {object} gin.H "connection"
// @Failure 404 {object} gin.H "Request not found"
// @Router /connections/accept/{requestId} [post]
func (h *ConnectionHandler) Accept(c *gin.Context) {
	conn, err := h.connectionService.Accept(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "connection accepted", "connection": conn})
}

// Reject godoc
// @Summary Reject a pending connection request
// @Tags Connections
// @Produce json
// @Param requestId path string true "Connection request ID"
// @Success 200 {object} gin.H "connection"
// @Failure 404 {object} gin.H "Request not found"
// @Router /connections/reject/{requestId} [post]
func (h *ConnectionHandler) Reject(c *gin.Context) {
	conn, err := h.connectionService.Reject(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "connection rejected", "connection": conn})
}

// Status godoc
// @Summary Connection status between two users
// @Tags Connections
// @Produce json
// @Param userId1 path string true "First user ID"
// @Param userId2 path string true "Second user ID"
// @Success 200 {object} gin.H "connected and status"
// @Router /connections/status/{userId1}/{userId2} [get]
func (h *ConnectionHandler) Status(c *gin.Context) {
	status, err := h.connectionService.Status(c.Request.Context(), c.Param("userId1"), c.Param("userId2"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"connected": status.Connected, "status": status.Status})
}

// Pending godoc
// @Summary Pending requests received by a user
// @Tags Connections
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} gin.H "requests and count"
// @Router /connections/pending/{userId} [get]
func (h *ConnectionHandler) Pending(c *gin.Context) {
	requests, err := h.connectionService.PendingReceived(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"requests": requests, "count": len(requests)})
}

// Sent godoc
// @Summary Requests sent by a user
// @Tags Connections
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} gin.H "requests and count"
// @Router /connections/sent/{userId} [get]
func (h *ConnectionHandler) Sent(c *gin.Context) {
	requests, err := h.connectionService.SentRequests(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"requests": requests, "count": len(requests)})
}

// List godoc
// @Summary Accepted connections of a user
// @Tags Connections
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} gin.H "connections and count"
// @Router /connections/list/{userId} [get]
func (h *ConnectionHandler) List(c *gin.Context) {
	connections, err := h.connectionService.Connections(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"connections": connections, "count": len(connections)})
}
