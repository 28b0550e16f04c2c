package api

import (
	"net/http"

	"alcyxob/workout-telemetry/internal/domain"
	"alcyxob/workout-telemetry/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService       service.UserService
	queryService      service.QueryService
	connectionService service.ConnectionService
}

func NewUserHandler(userService service.UserService, queryService service.QueryService, connectionService service.ConnectionService) *UserHandler {
	return &UserHandler{
		userService:       userService,
		queryService:      queryService,
		connectionService: connectionService,
	}
}

// ProfileRequest is the body of the profile writes. Absent fields are left
// unchanged; userId, email and role are read only by POST /users/profile.
type ProfileRequest struct {
	UserID     string   `json:"userId"`
	Email      string   `json:"email"`
	Role       string   `json:"role"`
	Name       *string  `json:"name"`
	District   *string  `json:"district"`
	ProfilePic *string  `json:"profilePic"`
	Bio        *string  `json:"bio"`
	Phone      *string  `json:"phone"`
	Skills     []string `json:"skills"`
}

func (r ProfileRequest) update() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		Name:       r.Name,
		District:   r.District,
		ProfilePic: r.ProfilePic,
		Bio:        r.Bio,
		Phone:      r.Phone,
		Skills:     r.Skills,
	}
}

type SkillsRequest struct {
	Skills []string `json:"skills" binding:"required"`
}

// UpsertProfile godoc
// @Summary Create or update a profile
// @Tags Users
// @Accept json
// @Produce json
// @Param profile body ProfileRequest true "Profile fields"
// @Success 200 {object} gin.H "user"
// @Failure 400 {object} gin.H "Invalid input"
// @Router /users/profile [post]
func (h *UserHandler) UpsertProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userService.UpsertProfile(c.Request.Context(), service.ProfileInput{
		UserID: req.UserID,
		Email:  req.Email,
		Role:   req.Role,
		Update: req.update(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": user})
}

// PatchProfile godoc
// @Summary Update profile fields
// @Description Absent fields are left unchanged.
// @Tags Users
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param profile body ProfileRequest true "Fields to change"
// @Success 200 {object} gin.H "user"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "User not found"
// @Router /users/profile/{userId} [patch]
func (h *UserHandler) PatchProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userService.PatchProfile(c.Request.Context(), c.Param("userId"), req.update())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": user})
}

// GetProfile godoc
// @Summary Get a profile
// @Tags Users
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} gin.H "user"
// @Failure 404 {object} gin.H "User not found"
// @Router /users/profile/{userId} [get]
// @Router /users/{userId} [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.userService.GetProfile(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": user})
}

// ListUsers godoc
// @Summary List users of one role, or all users
// @Description Returns a handler per role; an empty role lists everyone.
// @Tags Users
// @Produce json
// @Success 200 {object} gin.H "users and count"
// @Router /users/all [get]
// @Router /users/coaches [get]
// @Router /users/athletes [get]
func (h *UserHandler) ListUsers(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := h.userService.ListUsers(c.Request.Context(), string(role))
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, gin.H{"users": users, "count": len(users)})
	}
}

// Discover godoc
// @Summary Suggest users of the opposite role to connect with
// @Tags Users
// @Produce json
// @Param userId query string true "Requesting user ID"
// @Success 200 {object} gin.H "users"
// @Failure 404 {object} gin.H "User not found"
// @Router /users/discover [get]
func (h *UserHandler) Discover(c *gin.Context) {
	users, err := h.connectionService.Discover(c.Request.Context(), c.Query("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"users": users})
}

// Stats godoc
// @Summary Workout statistics of a user
// @Tags Users
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} gin.H "stats"
// @Router /users/{userId}/stats [get]
func (h *UserHandler) Stats(c *gin.Context) {
	stats, err := h.queryService.StatsForUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"stats": stats})
}

// AddSkills godoc
// @Summary Add skills to a profile
// @Tags Users
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param skills body SkillsRequest true "Skills to add"
// @Success 200 {object} gin.H "user"
// @Failure 404 {object} gin.H "User not found"
// @Router /users/{userId}/skills [post]
func (h *UserHandler) AddSkills(c *gin.Context) {
	var req SkillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userService.AddSkills(c.Request.Context(), c.Param("userId"), req.Skills)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": user})
}
