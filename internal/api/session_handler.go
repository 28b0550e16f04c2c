package api

import (
	"net/http"
	"time"

	"alcyxob/workout-telemetry/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService service.SessionService
	queryService   service.QueryService
}

func NewSessionHandler(sessionService service.SessionService, queryService service.QueryService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, queryService: queryService}
}

// AddSessionRequest is a finished workout as posted by the capture client.
// pdfData, videoData and repImages[].imageData are data URLs or bare base64.
type AddSessionRequest struct {
	AthleteName       string            `json:"athleteName"`
	AthleteID         string            `json:"athleteId"`
	AthleteProfilePic string            `json:"athleteProfilePic"`
	ActivityName      string            `json:"activityName"`
	TotalReps         int               `json:"totalReps"`
	CorrectReps       int               `json:"correctReps"`
	IncorrectReps     int               `json:"incorrectReps"`
	Duration          int               `json:"duration"`
	Accuracy          int               `json:"accuracy"`
	FormScore         string            `json:"formScore"`
	Timestamp         *time.Time        `json:"timestamp"`
	PDFData           string            `json:"pdfData"`
	VideoData         string            `json:"videoData"`
	RepImages         []RepImageRequest `json:"repImages"`
}

type RepImageRequest struct {
	RepNumber int                    `json:"repNumber"`
	ImageData string                 `json:"imageData"`
	Correct   bool                   `json:"correct"`
	Details   map[string]interface{} `json:"details"`
}

func (r AddSessionRequest) toInput() (service.SessionInput, []service.RepInput) {
	in := service.SessionInput{
		AthleteName:       r.AthleteName,
		AthleteID:         r.AthleteID,
		AthleteProfilePic: r.AthleteProfilePic,
		ActivityName:      r.ActivityName,
		TotalReps:         r.TotalReps,
		CorrectReps:       r.CorrectReps,
		IncorrectReps:     r.IncorrectReps,
		Duration:          r.Duration,
		Accuracy:          r.Accuracy,
		FormScore:         r.FormScore,
		PDFData:           r.PDFData,
		VideoData:         r.VideoData,
	}
	if r.Timestamp != nil {
		in.Timestamp = *r.Timestamp
	}

	reps := make([]service.RepInput, 0, len(r.RepImages))
	for _, rep := range r.RepImages {
		reps = append(reps, service.RepInput{
			RepNumber: rep.RepNumber,
			ImageData: rep.ImageData,
			Correct:   rep.Correct,
			Details:   rep.Details,
		})
	}
	return in, reps
}

// Add godoc
// @Summary Save a finished workout session
// @Description Stores the session with its rep screenshots. Media is uploaded to object storage, or kept inline when the upload fails.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param session body AddSessionRequest true "Session with rep images"
// @Success 200 {object} gin.H "sessionId, pdfUrl and videoUrl"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /sessions/add [post]
func (h *SessionHandler) Add(c *gin.Context) {
	var req AddSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	in, reps := req.toInput()
	result, err := h.sessionService.Ingest(c.Request.Context(), in, reps)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"message":   "session saved",
		"sessionId": result.SessionID,
		"pdfUrl":    result.PDFURL,
		"videoUrl":  result.VideoURL,
	})
}

// ListByAthlete godoc
// @Summary List the workouts of an athlete, newest first
// @Tags Sessions
// @Produce json
// @Param name path string true "Athlete name"
// @Success 200 {object} gin.H "workouts and count"
// @Failure 400 {object} gin.H "Missing athlete name"
// @Router /sessions/athlete/{name} [get]
func (h *SessionHandler) ListByAthlete(c *gin.Context) {
	workouts, err := h.queryService.ListByAthlete(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"workouts": workouts, "count": len(workouts)})
}

// ListAthletes godoc
// @Summary List athletes with their workout totals
// @Tags Sessions
// @Produce json
// @Success 200 {object} gin.H "athletes and count"
// @Router /sessions/all-athletes [get]
func (h *SessionHandler) ListAthletes(c *gin.Context) {
	athletes, err := h.queryService.ListAthletes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"athletes": athletes, "count": len(athletes)})
}

// Reps godoc
// @Summary List the reps of a session by rep number
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} gin.H "reps and count"
// @Failure 400 {object} gin.H "Invalid session ID"
// @Router /sessions/{id}/reps [get]
func (h *SessionHandler) Reps(c *gin.Context) {
	reps, err := h.queryService.RepsForSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"reps": reps, "count": len(reps)})
}

// Delete godoc
// @Summary Delete a session and its reps
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} gin.H "deletedReps"
// @Failure 400 {object} gin.H "Invalid session ID"
// @Failure 404 {object} gin.H "Session not found"
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	deleted, err := h.sessionService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "session deleted", "deletedReps": deleted})
}
