package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"alcyxob/workout-telemetry/internal/video"

	"github.com/gin-gonic/gin"
)

// VideoProcessor is the part of the video gateway the handlers need.
type VideoProcessor interface {
	Process(ctx context.Context, activity string, upload io.Reader, filename string) (*video.Result, error)
	Results(outputID string) (*video.Table, error)
	Frames(outputID string) ([]string, error)
	FramePath(outputID, file string) (string, error)
	VideoPath(outputID, file string) (string, error)
}

// LiveStarter starts a (simulated) live recording.
type LiveStarter interface {
	Start(ctx context.Context, activity string) (*video.LiveResult, error)
}

type VideoHandler struct {
	gateway VideoProcessor
	live    LiveStarter
}

func NewVideoHandler(gateway VideoProcessor, live LiveStarter) *VideoHandler {
	return &VideoHandler{gateway: gateway, live: live}
}

type LiveRecordingRequest struct {
	ActivityName string `json:"activityName" binding:"required"`
}

// ProcessVideo godoc
// @Summary Analyze an uploaded workout video
// @Description Runs the analysis script registered for activityName and collects its CSV, annotated video and frames.
// @Tags Video
// @Accept multipart/form-data
// @Produce json
// @Param activityName formData string true "Activity name"
// @Param video formData file true "Video file"
// @Success 200 {object} gin.H "result"
// @Failure 400 {object} gin.H "Missing field or unsupported activity"
// @Failure 500 {object} gin.H "Analysis failed, details holds the script output"
// @Router /process-video [post]
func (h *VideoHandler) ProcessVideo(c *gin.Context) {
	activity := c.PostForm("activityName")
	if activity == "" {
		abortWithError(c, http.StatusBadRequest, "activityName is required")
		return
	}
	fileHeader, err := c.FormFile("video")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "video file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "cannot read uploaded video")
		return
	}
	defer file.Close()

	result, err := h.gateway.Process(c.Request.Context(), activity, file, fileHeader.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"result": result})
}

// StartLiveRecording godoc
// @Summary Start a live recording for an activity
// @Tags Video
// @Accept json
// @Produce json
// @Param request body LiveRecordingRequest true "Activity"
// @Success 200 {object} gin.H "activity, rows and simulated"
// @Failure 400 {object} gin.H "Unsupported activity"
// @Router /start-live-recording [post]
func (h *VideoHandler) StartLiveRecording(c *gin.Context) {
	var req LiveRecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.live.Start(c.Request.Context(), req.ActivityName)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"activity":  res.Activity,
		"rows":      res.Rows,
		"simulated": res.Simulated,
		"timestamp": time.Now().UTC(),
	})
}

// Results godoc
// @Summary CSV results of a processed video
// @Tags Video
// @Produce json
// @Param outputId path string true "Output ID"
// @Success 200 {object} gin.H "header and rows"
// @Failure 404 {object} gin.H "No results"
// @Router /results/{outputId} [get]
func (h *VideoHandler) Results(c *gin.Context) {
	table, err := h.gateway.Results(c.Param("outputId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"header": table.Header, "rows": table.Rows})
}

// Frames godoc
// @Summary Frame file names of a processed video
// @Tags Video
// @Produce json
// @Param outputId path string true "Output ID"
// @Success 200 {object} gin.H "frames and count"
// @Router /frames/{outputId} [get]
func (h *VideoHandler) Frames(c *gin.Context) {
	frames, err := h.gateway.Frames(c.Param("outputId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"frames": frames, "count": len(frames)})
}

// Frame godoc
// @Summary Serve one extracted frame
// @Tags Video
// @Produce jpeg
// @Param outputId path string true "Output ID"
// @Param file path string true "Frame file name"
// @Success 200 {file} file
// @Failure 404 {object} gin.H "Frame not found"
// @Router /frame/{outputId}/{file} [get]
func (h *VideoHandler) Frame(c *gin.Context) {
	path, err := h.gateway.FramePath(c.Param("outputId"), c.Param("file"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.File(path)
}

// Video godoc
// @Summary Serve the annotated video
// @Tags Video
// @Produce mp4
// @Param outputId path string true "Output ID"
// @Param file path string true "Video file name"
// @Success 200 {file} file
// @Failure 404 {object} gin.H "Video not found"
// @Router /video/{outputId}/{file} [get]
func (h *VideoHandler) Video(c *gin.Context) {
	path, err := h.gateway.VideoPath(c.Param("outputId"), c.Param("file"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.File(path)
}
