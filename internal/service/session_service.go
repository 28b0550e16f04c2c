package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/workout-telemetry/internal/cache"
	"alcyxob/workout-telemetry/internal/domain"
	"alcyxob/workout-telemetry/internal/metrics"
	"alcyxob/workout-telemetry/internal/repository"
	"alcyxob/workout-telemetry/internal/storage"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentRepUploads = 8

// SessionInput is the session metadata of an ingestion request. PDFData and
// VideoData are optional inline payloads.
type SessionInput struct {
	AthleteName       string
	AthleteID         string
	AthleteProfilePic string
	ActivityName      string
	TotalReps         int
	CorrectReps       int
	IncorrectReps     int
	Duration          int
	Accuracy          int
	FormScore         string
	Timestamp         time.Time
	PDFData           string
	VideoData         string
}

// RepInput is one captured repetition with its inline screenshot.
type RepInput struct {
	RepNumber int
	ImageData string
	Correct   bool
	Details   map[string]interface{}
}

type IngestResult struct {
	SessionID string `json:"sessionId"`
	PDFURL    string `json:"pdfUrl"`
	VideoURL  string `json:"videoUrl"`
}

type SessionService interface {
	// Ingest stores a finished session and its reps. Media upload failures
	// never fail the call; the inline payload is stored instead.
	Ingest(ctx context.Context, in SessionInput, reps []RepInput) (*IngestResult, error)
	// Delete removes a session and its reps, returning the number of reps removed.
	Delete(ctx context.Context, sessionID string) (int64, error)
	// Reconcile rolls back sessions whose ingestion never completed and that
	// are older than olderThan. It returns the number of sessions removed.
	Reconcile(ctx context.Context, olderThan time.Duration) (int, error)
}

type sessionService struct {
	sessionRepo  repository.SessionRepository
	repImageRepo repository.RepImageRepository
	fileStorage  storage.FileStorage
	roster       *cache.RosterCache
	metrics      *metrics.Manager
}

// NewSessionService creates a new instance of sessionService. fileStorage may
// be nil when no media host is configured; every payload then stays inline.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	repImageRepo repository.RepImageRepository,
	fileStorage storage.FileStorage,
	roster *cache.RosterCache,
	metricsManager *metrics.Manager,
) SessionService {
	return &sessionService{
		sessionRepo:  sessionRepo,
		repImageRepo: repImageRepo,
		fileStorage:  fileStorage,
		roster:       roster,
		metrics:      metricsManager,
	}
}

func (s *sessionService) Ingest(ctx context.Context, in SessionInput, reps []RepInput) (*IngestResult, error) {
	if err := validateSession(in, reps); err != nil {
		return nil, err
	}

	// 1. Media payloads of the session itself
	pdf := s.storeOrInline(ctx, storage.KindPDF, in.PDFData, "sessions/reports", "")
	video := s.storeOrInline(ctx, storage.KindVideo, in.VideoData, "sessions/videos", "")

	// 2. Session document, hidden from reads until its reps are written
	now := time.Now().UTC()
	timestamp := in.Timestamp
	if timestamp.IsZero() {
		timestamp = now
	}
	session := &domain.WorkoutSession{
		AthleteName:       in.AthleteName,
		AthleteID:         in.AthleteID,
		AthleteProfilePic: in.AthleteProfilePic,
		ActivityName:      in.ActivityName,
		TotalReps:         in.TotalReps,
		CorrectReps:       in.CorrectReps,
		IncorrectReps:     in.IncorrectReps,
		Duration:          in.Duration,
		Accuracy:          in.Accuracy,
		FormScore:         in.FormScore,
		Timestamp:         timestamp.UTC(),
		CreatedAt:         now,
		PDFURL:            pdf.Value,
		VideoURL:          video.Value,
		IngestStatus:      domain.IngestPending,
	}
	id, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	sessionID := id.Hex()

	// 3. Rep screenshots, uploaded concurrently
	if len(reps) > 0 {
		docs, err := s.uploadReps(ctx, sessionID, reps, now)
		if err != nil {
			return nil, fmt.Errorf("upload reps for session %s: %w", sessionID, err)
		}

		// 4. Bulk insert; duplicate rep numbers are skipped
		inserted, err := s.repImageRepo.InsertMany(ctx, docs)
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			log.Warnf("session [%s]: %d of %d reps stored: %s", sessionID, inserted, len(docs), err)
		case err != nil:
			return nil, fmt.Errorf("insert reps for session %s: %w", sessionID, err)
		}
	}

	if err := s.sessionRepo.SetIngestStatus(ctx, id, domain.IngestComplete); err != nil {
		return nil, fmt.Errorf("complete session %s: %w", sessionID, err)
	}

	s.roster.Invalidate()
	s.metrics.SessionIngested()
	log.Debugf("session [%s] ingested for athlete [%s] with %d reps", sessionID, in.AthleteName, len(reps))

	return &IngestResult{
		SessionID: sessionID,
		PDFURL:    pdf.Value,
		VideoURL:  video.Value,
	}, nil
}

// uploadReps stores every rep screenshot. Upload failures fall back to
// inline data; only cancellation of ctx aborts the batch.
func (s *sessionService) uploadReps(ctx context.Context, sessionID string, reps []RepInput, now time.Time) ([]domain.RepImage, error) {
	docs := make([]domain.RepImage, len(reps))
	folder := "sessions/" + sessionID + "/reps"

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRepUploads)
	for i, rep := range reps {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stored := s.storeOrInline(gctx, storage.KindImage, rep.ImageData, folder, fmt.Sprintf("rep_%d", rep.RepNumber))
			docs[i] = domain.RepImage{
				SessionID: sessionID,
				RepNumber: rep.RepNumber,
				ImageURL:  stored.Value,
				Inline:    stored.Inline(),
				Correct:   rep.Correct,
				Details:   rep.Details,
				CreatedAt: now,
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return docs, nil
}

// storeOrInline uploads data and records a fallback when it stays inline.
func (s *sessionService) storeOrInline(ctx context.Context, kind storage.Kind, data, folder, publicID string) storage.Stored {
	stored := storage.StoreOrInline(ctx, s.fileStorage, kind, data, folder, publicID)
	if stored.Err != nil {
		log.Warnf("%s upload failed, storing inline: %s", kind, stored.Err)
		s.metrics.UploadFallback(string(kind))
	}
	return stored
}

func (s *sessionService) Delete(ctx context.Context, sessionID string) (int64, error) {
	id, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		return 0, validationError("invalid session id %q", sessionID)
	}

	// existence first, so a missing id never removes reps
	if _, err := s.sessionRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}

	removed, err := s.repImageRepo.DeleteBySession(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("delete reps of session %s: %w", sessionID, err)
	}

	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return removed, ErrSessionNotFound
		}
		return removed, fmt.Errorf("delete session %s: %w", sessionID, err)
	}

	s.roster.Invalidate()
	log.Infof("session [%s] deleted with %d reps", sessionID, removed)
	return removed, nil
}

func (s *sessionService) Reconcile(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	stale, err := s.sessionRepo.ListStalePending(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list pending sessions: %w", err)
	}

	// A failing session does not stop the pass; it is retried on the next run.
	var errs error
	removed := 0
	for _, session := range stale {
		sessionID := session.ID.Hex()
		reps, err := s.repImageRepo.DeleteBySession(ctx, sessionID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete reps of session %s: %w", sessionID, err))
			continue
		}
		if err := s.sessionRepo.Delete(ctx, session.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			errs = multierr.Append(errs, fmt.Errorf("delete session %s: %w", sessionID, err))
			continue
		}
		log.Infof("rolled back interrupted session [%s] of [%s] (%d reps)", sessionID, session.AthleteName, reps)
		removed++
	}

	if removed > 0 {
		s.roster.Invalidate()
	}
	return removed, errs
}

func validateSession(in SessionInput, reps []RepInput) error {
	if in.AthleteName == "" || in.ActivityName == "" {
		return validationError("athleteName and activityName are required")
	}
	counts := map[string]int{
		"totalReps":     in.TotalReps,
		"correctReps":   in.CorrectReps,
		"incorrectReps": in.IncorrectReps,
		"duration":      in.Duration,
		"accuracy":      in.Accuracy,
	}
	for name, v := range counts {
		if v < 0 {
			return validationError("%s must not be negative", name)
		}
	}
	if in.Accuracy > 100 {
		return validationError("accuracy must be between 0 and 100")
	}
	for _, rep := range reps {
		if rep.RepNumber < 1 {
			return validationError("repNumber must be at least 1, got %d", rep.RepNumber)
		}
	}
	return nil
}
