package video

import (
	"context"
	"fmt"
	"time"
)

// LiveResult is the answer of a simulated live recording.
type LiveResult struct {
	Activity  string                   `json:"activity"`
	Rows      []map[string]interface{} `json:"rows"`
	Simulated bool                     `json:"simulated"`
}

// LiveRecorder stands in for camera capture: after a fixed delay it returns
// canned sample rows for the activity.
type LiveRecorder struct {
	registry *Registry
	delay    time.Duration
}

func NewLiveRecorder(registry *Registry, delay time.Duration) *LiveRecorder {
	return &LiveRecorder{registry: registry, delay: delay}
}

func (l *LiveRecorder) Start(ctx context.Context, activity string) (*LiveResult, error) {
	if !l.registry.Supports(activity) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedActivity, activity)
	}

	timer := time.NewTimer(l.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return &LiveResult{
		Activity:  activity,
		Rows:      sampleRows(activity),
		Simulated: true,
	}, nil
}

func sampleRows(activity string) []map[string]interface{} {
	switch activity {
	case "Push-ups":
		return []map[string]interface{}{
			{"rep": 1, "elbow_angle": 88.4, "correct": true},
			{"rep": 2, "elbow_angle": 91.2, "correct": true},
			{"rep": 3, "elbow_angle": 112.7, "correct": false},
		}
	case "Squats":
		return []map[string]interface{}{
			{"rep": 1, "knee_angle": 84.1, "correct": true},
			{"rep": 2, "knee_angle": 97.5, "correct": false},
			{"rep": 3, "knee_angle": 86.3, "correct": true},
		}
	case "Sit-ups":
		return []map[string]interface{}{
			{"rep": 1, "hip_angle": 52.0, "correct": true},
			{"rep": 2, "hip_angle": 61.8, "correct": true},
		}
	case "Pull-ups":
		return []map[string]interface{}{
			{"rep": 1, "chin_over_bar": true, "correct": true},
			{"rep": 2, "chin_over_bar": false, "correct": false},
		}
	case "Vertical Jump":
		return []map[string]interface{}{
			{"jump": 1, "height_cm": 41.5},
			{"jump": 2, "height_cm": 44.2},
		}
	case "Shuttle Run":
		return []map[string]interface{}{
			{"lap": 1, "time_s": 4.8},
			{"lap": 2, "time_s": 5.1},
		}
	default:
		return []map[string]interface{}{
			{"rep": 1, "correct": true},
		}
	}
}
