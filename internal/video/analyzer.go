package video

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"alcyxob/workout-telemetry/internal/config"
)

var ErrUnsupportedActivity = errors.New("unsupported activity")

// Output is what an analysis run left behind. Either path may be empty.
type Output struct {
	CSVPath   string
	VideoPath string
	Stdout    string
}

//go:generate mockgen -source=$GOFILE -destination=analyzer_mocks_test.go -package=video_test

// Analyzer runs the pose analysis of one activity on a video file and writes
// its results into outDir.
type Analyzer interface {
	Run(ctx context.Context, videoPath, outDir string) (Output, error)
}

// Registry maps exact activity names to their analyzer.
type Registry struct {
	analyzers map[string]Analyzer
}

func NewRegistry() *Registry {
	return &Registry{analyzers: make(map[string]Analyzer)}
}

// NewScriptRegistry registers a ScriptAnalyzer for every configured activity.
func NewScriptRegistry(cfg config.VideoConfig) *Registry {
	r := NewRegistry()
	for _, activity := range cfg.Activities {
		r.Register(activity.Name, &ScriptAnalyzer{
			Interpreter: cfg.Interpreter,
			ScriptPath:  filepath.Join(cfg.ScriptsDir, activity.Script),
			Timeout:     cfg.ScriptTimeout,
		})
	}
	return r
}

func (r *Registry) Register(activity string, analyzer Analyzer) {
	r.analyzers[activity] = analyzer
}

// Get returns the analyzer for activity. Names are matched exactly.
func (r *Registry) Get(activity string) (Analyzer, error) {
	analyzer, ok := r.analyzers[activity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedActivity, activity)
	}
	return analyzer, nil
}

func (r *Registry) Supports(activity string) bool {
	_, ok := r.analyzers[activity]
	return ok
}

// Activities returns the registered names in sorted order.
func (r *Registry) Activities() []string {
	names := make([]string, 0, len(r.analyzers))
	for name := range r.analyzers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
