package storage

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// FixReport summarises a FixVisibility run.
type FixReport struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Failures  map[string]string `json:"failures,omitempty"`
}

// FixVisibility makes every object under prefix publicly readable. Per-object
// failures are recorded and the scan goes on; running it again is harmless.
func FixVisibility(ctx context.Context, fs FileStorage, prefix string) (FixReport, error) {
	keys, err := fs.ListObjects(ctx, prefix)
	if err != nil {
		return FixReport{}, err
	}

	report := FixReport{Total: len(keys)}
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := fs.MakePublic(ctx, key); err != nil {
			log.Warnf("make [%s] public: %s", key, err)
			if report.Failures == nil {
				report.Failures = make(map[string]string)
			}
			report.Failures[key] = err.Error()
			report.Failed++
			continue
		}
		report.Succeeded++
	}
	return report, nil
}
