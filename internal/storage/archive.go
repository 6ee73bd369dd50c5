package storage

import (
	"bytes"
	"context"
	"errors"

	"github.com/DukeRupert/chatquota/internal/domain"
)

// maxReportSize bounds an archived sweep report.
const maxReportSize = 1 << 20

// ArchiveSweepRun writes a finished run's JSON report under SweepReportKey and
// returns the key. Re-archiving the same run overwrites the object.
func ArchiveSweepRun(ctx context.Context, st Storage, run *domain.SweepRun) (string, error) {
	if len(run.Details) == 0 {
		return "", errors.New("sweep run has no report to archive")
	}

	key := SweepReportKey(run.JobType, run.StartedAt, run.ID)
	err := st.Put(ctx, key, bytes.NewReader(run.Details), PutOptions{
		ContentType: JSONContentType,
		MaxSize:     maxReportSize,
		Overwrite:   true,
	})
	if err != nil {
		return "", err
	}
	return key, nil
}
