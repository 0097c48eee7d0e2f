// Package job contains scheduled maintenance tasks run by the web server's
// cron scheduler.
package job

import (
	"copycheck/database"
	"copycheck/logger"
)

// CheckpointJob flushes the sqlite WAL back into the main database file so
// the on-disk file stays copyable for backups.
type CheckpointJob struct{}

func NewCheckpointJob() *CheckpointJob {
	return new(CheckpointJob)
}

func (j *CheckpointJob) Run() {
	if err := database.Checkpoint(); err != nil {
		logger.Warning("wal checkpoint failed:", err)
	}
}
