package sqlite

import (
	"log/slog"
	"time"

	"github.com/expertlane/matchd/internal/db"
	"github.com/expertlane/matchd/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.AccountRepo = (*SQLiteRepo)(nil)
var _ repository.BriefRepo = (*SQLiteRepo)(nil)
var _ repository.CandidateRepo = (*SQLiteRepo)(nil)
var _ repository.MatchingRunRepo = (*SQLiteRepo)(nil)
var _ repository.InviteRepo = (*SQLiteRepo)(nil)
var _ repository.SelectionRepo = (*SQLiteRepo)(nil)
var _ repository.SettingsRepo = (*SQLiteRepo)(nil)
var _ repository.NotificationRepo = (*SQLiteRepo)(nil)
var _ repository.OutboxRepo = (*SQLiteRepo)(nil)
var _ repository.JobRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

// now returns the repo-wide timestamp unit: unix milliseconds.
func now() int64 {
	return time.Now().UTC().UnixMilli()
}
