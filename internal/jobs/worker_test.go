package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	dbfs "github.com/expertlane/matchd/db"
	"github.com/expertlane/matchd/internal/db"
	"github.com/expertlane/matchd/internal/models"
	"github.com/expertlane/matchd/internal/repository/sqlite"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.New(ctx, "file:"+name+"?mode=memory&cache=shared", logger)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(ctx, conn, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestEnqueueAndProcess(t *testing.T) {
	conn := newTestDB(t)
	repo := sqlite.New(conn, nil)
	ctx := context.Background()

	var handled int32
	var gotPayload atomic.Value
	handlers := map[string]Handler{
		"test.echo": func(ctx context.Context, j *models.BackgroundJob) error {
			gotPayload.Store(string(j.Payload))
			atomic.AddInt32(&handled, 1)
			return nil
		},
	}

	pool := NewWorkerPool(repo, handlers, slog.New(slog.NewTextHandler(io.Discard, nil)), 1)
	pool.Start(ctx)
	defer pool.Stop()

	if _, err := pool.Enqueue(ctx, "test.echo", map[string]string{"k": "v"}, 10, 3); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	waitFor(t, 5*time.Second, func() bool { return atomic.LoadInt32(&handled) == 1 })
	if p, _ := gotPayload.Load().(string); p != `{"k":"v"}` {
		t.Errorf("payload = %q", p)
	}
}

func TestFailingJobMovesToDeadLetter(t *testing.T) {
	conn := newTestDB(t)
	repo := sqlite.New(conn, nil)
	ctx := context.Background()

	handlers := map[string]Handler{
		"test.boom": func(ctx context.Context, j *models.BackgroundJob) error {
			return errors.New("boom")
		},
	}

	pool := NewWorkerPool(repo, handlers, slog.New(slog.NewTextHandler(io.Discard, nil)), 1)
	pool.Start(ctx)
	defer pool.Stop()

	if _, err := pool.Enqueue(ctx, "test.boom", nil, 10, 1); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	waitFor(t, 5*time.Second, func() bool {
		var n int
		row := conn.QueryRow(ctx, `SELECT COUNT(1) FROM dead_letter_jobs WHERE type = 'test.boom'`)
		if err := row.Scan(&n); err != nil {
			return false
		}
		return n == 1
	})

	var remaining int
	row := conn.QueryRow(ctx, `SELECT COUNT(1) FROM jobs WHERE type = 'test.boom'`)
	if err := row.Scan(&remaining); err != nil {
		t.Fatalf("count jobs: %v", err)
	}
	if remaining != 0 {
		t.Errorf("jobs remaining = %d, want 0", remaining)
	}
}

func TestUnknownJobTypeDeadLetters(t *testing.T) {
	conn := newTestDB(t)
	repo := sqlite.New(conn, nil)
	ctx := context.Background()

	pool := NewWorkerPool(repo, map[string]Handler{}, slog.New(slog.NewTextHandler(io.Discard, nil)), 1)
	pool.Start(ctx)
	defer pool.Stop()

	if _, err := pool.Enqueue(ctx, "test.unknown", nil, 10, 3); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	waitFor(t, 5*time.Second, func() bool {
		var n int
		row := conn.QueryRow(ctx, `SELECT COUNT(1) FROM dead_letter_jobs WHERE type = 'test.unknown'`)
		if err := row.Scan(&n); err != nil {
			return false
		}
		return n == 1
	})
}

func TestBackoffDuration(t *testing.T) {
	if d := BackoffDuration(0); d != time.Second {
		t.Errorf("attempt 0 = %v", d)
	}
	if d := BackoffDuration(3); d != 8*time.Second {
		t.Errorf("attempt 3 = %v", d)
	}
	if d := BackoffDuration(20); d != 5*time.Minute {
		t.Errorf("attempt 20 = %v, want cap", d)
	}
}
