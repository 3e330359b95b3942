package dispatch

import (
	"context"
	"fmt"

	"github.com/expertlane/matchd/internal/jobs"
)

// JobTypeNotify is the background-job type carrying lifecycle events.
const JobTypeNotify = "notify.event"

// Lifecycle event types.
const (
	EventInviteSent           = "invite.sent"
	EventInviteAccepted       = "invite.accepted"
	EventInviteDeclined       = "invite.declined"
	EventSelectionSelected    = "selection.selected"
	EventSelectionNotSelected = "selection.not_selected"
)

// Event is one lifecycle fact emitted after a business transaction commits.
// Delivery is at-least-once; consumers must tolerate duplicates.
type Event struct {
	Type       string `json:"type"`
	BriefID    int64  `json:"brief_id"`
	ExpertID   int64  `json:"expert_id"`
	InviteID   int64  `json:"invite_id,omitempty"`
	BriefTitle string `json:"brief_title,omitempty"`
}

// Emitter hands events off for asynchronous dispatch. Implementations must
// not participate in the caller's transaction.
type Emitter interface {
	Emit(ctx context.Context, ev Event) error
}

// QueueEmitter enqueues events onto the background job queue.
type QueueEmitter struct {
	pool *jobs.WorkerPool
}

func NewQueueEmitter(pool *jobs.WorkerPool) *QueueEmitter {
	return &QueueEmitter{pool: pool}
}

func (q *QueueEmitter) Emit(ctx context.Context, ev Event) error {
	if _, err := q.pool.Enqueue(ctx, JobTypeNotify, ev, 50, 3); err != nil {
		return fmt.Errorf("enqueue %s: %w", ev.Type, err)
	}
	return nil
}
