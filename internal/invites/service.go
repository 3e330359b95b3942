package invites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/expertlane/matchd/internal/dispatch"
	"github.com/expertlane/matchd/internal/matching"
	"github.com/expertlane/matchd/internal/models"
	"github.com/expertlane/matchd/pkg/repository"
)

// Service drives the invitation and selection lifecycle. State transitions are
// delegated to the repositories, which guard them in SQL; the service adds the
// business sequencing and emits lifecycle events after the storage effect is
// committed.
type Service struct {
	briefs    repository.BriefRepo
	invites   repository.InviteRepo
	selection repository.SelectionRepo
	emitter   dispatch.Emitter
	logger    *slog.Logger
	window    time.Duration
}

func NewService(briefs repository.BriefRepo, invites repository.InviteRepo, selection repository.SelectionRepo, emitter dispatch.Emitter, logger *slog.Logger, responseWindow time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if responseWindow <= 0 {
		responseWindow = 72 * time.Hour
	}
	return &Service{
		briefs:    briefs,
		invites:   invites,
		selection: selection,
		emitter:   emitter,
		logger:    logger,
		window:    responseWindow,
	}
}

// CreateResult reports one invitation batch. Skipped counts candidates whose
// (brief, expert) pair already held an invite; re-inviting is a no-op, never
// an error, so widened re-runs can submit overlapping candidate lists.
type CreateResult struct {
	Created []models.ExpertInvite `json:"created"`
	Skipped int                   `json:"skipped"`
}

// CreateInvites turns ranked candidates into sent invites with the score
// frozen as of this batch. Returns ErrNotFound for a missing brief and
// ErrBriefResolved once a winner exists.
func (s *Service) CreateInvites(ctx context.Context, briefID int64, candidates []matching.CandidateResult) (*CreateResult, error) {
	brief, err := s.briefs.GetBrief(ctx, briefID)
	if err != nil {
		return nil, fmt.Errorf("load brief %d: %w", briefID, err)
	}
	if brief == nil {
		return nil, repository.ErrNotFound
	}
	if brief.SelectedExpertID != nil {
		return nil, repository.ErrBriefResolved
	}

	now := time.Now().UnixMilli()
	expires := now + s.window.Milliseconds()

	out := &CreateResult{Created: []models.ExpertInvite{}}
	for _, c := range candidates {
		inv := models.ExpertInvite{
			BriefID:       briefID,
			ExpertID:      c.ExpertID,
			Status:        models.InviteSent,
			ScoreAtInvite: c.Score,
			SentAt:        now,
			ExpiresAt:     expires,
		}
		id, err := s.invites.CreateInvite(ctx, &inv)
		if errors.Is(err, repository.ErrDuplicateInvite) {
			out.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create invite for expert %d: %w", c.ExpertID, err)
		}
		inv.ID = id
		out.Created = append(out.Created, inv)

		s.emit(ctx, dispatch.Event{
			Type:       dispatch.EventInviteSent,
			BriefID:    briefID,
			ExpertID:   c.ExpertID,
			InviteID:   id,
			BriefTitle: brief.Title,
		})
	}

	s.logger.Info("invite batch created",
		slog.Int64("brief_id", briefID),
		slog.Int("created", len(out.Created)),
		slog.Int("skipped", out.Skipped),
	)
	return out, nil
}

// MarkViewed stamps first-open time on an invite. Idempotent.
func (s *Service) MarkViewed(ctx context.Context, inviteID int64) error {
	return s.invites.MarkViewed(ctx, inviteID, time.Now().UnixMilli())
}

// Respond records an accept or decline. The repository rejects responses on
// non-sent or expired invites; on success the matching lifecycle event is
// emitted and the updated invite returned.
func (s *Service) Respond(ctx context.Context, inviteID int64, accept bool, message *string, proposalJSON *string) (*models.ExpertInvite, error) {
	status := models.InviteDeclined
	eventType := dispatch.EventInviteDeclined
	if accept {
		status = models.InviteAccepted
		eventType = dispatch.EventInviteAccepted
	}

	now := time.Now().UnixMilli()
	if err := s.invites.RespondInvite(ctx, inviteID, status, now, message, proposalJSON); err != nil {
		return nil, err
	}

	inv, err := s.invites.GetInvite(ctx, inviteID)
	if err != nil {
		return nil, fmt.Errorf("reload invite %d: %w", inviteID, err)
	}
	if inv == nil {
		return nil, repository.ErrNotFound
	}

	s.emit(ctx, dispatch.Event{
		Type:     eventType,
		BriefID:  inv.BriefID,
		ExpertID: inv.ExpertID,
		InviteID: inviteID,
	})
	return inv, nil
}

// Select finalizes the winner for a brief and notifies winner and losers.
func (s *Service) Select(ctx context.Context, briefID, expertID int64) (*repository.SelectionResult, error) {
	res, err := s.selection.SelectExpert(ctx, briefID, expertID, time.Now().UnixMilli())
	if err != nil {
		return nil, err
	}
	s.emitSelection(ctx, briefID, expertID, res)
	return res, nil
}

// Reassign replaces an existing winner. Admin path; the demoted previous
// winner gets no dedicated event, only the new winner and fresh losers do.
func (s *Service) Reassign(ctx context.Context, briefID, expertID int64) (*repository.SelectionResult, error) {
	res, err := s.selection.ReassignExpert(ctx, briefID, expertID, time.Now().UnixMilli())
	if err != nil {
		return nil, err
	}
	s.emitSelection(ctx, briefID, expertID, res)
	return res, nil
}

func (s *Service) emitSelection(ctx context.Context, briefID, expertID int64, res *repository.SelectionResult) {
	s.emit(ctx, dispatch.Event{
		Type:     dispatch.EventSelectionSelected,
		BriefID:  briefID,
		ExpertID: expertID,
		InviteID: res.InviteID,
	})
	for _, loser := range res.LoserExpertIDs {
		s.emit(ctx, dispatch.Event{
			Type:     dispatch.EventSelectionNotSelected,
			BriefID:  briefID,
			ExpertID: loser,
		})
	}
}

// emit hands an event to the queue. A failed enqueue loses the notification
// but never rolls back the committed business state, so it is logged and
// swallowed.
func (s *Service) emit(ctx context.Context, ev dispatch.Event) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.Emit(ctx, ev); err != nil {
		s.logger.Error("emit event",
			slog.String("type", ev.Type),
			slog.Int64("brief_id", ev.BriefID),
			slog.Int64("expert_id", ev.ExpertID),
			slog.Any("err", err),
		)
	}
}
