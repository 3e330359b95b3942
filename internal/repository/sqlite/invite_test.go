package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/expertlane/matchd/internal/models"
	"github.com/expertlane/matchd/pkg/repository"
)

func seedInvite(t *testing.T, r *SQLiteRepo, briefID, expertID int64, expiresAt int64) int64 {
	t.Helper()
	id, err := r.CreateInvite(context.Background(), &models.ExpertInvite{
		BriefID:       briefID,
		ExpertID:      expertID,
		ScoreAtInvite: 0.8,
		SentAt:        time.Now().UnixMilli(),
		ExpiresAt:     expiresAt,
	})
	if err != nil {
		t.Fatalf("seed invite: %v", err)
	}
	return id
}

func future() int64 {
	return time.Now().Add(time.Hour).UnixMilli()
}

func TestCreateInviteRejectsDuplicatePair(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	briefID := seedBrief(t, r, 1)

	seedInvite(t, r, briefID, 10, future())
	_, err := r.CreateInvite(ctx, &models.ExpertInvite{
		BriefID:   briefID,
		ExpertID:  10,
		SentAt:    time.Now().UnixMilli(),
		ExpiresAt: future(),
	})
	if !errors.Is(err, repository.ErrDuplicateInvite) {
		t.Fatalf("err = %v, want ErrDuplicateInvite", err)
	}

	// same expert on another brief is fine
	other := seedBrief(t, r, 1)
	if _, err := r.CreateInvite(ctx, &models.ExpertInvite{
		BriefID:   other,
		ExpertID:  10,
		SentAt:    time.Now().UnixMilli(),
		ExpiresAt: future(),
	}); err != nil {
		t.Fatalf("other brief invite: %v", err)
	}
}

func TestListInvitesPendingFiltersExpired(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	briefID := seedBrief(t, r, 1)
	now := time.Now().UnixMilli()

	live := seedInvite(t, r, briefID, 10, future())
	seedInvite(t, r, briefID, 11, now-1) // already expired
	declinedID := seedInvite(t, r, briefID, 12, future())
	if err := r.RespondInvite(ctx, declinedID, models.InviteDeclined, now, nil, nil); err != nil {
		t.Fatalf("decline: %v", err)
	}

	all, err := r.ListInvitesByBrief(ctx, briefID, false, now)
	if err != nil || len(all) != 3 {
		t.Fatalf("all = %d (%v), want 3", len(all), err)
	}

	pending, err := r.ListInvitesByBrief(ctx, briefID, true, now)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != live {
		t.Fatalf("pending = %+v, want only invite %d", pending, live)
	}

	byExpert, err := r.ListInvitesByExpert(ctx, 11, true, now)
	if err != nil || len(byExpert) != 0 {
		t.Fatalf("expired invite listed as pending: %+v %v", byExpert, err)
	}
}

func TestMarkViewedSetOnce(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	briefID := seedBrief(t, r, 1)
	id := seedInvite(t, r, briefID, 10, future())

	if err := r.MarkViewed(ctx, id, 1000); err != nil {
		t.Fatalf("MarkViewed: %v", err)
	}
	if err := r.MarkViewed(ctx, id, 2000); err != nil {
		t.Fatalf("second MarkViewed: %v", err)
	}

	inv, err := r.GetInvite(ctx, id)
	if err != nil {
		t.Fatalf("GetInvite: %v", err)
	}
	if inv.ViewedAt == nil || *inv.ViewedAt != 1000 {
		t.Fatalf("viewed_at = %v, want 1000", inv.ViewedAt)
	}

	if err := r.MarkViewed(ctx, 999, 1000); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing invite err = %v, want ErrNotFound", err)
	}
}

func TestRespondInviteGuards(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	briefID := seedBrief(t, r, 1)
	now := time.Now().UnixMilli()

	t.Run("accept stores message and proposal", func(t *testing.T) {
		id := seedInvite(t, r, briefID, 10, future())
		msg := "can start monday"
		proposal := `{"rate":120,"hours":20}`
		if err := r.RespondInvite(ctx, id, models.InviteAccepted, now, &msg, &proposal); err != nil {
			t.Fatalf("RespondInvite: %v", err)
		}
		inv, _ := r.GetInvite(ctx, id)
		if inv.Status != models.InviteAccepted || inv.RespondedAt == nil {
			t.Fatalf("invite = %+v", inv)
		}
		if inv.ResponseMessage == nil || *inv.ResponseMessage != msg {
			t.Errorf("message = %v", inv.ResponseMessage)
		}
		if inv.ProposalJSON == nil || *inv.ProposalJSON != proposal {
			t.Errorf("proposal = %v", inv.ProposalJSON)
		}
	})

	t.Run("expired invite", func(t *testing.T) {
		id := seedInvite(t, r, briefID, 11, now-1)
		err := r.RespondInvite(ctx, id, models.InviteDeclined, now, nil, nil)
		if !errors.Is(err, repository.ErrNotRespondable) {
			t.Fatalf("err = %v, want ErrNotRespondable", err)
		}
	})

	t.Run("double response", func(t *testing.T) {
		id := seedInvite(t, r, briefID, 12, future())
		if err := r.RespondInvite(ctx, id, models.InviteDeclined, now, nil, nil); err != nil {
			t.Fatalf("first response: %v", err)
		}
		err := r.RespondInvite(ctx, id, models.InviteAccepted, now, nil, nil)
		if !errors.Is(err, repository.ErrNotRespondable) {
			t.Fatalf("err = %v, want ErrNotRespondable", err)
		}
	})

	t.Run("missing invite", func(t *testing.T) {
		err := r.RespondInvite(ctx, 999, models.InviteAccepted, now, nil, nil)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("bogus status", func(t *testing.T) {
		id := seedInvite(t, r, briefID, 13, future())
		err := r.RespondInvite(ctx, id, "selected", now, nil, nil)
		if !errors.Is(err, repository.ErrInvalidTransition) {
			t.Fatalf("err = %v, want ErrInvalidTransition", err)
		}
	})
}
