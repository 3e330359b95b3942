package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/expertlane/matchd/internal/jobs"
	"github.com/expertlane/matchd/internal/models"
	"github.com/expertlane/matchd/pkg/mailer"
	"github.com/expertlane/matchd/pkg/repository"
)

// Dispatcher fans one lifecycle event out to email (via the outbox) and
// in-app notifications. It runs outside the transaction that produced the
// event: a delivery failure is recorded on the outbox row and never bubbles
// into business state. In-app notification writes are not gated on email
// delivery.
type Dispatcher struct {
	accounts      repository.AccountRepo
	briefs        repository.BriefRepo
	outbox        repository.OutboxRepo
	notifications repository.NotificationRepo
	sender        mailer.Sender
	logger        *slog.Logger
}

func NewDispatcher(accounts repository.AccountRepo, briefs repository.BriefRepo, outbox repository.OutboxRepo, notifications repository.NotificationRepo, sender mailer.Sender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		accounts:      accounts,
		briefs:        briefs,
		outbox:        outbox,
		notifications: notifications,
		sender:        sender,
		logger:        logger,
	}
}

// Handler adapts the dispatcher to the background-job queue.
func (d *Dispatcher) Handler() jobs.Handler {
	return func(ctx context.Context, j *models.BackgroundJob) error {
		var ev Event
		if err := json.Unmarshal(j.Payload, &ev); err != nil {
			return fmt.Errorf("decode event payload: %w", err)
		}
		return d.Dispatch(ctx, ev)
	}
}

// Dispatch resolves the event's recipient and delivers email and in-app
// notification for it. It returns an error only on storage faults, which the
// job queue retries (at-least-once); email failures are contained in the
// outbox so one recipient's failure never blocks another event's delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	tmpl, ok := templates[ev.Type]
	if !ok {
		// unknown events are dropped, not retried
		d.logger.Warn("no template for event", slog.String("type", ev.Type))
		return nil
	}

	brief, err := d.briefs.GetBrief(ctx, ev.BriefID)
	if err != nil {
		return fmt.Errorf("load brief %d: %w", ev.BriefID, err)
	}
	if brief == nil {
		d.logger.Warn("event references missing brief", slog.String("type", ev.Type), slog.Int64("brief_id", ev.BriefID))
		return nil
	}

	title := ev.BriefTitle
	if title == "" {
		title = brief.Title
	}

	expert, err := d.accounts.GetAccountByID(ctx, ev.ExpertID)
	if err != nil {
		return fmt.Errorf("load expert %d: %w", ev.ExpertID, err)
	}

	var recipient *models.Account
	switch ev.Type {
	case EventInviteAccepted, EventInviteDeclined:
		recipient, err = d.accounts.GetAccountByID(ctx, brief.ClientID)
		if err != nil {
			return fmt.Errorf("load client %d: %w", brief.ClientID, err)
		}
	default:
		recipient = expert
	}
	if recipient == nil {
		d.logger.Warn("event recipient missing", slog.String("type", ev.Type), slog.Int64("brief_id", ev.BriefID), slog.Int64("expert_id", ev.ExpertID))
		return nil
	}

	data := templateData{
		RecipientName: recipient.Name,
		BriefTitle:    title,
		BriefID:       ev.BriefID,
	}
	if expert != nil {
		data.ExpertName = expert.Name
	}

	subject, err := mailer.RenderTemplate(tmpl.Subject, data)
	if err != nil {
		return fmt.Errorf("render subject for %s: %w", ev.Type, err)
	}
	body, err := mailer.RenderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("render body for %s: %w", ev.Type, err)
	}
	actionURL, err := mailer.RenderTemplate(tmpl.ActionURL, data)
	if err != nil {
		return fmt.Errorf("render action url for %s: %w", ev.Type, err)
	}

	outboxID, err := d.outbox.CreateOutboxEmail(ctx, &models.OutboxEmail{
		EventType: ev.Type,
		AccountID: recipient.ID,
		Recipient: recipient.Email,
		Subject:   subject,
		Body:      body,
		Status:    models.OutboxQueued,
	})
	if err != nil {
		return fmt.Errorf("create outbox row: %w", err)
	}

	res, sendErr := d.sender.Send(ctx, mailer.Message{To: recipient.Email, Subject: subject, Body: body})
	if sendErr != nil {
		d.logger.Error("email delivery failed",
			slog.String("type", ev.Type),
			slog.Int64("account_id", recipient.ID),
			slog.Any("err", sendErr),
		)
		if err := d.outbox.MarkOutboxFailed(ctx, outboxID, sendErr.Error()); err != nil {
			return fmt.Errorf("mark outbox failed: %w", err)
		}
	} else {
		if err := d.outbox.MarkOutboxSent(ctx, outboxID, res.ProviderID); err != nil {
			return fmt.Errorf("mark outbox sent: %w", err)
		}
	}

	// in-app notification is written regardless of email outcome
	if _, err := d.notifications.CreateNotification(ctx, &models.Notification{
		AccountID: recipient.ID,
		Title:     subject,
		Body:      body,
		ActionURL: actionURL,
	}); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}
