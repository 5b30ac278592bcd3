// Package jobs holds the periodic drivers: remind-all and ingest-inbox.
// Both are written to run either one-shot from a CLI or on a cron tick
// inside the scheduler daemon.
package jobs

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cshealth/reminder-gateway/internal/dates"
	gateway "github.com/cshealth/reminder-gateway/internal/gateways"
	"github.com/cshealth/reminder-gateway/internal/model"
	"github.com/cshealth/reminder-gateway/internal/repository"
	"github.com/cshealth/reminder-gateway/internal/scheduler"
	"github.com/cshealth/reminder-gateway/pkg/logger"
	"github.com/cshealth/reminder-gateway/pkg/prom"
	"github.com/cshealth/reminder-gateway/pkg/worker"
)

const sendTimeout = 30 * time.Second

// RemindAll walks every active contact, evaluates today's reminder grid and
// sends the matching template. The dedup key in the message log makes the
// whole run re-entrant: cron can fire it every ten minutes without double
// sends.
type RemindAll struct {
	contacts *repository.ContactRepository
	messages *repository.MessageRepository
	sender   gateway.Sender
	location *time.Location
	workers  int
	now      func() time.Time
}

func NewRemindAll(contacts *repository.ContactRepository, messages *repository.MessageRepository, sender gateway.Sender, location *time.Location, workers int) *RemindAll {
	return &RemindAll{
		contacts: contacts,
		messages: messages,
		sender:   sender,
		location: location,
		workers:  workers,
		now:      time.Now,
	}
}

// Run performs one full pass. A single contact's failure is logged and
// counted, never fatal; only being unable to list the contacts is.
func (j *RemindAll) Run(ctx context.Context) error {
	today := dates.Today(j.location)

	contacts, err := j.contacts.AllActive(ctx)
	if err != nil {
		return err
	}
	logger.Info("remind-all starting", "date", dates.Format(today), "contacts", len(contacts))

	var sent, skipped, failed int64
	locks := worker.NewKeyedMutex()

	pool := worker.NewPool(len(contacts), j.workers, func(_ int, job interface{}) {
		c := job.(*model.Contact)
		if ctx.Err() != nil {
			return
		}
		locks.Lock(c.PhoneNumber)
		defer locks.Unlock(c.PhoneNumber)

		switch j.remindOne(ctx, c, today) {
		case outcomeSent:
			atomic.AddInt64(&sent, 1)
		case outcomeSkipped:
			atomic.AddInt64(&skipped, 1)
		case outcomeFailed:
			atomic.AddInt64(&failed, 1)
		}
	})
	pool.Start()
	for _, c := range contacts {
		pool.Enqueue(c)
	}
	pool.Close()

	logger.Info("remind-all finished", "sent", sent, "skipped", skipped, "failed", failed)
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

type remindOutcome int

const (
	outcomeSkipped remindOutcome = iota
	outcomeSent
	outcomeFailed
)

func (j *RemindAll) remindOne(ctx context.Context, c *model.Contact, today time.Time) remindOutcome {
	decision := scheduler.Decide(c, today)
	if !decision.Fire {
		prom.IncCounterVec(prom.SystemReminders, prom.MetricRemindersSkipped, "not_due")
		return outcomeSkipped
	}

	key := repository.DedupKey(c.ID, today, decision.Kind)
	seen, err := j.messages.Seen(ctx, key)
	if err != nil {
		logger.Error("dedup lookup failed", "contact_id", c.ID, "error", err)
		return outcomeFailed
	}
	if seen {
		prom.IncCounterVec(prom.SystemReminders, prom.MetricRemindersSkipped, "already_sent")
		return outcomeSkipped
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	result, err := j.sender.Send(sendCtx, decision.Body, c.PhoneNumber)
	if err != nil {
		logger.Error("reminder send failed", "contact_id", c.ID, "kind", string(decision.Kind), "error", err)
		prom.IncCounterVec(prom.SystemReminders, prom.MetricRemindersSkipped, "send_failed")
		return outcomeFailed
	}
	if !result.Success {
		logger.Error("gateway rejected reminder", "contact_id", c.ID, "kind", string(decision.Kind), "response", string(result.Raw))
		prom.IncCounterVec(prom.SystemReminders, prom.MetricRemindersSkipped, "gateway_rejected")
		return outcomeFailed
	}

	sentAt := j.now()
	msg, err := j.messages.RecordOutgoing(ctx, &c.ID, decision.Body, nil, &key)
	if err != nil {
		logger.Error("failed to log reminder", "contact_id", c.ID, "error", err)
		return outcomeFailed
	}
	if err := j.messages.MarkSent(ctx, msg.ID, sentAt); err != nil {
		logger.Error("failed to mark reminder sent", "message_id", msg.ID, "error", err)
	}
	if err := j.contacts.UpdateLastContacted(ctx, c.ID, sentAt); err != nil {
		logger.Error("failed to update last_contacted", "contact_id", c.ID, "error", err)
	}

	logger.Info("reminder sent", "contact_id", c.ID, "kind", decision.Kind.TemplateKey(decision.Offset))
	prom.IncCounterVec(prom.SystemReminders, prom.MetricRemindersSent, decision.Kind.TemplateKey(decision.Offset))
	return outcomeSent
}
