package jobs

import (
	"context"
	"sort"

	gateway "github.com/cshealth/reminder-gateway/internal/gateways"
	"github.com/cshealth/reminder-gateway/internal/processor"
	"github.com/cshealth/reminder-gateway/pkg/logger"
)

// IngestInbox pulls the primary gateway's inbox feed and runs every new
// message through the text processor. Messages from the same number are
// handled in arrival order; a two-part signup must not race its own STOP.
type IngestInbox struct {
	reader gateway.InboxReader
	proc   *processor.Processor
}

func NewIngestInbox(reader gateway.InboxReader, proc *processor.Processor) *IngestInbox {
	return &IngestInbox{
		reader: reader,
		proc:   proc,
	}
}

func (j *IngestInbox) Run(ctx context.Context) error {
	inbox, err := j.reader.ReadInbox(ctx)
	if err != nil {
		return err
	}

	phones := make([]string, 0, len(inbox))
	for phone := range inbox {
		phones = append(phones, phone)
	}
	sort.Strings(phones)

	var processed, failed int
	for _, phone := range phones {
		for _, m := range inbox[phone] {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcome, err := j.proc.Process(ctx, phone, m.Body, m.ReceivedAt)
			if err != nil {
				logger.Error("inbound processing failed", "phone", phone, "error", err)
				failed++
				continue
			}
			logger.Info("inbound processed", "phone", phone, "action", string(outcome.Action))
			processed++
		}
	}

	logger.Info("ingest-inbox finished", "processed", processed, "failed", failed)
	return nil
}
