package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
	"github.com/sangreguerrer/Netology-Final/pkg/logger"
	"github.com/sangreguerrer/Netology-Final/pkg/metrics"
)

// ChannelPublisher is the transport the publisher drains events into.
type ChannelPublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// PublisherOptions tunes the drain loop.
type PublisherOptions struct {
	Channel      string
	BatchSize    int
	PollInterval time.Duration
	MaxAttempts  int
}

// Publisher moves committed outbox rows onto the Redis channel. Rows that
// keep failing stop being retried once they hit MaxAttempts.
type Publisher struct {
	repo *Repository
	sink ChannelPublisher
	opts PublisherOptions
	logg *logger.Logger
}

// NewPublisher builds the outbox drain loop.
func NewPublisher(repo *Repository, sink ChannelPublisher, opts PublisherOptions, logg *logger.Logger) (*Publisher, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("channel publisher is required")
	}
	if opts.Channel == "" {
		return nil, fmt.Errorf("channel is required")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 10
	}
	return &Publisher{repo: repo, sink: sink, opts: opts, logg: logg}, nil
}

// Run drains batches until the context is canceled.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			published, failed, err := p.RunOnce(ctx)
			if err != nil && p.logg != nil {
				p.logg.Error(ctx, "outbox drain pass failed", err)
			}
			if p.logg == nil {
				continue
			}
			if published == 0 && failed == 0 {
				p.logg.Debug(ctx, "outbox drain pass idle")
				continue
			}
			logCtx := p.logg.WithFields(ctx, map[string]any{
				"published": published,
				"failed":    failed,
			})
			p.logg.Info(logCtx, "outbox drain pass finished")
		}
	}
}

// RunOnce publishes one batch of pending rows. Failures are recorded per row
// and aggregated; a failing row never blocks its siblings.
func (p *Publisher) RunOnce(ctx context.Context) (int, int, error) {
	rows, err := p.repo.FetchUnpublished(p.opts.BatchSize, p.opts.MaxAttempts)
	if err != nil {
		return 0, 0, fmt.Errorf("fetching pending events: %w", err)
	}

	var published, failed int
	var errs error
	for _, row := range rows {
		if err := p.publishRow(ctx, row); err != nil {
			failed++
			errs = multierr.Append(errs, fmt.Errorf("event %s: %w", row.ID, err))
			metrics.ObserveOutboxPublish("failed")
			if markErr := p.repo.MarkFailed(row.ID, err); markErr != nil {
				errs = multierr.Append(errs, fmt.Errorf("marking event %s failed: %w", row.ID, markErr))
			}
			continue
		}
		published++
		metrics.ObserveOutboxPublish("published")
		if err := p.repo.MarkPublished(row.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("marking event %s published: %w", row.ID, err))
		}
	}
	return published, failed, errs
}

func (p *Publisher) publishRow(ctx context.Context, row models.OutboxEvent) error {
	var envelope PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &envelope); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	msg := Message{
		EventType:     row.EventType,
		AggregateType: row.AggregateType,
		AggregateID:   row.AggregateID,
		Envelope:      envelope,
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	return p.sink.Publish(ctx, p.opts.Channel, raw)
}
