package usecase

import (
	"context"

	"github.com/LavaJover/credit-ledger/internal/domain"
	publisher "github.com/LavaJover/credit-ledger/internal/infrastructure/kafka"
	"github.com/LavaJover/credit-ledger/internal/infrastructure/metrics"
	"github.com/sirupsen/logrus"
)

type EventPublisher interface {
	PublishLedgerEvents(topic string, events []publisher.LedgerEvent, batchSize int, maxRetries int) error
}

// EventDispatcher is the ledger's event sink. Metrics are updated inline;
// publication happens on a single worker, in dispatch order.
type EventDispatcher struct {
	publisher  EventPublisher
	topic      string
	metrics    *metrics.LedgerMetrics
	log        logrus.FieldLogger
	queue      chan []publisher.LedgerEvent
	stopped    chan struct{}
	MaxRetries int
}

func NewEventDispatcher(pub EventPublisher, topic string, m *metrics.LedgerMetrics, log logrus.FieldLogger, buffer int) *EventDispatcher {
	if buffer <= 0 {
		buffer = 1024
	}
	return &EventDispatcher{
		publisher:  pub,
		topic:      topic,
		metrics:    m,
		log:        log,
		queue:      make(chan []publisher.LedgerEvent, buffer),
		stopped:    make(chan struct{}),
		MaxRetries: 3,
	}
}

func (d *EventDispatcher) Dispatch(events []domain.Event) {
	if d.metrics != nil {
		d.metrics.ObserveEvents(events)
	}
	for _, e := range events {
		d.log.WithFields(logrus.Fields{"seq": e.Seq, "type": e.Type, "account": e.Account}).Debug("ledger event")
	}
	if d.publisher == nil {
		return
	}

	batch := make([]publisher.LedgerEvent, len(events))
	for i, e := range events {
		batch[i] = publisher.NewLedgerEvent(e)
	}
	select {
	case <-d.stopped:
		d.drop(batch)
		return
	default:
	}
	select {
	case d.queue <- batch:
	case <-d.stopped:
		d.drop(batch)
	}
}

func (d *EventDispatcher) drop(batch []publisher.LedgerEvent) {
	d.log.WithField("events", len(batch)).Warn("dispatcher stopped, events not published")
	d.countPublished("dropped", len(batch))
}

// Run publishes queued events until ctx is done, then flushes what is left.
func (d *EventDispatcher) Run(ctx context.Context) {
	defer close(d.stopped)
	for {
		select {
		case batch := <-d.queue:
			d.publish(batch)
		case <-ctx.Done():
			for {
				select {
				case batch := <-d.queue:
					d.publish(batch)
				default:
					return
				}
			}
		}
	}
}

func (d *EventDispatcher) publish(batch []publisher.LedgerEvent) {
	if err := d.publisher.PublishLedgerEvents(d.topic, batch, len(batch), d.MaxRetries); err != nil {
		d.log.WithError(err).WithField("events", len(batch)).Error("failed to publish ledger events")
		d.countPublished("failed", len(batch))
		return
	}
	d.countPublished("ok", len(batch))
}

func (d *EventDispatcher) countPublished(result string, n int) {
	if d.metrics != nil {
		d.metrics.EventsPublished.WithLabelValues(result).Add(float64(n))
	}
}
