package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/benbjohnson/clock"
	"github.com/jaevor/go-nanoid"
	"github.com/shopspring/decimal"
)

var ErrJournal = errors.New("journal write failed")

// Receipt is what a committed command returns: the new sequence number plus
// the created id or computed amount where the command has one.
type Receipt struct {
	Seq    uint64
	ID     uint64
	Amount decimal.Decimal
}

// effect applies an already validated command. It must not fail.
type effect func() (Receipt, []domain.Event)

// txn is the view a command plans against: current state, parameters and the
// single timestamp the whole command observes.
type txn struct {
	*state
	p   *Params
	now time.Time
}

// Ledger is the single-writer credit ledger. Every mutating call runs inside
// commit: validate, journal, apply, then dispatch events with the lock released.
// The sink sees batches in Seq order.
type Ledger struct {
	mu      sync.RWMutex
	params  Params
	clock   clock.Clock
	state   *state
	journal domain.JournalRepository
	sink    domain.EventSink
	newID   func() string

	// outbox holds committed event batches not yet handed to the sink.
	// Both fields are guarded by mu.
	outbox   [][]domain.Event
	draining bool
}

// New builds an empty ledger. journal and sink may be nil.
func New(params Params, clk clock.Clock, journal domain.JournalRepository, sink domain.EventSink) (*Ledger, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	idGenerator, err := nanoid.Standard(21)
	if err != nil {
		return nil, err
	}
	return &Ledger{
		params:  params,
		clock:   clk,
		state:   newState(),
		journal: journal,
		sink:    sink,
		newID:   idGenerator,
	}, nil
}

func (l *Ledger) Params() Params {
	return l.params
}

// Execute commits cmd at the current clock time.
func (l *Ledger) Execute(ctx context.Context, cmd Command) (Receipt, error) {
	return l.commit(ctx, cmd, l.clock.Now(), false)
}

func (l *Ledger) commit(ctx context.Context, cmd Command, now time.Time, replay bool) (Receipt, error) {
	if cmd.caller() == l.params.Vault {
		return Receipt{}, fmt.Errorf("vault cannot act as a caller: %w", domain.ErrUnauthorized)
	}

	l.mu.Lock()
	tx := &txn{state: l.state, p: &l.params, now: now}
	apply, err := cmd.plan(tx)
	if err != nil {
		l.mu.Unlock()
		return Receipt{}, err
	}

	seq := l.state.Seq + 1
	if !replay && l.journal != nil {
		payload, err := json.Marshal(cmd)
		if err != nil {
			l.mu.Unlock()
			return Receipt{}, fmt.Errorf("encode %s: %w", cmd.Kind(), err)
		}
		entry := &domain.JournalEntry{
			Seq:       seq,
			CommandID: l.newID(),
			Kind:      cmd.Kind(),
			Payload:   payload,
			At:        now,
		}
		if err := l.journal.Append(ctx, entry); err != nil {
			l.mu.Unlock()
			return Receipt{}, fmt.Errorf("%w: %s #%d: %v", ErrJournal, cmd.Kind(), seq, err)
		}
	}

	l.state.Seq = seq
	receipt, events := apply()
	receipt.Seq = seq
	for i := range events {
		events[i].Seq = seq
		events[i].At = now
	}
	queued := !replay && l.sink != nil && len(events) > 0
	if queued {
		l.outbox = append(l.outbox, events)
	}
	l.mu.Unlock()

	if queued {
		l.drain()
	}
	return receipt, nil
}

// drain hands queued batches to the sink in Seq order with mu released.
// One goroutine drains at a time; batches committed meanwhile, including by
// re-entrant calls from the sink, are delivered by the active drainer.
func (l *Ledger) drain() {
	l.mu.Lock()
	if l.draining {
		l.mu.Unlock()
		return
	}
	l.draining = true
	defer func() {
		l.draining = false
		l.mu.Unlock()
	}()
	for len(l.outbox) > 0 {
		batch := l.outbox[0]
		l.outbox[0] = nil
		l.outbox = l.outbox[1:]
		l.dispatchUnlocked(batch)
	}
}

func (l *Ledger) dispatchUnlocked(batch []domain.Event) {
	l.mu.Unlock()
	defer l.mu.Lock()
	l.sink.Dispatch(batch)
}

// Restore loads the latest snapshot and replays every later journal entry.
// It must run before the ledger serves calls.
func (l *Ledger) Restore(ctx context.Context) (uint64, error) {
	if l.journal == nil {
		return 0, nil
	}
	restored := newState()
	snapshot, err := l.journal.LatestSnapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("load snapshot: %w", err)
	}
	if snapshot != nil {
		if err := json.Unmarshal(snapshot.State, restored); err != nil {
			return 0, fmt.Errorf("decode snapshot #%d: %w", snapshot.Seq, err)
		}
		restored.normalize()
	}

	l.mu.Lock()
	l.state = restored
	l.mu.Unlock()

	entries, err := l.journal.EntriesAfter(ctx, restored.Seq)
	if err != nil {
		return 0, fmt.Errorf("load journal: %w", err)
	}
	for _, entry := range entries {
		if entry.Seq != l.state.Seq+1 {
			return 0, fmt.Errorf("journal gap: have #%d, next entry #%d", l.state.Seq, entry.Seq)
		}
		cmd, err := DecodeCommand(entry.Kind, entry.Payload)
		if err != nil {
			return 0, fmt.Errorf("decode journal #%d: %w", entry.Seq, err)
		}
		if _, err := l.commit(ctx, cmd, entry.At, true); err != nil {
			return 0, fmt.Errorf("replay journal #%d %s: %w", entry.Seq, entry.Kind, err)
		}
	}
	return l.state.Seq, nil
}

// Snapshot persists the full state at the current sequence number.
func (l *Ledger) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	if l.journal == nil {
		return nil, nil
	}
	l.mu.RLock()
	raw, err := json.Marshal(l.state)
	seq := l.state.Seq
	l.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	snapshot := &domain.Snapshot{Seq: seq, State: raw, CreatedAt: l.clock.Now()}
	if err := l.journal.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}
