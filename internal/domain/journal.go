package domain

import (
	"context"
	"encoding/json"
	"time"
)

// JournalEntry is one committed command, in commit order.
type JournalEntry struct {
	Seq       uint64
	CommandID string
	Kind      string
	Payload   json.RawMessage
	At        time.Time
}

// Snapshot is the serialized ledger state as of Seq.
type Snapshot struct {
	Seq       uint64
	State     json.RawMessage
	CreatedAt time.Time
}

type JournalRepository interface {
	Append(ctx context.Context, entry *JournalEntry) error
	EntriesAfter(ctx context.Context, seq uint64) ([]*JournalEntry, error)
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error
	LatestSnapshot(ctx context.Context) (*Snapshot, error)
}
