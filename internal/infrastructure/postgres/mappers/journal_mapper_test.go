package mappers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestJournalEntryMapping_NormalizesToUTC(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	entry := &domain.JournalEntry{
		Seq:       7,
		CommandID: "V1StGXR8_Z5jdHi6B-myT",
		Kind:      "seed_capital",
		Payload:   json.RawMessage(`{"caller":"0xadmin","amount":"10"}`),
		At:        at,
	}

	model := ToGORMJournalEntry(entry)
	assert.Equal(t, time.UTC, model.At.Location())
	assert.True(t, model.At.Equal(at))

	back := ToDomainJournalEntry(model)
	assert.Equal(t, entry.Seq, back.Seq)
	assert.Equal(t, entry.CommandID, back.CommandID)
	assert.JSONEq(t, string(entry.Payload), string(back.Payload))
}
