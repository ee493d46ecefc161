package mappers

import (
	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/LavaJover/credit-ledger/internal/infrastructure/postgres/models"
)

func ToGORMJournalEntry(entry *domain.JournalEntry) *models.JournalEntryModel {
	return &models.JournalEntryModel{
		Seq:       entry.Seq,
		CommandID: entry.CommandID,
		Kind:      entry.Kind,
		Payload:   entry.Payload,
		At:        entry.At.UTC(),
	}
}

func ToDomainJournalEntry(model *models.JournalEntryModel) *domain.JournalEntry {
	return &domain.JournalEntry{
		Seq:       model.Seq,
		CommandID: model.CommandID,
		Kind:      model.Kind,
		Payload:   model.Payload,
		At:        model.At.UTC(),
	}
}

func ToGORMSnapshot(snapshot *domain.Snapshot) *models.SnapshotModel {
	return &models.SnapshotModel{
		Seq:       snapshot.Seq,
		State:     snapshot.State,
		CreatedAt: snapshot.CreatedAt.UTC(),
	}
}

func ToDomainSnapshot(model *models.SnapshotModel) *domain.Snapshot {
	return &domain.Snapshot{
		Seq:       model.Seq,
		State:     model.State,
		CreatedAt: model.CreatedAt.UTC(),
	}
}
