package repository

import (
	"context"
	"errors"

	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/LavaJover/credit-ledger/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/credit-ledger/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultJournalRepository struct {
	DB *gorm.DB
}

func NewDefaultJournalRepository(db *gorm.DB) *DefaultJournalRepository {
	return &DefaultJournalRepository{
		DB: db,
	}
}

// Append fails if an entry with the same sequence number already exists, so a
// second writer against the same database cannot fork the journal.
func (r *DefaultJournalRepository) Append(ctx context.Context, entry *domain.JournalEntry) error {
	return r.DB.WithContext(ctx).Create(mappers.ToGORMJournalEntry(entry)).Error
}

func (r *DefaultJournalRepository) EntriesAfter(ctx context.Context, seq uint64) ([]*domain.JournalEntry, error) {
	var entryModels []*models.JournalEntryModel
	if err := r.DB.WithContext(ctx).
		Model(&models.JournalEntryModel{}).
		Where("seq > ?", seq).
		Order("seq ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*domain.JournalEntry, len(entryModels))
	for i, entryModel := range entryModels {
		entries[i] = mappers.ToDomainJournalEntry(entryModel)
	}
	return entries, nil
}

func (r *DefaultJournalRepository) SaveSnapshot(ctx context.Context, snapshot *domain.Snapshot) error {
	return r.DB.WithContext(ctx).Save(mappers.ToGORMSnapshot(snapshot)).Error
}

func (r *DefaultJournalRepository) LatestSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	var snapshotModel models.SnapshotModel
	err := r.DB.WithContext(ctx).Order("seq DESC").First(&snapshotModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainSnapshot(&snapshotModel), nil
}

// PruneSnapshots keeps the newest keep snapshots.
func (r *DefaultJournalRepository) PruneSnapshots(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	var cutoff models.SnapshotModel
	err := r.DB.WithContext(ctx).Order("seq DESC").Offset(keep - 1).First(&cutoff).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	res := r.DB.WithContext(ctx).Where("seq < ?", cutoff.Seq).Delete(&models.SnapshotModel{})
	return res.RowsAffected, res.Error
}
