package models

import "time"

type JournalEntryModel struct {
	Seq       uint64 `gorm:"primaryKey;autoIncrement:false"`
	CommandID string `gorm:"uniqueIndex;size:32"`
	Kind      string `gorm:"index;size:64"`
	Payload   []byte `gorm:"type:jsonb"`
	At        time.Time
	CreatedAt time.Time
}

func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

type SnapshotModel struct {
	Seq       uint64 `gorm:"primaryKey;autoIncrement:false"`
	State     []byte `gorm:"type:jsonb"`
	CreatedAt time.Time
}

func (SnapshotModel) TableName() string {
	return "ledger_snapshots"
}
