package logger

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// OperationFailedEvent is a rejected ledger command, kept for support and audit.
type OperationFailedEvent struct {
	ID         uint   `gorm:"primaryKey"`
	RequestID  string `gorm:"index"`
	Operation  string `gorm:"index"`
	Caller     string `gorm:"index"`
	ErrorClass string
	Reason     string
	Payload    string
	Timestamp  time.Time
}

func (OperationFailedEvent) TableName() string {
	return "operation_failures"
}

type OperationEventLogger interface {
	LogOperationFailed(ctx context.Context, event OperationFailedEvent) error
}

type PGOperationEventLogger struct {
	db *gorm.DB
}

func NewPGOperationEventLogger(db *gorm.DB) *PGOperationEventLogger {
	return &PGOperationEventLogger{db: db}
}

func (l *PGOperationEventLogger) LogOperationFailed(ctx context.Context, event OperationFailedEvent) error {
	return l.db.WithContext(ctx).Create(&event).Error
}
