package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lovemartco/hp-automation/internal/domain/fulfillment"
)

// ledgerEntryModel is the GORM persistence model for a ledger entry.
type ledgerEntryModel struct {
	OrderID     int64  `gorm:"primaryKey;autoIncrement:false"`
	OrderName   string `gorm:"size:64"`
	Reference   string `gorm:"size:64;index"`
	Fulfilled   bool   `gorm:"index"`
	SubmittedAt time.Time
}

func (ledgerEntryModel) TableName() string {
	return "ledger_entries"
}

func (m *ledgerEntryModel) toDomain() fulfillment.LedgerEntry {
	return fulfillment.LedgerEntry{
		OrderID:     m.OrderID,
		OrderName:   m.OrderName,
		Reference:   m.Reference,
		Fulfilled:   m.Fulfilled,
		SubmittedAt: m.SubmittedAt,
	}
}

// SQLiteLedger is the durable ledger store. Substituting it for the memory
// store removes the restart data loss of the default backing.
type SQLiteLedger struct {
	db *gorm.DB
}

// NewSQLiteLedger opens (or creates) the sqlite database at dsn and migrates
// the ledger schema.
func NewSQLiteLedger(dsn string) (*SQLiteLedger, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("persistence: open sqlite ledger: %w", err)
	}
	if err := db.AutoMigrate(&ledgerEntryModel{}); err != nil {
		return nil, fmt.Errorf("persistence: migrate ledger schema: %w", err)
	}
	return &SQLiteLedger{db: db}, nil
}

// Record inserts a new entry, rejecting duplicates by order id.
func (l *SQLiteLedger) Record(ctx context.Context, entry fulfillment.LedgerEntry) error {
	model := ledgerEntryModel{
		OrderID:     entry.OrderID,
		OrderName:   entry.OrderName,
		Reference:   entry.Reference,
		Fulfilled:   entry.Fulfilled,
		SubmittedAt: entry.SubmittedAt,
	}
	if err := l.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fulfillment.ErrAlreadyRecorded
		}
		// sqlite reports primary-key conflicts as a constraint error that
		// gorm does not always translate; probe for the existing row.
		var count int64
		l.db.WithContext(ctx).Model(&ledgerEntryModel{}).Where("order_id = ?", entry.OrderID).Count(&count)
		if count > 0 {
			return fulfillment.ErrAlreadyRecorded
		}
		return fmt.Errorf("persistence: record ledger entry: %w", err)
	}
	return nil
}

// Get returns the entry for the order id.
func (l *SQLiteLedger) Get(ctx context.Context, orderID int64) (fulfillment.LedgerEntry, error) {
	var model ledgerEntryModel
	if err := l.db.WithContext(ctx).First(&model, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fulfillment.LedgerEntry{}, fulfillment.ErrNotFound
		}
		return fulfillment.LedgerEntry{}, fmt.Errorf("persistence: load ledger entry: %w", err)
	}
	return model.toDomain(), nil
}

// Unfulfilled returns all entries not yet fulfilled.
func (l *SQLiteLedger) Unfulfilled(ctx context.Context) ([]fulfillment.LedgerEntry, error) {
	var models []ledgerEntryModel
	if err := l.db.WithContext(ctx).Where("fulfilled = ?", false).Order("submitted_at").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("persistence: list unfulfilled entries: %w", err)
	}
	entries := make([]fulfillment.LedgerEntry, 0, len(models))
	for i := range models {
		entries = append(entries, models[i].toDomain())
	}
	return entries, nil
}

// MarkFulfilled flips the fulfilled flag. The guarded UPDATE makes the
// transition observable by exactly one caller.
func (l *SQLiteLedger) MarkFulfilled(ctx context.Context, orderID int64) (bool, error) {
	res := l.db.WithContext(ctx).Model(&ledgerEntryModel{}).
		Where("order_id = ? AND fulfilled = ?", orderID, false).
		Update("fulfilled", true)
	if res.Error != nil {
		return false, fmt.Errorf("persistence: mark fulfilled: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := l.db.WithContext(ctx).Model(&ledgerEntryModel{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
			return false, fmt.Errorf("persistence: mark fulfilled: %w", err)
		}
		if count == 0 {
			return false, fulfillment.ErrNotFound
		}
		return false, nil
	}
	return true, nil
}

var _ fulfillment.Ledger = (*SQLiteLedger)(nil)
