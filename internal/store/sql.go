package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocalEntry is one row of the SQL-backed local store.
type LocalEntry struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName pins the table name independent of GORM's pluralization.
func (LocalEntry) TableName() string {
	return "local_entries"
}

// SQLBackend stores keys as rows in local_entries (sqlite or postgres).
type SQLBackend struct {
	db *gorm.DB
}

// NewSQLBackend migrates the local_entries table and returns the backend.
func NewSQLBackend(db *gorm.DB) (*SQLBackend, error) {
	if err := db.AutoMigrate(&LocalEntry{}); err != nil {
		return nil, fmt.Errorf("migrate local_entries: %w", err)
	}
	return &SQLBackend{db: db}, nil
}

func (b *SQLBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var entry LocalEntry
	err := b.db.WithContext(ctx).Where("key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (b *SQLBackend) Set(ctx context.Context, key, value string) error {
	entry := LocalEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (b *SQLBackend) Remove(ctx context.Context, key string) error {
	return b.db.WithContext(ctx).Where("key = ?", key).Delete(&LocalEntry{}).Error
}

func (b *SQLBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
