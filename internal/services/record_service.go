package services

import (
	"context"
	"time"

	"github.com/pasumerce/inventario/internal/models"
	"gorm.io/gorm"
)

const (
	DefaultRecentLimit = 50
	MaxRecentLimit     = 500
)

// RecordService reads the production log. Records are never changed after
// the production engine appends them.
type RecordService struct {
	db *gorm.DB
}

func NewRecordService(db *gorm.DB) *RecordService { return &RecordService{db: db} }

// ByDate lists the runs of one calendar day, oldest first.
func (s *RecordService) ByDate(ctx context.Context, day time.Time) ([]models.ProductionRecord, error) {
	from := models.CalendarDate(day)
	to := from.AddDate(0, 0, 1)
	var out []models.ProductionRecord
	err := s.db.WithContext(ctx).
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("date >= ? AND date < ?", from, to).
		Order("id asc").
		Find(&out).Error
	if err != nil {
		return nil, internal("list production records", err)
	}
	return out, nil
}

// Recent lists the latest runs, newest first. limit is clamped to
// [1, MaxRecentLimit]; zero means DefaultRecentLimit.
func (s *RecordService) Recent(ctx context.Context, limit int) ([]models.ProductionRecord, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}
	var out []models.ProductionRecord
	err := s.db.WithContext(ctx).
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("id desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, internal("list production records", err)
	}
	return out, nil
}
