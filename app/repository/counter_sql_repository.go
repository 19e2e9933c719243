package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/SmokeCounter/app/models"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tally"
)

// sqlCounterRepository implements CounterRepository on the smoking_counts table
type sqlCounterRepository struct {
	db     *gorm.DB
	driver string
}

// NewSQLCounterRepository creates a GORM-backed counter store
func NewSQLCounterRepository(db *gorm.DB, driver string) CounterRepository {
	return &sqlCounterRepository{db: db, driver: driver}
}

func (r *sqlCounterRepository) Get(ctx context.Context, date string) (*tally.Stored, error) {
	var row models.DailyCount
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	stored := row.Stored()
	return &stored, nil
}

func (r *sqlCounterRepository) Save(ctx context.Context, rec tally.Record) error {
	row := models.NewDailyCount(rec)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "date"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"count",
			"count_a",
			"count_b",
			"updated_at",
		}),
	}).Create(row).Error
}

func (r *sqlCounterRepository) Reset(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.DailyCount{})
	return result.RowsAffected, result.Error
}

func (r *sqlCounterRepository) Driver() string {
	return r.driver
}
