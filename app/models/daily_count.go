package models

import (
	"time"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tally"
)

// DailyCount is one stored day. Rows written before the two buckets existed
// only carry Count; their CountA/CountB are NULL.
type DailyCount struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"date"`
	Count     int       `gorm:"not null;default:0" json:"count"`
	CountA    *int      `gorm:"column:count_a" json:"countA"`
	CountB    *int      `gorm:"column:count_b" json:"countB"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DailyCount) TableName() string {
	return "smoking_counts"
}

// NewDailyCount builds the row for rec.
func NewDailyCount(rec tally.Record) *DailyCount {
	a, b := rec.CountA, rec.CountB
	return &DailyCount{
		Date:   rec.Date,
		Count:  rec.Total(),
		CountA: &a,
		CountB: &b,
	}
}

// Stored converts the row into the decoded form shared with other stores.
func (d *DailyCount) Stored() tally.Stored {
	if d.CountA == nil && d.CountB == nil {
		return tally.Stored{Date: d.Date, Counts: tally.LegacyTotal{Total: d.Count}}
	}
	return tally.Stored{Date: d.Date, Counts: tally.SplitCounts{A: deref(d.CountA), B: deref(d.CountB)}}
}

func deref(v *int) int {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}
