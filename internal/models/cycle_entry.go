package models

import "time"

// CycleEntry is one logged day. CycleDay 1 marks the first day of a cycle.
type CycleEntry struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:uidx_cycle_entries_user_date"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:uidx_cycle_entries_user_date"`
	CycleDay  int       `gorm:"not null"`
	IsPeriod  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (CycleEntry) TableName() string {
	return "cycle_entries"
}

func (entry CycleEntry) IsCycleStart() bool {
	return entry.CycleDay == 1
}
