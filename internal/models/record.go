package models

import (
	"time"

	"timeclock/internal/timeclock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record is one immutable fact of the event log. Name is copied from the
// employee at write time; PIN joins by value.
type Record struct {
	ID          string           `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string           `json:"name" gorm:"type:varchar(255)"`
	PIN         string           `json:"pin" gorm:"type:varchar(4);index;not null"`
	Action      timeclock.Action `json:"action" gorm:"type:varchar(32);not null"`
	Time        time.Time        `json:"time" gorm:"index;not null"`
	IP          string           `json:"ip" gorm:"type:varchar(64)"`
	AdminAction bool             `json:"admin_action,omitempty" gorm:"not null;default:false"`
	Note        string           `json:"note,omitempty" gorm:"type:text"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	// stored as UTC so range comparisons hold on every driver
	r.Time = r.Time.UTC()
	return nil
}

// Event converts the record for the derivation engine.
func (r Record) Event() timeclock.Event {
	return timeclock.Event{PIN: r.PIN, Action: r.Action, Time: r.Time}
}

// Events converts a slice of records.
func Events(records []Record) []timeclock.Event {
	events := make([]timeclock.Event, len(records))
	for i, r := range records {
		events[i] = r.Event()
	}
	return events
}
