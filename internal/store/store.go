// Package store persists employees, admins, the clock event log, sessions
// and the audit trail. Stores never validate action sequences; that is the
// record service's job.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timeclock/internal/config"
	"timeclock/internal/models"
	"timeclock/internal/timeclock"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// RecordFilter narrows ListRecords. Zero fields match everything; From and
// To are inclusive.
type RecordFilter struct {
	PIN    string
	From   time.Time
	To     time.Time
	Action timeclock.Action
}

// Match reports whether r passes the filter.
func (f RecordFilter) Match(r *models.Record) bool {
	if f.PIN != "" && r.PIN != f.PIN {
		return false
	}
	if f.Action != "" && r.Action != f.Action {
		return false
	}
	return timeclock.InWindow(r.Time, f.From, f.To)
}

type Store interface {
	// AppendRecord assigns an id when empty and appends without checks.
	AppendRecord(ctx context.Context, r *models.Record) error
	// ListRecords returns matching records in ascending time order.
	ListRecords(ctx context.Context, f RecordFilter) ([]models.Record, error)

	FindEmployee(ctx context.Context, pin string) (*models.Employee, error)
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	CreateEmployee(ctx context.Context, e *models.Employee) error
	DeleteEmployee(ctx context.Context, pin string) error
	UpdateEmployeeTags(ctx context.Context, pin string, tags models.StringArray) (*models.Employee, error)

	FindAdmin(ctx context.Context, username string) (*models.Admin, error)
	CreateAdmin(ctx context.Context, a *models.Admin) error
	CountAdmins(ctx context.Context) (int64, error)

	CreateSession(ctx context.Context, s *models.Session) error
	// GetSession returns ErrNotFound for unknown and expired tokens alike.
	GetSession(ctx context.Context, token string, now time.Time) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	AppendAudit(ctx context.Context, entry *models.AuditLog) error

	Close() error
}

// Open returns the backend selected by database.type.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Database.Type {
	case "bolt":
		return OpenBolt(cfg.Database.Bolt.Path, config.Duration(cfg.Database.Bolt.Timeout, time.Second))
	case "sqlite", "mysql":
		db, err := models.OpenDB(cfg)
		if err != nil {
			return nil, err
		}
		return NewGormStore(db), nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
}
