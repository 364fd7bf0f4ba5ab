package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timeclock/internal/models"

	"gorm.io/gorm"
)

// GormStore is the SQL backend (sqlite or mysql).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the handle for health checks.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) AppendRecord(ctx context.Context, r *models.Record) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

func (s *GormStore) ListRecords(ctx context.Context, f RecordFilter) ([]models.Record, error) {
	query := s.db.WithContext(ctx).Model(&models.Record{})
	if f.PIN != "" {
		query = query.Where("pin = ?", f.PIN)
	}
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}
	if !f.From.IsZero() {
		query = query.Where("time >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		query = query.Where("time <= ?", f.To.UTC())
	}

	var records []models.Record
	if err := query.Order("time ASC").Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

func (s *GormStore) FindEmployee(ctx context.Context, pin string) (*models.Employee, error) {
	var e models.Employee
	if err := s.db.WithContext(ctx).Where("pin = ?", pin).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	return &e, nil
}

func (s *GormStore) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

func (s *GormStore) CreateEmployee(ctx context.Context, e *models.Employee) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Employee{}).Where("pin = ?", e.PIN).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check pin: %w", err)
		}
		if count > 0 {
			return ErrDuplicate
		}
		if err := tx.Create(e).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to create employee: %w", err)
		}
		return nil
	})
}

func (s *GormStore) DeleteEmployee(ctx context.Context, pin string) error {
	result := s.db.WithContext(ctx).Where("pin = ?", pin).Delete(&models.Employee{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete employee: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) UpdateEmployeeTags(ctx context.Context, pin string, tags models.StringArray) (*models.Employee, error) {
	e, err := s.FindEmployee(ctx, pin)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(e).Update("tags", tags).Error; err != nil {
		return nil, fmt.Errorf("failed to update tags: %w", err)
	}
	e.Tags = tags
	return e, nil
}

func (s *GormStore) FindAdmin(ctx context.Context, username string) (*models.Admin, error) {
	var a models.Admin
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	return &a, nil
}

func (s *GormStore) CreateAdmin(ctx context.Context, a *models.Admin) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Admin{}).Where("username = ?", a.Username).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if count > 0 {
			return ErrDuplicate
		}
		if err := tx.Create(a).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to create admin: %w", err)
		}
		return nil
	})
}

func (s *GormStore) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Admin{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

func (s *GormStore) CreateSession(ctx context.Context, sess *models.Session) error {
	sess.ExpiresAt = sess.ExpiresAt.UTC()
	if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *GormStore) GetSession(ctx context.Context, token string, now time.Time) (*models.Session, error) {
	var sess models.Session
	err := s.db.WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, now.UTC()).
		First(&sess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &sess, nil
}

func (s *GormStore) DeleteSession(ctx context.Context, token string) error {
	if err := s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *GormStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *GormStore) AppendAudit(ctx context.Context, entry *models.AuditLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
