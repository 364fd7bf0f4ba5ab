package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"timeclock/internal/models"
	"timeclock/internal/store"
)

var (
	ErrInvalidPIN       = errors.New("PIN must be exactly 4 digits")
	ErrNameTooShort     = errors.New("name must be at least 2 characters")
	ErrPINExists        = errors.New("PIN already exists")
	ErrEmployeeNotFound = errors.New("invalid PIN")
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// ValidPIN reports whether pin is exactly four ASCII digits.
func ValidPIN(pin string) bool {
	return pinPattern.MatchString(pin)
}

type EmployeeService struct {
	store store.Store
}

func NewEmployeeService(st store.Store) *EmployeeService {
	return &EmployeeService{store: st}
}

// GetEmployees returns all employees ordered by name
func (s *EmployeeService) GetEmployees(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	return employees, nil
}

// GetEmployee looks an employee up by PIN
func (s *EmployeeService) GetEmployee(ctx context.Context, pin string) (*models.Employee, error) {
	employee, err := s.store.FindEmployee(ctx, strings.TrimSpace(pin))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee, nil
}

// CreateEmployee validates and stores a new employee. PINs are immutable
// afterwards.
func (s *EmployeeService) CreateEmployee(ctx context.Context, name, pin string, tags []string) (*models.Employee, error) {
	name = strings.TrimSpace(name)
	pin = strings.TrimSpace(pin)

	if utf8.RuneCountInString(name) < 2 {
		return nil, ErrNameTooShort
	}
	if !ValidPIN(pin) {
		return nil, ErrInvalidPIN
	}

	employee := &models.Employee{
		Name: name,
		PIN:  pin,
		Tags: models.StringArray(tags).Normalize(),
	}
	if err := s.store.CreateEmployee(ctx, employee); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrPINExists
		}
		return nil, err
	}

	return employee, nil
}

// DeleteEmployee removes the employee. Their records stay in the log.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, pin string) error {
	err := s.store.DeleteEmployee(ctx, strings.TrimSpace(pin))
	if errors.Is(err, store.ErrNotFound) {
		return ErrEmployeeNotFound
	}
	return err
}

// UpdateTags replaces the employee's tag set
func (s *EmployeeService) UpdateTags(ctx context.Context, pin string, tags []string) (*models.Employee, error) {
	employee, err := s.store.UpdateEmployeeTags(ctx, strings.TrimSpace(pin), models.StringArray(tags).Normalize())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee, nil
}
