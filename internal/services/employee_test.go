package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEmployeeValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		empName string
		pin     string
		wantErr error
	}{
		{"two digit pin", "Ana", "12", ErrInvalidPIN},
		{"five digit pin", "Ana", "12345", ErrInvalidPIN},
		{"letters in pin", "Ana", "12a4", ErrInvalidPIN},
		{"name too short", " A ", "1234", ErrNameTooShort},
		{"valid", "  Ana Lopez ", "1234", nil},
		{"duplicate pin", "Ben", "1234", ErrPINExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := env.employees.CreateEmployee(ctx, tt.empName, tt.pin, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Ana Lopez", e.Name)
		})
	}

	list, err := env.employees.GetEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateTagsNormalizes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addEmployee(t, "Ana", "1234")

	e, err := env.employees.UpdateTags(ctx, "1234", []string{" MX ", "Closer", "mx", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"Closer", "MX"}, []string(e.Tags))

	_, err = env.employees.UpdateTags(ctx, "9999", []string{"MX"})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestDeleteEmployee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addEmployee(t, "Ana", "1234")

	require.NoError(t, env.employees.DeleteEmployee(ctx, "1234"))
	assert.ErrorIs(t, env.employees.DeleteEmployee(ctx, "1234"), ErrEmployeeNotFound)
}
