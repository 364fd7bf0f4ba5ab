package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"timeclock/internal/config"
	"timeclock/internal/models"
	"timeclock/internal/store"
	"timeclock/internal/timeclock"

	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Record
}

func (n *recordingNotifier) Notify(_ context.Context, rec models.Record) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, rec)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// failingNotifier rejects every notification.
type failingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *failingNotifier) Notify(context.Context, models.Record) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return errors.New("webhook returned 500")
}

func (n *failingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

// failingAppendStore refuses appends for one PIN and delegates the rest.
type failingAppendStore struct {
	store.Store
	pin string
}

func (s *failingAppendStore) AppendRecord(ctx context.Context, r *models.Record) error {
	if r.PIN == s.pin {
		return errors.New("disk full")
	}
	return s.Store.AppendRecord(ctx, r)
}

type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = t
}

type testEnv struct {
	cfg       *config.Config
	store     store.Store
	clock     *timeclock.Clock
	now       *fakeNow
	notifier  *recordingNotifier
	employees *EmployeeService
	records   *RecordService
	reports   *ReportService
	dashboard *DashboardService
	auth      *AuthService
}

var pacific = mustLoad("America/Los_Angeles")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// monday is 2024-03-11, a Monday, in Pacific time.
func monday(hhmm string) time.Time {
	d, err := timeclock.ParseClock(hhmm)
	if err != nil {
		panic(err)
	}
	return time.Date(2024, 3, 11, 0, 0, 0, 0, pacific).Add(d)
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), "test.db")
	cfg.Session.Secret = "test-secret"
	cfg.Security.BcryptCost = 4
	for _, m := range mutate {
		m(cfg)
	}

	st, err := store.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	now := &fakeNow{t: monday("08:00")}
	clock := timeclock.NewClock(pacific, now.Now)
	notifier := &recordingNotifier{}

	records, err := NewRecordService(cfg, st, clock, notifier)
	require.NoError(t, err)

	return &testEnv{
		cfg:       cfg,
		store:     st,
		clock:     clock,
		now:       now,
		notifier:  notifier,
		employees: NewEmployeeService(st),
		records:   records,
		reports:   NewReportService(st, clock),
		dashboard: NewDashboardService(st, clock),
		auth:      NewAuthService(cfg, st, clock),
	}
}

func (e *testEnv) addEmployee(t *testing.T, name, pin string, tags ...string) {
	t.Helper()
	_, err := e.employees.CreateEmployee(context.Background(), name, pin, tags)
	require.NoError(t, err)
}

// act appends a keypad action at hh:mm on the test Monday.
func (e *testEnv) act(t *testing.T, pin string, action timeclock.Action, hhmm string) {
	t.Helper()
	_, err := e.records.AddRecord(context.Background(), RecordInput{
		PIN:    pin,
		Action: string(action),
		Time:   monday(hhmm).Format(time.RFC3339),
		IP:     "10.0.0.1",
	})
	require.NoError(t, err)
}
