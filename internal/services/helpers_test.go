package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/diewo77/go-lessons/auth"
	"github.com/diewo77/go-lessons/gate"
	"github.com/diewo77/go-lessons/internal/db"
	"github.com/diewo77/go-lessons/internal/models"
	"github.com/diewo77/go-lessons/internal/policy"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testNow is a Wednesday.
var testNow = time.Date(2030, 6, 12, 10, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{NowFunc: func() time.Time { return time.Now().UTC() }})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(d))
	sqlDB, err := d.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return d
}

type recorder struct {
	mu            sync.Mutex
	bookings      map[string]int
	transitions   []string
	slots         int
	verifications []string
}

func newRecorder() *recorder { return &recorder{bookings: map[string]int{}} }

func (r *recorder) Booking(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[result]++
}

func (r *recorder) Transition(from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, from+"->"+to)
}

func (r *recorder) SlotCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots++
}

func (r *recorder) VerificationDecided(decision string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verifications = append(r.verifications, decision)
}

type fixture struct {
	db      *gorm.DB
	gate    *gate.Gate[auth.Caller]
	opts    Options
	metrics *recorder
	seq     int
}

func newFixture(t *testing.T) *fixture {
	rec := newRecorder()
	return &fixture{
		db:      setupTestDB(t),
		gate:    policy.NewGate(),
		metrics: rec,
		opts: Options{
			RequireVerifiedInstructor: true,
			ResetVerificationOnEdit:   true,
			Now:                       func() time.Time { return testNow },
			Metrics:                   rec,
		},
	}
}

func (f *fixture) appointments() *AppointmentService {
	return NewAppointmentService(f.db, f.gate, f.opts)
}

func (f *fixture) slots() *SlotService { return NewSlotService(f.db, f.gate, f.opts) }

func (f *fixture) profiles() *ProfileService { return NewProfileService(f.db, f.gate, f.opts) }

func (f *fixture) verification() *VerificationService {
	return NewVerificationService(f.db, f.gate, f.opts)
}

func (f *fixture) user(t *testing.T, role models.Role, name string) auth.Caller {
	t.Helper()
	f.seq++
	p := models.Profile{Role: role, FullName: name, Email: fmt.Sprintf("user%d@example.com", f.seq)}
	require.NoError(t, f.db.Create(&p).Error)
	return auth.Caller{ID: p.ID, Role: string(role)}
}

// instructor creates an instructor with an asset in the given status.
func (f *fixture) instructor(t *testing.T, name string, status models.VerificationStatus, category models.LicenseCategory) auth.Caller {
	t.Helper()
	c := f.user(t, models.RoleInstructor, name)
	asset := models.InstructorAsset{InstructorID: c.ID, VehicleModel: "Onix", LicensePlate: "ABC1D23", LicenseCategory: category, VerificationStatus: status}
	require.NoError(t, f.db.Create(&asset).Error)
	if status == models.VerificationApproved {
		require.NoError(t, f.db.Model(&models.Profile{}).Where("id = ?", c.ID).Update("document_verified", true).Error)
	}
	return c
}

func (f *fixture) slot(t *testing.T, instructorID string, start time.Time) *models.Slot {
	t.Helper()
	s := models.Slot{
		InstructorID:    instructorID,
		StartTime:       start.UTC(),
		EndTime:         start.Add(time.Hour).UTC(),
		Price:           100,
		LocationAddress: "Rua A, 1",
	}
	require.NoError(t, f.db.Create(&s).Error)
	return &s
}

func (f *fixture) reloadSlot(t *testing.T, id string) models.Slot {
	t.Helper()
	var s models.Slot
	require.NoError(t, f.db.First(&s, "id = ?", id).Error)
	return s
}
