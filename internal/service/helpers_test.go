package service

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Leganyst/travel-booking/internal/gateway"
	"github.com/Leganyst/travel-booking/internal/model"
	"github.com/Leganyst/travel-booking/internal/notify"
	"github.com/Leganyst/travel-booking/internal/repository"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	db       *gorm.DB
	engine   *Engine
	clock    *fakeClock
	notifier *notify.Recorder
	repos    *repository.Repositories
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	// одна база :memory: на все горутины теста
	return openTestEnv(t, ":memory:", 1, 3)
}

// newFileTestEnv поднимает файловую базу в WAL с несколькими соединениями:
// транзакции идут параллельно и конфликтуют по-настоящему.
func newFileTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "booking.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	return openTestEnv(t, dsn, 4, 10)
}

func openTestEnv(t *testing.T, dsn string, conns, attempts int) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { sqlDB.Close() })
	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	clock := &fakeClock{now: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
	rec := &notify.Recorder{}
	store := repository.NewGormStore(db)

	engine := NewEngine(store, rec, gateway.NewMockAdapter("http://localhost"), log, Options{
		TxMaxAttempts: attempts,
		Now:           clock.Now,
	})

	return &testEnv{db: db, engine: engine, clock: clock, notifier: rec, repos: store.Repos()}
}

func (e *testEnv) seedPlan(t *testing.T, price int64, max int) *model.TravelPlan {
	t.Helper()
	plan := &model.TravelPlan{
		HostID:          uuid.New(),
		Title:           "Baikal ice trek",
		Status:          model.PlanStatusActive,
		PricePerPerson:  price,
		MaxParticipants: max,
		AvailableSlots:  max,
	}
	if err := e.repos.Plans.Create(context.Background(), plan); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	return plan
}

// book создаёт бронирование на 2 человек по 500 (итого 1000), старт через daysOut дней.
func (e *testEnv) book(t *testing.T, plan *model.TravelPlan, daysOut int, partial bool) *model.Booking {
	t.Helper()
	start := e.clock.Now().AddDate(0, 0, daysOut)
	b, err := e.engine.Bookings.CreateBooking(context.Background(), CreateBookingInput{
		UserID:              uuid.New(),
		TravelPlanID:        plan.ID,
		StartDate:           start,
		EndDate:             start.AddDate(0, 0, 5),
		Participants:        2,
		Guests:              []GuestInput{{FullName: "Ivan Petrov"}, {FullName: "Maria Petrova"}},
		AllowPartialPayment: partial,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func (e *testEnv) reload(t *testing.T, id uuid.UUID) *model.Booking {
	t.Helper()
	b, err := e.repos.Bookings.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	return b
}

// checkLedger проверяет amountPaid + remaining == total и сверку с журналом платежей.
func (e *testEnv) checkLedger(t *testing.T, id uuid.UUID) *model.Booking {
	t.Helper()
	b := e.reload(t, id)
	if b.AmountPaid+b.RemainingAmount != b.TotalPrice {
		t.Fatalf("invariant broken: paid %d + remaining %d != total %d", b.AmountPaid, b.RemainingAmount, b.TotalPrice)
	}
	if b.RemainingAmount < 0 {
		t.Fatalf("negative remaining %d", b.RemainingAmount)
	}
	sum, err := e.repos.Payments.SumByBooking(context.Background(), id)
	if err != nil {
		t.Fatalf("ledger sum: %v", err)
	}
	if sum != b.AmountPaid-b.RefundAmount {
		t.Fatalf("ledger sum %d != paid %d - refund %d", sum, b.AmountPaid, b.RefundAmount)
	}
	return b
}

func (e *testEnv) pay(t *testing.T, b *model.Booking, amount int64, typ model.PaymentType) *PaymentResult {
	t.Helper()
	res, err := e.engine.Payments.ApplyPayment(context.Background(), b.UserID, b.ID, PaymentInput{Amount: amount, Type: typ})
	if err != nil {
		t.Fatalf("pay %d: %v", amount, err)
	}
	return res
}
