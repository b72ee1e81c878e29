package db

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/Leganyst/travel-booking/internal/config"
	"github.com/Leganyst/travel-booking/internal/model"
)

func TestNewGormDB_SqliteMigrates(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	gdb, err := NewGormDB(&config.DBConfig{Driver: "sqlite", DSN: ":memory:"}, log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !gdb.Migrator().HasTable(&model.Booking{}) {
		t.Fatalf("bookings table missing")
	}
}

func TestDialectorFor_Unknown(t *testing.T) {
	if _, err := dialectorFor(&config.DBConfig{Driver: "oracle"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestDialectorFor_BuildsDSN(t *testing.T) {
	d, err := dialectorFor(&config.DBConfig{Driver: "mysql", User: "u", Password: "p", Host: "h", Port: 3306, Name: "n"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name() != "mysql" {
		t.Fatalf("expected mysql dialector, got %s", d.Name())
	}
}
