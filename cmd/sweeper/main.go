// Команда sweeper: однократный запуск свипера просрочек для cron.
// Печатает {"updatedCount": N} и выходит.
package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Leganyst/travel-booking/internal/config"
	"github.com/Leganyst/travel-booking/internal/db"
	"github.com/Leganyst/travel-booking/internal/gateway"
	"github.com/Leganyst/travel-booking/internal/model"
	"github.com/Leganyst/travel-booking/internal/notify"
	"github.com/Leganyst/travel-booking/internal/repository"
	"github.com/Leganyst/travel-booking/internal/service"
)

func main() {
	os.Exit(run())
}

// run возвращает код выхода, чтобы отложенные Close отработали до os.Exit.
func run() int {
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		logrus.WithError(err).Error("load app config")
		return 1
	}
	log := config.NewLogger(appCfg)
	// stdout занят результатом.
	log.SetOutput(os.Stderr)

	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.WithError(err).Error("load db config")
		return 1
	}
	gormDB, err := db.NewGormDB(dbCfg, log)
	if err != nil {
		log.WithError(err).Error("init db")
		return 1
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.WithError(err).Error("sql DB")
		return 1
	}
	defer sqlDB.Close()
	if err := model.AutoMigrate(gormDB); err != nil {
		log.WithError(err).Error("auto migrate")
		return 1
	}

	engine := service.NewEngine(repository.NewGormStore(gormDB), notify.NewLogNotifier(log), gateway.NewMockAdapter(""), log, service.Options{
		TxMaxAttempts:     appCfg.TxMaxAttempts,
		CommissionPercent: appCfg.CommissionPercent,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := engine.Sweeper.RunOverdueSweep(ctx)
	if err != nil {
		log.WithError(err).Error("overdue sweep")
		return 1
	}
	if err := json.NewEncoder(os.Stdout).Encode(map[string]int{"updatedCount": n}); err != nil {
		log.WithError(err).Error("write result")
		return 1
	}
	return 0
}
