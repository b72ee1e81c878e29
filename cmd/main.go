package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/Leganyst/travel-booking/internal/config"
	"github.com/Leganyst/travel-booking/internal/db"
	"github.com/Leganyst/travel-booking/internal/gateway"
	"github.com/Leganyst/travel-booking/internal/grpcapi"
	api "github.com/Leganyst/travel-booking/internal/http"
	"github.com/Leganyst/travel-booking/internal/model"
	"github.com/Leganyst/travel-booking/internal/notify"
	"github.com/Leganyst/travel-booking/internal/repository"
	"github.com/Leganyst/travel-booking/internal/service"
)

func main() {
	os.Exit(run())
}

// run возвращает код выхода: os.Exit в main не пропускает отложенные Close.
func run() int {
	// 1. Конфиг приложения и логгер.
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		logrus.WithError(err).Error("load app config")
		return 1
	}
	log := config.NewLogger(appCfg)

	// 2. Конфиг БД и подключение через GORM.
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

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		log.WithError(err).Error("auto migrate")
		return 1
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.WithError(err).Error("sql DB")
		return 1
	}
	defer sqlDB.Close()

	// 4. Движок: хранилище, уведомления, шлюз с ретраями.
	gw := gateway.NewRetryingAdapter(
		gateway.NewMockAdapter("https://checkout.example.local"),
		appCfg.GatewayMaxAttempts,
		appCfg.GatewayTimeout,
		log,
	)
	engine := service.NewEngine(repository.NewGormStore(gormDB), notify.NewLogNotifier(log), gw, log, service.Options{
		TxMaxAttempts:     appCfg.TxMaxAttempts,
		CommissionPercent: appCfg.CommissionPercent,
	})

	// 5. Публичный HTTP API.
	router := api.NewRouter(api.RouterConfig{
		JWTSecret:   appCfg.JWTSecret,
		CORSOrigins: appCfg.CORSOrigins,
	}, engine, log)
	httpSrv := &http.Server{
		Addr:              appCfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// 6. Внутренний gRPC для операций.
	reminderWindow := time.Duration(appCfg.ReminderWindowDays) * 24 * time.Hour
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcapi.LoggingInterceptor(log)))
	grpcapi.RegisterOperationsServer(grpcServer, grpcapi.NewServer(engine, log, reminderWindow))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", appCfg.GRPCAddr)
	if err != nil {
		log.WithError(err).Errorf("listen %s", appCfg.GRPCAddr)
		return 1
	}

	// 7. Запускаем серверы в горутинах; падение любого из них гасит процесс.
	serveErr := make(chan error, 2)
	go func() {
		log.Infof("ops gRPC server listening on %s", appCfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			serveErr <- fmt.Errorf("grpc serve: %w", err)
		}
	}()
	go func() {
		log.Infof("HTTP API listening on %s", appCfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http serve: %w", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if appCfg.SweepInterval > 0 {
		go runSweeper(ctx, engine.Sweeper, appCfg.SweepInterval, reminderWindow, log)
	}

	// 8. Грейсфул-шатдаун по сигналу или после ошибки сервера.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	code := 0
	select {
	case <-stop:
	case err := <-serveErr:
		log.WithError(err).Error("server stopped")
		code = 1
	}

	log.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	grpcServer.GracefulStop()
	return code
}

// runSweeper: встроенный триггер; внешний cron может звать cmd/sweeper.
func runSweeper(ctx context.Context, sw *service.Sweeper, every, reminderWindow time.Duration, log *logrus.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sw.RunOverdueSweep(ctx); err != nil {
				log.WithError(err).Error("overdue sweep")
			}
			if _, err := sw.SendPaymentReminders(ctx, reminderWindow); err != nil {
				log.WithError(err).Error("payment reminders")
			}
		}
	}
}
