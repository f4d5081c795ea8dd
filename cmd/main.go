package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Leganyst/refresh-booking/internal/config"
	"github.com/Leganyst/refresh-booking/internal/db"
	"github.com/Leganyst/refresh-booking/internal/lock"
	"github.com/Leganyst/refresh-booking/internal/logger"
	"github.com/Leganyst/refresh-booking/internal/model"
	"github.com/Leganyst/refresh-booking/internal/repository"
	"github.com/Leganyst/refresh-booking/internal/service"
)

const healthService = "refresh.booking.Calendar"

func main() {
	ctx := context.Background()

	// 1. Конфиг: config.yaml (если есть) + env.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// 2. Подключаемся к БД через GORM.
	gormDB, err := db.Open(&cfg.DB)
	if err != nil {
		zl.Fatal("init db", zap.Error(err))
	}

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		zl.Fatal("auto migrate", zap.Error(err))
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		zl.Fatal("sql DB", zap.Error(err))
	}
	defer sqlDB.Close()

	// 4. Справочник; демо-данные только вне production.
	directory := repository.NewGormDirectory(gormDB)
	if !cfg.IsProduction() {
		if err := directory.SeedDemo(ctx); err != nil {
			zl.Fatal("seed directory", zap.Error(err))
		}
	}

	// 5. Правила календаря.
	loc, err := cfg.Booking.Location()
	if err != nil {
		zl.Fatal("booking timezone", zap.Error(err))
	}
	publicHolidays, err := cfg.Booking.Holidays()
	if err != nil {
		zl.Fatal("public holidays", zap.Error(err))
	}
	dayEnd, err := cfg.Booking.DayEnd()
	if err != nil {
		zl.Fatal("day end cutoff", zap.Error(err))
	}

	opts := []service.Option{
		service.WithLogger(zl),
		service.WithDirectory(directory),
		service.WithLocation(loc),
		service.WithPublicHolidays(publicHolidays),
		service.WithDayEndCutoff(dayEnd),
		service.WithBookableDays(cfg.Booking.LookaheadDays, cfg.Booking.TargetDays),
	}

	// 6. Блокировки между экземплярами через Redis, если он настроен.
	if cfg.Redis.Enabled() {
		client, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.LockDB)
		if err != nil {
			zl.Fatal("init redis", zap.Error(err))
		}
		defer client.Close()
		opts = append(opts, service.WithLocker(lock.NewRedisLocker(client, cfg.Redis.LockTTL(), zl.Named("lock"))))
		zl.Info("using redis locks", zap.String("addr", cfg.Redis.Addr))
	}

	// 7. Ядро записи поднимается из базы.
	calendarSvc := service.NewCalendarService(repository.NewGormStore(gormDB), opts...)
	if err := calendarSvc.Hydrate(ctx); err != nil {
		zl.Fatal("hydrate calendar", zap.Error(err))
	}
	days := calendarSvc.BookableDays()
	if len(days) > 0 {
		zl.Info("bookable window",
			zap.Stringer("from", days[0]),
			zap.Stringer("to", days[len(days)-1]),
			zap.Int("days", len(days)),
		)
	}

	// 8. gRPC-сервер: health + reflection.
	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(healthService, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		zl.Fatal("listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	zl.Info("core gRPC server listening", zap.String("addr", cfg.GRPCAddr))

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			zl.Fatal("grpc serve", zap.Error(err))
		}
	}()

	// 9. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zl.Info("shutting down gRPC server...")
	healthSrv.Shutdown()
	grpcServer.GracefulStop()
}
