package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mtourkz/booking-api/internal/booking"
	"github.com/mtourkz/booking-api/internal/config"
	"github.com/mtourkz/booking-api/internal/database"
	"github.com/mtourkz/booking-api/internal/handler"
	"github.com/mtourkz/booking-api/internal/middleware"
	"github.com/mtourkz/booking-api/internal/model"
	"github.com/mtourkz/booking-api/internal/notify"
	"github.com/mtourkz/booking-api/internal/payment"
	"github.com/mtourkz/booking-api/internal/queue"
	"github.com/mtourkz/booking-api/internal/repository"
	"github.com/mtourkz/booking-api/internal/router"
	"github.com/mtourkz/booking-api/internal/scheduler"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment
	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()

	// Redis backs the response cache and the rate limiter; both degrade
	// to pass-through when the client is nil.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, cache and rate limiting disabled")
	}
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	rateMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	tours := repository.NewTourRepo(db)
	units := repository.NewUnitRepo(db)
	reservations := repository.NewReservationRepo(db)
	payments := repository.NewPaymentRepo(db)
	codes := repository.NewCodeRepo(db)
	store := repository.NewSQLStore(db)

	// collaborators
	notifier := notify.NewPublisher(cfg.RabbitURL, logger)
	gateway := payment.NewClient(payment.Config{
		BaseURL:     cfg.GatewayURL,
		Login:       cfg.GatewayLogin,
		Password:    cfg.GatewayPassword,
		CallbackURL: cfg.CallbackURL,
		SuccessURL:  cfg.SuccessURL,
		FailURL:     cfg.FailURL,
	}, logger)

	svc := booking.NewService(store, reservations, catalog{units}, gateway, payments, reservations, notifier, logger)
	verifier := booking.NewCodeVerifier(codes, reservations, ownership{users}, notifier, logger)

	// background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reaper := booking.NewReaper(reservations, notifier, time.Duration(cfg.ReaperGraceMin)*time.Minute, logger)
	go scheduler.New(reaper, time.Duration(cfg.ReaperPeriodSec)*time.Second, logger).Run(ctx)
	go func() {
		if err := queue.StartNotificationConsumer(cfg.RabbitURL, logger); err != nil {
			logger.Error("notification consumer stopped", zap.Error(err))
		}
	}()

	// handlers and routes
	e := echo.New()
	e.HideBanner = true

	authH := handler.NewAuthHandler(cfg, users, tokens)
	bookingH := handler.NewBookingHandler(svc, units, reservations, payments)
	callbackH := handler.NewCallbackHandler(svc, cfg.CallbackLogin, cfg.CallbackPassword)
	codeH := handler.NewCodeHandler(verifier)
	ownerH := handler.NewOwnerHandler(users, tours, units)
	ownerResH := handler.NewOwnerReservationHandler(users, units, reservations)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, bookingH, callbackH, codeH, cacheMW, rateMW)
	router.RegisterBooking(e, bookingH, codeH, cfg.JWTSecret)
	router.RegisterOwner(e, ownerH, ownerResH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// catalog adapts UnitRepo to the booking.Catalog port, mapping the
// repository's sql.ErrNoRows onto booking.ErrNotFound.
type catalog struct {
	units *repository.UnitRepo
}

func (c catalog) LodgingUnit(ctx context.Context, id uint64) (*model.LodgingUnit, error) {
	u, err := c.units.GetByID(ctx, id)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// ownership adapts UserRepo's ownership walk to the
// booking.OwnershipStore port, rewriting the repository sentinels.
type ownership struct {
	users *repository.UserRepo
}

func (o ownership) OwnsUnit(ctx context.Context, userID, unitID uint64) error {
	err := o.users.OwnsUnit(ctx, userID, unitID)
	switch {
	case err == nil:
		return nil
	case err == repository.ErrForbidden:
		return booking.ErrForbidden
	case repository.IsNoRows(err):
		return booking.ErrNotFound
	}
	return err
}
