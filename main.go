package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"railway-backend/internal/allocation"
	intconfig "railway-backend/internal/config"
	intdb "railway-backend/internal/db"
	router "railway-backend/internal/http"
	"railway-backend/internal/http/handlers"
	"railway-backend/internal/ratelimiter"
	"railway-backend/internal/repositories"
	"railway-backend/internal/services"
	"railway-backend/internal/utils"
)

func main() {
	env := intconfig.LoadEnv()
	utils.ConfigureLogger(env.LogLevel, env.LogFormat)
	if err := env.Validate(); err != nil {
		utils.Log.Fatalf("invalid configuration: %v", err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := intconfig.OpenDB(startCtx, env)
	if err != nil {
		utils.Log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := intdb.EnsureSchema(startCtx, db); err != nil {
		utils.Log.Fatalf("schema check failed: %v", err)
	}
	startCancel()

	scheme, ok := allocation.ParseScheme(env.SeatCodeScheme)
	if !ok {
		utils.Log.Warnf("unknown SEAT_CODE_SCHEME %q, using %q", env.SeatCodeScheme, allocation.SchemeShort)
		scheme = allocation.SchemeShort
	}

	store := repositories.Store{DB: db}
	catalog := repositories.CatalogRepository{DB: db}
	reader := repositories.TicketRepository{Q: db}
	auth := services.AuthService{
		Users:  repositories.UserRepository{DB: db},
		Secret: []byte(env.JWTSecret),
		TTL:    env.JWTTTL,
	}

	deps := router.Deps{
		Handler: handlers.Handler{
			Bookings: services.BookingService{
				Store:         store,
				Catalog:       catalog,
				RACQuota:      env.RACQuota,
				Scheme:        scheme,
				WaitlistLimit: env.WaitlistLimit,
				LockTimeout:   env.BookingLockTimeout,
				MaxRetries:    env.BookingMaxRetries,
			},
			Cancellations: services.CancellationService{Store: store},
			PNR:           services.PNRService{Reader: reader},
			Trains:        services.TrainService{Catalog: catalog},
			Auth:          auth,
			Docs:          services.DocsService{Reader: reader},
			DB:            db,
		},
		Verify: auth.Verify,
	}

	if env.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: env.RedisAddr, Password: env.RedisPassword})
		defer rdb.Close()
		deps.Limiter = ratelimiter.NewRedisRateLimiter(rdb)
	} else {
		utils.Log.Warn("REDIS_ADDR not set, booking rate limiting disabled")
	}

	// Router (Gin engine)
	r := router.NewRouter(env, deps)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		utils.Log.Infof("server listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	utils.Log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		utils.Log.Errorf("server shutdown failed: %v", err)
		return
	}

	utils.Log.Info("server stopped cleanly")
}
