package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/table-reservation/board"
	"github.com/yeremiapane/table-reservation/config"
	"github.com/yeremiapane/table-reservation/middlewares"
	"github.com/yeremiapane/table-reservation/repository"
	"github.com/yeremiapane/table-reservation/router"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reservation web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			var locker services.SlotLocker
			rdb, err := config.NewRedisClient(ctx, cfg)
			if err != nil {
				return err
			}
			if rdb != nil {
				defer rdb.Close()
				locker = services.NewRedisSlotLocker(rdb, cfg.SlotLockTTL)
				utils.InfoLogger.Printf("Slot locks held in redis at %s", cfg.RedisAddr)
			}

			hub := board.NewHub()
			publishers := []services.EventPublisher{hub}
			if cfg.RabbitMQURL != "" {
				publishers = append(publishers, services.NewAMQPPublisher(cfg.RabbitMQURL))
				utils.InfoLogger.Printf("Publishing reservation events to queue %s", services.ReservationQueue)
			}

			booking := services.NewBookingService(repository.NewReservationRepository(db), locker, publishers...)
			r := router.SetupRouter(router.Dependencies{
				Booking:         booking,
				Hub:             hub,
				RateLimiter:     middlewares.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
				CORSAllowOrigin: cfg.CORSAllowOrigin,
			})

			return start(ctx, ":"+cfg.Port, r)
		},
	}
}

func start(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			utils.ErrorLogger.Printf("shutdown: %v", err)
		}
	}()

	utils.InfoLogger.Printf("Listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	utils.InfoLogger.Println("Server stopped")
	return nil
}
