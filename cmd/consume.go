package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/table-reservation/config"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

func newConsumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Log reservation events from RabbitMQ",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := utils.ConfigureLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}
			if cfg.RabbitMQURL == "" {
				return errors.New("RABBITMQ_URL is not set")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			utils.InfoLogger.Printf("Consuming %s", services.ReservationQueue)
			err = services.ConsumeReservationEvents(ctx, cfg.RabbitMQURL, func(ev services.ReservationCreatedEvent) error {
				utils.InfoLogger.WithFields(logrus.Fields{
					"reservation_id": ev.ReservationID,
					"stolik_id":      ev.TableID,
					"data":           ev.Date,
					"godzina":        ev.Time,
					"liczba_osob":    ev.PartySize,
				}).Info("reservation created")
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
