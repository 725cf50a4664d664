package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/table-reservation/repository"
	"github.com/yeremiapane/table-reservation/services"
)

func newBookCmd() *cobra.Command {
	var req services.BookingRequest

	c := &cobra.Command{
		Use:   "book",
		Short: "Book a table from the command line",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			var publishers []services.EventPublisher
			if cfg.RabbitMQURL != "" {
				publishers = append(publishers, services.NewAMQPPublisher(cfg.RabbitMQURL))
			}
			booking := services.NewBookingService(repository.NewReservationRepository(db), nil, publishers...)

			res, err := booking.Book(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("booking failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reservation %d: table %d on %s at %s\n", res.ID, res.TableID, res.Date, res.Time)
			return nil
		},
	}

	c.Flags().StringVar(&req.TableID, "table", "", "table id")
	c.Flags().StringVar(&req.Name, "name", "", "guest name")
	c.Flags().StringVar(&req.Email, "email", "", "guest e-mail")
	c.Flags().StringVar(&req.Phone, "phone", "", "guest phone (optional)")
	c.Flags().StringVar(&req.PartySize, "party", "", "number of guests")
	c.Flags().StringVar(&req.Date, "date", "", "reservation date, YYYY-MM-DD")
	c.Flags().StringVar(&req.Time, "time", "", "reservation time, HH:MM")
	for _, f := range []string{"table", "name", "email", "party", "date", "time"} {
		_ = c.MarkFlagRequired(f)
	}
	return c
}
