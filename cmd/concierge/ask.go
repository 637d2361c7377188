package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avvvet/concierge-intent/internal/handlers"
	"github.com/avvvet/concierge-intent/internal/models"
)

func newAskCmd() *cobra.Command {
	var (
		checkIn  string
		checkOut string
		guests   int
		roomType string
	)

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Run one message through the concierge pipeline and print the JSON reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(os.Stderr)
			if err != nil {
				return err
			}
			a := buildApp(cfg)
			defer a.Close()

			req := models.ChatRequest{
				Message:  strings.Join(args, " "),
				CheckIn:  checkIn,
				CheckOut: checkOut,
				RoomType: roomType,
			}
			if cmd.Flags().Changed("guests") {
				req.Guests = guests
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
			defer cancel()

			out := json.NewEncoder(cmd.OutOrStdout())
			out.SetIndent("", "  ")

			resp, err := a.handler.Handle(ctx, req.Message, req.Params())
			if err != nil {
				_ = out.Encode(models.ErrorResponse{Error: handlers.ErrorCode(err)})
				return fmt.Errorf("ask failed: %w", err)
			}
			return out.Encode(resp)
		},
	}

	cmd.Flags().StringVar(&checkIn, "check-in", "", "check-in date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&checkOut, "check-out", "", "check-out date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&guests, "guests", 0, "number of guests")
	cmd.Flags().StringVar(&roomType, "room-type", "", "room type name, e.g. \"Junior Suite\"")
	return cmd
}
