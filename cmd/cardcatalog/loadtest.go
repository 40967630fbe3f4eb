package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/cardcatalog/internal/loadtest"
)

// Default load run constants.
const (
	defaultRatings  = 10000
	defaultUsers    = 500
	defaultWorkers  = 2 // multiplier for runtime.NumCPU()
	defaultPageSize = 100
	defaultTimeout  = 30 * time.Second
)

func newLoadTestCmd() *cobra.Command {
	cfg := &loadtest.Config{}
	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Rate cards concurrently against a running server and verify the aggregates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Ratings < 1 || cfg.Users < 1 || cfg.Workers < 1 {
				return fmt.Errorf("ratings, users and workers must be positive")
			}
			stats, err := loadtest.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d ratings on %d cards in %s (%d failed)\n",
				stats.RatingsSubmitted, stats.CardsSeen, stats.Duration.Round(time.Millisecond), stats.RatingsFailed)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:8080", "Base URL of the service")
	f.IntVar(&cfg.Ratings, "ratings", defaultRatings, "Number of ratings to submit")
	f.IntVar(&cfg.Users, "users", defaultUsers, "Number of distinct raters")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "Concurrent requests in flight")
	f.IntVar(&cfg.PageSize, "page-size", defaultPageSize, "Window size used while walking listings")
	f.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	return cmd
}
