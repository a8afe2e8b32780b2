package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"ProductAdvisor/internal/report"
	"ProductAdvisor/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	run := runCmd()
	root := &cobra.Command{
		Use:           "advisor",
		Short:         "Score bank clients and rank product recommendations",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run.RunE,
	}
	root.AddCommand(run, importCmd(), scoreCmd(), analyzeCmd(), reportCmd(), notifyCmd(), serveCmd())
	return root
}

// withStore builds the app, opens the store and closes it after fn.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, a *app, store *storage.SQLiteStore) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, a, store)
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Import the dataset, score every client, write reports and push texts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, a *app, store *storage.SQLiteStore) error {
				if err := a.importDataset(ctx, store); err != nil {
					return err
				}
				sum, err := a.scheduler(ctx, store, a.telegram()).ScoreNow(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "scored %d clients (%d failed), reports in %s\n",
					sum.Clients, sum.Failed, a.cfg.Output.Dir)
				return nil
			})
		},
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Load the CSV dataset into the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, a *app, store *storage.SQLiteStore) error {
				return a.importDataset(ctx, store)
			})
		},
	}
}

func scoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Score every stored client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, a *app, store *storage.SQLiteStore) error {
				sum, err := a.runner(store, store).Run(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d/%d clients scored, %d recommendations in %s\n",
					sum.RunID, sum.Succeeded, sum.Clients, sum.Recommendations, sum.Duration())
				return nil
			})
		},
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <client_code>",
		Short: "Score one client from the CSV dataset without touching the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("client code %q: %w", args[0], err)
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			ds, err := a.readDataset()
			if err != nil {
				return err
			}
			res, err := a.runner(ds, storage.NewNoopRecorder()).RunOne(cmd.Context(), code)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Write the CSV reports from stored results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, a *app, store *storage.SQLiteStore) error {
				sum, err := a.reporter(store).Generate(ctx)
				if err != nil {
					return err
				}
				printSummary(cmd, sum)
				return nil
			})
		},
	}
}

func notifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Generate push texts for every client's top recommendation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, a *app, store *storage.SQLiteStore) error {
				n, err := a.pusher(ctx, store).Run(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d push notifications stored\n", n)
				return nil
			})
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run scoring passes on the configured cron schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, a *app, store *storage.SQLiteStore) error {
				tn := a.telegram()
				sched := a.scheduler(ctx, store, tn)
				if err := sched.Register(a.cfg.Schedule.Cron); err != nil {
					return err
				}
				sched.Start()
				defer sched.Stop()

				if tn != nil {
					go tn.StartPolling(ctx, sched.HandleCommand)
					a.log.Info().Msg("telegram polling started")
				}

				if os.Getenv("RUN_ON_START") == "true" {
					a.log.Info().Msg("RUN_ON_START enabled, scoring now")
					go func() {
						if _, err := sched.ScoreNow(ctx); err != nil {
							a.log.Error().Err(err).Msg("startup pass")
						}
					}()
				}

				a.log.Info().Msg("advisor is running, press Ctrl+C to stop")
				<-ctx.Done()
				a.log.Info().Msg("shutdown signal received, stopping")
				return nil
			})
		},
	}
}

func printSummary(cmd *cobra.Command, s *report.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "clients: %d, with recommendations: %d (%.0f%%)\n",
		s.TotalClients, s.ClientsWithRecommendations, s.RecommendationRate*100)
	for i, p := range s.TopProducts {
		fmt.Fprintf(out, "%d. %s: %d\n", i+1, p.Name, p.Count)
	}
	fmt.Fprintf(out, "average top-1 benefit: %s, total: %s\n",
		report.Money(s.AverageTopBenefit), report.Money(s.TotalTopBenefit))
}
