package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/pkg/models"
)

func buildRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "parley",
		Short:         "Agents that answer requests by calling GitHub and Slack tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to configuration file")

	rootCmd.AddCommand(
		buildQueryCmd(&configPath),
		buildServeCmd(&configPath),
		buildHistoryCmd(&configPath),
		buildSchemaCmd(),
		buildVersionCmd(),
	)
	return rootCmd
}

func defaultConfigPath() string {
	if p := os.Getenv("PARLEY_CONFIG"); p != "" {
		return p
	}
	return "parley.yaml"
}

func buildQueryCmd(configPath *string) *cobra.Command {
	var agentName string
	var showResults bool

	cmd := &cobra.Command{
		Use:   "query [text]",
		Short: "Process a single query and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			ag, err := a.agentFor(agentName)
			if err != nil {
				return err
			}

			outcome, err := ag.ProcessQuery(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			a.record(cmd.Context(), args[0], outcome)

			fmt.Fprintln(cmd.OutOrStdout(), outcome.Response)
			if showResults && len(outcome.ToolResults) > 0 {
				printResults(cmd, outcome.ToolResults)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&agentName, "agent", "a", "", "agent to route the query to (github|slack)")
	cmd.Flags().BoolVar(&showResults, "results", false, "print the tool execution results as JSON")
	return cmd
}

func buildServeCmd(configPath *string) *cobra.Command {
	var agentName string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Read queries line by line from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Server.MetricsAddr != "" {
				go serveMetrics(cfg.Server.MetricsAddr)
			}
			go func() {
				// Only the log level is reloadable; agent and
				// provider wiring stays fixed until restart.
				_ = config.Watch(ctx, *configPath, a.logger, a.applyReload)
			}()

			ag, err := a.agentFor(agentName)
			if err != nil {
				return err
			}

			scanner := bufio.NewScanner(os.Stdin)
			fmt.Fprintln(cmd.OutOrStdout(), "parley ready, one query per line")
			for scanner.Scan() {
				if ctx.Err() != nil {
					break
				}
				query := strings.TrimSpace(scanner.Text())
				if query == "" {
					continue
				}
				outcome, err := ag.ProcessQuery(ctx, query, nil)
				if err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), "error:", err)
					continue
				}
				a.record(ctx, query, outcome)
				fmt.Fprintln(cmd.OutOrStdout(), outcome.Response)
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVarP(&agentName, "agent", "a", "", "agent to route queries to (github|slack)")
	return cmd
}

func buildHistoryCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent queries and responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Storage.Path == "" {
				return fmt.Errorf("history is disabled, set storage.path in config")
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			entries, err := a.history.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s (%s)\n  Q: %s\n  A: %s\n",
					e.Outcome.CreatedAt.Format("2006-01-02 15:04:05"),
					e.Outcome.Agent, pathLabel(e.Outcome.FastPath), e.Query, firstLine(e.Outcome.Response))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}

func buildSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the configuration JSON schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := config.JSONSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(schema))
			return nil
		},
	}
}

func buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the parley version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "parley", version)
		},
	}
}

func (a *app) record(ctx context.Context, query string, outcome *models.QueryOutcome) {
	if a.history == nil {
		return
	}
	if err := a.history.Record(ctx, query, outcome); err != nil {
		a.logger.Warn("failed to record query history", "error", err)
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	//nolint:gosec // metrics listener, local deployment
	_ = http.ListenAndServe(addr, mux)
}

func printResults(cmd *cobra.Command, results map[string]models.ExecutionResult) {
	raw, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(raw))
}

func pathLabel(fastPath bool) string {
	if fastPath {
		return "fastpath"
	}
	return "model"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
