package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/botirk38/playersim/internal/api"
	"github.com/botirk38/playersim/internal/logging"
	"github.com/botirk38/playersim/stats"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "playersim",
		Short:         "Find football players with similar playing profiles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (defaults and PLAYERSIM_* env otherwise)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	var (
		excluded     []string
		competitions []string
		minMatches   int
		count        int
		jsonOutput   bool
	)
	queryCmd := &cobra.Command{
		Use:   "query <player>",
		Short: "Print the players most similar to one player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.cfg.Defaults.Filter()
			if cmd.Flags().Changed("exclude") {
				cfg.ExcludedPositions = excluded
			}
			if cmd.Flags().Changed("min-matches") {
				cfg.MinMatches = minMatches
			}
			if cmd.Flags().Changed("count") {
				cfg.ResultCount = count
			}
			cfg.AllowedCompetitions = competitions

			resp, err := a.retriever.Retrieve(cmd.Context(), args[0], cfg)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(resp)
			}

			q := resp.Query
			fmt.Printf("%s (%d matches)\n", q.Name, q.MatchCount)
			fmt.Printf("  Clubs:     %s\n", strings.Join(q.Clubs, ", "))
			fmt.Printf("  Positions: %s\n\n", strings.Join(q.Positions, ", "))

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tPLAYER\tSIMILARITY\tMATCHES\tCLUBS\tPOSITIONS")
			for i, r := range resp.Results {
				fmt.Fprintf(tw, "%d\t%s\t%.2f%%\t%d\t%s\t%s\n", i+1, r.Name, r.Similarity, r.MatchCount,
					strings.Join(r.Clubs, ", "), strings.Join(r.Positions, ", "))
			}
			return tw.Flush()
		},
	}
	queryCmd.Flags().StringSliceVar(&excluded, "exclude", nil, "Positions to exclude (default from config)")
	queryCmd.Flags().StringSliceVar(&competitions, "competition", nil, "Only keep players who appeared in one of these competitions")
	queryCmd.Flags().IntVar(&minMatches, "min-matches", 0, "Minimum number of match records (default from config)")
	queryCmd.Flags().IntVar(&count, "count", 0, "Number of results (default from config)")
	queryCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	var listPositions, listCompetitions bool
	playersCmd := &cobra.Command{
		Use:   "players",
		Short: "List players, or the position and competition options",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			var values []string
			switch {
			case listPositions:
				values = a.retriever.Positions()
			case listCompetitions:
				values = a.retriever.Competitions()
			default:
				values = a.retriever.Names()
			}
			for _, v := range values {
				fmt.Println(v)
			}
			return nil
		},
	}
	playersCmd.Flags().BoolVar(&listPositions, "positions", false, "List positions instead of players")
	playersCmd.Flags().BoolVar(&listCompetitions, "competitions", false, "List competitions instead of players")
	playersCmd.MarkFlagsMutuallyExclusive("positions", "competitions")

	var statsPlayer, statsTeam string
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print dataset statistics as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			switch {
			case statsPlayer != "":
				ps, err := stats.ForPlayer(a.records, statsPlayer)
				if err != nil {
					return err
				}
				return printJSON(ps)
			case statsTeam != "":
				ts, ok := stats.ForTeam(a.records, statsTeam)
				if !ok {
					return fmt.Errorf("team not found: %q", statsTeam)
				}
				return printJSON(ts)
			default:
				return printJSON(stats.Compute(a.records))
			}
		},
	}
	statsCmd.Flags().StringVar(&statsPlayer, "player", "", "Statistics for one player")
	statsCmd.Flags().StringVar(&statsTeam, "team", "", "Statistics for one team")
	statsCmd.MarkFlagsMutuallyExclusive("player", "team")

	rootCmd.AddCommand(serveCmd, queryCmd, playersCmd, statsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func runServe(ctx context.Context, configPath string) error {
	a, err := loadApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	srvCfg := a.cfg.Server
	handler := api.NewHandler(a.retriever, a.records, a.cfg.Defaults.Filter(),
		logging.With().Str("component", "api").Logger())
	router := api.NewRouter(handler, api.Config{
		CORSOrigins:    srvCfg.CORSOrigins,
		RateLimit:      srvCfg.RateLimit,
		RequestTimeout: srvCfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:              srvCfg.Addr(),
		Handler:           router,
		ReadTimeout:       srvCfg.ReadTimeout,
		ReadHeaderTimeout: srvCfg.ReadTimeout,
		WriteTimeout:      srvCfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logging.Info().Msg("server stopped")
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
