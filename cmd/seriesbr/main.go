// seriesbr fetches Brazilian economic time series from the Central Bank
// (SGS), IPEA (Ipeadata) and IBGE (SIDRA).
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/phelipetls/seriesbr-sub000/api"
	"github.com/phelipetls/seriesbr-sub000/internal/config"
	"github.com/phelipetls/seriesbr-sub000/internal/logger"
	"github.com/phelipetls/seriesbr-sub000/internal/provider"
	"github.com/phelipetls/seriesbr-sub000/pkg/providers/ipea"
	"github.com/phelipetls/seriesbr-sub000/pkg/providers/sgs"
	"github.com/phelipetls/seriesbr-sub000/pkg/providers/sidra"
	"github.com/phelipetls/seriesbr-sub000/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global state, set up by the root command before any subcommand runs.
var (
	cfg      *config.Config
	registry *provider.Registry
	sources  struct {
		sgs   *sgs.Provider
		ipea  *ipea.Provider
		sidra *sidra.Provider
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "seriesbr",
	Short: "Brazilian economic time series from BCB, IPEA and IBGE",
	Long: `seriesbr downloads economic time series from the Central Bank of Brazil
(SGS), IPEA (Ipeadata) and IBGE (SIDRA) into date-indexed tables, and
searches their catalogs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if out, _ := cmd.Flags().GetString("output"); out != "" {
			cfg.Output.Format = out
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		l, err := logger.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		logger.SetDefault(l)

		registry, err = newRegistry(cfg)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format: table, csv, json or yaml")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(sgsCmd)
	rootCmd.AddCommand(ipeaCmd)
	rootCmd.AddCommand(sidraCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// newRegistry builds the three sources from cfg and registers them.
func newRegistry(cfg *config.Config) (*provider.Registry, error) {
	sources.sgs = sgs.NewWithConfig(cfg.SGS())
	sources.ipea = ipea.NewWithConfig(cfg.IPEA())
	sources.sidra = sidra.NewWithConfig(cfg.SIDRA())

	reg := provider.NewRegistry()
	for _, s := range []provider.Source{sources.sgs, sources.ipea, sources.sidra} {
		if err := reg.Register(s); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("seriesbr %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			host, port, err := splitAddr(addr)
			if err != nil {
				return err
			}
			cfg.API.Host, cfg.API.Port = host, port
		}
		api.Version = version
		fmt.Printf("Starting seriesbr API server on %s\n", cfg.API.Addr())
		return api.NewServer(cfg, registry).ListenAndServe(context.Background(), cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address host:port (default from api.host and api.port)")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and check that every source is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "═══════════════════════════════════════")
		fmt.Fprintln(w, "  seriesbr status")
		fmt.Fprintln(w, "═══════════════════════════════════════")
		fmt.Fprintf(w, "  Version:     %s (%s)\n", version, commit)
		fmt.Fprintf(w, "  Time (BRT):  %s\n", utils.NowBRT().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "  HTTP:        timeout %s, %d retries, concurrency %d\n", cfg.HTTP.Timeout, cfg.HTTP.MaxRetries, cfg.HTTP.Concurrency)
		fmt.Fprintf(w, "  API Server:  %s\n", cfg.API.Addr())
		fmt.Fprintln(w)

		fmt.Fprintln(w, "  Endpoints:")
		for _, e := range config.Endpoints(cfg) {
			fmt.Fprintf(w, "    %-22s %s (%s)\n", e.Name+":", e.URL, e.Source)
		}
		fmt.Fprintln(w)

		fmt.Fprintln(w, "  Sources:")
		failed := 0
		for _, res := range registry.PingAll(cmd.Context()) {
			status := fmt.Sprintf("ok (%s)", res.Latency.Round(time.Millisecond))
			if !res.OK {
				failed++
				status = "unreachable: " + res.Error
			}
			fmt.Fprintf(w, "    %-8s %s\n", res.Source+":", status)
		}
		fmt.Fprintln(w, "═══════════════════════════════════════")
		if failed > 0 {
			return fmt.Errorf("%d source(s) unreachable", failed)
		}
		return nil
	},
}
