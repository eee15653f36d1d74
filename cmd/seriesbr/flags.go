package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phelipetls/seriesbr-sub000/internal/provider"
	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

// addSeriesFlags registers the date-window flags shared by the series
// commands.
func addSeriesFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "start date, e.g. 2019, 03-2019, 15/03/2019 (default 1900-01-01)")
	cmd.Flags().String("end", "", "end date (default today)")
	cmd.Flags().Int("last", 0, "fetch only the last N observations; overrides --start and --end")
	cmd.Flags().String("join", "outer", "how series are aligned: outer or inner")
}

// seriesOptions reads the flags registered by addSeriesFlags.
func seriesOptions(cmd *cobra.Command) (provider.SeriesOptions, error) {
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	last, _ := cmd.Flags().GetInt("last")
	join, _ := cmd.Flags().GetString("join")

	kind, err := models.ParseJoinKind(join)
	if err != nil {
		return provider.SeriesOptions{}, err
	}
	opts := provider.SeriesOptions{Start: start, End: end, LastN: last, Join: kind}
	return opts, opts.Validate()
}

// parseIntList reads "63,69" style flag values.
func parseIntList(values []string) ([]int, error) {
	var out []int
	for _, v := range values {
		for _, f := range strings.Split(v, ",") {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("%q is not an integer", f)
			}
			out = append(out, n)
		}
	}
	return out, nil
}

// splitAddr parses host:port.
func splitAddr(addr string) (string, int, error) {
	host, portText, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portText)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port in %q", addr)
	}
	return host, port, nil
}
