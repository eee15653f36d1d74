package main

import (
	"github.com/spf13/cobra"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
	"github.com/phelipetls/seriesbr-sub000/pkg/providers/sgs"
)

var sgsCmd = &cobra.Command{
	Use:   "sgs",
	Short: "Central Bank of Brazil time series (SGS)",
}

var sgsSeriesCmd = &cobra.Command{
	Use:   "series [label=]code...",
	Short: "Fetch one or more SGS series into a table",
	Example: `  seriesbr sgs series 11 --last 30
  seriesbr sgs series selic=11 ipca=433 --start 2019 --end 06-2020`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := seriesOptions(cmd)
		if err != nil {
			return err
		}
		tbl, err := sources.sgs.GetSeries(cmd.Context(), opts, models.ParseCodeInputs(args)...)
		if err != nil {
			return err
		}
		return printResult(cmd, tbl)
	},
}

var sgsMetadataCmd = &cobra.Command{
	Use:   "metadata code",
	Short: "Show the catalog entry of an SGS series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, err := sources.sgs.GetMetadata(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult(cmd, meta)
	},
}

var sgsSearchCmd = &cobra.Command{
	Use:   "search term...",
	Short: "Search the Central Bank open data catalog",
	Example: `  seriesbr sgs search selic
  seriesbr sgs search juros mensal --rows 20`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, _ := cmd.Flags().GetInt("rows")
		offset, _ := cmd.Flags().GetInt("offset")
		recs, err := sources.sgs.Search(cmd.Context(), sgs.SearchOptions{Rows: rows, Start: offset}, args...)
		if err != nil {
			return err
		}
		return printResult(cmd, recs)
	},
}

var sgsNewsCmd = &cobra.Command{
	Use:   "news",
	Short: "Show the latest Central Bank press releases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		recs, err := sources.sgs.News(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return printResult(cmd, recs)
	},
}

func init() {
	addSeriesFlags(sgsSeriesCmd)
	sgsSearchCmd.Flags().Int("rows", 10, "results per page")
	sgsSearchCmd.Flags().Int("offset", 0, "index of the first result")
	sgsNewsCmd.Flags().Int("limit", 10, "number of items")

	sgsCmd.AddCommand(sgsSeriesCmd, sgsMetadataCmd, sgsSearchCmd, sgsNewsCmd)
}
