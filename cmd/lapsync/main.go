// Package main provides the CLI entry point for lapsync.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/ukaji3/lapsync-go/internal/config"
	"github.com/ukaji3/lapsync-go/internal/logging"
	"github.com/ukaji3/lapsync-go/internal/server"
	"github.com/ukaji3/lapsync-go/pkg/lapsync"
	"github.com/ukaji3/lapsync-go/pkg/lapsync/models"
	"github.com/ukaji3/lapsync-go/pkg/lapsync/output"
	"github.com/ukaji3/lapsync-go/pkg/lapsync/workbook"
)

var (
	outputPath      string
	pretty          bool
	sheetName       string
	cellName        string
	cellValue       string
	addr            string
	paceMinColumn   int
	paceSecColumn   int
	lapsRegion      string
	durationsRegion string
	onDataError     string
	logLevel        string
	allNames        bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lapsync",
		Short: "Keep lap counts and durations of a training log in sync",
		Long: `lapsync keeps the lap count and duration columns of an xlsx training log
consistent: setting a lap count recomputes the duration from the row's pace,
and setting a duration recomputes the lap count.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	pf.IntVar(&paceMinColumn, "pace-min-column", lapsync.DefaultPaceMinutesColumn, "Column holding pace minutes (A=1)")
	pf.IntVar(&paceSecColumn, "pace-sec-column", lapsync.DefaultPaceSecondsColumn, "Column holding pace seconds (A=1)")
	pf.StringVar(&lapsRegion, "laps-region", lapsync.DefaultLapsRegion, "Defined name of the lap count column")
	pf.StringVar(&durationsRegion, "durations-region", lapsync.DefaultDurationsRegion, "Defined name of the duration column")
	pf.StringVar(&onDataError, "on-data-error", string(lapsync.PolicyWrite), "What to do when pace or value is not numeric: write, skip")
	pf.StringVar(&logLevel, "log-level", "", "Log level: ERROR, WARN, INFO, DEBUG, TRACE")

	rootCmd.AddCommand(newEditCmd(), newTotalsCmd(), newRegionsCmd(), newServeCmd())
	return rootCmd
}

func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [book.xlsx]",
		Short: "Set a cell and recompute its linked laps or duration cell",
		Args:  cobra.ExactArgs(1),
		RunE:  runEdit,
	}
	cmd.Flags().StringVar(&sheetName, "sheet", "", "Sheet to edit (default: active sheet)")
	cmd.Flags().StringVar(&cellName, "cell", "", "Cell to edit, e.g. E5")
	cmd.Flags().StringVar(&cellValue, "value", "", "New cell value (empty clears the cell)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Save to this path instead of overwriting the input")
	_ = cmd.MarkFlagRequired("cell")
	return cmd
}

func newTotalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "totals [book.xlsx]",
		Short: "Sum the lap count and duration columns",
		Args:  cobra.ExactArgs(1),
		RunE:  runTotals,
	}
	cmd.Flags().StringVar(&sheetName, "sheet", "", "Sheet to total (default: active sheet)")
	return cmd
}

func newRegionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions [book.xlsx]",
		Short: "Show the lap count and duration regions as resolved for a sheet",
		Args:  cobra.ExactArgs(1),
		RunE:  runRegions,
	}
	cmd.Flags().StringVar(&sheetName, "sheet", "", "Sheet to resolve names for (default: active sheet)")
	cmd.Flags().BoolVar(&allNames, "all", false, "List every named range in the workbook instead")
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [book.xlsx]",
		Short: "Accept edit notifications over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: $LAPSYNC_ADDR or :8080)")
	return cmd
}

// setup loads .env and the environment, then applies explicitly set flags.
func setup(cmd *cobra.Command) (*config.Config, *lapsync.Synchronizer, *logging.Logger, error) {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("pace-min-column") {
		cfg.Sync.PaceMinutesColumn = paceMinColumn
	}
	if flags.Changed("pace-sec-column") {
		cfg.Sync.PaceSecondsColumn = paceSecColumn
	}
	if flags.Changed("laps-region") {
		cfg.Sync.LapsRegionName = lapsRegion
	}
	if flags.Changed("durations-region") {
		cfg.Sync.DurationsRegionName = durationsRegion
	}
	if flags.Changed("on-data-error") {
		if cfg.Sync.OnDataError, err = lapsync.ParsePolicy(onDataError); err != nil {
			return nil, nil, nil, err
		}
	}
	if logLevel != "" {
		level, ok := logging.ParseLevel(logLevel)
		if !ok {
			return nil, nil, nil, fmt.Errorf("invalid log level: %s (must be ERROR, WARN, INFO, DEBUG or TRACE)", logLevel)
		}
		cfg.LogLevel = level
	}
	if flags.Changed("addr") {
		cfg.Addr = addr
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	s, err := lapsync.NewSynchronizer(cfg.Sync, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, s, logger, nil
}

func openWorkbook(path string) (*workbook.Workbook, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return workbook.Open(path)
}

// sheetOrActive returns sheetName, or the workbook's active sheet when unset.
func sheetOrActive(wb *workbook.Workbook) string {
	if sheetName != "" {
		return sheetName
	}
	f := wb.File()
	return f.GetSheetName(f.GetActiveSheetIndex())
}

func runEdit(cmd *cobra.Command, args []string) error {
	_, s, _, err := setup(cmd)
	if err != nil {
		return err
	}

	wb, err := openWorkbook(args[0])
	if err != nil {
		return err
	}
	defer wb.Close()

	ref, err := models.ParseCellRef(sheetOrActive(wb), cellName)
	if err != nil {
		return fmt.Errorf("invalid cell %q: %w", cellName, err)
	}
	edit := models.Edit{
		ID:    uuid.NewString(),
		Ref:   ref,
		Value: models.ParseCellValue(cellValue),
	}

	result, err := workbook.ApplyEdit(wb, s, edit)
	if err != nil {
		return fmt.Errorf("edit failed: %w", err)
	}
	if err := wb.Save(outputPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	jsonData, err := output.ToJSON(result, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}

func runTotals(cmd *cobra.Command, args []string) error {
	_, s, _, err := setup(cmd)
	if err != nil {
		return err
	}

	wb, err := openWorkbook(args[0])
	if err != nil {
		return err
	}
	defer wb.Close()

	totals, err := s.Totals(wb, sheetOrActive(wb))
	if err != nil {
		return fmt.Errorf("totals failed: %w", err)
	}

	jsonData, err := output.TotalsToJSON(totals, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}

func runRegions(cmd *cobra.Command, args []string) error {
	_, s, _, err := setup(cmd)
	if err != nil {
		return err
	}

	wb, err := openWorkbook(args[0])
	if err != nil {
		return err
	}
	defer wb.Close()

	regions := wb.Regions()
	if !allNames {
		laps, durations, err := s.Regions(wb, sheetOrActive(wb))
		if err != nil {
			return fmt.Errorf("regions failed: %w", err)
		}
		regions = []models.Region{laps, durations}
	}

	jsonData, err := output.RegionsToJSON(regions, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, s, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if _, err := os.Stat(args[0]); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", args[0])
	}

	logger.Info("serving edits for %s on %s", args[0], cfg.Addr)
	return server.New(args[0], s, logger).HTTPServer(cfg.Addr).ListenAndServe()
}
