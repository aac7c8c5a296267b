package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lectorncf/lector-ncf/internal/common"
	"github.com/lectorncf/lector-ncf/internal/export"
	"github.com/lectorncf/lector-ncf/internal/repository"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored invoices to an XLSX, CSV or JSON file",
	Example: `  # Everything, as XLSX
  lectorctl export

  # June, as CSV
  lectorctl export --format csv --from 2026-06-01 --to 2026-06-30`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("format", "xlsx", "Output format: xlsx, csv or json")
	exportCmd.Flags().String("from", "", "Start date (YYYY-MM-DD)")
	exportCmd.Flags().String("to", "", "End date (YYYY-MM-DD)")
	exportCmd.Flags().String("sqlite", "data/lector-ncf.db", "Path of the local store")
	exportCmd.Flags().String("dir", "data/exports", "Directory for the export file")
}

func runExport(cmd *cobra.Command, args []string) error {
	logger := cliLogger(cmd)

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "xlsx", "csv", "json":
	default:
		return fmt.Errorf("unsupported format %q", format)
	}

	from, err := flagDate(cmd, "from")
	if err != nil {
		return err
	}
	to, err := flagDate(cmd, "to")
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("sqlite")
	repo, db, err := repository.OpenSQLite(cmd.Context(), path, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	dir, _ := cmd.Flags().GetString("dir")
	svc := export.NewService(repo, common.ExportConfig{Dir: dir, CSVDelimiter: ","}, logger)

	var data []byte
	switch format {
	case "xlsx":
		data, err = svc.ExportXLSX(cmd.Context(), from, to)
	case "csv":
		data, err = svc.ExportCSV(cmd.Context(), from, to)
	case "json":
		data, err = svc.ExportJSON(cmd.Context(), from, to)
	}
	if err != nil {
		return err
	}

	file, err := svc.WriteFile(data, format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), file)
	return err
}

func flagDate(cmd *cobra.Command, name string) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q, want YYYY-MM-DD", name, raw)
	}
	return &t, nil
}
