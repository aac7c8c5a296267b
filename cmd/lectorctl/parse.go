package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lectorncf/lector-ncf/internal/parser"
	"github.com/lectorncf/lector-ncf/internal/repository"
)

var parseCmd = &cobra.Command{
	Use:   "parse [text-file]",
	Short: "Parse OCR text into a structured invoice record",
	Long: `Parse reads raw invoice text (as produced by an OCR engine) and
extracts the fiscal fields: NCF, RNC, business name, issue date and the
subtotal/ITBIS/total amounts. Missing amounts are reconciled when two of
the three are present.`,
	Example: `  # Parse a text file and print the record as JSON
  lectorctl parse factura.txt

  # Parse stdin
  cat factura.txt | lectorctl parse -

  # Parse and persist to the local store
  lectorctl parse factura.txt --save --sqlite data/lector-ncf.db`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().Bool("save", false, "Persist the record to the local store")
	parseCmd.Flags().String("sqlite", "data/lector-ncf.db", "Path of the local store")
}

func runParse(cmd *cobra.Command, args []string) error {
	logger := cliLogger(cmd)

	var raw []byte
	var err error
	if args[0] == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	p := parser.New(parser.DefaultConfig(), logger)
	inv := p.Parse(string(raw), nil, args[0])
	inv.Metadata.Channel = "cli"
	warnings := p.Warnings(inv)

	if save, _ := cmd.Flags().GetBool("save"); save {
		path, _ := cmd.Flags().GetString("sqlite")
		repo, db, err := repository.OpenSQLite(cmd.Context(), path, logger)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if err := repo.Save(context.Background(), inv); err != nil {
			return fmt.Errorf("saving invoice: %w", err)
		}
	}

	out := struct {
		Invoice  any      `json:"invoice"`
		Warnings []string `json:"warnings,omitempty"`
	}{Invoice: inv, Warnings: warnings}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
