package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/lectorncf/lector-ncf/constants"
	"github.com/lectorncf/lector-ncf/internal/ocr"
	"github.com/lectorncf/lector-ncf/internal/parser"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr [image-file]",
	Short: "Extract invoice text from an image using Google Cloud Vision",
	Long: `OCR sends an invoice photo to the Google Cloud Vision API and prints
the extracted text, or the fully parsed record with --parse.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string`,
	Example: `  # Extract text to stdout
  lectorctl ocr factura.jpg

  # Extract and parse in one step
  lectorctl ocr factura.jpg --parse`,
	Args: cobra.ExactArgs(1),
	RunE: runOCRCmd,
}

func init() {
	rootCmd.AddCommand(ocrCmd)

	ocrCmd.Flags().Bool("parse", false, "Parse the extracted text and print the record as JSON")
	ocrCmd.Flags().Int("timeout", 60, "Processing timeout in seconds")
}

func runOCRCmd(cmd *cobra.Command, args []string) error {
	logger := cliLogger(cmd)
	imagePath := args[0]

	if !constants.IsAllowedExt(filepath.Ext(imagePath)) {
		return fmt.Errorf("unsupported image extension %q", filepath.Ext(imagePath))
	}
	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	extractor, err := ocr.NewVisionExtractor(ctx, ocr.Config{
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		CredentialsJSON: os.Getenv("GOOGLE_CREDENTIALS"),
	}, logger)
	if err != nil {
		return err
	}
	defer func() { _ = extractor.Close() }()

	res, err := extractor.Extract(ctx, image)
	if err != nil {
		return err
	}

	if doParse, _ := cmd.Flags().GetBool("parse"); doParse {
		p := parser.New(parser.DefaultConfig(), logger)
		confidence := res.Confidence
		if confidence == nil {
			h := ocr.HeuristicConfidence(res.Text)
			confidence = &h
		}
		inv := p.Parse(res.Text, confidence, imagePath)
		inv.Metadata.Channel = "cli"

		out := struct {
			Invoice  any      `json:"invoice"`
			Warnings []string `json:"warnings,omitempty"`
		}{Invoice: inv, Warnings: p.Warnings(inv)}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Text)
	return err
}
