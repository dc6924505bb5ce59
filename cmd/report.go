package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/datascribe/datascribe-cli/internal/analyzer"
	"github.com/datascribe/datascribe-cli/internal/dataset"
	"github.com/datascribe/datascribe-cli/internal/gemini"
	"github.com/datascribe/datascribe-cli/internal/pdfgen"
	"github.com/spf13/cobra"
)

var (
	repAPIKey     string
	repModel      string
	repSampleSize int
	repOutputDir  string
	repKeepSample bool
)

// startedAt is captured at process start and stamped into the report header.
var startedAt = time.Now()

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Analyze a data file with a hosted model and render a PDF report",
	Example: `  datascribe report sales.csv --api-key $DATASCRIBE_API_KEY
  datascribe report metrics.parquet --sample-size 250 --output-dir reports
  datascribe report events.avro --keep-sample`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		apiKey := repAPIKey
		model := repModel
		sampleSize := repSampleSize
		outputDir := repOutputDir
		httpTimeout := 120 * time.Second
		retryAttempts := 3
		retryDelay := 5 * time.Second
		if cfg != nil {
			if apiKey == "" {
				apiKey = cfg.APIKey
			}
			if model == "" {
				model = cfg.Model
			}
			if !cmd.Flags().Changed("sample-size") && cfg.SampleSize > 0 {
				sampleSize = cfg.SampleSize
			}
			if !cmd.Flags().Changed("output-dir") && cfg.OutputDir != "" {
				outputDir = cfg.OutputDir
			}
			if cfg.HTTPTimeoutSec > 0 {
				httpTimeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
			}
			if cfg.RetryMaxAttempts > 0 {
				retryAttempts = cfg.RetryMaxAttempts
			}
			if cfg.RetryDelaySec >= 0 {
				retryDelay = time.Duration(cfg.RetryDelaySec) * time.Second
			}
		}
		if apiKey == "" {
			return fmt.Errorf("api key is required (--api-key, config api_key, or DATASCRIBE_API_KEY)")
		}
		if sampleSize <= 0 {
			return fmt.Errorf("--sample-size must be positive")
		}

		fmt.Println("Analyzing the format of the file...")
		tbl, err := dataset.Load(path)
		if err != nil {
			return err
		}
		tbl.DropIncomplete()
		if err := tbl.FormatFloats(); err != nil {
			// Non-fatal: the report just sees unformatted values.
			fmt.Fprintf(os.Stderr, "⚠ Warning: cannot format float values: %v\n", err)
		}
		if err := tbl.Sample(sampleSize); err != nil {
			return err
		}

		var sample *dataset.SampleFile
		if repKeepSample {
			sample, err = dataset.WriteFixedSample(tbl, ".")
		} else {
			sample, err = dataset.NewSampleFile(tbl)
		}
		if err != nil {
			return err
		}
		defer func() {
			if err := sample.Cleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
			}
		}()
		fmt.Println("File type analyzed successfully.")

		sampleData, err := sample.Read()
		if err != nil {
			return err
		}

		client := gemini.NewClient(apiKey, model, httpTimeout)
		an := analyzer.New(client, analyzer.WithRetry(retryAttempts, retryDelay))

		fmt.Println("Analyzing the data of the file. This may take a few minutes...")
		rep, err := an.Run(cmd.Context(), sampleData, path, startedAt)
		if err != nil {
			return err
		}
		fmt.Println("File data analyzed successfully.")

		fmt.Println("Generating the report...")
		out, err := pdfgen.Generate(pdfgen.Document{Title: "Analysis of " + path, Body: rep.Body}, outputDir)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Report %s saved.\n", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&repAPIKey, "api-key", "", "model-service API key (or set DATASCRIBE_API_KEY)")
	reportCmd.Flags().StringVar(&repModel, "model", "", "generation model name (default "+gemini.DefaultModel+")")
	reportCmd.Flags().IntVar(&repSampleSize, "sample-size", 250, "number of rows to sample for analysis")
	reportCmd.Flags().StringVarP(&repOutputDir, "output-dir", "o", ".", "directory to write the PDF report")
	reportCmd.Flags().BoolVar(&repKeepSample, "keep-sample", false, "write the sampled rows to "+dataset.FixedSampleName+" in the working directory and keep it")
}
