package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"eraport-ingestion/internal/app"
	"eraport-ingestion/internal/config"
	"eraport-ingestion/internal/logger"
	"eraport-ingestion/internal/model"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "importer",
		Short:        "Import report-card workbooks from the command line",
		SilenceUsage: true,
	}
	root.AddCommand(newCompleteCmd(), newStageCmd())
	return root
}

// bootstrap loads config and builds the service the same way the API server does.
func bootstrap() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	return app.New(cfg)
}

func newCompleteCmd() *cobra.Command {
	var (
		file     string
		periodID int64
		masterID int64
	)

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Import a workbook straight into the final tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := bootstrap()
			if err != nil {
				return err
			}
			defer application.Close()

			var hints model.ImportHints
			if cmd.Flags().Changed("tahun-ajaran-id") {
				hints.TahunAjaranID = &periodID
			}
			if cmd.Flags().Changed("master-tahun-ajaran-id") {
				hints.MasterTahunAjaranID = &masterID
			}

			results, err := application.Service.CompleteImport(context.Background(), file, hints)
			if err != nil {
				return err
			}
			return printJSON(cmd, model.ImportResponse{Message: "Import completed", Results: results})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the .xlsx workbook")
	cmd.Flags().Int64Var(&periodID, "tahun-ajaran-id", 0, "academic period used when none can be resolved")
	cmd.Flags().Int64Var(&masterID, "master-tahun-ajaran-id", 0, "master academic year used when the sheet has none")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newStageCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Validate a workbook and stage it as drafts for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := bootstrap()
			if err != nil {
				return err
			}
			defer application.Close()

			batchID, err := application.Service.UploadAndValidate(context.Background(), file)
			if err != nil {
				return err
			}
			return printJSON(cmd, model.UploadResponse{Message: "File uploaded and validated", UploadBatchID: batchID})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the .xlsx workbook")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
