package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dataloop-ai-apps/databricks-bridge/internal/bridge"
)

var (
	importCatalog string
	importSchema  string
	importTable   string
	importDataset string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import table rows into a Dataloop dataset as prompt items",
	Long: `Import reads every row of a Databricks table and creates one prompt
item per row in the destination dataset, named by the row's id column and
seeded with the row's prompt column. Existing items are overwritten.

Example:
  databridge import --catalog main --schema finetune --table prompts --dataset 64a1b2c3`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importCatalog, "catalog", "", "Databricks catalog (required)")
	importCmd.Flags().StringVar(&importSchema, "schema", "", "Databricks schema (required)")
	importCmd.Flags().StringVar(&importTable, "table", "", "Databricks table (required)")
	importCmd.Flags().StringVar(&importDataset, "dataset", "", "Destination dataset id (required)")
	importCmd.MarkFlagRequired("catalog")
	importCmd.MarkFlagRequired("schema")
	importCmd.MarkFlagRequired("table")
	importCmd.MarkFlagRequired("dataset")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := bridge.TableLocation{Catalog: importCatalog, Schema: importSchema, Table: importTable}

	items, err := a.tableBridge().CreateTable(ctx, loc, importDataset)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	if items == nil {
		return fmt.Errorf("dataset %q could not be resolved", importDataset)
	}

	cmd.Printf("Imported %d prompt items into dataset %s\n", len(items), importDataset)
	return nil
}
