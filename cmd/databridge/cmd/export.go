package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dataloop-ai-apps/databricks-bridge/internal/bridge"
)

var (
	exportItem    string
	exportCatalog string
	exportSchema  string
	exportTable   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write an item's best response back to its source table row",
	Long: `Export looks up the annotation flagged as the best response for the
item's first prompt and writes it back to the Databricks row the item was
imported from, together with the attributed model id and name.

An item with no best response is skipped without error.

Example:
  databridge export --item 64f0aa1 --catalog main --schema finetune --table prompts`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportItem, "item", "", "Dataloop item id (required)")
	exportCmd.Flags().StringVar(&exportCatalog, "catalog", "", "Databricks catalog (required)")
	exportCmd.Flags().StringVar(&exportSchema, "schema", "", "Databricks schema (required)")
	exportCmd.Flags().StringVar(&exportTable, "table", "", "Databricks table (required)")
	exportCmd.MarkFlagRequired("item")
	exportCmd.MarkFlagRequired("catalog")
	exportCmd.MarkFlagRequired("schema")
	exportCmd.MarkFlagRequired("table")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := bridge.TableLocation{Catalog: exportCatalog, Schema: exportSchema, Table: exportTable}

	item, err := a.tableBridge().UpdateTable(ctx, exportItem, loc)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if item == nil {
		cmd.Printf("No best response found for item %s, nothing written\n", exportItem)
		return nil
	}

	cmd.Printf("Wrote best response for item %s back to %s\n", item.ID, loc)
	return nil
}
