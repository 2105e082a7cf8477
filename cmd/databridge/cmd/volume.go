package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	volumeRemotePath string
	volumeLocalPath  string
	volumeDataset    string
	volumeItem       string
)

var volumeCmd = &cobra.Command{
	Use:   "volume",
	Short: "Transfer files between Databricks volumes and Dataloop datasets",
}

var volumeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Download one volume file to the local scratch directory",
	Long: `Get copies a single remote volume file into the configured scratch
directory, under the base name of the requested local path.

Example:
  databridge volume get --remote /Volumes/main/default/files/report.csv --local report.csv`,
	RunE: runVolumeGet,
}

var volumeImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a whole volume folder into a Dataloop dataset",
	Long: `Import lists the volume path, downloads every file across a bounded
worker pool, and bulk-uploads the result to the destination dataset with
overwrite semantics. A file that fails to download is logged and skipped;
the upload proceeds with the files that arrived.

Example:
  databridge volume import --remote /Volumes/main/default/files --dataset 64a1b2c3`,
	RunE: runVolumeImport,
}

var volumeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export one Dataloop item into a volume",
	Long: `Export downloads the item's content and puts it into the volume under
the item's name, overwriting any existing file. The local temp copy is
removed whether or not the upload succeeds.

Example:
  databridge volume export --item 64f0aa1 --remote /Volumes/main/default/files`,
	RunE: runVolumeExport,
}

func init() {
	volumeGetCmd.Flags().StringVar(&volumeRemotePath, "remote", "", "Remote volume path (required)")
	volumeGetCmd.Flags().StringVar(&volumeLocalPath, "local", "", "Local file name (required)")
	volumeGetCmd.MarkFlagRequired("remote")
	volumeGetCmd.MarkFlagRequired("local")

	volumeImportCmd.Flags().StringVar(&volumeRemotePath, "remote", "", "Remote volume folder (required)")
	volumeImportCmd.Flags().StringVar(&volumeDataset, "dataset", "", "Destination dataset id (required)")
	volumeImportCmd.MarkFlagRequired("remote")
	volumeImportCmd.MarkFlagRequired("dataset")

	volumeExportCmd.Flags().StringVar(&volumeItem, "item", "", "Dataloop item id (required)")
	volumeExportCmd.Flags().StringVar(&volumeRemotePath, "remote", "", "Remote volume folder (required)")
	volumeExportCmd.MarkFlagRequired("item")
	volumeExportCmd.MarkFlagRequired("remote")

	volumeCmd.AddCommand(volumeGetCmd)
	volumeCmd.AddCommand(volumeImportCmd)
	volumeCmd.AddCommand(volumeExportCmd)
	rootCmd.AddCommand(volumeCmd)
}

func runVolumeGet(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dest, err := a.volumeBridge().DownloadFile(ctx, volumeRemotePath, volumeLocalPath)
	if err != nil {
		return fmt.Errorf("volume get failed: %w", err)
	}

	cmd.Printf("Downloaded %s to %s\n", volumeRemotePath, dest)
	return nil
}

func runVolumeImport(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	items, err := a.volumeBridge().ImportFolder(ctx, volumeRemotePath, volumeDataset)
	if err != nil {
		return fmt.Errorf("volume import failed: %w", err)
	}
	if items == nil {
		return fmt.Errorf("dataset %q could not be resolved", volumeDataset)
	}

	cmd.Printf("Uploaded %d files from %s into dataset %s\n", len(items), volumeRemotePath, volumeDataset)
	return nil
}

func runVolumeExport(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.volumeBridge().ExportItem(ctx, volumeItem, volumeRemotePath); err != nil {
		return fmt.Errorf("volume export failed: %w", err)
	}

	cmd.Printf("Exported item %s to %s\n", volumeItem, volumeRemotePath)
	return nil
}
