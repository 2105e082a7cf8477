package bridge

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dataloop-ai-apps/databricks-bridge/internal/config"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/dataloop"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/dbsql"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/logger"
)

// VolumeBridge moves files between Databricks volumes and Dataloop datasets.
//
// The scratch directory must sit under the executor's staging-allowed path,
// otherwise the driver refuses GET/PUT against it.
type VolumeBridge struct {
	exec       Runner
	platform   Platform
	log        *logger.Logger
	workers    int
	scratchDir string
}

// NewVolumeBridge creates a VolumeBridge from transfer configuration.
func NewVolumeBridge(exec Runner, platform Platform, log *logger.Logger, cfg *config.TransferConfig) *VolumeBridge {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	scratchDir := cfg.ScratchDir
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	return &VolumeBridge{
		exec:       exec,
		platform:   platform,
		log:        log,
		workers:    workers,
		scratchDir: scratchDir,
	}
}

// DownloadFile copies one remote volume file into the scratch directory
// under the base name of localPath and returns the path it was written to.
func (b *VolumeBridge) DownloadFile(ctx context.Context, remotePath, localPath string) (string, error) {
	dest := filepath.Join(b.scratchDir, filepath.Base(localPath))

	if _, err := b.exec.Execute(ctx, dbsql.VolumeGet(remotePath, dest)); err != nil {
		return "", err
	}
	return dest, nil
}

// ImportFolder lists a volume path, downloads every listed file across a
// bounded worker pool, and bulk-uploads whatever arrived to the destination
// dataset with overwrite semantics.
//
// A failed download is logged and skipped; it never aborts sibling
// downloads. The upload proceeds with the files that succeeded.
func (b *VolumeBridge) ImportFolder(ctx context.Context, volumePath, datasetID string) ([]dataloop.Item, error) {
	log := b.log.WithDataset(datasetID).WithFields(map[string]interface{}{"volume": volumePath})

	dataset, err := b.platform.Dataset(ctx, datasetID)
	if err != nil {
		log.Warnw("Failed to resolve destination dataset, skipping volume import", "error", err)
		return nil, nil
	}

	listing, err := b.exec.Execute(ctx, dbsql.VolumeList(volumePath))
	if err != nil {
		return nil, err
	}

	scratch, err := os.MkdirTemp(b.scratchDir, "volume-import-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch folder: %w", err)
	}
	defer os.RemoveAll(scratch)

	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for _, row := range listing.Rows {
		remote := listedPath(row)
		if remote == "" {
			continue
		}

		g.Go(func() error {
			dest := filepath.Join(scratch, path.Base(remote))
			if _, err := b.exec.Execute(gctx, dbsql.VolumeGet(remote, dest)); err != nil {
				// Partial-batch tolerance: log and keep going.
				log.Errorw("Failed to download volume file", "remote", remote, "error", err)
				failed.Add(1)
			}
			return nil
		})
	}

	// Workers never return errors, so this is purely a barrier.
	_ = g.Wait()

	log.Infow("Volume download batch complete",
		"listed", len(listing.Rows),
		"failed", failed.Load(),
	)

	items, err := b.platform.UploadFolder(ctx, dataset.ID, scratch, true)
	if err != nil {
		return items, fmt.Errorf("failed to upload scratch folder: %w", err)
	}
	if items == nil {
		// nil is reserved for the unresolved-dataset path; a batch where
		// nothing survived still succeeds with zero items.
		items = []dataloop.Item{}
	}

	log.Infow("Uploaded volume files to dataset", "uploaded", len(items))
	return items, nil
}

// ExportItem downloads one item's content and puts it into the volume under
// the item's name. The local temp copy is removed on every exit path,
// including a failed PUT.
func (b *VolumeBridge) ExportItem(ctx context.Context, itemID, volumePath string) error {
	log := b.log.WithItem(itemID).WithFields(map[string]interface{}{"volume": volumePath})

	item, err := b.platform.Item(ctx, itemID)
	if err != nil {
		return fmt.Errorf("failed to load item: %w", err)
	}

	local := filepath.Join(b.scratchDir, item.Name)
	if err := b.platform.DownloadItem(ctx, item.ID, local); err != nil {
		return fmt.Errorf("failed to download item content: %w", err)
	}
	defer os.Remove(local)

	remote := path.Join(volumePath, item.Name)
	if _, err := b.exec.Execute(ctx, dbsql.VolumePut(local, remote)); err != nil {
		return err
	}

	log.Infow("Exported item to volume", "remote", remote)
	return nil
}

// listedPath extracts the remote path from one LIST result row. The driver
// returns the path in a "path" column; if the listing shape differs, the
// first column is taken.
func listedPath(row *dbsql.Row) string {
	if p, ok := row.String("path"); ok {
		return p
	}
	cols := row.Columns()
	if len(cols) == 0 {
		return ""
	}
	p, _ := row.String(cols[0])
	return p
}
