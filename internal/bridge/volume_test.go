package bridge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataloop-ai-apps/databricks-bridge/internal/config"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/dataloop"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/dbsql"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/logger"
)

func listingOf(paths ...string) *dbsql.Result {
	result := &dbsql.Result{Columns: []string{"path"}}
	for _, p := range paths {
		row := dbsql.NewRow()
		row.Set("path", p)
		result.Rows = append(result.Rows, row)
	}
	return result
}

// volumeHandler answers LIST with the given paths and materializes GET
// statements as local files, failing the remote paths in failGet.
func volumeHandler(t *testing.T, listing *dbsql.Result, failGet map[string]bool) func(dbsql.Statement) (*dbsql.Result, error) {
	t.Helper()
	return func(stmt dbsql.Statement) (*dbsql.Result, error) {
		switch stmt.Kind {
		case dbsql.KindVolumeList:
			return listing, nil
		case dbsql.KindVolumeGet:
			if failGet[stmt.RemotePath] {
				return nil, dbsql.ErrQuery
			}
			if err := os.WriteFile(stmt.LocalPath, []byte("payload"), 0644); err != nil {
				return nil, err
			}
			return &dbsql.Result{}, nil
		default:
			return &dbsql.Result{}, nil
		}
	}
}

func newVolumeBridge(runner Runner, platform Platform, scratchDir string) *VolumeBridge {
	return NewVolumeBridge(runner, platform, logger.NewDefault(), &config.TransferConfig{
		Workers:    5,
		ScratchDir: scratchDir,
	})
}

func TestDownloadFile(t *testing.T) {
	scratch := t.TempDir()
	runner := &fakeRunner{handler: func(stmt dbsql.Statement) (*dbsql.Result, error) {
		return &dbsql.Result{}, nil
	}}

	vb := newVolumeBridge(runner, &fakePlatform{}, scratch)
	dest, err := vb.DownloadFile(context.Background(), "/Volumes/main/default/files/report.csv", "/somewhere/else/report.csv")
	require.NoError(t, err)

	// The destination is scratch dir + base name of the requested local path.
	assert.Equal(t, filepath.Join(scratch, "report.csv"), dest)

	stmts := runner.statements()
	require.Len(t, stmts, 1)
	assert.Equal(t, dbsql.KindVolumeGet, stmts[0].Kind)
	assert.Equal(t, "/Volumes/main/default/files/report.csv", stmts[0].RemotePath)
	assert.Equal(t, dest, stmts[0].LocalPath)
}

func TestImportFolderAllSucceed(t *testing.T) {
	listing := listingOf(
		"/Volumes/main/default/files/a.jpg",
		"/Volumes/main/default/files/b.jpg",
		"/Volumes/main/default/files/c.jpg",
	)
	runner := &fakeRunner{handler: volumeHandler(t, listing, nil)}
	platform := &fakePlatform{}

	vb := newVolumeBridge(runner, platform, t.TempDir())
	items, err := vb.ImportFolder(context.Background(), "/Volumes/main/default/files", "ds-123")
	require.NoError(t, err)
	assert.Len(t, items, 3)

	sort.Strings(platform.uploadedFolderFiles)
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, platform.uploadedFolderFiles)

	// One GET per listed file.
	assert.Len(t, runner.statementsOfKind(dbsql.KindVolumeGet), 3)
}

func TestImportFolderPartialBatch(t *testing.T) {
	listing := listingOf(
		"/Volumes/main/default/files/a.jpg",
		"/Volumes/main/default/files/b.jpg",
		"/Volumes/main/default/files/c.jpg",
		"/Volumes/main/default/files/d.jpg",
	)
	failGet := map[string]bool{
		"/Volumes/main/default/files/b.jpg": true,
		"/Volumes/main/default/files/d.jpg": true,
	}
	runner := &fakeRunner{handler: volumeHandler(t, listing, failGet)}
	platform := &fakePlatform{}

	vb := newVolumeBridge(runner, platform, t.TempDir())
	items, err := vb.ImportFolder(context.Background(), "/Volumes/main/default/files", "ds-123")

	// Failed downloads do not fail the batch; the upload carries N-K files.
	require.NoError(t, err)
	assert.Len(t, items, 2)

	sort.Strings(platform.uploadedFolderFiles)
	assert.Equal(t, []string{"a.jpg", "c.jpg"}, platform.uploadedFolderFiles)

	// Every listed file was attempted despite the failures.
	assert.Len(t, runner.statementsOfKind(dbsql.KindVolumeGet), 4)
}

func TestImportFolderAllDownloadsFailReturnsEmptyBatch(t *testing.T) {
	listing := listingOf(
		"/Volumes/main/default/files/a.jpg",
		"/Volumes/main/default/files/b.jpg",
	)
	failGet := map[string]bool{
		"/Volumes/main/default/files/a.jpg": true,
		"/Volumes/main/default/files/b.jpg": true,
	}
	runner := &fakeRunner{handler: volumeHandler(t, listing, failGet)}
	platform := &fakePlatform{}

	vb := newVolumeBridge(runner, platform, t.TempDir())
	items, err := vb.ImportFolder(context.Background(), "/Volumes/main/default/files", "ds-123")

	// A batch where every download failed still succeeds with zero items;
	// nil is reserved for the unresolved-dataset path.
	require.NoError(t, err)
	require.NotNil(t, items)
	assert.Empty(t, items)
	assert.Len(t, runner.statementsOfKind(dbsql.KindVolumeGet), 2)
}

func TestImportFolderEmptyListingReturnsEmptyBatch(t *testing.T) {
	runner := &fakeRunner{handler: volumeHandler(t, listingOf(), nil)}
	platform := &fakePlatform{}

	vb := newVolumeBridge(runner, platform, t.TempDir())
	items, err := vb.ImportFolder(context.Background(), "/Volumes/main/default/files", "ds-123")

	require.NoError(t, err)
	require.NotNil(t, items)
	assert.Empty(t, items)
}

func TestImportFolderDatasetNotFound(t *testing.T) {
	runner := &fakeRunner{}
	platform := &fakePlatform{datasetErr: dataloop.ErrNotFound}

	vb := newVolumeBridge(runner, platform, t.TempDir())
	items, err := vb.ImportFolder(context.Background(), "/Volumes/main/default/files", "missing")

	assert.NoError(t, err)
	assert.Nil(t, items)
	assert.Empty(t, runner.statements())
}

func TestImportFolderListFailurePropagates(t *testing.T) {
	runner := &fakeRunner{handler: func(stmt dbsql.Statement) (*dbsql.Result, error) {
		return nil, dbsql.ErrQuery
	}}

	vb := newVolumeBridge(runner, &fakePlatform{}, t.TempDir())
	_, err := vb.ImportFolder(context.Background(), "/Volumes/main/default/files", "ds-123")

	require.Error(t, err)
	assert.True(t, errors.Is(err, dbsql.ErrQuery))
}

func TestExportItem(t *testing.T) {
	scratch := t.TempDir()
	runner := &fakeRunner{handler: func(stmt dbsql.Statement) (*dbsql.Result, error) {
		return &dbsql.Result{}, nil
	}}
	platform := &fakePlatform{
		item:            &dataloop.Item{ID: "item-1", Name: "photo.jpg"},
		downloadContent: []byte("image bytes"),
	}

	vb := newVolumeBridge(runner, platform, scratch)
	err := vb.ExportItem(context.Background(), "item-1", "/Volumes/main/default/files")
	require.NoError(t, err)

	stmts := runner.statementsOfKind(dbsql.KindVolumePut)
	require.Len(t, stmts, 1)
	assert.Equal(t, "/Volumes/main/default/files/photo.jpg", stmts[0].RemotePath)
	assert.True(t, strings.HasPrefix(stmts[0].LocalPath, scratch))

	// The temp copy is cleaned up after a successful PUT.
	_, statErr := os.Stat(filepath.Join(scratch, "photo.jpg"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExportItemCleansUpOnPutFailure(t *testing.T) {
	scratch := t.TempDir()
	runner := &fakeRunner{handler: func(stmt dbsql.Statement) (*dbsql.Result, error) {
		return nil, dbsql.ErrQuery
	}}
	platform := &fakePlatform{
		item:            &dataloop.Item{ID: "item-1", Name: "photo.jpg"},
		downloadContent: []byte("image bytes"),
	}

	vb := newVolumeBridge(runner, platform, scratch)
	err := vb.ExportItem(context.Background(), "item-1", "/Volumes/main/default/files")
	require.Error(t, err)

	// The temp copy is removed even though the PUT failed.
	_, statErr := os.Stat(filepath.Join(scratch, "photo.jpg"))
	assert.True(t, os.IsNotExist(statErr))
}
