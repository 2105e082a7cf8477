// Package bridge moves data between Databricks tables/volumes and Dataloop
// datasets.
package bridge

import (
	"context"
	"fmt"

	"github.com/dataloop-ai-apps/databricks-bridge/internal/dataloop"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/dbsql"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/sqlutil"
)

// Runner executes one Databricks statement. Satisfied by *dbsql.Executor.
type Runner interface {
	Execute(ctx context.Context, stmt dbsql.Statement) (*dbsql.Result, error)
}

// Platform is the subset of the Dataloop client the bridges use.
// Satisfied by *dataloop.Client.
type Platform interface {
	Dataset(ctx context.Context, datasetID string) (*dataloop.Dataset, error)
	Item(ctx context.Context, itemID string) (*dataloop.Item, error)
	ItemAnnotations(ctx context.Context, itemID string) ([]dataloop.Annotation, error)
	ItemContent(ctx context.Context, itemID string) ([]byte, error)
	DownloadItem(ctx context.Context, itemID, localPath string) error
	UploadPromptItems(ctx context.Context, datasetID string, items []*dataloop.PromptItem, overwrite bool) ([]dataloop.Item, error)
	UploadFolder(ctx context.Context, datasetID, localDir string, overwrite bool) ([]dataloop.Item, error)
}

// TableLocation addresses a Databricks table through the three-level
// catalog/schema/table namespace.
type TableLocation struct {
	Catalog string
	Schema  string
	Table   string
}

// Qualified returns the quoted, fully qualified table reference.
func (l TableLocation) Qualified() (string, error) {
	return sqlutil.QualifyTable(l.Catalog, l.Schema, l.Table)
}

func (l TableLocation) String() string {
	return fmt.Sprintf("%s.%s.%s", l.Catalog, l.Schema, l.Table)
}
