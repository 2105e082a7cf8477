package bridge

import (
	"context"
	"fmt"

	"github.com/dataloop-ai-apps/databricks-bridge/internal/dataloop"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/dbsql"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/logger"
)

// TableBridge imports table rows as prompt items and writes curated best
// responses back to the source table.
type TableBridge struct {
	exec     Runner
	platform Platform
	log      *logger.Logger
}

// NewTableBridge creates a TableBridge.
func NewTableBridge(exec Runner, platform Platform, log *logger.Logger) *TableBridge {
	return &TableBridge{
		exec:     exec,
		platform: platform,
		log:      log,
	}
}

// CreateTable pulls every row of the source table into the destination
// dataset as prompt items, one per row, named by the row's id column and
// seeded with the row's prompt column as the first user message.
//
// A dataset that cannot be resolved is an expected outcome: it is logged and
// a nil result is returned without error, so pipeline callers can decide the
// next step.
func (b *TableBridge) CreateTable(ctx context.Context, loc TableLocation, datasetID string) ([]dataloop.Item, error) {
	log := b.log.WithDataset(datasetID).WithTable(loc.String())

	dataset, err := b.platform.Dataset(ctx, datasetID)
	if err != nil {
		log.Warnw("Failed to resolve destination dataset, skipping import", "error", err)
		return nil, nil
	}

	qualified, err := loc.Qualified()
	if err != nil {
		return nil, fmt.Errorf("invalid table location: %w", err)
	}

	result, err := b.exec.Execute(ctx, dbsql.Query("SELECT * FROM "+qualified))
	if err != nil {
		return nil, err
	}

	promptItems := make([]*dataloop.PromptItem, 0, len(result.Rows))
	for i, row := range result.Rows {
		id, ok := row.String("id")
		if !ok {
			return nil, fmt.Errorf("row %d of %s has no id column", i, loc)
		}
		prompt, _ := row.String("prompt")

		item := dataloop.NewPromptItem(id)
		item.AddUserPrompt(prompt)
		promptItems = append(promptItems, item)
	}

	items, err := b.platform.UploadPromptItems(ctx, dataset.ID, promptItems, true)
	if err != nil {
		return items, fmt.Errorf("failed to upload prompt items: %w", err)
	}

	log.Infow("Imported table rows as prompt items", "rows", len(result.Rows), "uploaded", len(items))
	return items, nil
}

// UpdateTable writes the item's best response back to the source table row
// it was imported from. The best response is the first listed annotation
// flagged isBest whose prompt id matches the item's first prompt key; list
// order decides ties.
//
// When no such annotation exists the item is left alone: the miss is logged
// and a nil result returned without error.
func (b *TableBridge) UpdateTable(ctx context.Context, itemID string, loc TableLocation) (*dataloop.Item, error) {
	log := b.log.WithItem(itemID).WithTable(loc.String())

	item, err := b.platform.Item(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}

	content, err := b.platform.ItemContent(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item content: %w", err)
	}

	promptItem, err := dataloop.ParsePromptItem(item.Name, content)
	if err != nil {
		return nil, err
	}
	firstKey := promptItem.FirstPromptKey()

	annotations, err := b.platform.ItemAnnotations(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", err)
	}

	var best *dataloop.Annotation
	for i := range annotations {
		a := &annotations[i]
		if a.IsBest() && a.Metadata.System.PromptID == firstKey {
			best = a
			break
		}
	}
	if best == nil {
		log.Warnw("No best response found for item", "prompt_key", firstKey)
		return nil, nil
	}

	rowID, err := dataloop.RowID(item.Name)
	if err != nil {
		return nil, err
	}

	qualified, err := loc.Qualified()
	if err != nil {
		return nil, fmt.Errorf("invalid table location: %w", err)
	}

	modelID, name := best.Attribution()
	stmt := dbsql.Exec(
		fmt.Sprintf("UPDATE %s SET response = ?, model_id = ?, name = ? WHERE id = ?", qualified),
		best.Coordinates, modelID, name, rowID,
	)

	if _, err := b.exec.Execute(ctx, stmt); err != nil {
		return nil, err
	}

	log.Infow("Wrote best response back to source table", "row_id", rowID, "model_id", modelID, "name", name)
	return item, nil
}
