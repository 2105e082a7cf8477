package bridge

import (
	"context"
	"os"
	"sync"

	"github.com/dataloop-ai-apps/databricks-bridge/internal/dataloop"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/dbsql"
)

// fakeRunner records executed statements and answers them through a
// caller-supplied handler. Safe for concurrent use by transfer workers.
type fakeRunner struct {
	mu       sync.Mutex
	executed []dbsql.Statement
	handler  func(stmt dbsql.Statement) (*dbsql.Result, error)
}

func (f *fakeRunner) Execute(_ context.Context, stmt dbsql.Statement) (*dbsql.Result, error) {
	f.mu.Lock()
	f.executed = append(f.executed, stmt)
	f.mu.Unlock()

	if f.handler == nil {
		return &dbsql.Result{}, nil
	}
	return f.handler(stmt)
}

func (f *fakeRunner) statements() []dbsql.Statement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dbsql.Statement(nil), f.executed...)
}

func (f *fakeRunner) statementsOfKind(kind dbsql.Kind) []dbsql.Statement {
	var out []dbsql.Statement
	for _, stmt := range f.statements() {
		if stmt.Kind == kind {
			out = append(out, stmt)
		}
	}
	return out
}

// fakePlatform is an in-memory Platform.
type fakePlatform struct {
	datasetErr  error
	item        *dataloop.Item
	itemContent []byte
	annotations []dataloop.Annotation

	uploadedPromptItems []*dataloop.PromptItem
	uploadedFolders     []string
	uploadedFolderFiles []string
	downloadedItems     []string
	downloadContent     []byte
}

func (f *fakePlatform) Dataset(_ context.Context, datasetID string) (*dataloop.Dataset, error) {
	if f.datasetErr != nil {
		return nil, f.datasetErr
	}
	return &dataloop.Dataset{ID: datasetID, Name: "test-dataset"}, nil
}

func (f *fakePlatform) Item(_ context.Context, itemID string) (*dataloop.Item, error) {
	if f.item == nil {
		return nil, dataloop.ErrNotFound
	}
	return f.item, nil
}

func (f *fakePlatform) ItemAnnotations(_ context.Context, _ string) ([]dataloop.Annotation, error) {
	return f.annotations, nil
}

func (f *fakePlatform) ItemContent(_ context.Context, _ string) ([]byte, error) {
	return f.itemContent, nil
}

func (f *fakePlatform) DownloadItem(_ context.Context, itemID, localPath string) error {
	f.downloadedItems = append(f.downloadedItems, itemID)
	return os.WriteFile(localPath, f.downloadContent, 0644)
}

func (f *fakePlatform) UploadPromptItems(_ context.Context, _ string, items []*dataloop.PromptItem, _ bool) ([]dataloop.Item, error) {
	f.uploadedPromptItems = items
	uploaded := make([]dataloop.Item, 0, len(items))
	for _, item := range items {
		uploaded = append(uploaded, dataloop.Item{ID: "item-" + item.Name, Name: item.FileName()})
	}
	return uploaded, nil
}

func (f *fakePlatform) UploadFolder(_ context.Context, _ string, localDir string, _ bool) ([]dataloop.Item, error) {
	f.uploadedFolders = append(f.uploadedFolders, localDir)

	entries, err := os.ReadDir(localDir)
	if err != nil {
		return nil, err
	}
	uploaded := []dataloop.Item{}
	for _, entry := range entries {
		f.uploadedFolderFiles = append(f.uploadedFolderFiles, entry.Name())
		uploaded = append(uploaded, dataloop.Item{ID: entry.Name(), Name: entry.Name()})
	}
	return uploaded, nil
}

// promptItemContent builds serialized prompt-item JSON for update tests.
func promptItemContent(name string, prompts ...string) []byte {
	item := dataloop.NewPromptItem(name)
	for _, p := range prompts {
		item.AddUserPrompt(p)
	}
	content, _ := item.MarshalContent()
	return content
}
