package training

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataloop-ai-apps/databricks-bridge/internal/logger"
)

func testWorkspace(t *testing.T, handler http.Handler) WorkspaceClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewWorkspaceClient(srv.URL, "dapi-test", logger.NewDefault())
}

func TestClusterState(t *testing.T) {
	ws := testWorkspace(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/2.1/clusters/get", r.URL.Path)
		assert.Equal(t, "cluster-1", r.URL.Query().Get("cluster_id"))
		assert.Equal(t, "Bearer dapi-test", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]string{"cluster_id": "cluster-1", "state": "TERMINATED"})
	}))

	state, err := ws.ClusterState(context.Background(), "cluster-1")
	require.NoError(t, err)
	assert.Equal(t, "TERMINATED", state)
}

func TestStartCluster(t *testing.T) {
	var gotBody map[string]string
	ws := testWorkspace(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/2.1/clusters/start", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte("{}"))
	}))

	require.NoError(t, ws.StartCluster(context.Background(), "cluster-1"))
	assert.Equal(t, "cluster-1", gotBody["cluster_id"])
}

func TestCreateFineTuningRun(t *testing.T) {
	var gotRun FineTuningRun
	ws := testWorkspace(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/2.0/fine-tuning/create", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRun))

		json.NewEncoder(w).Encode(RunInfo{Name: "ft-run-7", Status: "PENDING"})
	}))

	info, err := ws.CreateFineTuningRun(context.Background(), FineTuningRun{
		Model:             "meta-llama/Meta-Llama-3-8B",
		TrainDataPath:     "main.finetune.training_dataset",
		TaskType:          "CHAT_COMPLETION",
		TrainingDuration:  "10ep",
		RegisterTo:        "main.finetune.classify_llama",
		LearningRate:      5e-7,
		DataPrepClusterID: "cluster-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "ft-run-7", info.Name)
	assert.Equal(t, "meta-llama/Meta-Llama-3-8B", gotRun.Model)
	assert.Equal(t, "CHAT_COMPLETION", gotRun.TaskType)
	assert.Equal(t, "cluster-1", gotRun.DataPrepClusterID)
}

func TestTimeoutStatusClassified(t *testing.T) {
	ws := testWorkspace(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	}))

	_, err := ws.CreateFineTuningRun(context.Background(), FineTuningRun{Model: "m"})
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestErrorEnvelopeSurfaced(t *testing.T) {
	ws := testWorkspace(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "model not supported"})
	}))

	_, err := ws.CreateFineTuningRun(context.Background(), FineTuningRun{Model: "bad"})
	require.Error(t, err)
	assert.False(t, IsTimeout(err))
	assert.Contains(t, err.Error(), "model not supported")
}

func TestHostnameWithoutScheme(t *testing.T) {
	client := NewWorkspaceClient("adb-1234.azuredatabricks.net", "tok", logger.NewDefault()).(*restClient)
	assert.Equal(t, "https://adb-1234.azuredatabricks.net", client.baseURL)
}
