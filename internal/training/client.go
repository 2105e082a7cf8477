// Package training launches foundation-model fine-tuning runs on a
// Databricks workspace, making sure the data-prep cluster is running first.
package training

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dataloop-ai-apps/databricks-bridge/internal/logger"
)

// Cluster lifecycle states reported by the workspace API. PENDING and
// RESTARTING are transitional: the cluster is on its way up and must not be
// started again.
const (
	StateRunning    = "RUNNING"
	StatePending    = "PENDING"
	StateRestarting = "RESTARTING"
)

// FineTuningRun is a fine-tuning job submission.
type FineTuningRun struct {
	Model             string  `json:"model"`
	TrainDataPath     string  `json:"train_data_path"`
	TaskType          string  `json:"task_type"`
	TrainingDuration  string  `json:"training_duration"`
	RegisterTo        string  `json:"register_to"`
	LearningRate      float64 `json:"learning_rate"`
	DataPrepClusterID string  `json:"data_prep_cluster_id,omitempty"`
}

// RunInfo describes a submitted fine-tuning run.
type RunInfo struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// WorkspaceClient is the cluster-management and model-training surface the
// launcher needs.
type WorkspaceClient interface {
	ClusterState(ctx context.Context, clusterID string) (string, error)
	StartCluster(ctx context.Context, clusterID string) error
	CreateFineTuningRun(ctx context.Context, run FineTuningRun) (*RunInfo, error)
}

// restClient implements WorkspaceClient over the workspace REST API with a
// personal access token.
type restClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewWorkspaceClient creates a WorkspaceClient for the given workspace host.
// Hostnames without a scheme are addressed over https.
func NewWorkspaceClient(host, token string, log *logger.Logger) WorkspaceClient {
	baseURL := host
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}
	return &restClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

type clusterInfo struct {
	ClusterID string `json:"cluster_id"`
	State     string `json:"state"`
}

// ClusterState fetches the current lifecycle state of a cluster.
func (c *restClient) ClusterState(ctx context.Context, clusterID string) (string, error) {
	path := "/api/2.1/clusters/get?cluster_id=" + url.QueryEscape(clusterID)

	var info clusterInfo
	if err := c.do(ctx, http.MethodGet, path, nil, &info); err != nil {
		return "", fmt.Errorf("failed to get cluster state: %w", err)
	}
	return info.State, nil
}

// StartCluster asks the workspace to start a cluster.
func (c *restClient) StartCluster(ctx context.Context, clusterID string) error {
	body := map[string]string{"cluster_id": clusterID}
	if err := c.do(ctx, http.MethodPost, "/api/2.1/clusters/start", body, nil); err != nil {
		return fmt.Errorf("failed to start cluster: %w", err)
	}
	return nil
}

// CreateFineTuningRun submits a fine-tuning job.
func (c *restClient) CreateFineTuningRun(ctx context.Context, run FineTuningRun) (*RunInfo, error) {
	var info RunInfo
	if err := c.do(ctx, http.MethodPost, "/api/2.0/fine-tuning/create", run, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// do issues one authenticated JSON request.
func (c *restClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout {
		return &timeoutError{msg: fmt.Sprintf("%s %s: status %d", method, path, resp.StatusCode)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr == nil && envelope.Message != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, envelope.Message, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// timeoutError marks server-side timeout statuses so the launcher's retry
// classification treats them like transport timeouts.
type timeoutError struct {
	msg string
}

func (e *timeoutError) Error() string   { return e.msg }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

// IsTimeout reports whether err is timeout-class: a context deadline, a
// network timeout, or a server timeout status.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
