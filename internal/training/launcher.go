package training

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dataloop-ai-apps/databricks-bridge/internal/config"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/logger"
)

// ErrSubmitExhausted is returned when every submission attempt timed out.
// The reference behavior fell through silently here; surfacing a terminal
// error lets callers distinguish "no job created" from success.
var ErrSubmitExhausted = errors.New("fine-tuning submission attempts exhausted")

// TrainParams are the inputs for one fine-tuning run.
type TrainParams struct {
	ClusterID        string
	Model            string
	TrainDataPath    string
	TaskType         string
	TrainingDuration string
	RegisterTo       string
	LearningRate     float64
}

// Launcher ensures the data-prep cluster is up and submits fine-tuning runs
// with bounded retry on timeout.
type Launcher struct {
	ws           WorkspaceClient
	log          *logger.Logger
	pollInterval time.Duration
	attempts     int
	backoff      time.Duration
}

// NewLauncher creates a Launcher with poll/retry settings from configuration.
func NewLauncher(ws WorkspaceClient, log *logger.Logger, cfg *config.TrainingConfig) *Launcher {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	attempts := cfg.SubmitAttempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 10 * time.Second
	}
	return &Launcher{
		ws:           ws,
		log:          log,
		pollInterval: pollInterval,
		attempts:     attempts,
		backoff:      backoff,
	}
}

// EnsureClusterRunning polls the cluster until it reports RUNNING. A cluster
// in a transitional state (PENDING, RESTARTING) is waited on; any other
// non-running state gets a start command before the next poll.
//
// There is no upper bound on the wait: a cluster that never comes up blocks
// until the context is cancelled.
func (l *Launcher) EnsureClusterRunning(ctx context.Context, clusterID string) error {
	log := l.log.WithCluster(clusterID)

	for {
		state, err := l.ws.ClusterState(ctx, clusterID)
		if err != nil {
			return err
		}

		switch state {
		case StateRunning:
			log.Info("Cluster is running")
			return nil
		case StatePending, StateRestarting:
			log.Infow("Cluster is starting, waiting", "state", state)
		default:
			log.Infow("Starting cluster", "state", state)
			if err := l.ws.StartCluster(ctx, clusterID); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.pollInterval):
		}
	}
}

// RunTrain confirms the data-prep cluster is running, then submits the
// fine-tuning run. Only timeout-class submission failures are retried, up to
// the configured attempt count with a fixed backoff; any other failure
// propagates immediately.
func (l *Launcher) RunTrain(ctx context.Context, p TrainParams) (*RunInfo, error) {
	log := l.log.WithCluster(p.ClusterID).WithFields(map[string]interface{}{
		"model":       p.Model,
		"register_to": p.RegisterTo,
	})

	if err := l.EnsureClusterRunning(ctx, p.ClusterID); err != nil {
		return nil, err
	}

	run := FineTuningRun{
		Model:             p.Model,
		TrainDataPath:     p.TrainDataPath,
		TaskType:          p.TaskType,
		TrainingDuration:  p.TrainingDuration,
		RegisterTo:        p.RegisterTo,
		LearningRate:      p.LearningRate,
		DataPrepClusterID: p.ClusterID,
	}

	var lastErr error
	for attempt := 1; attempt <= l.attempts; attempt++ {
		info, err := l.ws.CreateFineTuningRun(ctx, run)
		if err == nil {
			log.Infow("Fine-tuning run submitted", "run", info.Name, "attempt", attempt)
			return info, nil
		}
		if !IsTimeout(err) {
			return nil, err
		}

		lastErr = err
		log.Warnw("Fine-tuning submission timed out", "attempt", attempt, "attempts", l.attempts)

		if attempt < l.attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(l.backoff):
			}
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrSubmitExhausted, l.attempts, lastErr)
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// RegisteredModelName derives the Unity Catalog registration target for a
// classifier fine-tuned from the given base model.
func RegisteredModelName(catalog, schema, model string) string {
	return fmt.Sprintf("%s.%s.classify_%s", catalog, schema, nonAlphanumeric.ReplaceAllString(model, "_"))
}

// DefaultTrainDataPath is the conventional training table for a catalog and
// schema.
func DefaultTrainDataPath(catalog, schema string) string {
	return fmt.Sprintf("%s.%s.training_dataset", catalog, schema)
}
