package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dataloop-ai-apps/databricks-bridge/internal/config"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/training"
)

var (
	trainCluster  string
	trainModel    string
	trainData     string
	trainRegister string
	trainCatalog  string
	trainSchema   string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Launch a foundation-model fine-tuning run",
	Long: `Train brings the data-prep cluster up and submits a fine-tuning run
against the configured training table.

The cluster is polled until it reports RUNNING; a stopped cluster is
started first. Submissions that fail with a timeout are retried a bounded
number of times before the command gives up.

Flags override the training section of the configuration file. When the
training data path or registration target is not set, both are derived
from --catalog and --schema.

Example:
  databridge train --catalog main --schema llm --model databricks-meta-llama-3-70b-instruct`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&trainCluster, "cluster", "", "Data-prep cluster id (overrides config)")
	trainCmd.Flags().StringVar(&trainModel, "model", "", "Base model to fine-tune (overrides config)")
	trainCmd.Flags().StringVar(&trainData, "train-data", "", "Training data table path (overrides config)")
	trainCmd.Flags().StringVar(&trainRegister, "register-to", "", "Model registration target (overrides config)")
	trainCmd.Flags().StringVar(&trainCatalog, "catalog", "", "Catalog for derived defaults")
	trainCmd.Flags().StringVar(&trainSchema, "schema", "", "Schema for derived defaults")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	if a.cfg.Databricks.Token == "" {
		return fmt.Errorf("train requires databricks.token; workspace APIs do not accept service principal credentials here")
	}

	p, err := trainParamsFromConfig(&a.cfg.Training)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ws := training.NewWorkspaceClient(a.cfg.Databricks.Hostname, a.cfg.Databricks.Token, a.log)
	launcher := training.NewLauncher(ws, a.log, &a.cfg.Training)

	run, err := launcher.RunTrain(ctx, p)
	if err != nil {
		return fmt.Errorf("training run failed: %w", err)
	}

	cmd.Printf("Submitted fine-tuning run %s (status %s)\n", run.Name, run.Status)
	cmd.Printf("  Model: %s\n", p.Model)
	cmd.Printf("  Training data: %s\n", p.TrainDataPath)
	cmd.Printf("  Registered to: %s\n", p.RegisterTo)
	return nil
}

// trainParamsFromConfig merges CLI flags over the training config section and
// derives the data path and registration target when neither is given.
func trainParamsFromConfig(cfg *config.TrainingConfig) (training.TrainParams, error) {
	p := training.TrainParams{
		ClusterID:        cfg.ClusterID,
		Model:            cfg.Model,
		TrainDataPath:    cfg.TrainDataPath,
		TaskType:         cfg.TaskType,
		TrainingDuration: cfg.TrainingDuration,
		RegisterTo:       cfg.RegisterTo,
		LearningRate:     cfg.LearningRate,
	}
	if trainCluster != "" {
		p.ClusterID = trainCluster
	}
	if trainModel != "" {
		p.Model = trainModel
	}
	if trainData != "" {
		p.TrainDataPath = trainData
	}
	if trainRegister != "" {
		p.RegisterTo = trainRegister
	}

	if p.TrainDataPath == "" {
		if trainCatalog == "" || trainSchema == "" {
			return p, fmt.Errorf("no training data path configured; provide --train-data or both --catalog and --schema")
		}
		p.TrainDataPath = training.DefaultTrainDataPath(trainCatalog, trainSchema)
	}
	if p.RegisterTo == "" {
		if trainCatalog == "" || trainSchema == "" {
			return p, fmt.Errorf("no registration target configured; provide --register-to or both --catalog and --schema")
		}
		p.RegisterTo = training.RegisteredModelName(trainCatalog, trainSchema, p.Model)
	}

	if p.ClusterID == "" {
		return p, fmt.Errorf("no data-prep cluster configured; provide --cluster or set training.cluster_id")
	}
	if p.Model == "" {
		return p, fmt.Errorf("no base model configured; provide --model or set training.model")
	}
	return p, nil
}
