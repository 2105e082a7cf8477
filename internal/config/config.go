// Package config provides configuration structures and loading for the Databricks bridge.
package config

import "time"

// Config represents the complete application configuration.
type Config struct {
	Databricks DatabricksConfig `yaml:"databricks" mapstructure:"databricks"`
	Dataloop   DataloopConfig   `yaml:"dataloop" mapstructure:"dataloop"`
	Training   TrainingConfig   `yaml:"training" mapstructure:"training"`
	Transfer   TransferConfig   `yaml:"transfer" mapstructure:"transfer"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// DatabricksConfig represents the Databricks workspace connection configuration.
// ClientID/ClientSecret drive the OAuth service-principal exchange used by the
// SQL executor; Token is the personal access token used by the workspace REST
// APIs (clusters, fine-tuning).
type DatabricksConfig struct {
	Hostname       string        `yaml:"hostname" mapstructure:"hostname"`
	HTTPPath       string        `yaml:"http_path" mapstructure:"http_path"`
	ClientID       string        `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret   string        `yaml:"client_secret" mapstructure:"client_secret"`
	Token          string        `yaml:"token" mapstructure:"token"`
	StagingDir     string        `yaml:"staging_dir" mapstructure:"staging_dir"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
}

// DataloopConfig represents the Dataloop platform connection configuration.
type DataloopConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Token   string        `yaml:"token" mapstructure:"token"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// TrainingConfig represents fine-tuning job settings.
type TrainingConfig struct {
	ClusterID        string        `yaml:"cluster_id" mapstructure:"cluster_id"`
	Model            string        `yaml:"model" mapstructure:"model"`
	TrainDataPath    string        `yaml:"train_data_path" mapstructure:"train_data_path"`
	TaskType         string        `yaml:"task_type" mapstructure:"task_type"`
	TrainingDuration string        `yaml:"training_duration" mapstructure:"training_duration"`
	RegisterTo       string        `yaml:"register_to" mapstructure:"register_to"`
	LearningRate     float64       `yaml:"learning_rate" mapstructure:"learning_rate"`
	PollInterval     time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	SubmitAttempts   int           `yaml:"submit_attempts" mapstructure:"submit_attempts"`
	RetryBackoff     time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`
}

// TransferConfig represents volume transfer settings.
type TransferConfig struct {
	Workers    int    `yaml:"workers" mapstructure:"workers"`
	ScratchDir string `yaml:"scratch_dir" mapstructure:"scratch_dir"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Databricks: DatabricksConfig{
			ConnectTimeout: 10 * time.Second,
		},
		Dataloop: DataloopConfig{
			BaseURL: "https://gate.dataloop.ai/api/v1",
			Timeout: 30 * time.Second,
		},
		Training: TrainingConfig{
			TaskType:         "CHAT_COMPLETION",
			TrainingDuration: "10ep",
			LearningRate:     5e-7,
			PollInterval:     10 * time.Second,
			SubmitAttempts:   3,
			RetryBackoff:     10 * time.Second,
		},
		Transfer: TransferConfig{
			Workers: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}
