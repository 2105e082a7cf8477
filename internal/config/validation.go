package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateDatabricks()...)
	errors = append(errors, c.validateDataloop()...)
	errors = append(errors, c.validateTransfer()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateDatabricks() ValidationErrors {
	var errors ValidationErrors

	if c.Databricks.Hostname == "" {
		errors = append(errors, ValidationError{
			Field:   "databricks.hostname",
			Message: "hostname is required",
		})
	}
	if strings.Contains(c.Databricks.Hostname, "://") {
		errors = append(errors, ValidationError{
			Field:   "databricks.hostname",
			Message: "hostname must not include a scheme",
		})
	}
	if c.Databricks.HTTPPath == "" {
		errors = append(errors, ValidationError{
			Field:   "databricks.http_path",
			Message: "http_path is required",
		})
	}
	if c.Databricks.ClientID == "" && c.Databricks.Token == "" {
		errors = append(errors, ValidationError{
			Field:   "databricks.client_id",
			Message: "either client_id/client_secret or token is required",
		})
	}
	if c.Databricks.ClientID != "" && c.Databricks.ClientSecret == "" {
		errors = append(errors, ValidationError{
			Field:   "databricks.client_secret",
			Message: "client_secret is required when client_id is set",
		})
	}
	if c.Databricks.ConnectTimeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "databricks.connect_timeout",
			Message: "connect_timeout must not be negative",
		})
	}

	return errors
}

func (c *Config) validateDataloop() ValidationErrors {
	var errors ValidationErrors

	if c.Dataloop.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "dataloop.base_url",
			Message: "base_url is required",
		})
	}
	if c.Dataloop.Token == "" {
		errors = append(errors, ValidationError{
			Field:   "dataloop.token",
			Message: "token is required",
		})
	}

	return errors
}

func (c *Config) validateTransfer() ValidationErrors {
	var errors ValidationErrors

	if c.Transfer.Workers <= 0 {
		errors = append(errors, ValidationError{
			Field:   "transfer.workers",
			Message: "workers must be greater than zero",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level %q (must be debug, info, warn, or error)", c.Logging.Level),
		})
	}

	switch c.Logging.Format {
	case "", "json", "text":
	default:
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid format %q (must be json or text)", c.Logging.Format),
		})
	}

	return errors
}
