// Package dbsql executes SQL and volume statements against a Databricks SQL
// warehouse. Each call opens a short-lived authenticated connection, runs one
// statement, and closes the connection on every exit path.
package dbsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	dbsqldriver "github.com/databricks/databricks-sql-go"
	"github.com/databricks/databricks-sql-go/auth/oauth/m2m"
	"github.com/databricks/databricks-sql-go/driverctx"

	"github.com/dataloop-ai-apps/databricks-bridge/internal/config"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/logger"
)

// ErrQuery is returned for any statement failure: auth, transport, or SQL
// execution. The original cause's message is preserved in the error text but
// the driver's error type is not part of the chain, so callers can only
// match with errors.Is(err, ErrQuery).
var ErrQuery = errors.New("query failed")

// opener produces a ready-to-use database handle for one statement.
type opener func(cfg *config.DatabricksConfig) (*sql.DB, error)

// Executor runs statements against a Databricks SQL warehouse.
type Executor struct {
	cfg  *config.DatabricksConfig
	log  *logger.Logger
	open opener
}

// New creates an Executor using OAuth service-principal credentials from the
// given configuration. The client secret is held in the config and never
// logged.
func New(cfg *config.DatabricksConfig, log *logger.Logger) *Executor {
	return &Executor{
		cfg:  cfg,
		log:  log,
		open: openConnection,
	}
}

// Execute runs one statement. Read statements (Query, VolumeList) return all
// rows; everything else returns the affected row count. The connection is
// opened for this call only and closed before returning.
func (e *Executor) Execute(ctx context.Context, stmt Statement) (*Result, error) {
	ctx = e.stagingContext(ctx, stmt)
	text := stmt.Render()

	e.log.Debugw("Executing statement",
		"host", e.cfg.Hostname,
		"http_path", e.cfg.HTTPPath,
		"statement", truncate(text, 120),
	)

	db, err := e.open(e.cfg)
	if err != nil {
		return nil, e.fail(text, err)
	}
	defer db.Close()

	if stmt.ReturnsRows() {
		result, err := e.fetchAll(ctx, db, text, stmt.Params)
		if err != nil {
			return nil, e.fail(text, err)
		}
		return result, nil
	}

	res, err := db.ExecContext(ctx, text, stmt.Params...)
	if err != nil {
		return nil, e.fail(text, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, e.fail(text, err)
	}

	return &Result{Affected: affected}, nil
}

// fetchAll runs a read statement and materializes the full result set.
func (e *Executor) fetchAll(ctx context.Context, db *sql.DB, text string, params []interface{}) (*Result, error) {
	rows, err := db.QueryContext(ctx, text, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{Columns: columns}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := NewRow()
		for i, col := range columns {
			row.Set(col, normalizeValue(values[i]))
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// stagingContext attaches the staging allow-list for statements that touch
// local files. The driver checks this list on the statement context, not the
// connector, and refuses GET/PUT without it.
func (e *Executor) stagingContext(ctx context.Context, stmt Statement) context.Context {
	if !stmt.TouchesLocalFiles() || e.cfg.StagingDir == "" {
		return ctx
	}
	return driverctx.NewContextWithStagingInfo(ctx, []string{e.cfg.StagingDir})
}

// fail logs the failure with connection context and collapses the cause
// behind ErrQuery.
func (e *Executor) fail(text string, cause error) error {
	e.log.Errorw("Statement failed",
		"host", e.cfg.Hostname,
		"http_path", e.cfg.HTTPPath,
		"statement", truncate(text, 120),
		"error", cause,
	)
	return fmt.Errorf("%w on %s: %v", ErrQuery, e.cfg.Hostname, cause)
}

// openConnection builds a connector with service-principal OAuth (preferred)
// or access-token auth and opens a database handle on it.
func openConnection(cfg *config.DatabricksConfig) (*sql.DB, error) {
	opts := []dbsqldriver.ConnOption{
		dbsqldriver.WithServerHostname(cfg.Hostname),
		dbsqldriver.WithHTTPPath(cfg.HTTPPath),
		dbsqldriver.WithTimeout(cfg.ConnectTimeout),
	}

	if cfg.ClientID != "" {
		opts = append(opts, dbsqldriver.WithAuthenticator(
			m2m.NewAuthenticator(cfg.ClientID, cfg.ClientSecret, cfg.Hostname),
		))
	} else {
		opts = append(opts, dbsqldriver.WithAccessToken(cfg.Token))
	}

	connector, err := dbsqldriver.NewConnector(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build connector: %w", err)
	}

	return sql.OpenDB(connector), nil
}

// truncate shortens s to at most n runes for log output.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
