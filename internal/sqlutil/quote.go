// Package sqlutil provides SQL identifier helpers for the Databricks bridge.
package sqlutil

import (
	"fmt"
	"regexp"
	"strings"
)

// QuoteIdentifier quotes a SQL identifier (catalog, schema, table, or column
// name) with backticks. It escapes any existing backticks by doubling them.
// Example: "my_table" -> "`my_table`"
// Example: "my`table" -> "`my``table`"
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// validIdentifierRegex matches valid identifier characters. Databricks allows
// more in delimited identifiers, but everything this tool addresses is plain
// alphanumeric plus underscore and hyphen, so we restrict to that.
var validIdentifierRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// IsValidIdentifier checks if a name is a valid identifier.
// This is a defense-in-depth measure against SQL injection: table locations
// arrive from CLI flags and pipeline configuration, not from code.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// QualifyTable builds a fully qualified `catalog`.`schema`.`table` reference
// after validating each part. Databricks addresses tables through this
// three-level namespace.
func QualifyTable(catalog, schema, table string) (string, error) {
	for _, part := range []string{catalog, schema, table} {
		if !IsValidIdentifier(part) {
			return "", &InvalidIdentifierError{Name: part}
		}
	}
	return fmt.Sprintf("%s.%s.%s",
		QuoteIdentifier(catalog),
		QuoteIdentifier(schema),
		QuoteIdentifier(table),
	), nil
}

// InvalidIdentifierError is returned when an identifier contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters, underscores, and hyphens)"
}
