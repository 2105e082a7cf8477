package dbsql

import (
	"fmt"
	"strings"
)

// Kind identifies what a statement does, so the executor can decide whether
// to fetch rows or commit and count affected rows without sniffing the
// statement text.
type Kind int

const (
	// KindQuery is a read statement (SELECT); all rows are fetched.
	KindQuery Kind = iota
	// KindExec is a write statement (UPDATE, INSERT, DELETE); the affected
	// row count is returned.
	KindExec
	// KindVolumeGet copies a remote volume file to a local path.
	KindVolumeGet
	// KindVolumePut copies a local file to a remote volume path, overwriting.
	KindVolumePut
	// KindVolumeList lists a remote volume path; rows are fetched.
	KindVolumeList
)

// Statement is a tagged SQL or volume operation. SQL kinds carry statement
// text and optional positional parameters; volume kinds carry local/remote
// paths and render to the driver's GET/PUT/LIST ingestion forms.
type Statement struct {
	Kind       Kind
	Text       string
	Params     []interface{}
	LocalPath  string
	RemotePath string
}

// Query builds a read statement.
func Query(text string, params ...interface{}) Statement {
	return Statement{Kind: KindQuery, Text: text, Params: params}
}

// Exec builds a write statement.
func Exec(text string, params ...interface{}) Statement {
	return Statement{Kind: KindExec, Text: text, Params: params}
}

// VolumeGet builds a statement that downloads one remote volume file.
func VolumeGet(remotePath, localPath string) Statement {
	return Statement{Kind: KindVolumeGet, RemotePath: remotePath, LocalPath: localPath}
}

// VolumePut builds a statement that uploads one local file to a remote
// volume path with overwrite semantics.
func VolumePut(localPath, remotePath string) Statement {
	return Statement{Kind: KindVolumePut, LocalPath: localPath, RemotePath: remotePath}
}

// VolumeList builds a statement that lists a remote volume path.
func VolumeList(remotePath string) Statement {
	return Statement{Kind: KindVolumeList, RemotePath: remotePath}
}

// TouchesLocalFiles reports whether the statement reads or writes a local
// file, which the driver only allows under a staging path sent on the
// statement context.
func (s Statement) TouchesLocalFiles() bool {
	return s.Kind == KindVolumeGet || s.Kind == KindVolumePut
}

// ReturnsRows reports whether executing the statement yields a result set.
func (s Statement) ReturnsRows() bool {
	return s.Kind == KindQuery || s.Kind == KindVolumeList
}

// Render produces the statement text sent to the driver. Volume kinds are
// rendered into the SQL ingestion forms the Databricks driver understands;
// SQL kinds pass their text through unchanged.
func (s Statement) Render() string {
	switch s.Kind {
	case KindVolumeGet:
		return fmt.Sprintf("GET %s TO %s", quoteLiteral(s.RemotePath), quoteLiteral(s.LocalPath))
	case KindVolumePut:
		return fmt.Sprintf("PUT %s INTO %s OVERWRITE", quoteLiteral(s.LocalPath), quoteLiteral(s.RemotePath))
	case KindVolumeList:
		return fmt.Sprintf("LIST %s", quoteLiteral(s.RemotePath))
	default:
		return s.Text
	}
}

// quoteLiteral wraps a path in single quotes, escaping embedded quotes.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
