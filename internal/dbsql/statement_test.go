package dbsql

import "testing"

func TestStatementRender(t *testing.T) {
	tests := []struct {
		name     string
		stmt     Statement
		expected string
	}{
		{
			name:     "query passes text through",
			stmt:     Query("SELECT * FROM `cat`.`sch`.`tbl`"),
			expected: "SELECT * FROM `cat`.`sch`.`tbl`",
		},
		{
			name:     "exec passes text through",
			stmt:     Exec("UPDATE t SET response = ? WHERE id = ?", "x", 1),
			expected: "UPDATE t SET response = ? WHERE id = ?",
		},
		{
			name:     "volume get",
			stmt:     VolumeGet("/Volumes/main/default/files/a.jpg", "/tmp/scratch/a.jpg"),
			expected: "GET '/Volumes/main/default/files/a.jpg' TO '/tmp/scratch/a.jpg'",
		},
		{
			name:     "volume put overwrites",
			stmt:     VolumePut("/tmp/scratch/a.jpg", "/Volumes/main/default/files/a.jpg"),
			expected: "PUT '/tmp/scratch/a.jpg' INTO '/Volumes/main/default/files/a.jpg' OVERWRITE",
		},
		{
			name:     "volume list",
			stmt:     VolumeList("/Volumes/main/default/files"),
			expected: "LIST '/Volumes/main/default/files'",
		},
		{
			name:     "embedded quote is escaped",
			stmt:     VolumeList("/Volumes/it's/files"),
			expected: "LIST '/Volumes/it''s/files'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stmt.Render(); got != tt.expected {
				t.Errorf("Render() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestStatementReturnsRows(t *testing.T) {
	tests := []struct {
		name     string
		stmt     Statement
		expected bool
	}{
		{"query", Query("SELECT 1"), true},
		{"volume list", VolumeList("/Volumes/x"), true},
		{"exec", Exec("UPDATE t SET a = 1"), false},
		{"volume get", VolumeGet("/Volumes/x/f", "/tmp/f"), false},
		{"volume put", VolumePut("/tmp/f", "/Volumes/x/f"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stmt.ReturnsRows(); got != tt.expected {
				t.Errorf("ReturnsRows() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestStatementTouchesLocalFiles(t *testing.T) {
	tests := []struct {
		name     string
		stmt     Statement
		expected bool
	}{
		{"volume get", VolumeGet("/Volumes/x/f", "/tmp/f"), true},
		{"volume put", VolumePut("/tmp/f", "/Volumes/x/f"), true},
		{"volume list", VolumeList("/Volumes/x"), false},
		{"query", Query("SELECT 1"), false},
		{"exec", Exec("UPDATE t SET a = 1"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stmt.TouchesLocalFiles(); got != tt.expected {
				t.Errorf("TouchesLocalFiles() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestQueryParams(t *testing.T) {
	stmt := Query("SELECT * FROM t WHERE id = ?", 42)
	if len(stmt.Params) != 1 || stmt.Params[0] != 42 {
		t.Errorf("expected params [42], got %v", stmt.Params)
	}
}
