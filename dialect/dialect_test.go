package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"postgres":   Postgres,
		"postgresql": Postgres,
		"pgx":        Postgres,
		"mysql":      MySQL,
		"mariadb":    MySQL,
		"sqlite3":    SQLite,
		"sqlite":     SQLite,
		"mssql":      MSSQL,
		"sqlserver":  MSSQL,
		"ansi":       ANSI,
		"oracle":     "oracle",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestStatementText(t *testing.T) {
	assert.Equal(t, "BEGIN", BeginStatement(Postgres))
	assert.Equal(t, "BEGIN", BeginStatement(SQLite))
	assert.Equal(t, "BEGIN TRAN", BeginStatement(MSSQL))

	assert.Equal(t, "SELECT version()", VersionQuery(Postgres))
	assert.Equal(t, "SELECT @@GLOBAL.version version", VersionQuery(MySQL))
	assert.Equal(t, "SELECT sqlite_version() version", VersionQuery(SQLite))
	assert.Equal(t, "SELECT @@VERSION AS version", VersionQuery(MSSQL))
	assert.Empty(t, VersionQuery(ANSI))
}

func TestValid(t *testing.T) {
	for _, name := range Names() {
		assert.True(t, Valid(name), name)
	}
	assert.False(t, Valid("oracle"))
}
