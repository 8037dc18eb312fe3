package repository

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The query column list and the migration drift independently, so pin
// them against each other.
func TestUserColumnsExistInMigration(t *testing.T) {
	ddl, err := os.ReadFile("../../../../migrations/0001_init.up.sql")
	require.NoError(t, err)

	usersTable := regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS users \((.*?)\);`).
		FindStringSubmatch(string(ddl))
	require.Len(t, usersTable, 2, "users table definition not found")

	declared := map[string]bool{}
	for _, line := range strings.Split(usersTable[1], "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 {
			declared[fields[0]] = true
		}
	}

	for _, col := range userColumns {
		assert.True(t, declared[col], "column %q selected but not declared in migration", col)
	}
}
