package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Родительская таблица должна идти раньше дочерней, иначе вставки при
// восстановлении нарушат внешние ключи.
func TestTableOrderRespectsForeignKeys(t *testing.T) {
	pos := make(map[string]int, len(tables))
	for i, table := range tables {
		pos[table] = i
	}

	deps := map[string][]string{
		"users":           {"cities", "images"},
		"locations":       {"cities"},
		"location_images": {"locations", "images"},
		"cleandays":       {"locations"},
		"cleanday_images": {"cleandays", "images"},
		"participations":  {"users", "cleandays"},
		"requirements":    {"cleandays"},
		"fulfillments":    {"participations", "requirements"},
		"comments":        {"participations"},
		"logs":            {"cleandays", "users", "comments", "locations", "cities"},
	}

	for child, parents := range deps {
		childPos, ok := pos[child]
		require.True(t, ok, child)
		for _, parent := range parents {
			parentPos, ok := pos[parent]
			require.True(t, ok, parent)
			assert.Less(t, parentPos, childPos, "%s должна идти раньше %s", parent, child)
		}
	}
}

func TestInsertOverridesCoverKnownTables(t *testing.T) {
	for table := range insertOverrides {
		assert.Contains(t, tables, table)
	}
}
