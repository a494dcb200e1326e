package database

import (
	"path/filepath"
	"testing"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/config"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Run("SQLiteMigrates", func(t *testing.T) {
		cfg := &config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "test.db")}

		db, err := Open(cfg)
		require.NoError(t, err)
		defer Close(db)

		require.NoError(t, Migrate(db))
		assert.NoError(t, Ping(db))
		assert.True(t, db.Migrator().HasTable(&models.UserProfile{}))
		assert.True(t, db.Migrator().HasTable("users"))
	})

	t.Run("UnsupportedDriver", func(t *testing.T) {
		_, err := Open(&config.Config{DBDriver: "oracle"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
	})
}
