package ha

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestHAConfigFromEnv(t *testing.T) {
	t.Setenv("FAQPROV_MIGRATION_LOCK_ENABLED", "")
	t.Setenv("POD_NAME", "")
	cfg := HAConfigFromEnv()
	assert.True(t, cfg.MigrationLockEnabled)
	assert.NotEmpty(t, cfg.Identity)

	t.Setenv("FAQPROV_MIGRATION_LOCK_ENABLED", "false")
	t.Setenv("POD_NAME", "faqprov-0")
	cfg = HAConfigFromEnv()
	assert.False(t, cfg.MigrationLockEnabled)
	assert.Equal(t, "faqprov-0", cfg.Identity)
}

func TestNilDatabaseUsesNoopLock(t *testing.T) {
	locker := NewMigrationLocker(nil)

	ran := false
	err := locker.WithLock(context.Background(), func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestFallbackLockRunsFn(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	locker := NewMigrationLocker(db)

	ran := 0
	for i := 0; i < 2; i++ {
		err = locker.WithLock(context.Background(), func() error {
			ran++
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, ran)
}
