package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cshealth/reminder-gateway/pkg/pg"
)

func setupTestDB(t *testing.T) *pg.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// One connection keeps the in-memory database alive and serializes access.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&ContactEntity{}, &GroupEntity{}, &ContactGroupEntity{}, &MessageEntity{})
	require.NoError(t, err)

	return pg.FromGorm(db)
}
