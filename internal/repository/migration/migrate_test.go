package migration

import (
	"testing"

	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/model"
	"offline-chat-be/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewInMemorySQLite()
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := newMigratedDB(t)
	require.NoError(t, Migrate(db))

	var count int64
	require.NoError(t, db.Table(model.ChatCategoryTable).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMigrate_NameKeyIsUnique(t *testing.T) {
	db := newMigratedDB(t)

	require.NoError(t, db.Table(model.NoteCategoryTable).Create(&model.Category{Id: "a", Name: "Über", NameKey: "über"}).Error)
	err := db.Table(model.NoteCategoryTable).Create(&model.Category{Id: "b", Name: "über", NameKey: "über"}).Error
	assert.Error(t, err)

	require.NoError(t, db.Table(model.ChatCategoryTable).Create(&model.Category{Id: "a", Name: "Über", NameKey: "über"}).Error,
		"each kind has its own index")
}

func TestMigrate_BackfillsNameKey(t *testing.T) {
	db := newMigratedDB(t)

	require.NoError(t, db.Exec("INSERT INTO personalities (id, name, name_key, details, is_default) VALUES (?, ?, '', ?, ?)",
		"p1", "  Ärztin ", "d", false).Error)
	require.NoError(t, Migrate(db))

	var row model.Personality
	require.NoError(t, db.First(&row, "id = ?", "p1").Error)
	assert.Equal(t, "ärztin", row.NameKey)

	var seeded model.Personality
	require.NoError(t, db.First(&seeded, "id = ?", entity.DefaultPersonalityId).Error)
	assert.Equal(t, entity.NameKey(entity.DefaultPersonalityName), seeded.NameKey)
}
