package catalog

import (
	"errors"
	"testing"

	"card-catalog/feature/catalog/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestReadSyncRowWrapsStorageError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `catalog_sync_states`").
		WillReturnError(errors.New("disk I/O error"))

	_, err := readSyncRow(db, DefaultDataset)

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "read sync state", storageErr.Op)
	assert.Contains(t, err.Error(), "disk I/O error")
}

func TestReadSyncRowMissingIsNotAnError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `catalog_sync_states`").
		WillReturnRows(sqlmock.NewRows([]string{"client_id", "dataset_name"}))

	state, err := readSyncRow(db, DefaultDataset)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestWriteSyncStateAndHistory(t *testing.T) {
	service := setupTestService(t)

	version := "v260830"
	hash := "abc123"
	err := service.db.Transaction(func(tx *gorm.DB) error {
		return writeSyncState(tx, DefaultDataset, &version, &hash)
	})
	require.NoError(t, err)

	state, err := readSyncRow(service.db, DefaultDataset)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, LocalClientID, state.ClientID)
	assert.Equal(t, "v260830", *state.CurrentVersion)
	assert.Equal(t, "abc123", *state.StateHash)

	// The version history picked up the same write.
	var history models.DatasetVersion
	err = service.db.Where("build_version = ?", "v260830").Take(&history).Error
	require.NoError(t, err)
	assert.Equal(t, OracleSourceID, history.SourceID)
	assert.Equal(t, "abc123", *history.StateHash)
}

func TestUpdateSyncPointerKeepsHistorySingleRowPerVersion(t *testing.T) {
	service := setupTestService(t)

	for i := 0; i < 3; i++ {
		err := service.db.Transaction(func(tx *gorm.DB) error {
			return UpdateSyncPointer(tx, DefaultDataset, "v260830")
		})
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, service.db.Model(&models.DatasetVersion{}).
		Where("build_version = ?", "v260830").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureSourceUpsert(t *testing.T) {
	service := setupTestService(t)

	window := "22:00Z"
	err := service.db.Transaction(func(tx *gorm.DB) error {
		return EnsureSource(tx, OracleSourceID, "snapshot", "https://api.example/v1", &window)
	})
	require.NoError(t, err)

	// Re-registration with a new URL refreshes in place.
	err = service.db.Transaction(func(tx *gorm.DB) error {
		return EnsureSource(tx, OracleSourceID, "snapshot", "https://api.example/v2", nil)
	})
	require.NoError(t, err)

	var sources []models.SyncSource
	require.NoError(t, service.db.Find(&sources).Error)
	require.Len(t, sources, 1)
	assert.Equal(t, "https://api.example/v2", sources[0].BaseURL)
	assert.True(t, sources[0].Enabled)
}
