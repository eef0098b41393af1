package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"card-catalog/feature/catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStateHashEmptyDataset(t *testing.T) {
	service := setupTestService(t)

	hash, err := ComputeStateHash(service.db, DefaultDataset)
	require.NoError(t, err)

	// Without a current version the hash covers the dataset name alone.
	seed := sha256.Sum256([]byte(DefaultDataset + "\n"))
	assert.Equal(t, hex.EncodeToString(seed[:]), hash)
}

func TestComputeStateHashDeterministic(t *testing.T) {
	service := setupTestService(t)
	_, err := service.ApplySnapshot(snapshotV1())
	require.NoError(t, err)

	first, err := ComputeStateHash(service.db, DefaultDataset)
	require.NoError(t, err)
	second, err := ComputeStateHash(service.db, DefaultDataset)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeStateHashOrderIndependent(t *testing.T) {
	forward := setupTestService(t)
	input := snapshotV1()
	_, err := forward.ApplySnapshot(input)
	require.NoError(t, err)
	forwardHash, err := ComputeStateHash(forward.db, DefaultDataset)
	require.NoError(t, err)

	// Same records in reverse insertion order hash identically: the digest
	// orders rows by printing id, not by arrival.
	reversedService := openTestService(t, t.Name()+"-reversed")
	reversed := snapshotV1()
	reversed.Records[0], reversed.Records[1] = reversed.Records[1], reversed.Records[0]
	_, err = reversedService.ApplySnapshot(reversed)
	require.NoError(t, err)
	reversedHash, err := ComputeStateHash(reversedService.db, DefaultDataset)
	require.NoError(t, err)

	assert.Equal(t, forwardHash, reversedHash)
}

func TestComputeStateHashSensitiveToContent(t *testing.T) {
	service := setupTestService(t)
	_, err := service.ApplySnapshot(snapshotV1())
	require.NoError(t, err)
	before, err := ComputeStateHash(service.db, DefaultDataset)
	require.NoError(t, err)

	require.NoError(t, service.db.Model(&models.PriceRow{}).
		Where("printing_id = ?", "aaa-1").
		Update("tcg_market", 2.00).Error)

	after, err := ComputeStateHash(service.db, DefaultDataset)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestComputeStateHashExcludesRowsWithoutMarket(t *testing.T) {
	service := setupTestService(t)
	_, err := service.ApplySnapshot(snapshotV1())
	require.NoError(t, err)
	before, err := ComputeStateHash(service.db, DefaultDataset)
	require.NoError(t, err)

	// A buylist-only row has no market price and stays outside the digest.
	require.NoError(t, service.db.Create(&models.PriceRow{
		PrintingID:  "aaa-1",
		ConditionID: 1,
		FinishID:    2,
		SyncVersion: "v260829",
		CkBuylist:   floatPtr(0.75),
		CapturedYMD: 20260829,
		CapturedAt:  "2026-08-29T12:00:00Z",
		CreatedAt:   "2026-08-29T12:00:00Z",
	}).Error)

	after, err := ComputeStateHash(service.db, DefaultDataset)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
