package prices

import (
	"math"
	"testing"

	"card-catalog/feature/catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}
	return db
}

func floatPtr(v float64) *float64 { return &v }

func readRow(t *testing.T, db *gorm.DB, printingID string, finishID int64, version string) *models.PriceRow {
	var row models.PriceRow
	err := db.Where("printing_id = ? AND condition_id = ? AND finish_id = ? AND sync_version = ?",
		printingID, ConditionNM, finishID, version).Take(&row).Error
	require.NoError(t, err)
	return &row
}

func TestUpsertObservationCoalescesAcrossFeeds(t *testing.T) {
	db := setupTestDB(t)

	// First feed reports market only.
	err := UpsertObservation(db, Observation{
		PrintingID:  "abc-123",
		ConditionID: ConditionNM,
		FinishID:    FinishNonfoil,
		Channels:    Channels{TcgMarket: floatPtr(4.20)},
		SyncVersion: "v260830",
		CapturedYMD: 20260830,
		CapturedAt:  "2026-08-30T10:00:00Z",
	})
	require.NoError(t, err)

	// Second feed reports buylist only for the same key.
	err = UpsertObservation(db, Observation{
		PrintingID:  "abc-123",
		ConditionID: ConditionNM,
		FinishID:    FinishNonfoil,
		Channels:    Channels{CkBuylist: floatPtr(2.00)},
		SyncVersion: "v260830",
		CapturedYMD: 20260830,
		CapturedAt:  "2026-08-30T11:00:00Z",
	})
	require.NoError(t, err)

	row := readRow(t, db, "abc-123", FinishNonfoil, "v260830")
	require.NotNil(t, row.TcgMarket)
	assert.Equal(t, 4.20, *row.TcgMarket)
	require.NotNil(t, row.CkBuylist)
	assert.Equal(t, 2.00, *row.CkBuylist)
	// Freshness always follows the latest write.
	assert.Equal(t, "2026-08-30T11:00:00Z", row.CapturedAt)
}

func TestUpsertObservationPresentValueWins(t *testing.T) {
	db := setupTestDB(t)

	base := Observation{
		PrintingID:  "abc-123",
		ConditionID: ConditionNM,
		FinishID:    FinishNonfoil,
		SyncVersion: "v260830",
		CapturedYMD: 20260830,
		CapturedAt:  "2026-08-30T10:00:00Z",
	}
	first := base
	first.Channels = Channels{TcgMarket: floatPtr(4.20)}
	require.NoError(t, UpsertObservation(db, first))

	second := base
	second.Channels = Channels{TcgMarket: floatPtr(4.50)}
	second.CapturedAt = "2026-08-30T11:00:00Z"
	require.NoError(t, UpsertObservation(db, second))

	row := readRow(t, db, "abc-123", FinishNonfoil, "v260830")
	require.NotNil(t, row.TcgMarket)
	assert.Equal(t, 4.50, *row.TcgMarket)
}

func TestUpsertObservationAllAbsentIsNoOp(t *testing.T) {
	db := setupTestDB(t)

	err := UpsertObservation(db, Observation{
		PrintingID:  "abc-123",
		ConditionID: ConditionNM,
		FinishID:    FinishNonfoil,
		Channels:    Channels{},
		SyncVersion: "v260830",
		CapturedYMD: 20260830,
		CapturedAt:  "2026-08-30T10:00:00Z",
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.PriceRow{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpsertObservationCleansInvalidValues(t *testing.T) {
	db := setupTestDB(t)

	// NaN and negative values are cleaned to absent; with every channel
	// invalid the whole observation is a no-op.
	err := UpsertObservation(db, Observation{
		PrintingID:  "abc-123",
		ConditionID: ConditionNM,
		FinishID:    FinishNonfoil,
		Channels: Channels{
			TcgMarket: floatPtr(math.NaN()),
			CkSell:    floatPtr(-1.00),
		},
		SyncVersion: "v260830",
		CapturedYMD: 20260830,
		CapturedAt:  "2026-08-30T10:00:00Z",
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.PriceRow{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpsertObservationKeepsFinishesSeparate(t *testing.T) {
	db := setupTestDB(t)

	for _, finish := range []int64{FinishNonfoil, FinishFoil} {
		err := UpsertObservation(db, Observation{
			PrintingID:  "abc-123",
			ConditionID: ConditionNM,
			FinishID:    finish,
			Channels:    Channels{CkSell: floatPtr(float64(finish))},
			SyncVersion: "v260830",
			CapturedYMD: 20260830,
			CapturedAt:  "2026-08-30T10:00:00Z",
		})
		require.NoError(t, err)
	}

	nonfoil := readRow(t, db, "abc-123", FinishNonfoil, "v260830")
	foil := readRow(t, db, "abc-123", FinishFoil, "v260830")
	assert.Equal(t, 1.0, *nonfoil.CkSell)
	assert.Equal(t, 2.0, *foil.CkSell)
}

func TestClassifyVendorChannel(t *testing.T) {
	cases := []struct {
		name   string
		vendor string
		hint   string
		check  func(t *testing.T, c Channels)
	}{
		{"tcg low", "tcgplayer", "low", func(t *testing.T, c Channels) {
			require.NotNil(t, c.TcgLow)
			assert.Equal(t, 1.23, *c.TcgLow)
		}},
		{"tcg high", "tcgplayer", "high", func(t *testing.T, c Channels) {
			require.NotNil(t, c.TcgHigh)
		}},
		{"tcg default mid", "tcgplayer", "whatever", func(t *testing.T, c Channels) {
			require.NotNil(t, c.TcgMarket)
		}},
		{"ck buylist", "cardkingdom", "buy", func(t *testing.T, c Channels) {
			require.NotNil(t, c.CkBuylist)
		}},
		{"ck sell default", "ck", "retail", func(t *testing.T, c Channels) {
			require.NotNil(t, c.CkSell)
		}},
		{"unknown vendor defaults to market", "somebody", "", func(t *testing.T, c Channels) {
			require.NotNil(t, c.TcgMarket)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, ClassifyVendorChannel(1.23, tc.vendor, tc.hint))
		})
	}
}

func TestRecordVendorObservation(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)

	require.NoError(t, engine.RecordVendorObservation("ABC-123", 9.99, "tcgplayer", "low"))

	row := readRow(t, db, "abc-123", FinishNonfoil, models.CurrentSyncVersion())
	require.NotNil(t, row.TcgLow)
	assert.Equal(t, 9.99, *row.TcgLow)

	// Invalid price is silently dropped.
	require.NoError(t, engine.RecordVendorObservation("abc-123", -5, "tcgplayer", "low"))
	row = readRow(t, db, "abc-123", FinishNonfoil, models.CurrentSyncVersion())
	assert.Equal(t, 9.99, *row.TcgLow)
}
