package prices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedObservation(t *testing.T, db *gorm.DB, version, capturedAt string, channels Channels) {
	t.Helper()
	err := UpsertObservation(db, Observation{
		PrintingID:  "abc-123",
		ConditionID: ConditionNM,
		FinishID:    FinishNonfoil,
		Channels:    channels,
		SyncVersion: version,
		CapturedYMD: 20260830,
		CapturedAt:  capturedAt,
	})
	require.NoError(t, err)
}

func TestComputeTrendUp(t *testing.T) {
	db := setupTestDB(t)
	seedObservation(t, db, "v260829", "2026-08-29T10:00:00Z", Channels{TcgMarket: floatPtr(2.00)})
	seedObservation(t, db, "v260830", "2026-08-30T10:00:00Z", Channels{TcgMarket: floatPtr(2.50)})

	trend, err := NewTrendCalculator(db).ComputeTrend("abc-123", "tcg-mid")
	require.NoError(t, err)

	assert.Equal(t, DirectionUp, trend.Direction)
	require.NotNil(t, trend.Current)
	assert.Equal(t, 2.50, *trend.Current)
	require.NotNil(t, trend.Previous)
	assert.Equal(t, 2.00, *trend.Previous)
	require.NotNil(t, trend.Delta)
	assert.InDelta(t, 0.50, *trend.Delta, 1e-9)
	require.NotNil(t, trend.LastObservedAt)
	assert.Equal(t, "2026-08-30T10:00:00Z", *trend.LastObservedAt)
}

func TestComputeTrendDown(t *testing.T) {
	db := setupTestDB(t)
	seedObservation(t, db, "v260829", "2026-08-29T10:00:00Z", Channels{TcgMarket: floatPtr(3.00)})
	seedObservation(t, db, "v260830", "2026-08-30T10:00:00Z", Channels{TcgMarket: floatPtr(2.50)})

	trend, err := NewTrendCalculator(db).ComputeTrend("abc-123", "")
	require.NoError(t, err)
	assert.Equal(t, DirectionDown, trend.Direction)
}

func TestComputeTrendFlatWithinBand(t *testing.T) {
	db := setupTestDB(t)
	seedObservation(t, db, "v260829", "2026-08-29T10:00:00Z", Channels{TcgMarket: floatPtr(2.000)})
	seedObservation(t, db, "v260830", "2026-08-30T10:00:00Z", Channels{TcgMarket: floatPtr(2.005)})

	trend, err := NewTrendCalculator(db).ComputeTrend("abc-123", "tcg-mid")
	require.NoError(t, err)
	assert.Equal(t, DirectionFlat, trend.Direction)
}

func TestComputeTrendSingleObservation(t *testing.T) {
	db := setupTestDB(t)
	seedObservation(t, db, "v260830", "2026-08-30T10:00:00Z", Channels{TcgMarket: floatPtr(2.50)})

	trend, err := NewTrendCalculator(db).ComputeTrend("abc-123", "tcg-mid")
	require.NoError(t, err)

	assert.Equal(t, DirectionNone, trend.Direction)
	require.NotNil(t, trend.Current)
	assert.Nil(t, trend.Previous)
	assert.Nil(t, trend.Delta)
}

func TestComputeTrendUnknownPrinting(t *testing.T) {
	db := setupTestDB(t)

	trend, err := NewTrendCalculator(db).ComputeTrend("missing", "tcg-mid")
	require.NoError(t, err)
	assert.Equal(t, DirectionNone, trend.Direction)
	assert.Nil(t, trend.Current)
}

func TestComputeTrendChannelSelection(t *testing.T) {
	db := setupTestDB(t)
	// Market moves up, buylist moves down; each channel trends independently.
	seedObservation(t, db, "v260829", "2026-08-29T10:00:00Z",
		Channels{TcgMarket: floatPtr(2.00), CkBuylist: floatPtr(1.50)})
	seedObservation(t, db, "v260830", "2026-08-30T10:00:00Z",
		Channels{TcgMarket: floatPtr(2.50), CkBuylist: floatPtr(1.00)})

	calc := NewTrendCalculator(db)

	market, err := calc.ComputeTrend("abc-123", "tcg-mid")
	require.NoError(t, err)
	assert.Equal(t, DirectionUp, market.Direction)

	buylist, err := calc.ComputeTrend("abc-123", "ck-buylist")
	require.NoError(t, err)
	assert.Equal(t, DirectionDown, buylist.Direction)
}

func TestComputeTrendIgnoresOtherChannelRows(t *testing.T) {
	db := setupTestDB(t)
	// The older observation only carries a sell price; the market trend must
	// skip it instead of treating it as a prior market point.
	seedObservation(t, db, "v260829", "2026-08-29T10:00:00Z", Channels{CkSell: floatPtr(5.00)})
	seedObservation(t, db, "v260830", "2026-08-30T10:00:00Z", Channels{TcgMarket: floatPtr(2.50)})

	trend, err := NewTrendCalculator(db).ComputeTrend("abc-123", "tcg-mid")
	require.NoError(t, err)
	assert.Equal(t, DirectionNone, trend.Direction)
}

func TestChannelColumn(t *testing.T) {
	assert.Equal(t, "tcg_low", ChannelColumn("tcg-low"))
	assert.Equal(t, "tcg_market", ChannelColumn("TCG-MID"))
	assert.Equal(t, "ck_buylist", ChannelColumn("ck-buylist"))
	assert.Equal(t, "tcg_market", ChannelColumn(""))
	assert.Equal(t, "tcg_market", ChannelColumn("; DROP TABLE card_price_rows"))
}
