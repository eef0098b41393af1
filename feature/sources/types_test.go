package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProductID(t *testing.T) {
	id, err := ParseProductID(" 12345 ")
	require.NoError(t, err)
	assert.Equal(t, ProductID(12345), id)
	assert.Equal(t, "12345", id.String())

	_, err = ParseProductID("abc")
	assert.Error(t, err)
}

func TestParseBuylistPrice(t *testing.T) {
	dollar := "$1.25"
	plain := " 0.50 "
	junk := "n/a"

	assert.Equal(t, 1.25, parseBuylistPrice(&dollar))
	assert.Equal(t, 0.50, parseBuylistPrice(&plain))
	assert.Zero(t, parseBuylistPrice(&junk))
	assert.Zero(t, parseBuylistPrice(nil))
}

func TestParseBuylistBool(t *testing.T) {
	for _, truthy := range []string{"true", "1", "YES", " y "} {
		value := truthy
		assert.True(t, parseBuylistBool(&value), truthy)
	}
	for _, falsy := range []string{"false", "0", "no", ""} {
		value := falsy
		assert.False(t, parseBuylistBool(&value), falsy)
	}
	assert.False(t, parseBuylistBool(nil))
}

func TestBuylistItemSellPriceAliases(t *testing.T) {
	primary := "2.00"
	retail := "3.00"

	item := buylistItem{PriceSell: &primary, PriceRetail: &retail}
	require.NotNil(t, item.sellPrice())
	assert.Equal(t, "2.00", *item.sellPrice())

	item = buylistItem{PriceRetail: &retail}
	require.NotNil(t, item.sellPrice())
	assert.Equal(t, "3.00", *item.sellPrice())

	item = buylistItem{}
	assert.Nil(t, item.sellPrice())
}

func TestParseBuylistBodyShapes(t *testing.T) {
	enveloped := []byte(`{"data":[{"scryfall_id":"aaa-1","price_buy":"$1.00"}]}`)
	rows, err := parseBuylistBody(enveloped)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "aaa-1", *rows[0].PrintingID)

	bare := []byte(`[{"scryfall_id":"bbb-2"}]`)
	rows, err = parseBuylistBody(bare)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "bbb-2", *rows[0].PrintingID)

	_, err = parseBuylistBody([]byte("not json"))
	assert.Error(t, err)
}

func TestOracleCardImageFallsBackToFirstFace(t *testing.T) {
	top := "https://img.example/top.png"
	face := "https://img.example/face.png"

	card := OracleCard{ImageUris: &oracleImageUris{Normal: &top}}
	got := card.imageURL(func(u *oracleImageUris) *string { return u.Normal })
	require.NotNil(t, got)
	assert.Equal(t, top, *got)

	// Double-faced cards only carry images per face.
	card = OracleCard{CardFaces: []oracleCardFace{{ImageUris: &oracleImageUris{Normal: &face}}}}
	got = card.imageURL(func(u *oracleImageUris) *string { return u.Normal })
	require.NotNil(t, got)
	assert.Equal(t, face, *got)

	card = OracleCard{}
	assert.Nil(t, card.imageURL(func(u *oracleImageUris) *string { return u.Normal }))
}
