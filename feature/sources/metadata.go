package sources

import (
	"encoding/json"
	"math"
	"strings"

	"card-catalog/feature/catalog/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// oracleSignature is the comparable projection used for metadata change
// detection. Nulls collapse to sentinels so that a round trip through the
// database compares equal to a freshly built signature.
type oracleSignature struct {
	Name              string
	ManaCost          string
	TypeLine          string
	OracleText        string
	Cmc               float64
	Reserved          int64
	KeywordsJSON      string
	ColorsJSON        string
	ColorIdentityJSON string
	ReleasedAt        string
	SetCode           string
	CollectorNumber   string
	Lang              string
	Rarity            string
	Layout            string
	PrintingRelease   string
	Artist            string
	ImageNormalURL    string
	ImageSmallURL     string
	ImageArtCropURL   string
	IsDigital         int64
	IsFoilAvailable   int64
	IsNonfoil         int64
	TcgplayerID       int64
	CardmarketID      int64
	MtgoID            int64
	MtgoFoilID        int64
}

// UpsertOracleCardIfChanged merges one bulk metadata card into the catalog.
// It reports true when the card was new or any metadata field changed, false
// for an unchanged card. Prices are never touched here: metadata churn must
// not disturb the price history.
//
// Change detection works on the full field projection rather than a
// per-column diff: the bulk dump re-lists every card daily and the unchanged
// path has to stay cheap.
func UpsertOracleCardIfChanged(tx *gorm.DB, card *OracleCard) (bool, error) {
	printingID := strings.ToLower(strings.TrimSpace(card.ID))
	if printingID == "" {
		return false, nil
	}
	now := models.NowISO()

	setCode := normalizeLower(card.Set, "unknown")
	setName := normalizeTrim(card.SetName, "UNKNOWN")
	name := normalizeTrim(card.Name, "Unknown Card")
	collectorNumber := normalizeTrim(card.CollectorNumber, "0")
	lang := normalizeLower(card.Lang, "en")
	rarity := trimmedOrNil(card.Rarity, true)
	manaCost := trimmedOrNil(card.ManaCost, false)
	typeLine := trimmedOrNil(card.TypeLine, false)
	oracleText := trimmedOrNil(card.OracleText, false)
	releasedAt := trimmedOrNil(card.ReleasedAt, false)
	layout := trimmedOrNil(card.Layout, false)
	artist := trimmedOrNil(card.Artist, false)
	keywordsJSON := encodeList(card.Keywords)
	colorsJSON := encodeList(card.Colors)
	colorIdentityJSON := encodeList(card.ColorIdentity)

	var cmc *float64
	if card.Cmc != nil && !math.IsNaN(*card.Cmc) && !math.IsInf(*card.Cmc, 0) && *card.Cmc >= 0 {
		cmc = card.Cmc
	}

	reserved := card.Reserved != nil && *card.Reserved
	isDigital := card.Digital != nil && *card.Digital
	isFoilAvailable := hasFinish(card.Finishes, "foil")
	isNonfoilAvailable := hasFinish(card.Finishes, "nonfoil")
	normalImage := card.imageURL(func(u *oracleImageUris) *string { return u.Normal })
	smallImage := card.imageURL(func(u *oracleImageUris) *string { return u.Small })
	artCropImage := card.imageURL(func(u *oracleImageUris) *string { return u.ArtCrop })

	set := models.CardSet{SetCode: setCode, SetName: setName, UpdatedAt: now}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "set_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"set_name", "updated_at"}),
	}).Create(&set).Error
	if err != nil {
		return false, err
	}

	cardID := "scryfall:" + printingID
	wasExisting := false
	var existing models.Printing
	if err := tx.Select("card_id").Where("id = ?", printingID).Take(&existing).Error; err == nil {
		cardID = existing.CardID
		wasExisting = true
	} else if err != gorm.ErrRecordNotFound {
		return false, err
	}

	// Insert-or-ignore first, then diff and update: the diff needs a row to
	// read regardless of whether the card is new.
	cardRow := models.Card{
		ID:                cardID,
		OracleID:          card.OracleID,
		Name:              name,
		ManaCost:          manaCost,
		Cmc:               cmc,
		TypeLine:          typeLine,
		OracleText:        oracleText,
		Reserved:          reserved,
		KeywordsJSON:      keywordsJSON,
		ColorsJSON:        colorsJSON,
		ColorIdentityJSON: colorIdentityJSON,
		LatestReleasedAt:  releasedAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&cardRow).Error
	if err != nil {
		return false, err
	}

	printing := models.Printing{
		ID:                 printingID,
		CardID:             cardID,
		OracleID:           card.OracleID,
		SetCode:            setCode,
		CollectorNumber:    collectorNumber,
		Lang:               lang,
		Rarity:             rarity,
		Layout:             layout,
		ReleasedAt:         releasedAt,
		Artist:             artist,
		ImageNormalURL:     normalImage,
		ImageSmallURL:      smallImage,
		ImageArtCropURL:    artCropImage,
		IsDigital:          isDigital,
		IsFoilAvailable:    isFoilAvailable,
		IsNonfoilAvailable: isNonfoilAvailable,
		TcgplayerID:        card.TcgplayerID,
		CardmarketID:       card.CardmarketID,
		MtgoID:             card.MtgoID,
		MtgoFoilID:         card.MtgoFoilID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&printing).Error
	if err != nil {
		return false, err
	}

	var current oracleSignature
	err = tx.Table("card_printings p").
		Select(`COALESCE(c.name, '') AS name,
			COALESCE(c.mana_cost, '') AS mana_cost,
			COALESCE(c.type_line, '') AS type_line,
			COALESCE(c.oracle_text, '') AS oracle_text,
			COALESCE(c.cmc, -1) AS cmc,
			COALESCE(c.reserved, 0) AS reserved,
			COALESCE(c.keywords_json, '') AS keywords_json,
			COALESCE(c.colors_json, '') AS colors_json,
			COALESCE(c.color_identity_json, '') AS color_identity_json,
			COALESCE(c.latest_released_at, '') AS released_at,
			COALESCE(p.set_code, '') AS set_code,
			COALESCE(p.collector_number, '') AS collector_number,
			COALESCE(p.lang, '') AS lang,
			COALESCE(p.rarity, '') AS rarity,
			COALESCE(p.layout, '') AS layout,
			COALESCE(p.released_at, '') AS printing_release,
			COALESCE(p.artist, '') AS artist,
			COALESCE(p.image_normal_url, '') AS image_normal_url,
			COALESCE(p.image_small_url, '') AS image_small_url,
			COALESCE(p.image_art_crop_url, '') AS image_art_crop_url,
			COALESCE(p.is_digital, 0) AS is_digital,
			COALESCE(p.is_foil_available, 0) AS is_foil_available,
			COALESCE(p.is_nonfoil_available, 0) AS is_nonfoil,
			COALESCE(p.tcgplayer_id, -1) AS tcgplayer_id,
			COALESCE(p.cardmarket_id, -1) AS cardmarket_id,
			COALESCE(p.mtgo_id, -1) AS mtgo_id,
			COALESCE(p.mtgo_foil_id, -1) AS mtgo_foil_id`).
		Joins("JOIN cards c ON c.id = p.card_id").
		Where("p.id = ?", printingID).
		Scan(&current).Error
	if err != nil {
		return false, err
	}

	next := oracleSignature{
		Name:              name,
		ManaCost:          stringOrEmpty(manaCost),
		TypeLine:          stringOrEmpty(typeLine),
		OracleText:        stringOrEmpty(oracleText),
		Cmc:               floatOrSentinel(cmc),
		Reserved:          boolToInt(reserved),
		KeywordsJSON:      stringOrEmpty(keywordsJSON),
		ColorsJSON:        stringOrEmpty(colorsJSON),
		ColorIdentityJSON: stringOrEmpty(colorIdentityJSON),
		ReleasedAt:        stringOrEmpty(releasedAt),
		SetCode:           setCode,
		CollectorNumber:   collectorNumber,
		Lang:              lang,
		Rarity:            stringOrEmpty(rarity),
		Layout:            stringOrEmpty(layout),
		PrintingRelease:   stringOrEmpty(releasedAt),
		Artist:            stringOrEmpty(artist),
		ImageNormalURL:    stringOrEmpty(normalImage),
		ImageSmallURL:     stringOrEmpty(smallImage),
		ImageArtCropURL:   stringOrEmpty(artCropImage),
		IsDigital:         boolToInt(isDigital),
		IsFoilAvailable:   boolToInt(isFoilAvailable),
		IsNonfoil:         boolToInt(isNonfoilAvailable),
		TcgplayerID:       intOrSentinel(card.TcgplayerID),
		CardmarketID:      intOrSentinel(card.CardmarketID),
		MtgoID:            intOrSentinel(card.MtgoID),
		MtgoFoilID:        intOrSentinel(card.MtgoFoilID),
	}
	if current == next {
		// A brand-new printing still counts as an update.
		return !wasExisting, nil
	}

	err = tx.Model(&models.Card{}).Where("id = ?", cardID).Updates(map[string]interface{}{
		"oracle_id":           card.OracleID,
		"name":                name,
		"mana_cost":           manaCost,
		"cmc":                 cmc,
		"type_line":           typeLine,
		"oracle_text":         oracleText,
		"reserved":            reserved,
		"keywords_json":       keywordsJSON,
		"colors_json":         colorsJSON,
		"color_identity_json": colorIdentityJSON,
		"latest_released_at":  releasedAt,
		"updated_at":          now,
	}).Error
	if err != nil {
		return false, err
	}

	err = tx.Model(&models.Printing{}).Where("id = ?", printingID).Updates(map[string]interface{}{
		"oracle_id":            card.OracleID,
		"set_code":             setCode,
		"collector_number":     collectorNumber,
		"lang":                 lang,
		"rarity":               rarity,
		"layout":               layout,
		"released_at":          releasedAt,
		"artist":               artist,
		"image_normal_url":     normalImage,
		"image_small_url":      smallImage,
		"image_art_crop_url":   artCropImage,
		"is_digital":           isDigital,
		"is_foil_available":    isFoilAvailable,
		"is_nonfoil_available": isNonfoilAvailable,
		"tcgplayer_id":         card.TcgplayerID,
		"cardmarket_id":        card.CardmarketID,
		"mtgo_id":              card.MtgoID,
		"mtgo_foil_id":         card.MtgoFoilID,
		"updated_at":           now,
	}).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

func normalizeTrim(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

func normalizeLower(value *string, fallback string) string {
	return strings.ToLower(normalizeTrim(value, fallback))
}

func trimmedOrNil(value *string, lower bool) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	if lower {
		trimmed = strings.ToLower(trimmed)
	}
	return &trimmed
}

func encodeList(values []string) *string {
	if values == nil {
		return nil
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		fallback := "[]"
		return &fallback
	}
	text := string(encoded)
	return &text
}

func hasFinish(finishes []string, want string) bool {
	for _, finish := range finishes {
		if strings.EqualFold(finish, want) {
			return true
		}
	}
	return false
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func floatOrSentinel(value *float64) float64 {
	if value == nil {
		return -1
	}
	return *value
}

func intOrSentinel(value *int64) int64 {
	if value == nil {
		return -1
	}
	return *value
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}
