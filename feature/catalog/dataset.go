package catalog

import "strings"

// DefaultDataset is the only dataset the client currently replicates.
const DefaultDataset = "default_cards"

// LocalClientID identifies this replica in the sync-state table.
const LocalClientID = "local-desktop"

// Source identifiers for the known feeds.
const (
	OracleSourceID  = "scryfall_default_cards"
	TrackerSourceID = "tcgtracking_tcgplayer"
	BuylistSourceID = "ck_buylist"
)

// NormalizeDataset validates and canonicalizes a dataset name. A nil or
// blank input means the default dataset; anything else must match it.
func NormalizeDataset(dataset *string) (string, error) {
	if dataset == nil {
		return DefaultDataset, nil
	}
	normalized := strings.ToLower(strings.TrimSpace(*dataset))
	if normalized == "" {
		return DefaultDataset, nil
	}
	if normalized != DefaultDataset {
		return "", validationErrorf("unsupported dataset %q, only %q is currently supported", normalized, DefaultDataset)
	}
	return normalized, nil
}
