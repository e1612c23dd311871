package creature

import "strings"

// Rarity tiers recognised by the capture table.
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// DefaultChance applies to any rarity outside the table.
const DefaultChance = 50

var captureTable = map[string]int{
	RarityCommon:    95,
	RarityUncommon:  80,
	RarityRare:      60,
	RarityEpic:      30,
	RarityLegendary: 10,
}

// CaptureChance maps a rarity string to a capture percentage.
// Matching ignores case and surrounding whitespace.
//
// Postcondition: 0 <= result <= 100; unknown rarities yield DefaultChance.
func CaptureChance(rarity string) int {
	if p, ok := captureTable[strings.ToLower(strings.TrimSpace(rarity))]; ok {
		return p
	}
	return DefaultChance
}

// KnownRarity reports whether rarity names a tier of the table.
func KnownRarity(rarity string) bool {
	_, ok := captureTable[strings.ToLower(strings.TrimSpace(rarity))]
	return ok
}

// Band is a coarse display classification of a capture chance.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// ChanceBand classifies chance as high (>= 70), medium (40-69) or low (< 40).
func ChanceBand(chance int) Band {
	switch {
	case chance >= 70:
		return BandHigh
	case chance >= 40:
		return BandMedium
	default:
		return BandLow
	}
}
