package capture

import (
	"errors"

	"github.com/cory-johannsen/poketrainer/internal/game/creature"
	"github.com/cory-johannsen/poketrainer/internal/game/dice"
)

// ErrNothingDetected is returned by Simulate when the detector has nothing
// to offer.
var ErrNothingDetected = errors.New("capture: nothing detected")

// Detector produces a creature without a scanned payload.
type Detector interface {
	// Detect returns a creature, or false when none is available.
	Detect() (creature.Creature, bool)
}

// CatalogDetector draws a species uniformly from a fixed pool.
type CatalogDetector struct {
	pool []creature.Creature
	src  dice.Source
}

// NewCatalogDetector creates a detector over pool drawing from src.
//
// Precondition: src must be non-nil.
func NewCatalogDetector(pool []creature.Creature, src dice.Source) *CatalogDetector {
	return &CatalogDetector{pool: append([]creature.Creature(nil), pool...), src: src}
}

// Detect returns pool[src.Intn(len(pool))].
func (d *CatalogDetector) Detect() (creature.Creature, bool) {
	if len(d.pool) == 0 {
		return creature.Creature{}, false
	}
	return d.pool[d.src.Intn(len(d.pool))], true
}
