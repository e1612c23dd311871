// Package capture resolves capture attempts and drives the per-trainer
// scan, present, confirm flow that places captured creatures in a roster.
package capture

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/poketrainer/internal/game/creature"
	"github.com/cory-johannsen/poketrainer/internal/game/dice"
)

// ChanceModifier adjusts the table chance for a specific creature.
type ChanceModifier interface {
	// CaptureChance returns the adjusted chance given the table value base.
	CaptureChance(c creature.Creature, base int) int
}

// Outcome is the result of one capture attempt.
type Outcome struct {
	Creature creature.Creature
	Success  bool
	Roll     int
	Chance   int
}

// Resolver performs single capture attempts. It never retries.
type Resolver struct {
	roller   *dice.Roller
	modifier ChanceModifier
	logger   *zap.Logger
}

// NewResolver creates a Resolver drawing from src. modifier may be nil.
//
// Precondition: src and logger must be non-nil.
func NewResolver(src dice.Source, logger *zap.Logger, modifier ChanceModifier) *Resolver {
	return &Resolver{
		roller:   dice.NewLoggedRoller(src, logger),
		modifier: modifier,
		logger:   logger,
	}
}

// Chance returns the effective capture chance for c after any modifier.
//
// Postcondition: 0 <= result <= 100.
func (r *Resolver) Chance(c creature.Creature) int {
	chance := c.CaptureChance()
	if r.modifier != nil {
		chance = clampChance(r.modifier.CaptureChance(c, chance))
	}
	return chance
}

// Attempt draws once in [0, 100) and succeeds iff the draw is below the
// effective chance.
//
// Postcondition: Chance == 100 always succeeds; Chance == 0 always fails.
func (r *Resolver) Attempt(c creature.Creature) Outcome {
	chance := r.Chance(c)
	roll := r.roller.Percentile("capture")
	out := Outcome{Creature: c, Success: roll < chance, Roll: roll, Chance: chance}
	r.logger.Debug("capture attempt",
		zap.Int("creature_id", c.ID),
		zap.String("rarity", c.Rarity),
		zap.Int("chance", chance),
		zap.Int("roll", roll),
		zap.Bool("success", out.Success),
	)
	return out
}

func clampChance(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
