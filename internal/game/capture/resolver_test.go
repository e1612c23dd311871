package capture_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/poketrainer/internal/game/capture"
	"github.com/cory-johannsen/poketrainer/internal/game/creature"
	"github.com/cory-johannsen/poketrainer/internal/game/dice"
)

const trials = 10_000

// fixedModifier replaces every chance with P.
type fixedModifier struct{ P int }

func (f fixedModifier) CaptureChance(creature.Creature, int) int { return f.P }

func TestAttempt_AlwaysSucceedsAt100(t *testing.T) {
	r := capture.NewResolver(dice.NewCryptoSource(), zap.NewNop(), fixedModifier{P: 100})
	for i := 0; i < trials; i++ {
		if !r.Attempt(creature.Creature{ID: 1, Name: "Sure"}).Success {
			t.Fatalf("trial %d failed at p=100", i)
		}
	}
}

func TestAttempt_AlwaysFailsAt0(t *testing.T) {
	r := capture.NewResolver(dice.NewCryptoSource(), zap.NewNop(), fixedModifier{P: 0})
	for i := 0; i < trials; i++ {
		if r.Attempt(creature.Creature{ID: 1, Name: "Never"}).Success {
			t.Fatalf("trial %d succeeded at p=0", i)
		}
	}
}

func TestAttempt_RareSuccessRateNearSixty(t *testing.T) {
	r := capture.NewResolver(dice.NewSeededSource(20260314), zap.NewNop(), nil)
	rare := creature.Creature{ID: 6, Name: "Charizard", Rarity: "rare"}

	successes := 0
	for i := 0; i < trials; i++ {
		if r.Attempt(rare).Success {
			successes++
		}
	}
	rate := float64(successes) / trials
	assert.GreaterOrEqual(t, rate, 0.55)
	assert.LessOrEqual(t, rate, 0.65)
}

func TestAttempt_ReportsRollAndChance(t *testing.T) {
	src := &dice.FixedSource{Values: []int{94, 95}}
	r := capture.NewResolver(src, zaptest.NewLogger(t), nil)
	pika := creature.Creature{ID: 25, Name: "Pikachu", Rarity: "common"}

	first := r.Attempt(pika)
	assert.True(t, first.Success)
	assert.Equal(t, 94, first.Roll)
	assert.Equal(t, 95, first.Chance)
	assert.Equal(t, pika, first.Creature)

	second := r.Attempt(pika)
	assert.False(t, second.Success, "roll equal to chance must fail")
}

func TestChance_ModifierIsClamped(t *testing.T) {
	c := creature.Creature{Rarity: "epic"}
	assert.Equal(t, 30, capture.NewResolver(dice.NewCryptoSource(), zap.NewNop(), nil).Chance(c))
	assert.Equal(t, 100, capture.NewResolver(dice.NewCryptoSource(), zap.NewNop(), fixedModifier{P: 250}).Chance(c))
	assert.Equal(t, 0, capture.NewResolver(dice.NewCryptoSource(), zap.NewNop(), fixedModifier{P: -4}).Chance(c))
}

func TestAttempt_Property_SuccessIffRollBelowChance(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		roll := rapid.IntRange(0, 99).Draw(rt, "roll")
		p := rapid.IntRange(0, 100).Draw(rt, "p")
		r := capture.NewResolver(&dice.FixedSource{Values: []int{roll}}, zap.NewNop(), fixedModifier{P: p})
		out := r.Attempt(creature.Creature{ID: 1, Name: "X"})
		if out.Success != (roll < p) {
			rt.Fatalf("roll=%d p=%d success=%v", roll, p, out.Success)
		}
	})
}
