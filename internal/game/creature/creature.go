// Package creature defines the capturable creature model, the rarity table
// that drives capture odds, and the YAML-backed species catalog.
package creature

import (
	"fmt"
	"strconv"
)

// SpriteURLFormat builds a default sprite URI from a catalog id.
const SpriteURLFormat = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/%d.png"

// Creature is a capturable entity. ID is a catalog reference and is not
// unique across a roster: the same species may be captured more than once.
//
// Invariant: 0 <= HP <= MaxHP once Normalize has run.
type Creature struct {
	ID      int    `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Rarity  string `json:"rarity" yaml:"rarity"`
	Type    string `json:"type,omitempty" yaml:"type"`
	Level   int    `json:"level,omitempty" yaml:"level"`
	HP      int    `json:"hp,omitempty" yaml:"hp"`
	MaxHP   int    `json:"maxHp,omitempty" yaml:"max_hp"`
	Attack  int    `json:"attack,omitempty" yaml:"attack"`
	Defense int    `json:"defense,omitempty" yaml:"defense"`
	Speed   int    `json:"speed,omitempty" yaml:"speed"`
	Img     string `json:"img,omitempty" yaml:"img"`
}

// CaptureChance returns the table chance for the creature's rarity.
func (c Creature) CaptureChance() int {
	return CaptureChance(c.Rarity)
}

// SpriteURL returns Img, or the default sprite URI derived from ID when Img
// is empty.
func (c Creature) SpriteURL() string {
	if c.Img != "" {
		return c.Img
	}
	return fmt.Sprintf(SpriteURLFormat, c.ID)
}

// Normalize returns a copy with HP clamped into [0, MaxHP]. A zero MaxHP is
// raised to HP so that a stat-less payload keeps its HP.
//
// Postcondition: 0 <= result.HP <= result.MaxHP.
func (c Creature) Normalize() Creature {
	if c.HP < 0 {
		c.HP = 0
	}
	if c.MaxHP < c.HP {
		if c.MaxHP == 0 {
			c.MaxHP = c.HP
		} else {
			c.HP = c.MaxHP
		}
	}
	return c
}

// String renders "Name (#id)".
func (c Creature) String() string {
	return c.Name + " (#" + strconv.Itoa(c.ID) + ")"
}
