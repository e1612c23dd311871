// Package scan turns raw scanner payloads into creatures and adapts the
// device's code scanner and camera permission into blocking Go calls.
package scan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cory-johannsen/poketrainer/internal/game/creature"
)

// Unrecognized is a payload that did not decode to a creature.
type Unrecognized struct {
	Payload string
	Reason  string
}

// Error implements error.
func (u *Unrecognized) Error() string {
	return "unrecognized code: " + u.Reason
}

// Result is either a decoded Creature or an Unrecognized rejection.
type Result struct {
	Creature     creature.Creature
	Unrecognized *Unrecognized
}

// OK reports whether the payload decoded to a creature.
func (r Result) OK() bool { return r.Unrecognized == nil }

func unrecognized(payload, format string, args ...any) Result {
	return Result{Unrecognized: &Unrecognized{Payload: payload, Reason: fmt.Sprintf(format, args...)}}
}

// payload mirrors Creature with pointers for the required fields so that
// absence can be told apart from zero values.
type payload struct {
	ID      *int    `json:"id"`
	Name    *string `json:"name"`
	Rarity  *string `json:"rarity"`
	Type    string  `json:"type"`
	Level   int     `json:"level"`
	HP      int     `json:"hp"`
	MaxHP   int     `json:"maxHp"`
	Attack  int     `json:"attack"`
	Defense int     `json:"defense"`
	Speed   int     `json:"speed"`
	Img     string  `json:"img"`
}

// Parse decodes a structured JSON payload carrying at least id, name and
// rarity. It never panics and never returns an error: anything else yields
// an Unrecognized result that carries the raw payload.
func Parse(raw string) Result {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	var p payload
	if err := dec.Decode(&p); err != nil {
		return unrecognized(raw, "malformed payload: %v", err)
	}
	if dec.More() {
		return unrecognized(raw, "trailing data after payload")
	}

	var missing []string
	if p.ID == nil {
		missing = append(missing, "id")
	}
	if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
		missing = append(missing, "name")
	}
	if p.Rarity == nil || strings.TrimSpace(*p.Rarity) == "" {
		missing = append(missing, "rarity")
	}
	if len(missing) > 0 {
		return unrecognized(raw, "missing %s", strings.Join(missing, ", "))
	}

	return Result{Creature: creature.Creature{
		ID:      *p.ID,
		Name:    strings.TrimSpace(*p.Name),
		Rarity:  strings.TrimSpace(*p.Rarity),
		Type:    p.Type,
		Level:   p.Level,
		HP:      p.HP,
		MaxHP:   p.MaxHP,
		Attack:  p.Attack,
		Defense: p.Defense,
		Speed:   p.Speed,
		Img:     p.Img,
	}}
}
