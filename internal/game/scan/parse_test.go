package scan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/poketrainer/internal/game/creature"
	"github.com/cory-johannsen/poketrainer/internal/game/scan"
)

func TestParse_MinimalPayload(t *testing.T) {
	res := scan.Parse(`{"id":25,"name":"Pikachu","rarity":"common"}`)
	require.True(t, res.OK())
	assert.Equal(t, 25, res.Creature.ID)
	assert.Equal(t, "Pikachu", res.Creature.Name)
	assert.Equal(t, "common", res.Creature.Rarity)
	assert.Equal(t, 95, res.Creature.CaptureChance())
}

func TestParse_FullPayload(t *testing.T) {
	res := scan.Parse(`{"id":4,"name":"Charmander","rarity":"uncommon","type":"fire",
		"level":12,"hp":50,"maxHp":50,"attack":35,"defense":25,"speed":60,
		"img":"https://example.test/4.png"}`)
	require.True(t, res.OK())
	assert.Equal(t, creature.Creature{
		ID: 4, Name: "Charmander", Rarity: "uncommon", Type: "fire",
		Level: 12, HP: 50, MaxHP: 50, Attack: 35, Defense: 25, Speed: 60,
		Img: "https://example.test/4.png",
	}, res.Creature)
}

func TestParse_NotJSON(t *testing.T) {
	res := scan.Parse("not json")
	require.False(t, res.OK())
	assert.Equal(t, "not json", res.Unrecognized.Payload)
	assert.Contains(t, res.Unrecognized.Error(), "unrecognized code")
}

func TestParse_MissingFields(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`{"name":"Pikachu","rarity":"common"}`, "id"},
		{`{"id":25,"rarity":"common"}`, "name"},
		{`{"id":25,"name":"  ","rarity":"rare"}`, "name"},
		{`{"id":25,"name":"Pikachu"}`, "rarity"},
		{`{}`, "id, name, rarity"},
		{`null`, "id, name, rarity"},
	}
	for _, tc := range cases {
		raw, want := tc.raw, tc.want
		res := scan.Parse(raw)
		require.False(t, res.OK(), raw)
		assert.Equal(t, raw, res.Unrecognized.Payload)
		assert.Contains(t, res.Unrecognized.Reason, want, raw)
	}
}

func TestParse_WrongTypesAndTrailingData(t *testing.T) {
	for _, raw := range []string{
		`{"id":"25","name":"Pikachu","rarity":"common"}`,
		`[25,"Pikachu","common"]`,
		`{"id":25,"name":"Pikachu","rarity":"common"} extra`,
		``,
	} {
		assert.False(t, scan.Parse(raw).OK(), raw)
	}
}

func TestParse_UnknownRarityAccepted(t *testing.T) {
	res := scan.Parse(`{"id":999,"name":"Glitch","rarity":"mythic"}`)
	require.True(t, res.OK())
	assert.Equal(t, creature.DefaultChance, res.Creature.CaptureChance())
}

func TestParse_Property_NeverPanics(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		raw := rapid.String().Draw(rt, "payload")
		res := scan.Parse(raw)
		if !res.OK() && res.Unrecognized.Payload != raw {
			rt.Fatalf("rejection lost the payload")
		}
	})
}
