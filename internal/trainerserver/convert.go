package trainerserver

import (
	"time"

	"github.com/cory-johannsen/poketrainer/internal/game/capture"
	"github.com/cory-johannsen/poketrainer/internal/game/creature"
	"github.com/cory-johannsen/poketrainer/internal/game/roster"
	"github.com/cory-johannsen/poketrainer/internal/game/session"
	trainerv1 "github.com/cory-johannsen/poketrainer/internal/trainerserver/trainerv1"
)

func creatureToProto(c creature.Creature) *trainerv1.Creature {
	return &trainerv1.Creature{
		Id:        c.ID,
		Name:      c.Name,
		Rarity:    c.Rarity,
		Type:      c.Type,
		Level:     c.Level,
		Hp:        c.HP,
		MaxHp:     c.MaxHP,
		Attack:    c.Attack,
		Defense:   c.Defense,
		Speed:     c.Speed,
		SpriteUrl: c.SpriteURL(),
	}
}

func memberToProto(m roster.Member) *trainerv1.Member {
	return &trainerv1.Member{
		Id:         m.ID.String(),
		Creature:   creatureToProto(m.Creature),
		Location:   string(m.Location),
		BoxId:      m.BoxID,
		CapturedAt: m.CapturedAt.Format(time.RFC3339),
	}
}

func membersToProto(ms []roster.Member) []*trainerv1.Member {
	out := make([]*trainerv1.Member, 0, len(ms))
	for _, m := range ms {
		out = append(out, memberToProto(m))
	}
	return out
}

func viewToProto(v session.View) *trainerv1.RosterView {
	boxes := make([]*trainerv1.Box, 0, len(v.Boxes))
	for _, b := range v.Boxes {
		boxes = append(boxes, &trainerv1.Box{Id: b.ID, Name: b.Name, Members: membersToProto(b.Members)})
	}
	return &trainerv1.RosterView{
		Team:        membersToProto(v.Team),
		Boxes:       boxes,
		SelectedBox: v.SelectedBox,
	}
}

func resultToProto(r roster.Result) *trainerv1.Result {
	return &trainerv1.Result{Applied: r.Applied, Reason: string(r.Reason)}
}

func outcomeToProto(o capture.Outcome) *trainerv1.ScanResponse {
	return &trainerv1.ScanResponse{
		Creature: creatureToProto(o.Creature),
		Success:  o.Success,
		Roll:     o.Roll,
		Chance:   o.Chance,
		Band:     string(creature.ChanceBand(o.Chance)),
	}
}

func entryToProto(e capture.Entry) *trainerv1.CaptureEntry {
	return &trainerv1.CaptureEntry{
		MemberId:   e.MemberID.String(),
		Creature:   creatureToProto(e.Creature),
		CapturedAt: e.CapturedAt.Format(time.RFC3339),
	}
}

func collectionFromProto(c *trainerv1.Collection) roster.CollectionRef {
	if c == nil || c.Team {
		return roster.TeamRef()
	}
	return roster.BoxRef(c.BoxId)
}

func capturedEntry(m roster.Member) capture.Entry {
	return capture.Entry{MemberID: m.ID, Creature: m.Creature, CapturedAt: m.CapturedAt}
}
