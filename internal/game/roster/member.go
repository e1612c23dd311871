package roster

import (
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/poketrainer/internal/game/creature"
)

// Location says which collection holds a member.
type Location string

const (
	LocationTeam Location = "team"
	LocationBox  Location = "box"
)

// NoBox is the BoxID of a member on the team.
const NoBox = -1

// Member is a captured creature plus its placement in the roster.
// ID is unique per capture; Creature.ID is the catalog reference.
//
// Invariant: BoxID != NoBox iff Location == LocationBox.
type Member struct {
	ID         uuid.UUID         `json:"member_id"`
	Creature   creature.Creature `json:"creature"`
	Location   Location          `json:"location"`
	BoxID      int               `json:"box_id"`
	CapturedAt time.Time         `json:"captured_at"`
}

// InTeam reports whether the member is on the team.
func (m Member) InTeam() bool { return m.Location == LocationTeam }

func (m Member) placedOnTeam() Member {
	m.Location = LocationTeam
	m.BoxID = NoBox
	return m
}

func (m Member) placedInBox(boxID int) Member {
	m.Location = LocationBox
	m.BoxID = boxID
	return m
}

// Box is a named, unbounded, ordered storage collection.
type Box struct {
	ID      int      `json:"box_id"`
	Name    string   `json:"name"`
	Members []Member `json:"members"`
}

func (b Box) clone() Box {
	b.Members = append([]Member(nil), b.Members...)
	return b
}

// Destination selects where a new capture is placed.
type Destination struct {
	team  bool
	boxID int
}

// ToTeam targets the team.
func ToTeam() Destination { return Destination{team: true, boxID: NoBox} }

// ToBox targets the box with the given id.
func ToBox(boxID int) Destination { return Destination{boxID: boxID} }

// IsTeam reports whether the destination is the team.
func (d Destination) IsTeam() bool { return d.team }

// BoxID returns the target box id, or NoBox for the team.
func (d Destination) BoxID() int { return d.boxID }

// CollectionRef names the team or one box as the target of Reorder.
type CollectionRef = Destination

// TeamRef refers to the team.
func TeamRef() CollectionRef { return ToTeam() }

// BoxRef refers to the box with the given id.
func BoxRef(boxID int) CollectionRef { return ToBox(boxID) }
