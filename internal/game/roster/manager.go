// Package roster owns a trainer's captured creatures: an ordered team of one
// to six members and an ordered list of unbounded storage boxes.
//
// Every mutating operation is all-or-nothing. Capacity or index violations
// return a Result with Applied == false and leave the roster untouched.
package roster

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/poketrainer/internal/game/creature"
)

const (
	// MinTeamSize is the smallest team allowed after initialization.
	MinTeamSize = 1
	// MaxTeamSize is the largest team allowed.
	MaxTeamSize = 6
)

// DefaultBoxNames are used when New receives no box names.
var DefaultBoxNames = []string{"Box 1", "Box 2", "Box 3"}

// Option customises a Manager.
type Option func(*Manager)

// WithClock sets the capture timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator sets the member ID source.
func WithIDGenerator(next func() uuid.UUID) Option {
	return func(m *Manager) { m.newID = next }
}

// WithFallbackBox sets the box that receives team-bound captures when the
// team is full. Defaults to the first box.
func WithFallbackBox(boxID int) Option {
	return func(m *Manager) { m.fallbackBox = boxID }
}

// Manager is the exclusive owner of one trainer's team and boxes.
// It is not safe for concurrent use; callers serialize access.
//
// Invariant: MinTeamSize <= len(team) <= MaxTeamSize.
// Invariant: every member ID appears exactly once across team and boxes.
type Manager struct {
	team        []Member
	boxes       []Box
	fallbackBox int
	now         func() time.Time
	newID       func() uuid.UUID
}

// New creates a roster whose team holds only starter and whose boxes are
// named boxNames, with ids 0..len(boxNames)-1.
//
// Precondition: starter.Name must be non-empty.
// Postcondition: len(Team()) == 1; len(ListBoxes()) == len(boxNames), or
// len(DefaultBoxNames) when boxNames is empty.
func New(starter creature.Creature, boxNames []string, opts ...Option) *Manager {
	if len(boxNames) == 0 {
		boxNames = DefaultBoxNames
	}
	m := newManager(opts)
	m.boxes = make([]Box, len(boxNames))
	for i, name := range boxNames {
		m.boxes[i] = Box{ID: i, Name: name}
	}
	if m.boxIndex(m.fallbackBox) < 0 {
		m.fallbackBox = m.boxes[0].ID
	}
	m.team = []Member{m.mint(starter).placedOnTeam()}
	return m
}

func newManager(opts []Option) *Manager {
	m := &Manager{now: time.Now, newID: uuid.New}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) mint(c creature.Creature) Member {
	return Member{
		ID:         m.newID(),
		Creature:   c.Normalize(),
		CapturedAt: m.now().UTC(),
	}
}

// AddToTeamOrBox places a newly captured creature at dest.
//
// A team destination with a full team lands in the fallback box and reports
// ReasonPlacedInFallback with Applied == true.
//
// Postcondition: On Applied, the returned Member is in the roster at the end
// of its collection. An unknown box id leaves the roster unchanged.
func (m *Manager) AddToTeamOrBox(c creature.Creature, dest Destination) (Member, Result) {
	if dest.IsTeam() {
		if len(m.team) < MaxTeamSize {
			member := m.mint(c).placedOnTeam()
			m.team = append(m.team, member)
			return member, applied()
		}
		idx := m.boxIndex(m.fallbackBox)
		if idx < 0 {
			return Member{}, rejected(ReasonTeamFull)
		}
		member := m.mint(c).placedInBox(m.boxes[idx].ID)
		m.boxes[idx].Members = append(m.boxes[idx].Members, member)
		return member, Result{Applied: true, Reason: ReasonPlacedInFallback}
	}

	idx := m.boxIndex(dest.BoxID())
	if idx < 0 {
		return Member{}, rejected(ReasonUnknownBox)
	}
	member := m.mint(c).placedInBox(m.boxes[idx].ID)
	m.boxes[idx].Members = append(m.boxes[idx].Members, member)
	return member, applied()
}

// MoveToBox moves a team or box member to the end of box boxID.
//
// Postcondition: No-op if the member is unknown, the box is unknown, the
// member is already in that box, or the member is the last one on the team.
func (m *Manager) MoveToBox(memberID uuid.UUID, boxID int) Result {
	target := m.boxIndex(boxID)
	if target < 0 {
		return rejected(ReasonUnknownBox)
	}

	if ti := m.teamIndex(memberID); ti >= 0 {
		if len(m.team) <= MinTeamSize {
			return rejected(ReasonTeamMinimum)
		}
		member := m.team[ti]
		m.team = removeAt(m.team, ti)
		m.boxes[target].Members = append(m.boxes[target].Members, member.placedInBox(boxID))
		return applied()
	}

	bi, mi := m.boxMemberIndex(memberID)
	if bi < 0 {
		return rejected(ReasonUnknownMember)
	}
	if bi == target {
		return rejected(ReasonAlreadyInBox)
	}
	member := m.boxes[bi].Members[mi]
	m.boxes[bi].Members = removeAt(m.boxes[bi].Members, mi)
	m.boxes[target].Members = append(m.boxes[target].Members, member.placedInBox(boxID))
	return applied()
}

// MoveToTeam moves a box member, found in any box, to the end of the team.
//
// Postcondition: No-op if the team is full, the member is unknown, or the
// member is already on the team.
func (m *Manager) MoveToTeam(memberID uuid.UUID) Result {
	if m.teamIndex(memberID) >= 0 {
		return rejected(ReasonAlreadyOnTeam)
	}
	bi, mi := m.boxMemberIndex(memberID)
	if bi < 0 {
		return rejected(ReasonUnknownMember)
	}
	if len(m.team) >= MaxTeamSize {
		return rejected(ReasonTeamFull)
	}
	member := m.boxes[bi].Members[mi]
	m.boxes[bi].Members = removeAt(m.boxes[bi].Members, mi)
	m.team = append(m.team, member.placedOnTeam())
	return applied()
}

// Reorder removes the element at from and reinserts it at to within the same
// collection.
//
// Precondition: 0 <= from, to < len(collection); otherwise no-op.
// Postcondition: The collection holds the same members; from == to leaves the
// order unchanged.
func (m *Manager) Reorder(ref CollectionRef, from, to int) Result {
	if ref.IsTeam() {
		out, ok := splice(m.team, from, to)
		if !ok {
			return rejected(ReasonIndexOutOfRange)
		}
		m.team = out
		return applied()
	}
	idx := m.boxIndex(ref.BoxID())
	if idx < 0 {
		return rejected(ReasonUnknownBox)
	}
	out, ok := splice(m.boxes[idx].Members, from, to)
	if !ok {
		return rejected(ReasonIndexOutOfRange)
	}
	m.boxes[idx].Members = out
	return applied()
}

// Release removes a member from the roster entirely.
//
// Postcondition: No-op if the member is unknown or is the last team member.
func (m *Manager) Release(memberID uuid.UUID) (Member, Result) {
	if ti := m.teamIndex(memberID); ti >= 0 {
		if len(m.team) <= MinTeamSize {
			return Member{}, rejected(ReasonTeamMinimum)
		}
		member := m.team[ti]
		m.team = removeAt(m.team, ti)
		return member, applied()
	}
	bi, mi := m.boxMemberIndex(memberID)
	if bi < 0 {
		return Member{}, rejected(ReasonUnknownMember)
	}
	member := m.boxes[bi].Members[mi]
	m.boxes[bi].Members = removeAt(m.boxes[bi].Members, mi)
	return member, applied()
}

// Team returns a copy of the team in order.
func (m *Manager) Team() []Member {
	return append([]Member(nil), m.team...)
}

// ListBoxes returns copies of every box in order.
func (m *Manager) ListBoxes() []Box {
	out := make([]Box, len(m.boxes))
	for i, b := range m.boxes {
		out[i] = b.clone()
	}
	return out
}

// Box returns a copy of the box with id boxID.
func (m *Manager) Box(boxID int) (Box, bool) {
	idx := m.boxIndex(boxID)
	if idx < 0 {
		return Box{}, false
	}
	return m.boxes[idx].clone(), true
}

// BoxAt returns a copy of the box at position index.
func (m *Manager) BoxAt(index int) (Box, bool) {
	if index < 0 || index >= len(m.boxes) {
		return Box{}, false
	}
	return m.boxes[index].clone(), true
}

// Member looks up a member anywhere in the roster.
func (m *Manager) Member(memberID uuid.UUID) (Member, bool) {
	if ti := m.teamIndex(memberID); ti >= 0 {
		return m.team[ti], true
	}
	if bi, mi := m.boxMemberIndex(memberID); bi >= 0 {
		return m.boxes[bi].Members[mi], true
	}
	return Member{}, false
}

// Size returns the total number of members across team and boxes.
func (m *Manager) Size() int {
	n := len(m.team)
	for _, b := range m.boxes {
		n += len(b.Members)
	}
	return n
}

func (m *Manager) teamIndex(id uuid.UUID) int {
	for i := range m.team {
		if m.team[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) boxIndex(boxID int) int {
	for i := range m.boxes {
		if m.boxes[i].ID == boxID {
			return i
		}
	}
	return -1
}

func (m *Manager) boxMemberIndex(id uuid.UUID) (int, int) {
	for bi := range m.boxes {
		for mi := range m.boxes[bi].Members {
			if m.boxes[bi].Members[mi].ID == id {
				return bi, mi
			}
		}
	}
	return -1, -1
}

// removeAt returns a new slice without element i.
func removeAt(s []Member, i int) []Member {
	out := make([]Member, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

func splice(s []Member, from, to int) ([]Member, bool) {
	if from < 0 || from >= len(s) || to < 0 || to >= len(s) {
		return nil, false
	}
	moved := s[from]
	out := removeAt(s, from)
	out = append(out, Member{})
	copy(out[to+1:], out[to:])
	out[to] = moved
	return out, true
}

// String summarises the roster for logs.
func (m *Manager) String() string {
	return fmt.Sprintf("team=%d boxes=%d members=%d", len(m.team), len(m.boxes), m.Size())
}
