package roster

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidSnapshot is returned by Restore when a snapshot breaks a roster
// invariant.
var ErrInvalidSnapshot = errors.New("roster: invalid snapshot")

// Snapshot is the persisted layout of a roster.
type Snapshot struct {
	Team  []Member `json:"team"`
	Boxes []Box    `json:"boxes"`
}

// Snapshot captures the current layout as an independent copy.
func (m *Manager) Snapshot() Snapshot {
	return Snapshot{Team: m.Team(), Boxes: m.ListBoxes()}
}

// Restore rebuilds a Manager from snap.
//
// Postcondition: Returns an error wrapping ErrInvalidSnapshot if the team size
// is outside [MinTeamSize, MaxTeamSize], no box exists, box ids repeat,
// member ids repeat, or a member's placement disagrees with its collection.
func Restore(snap Snapshot, opts ...Option) (*Manager, error) {
	if n := len(snap.Team); n < MinTeamSize || n > MaxTeamSize {
		return nil, fmt.Errorf("%w: team size %d outside [%d, %d]", ErrInvalidSnapshot, n, MinTeamSize, MaxTeamSize)
	}
	if len(snap.Boxes) == 0 {
		return nil, fmt.Errorf("%w: no boxes", ErrInvalidSnapshot)
	}

	seen := make(map[uuid.UUID]bool)
	check := func(mem Member, loc Location, boxID int) error {
		if mem.ID == uuid.Nil {
			return fmt.Errorf("%w: member without id", ErrInvalidSnapshot)
		}
		if seen[mem.ID] {
			return fmt.Errorf("%w: duplicate member %s", ErrInvalidSnapshot, mem.ID)
		}
		seen[mem.ID] = true
		if mem.Location != loc || mem.BoxID != boxID {
			return fmt.Errorf("%w: member %s placed at %s/%d but stored in %s/%d",
				ErrInvalidSnapshot, mem.ID, mem.Location, mem.BoxID, loc, boxID)
		}
		return nil
	}

	for _, mem := range snap.Team {
		if err := check(mem, LocationTeam, NoBox); err != nil {
			return nil, err
		}
	}
	boxIDs := make(map[int]bool)
	for _, b := range snap.Boxes {
		if b.ID < 0 || boxIDs[b.ID] {
			return nil, fmt.Errorf("%w: bad or duplicate box id %d", ErrInvalidSnapshot, b.ID)
		}
		boxIDs[b.ID] = true
		for _, mem := range b.Members {
			if err := check(mem, LocationBox, b.ID); err != nil {
				return nil, err
			}
		}
	}

	m := newManager(opts)
	m.team = append([]Member(nil), snap.Team...)
	m.boxes = make([]Box, len(snap.Boxes))
	for i, b := range snap.Boxes {
		m.boxes[i] = b.clone()
	}
	if m.boxIndex(m.fallbackBox) < 0 {
		m.fallbackBox = m.boxes[0].ID
	}
	return m, nil
}
