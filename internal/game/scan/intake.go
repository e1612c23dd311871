package scan

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/poketrainer/internal/game/creature"
)

// Catalog is the species lookup the Intake falls back on.
type Catalog interface {
	ByID(id int) (creature.Species, bool)
	ByQRCode(code string) (creature.Species, bool)
}

// Intake wraps Parse with catalog lookups for opaque QR codes and for
// filling informational stats a payload omits.
type Intake struct {
	catalog Catalog
	logger  *zap.Logger
}

// NewIntake creates an Intake. catalog may be nil, in which case Read
// behaves exactly like Parse apart from hp normalization.
//
// Precondition: logger must be non-nil.
func NewIntake(catalog Catalog, logger *zap.Logger) *Intake {
	return &Intake{catalog: catalog, logger: logger}
}

// Read decodes raw. Structured payloads win; otherwise the payload is tried
// as a catalog QR code before being rejected.
//
// Postcondition: A recognized creature satisfies 0 <= HP <= MaxHP.
func (in *Intake) Read(raw string) Result {
	res := Parse(raw)
	if res.OK() {
		res.Creature = in.enrich(res.Creature).Normalize()
		in.logger.Debug("scan decoded",
			zap.Int("creature_id", res.Creature.ID),
			zap.String("name", res.Creature.Name),
		)
		return res
	}

	if in.catalog != nil {
		if s, ok := in.catalog.ByQRCode(raw); ok {
			in.logger.Debug("scan matched qr code",
				zap.String("qr_code", s.QRCode),
				zap.Int("creature_id", s.ID),
			)
			return Result{Creature: s.Creature.Normalize()}
		}
	}

	in.logger.Info("unrecognized code", zap.String("reason", res.Unrecognized.Reason))
	return res
}

func (in *Intake) enrich(c creature.Creature) creature.Creature {
	if in.catalog == nil {
		return c
	}
	s, ok := in.catalog.ByID(c.ID)
	if !ok {
		return c
	}
	base := s.Creature
	if c.Type == "" {
		c.Type = base.Type
	}
	if c.Level == 0 {
		c.Level = base.Level
	}
	if c.MaxHP == 0 {
		c.MaxHP = base.MaxHP
		if c.HP == 0 {
			c.HP = base.HP
		}
	}
	if c.Attack == 0 {
		c.Attack = base.Attack
	}
	if c.Defense == 0 {
		c.Defense = base.Defense
	}
	if c.Speed == 0 {
		c.Speed = base.Speed
	}
	if c.Img == "" {
		c.Img = base.Img
	}
	return c
}
