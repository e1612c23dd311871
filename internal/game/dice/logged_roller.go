package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so every percentile draw is auditable.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Percentile draws a value in [0, 100) and logs it at debug level under purpose.
//
// Postcondition: 0 <= result < 100.
func (r *Roller) Percentile(purpose string) int {
	v := Percentile(r.src)
	r.logger.Debug("percentile roll",
		zap.String("purpose", purpose),
		zap.Int("roll", v),
	)
	return v
}
