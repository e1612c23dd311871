package roster

// Reason explains why an operation was or was not applied.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonTeamFull         Reason = "team is full"
	ReasonTeamMinimum      Reason = "team must keep at least one member"
	ReasonUnknownMember    Reason = "unknown member"
	ReasonUnknownBox       Reason = "unknown box"
	ReasonIndexOutOfRange  Reason = "index out of range"
	ReasonAlreadyOnTeam    Reason = "member is already on the team"
	ReasonAlreadyInBox     Reason = "member is already in that box"
	ReasonPlacedInFallback Reason = "team is full; placed in box"
)

// Result reports the outcome of a roster operation. A Result with
// Applied == false means the roster is unchanged.
type Result struct {
	Applied bool   `json:"applied"`
	Reason  Reason `json:"reason,omitempty"`
}

func applied() Result { return Result{Applied: true} }

func rejected(r Reason) Result { return Result{Reason: r} }
