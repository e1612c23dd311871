// Package trainerv1 declares the poketrainer.v1.TrainerService wire messages
// and service descriptor. Messages travel as JSON over gRPC.
package trainerv1

// Creature is a catalog creature on the wire.
type Creature struct {
	Id        int    `json:"id"`
	Name      string `json:"name"`
	Rarity    string `json:"rarity"`
	Type      string `json:"type,omitempty"`
	Level     int    `json:"level,omitempty"`
	Hp        int    `json:"hp,omitempty"`
	MaxHp     int    `json:"maxHp,omitempty"`
	Attack    int    `json:"attack,omitempty"`
	Defense   int    `json:"defense,omitempty"`
	Speed     int    `json:"speed,omitempty"`
	SpriteUrl string `json:"spriteUrl,omitempty"`
}

// Member is one roster member.
type Member struct {
	Id         string    `json:"id"`
	Creature   *Creature `json:"creature"`
	Location   string    `json:"location"`
	BoxId      int       `json:"boxId"`
	CapturedAt string    `json:"capturedAt"`
}

// Box is one storage box.
type Box struct {
	Id      int       `json:"id"`
	Name    string    `json:"name"`
	Members []*Member `json:"members"`
}

// Collection names the team (Team == true) or one box.
type Collection struct {
	Team  bool `json:"team,omitempty"`
	BoxId int  `json:"boxId,omitempty"`
}

// Result reports whether a roster operation applied.
type Result struct {
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

// Empty is an empty response.
type Empty struct{}

// SessionRequest addresses one open session.
type SessionRequest struct {
	SessionId string `json:"sessionId"`
}

type OpenSessionRequest struct {
	TrainerName string `json:"trainerName"`
	// Passcode is set once, when the trainer account is first created.
	Passcode string `json:"passcode,omitempty"`
}

type OpenSessionResponse struct {
	SessionId     string `json:"sessionId"`
	NewTrainer    bool   `json:"newTrainer"`
	HasPasscode   bool   `json:"hasPasscode"`
	Authenticator string `json:"authenticator"`
}

type UnlockRequest struct {
	SessionId string `json:"sessionId"`
	Passcode  string `json:"passcode,omitempty"`
}

type UnlockResponse struct {
	AttemptsRemaining int `json:"attemptsRemaining"`
}

// ScanRequest either carries a decoded payload or asks the server to wait
// for a camera event pushed with PushScanEvent.
type ScanRequest struct {
	SessionId        string `json:"sessionId"`
	Payload          string `json:"payload,omitempty"`
	UseCamera        bool   `json:"useCamera,omitempty"`
	CameraPermission string `json:"cameraPermission,omitempty"`
	PermissionReason string `json:"permissionReason,omitempty"`
	// Simulate draws a random catalog species instead of reading a code.
	Simulate bool `json:"simulate,omitempty"`
}

type ScanResponse struct {
	Creature *Creature `json:"creature"`
	Success  bool      `json:"success"`
	Roll     int       `json:"roll"`
	Chance   int       `json:"chance"`
	Band     string    `json:"band"`
}

// Scan event kinds.
const (
	ScanEventDecoded   = "decoded"
	ScanEventCancelled = "cancelled"
	ScanEventFailed    = "failed"
)

type ScanEventRequest struct {
	SessionId string `json:"sessionId"`
	Kind      string `json:"kind"`
	Text      string `json:"text,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type ConfirmCaptureRequest struct {
	SessionId string `json:"sessionId"`
	// Destination overrides the configured landing zone when set.
	Destination *Collection `json:"destination,omitempty"`
}

type ConfirmCaptureResponse struct {
	Member *Member `json:"member,omitempty"`
	Result *Result `json:"result"`
}

type RosterView struct {
	Team        []*Member `json:"team"`
	Boxes       []*Box    `json:"boxes"`
	SelectedBox int       `json:"selectedBox"`
}

type SelectBoxRequest struct {
	SessionId string `json:"sessionId"`
	BoxId     int    `json:"boxId"`
}

type MemberRequest struct {
	SessionId string `json:"sessionId"`
	MemberId  string `json:"memberId"`
	BoxId     int    `json:"boxId,omitempty"`
}

type ReorderRequest struct {
	SessionId  string      `json:"sessionId"`
	Collection *Collection `json:"collection"`
	From       int         `json:"from"`
	To         int         `json:"to"`
}

type CaptureEntry struct {
	MemberId   string    `json:"memberId"`
	Creature   *Creature `json:"creature"`
	CapturedAt string    `json:"capturedAt"`
}

type CaptureLogResponse struct {
	Entries []*CaptureEntry `json:"entries"`
}

type SearchCatalogRequest struct {
	Name   string `json:"name,omitempty"`
	Type   string `json:"type,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type SearchCatalogResponse struct {
	Species []*Creature `json:"species"`
	Total   int         `json:"total"`
	HasMore bool        `json:"hasMore"`
	Types   []string    `json:"types"`
}
