package models

const (
	EventCallCreated          = "call.created"
	EventCallEnded            = "call.ended"
	EventCallLiveStarted      = "call.live_started"
	EventCallMemberAdded      = "call.member_added"
	EventCallMemberRemoved    = "call.member_removed"
	EventCallRecordingStarted = "call.recording_started"
	EventCallRecordingStopped = "call.recording_stopped"
)

type WebhookEvent struct {
	Type      string           `json:"type"`
	CreatedAt string           `json:"created_at"`
	CallCID   string           `json:"call_cid,omitempty"`
	Call      map[string]any   `json:"call,omitempty"`
	User      map[string]any   `json:"user,omitempty"`
	Members   []map[string]any `json:"members,omitempty"`
}
