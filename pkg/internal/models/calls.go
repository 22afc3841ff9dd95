package models

import (
	"fmt"
	"strings"
	"time"
)

const DefaultCallType = "default"

const (
	RecordingModeAvailable = "available"
	RecordingModeDisabled  = "disabled"
	RecordingModeAutoOn    = "auto-on"
)

// CallID is the composite identifier of a call, rendered as "type:id".
type CallID struct {
	Type string
	ID   string
}

func (v CallID) CID() string {
	return fmt.Sprintf("%s:%s", v.Type, v.ID)
}

func ParseCID(cid string) (CallID, error) {
	kind, id, ok := strings.Cut(cid, ":")
	if !ok || len(kind) == 0 || len(id) == 0 {
		return CallID{}, fmt.Errorf("malformed call cid %q", cid)
	}
	return CallID{Type: kind, ID: id}, nil
}

type CallUser struct {
	ID string `json:"id"`
}

type CallMember struct {
	UserID string `json:"user_id" validate:"required" message:"members[].user_id is required"`
	Role   string `json:"role,omitempty"`
}

type Call struct {
	ID        string       `json:"id"`
	Type      string       `json:"type"`
	CID       string       `json:"cid"`
	CreatedBy CallUser     `json:"created_by"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	EndedAt   *time.Time   `json:"ended_at,omitempty"`
	Settings  CallSettings `json:"settings"`
	Backstage bool         `json:"backstage"`
}

type CallResponse struct {
	Call            Call         `json:"call"`
	Members         []CallMember `json:"members"`
	OwnCapabilities []string     `json:"own_capabilities"`
	Participants    uint32       `json:"participants"`
}

type CallCreateOptions struct {
	CreatedBy string
	Members   []CallMember
	Settings  *CallSettings
}

type AudioSettings struct {
	MicDefaultOn  *bool   `json:"mic_default_on,omitempty"`
	DefaultDevice *string `json:"default_device,omitempty" validate:"omitempty,oneof=speaker earpiece"`
}

type VideoSettings struct {
	CameraDefaultOn *bool `json:"camera_default_on,omitempty"`
	Enabled         *bool `json:"enabled,omitempty"`
}

type RecordingSettings struct {
	Mode      *string `json:"mode,omitempty" validate:"omitempty,oneof=available disabled auto-on"`
	AudioOnly *bool   `json:"audio_only,omitempty"`
}

type ScreensharingSettings struct {
	Enabled *bool `json:"enabled,omitempty"`
}

type CallSettings struct {
	Audio         *AudioSettings         `json:"audio,omitempty"`
	Video         *VideoSettings         `json:"video,omitempty"`
	Recording     *RecordingSettings     `json:"recording,omitempty"`
	Screensharing *ScreensharingSettings `json:"screensharing,omitempty"`
}

// Merge overlays the non-nil fields of overlay onto a copy of v.
func (v CallSettings) Merge(overlay CallSettings) CallSettings {
	out := v
	if overlay.Audio != nil {
		audio := AudioSettings{}
		if v.Audio != nil {
			audio = *v.Audio
		}
		audio.MicDefaultOn = pick(overlay.Audio.MicDefaultOn, audio.MicDefaultOn)
		audio.DefaultDevice = pick(overlay.Audio.DefaultDevice, audio.DefaultDevice)
		out.Audio = &audio
	}
	if overlay.Video != nil {
		video := VideoSettings{}
		if v.Video != nil {
			video = *v.Video
		}
		video.CameraDefaultOn = pick(overlay.Video.CameraDefaultOn, video.CameraDefaultOn)
		video.Enabled = pick(overlay.Video.Enabled, video.Enabled)
		out.Video = &video
	}
	if overlay.Recording != nil {
		recording := RecordingSettings{}
		if v.Recording != nil {
			recording = *v.Recording
		}
		recording.Mode = pick(overlay.Recording.Mode, recording.Mode)
		recording.AudioOnly = pick(overlay.Recording.AudioOnly, recording.AudioOnly)
		out.Recording = &recording
	}
	if overlay.Screensharing != nil {
		screensharing := ScreensharingSettings{}
		if v.Screensharing != nil {
			screensharing = *v.Screensharing
		}
		screensharing.Enabled = pick(overlay.Screensharing.Enabled, screensharing.Enabled)
		out.Screensharing = &screensharing
	}
	return out
}

// Capabilities lists what a server-side caller may do in a call with these settings.
// Unset toggles count as enabled.
func (v CallSettings) Capabilities() []string {
	caps := []string{"join-call", "read-call", "send-audio", "update-call", "update-call-member", "end-call"}
	if v.Video == nil || v.Video.Enabled == nil || *v.Video.Enabled {
		caps = append(caps, "send-video")
	}
	if v.Screensharing == nil || v.Screensharing.Enabled == nil || *v.Screensharing.Enabled {
		caps = append(caps, "screenshare")
	}
	if v.Recording == nil || v.Recording.Mode == nil || *v.Recording.Mode != RecordingModeDisabled {
		caps = append(caps, "start-record-call", "stop-record-call")
	}
	return caps
}

func pick[T any](overlay, base *T) *T {
	if overlay != nil {
		return overlay
	}
	return base
}
