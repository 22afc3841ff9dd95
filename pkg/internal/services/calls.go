package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"git.solsynth.dev/hypernet/calling/pkg/internal/config"
	"git.solsynth.dev/hypernet/calling/pkg/internal/models"
	jsoniter "github.com/json-iterator/go"
	"github.com/livekit/protocol/livekit"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// callMetadata is what a call keeps in the metadata of its room.
type callMetadata struct {
	Call    models.Call         `json:"call"`
	Members []models.CallMember `json:"members"`
}

// CallService maps calls onto LiveKit rooms, one room per call cid.
type CallService struct {
	rooms RoomService
	opts  config.CallingConfig
	now   func() time.Time
}

func NewCallService(rooms RoomService, opts config.CallingConfig) *CallService {
	return &CallService{rooms: rooms, opts: opts, now: time.Now}
}

func (v *CallService) findRoom(ctx context.Context, cid string) (*livekit.Room, error) {
	res, err := v.rooms.ListRooms(ctx, &livekit.ListRoomsRequest{Names: []string{cid}})
	if err != nil {
		return nil, fmt.Errorf("remote livekit error: %v", err)
	}
	room, ok := lo.Find(res.GetRooms(), func(item *livekit.Room) bool {
		return item.GetName() == cid
	})
	if !ok {
		return nil, ErrCallNotFound
	}
	return room, nil
}

func (v *CallService) GetOrCreateCall(ctx context.Context, id models.CallID, opts models.CallCreateOptions) (models.CallResponse, error) {
	if room, err := v.findRoom(ctx, id.CID()); err == nil {
		return decodeRoom(room), nil
	} else if !errors.Is(err, ErrCallNotFound) {
		return models.CallResponse{}, err
	}

	now := v.now()
	meta := callMetadata{
		Call: models.Call{
			ID:        id.ID,
			Type:      id.Type,
			CID:       id.CID(),
			CreatedBy: models.CallUser{ID: opts.CreatedBy},
			CreatedAt: now,
			UpdatedAt: now,
			Settings:  lo.FromPtr(opts.Settings),
		},
		Members: lo.Ternary(opts.Members != nil, opts.Members, []models.CallMember{}),
	}
	raw, err := jsoniter.Marshal(meta)
	if err != nil {
		return models.CallResponse{}, err
	}

	room, err := v.rooms.CreateRoom(ctx, &livekit.CreateRoomRequest{
		Name:            id.CID(),
		EmptyTimeout:    v.opts.EmptyTimeoutDuration,
		MaxParticipants: v.opts.MaxParticipants,
		Metadata:        string(raw),
	})
	if err != nil {
		return models.CallResponse{}, fmt.Errorf("remote livekit error: %v", err)
	}

	log.Debug().Str("cid", id.CID()).Str("room", room.GetSid()).Msg("Created a new call room.")
	return decodeRoom(room), nil
}

func (v *CallService) GetCall(ctx context.Context, id models.CallID) (models.CallResponse, error) {
	room, err := v.findRoom(ctx, id.CID())
	if err != nil {
		return models.CallResponse{}, err
	}
	return decodeRoom(room), nil
}

func (v *CallService) UpdateCall(ctx context.Context, id models.CallID, settings models.CallSettings) (models.CallResponse, error) {
	room, err := v.findRoom(ctx, id.CID())
	if err != nil {
		return models.CallResponse{}, err
	}

	meta := readMetadata(room)
	meta.Call.Settings = meta.Call.Settings.Merge(settings)
	meta.Call.UpdatedAt = v.now()
	raw, err := jsoniter.Marshal(meta)
	if err != nil {
		return models.CallResponse{}, err
	}

	room, err = v.rooms.UpdateRoomMetadata(ctx, &livekit.UpdateRoomMetadataRequest{
		Room:     id.CID(),
		Metadata: string(raw),
	})
	if err != nil {
		return models.CallResponse{}, fmt.Errorf("remote livekit error: %v", err)
	}
	return decodeRoom(room), nil
}

// EndCall closes the room for every participant. Ending a call that is
// already gone reports ErrCallNotFound.
func (v *CallService) EndCall(ctx context.Context, id models.CallID) error {
	if _, err := v.findRoom(ctx, id.CID()); err != nil {
		return err
	}
	if _, err := v.rooms.DeleteRoom(ctx, &livekit.DeleteRoomRequest{Room: id.CID()}); err != nil {
		return fmt.Errorf("remote livekit error: %v", err)
	}
	return nil
}

// QueryCalls returns up to limit calls, newest first.
func (v *CallService) QueryCalls(ctx context.Context, limit int) ([]models.CallResponse, error) {
	res, err := v.rooms.ListRooms(ctx, &livekit.ListRoomsRequest{})
	if err != nil {
		return nil, fmt.Errorf("remote livekit error: %v", err)
	}

	calls := lo.Map(res.GetRooms(), func(item *livekit.Room, _ int) models.CallResponse {
		return decodeRoom(item)
	})
	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].Call.CreatedAt.After(calls[j].Call.CreatedAt)
	})
	if limit > 0 && len(calls) > limit {
		calls = calls[:limit]
	}
	return calls, nil
}

func (v *CallService) PingRooms(ctx context.Context) error {
	if _, err := v.rooms.ListRooms(ctx, &livekit.ListRoomsRequest{}); err != nil {
		return fmt.Errorf("remote livekit error: %v", err)
	}
	return nil
}

// readMetadata recovers the call stored in a room. Rooms opened outside
// the gateway carry no metadata, their identity is derived from the name.
func readMetadata(room *livekit.Room) callMetadata {
	var meta callMetadata
	if len(room.GetMetadata()) > 0 {
		if err := jsoniter.UnmarshalFromString(room.GetMetadata(), &meta); err != nil {
			log.Warn().Err(err).Str("room", room.GetName()).Msg("Unable to decode call metadata, falling back to room info.")
			meta = callMetadata{}
		}
	}

	if len(meta.Call.CID) == 0 {
		id, err := models.ParseCID(room.GetName())
		if err != nil {
			id = models.CallID{Type: models.DefaultCallType, ID: room.GetName()}
		}
		created := time.Unix(room.GetCreationTime(), 0)
		meta.Call.ID = id.ID
		meta.Call.Type = id.Type
		meta.Call.CID = room.GetName()
		meta.Call.CreatedAt = created
		meta.Call.UpdatedAt = created
	}
	if meta.Members == nil {
		meta.Members = []models.CallMember{}
	}
	return meta
}

func decodeRoom(room *livekit.Room) models.CallResponse {
	meta := readMetadata(room)
	return models.CallResponse{
		Call:            meta.Call,
		Members:         meta.Members,
		OwnCapabilities: meta.Call.Settings.Capabilities(),
		Participants:    room.GetNumParticipants(),
	}
}
