package services

import (
	"context"

	"git.solsynth.dev/hypernet/calling/pkg/internal/config"
	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go"
)

// RoomService is the part of the LiveKit room API the call service drives.
type RoomService interface {
	CreateRoom(ctx context.Context, req *livekit.CreateRoomRequest) (*livekit.Room, error)
	ListRooms(ctx context.Context, req *livekit.ListRoomsRequest) (*livekit.ListRoomsResponse, error)
	DeleteRoom(ctx context.Context, req *livekit.DeleteRoomRequest) (*livekit.DeleteRoomResponse, error)
	UpdateRoomMetadata(ctx context.Context, req *livekit.UpdateRoomMetadataRequest) (*livekit.Room, error)
}

func NewRoomService(cfg config.StreamConfig) *lksdk.RoomServiceClient {
	return lksdk.NewRoomServiceClient(cfg.Endpoint, cfg.ApiKey, cfg.ApiSecret)
}

var _ RoomService = (*lksdk.RoomServiceClient)(nil)
