package services

import (
	"context"
	"errors"

	"git.solsynth.dev/hypernet/calling/pkg/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrCallNotFound = errors.New("call not found")
)

// Platform is everything the gateway asks of the video platform.
type Platform interface {
	ApiKey() string
	CreateToken(opts models.TokenOptions) (string, error)

	UpsertUsers(ctx context.Context, users []models.User) (map[string]models.User, error)
	QueryUsers(ctx context.Context, query models.UserQuery) ([]models.User, error)
	DeleteUsers(ctx context.Context, ids []string) error

	GetOrCreateCall(ctx context.Context, id models.CallID, opts models.CallCreateOptions) (models.CallResponse, error)
	GetCall(ctx context.Context, id models.CallID) (models.CallResponse, error)
	UpdateCall(ctx context.Context, id models.CallID, settings models.CallSettings) (models.CallResponse, error)
	EndCall(ctx context.Context, id models.CallID) error
	QueryCalls(ctx context.Context, limit int) ([]models.CallResponse, error)

	Ping(ctx context.Context) error
}

// StreamPlatform runs calls on LiveKit rooms and keeps the user directory in redis.
type StreamPlatform struct {
	*CallService
	*UserDirectory
	*TokenIssuer
}

func NewStreamPlatform(calls *CallService, users *UserDirectory, tokens *TokenIssuer) *StreamPlatform {
	return &StreamPlatform{CallService: calls, UserDirectory: users, TokenIssuer: tokens}
}

func (v *StreamPlatform) Ping(ctx context.Context) error {
	if err := v.CallService.PingRooms(ctx); err != nil {
		return err
	}
	return v.UserDirectory.PingDirectory(ctx)
}

var _ Platform = (*StreamPlatform)(nil)
