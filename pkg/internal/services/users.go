package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.solsynth.dev/hypernet/calling/pkg/internal/models"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

const (
	userKeyPrefix   = "users:"
	userIndexKey    = "users:index"
	defaultUserRole = "user"
)

// UserDirectory is the platform-side user store, one JSON document per user
// plus a sorted index by creation time for paging.
type UserDirectory struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewUserDirectory(client redis.UniversalClient) *UserDirectory {
	return &UserDirectory{client: client, now: time.Now}
}

func userKey(id string) string {
	return userKeyPrefix + id
}

func (v *UserDirectory) getUser(ctx context.Context, id string) (models.User, error) {
	raw, err := v.client.Get(ctx, userKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.User{}, ErrUserNotFound
	} else if err != nil {
		return models.User{}, fmt.Errorf("user directory error: %v", err)
	}

	var user models.User
	if err := jsoniter.Unmarshal(raw, &user); err != nil {
		return user, fmt.Errorf("user directory holds a broken record for %s: %v", id, err)
	}
	return user, nil
}

// UpsertUsers creates missing users and merges the non-empty fields of the
// rest onto what is already stored.
func (v *UserDirectory) UpsertUsers(ctx context.Context, users []models.User) (map[string]models.User, error) {
	out := make(map[string]models.User, len(users))
	now := v.now()

	for _, item := range users {
		if len(item.ID) == 0 {
			return nil, fmt.Errorf("user id is required")
		}

		current, err := v.getUser(ctx, item.ID)
		if errors.Is(err, ErrUserNotFound) {
			current = models.User{ID: item.ID, Role: defaultUserRole, CreatedAt: now}
		} else if err != nil {
			return nil, err
		}

		current.Name = lo.Ternary(len(item.Name) > 0, item.Name, current.Name)
		current.Image = lo.Ternary(len(item.Image) > 0, item.Image, current.Image)
		current.Role = lo.Ternary(len(item.Role) > 0, item.Role, current.Role)
		if item.Custom != nil {
			current.Custom = item.Custom
		}
		current.UpdatedAt = now

		raw, err := jsoniter.Marshal(current)
		if err != nil {
			return nil, err
		}
		if _, err := v.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, userKey(current.ID), raw, 0)
			pipe.ZAddNX(ctx, userIndexKey, redis.Z{
				Score:  float64(current.CreatedAt.UnixMilli()),
				Member: current.ID,
			})
			return nil
		}); err != nil {
			return nil, fmt.Errorf("user directory error: %v", err)
		}

		out[current.ID] = current
	}

	return out, nil
}

// QueryUsers looks a single user up when query.ID is set, otherwise it
// pages through the directory in creation order.
func (v *UserDirectory) QueryUsers(ctx context.Context, query models.UserQuery) ([]models.User, error) {
	if len(query.ID) > 0 {
		user, err := v.getUser(ctx, query.ID)
		if errors.Is(err, ErrUserNotFound) {
			return []models.User{}, nil
		} else if err != nil {
			return nil, err
		}
		return []models.User{user}, nil
	}

	limit := lo.Ternary(query.Limit > 0, query.Limit, 25)
	start := int64(max(query.Offset, 0))
	ids, err := v.client.ZRange(ctx, userIndexKey, start, start+int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("user directory error: %v", err)
	} else if len(ids) == 0 {
		return []models.User{}, nil
	}

	values, err := v.client.MGet(ctx, lo.Map(ids, func(id string, _ int) string {
		return userKey(id)
	})...).Result()
	if err != nil {
		return nil, fmt.Errorf("user directory error: %v", err)
	}

	users := make([]models.User, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			// Removed between the index read and the fetch.
			continue
		}
		var user models.User
		if err := jsoniter.UnmarshalFromString(raw, &user); err != nil {
			return nil, fmt.Errorf("user directory holds a broken record: %v", err)
		}
		users = append(users, user)
	}
	return users, nil
}

func (v *UserDirectory) DeleteUsers(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := v.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, lo.Map(ids, func(id string, _ int) string {
			return userKey(id)
		})...)
		pipe.ZRem(ctx, userIndexKey, lo.ToAnySlice(ids)...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("user directory error: %v", err)
	}
	return nil
}

func (v *UserDirectory) PingDirectory(ctx context.Context) error {
	return v.client.Ping(ctx).Err()
}
