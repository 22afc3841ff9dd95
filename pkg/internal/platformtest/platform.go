// Package platformtest provides an in-memory Platform for handler tests.
package platformtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"git.solsynth.dev/hypernet/calling/pkg/internal/models"
	"git.solsynth.dev/hypernet/calling/pkg/internal/services"
	"github.com/samber/lo"
)

const (
	ApiKey    = "test-key"
	ApiSecret = "test-secret-that-is-long-enough-for-hs256"
)

// Platform keeps users and calls in maps and counts the calls made into it.
// Setting Err makes every collaborator call fail with it.
type Platform struct {
	*services.TokenIssuer

	Err error

	mu    sync.Mutex
	users map[string]models.User
	calls map[string]models.CallResponse
	hits  map[string]int
}

func New() *Platform {
	return &Platform{
		TokenIssuer: services.NewTokenIssuer(ApiKey, ApiSecret),
		users:       make(map[string]models.User),
		calls:       make(map[string]models.CallResponse),
		hits:        make(map[string]int),
	}
}

// Hits reports how many times op was invoked.
func (v *Platform) Hits(op string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hits[op]
}

func (v *Platform) enter(op string) error {
	v.hits[op]++
	return v.Err
}

func (v *Platform) CreateToken(opts models.TokenOptions) (string, error) {
	v.mu.Lock()
	err := v.enter("CreateToken")
	v.mu.Unlock()
	if err != nil {
		return "", err
	}
	return v.TokenIssuer.CreateToken(opts)
}

func (v *Platform) UpsertUsers(ctx context.Context, users []models.User) (map[string]models.User, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.enter("UpsertUsers"); err != nil {
		return nil, err
	}

	now := time.Now()
	out := make(map[string]models.User, len(users))
	for _, user := range users {
		// Ids may come straight from the request path, whose bytes fiber reuses.
		user.ID = strings.Clone(user.ID)
		current, ok := v.users[user.ID]
		if !ok {
			current = models.User{ID: user.ID, Role: "user", CreatedAt: now}
		}
		current.Name = lo.Ternary(len(user.Name) > 0, user.Name, current.Name)
		current.Image = lo.Ternary(len(user.Image) > 0, user.Image, current.Image)
		current.Role = lo.Ternary(len(user.Role) > 0, user.Role, current.Role)
		if user.Custom != nil {
			current.Custom = user.Custom
		}
		current.UpdatedAt = now
		v.users[user.ID] = current
		out[user.ID] = current
	}
	return out, nil
}

func (v *Platform) QueryUsers(ctx context.Context, query models.UserQuery) ([]models.User, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.enter("QueryUsers"); err != nil {
		return nil, err
	}

	if len(query.ID) > 0 {
		if user, ok := v.users[query.ID]; ok {
			return []models.User{user}, nil
		}
		return []models.User{}, nil
	}

	users := lo.Values(v.users)
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	if query.Offset >= len(users) {
		return []models.User{}, nil
	}
	users = users[query.Offset:]
	if query.Limit > 0 && query.Limit < len(users) {
		users = users[:query.Limit]
	}
	return users, nil
}

func (v *Platform) DeleteUsers(ctx context.Context, ids []string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.enter("DeleteUsers"); err != nil {
		return err
	}
	for _, id := range ids {
		delete(v.users, id)
	}
	return nil
}

func (v *Platform) GetOrCreateCall(ctx context.Context, id models.CallID, opts models.CallCreateOptions) (models.CallResponse, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.enter("GetOrCreateCall"); err != nil {
		return models.CallResponse{}, err
	}

	if call, ok := v.calls[id.CID()]; ok {
		return call, nil
	}
	id = models.CallID{Type: strings.Clone(id.Type), ID: strings.Clone(id.ID)}

	now := time.Now()
	settings := models.CallSettings{}
	if opts.Settings != nil {
		settings = settings.Merge(*opts.Settings)
	}
	call := models.CallResponse{
		Call: models.Call{
			ID:        id.ID,
			Type:      id.Type,
			CID:       id.CID(),
			CreatedBy: models.CallUser{ID: opts.CreatedBy},
			CreatedAt: now,
			UpdatedAt: now,
			Settings:  settings,
		},
		Members:         lo.Ternary(opts.Members != nil, opts.Members, []models.CallMember{}),
		OwnCapabilities: settings.Capabilities(),
	}
	v.calls[id.CID()] = call
	return call, nil
}

func (v *Platform) GetCall(ctx context.Context, id models.CallID) (models.CallResponse, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.enter("GetCall"); err != nil {
		return models.CallResponse{}, err
	}
	call, ok := v.calls[id.CID()]
	if !ok {
		return models.CallResponse{}, services.ErrCallNotFound
	}
	return call, nil
}

func (v *Platform) UpdateCall(ctx context.Context, id models.CallID, settings models.CallSettings) (models.CallResponse, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.enter("UpdateCall"); err != nil {
		return models.CallResponse{}, err
	}
	call, ok := v.calls[id.CID()]
	if !ok {
		return models.CallResponse{}, services.ErrCallNotFound
	}
	call.Call.Settings = call.Call.Settings.Merge(settings)
	call.Call.UpdatedAt = time.Now()
	call.OwnCapabilities = call.Call.Settings.Capabilities()
	v.calls[id.CID()] = call
	return call, nil
}

func (v *Platform) EndCall(ctx context.Context, id models.CallID) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.enter("EndCall"); err != nil {
		return err
	}
	if _, ok := v.calls[id.CID()]; !ok {
		return services.ErrCallNotFound
	}
	delete(v.calls, id.CID())
	return nil
}

func (v *Platform) QueryCalls(ctx context.Context, limit int) ([]models.CallResponse, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.enter("QueryCalls"); err != nil {
		return nil, err
	}
	calls := lo.Values(v.calls)
	sort.Slice(calls, func(i, j int) bool {
		return calls[i].Call.CreatedAt.After(calls[j].Call.CreatedAt)
	})
	if limit > 0 && limit < len(calls) {
		calls = calls[:limit]
	}
	return calls, nil
}

func (v *Platform) Ping(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enter("Ping")
}

var _ services.Platform = (*Platform)(nil)
