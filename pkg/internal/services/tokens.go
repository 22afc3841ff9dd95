package services

import (
	"fmt"

	"git.solsynth.dev/hypernet/calling/pkg/internal/models"
	jsoniter "github.com/json-iterator/go"
	"github.com/livekit/protocol/auth"
	"github.com/samber/lo"
)

var adminRoles = []string{"admin", "moderator", "host"}

type TokenIssuer struct {
	apiKey    string
	apiSecret string
}

func NewTokenIssuer(apiKey, apiSecret string) *TokenIssuer {
	return &TokenIssuer{apiKey: apiKey, apiSecret: apiSecret}
}

func (v *TokenIssuer) ApiKey() string {
	return v.apiKey
}

// CreateToken signs an access token for opts.UserID. Without call cids the
// token identifies the user only, with one cid it grants joining that call.
func (v *TokenIssuer) CreateToken(opts models.TokenOptions) (string, error) {
	if len(opts.CallCIDs) > 1 {
		return "", fmt.Errorf("a call token can only be scoped to a single call, got %d", len(opts.CallCIDs))
	}

	grant := &auth.VideoGrant{RoomList: true}
	if len(opts.CallCIDs) == 1 {
		grant = &auth.VideoGrant{
			Room:      opts.CallCIDs[0],
			RoomJoin:  true,
			RoomAdmin: lo.Contains(adminRoles, opts.Role),
		}
	}

	validity := lo.Ternary(opts.Validity > 0, opts.Validity, models.DefaultTokenValidity)

	tk := auth.NewAccessToken(v.apiKey, v.apiSecret)
	tk.AddGrant(grant).
		SetIdentity(opts.UserID).
		SetValidFor(validity)

	if len(opts.Role) > 0 {
		metadata, _ := jsoniter.MarshalToString(map[string]any{
			"role":      opts.Role,
			"call_cids": opts.CallCIDs,
		})
		tk.SetMetadata(metadata)
	}

	return tk.ToJWT()
}
