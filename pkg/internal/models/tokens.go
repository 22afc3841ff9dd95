package models

import "time"

const DefaultTokenValidity = 3600 * time.Second

type TokenOptions struct {
	UserID   string
	Validity time.Duration
	Role     string
	// CallCIDs limits the token to the listed calls, empty means a plain user token.
	CallCIDs []string
}

type TokenResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	ApiKey   string `json:"apiKey"`
	CallID   string `json:"callId,omitempty"`
	CallType string `json:"callType,omitempty"`
}
