package api

import (
	"fmt"
	"time"

	"git.solsynth.dev/hypernet/calling/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/calling/pkg/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type userTokenRequest struct {
	UserID            string `json:"userId" validate:"required" message:"userId is required"`
	CallID            string `json:"callId"`
	CallType          string `json:"callType"`
	ValidityInSeconds int    `json:"validityInSeconds" validate:"gte=0,lte=31536000" message:"validityInSeconds must be between 0 and 31536000"`
}

type callTokenRequest struct {
	UserID            string `json:"userId" validate:"required" message:"userId is required"`
	CallID            string `json:"callId" validate:"required" message:"callId is required"`
	CallType          string `json:"callType"`
	ValidityInSeconds int    `json:"validityInSeconds" validate:"gte=0,lte=31536000" message:"validityInSeconds must be between 0 and 31536000"`
	Role              string `json:"role"`
}

func (v *Handler) generateUserToken(c *fiber.Ctx) error {
	data := exts.Payload[userTokenRequest](c)

	tk, err := v.platform.CreateToken(models.TokenOptions{
		UserID:   data.UserID,
		Validity: time.Duration(data.ValidityInSeconds) * time.Second,
	})
	if err != nil {
		return exts.CollaboratorFailed("Failed to generate token", err)
	}

	return exts.OK(c, models.TokenResponse{
		Token:    tk,
		UserID:   data.UserID,
		ApiKey:   v.platform.ApiKey(),
		CallID:   lo.Ternary(len(data.CallID) > 0, data.CallID, fmt.Sprintf("call_%d", time.Now().UnixMilli())),
		CallType: lo.Ternary(len(data.CallType) > 0, data.CallType, models.DefaultCallType),
	})
}

func (v *Handler) generateCallToken(c *fiber.Ctx) error {
	data := exts.Payload[callTokenRequest](c)
	id := models.CallID{
		Type: lo.Ternary(len(data.CallType) > 0, data.CallType, models.DefaultCallType),
		ID:   data.CallID,
	}

	tk, err := v.platform.CreateToken(models.TokenOptions{
		UserID:   data.UserID,
		Validity: time.Duration(data.ValidityInSeconds) * time.Second,
		Role:     data.Role,
		CallCIDs: []string{id.CID()},
	})
	if err != nil {
		return exts.CollaboratorFailed("Failed to generate call token", err)
	}

	return exts.OK(c, models.TokenResponse{
		Token:    tk,
		UserID:   data.UserID,
		ApiKey:   v.platform.ApiKey(),
		CallID:   id.ID,
		CallType: id.Type,
	})
}
