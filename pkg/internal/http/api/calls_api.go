package api

import (
	"git.solsynth.dev/hypernet/calling/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/calling/pkg/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

const callPageSize = 25

type createCallRequest struct {
	CallID    string               `json:"callId" validate:"required" message:"Call id is required"`
	CallType  string               `json:"callType"`
	CreatedBy string               `json:"createdBy" validate:"required" message:"createdBy (user ID) is required"`
	Members   []models.CallMember  `json:"members" validate:"omitempty,dive"`
	Settings  *models.CallSettings `json:"settings"`
}

type callRequest struct {
	CallType string `params:"callType" json:"-" query:"-" validate:"required" message:"Call type is required"`
	CallID   string `params:"callId" json:"-" query:"-" validate:"required" message:"Call id is required"`
}

func (v callRequest) id() models.CallID {
	return models.CallID{Type: v.CallType, ID: v.CallID}
}

type updateCallRequest struct {
	CallType string              `params:"callType" json:"-" query:"-" validate:"required" message:"Call type is required"`
	CallID   string              `params:"callId" json:"-" query:"-" validate:"required" message:"Call id is required"`
	Settings models.CallSettings `json:"settings"`
}

func (v *Handler) listCalls(c *fiber.Ctx) error {
	calls, err := v.platform.QueryCalls(c.UserContext(), callPageSize)
	if err != nil {
		return platformError("Failed to list calls", err)
	}
	return exts.OK(c, calls)
}

func (v *Handler) createCall(c *fiber.Ctx) error {
	data := exts.Payload[createCallRequest](c)
	id := models.CallID{
		Type: lo.Ternary(len(data.CallType) > 0, data.CallType, models.DefaultCallType),
		ID:   data.CallID,
	}

	call, err := v.platform.GetOrCreateCall(c.UserContext(), id, models.CallCreateOptions{
		CreatedBy: data.CreatedBy,
		Members:   data.Members,
		Settings:  data.Settings,
	})
	if err != nil {
		return platformError("Failed to create call", err)
	}
	return exts.Respond(c, fiber.StatusCreated, call, "Call created successfully")
}

func (v *Handler) getCall(c *fiber.Ctx) error {
	data := exts.Payload[callRequest](c)

	call, err := v.platform.GetCall(c.UserContext(), data.id())
	if err != nil {
		return platformError("Failed to get call", err)
	}
	return exts.OK(c, call)
}

func (v *Handler) updateCall(c *fiber.Ctx) error {
	data := exts.Payload[updateCallRequest](c)
	id := models.CallID{Type: data.CallType, ID: data.CallID}

	call, err := v.platform.UpdateCall(c.UserContext(), id, data.Settings)
	if err != nil {
		return platformError("Failed to update call", err)
	}
	return exts.Respond(c, fiber.StatusOK, call, "Call updated successfully")
}

func (v *Handler) endCall(c *fiber.Ctx) error {
	data := exts.Payload[callRequest](c)

	if err := v.platform.EndCall(c.UserContext(), data.id()); err != nil {
		return platformError("Failed to end call", err)
	}
	return exts.Respond(c, fiber.StatusOK, nil, "Call ended successfully")
}
