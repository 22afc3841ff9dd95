package api

import (
	"git.solsynth.dev/hypernet/calling/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/calling/pkg/internal/models"
	"github.com/gofiber/fiber/v2"
)

const defaultUserPageSize = 25

type listUsersRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=1000" message:"limit must be between 1 and 1000"`
	Offset int `query:"offset" validate:"gte=0" message:"offset must not be negative"`
}

type createUserRequest struct {
	ID     string         `json:"id" validate:"required" message:"User id is required"`
	Name   string         `json:"name"`
	Image  string         `json:"image" validate:"omitempty,url" message:"Image must be a valid URL"`
	Role   string         `json:"role"`
	Custom map[string]any `json:"custom"`
}

type updateUserRequest struct {
	UserID string         `params:"userId" json:"-" query:"-" validate:"required" message:"User id is required"`
	Name   string         `json:"name"`
	Image  string         `json:"image" validate:"omitempty,url" message:"Image must be a valid URL"`
	Custom map[string]any `json:"custom"`
}

type userRequest struct {
	UserID string `params:"userId" json:"-" query:"-" validate:"required" message:"User id is required"`
}

func (v *Handler) listUsers(c *fiber.Ctx) error {
	data := exts.Payload[listUsersRequest](c)
	if data.Limit == 0 {
		data.Limit = defaultUserPageSize
	}

	users, err := v.platform.QueryUsers(c.UserContext(), models.UserQuery{
		Limit:  data.Limit,
		Offset: data.Offset,
	})
	if err != nil {
		return platformError("Failed to list users", err)
	}
	return exts.OK(c, users)
}

func (v *Handler) createUser(c *fiber.Ctx) error {
	data := exts.Payload[createUserRequest](c)

	res, err := v.platform.UpsertUsers(c.UserContext(), []models.User{{
		ID:     data.ID,
		Name:   data.Name,
		Image:  data.Image,
		Role:   data.Role,
		Custom: data.Custom,
	}})
	if err != nil {
		return platformError("Failed to create user", err)
	}
	return exts.Respond(c, fiber.StatusCreated, res[data.ID], "User created successfully")
}

func (v *Handler) getUser(c *fiber.Ctx) error {
	data := exts.Payload[userRequest](c)

	users, err := v.platform.QueryUsers(c.UserContext(), models.UserQuery{ID: data.UserID})
	if err != nil {
		return platformError("Failed to get user", err)
	} else if len(users) == 0 {
		return exts.NotFound("User not found")
	}
	return exts.OK(c, users[0])
}

func (v *Handler) updateUser(c *fiber.Ctx) error {
	data := exts.Payload[updateUserRequest](c)

	res, err := v.platform.UpsertUsers(c.UserContext(), []models.User{{
		ID:     data.UserID,
		Name:   data.Name,
		Image:  data.Image,
		Custom: data.Custom,
	}})
	if err != nil {
		return platformError("Failed to update user", err)
	}
	return exts.Respond(c, fiber.StatusOK, res[data.UserID], "User updated successfully")
}

func (v *Handler) deleteUser(c *fiber.Ctx) error {
	data := exts.Payload[userRequest](c)

	if err := v.platform.DeleteUsers(c.UserContext(), []string{data.UserID}); err != nil {
		return platformError("Failed to delete user", err)
	}
	return exts.Respond(c, fiber.StatusOK, nil, "User deleted successfully")
}
