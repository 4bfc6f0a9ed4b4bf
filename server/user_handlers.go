package server

import (
	"fmt"
	"os"
	"path/filepath"

	"stayscape/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// maxAvatarSize limits avatar uploads to 1MB.
const maxAvatarSize = 1024 * 1024

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Name string          `json:"name"`
		Type models.UserType `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	if req.Name != "" {
		if len(req.Name) > 15 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Name must be between 1 and 15 characters"))
		}
		user.Name = req.Name
	}
	if req.Type != "" {
		if !req.Type.IsValid() {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unknown account type"))
		}
		user.Type = req.Type
	}

	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(user)
}

// UploadAvatar handles POST /api/users/me/avatar. The file is stored under
// the configured upload directory with a generated name.
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	file, err := c.FormFile("avatar")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Avatar file is required"))
	}
	if file.Size > maxAvatarSize {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Avatar file exceeds the 1MB limit"))
	}

	ext := filepath.Ext(file.Filename)
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Avatar must be a .jpg or .png image"))
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	if err := os.MkdirAll(s.config.UploadDir, 0o755); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	dest := filepath.Join(s.config.UploadDir, filename)
	if err := c.SaveFile(file, dest); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user.Avatar = dest
	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(user)
}
