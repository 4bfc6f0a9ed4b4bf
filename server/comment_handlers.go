package server

import (
	"stayscape/models"

	"github.com/gofiber/fiber/v2"
)

// GetComments returns all comments for an offer (public)
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.Context()
	offerID, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid offer ID"))
	}

	// Verify offer exists
	if _, err := s.offerRepo.GetByID(ctx, uint(offerID), 0); err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	comments, err := s.commentRepo.ListByOffer(ctx, uint(offerID))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(comments)
}

// CreateComment creates a comment on an offer (protected). The offer's
// cached rating and comment count are recomputed afterwards.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	offerID, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid offer ID"))
	}

	// Verify offer exists
	if _, err := s.offerRepo.GetByID(ctx, uint(offerID), 0); err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	var req struct {
		Text   string `json:"text"`
		Rating int    `json:"rating"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if len(req.Text) < 5 || len(req.Text) > 1024 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Text must be between 5 and 1024 characters"))
	}
	if req.Rating < 1 || req.Rating > 5 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Rating must be an integer between 1 and 5"))
	}

	comment := &models.Comment{
		Text:     req.Text,
		Rating:   req.Rating,
		OfferID:  uint(offerID),
		AuthorID: userID,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if err := s.offerRepo.RecomputeRating(ctx, uint(offerID)); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Load created comment with author
	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// DeleteComment deletes a comment (author only) and recomputes the
// offer's cached rating fields.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	commentID, err := c.ParamsInt("commentId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid comment ID"))
	}

	comment, err := s.commentRepo.GetByID(ctx, uint(commentID))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	if comment.AuthorID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only delete your own comments"))
	}

	if err := s.commentRepo.Delete(ctx, uint(commentID)); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if err := s.offerRepo.RecomputeRating(ctx, comment.OfferID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
