package repository

import (
	"context"
	"testing"
	"time"

	"stayscape/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentListByOffer(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewCommentRepository(db)

	user := createTestUser(t, db, "author@example.com")
	offer := createTestOffer(t, db, user.ID)
	other := createTestOffer(t, db, user.ID, func(o *models.Offer) {
		o.Title = "A different listing entirely"
	})

	oldest := addComment(t, db, offer.ID, user.ID, 3, 3*time.Hour)
	newest := addComment(t, db, offer.ID, user.ID, 5, time.Minute)
	addComment(t, db, other.ID, user.ID, 1, time.Hour)

	comments, err := repo.ListByOffer(ctx, offer.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	// Newest first, scoped to the offer, author loaded.
	assert.Equal(t, newest.ID, comments[0].ID)
	assert.Equal(t, oldest.ID, comments[1].ID)
	assert.Equal(t, user.ID, comments[0].Author.ID)
}

func TestCommentDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewCommentRepository(db)

	user := createTestUser(t, db, "author@example.com")
	offer := createTestOffer(t, db, user.ID)
	comment := addComment(t, db, offer.ID, user.ID, 4, time.Hour)

	require.NoError(t, repo.Delete(ctx, comment.ID))

	_, err := repo.GetByID(ctx, comment.ID)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	// Deleting an absent comment reports not found.
	err = repo.Delete(ctx, comment.ID)
	require.Error(t, err)
}

func TestCommentDeleteByOffer(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewCommentRepository(db)

	user := createTestUser(t, db, "author@example.com")
	offer := createTestOffer(t, db, user.ID)
	other := createTestOffer(t, db, user.ID, func(o *models.Offer) {
		o.Title = "A different listing entirely"
	})

	addComment(t, db, offer.ID, user.ID, 3, 2*time.Hour)
	addComment(t, db, offer.ID, user.ID, 4, time.Hour)
	addComment(t, db, other.ID, user.ID, 5, time.Hour)

	deleted, err := repo.DeleteByOffer(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	remaining, err := repo.ListByOffer(ctx, offer.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	untouched, err := repo.ListByOffer(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, untouched, 1)
}

func TestCommentCreate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewCommentRepository(db)

	user := createTestUser(t, db, "author@example.com")
	offer := createTestOffer(t, db, user.ID)

	comment := &models.Comment{
		Text:     "Spotless rooms and a great breakfast",
		Rating:   5,
		OfferID:  offer.ID,
		AuthorID: user.ID,
	}
	require.NoError(t, repo.Create(ctx, comment))
	require.NotZero(t, comment.ID)

	got, err := repo.GetByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, comment.Text, got.Text)
	assert.Equal(t, 5, got.Rating)
	assert.Equal(t, user.ID, got.Author.ID)
}
