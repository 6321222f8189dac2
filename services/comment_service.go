// services/comment_service.go
package services

import (
	"errors"
	"time"

	"github.com/playvault/server/events"
	"github.com/playvault/server/models"
	"github.com/playvault/server/persistence"
)

var ErrInvalidComment = errors.New("bình luận không hợp lệ")

// Rating at or above this counts as a positive review.
const positiveRatingThreshold = 3

// CommentService serves game reviews joined with their authors.
type CommentService struct {
	db        persistence.Database
	publisher events.Publisher
}

func NewCommentService(db persistence.Database, publisher events.Publisher) *CommentService {
	return &CommentService{db: db, publisher: publisher}
}

// ListByGame returns a game's comments with user display data attached.
// Comments from unknown users still render, under "Unknown User".
func (s *CommentService) ListByGame(gameID int64) ([]models.CommentWithUser, error) {
	comments, err := s.db.ListCommentsByGame(gameID)
	if err != nil {
		return nil, err
	}
	users, err := s.db.ListUsers()
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	joined := make([]models.CommentWithUser, 0, len(comments))
	for _, c := range comments {
		if c.Date.Date == "" {
			c.Date = models.NewDateField(time.Now().UTC())
		}
		entry := models.CommentWithUser{
			Comment:    c,
			User:       models.UserSummary{Username: "Unknown User"},
			IsPositive: c.Rating >= positiveRatingThreshold,
		}
		if u, ok := byID[c.UserID]; ok {
			entry.User = models.UserSummary{
				ID:       u.ID,
				Name:     u.Name(),
				Username: u.Username,
				DOB:      u.DOB.Date,
			}
		}
		joined = append(joined, entry)
	}
	return joined, nil
}

// Add stores a new comment stamped with the current time.
func (s *CommentService) Add(c *models.Comment) error {
	if c.GameID <= 0 || c.UserID <= 0 || c.Comment == "" || c.Rating < 1 || c.Rating > 5 {
		return ErrInvalidComment
	}
	c.Date = models.NewDateField(time.Now().UTC())
	if err := s.db.CreateComment(c); err != nil {
		return err
	}
	if s.publisher != nil {
		s.publisher.Publish(events.Event{Type: events.TypeCommentAdded, Payload: c})
	}
	return nil
}
