// services/wishlist_service.go
package services

import (
	"errors"

	"github.com/playvault/server/events"
	"github.com/playvault/server/models"
	"github.com/playvault/server/persistence"
)

// WishlistService implements the favorite toggle. Membership is a set:
// toggling the same game twice always lands back where it started.
type WishlistService struct {
	db        persistence.Database
	publisher events.Publisher
}

func NewWishlistService(db persistence.Database, publisher events.Publisher) *WishlistService {
	return &WishlistService{db: db, publisher: publisher}
}

// Get returns the user's wishlist, creating an empty one on first access.
func (s *WishlistService) Get(userID int64) (*models.Wishlist, error) {
	return s.db.GetWishlist(userID)
}

// Toggle adds the game if absent, removes it if present. Returns the
// updated wishlist and whether the game ended up favorited.
func (s *WishlistService) Toggle(userID, gameID int64) (*models.Wishlist, bool, error) {
	if _, err := s.db.GetGame(gameID); err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return nil, false, ErrGameNotFound
		}
		return nil, false, err
	}

	current, err := s.db.GetWishlist(userID)
	if err != nil {
		return nil, false, err
	}

	var updated *models.Wishlist
	added := !current.Contains(gameID)
	if added {
		updated, err = s.db.AddFavorite(userID, gameID)
	} else {
		updated, err = s.db.RemoveFavorite(userID, gameID)
	}
	if err != nil {
		return nil, false, err
	}

	if s.publisher != nil {
		s.publisher.Publish(events.Event{Type: events.TypeWishlistUpdated, Payload: updated})
	}
	return updated, added, nil
}
