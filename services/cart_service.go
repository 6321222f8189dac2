// services/cart_service.go
package services

import (
	"errors"

	"github.com/playvault/server/events"
	"github.com/playvault/server/format"
	"github.com/playvault/server/models"
	"github.com/playvault/server/persistence"
)

// CartService manages per-user carts as keyed rows: adding twice keeps
// one entry, removal is by game id.
type CartService struct {
	db        persistence.Database
	publisher events.Publisher
}

func NewCartService(db persistence.Database, publisher events.Publisher) *CartService {
	return &CartService{db: db, publisher: publisher}
}

// View assembles the cart with game names, prices and the running total.
// Cart rows whose game has disappeared from the catalog are skipped.
func (s *CartService) View(userID int64) (*models.CartView, error) {
	ids, err := s.db.ListCartItems(userID)
	if err != nil {
		return nil, err
	}

	view := &models.CartView{Items: make([]models.CartItem, 0, len(ids))}
	for _, id := range ids {
		game, err := s.db.GetGame(id)
		if err != nil {
			if errors.Is(err, persistence.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		view.Items = append(view.Items, models.CartItem{
			ID:           game.ID,
			Name:         game.Name,
			Price:        game.Price,
			DisplayPrice: format.VND(game.Price),
		})
		view.Total += game.Price
	}
	view.DisplayTotal = format.VND(view.Total)
	return view, nil
}

// Add puts a game in the cart. Idempotent.
func (s *CartService) Add(userID, gameID int64) error {
	if _, err := s.db.GetGame(gameID); err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return ErrGameNotFound
		}
		return err
	}
	if err := s.db.AddCartItem(userID, gameID); err != nil {
		return err
	}
	s.publishUpdate(userID)
	return nil
}

// Remove drops one game from the cart.
func (s *CartService) Remove(userID, gameID int64) error {
	if err := s.db.RemoveCartItems(userID, []int64{gameID}); err != nil {
		return err
	}
	s.publishUpdate(userID)
	return nil
}

func (s *CartService) publishUpdate(userID int64) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(events.Event{
		Type:    events.TypeCartUpdated,
		Payload: map[string]int64{"user_id": userID},
	})
}
