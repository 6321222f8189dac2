// services/catalog_service.go
package services

import (
	"errors"

	"github.com/playvault/server/format"
	"github.com/playvault/server/models"
	"github.com/playvault/server/persistence"
)

var (
	ErrGameNotFound = errors.New("không tìm thấy game")
	ErrInvalidGame  = errors.New("dữ liệu game không hợp lệ")
)

// CatalogService serves the game catalog. Every game going out the door
// gets its display price attached.
type CatalogService struct {
	db persistence.Database
}

func NewCatalogService(db persistence.Database) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListGames() ([]models.Game, error) {
	games, err := s.db.ListGames()
	if err != nil {
		return nil, err
	}
	for i := range games {
		games[i].DisplayPrice = format.VND(games[i].Price)
	}
	return games, nil
}

func (s *CatalogService) GetGame(id int64) (*models.Game, error) {
	game, err := s.db.GetGame(id)
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	game.DisplayPrice = format.VND(game.Price)
	return game, nil
}

func (s *CatalogService) CreateGame(g *models.Game) error {
	if err := validateGame(g); err != nil {
		return err
	}
	if err := s.db.CreateGame(g); err != nil {
		return err
	}
	g.DisplayPrice = format.VND(g.Price)
	return nil
}

func (s *CatalogService) UpdateGame(g *models.Game) error {
	if err := validateGame(g); err != nil {
		return err
	}
	if err := s.db.UpdateGame(g); err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return ErrGameNotFound
		}
		return err
	}
	g.DisplayPrice = format.VND(g.Price)
	return nil
}

func validateGame(g *models.Game) error {
	if g.Name == "" || g.Price < 0 {
		return ErrInvalidGame
	}
	return nil
}
