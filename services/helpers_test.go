package services

import (
	"fmt"
	"os"
	"testing"

	"github.com/playvault/server/events"
	"github.com/playvault/server/logger"
	"github.com/playvault/server/models"
	"github.com/playvault/server/persistence"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(evt events.Event) {
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) typesSeen() []string {
	var types []string
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

// seedGames creates n games with price = id * 100000 and returns their ids.
func seedGames(t *testing.T, db persistence.Database, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 1; i <= n; i++ {
		game := &models.Game{
			Name:           fmt.Sprintf("Game %d", i),
			Price:          int64(i) * 100000,
			ThumbnailImage: "https://img.example/thumb.jpg",
		}
		if err := db.CreateGame(game); err != nil {
			t.Fatalf("seed game: %v", err)
		}
		ids = append(ids, game.ID)
	}
	return ids
}
