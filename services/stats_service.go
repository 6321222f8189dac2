// services/stats_service.go
package services

import (
	"errors"
	"sort"
	"time"

	"github.com/playvault/server/logger"
	"github.com/playvault/server/models"
	"github.com/playvault/server/persistence"
)

const topGamesLimit = 5

// StatsService computes the monthly dashboard aggregates server-side and
// keeps one persisted snapshot per period for month-over-month deltas.
type StatsService struct {
	db persistence.Database
}

func NewStatsService(db persistence.Database) *StatsService {
	return &StatsService{db: db}
}

// Period formats the snapshot key for a point in time.
func Period(t time.Time) string {
	return t.Format("2006-01")
}

// Current aggregates the month containing now from raw purchases,
// comments, users and the catalog.
func (s *StatsService) Current(now time.Time) (*models.Statistic, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	purchases, err := s.db.ListPurchasesSince(monthStart)
	if err != nil {
		return nil, err
	}
	comments, err := s.db.ListCommentsSince(monthStart)
	if err != nil {
		return nil, err
	}
	games, err := s.db.ListGames()
	if err != nil {
		return nil, err
	}
	newUsers, err := s.db.CountUsersCreatedSince(monthStart)
	if err != nil {
		return nil, err
	}

	gamesByID := make(map[int64]models.Game, len(games))
	for _, g := range games {
		gamesByID[g.ID] = g
	}

	var revenue int64
	spendByUser := make(map[int64]int64)
	purchaseCounts := make(map[int64]int64)
	for _, p := range purchases {
		revenue += p.Price
		spendByUser[p.UserID] += p.Price
		purchaseCounts[p.GameID]++
	}

	commentCounts := make(map[int64]int64)
	for _, c := range comments {
		commentCounts[c.GameID]++
	}

	var avgSpend int64
	if len(spendByUser) > 0 {
		avgSpend = revenue / int64(len(spendByUser))
	}

	stat := &models.Statistic{
		Revenue:           revenue,
		NumOfUser:         newUsers,
		NumOfInteraction:  int64(len(purchases) + len(comments)),
		AvgCusSpend:       avgSpend,
		TopPurchasedGames: topGames(purchaseCounts, gamesByID, func(t *models.TopGame, n int64) { t.PurchaseCount = n }),
		TopCommentedGames: topGames(commentCounts, gamesByID, func(t *models.TopGame, n int64) { t.CommentCount = n }),
		AllComments:       comments,
		Time:              Period(now),
	}
	return stat, nil
}

// Previous returns the most recent persisted snapshot before the current
// period, or an empty statistic when none exists yet.
func (s *StatsService) Previous(now time.Time) (*models.Statistic, error) {
	stat, err := s.db.LoadLatestStatisticBefore(Period(now))
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return &models.Statistic{}, nil
		}
		return nil, err
	}
	return stat, nil
}

// Snapshot recomputes the current period and persists it, overwriting
// any earlier snapshot for the same period.
func (s *StatsService) Snapshot(now time.Time) (*models.Statistic, error) {
	stat, err := s.Current(now)
	if err != nil {
		return nil, err
	}
	if err := s.db.SaveStatistic(stat.Time, stat); err != nil {
		return nil, err
	}
	return stat, nil
}

// Run is the scheduled job body: snapshot and log, never panic the timer.
func (s *StatsService) Run() {
	stat, err := s.Snapshot(time.Now())
	if err != nil {
		logger.Log.Errorf("Statistics snapshot failed: %v", err)
		return
	}
	logger.Log.Infof("Statistics snapshot saved for period %s (revenue %d)", stat.Time, stat.Revenue)
}

func topGames(counts map[int64]int64, gamesByID map[int64]models.Game, setCount func(*models.TopGame, int64)) []models.TopGame {
	type entry struct {
		id    int64
		count int64
	}
	entries := make([]entry, 0, len(counts))
	for id, count := range counts {
		entries = append(entries, entry{id: id, count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].id < entries[j].id
	})

	top := make([]models.TopGame, 0, topGamesLimit)
	for _, e := range entries {
		if len(top) == topGamesLimit {
			break
		}
		game, ok := gamesByID[e.id]
		if !ok {
			// Purchased or commented game no longer in the catalog.
			continue
		}
		t := models.TopGame{ID: game.ID, Name: game.Name, ThumbnailImage: game.ThumbnailImage}
		setCount(&t, e.count)
		top = append(top, t)
	}
	return top
}
