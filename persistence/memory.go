// persistence/memory.go
package persistence

import (
	"sort"
	"sync"
	"time"

	"github.com/playvault/server/models"
)

// MemoryDatabase is an in-process Database for tests and local
// development without Postgres. One mutex guards everything, so the
// checkout path is atomic the same way the SQL implementation is.
type MemoryDatabase struct {
	mutex sync.RWMutex

	games      map[int64]models.Game
	nextGameID int64

	users        map[int64]models.User
	creds        map[int64]credentials
	userCreated  map[int64]time.Time
	nextUserID   int64

	comments      []models.Comment
	nextCommentID int64

	wishlists      map[int64][]int64 // userID -> fav game ids
	wishlistIDs    map[int64]int64   // userID -> wishlist row id
	nextWishlistID int64

	carts map[int64][]int64 // userID -> game ids

	purchases []PurchaseEntry

	stats map[string]models.Statistic
}

type credentials struct {
	hash string
	salt string
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		games:       make(map[int64]models.Game),
		users:       make(map[int64]models.User),
		creds:       make(map[int64]credentials),
		userCreated: make(map[int64]time.Time),
		wishlists:   make(map[int64][]int64),
		wishlistIDs: make(map[int64]int64),
		carts:       make(map[int64][]int64),
		stats:       make(map[string]models.Statistic),
	}
}

// --- Games ---

func (m *MemoryDatabase) ListGames() ([]models.Game, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	games := make([]models.Game, 0, len(m.games))
	for _, g := range m.games {
		games = append(games, g)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	return games, nil
}

func (m *MemoryDatabase) GetGame(id int64) (*models.Game, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	g, ok := m.games[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &g, nil
}

func (m *MemoryDatabase) CreateGame(g *models.Game) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.nextGameID++
	g.ID = m.nextGameID
	m.games[g.ID] = *g
	return nil
}

func (m *MemoryDatabase) UpdateGame(g *models.Game) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.games[g.ID]; !ok {
		return ErrRecordNotFound
	}
	m.games[g.ID] = *g
	return nil
}

// --- Users ---

func (m *MemoryDatabase) ListUsers() ([]models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MemoryDatabase) GetUser(id int64) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &u, nil
}

func (m *MemoryDatabase) FindUserByUsername(username string) (*UserRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for id, u := range m.users {
		if u.Username == username {
			c := m.creds[id]
			return &UserRecord{User: u, PasswordHash: c.hash, PasswordSalt: c.salt}, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m *MemoryDatabase) CreateUser(u *models.User, passwordHash, passwordSalt string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username {
			return ErrDuplicateUser
		}
	}

	m.nextUserID++
	u.ID = m.nextUserID
	u.Status = models.UserStatusActive
	stored := *u
	stored.Password = ""
	m.users[u.ID] = stored
	m.creds[u.ID] = credentials{hash: passwordHash, salt: passwordSalt}
	m.userCreated[u.ID] = time.Now()
	return nil
}

func (m *MemoryDatabase) UpdateUser(u *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	existing, ok := m.users[u.ID]
	if !ok {
		return ErrRecordNotFound
	}
	existing.FName = u.FName
	existing.LName = u.LName
	existing.Email = u.Email
	existing.DOB = u.DOB
	existing.Avatar = u.Avatar
	existing.Gender = u.Gender
	existing.Address = u.Address
	m.users[u.ID] = existing
	return nil
}

func (m *MemoryDatabase) SetUserStatus(id int64, status string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrRecordNotFound
	}
	u.Status = status
	m.users[id] = u
	return nil
}

func (m *MemoryDatabase) CountUsersCreatedSince(since time.Time) (int64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var count int64
	for _, created := range m.userCreated {
		if !created.Before(since) {
			count++
		}
	}
	return count, nil
}

// --- Comments ---

func (m *MemoryDatabase) ListComments() ([]models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]models.Comment{}, m.comments...), nil
}

func (m *MemoryDatabase) ListCommentsByGame(gameID int64) ([]models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []models.Comment
	for _, c := range m.comments {
		if c.GameID == gameID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *MemoryDatabase) ListCommentsSince(since time.Time) ([]models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []models.Comment
	for _, c := range m.comments {
		if !c.Date.Time().Before(since) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *MemoryDatabase) CreateComment(c *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if c.Date.Date == "" {
		c.Date = models.NewDateField(time.Now().UTC())
	}
	m.nextCommentID++
	c.ID = m.nextCommentID
	m.comments = append(m.comments, *c)
	return nil
}

// --- Wishlist ---

func (m *MemoryDatabase) GetWishlist(userID int64) (*models.Wishlist, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.wishlistLocked(userID), nil
}

func (m *MemoryDatabase) wishlistLocked(userID int64) *models.Wishlist {
	if _, ok := m.wishlistIDs[userID]; !ok {
		m.nextWishlistID++
		m.wishlistIDs[userID] = m.nextWishlistID
		m.wishlists[userID] = []int64{}
	}
	return &models.Wishlist{
		ID:         m.wishlistIDs[userID],
		UserID:     userID,
		FavGameIDs: append([]int64{}, m.wishlists[userID]...),
	}
}

func (m *MemoryDatabase) AddFavorite(userID, gameID int64) (*models.Wishlist, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.wishlistLocked(userID)
	for _, id := range m.wishlists[userID] {
		if id == gameID {
			return m.wishlistLocked(userID), nil
		}
	}
	m.wishlists[userID] = append(m.wishlists[userID], gameID)
	return m.wishlistLocked(userID), nil
}

func (m *MemoryDatabase) RemoveFavorite(userID, gameID int64) (*models.Wishlist, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.wishlistLocked(userID)
	kept := m.wishlists[userID][:0]
	for _, id := range m.wishlists[userID] {
		if id != gameID {
			kept = append(kept, id)
		}
	}
	m.wishlists[userID] = kept
	return m.wishlistLocked(userID), nil
}

// --- Cart ---

func (m *MemoryDatabase) ListCartItems(userID int64) ([]int64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]int64{}, m.carts[userID]...), nil
}

func (m *MemoryDatabase) AddCartItem(userID, gameID int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, id := range m.carts[userID] {
		if id == gameID {
			return nil
		}
	}
	m.carts[userID] = append(m.carts[userID], gameID)
	return nil
}

func (m *MemoryDatabase) RemoveCartItems(userID int64, gameIDs []int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.removeCartItemsLocked(userID, gameIDs)
	return nil
}

func (m *MemoryDatabase) removeCartItemsLocked(userID int64, gameIDs []int64) {
	drop := make(map[int64]bool, len(gameIDs))
	for _, id := range gameIDs {
		drop[id] = true
	}
	kept := m.carts[userID][:0]
	for _, id := range m.carts[userID] {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	m.carts[userID] = kept
}

// --- Checkout / Purchases ---

func (m *MemoryDatabase) Checkout(userID int64, gameIDs []int64) (*CheckoutResult, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	selected := make(map[int64]bool, len(gameIDs))
	for _, id := range gameIDs {
		selected[id] = true
	}

	var picked []int64
	for _, id := range m.carts[userID] {
		if len(gameIDs) == 0 || selected[id] {
			picked = append(picked, id)
		}
	}
	if len(picked) == 0 {
		return nil, ErrEmptyCheckout
	}

	now := time.Now().UTC()
	result := &CheckoutResult{}
	entries := make([]PurchaseEntry, 0, len(picked))
	for _, id := range picked {
		game, ok := m.games[id]
		if !ok {
			return nil, ErrRecordNotFound
		}
		entries = append(entries, PurchaseEntry{
			UserID:      userID,
			GameID:      id,
			Price:       game.Price,
			PurchasedAt: now,
		})
		result.Items = append(result.Items, models.PurchasedGame{
			GameID:      id,
			Price:       game.Price,
			PurchasedAt: models.NewDateField(now),
		})
		result.Total += game.Price
	}

	m.purchases = append(m.purchases, entries...)
	m.removeCartItemsLocked(userID, picked)
	return result, nil
}

func (m *MemoryDatabase) GetPurchase(userID int64) (*models.Purchase, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	record := &models.Purchase{ID: userID, UserID: userID}
	for _, p := range m.purchases {
		if p.UserID == userID {
			record.GamesPurchased = append(record.GamesPurchased, models.PurchasedGame{
				GameID:      p.GameID,
				Price:       p.Price,
				PurchasedAt: models.NewDateField(p.PurchasedAt),
			})
		}
	}
	if len(record.GamesPurchased) == 0 {
		return nil, ErrRecordNotFound
	}
	return record, nil
}

func (m *MemoryDatabase) ListPurchasesSince(since time.Time) ([]PurchaseEntry, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []PurchaseEntry
	for _, p := range m.purchases {
		if !p.PurchasedAt.Before(since) {
			result = append(result, p)
		}
	}
	return result, nil
}

// --- Statistics ---

func (m *MemoryDatabase) SaveStatistic(period string, stat *models.Statistic) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.stats[period] = *stat
	return nil
}

func (m *MemoryDatabase) LoadStatistic(period string) (*models.Statistic, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	stat, ok := m.stats[period]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &stat, nil
}

func (m *MemoryDatabase) LoadLatestStatisticBefore(period string) (*models.Statistic, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var best string
	for p := range m.stats {
		if p < period && p > best {
			best = p
		}
	}
	if best == "" {
		return nil, ErrRecordNotFound
	}
	stat := m.stats[best]
	return &stat, nil
}

func (m *MemoryDatabase) Close() error {
	return nil
}
