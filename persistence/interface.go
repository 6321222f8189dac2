// persistence/interface.go
package persistence

import (
	"fmt"
	"time"

	"github.com/playvault/server/models"
)

// Database 数据库接口
type Database interface {
	// Games
	ListGames() ([]models.Game, error)
	GetGame(id int64) (*models.Game, error)
	CreateGame(g *models.Game) error
	UpdateGame(g *models.Game) error

	// Users
	ListUsers() ([]models.User, error)
	GetUser(id int64) (*models.User, error)
	FindUserByUsername(username string) (*UserRecord, error)
	CreateUser(u *models.User, passwordHash, passwordSalt string) error
	UpdateUser(u *models.User) error
	SetUserStatus(id int64, status string) error
	CountUsersCreatedSince(since time.Time) (int64, error)

	// Comments
	ListComments() ([]models.Comment, error)
	ListCommentsByGame(gameID int64) ([]models.Comment, error)
	ListCommentsSince(since time.Time) ([]models.Comment, error)
	CreateComment(c *models.Comment) error

	// Wishlist. Membership is a set: add and remove are idempotent.
	GetWishlist(userID int64) (*models.Wishlist, error)
	AddFavorite(userID, gameID int64) (*models.Wishlist, error)
	RemoveFavorite(userID, gameID int64) (*models.Wishlist, error)

	// Cart
	ListCartItems(userID int64) ([]int64, error)
	AddCartItem(userID, gameID int64) error
	RemoveCartItems(userID int64, gameIDs []int64) error

	// Checkout moves cart rows into purchase items in one transaction.
	// An empty gameIDs slice checks out the whole cart.
	Checkout(userID int64, gameIDs []int64) (*CheckoutResult, error)
	GetPurchase(userID int64) (*models.Purchase, error)
	ListPurchasesSince(since time.Time) ([]PurchaseEntry, error)

	// Statistics snapshots, keyed by "YYYY-MM" period.
	SaveStatistic(period string, stat *models.Statistic) error
	LoadStatistic(period string) (*models.Statistic, error)
	LoadLatestStatisticBefore(period string) (*models.Statistic, error)

	Close() error
}

// UserRecord pairs a user with its stored credentials for login checks.
// The hash never leaves this package boundary except through here.
type UserRecord struct {
	User         models.User
	PasswordHash string
	PasswordSalt string
}

// CheckoutResult reports what a checkout committed.
type CheckoutResult struct {
	Items []models.PurchasedGame
	Total int64
}

// PurchaseEntry is a flattened purchase row used by the statistics job.
type PurchaseEntry struct {
	UserID      int64
	GameID      int64
	Price       int64
	PurchasedAt time.Time
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
	ErrEmptyCheckout  = fmt.Errorf("no cart items to check out")
	ErrDuplicateUser  = fmt.Errorf("username already exists")
)
