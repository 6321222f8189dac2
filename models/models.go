package models

import (
	"time"
)

// DateField mirrors the extended-JSON date wrapper used throughout the
// storefront documents: {"$date": "2024-01-02T15:04:05Z"}.
type DateField struct {
	Date string `json:"$date"`
}

// NewDateField wraps t in the wire format.
func NewDateField(t time.Time) DateField {
	return DateField{Date: t.UTC().Format(time.RFC3339)}
}

// Time parses the wrapped timestamp, returning the zero time on bad input.
func (d DateField) Time() time.Time {
	t, err := time.Parse(time.RFC3339, d.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SystemRequirements describes a hardware configuration block on a game.
type SystemRequirements struct {
	OS   string `json:"os"`
	CPU  string `json:"cpu"`
	RAM  string `json:"ram"`
	GPU  string `json:"gpu"`
	Disk string `json:"disk"`
}

// GameDetails carries the nested publisher block of a game document.
type GameDetails struct {
	Publisher     string `json:"publisher"`
	Describe      string `json:"describe"`
	AgeLimit      int    `json:"age-limit"`
	PublishedDate string `json:"published_date"`
}

// Game is a catalog entry. Price is in VND (smallest unit, no decimals).
// DisplayPrice is derived server-side and never stored.
type Game struct {
	ID                       int64              `json:"id"`
	Name                     string             `json:"name"`
	Price                    int64              `json:"price"`
	DisplayPrice             string             `json:"display_price,omitempty"`
	Tags                     []string           `json:"tags"`
	Details                  GameDetails        `json:"details"`
	Images                   []string           `json:"images"`
	ThumbnailImage           string             `json:"thumbnail_image"`
	MinimumConfiguration     SystemRequirements `json:"minimum_configuration"`
	RecommendedConfiguration SystemRequirements `json:"recommended_configuration"`
}

// User statuses. Users are never hard-deleted.
const (
	UserStatusActive  = "active"
	UserStatusDeleted = "deleted"
)

// User is an account document. Password is accepted on registration and
// never serialized back out.
type User struct {
	ID       int64     `json:"id"`
	FName    string    `json:"f_name"`
	LName    string    `json:"l_name"`
	Username string    `json:"username"`
	Password string    `json:"password,omitempty"`
	Email    string    `json:"email"`
	DOB      DateField `json:"dob"`
	Avatar   string    `json:"avatar"`
	Gender   string    `json:"gender"`
	Address  string    `json:"address"`
	Status   string    `json:"status"`
}

// Name returns the display name used in login responses.
func (u *User) Name() string {
	return u.FName + " " + u.LName
}

// UserSummary is the sanitized identity returned from /login.
type UserSummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	DOB      string `json:"dob"`
}

// Comment is a game review with a 1-5 rating.
type Comment struct {
	ID      int64     `json:"id"`
	GameID  int64     `json:"game_id"`
	UserID  int64     `json:"user_id"`
	Comment string    `json:"comment"`
	Rating  int       `json:"rating"`
	Date    DateField `json:"date"`
}

// CommentWithUser joins the commenting user onto a comment for display.
type CommentWithUser struct {
	Comment
	User       UserSummary `json:"user"`
	IsPositive bool        `json:"is_positive"`
}

// Wishlist holds a user's favorited game ids. One per user, created
// lazily on first favorite.
type Wishlist struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	FavGameIDs []int64 `json:"fav_game_id"`
}

// Contains reports whether gameID is favorited.
func (w *Wishlist) Contains(gameID int64) bool {
	for _, id := range w.FavGameIDs {
		if id == gameID {
			return true
		}
	}
	return false
}

// CartItem is a cart row joined with its game for display.
type CartItem struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	DisplayPrice string `json:"display_price"`
}

// CartView is the response for GET /cart.
type CartView struct {
	Items        []CartItem `json:"items"`
	Total        int64      `json:"total"`
	DisplayTotal string     `json:"display_total"`
}

// PurchasedGame is one entry of a purchase record.
type PurchasedGame struct {
	GameID      int64     `json:"game_id"`
	Price       int64     `json:"price"`
	PurchasedAt DateField `json:"purchased_at"`
}

// Purchase is the per-user purchase record: the append-only list of all
// games ever bought. The document id equals the user id.
type Purchase struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	GamesPurchased []PurchasedGame `json:"games_purchased"`
}

// TopGame is a leaderboard entry in the monthly statistics.
type TopGame struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	ThumbnailImage string `json:"thumbnail_image"`
	PurchaseCount  int64  `json:"purchaseCount,omitempty"`
	CommentCount   int64  `json:"commentCount,omitempty"`
}

// Statistic is the monthly aggregate shown on the admin dashboard.
// Time is the period key in "YYYY-MM" form.
type Statistic struct {
	Revenue           int64     `json:"revenue"`
	NumOfUser         int64     `json:"num_of_user"`
	NumOfInteraction  int64     `json:"num_of_interaction"`
	AvgCusSpend       int64     `json:"avg_cus_spend"`
	TopPurchasedGames []TopGame `json:"top_purchased_games"`
	TopCommentedGames []TopGame `json:"top_commented_games"`
	AllComments       []Comment `json:"all_comments,omitempty"`
	Time              string    `json:"time"`
}

// LoginRequest matches the original /login contract: the email field
// carries the username.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the fabricated access token and user summary.
type LoginResponse struct {
	AccessToken string      `json:"accessToken"`
	User        UserSummary `json:"user"`
}

// APIError is the JSON error body for non-2xx responses.
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
