package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GormGame 游戏商品模型
type GormGame struct {
	gorm.Model
	Name                     string                 `gorm:"not null;index"`
	Price                    int64                  `gorm:"not null;default:0"`
	Tags                     pq.StringArray         `gorm:"type:text[]"`
	Publisher                string                 `gorm:""`
	Describe                 string                 `gorm:"type:text"`
	AgeLimit                 int                    `gorm:"default:0"`
	PublishedDate            string                 `gorm:""`
	Images                   pq.StringArray         `gorm:"type:text[]"`
	ThumbnailImage           string                 `gorm:""`
	MinimumConfiguration     map[string]interface{} `gorm:"type:jsonb;serializer:json"`
	RecommendedConfiguration map[string]interface{} `gorm:"type:jsonb;serializer:json"`
}

// GormUser 用户账号模型
type GormUser struct {
	gorm.Model
	FName        string `gorm:"not null"`
	LName        string `gorm:"not null"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	PasswordSalt string `gorm:"not null"`
	Email        string `gorm:""`
	DOB          time.Time
	Avatar       string `gorm:""`
	Gender       string `gorm:""`
	Address      string `gorm:""`
	Status       string `gorm:"not null;default:active"`
}

// GormComment 游戏评论模型
type GormComment struct {
	gorm.Model
	GameID      int64  `gorm:"index;not null"`
	UserID      int64  `gorm:"index;not null"`
	Comment     string `gorm:"type:text;not null"`
	Rating      int    `gorm:"not null"`
	CommentedAt time.Time
}

// GormWishlist 收藏夹模型，每个用户一行
type GormWishlist struct {
	gorm.Model
	UserID     int64         `gorm:"uniqueIndex;not null"`
	FavGameIDs pq.Int64Array `gorm:"type:bigint[]"`
}

// GormCartItem 购物车条目，(user_id, game_id) 唯一
type GormCartItem struct {
	gorm.Model
	UserID int64 `gorm:"uniqueIndex:idx_cart_user_game;not null"`
	GameID int64 `gorm:"uniqueIndex:idx_cart_user_game;not null"`
}

// GormPurchaseItem 已购条目，只追加不修改
type GormPurchaseItem struct {
	gorm.Model
	UserID      int64 `gorm:"index;not null"`
	GameID      int64 `gorm:"not null"`
	Price       int64 `gorm:"not null"`
	PurchasedAt time.Time
}

// GormStatistic 月度统计快照，每个周期一行
type GormStatistic struct {
	gorm.Model
	Period   string                 `gorm:"uniqueIndex;not null"` // "YYYY-MM"
	Snapshot map[string]interface{} `gorm:"type:jsonb;serializer:json;not null"`
}
