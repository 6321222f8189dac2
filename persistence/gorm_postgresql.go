// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/lib/pq"
	"github.com/playvault/server/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold: time.Second,   // 慢SQL阈值
			LogLevel:      logger.Silent, // 日志级别
			Colorful:      false,         // 禁用彩色打印
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// autoMigrate 自动迁移表结构
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GormGame{},
		&models.GormUser{},
		&models.GormComment{},
		&models.GormWishlist{},
		&models.GormCartItem{},
		&models.GormPurchaseItem{},
		&models.GormStatistic{},
	)
}

// --- Games ---

func (p *GormPostgreSQL) ListGames() ([]models.Game, error) {
	var rows []models.GormGame
	if err := p.db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	games := make([]models.Game, 0, len(rows))
	for i := range rows {
		games = append(games, gameToWire(&rows[i]))
	}
	return games, nil
}

func (p *GormPostgreSQL) GetGame(id int64) (*models.Game, error) {
	var row models.GormGame
	if err := p.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	game := gameToWire(&row)
	return &game, nil
}

func (p *GormPostgreSQL) CreateGame(g *models.Game) error {
	row := gameToGorm(g)
	if err := p.db.Create(row).Error; err != nil {
		return err
	}
	g.ID = int64(row.ID)
	return nil
}

func (p *GormPostgreSQL) UpdateGame(g *models.Game) error {
	var row models.GormGame
	if err := p.db.First(&row, g.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		return err
	}
	updated := gameToGorm(g)
	updated.ID = row.ID
	updated.CreatedAt = row.CreatedAt
	return p.db.Save(updated).Error
}

// --- Users ---

func (p *GormPostgreSQL) ListUsers() ([]models.User, error) {
	var rows []models.GormUser
	if err := p.db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(rows))
	for i := range rows {
		users = append(users, userToWire(&rows[i]))
	}
	return users, nil
}

func (p *GormPostgreSQL) GetUser(id int64) (*models.User, error) {
	var row models.GormUser
	if err := p.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	user := userToWire(&row)
	return &user, nil
}

func (p *GormPostgreSQL) FindUserByUsername(username string) (*UserRecord, error) {
	var row models.GormUser
	if err := p.db.Where("username = ?", username).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &UserRecord{
		User:         userToWire(&row),
		PasswordHash: row.PasswordHash,
		PasswordSalt: row.PasswordSalt,
	}, nil
}

func (p *GormPostgreSQL) CreateUser(u *models.User, passwordHash, passwordSalt string) error {
	var existing models.GormUser
	err := p.db.Where("username = ?", u.Username).First(&existing).Error
	if err == nil {
		return ErrDuplicateUser
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	row := models.GormUser{
		FName:        u.FName,
		LName:        u.LName,
		Username:     u.Username,
		PasswordHash: passwordHash,
		PasswordSalt: passwordSalt,
		Email:        u.Email,
		DOB:          u.DOB.Time(),
		Avatar:       u.Avatar,
		Gender:       u.Gender,
		Address:      u.Address,
		Status:       models.UserStatusActive,
	}
	if err := p.db.Create(&row).Error; err != nil {
		return err
	}
	u.ID = int64(row.ID)
	u.Status = row.Status
	return nil
}

func (p *GormPostgreSQL) UpdateUser(u *models.User) error {
	var row models.GormUser
	if err := p.db.First(&row, u.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		return err
	}
	row.FName = u.FName
	row.LName = u.LName
	row.Email = u.Email
	row.DOB = u.DOB.Time()
	row.Avatar = u.Avatar
	row.Gender = u.Gender
	row.Address = u.Address
	return p.db.Save(&row).Error
}

func (p *GormPostgreSQL) SetUserStatus(id int64, status string) error {
	result := p.db.Model(&models.GormUser{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (p *GormPostgreSQL) CountUsersCreatedSince(since time.Time) (int64, error) {
	var count int64
	err := p.db.Model(&models.GormUser{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

// --- Comments ---

func (p *GormPostgreSQL) ListComments() ([]models.Comment, error) {
	return p.listComments(p.db.Order("commented_at"))
}

func (p *GormPostgreSQL) ListCommentsByGame(gameID int64) ([]models.Comment, error) {
	return p.listComments(p.db.Where("game_id = ?", gameID).Order("commented_at"))
}

func (p *GormPostgreSQL) ListCommentsSince(since time.Time) ([]models.Comment, error) {
	return p.listComments(p.db.Where("commented_at >= ?", since).Order("commented_at"))
}

func (p *GormPostgreSQL) listComments(q *gorm.DB) ([]models.Comment, error) {
	var rows []models.GormComment
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	comments := make([]models.Comment, 0, len(rows))
	for i := range rows {
		comments = append(comments, commentToWire(&rows[i]))
	}
	return comments, nil
}

func (p *GormPostgreSQL) CreateComment(c *models.Comment) error {
	when := c.Date.Time()
	if when.IsZero() {
		when = time.Now().UTC()
		c.Date = models.NewDateField(when)
	}
	row := models.GormComment{
		GameID:      c.GameID,
		UserID:      c.UserID,
		Comment:     c.Comment,
		Rating:      c.Rating,
		CommentedAt: when,
	}
	if err := p.db.Create(&row).Error; err != nil {
		return err
	}
	c.ID = int64(row.ID)
	return nil
}

// --- Wishlist ---

// GetWishlist returns the user's wishlist, creating an empty one on first
// access so every caller sees the same document id afterwards.
func (p *GormPostgreSQL) GetWishlist(userID int64) (*models.Wishlist, error) {
	var row models.GormWishlist
	err := p.db.Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.GormWishlist{UserID: userID, FavGameIDs: pq.Int64Array{}}
		if createErr := p.db.Create(&row).Error; createErr != nil {
			// Lost the race against a concurrent first favorite: the
			// unique index on user_id rejected our row, so read theirs.
			if readErr := p.db.Where("user_id = ?", userID).First(&row).Error; readErr != nil {
				return nil, createErr
			}
		}
	} else if err != nil {
		return nil, err
	}
	w := wishlistToWire(&row)
	return &w, nil
}

// AddFavorite appends gameID to the user's favorites unless already present.
// The guard runs inside Postgres so concurrent toggles cannot introduce
// duplicates.
func (p *GormPostgreSQL) AddFavorite(userID, gameID int64) (*models.Wishlist, error) {
	if _, err := p.GetWishlist(userID); err != nil {
		return nil, err
	}
	err := p.db.Model(&models.GormWishlist{}).
		Where("user_id = ?", userID).
		Update("fav_game_ids", gorm.Expr(
			"CASE WHEN ?::bigint = ANY(fav_game_ids) THEN fav_game_ids ELSE array_append(fav_game_ids, ?::bigint) END",
			gameID, gameID)).Error
	if err != nil {
		return nil, err
	}
	return p.GetWishlist(userID)
}

// RemoveFavorite removes every occurrence of gameID from the favorites.
func (p *GormPostgreSQL) RemoveFavorite(userID, gameID int64) (*models.Wishlist, error) {
	if _, err := p.GetWishlist(userID); err != nil {
		return nil, err
	}
	err := p.db.Model(&models.GormWishlist{}).
		Where("user_id = ?", userID).
		Update("fav_game_ids", gorm.Expr("array_remove(fav_game_ids, ?::bigint)", gameID)).Error
	if err != nil {
		return nil, err
	}
	return p.GetWishlist(userID)
}

// --- Cart ---

func (p *GormPostgreSQL) ListCartItems(userID int64) ([]int64, error) {
	var rows []models.GormCartItem
	if err := p.db.Where("user_id = ?", userID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.GameID)
	}
	return ids, nil
}

// AddCartItem is idempotent: re-adding a game already in the cart is a no-op.
func (p *GormPostgreSQL) AddCartItem(userID, gameID int64) error {
	var row models.GormCartItem
	return p.db.
		Where("user_id = ? AND game_id = ?", userID, gameID).
		FirstOrCreate(&row, models.GormCartItem{UserID: userID, GameID: gameID}).Error
}

func (p *GormPostgreSQL) RemoveCartItems(userID int64, gameIDs []int64) error {
	if len(gameIDs) == 0 {
		return nil
	}
	return p.db.
		Where("user_id = ? AND game_id IN ?", userID, gameIDs).
		Delete(&models.GormCartItem{}).Error
}

// --- Checkout / Purchases ---

// Checkout resolves current prices, records purchase items and clears the
// purchased cart rows in a single transaction. Either everything commits
// or the cart is untouched.
func (p *GormPostgreSQL) Checkout(userID int64, gameIDs []int64) (*CheckoutResult, error) {
	result := &CheckoutResult{}
	err := p.db.Transaction(func(tx *gorm.DB) error {
		var items []models.GormCartItem
		q := tx.Where("user_id = ?", userID)
		if len(gameIDs) > 0 {
			q = q.Where("game_id IN ?", gameIDs)
		}
		if err := q.Order("id").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCheckout
		}

		now := time.Now().UTC()
		purchased := make([]models.GormPurchaseItem, 0, len(items))
		cleared := make([]int64, 0, len(items))
		for _, item := range items {
			var game models.GormGame
			if err := tx.First(&game, item.GameID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrRecordNotFound
				}
				return err
			}
			purchased = append(purchased, models.GormPurchaseItem{
				UserID:      userID,
				GameID:      item.GameID,
				Price:       game.Price,
				PurchasedAt: now,
			})
			cleared = append(cleared, item.GameID)
			result.Total += game.Price
		}

		if err := tx.Create(&purchased).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND game_id IN ?", userID, cleared).
			Delete(&models.GormCartItem{}).Error; err != nil {
			return err
		}

		for _, item := range purchased {
			result.Items = append(result.Items, models.PurchasedGame{
				GameID:      item.GameID,
				Price:       item.Price,
				PurchasedAt: models.NewDateField(item.PurchasedAt),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetPurchase assembles the per-user purchase record from its rows. The
// wire document keeps the historical shape: the record id is the user id.
func (p *GormPostgreSQL) GetPurchase(userID int64) (*models.Purchase, error) {
	var rows []models.GormPurchaseItem
	if err := p.db.Where("user_id = ?", userID).Order("purchased_at, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrRecordNotFound
	}
	record := &models.Purchase{ID: userID, UserID: userID}
	for _, row := range rows {
		record.GamesPurchased = append(record.GamesPurchased, models.PurchasedGame{
			GameID:      row.GameID,
			Price:       row.Price,
			PurchasedAt: models.NewDateField(row.PurchasedAt),
		})
	}
	return record, nil
}

func (p *GormPostgreSQL) ListPurchasesSince(since time.Time) ([]PurchaseEntry, error) {
	var rows []models.GormPurchaseItem
	if err := p.db.Where("purchased_at >= ?", since).Order("purchased_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]PurchaseEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, PurchaseEntry{
			UserID:      row.UserID,
			GameID:      row.GameID,
			Price:       row.Price,
			PurchasedAt: row.PurchasedAt,
		})
	}
	return entries, nil
}

// --- Statistics ---

// SaveStatistic upserts the snapshot for one period; repeated saves within
// a period overwrite that period's row only.
func (p *GormPostgreSQL) SaveStatistic(period string, stat *models.Statistic) error {
	snapshot, err := statToSnapshot(stat)
	if err != nil {
		return err
	}

	var row models.GormStatistic
	result := p.db.Where("period = ?", period).First(&row)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		row = models.GormStatistic{Period: period, Snapshot: snapshot}
		return p.db.Create(&row).Error
	} else if result.Error != nil {
		return result.Error
	}

	row.Snapshot = snapshot
	row.UpdatedAt = time.Now()
	return p.db.Save(&row).Error
}

func (p *GormPostgreSQL) LoadStatistic(period string) (*models.Statistic, error) {
	var row models.GormStatistic
	if err := p.db.Where("period = ?", period).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return statFromSnapshot(row.Snapshot)
}

func (p *GormPostgreSQL) LoadLatestStatisticBefore(period string) (*models.Statistic, error) {
	var row models.GormStatistic
	err := p.db.Where("period < ?", period).Order("period desc").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return statFromSnapshot(row.Snapshot)
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --- 模型转换 ---

func gameToWire(row *models.GormGame) models.Game {
	return models.Game{
		ID:    int64(row.ID),
		Name:  row.Name,
		Price: row.Price,
		Tags:  row.Tags,
		Details: models.GameDetails{
			Publisher:     row.Publisher,
			Describe:      row.Describe,
			AgeLimit:      row.AgeLimit,
			PublishedDate: row.PublishedDate,
		},
		Images:                   row.Images,
		ThumbnailImage:           row.ThumbnailImage,
		MinimumConfiguration:     reqFromMap(row.MinimumConfiguration),
		RecommendedConfiguration: reqFromMap(row.RecommendedConfiguration),
	}
}

func gameToGorm(g *models.Game) *models.GormGame {
	return &models.GormGame{
		Name:                     g.Name,
		Price:                    g.Price,
		Tags:                     g.Tags,
		Publisher:                g.Details.Publisher,
		Describe:                 g.Details.Describe,
		AgeLimit:                 g.Details.AgeLimit,
		PublishedDate:            g.Details.PublishedDate,
		Images:                   g.Images,
		ThumbnailImage:           g.ThumbnailImage,
		MinimumConfiguration:     reqToMap(g.MinimumConfiguration),
		RecommendedConfiguration: reqToMap(g.RecommendedConfiguration),
	}
}

func userToWire(row *models.GormUser) models.User {
	return models.User{
		ID:       int64(row.ID),
		FName:    row.FName,
		LName:    row.LName,
		Username: row.Username,
		Email:    row.Email,
		DOB:      models.NewDateField(row.DOB),
		Avatar:   row.Avatar,
		Gender:   row.Gender,
		Address:  row.Address,
		Status:   row.Status,
	}
}

func commentToWire(row *models.GormComment) models.Comment {
	return models.Comment{
		ID:      int64(row.ID),
		GameID:  row.GameID,
		UserID:  row.UserID,
		Comment: row.Comment,
		Rating:  row.Rating,
		Date:    models.NewDateField(row.CommentedAt),
	}
}

func wishlistToWire(row *models.GormWishlist) models.Wishlist {
	return models.Wishlist{
		ID:         int64(row.ID),
		UserID:     row.UserID,
		FavGameIDs: append([]int64{}, row.FavGameIDs...),
	}
}

func reqToMap(r models.SystemRequirements) map[string]interface{} {
	return map[string]interface{}{
		"os":   r.OS,
		"cpu":  r.CPU,
		"ram":  r.RAM,
		"gpu":  r.GPU,
		"disk": r.Disk,
	}
}

func reqFromMap(m map[string]interface{}) models.SystemRequirements {
	get := func(key string) string {
		if v, ok := m[key].(string); ok {
			return v
		}
		return ""
	}
	return models.SystemRequirements{
		OS:   get("os"),
		CPU:  get("cpu"),
		RAM:  get("ram"),
		GPU:  get("gpu"),
		Disk: get("disk"),
	}
}

func statToSnapshot(stat *models.Statistic) (map[string]interface{}, error) {
	raw, err := json.Marshal(stat)
	if err != nil {
		return nil, err
	}
	var snapshot map[string]interface{}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func statFromSnapshot(snapshot map[string]interface{}) (*models.Statistic, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	stat := &models.Statistic{}
	if err := json.Unmarshal(raw, stat); err != nil {
		return nil, err
	}
	return stat, nil
}
