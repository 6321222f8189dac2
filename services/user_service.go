// services/user_service.go
package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"github.com/playvault/server/models"
	"github.com/playvault/server/persistence"
)

var (
	// Login errors keep the storefront's own wording.
	ErrUnknownUser   = errors.New("Không tìm thấy người dùng với tên đăng nhập này")
	ErrWrongPassword = errors.New("Mật khẩu không đúng, vui lòng kiểm tra lại")
	ErrUserNotFound  = errors.New("không tìm thấy người dùng")
	ErrUsernameTaken = errors.New("Tên đăng nhập đã tồn tại")
	ErrInvalidUser   = errors.New("thông tin đăng ký không hợp lệ")
)

// UserService handles accounts: registration with salted password
// hashing, login, profile updates and soft deletion.
type UserService struct {
	db persistence.Database
}

func NewUserService(db persistence.Database) *UserService {
	return &UserService{db: db}
}

// Register creates an account. The plaintext password on the request is
// hashed with a per-user salt and never stored or echoed back.
func (s *UserService) Register(u *models.User) error {
	if len(u.Username) < 3 || len(u.Password) < 6 || u.FName == "" {
		return ErrInvalidUser
	}

	salt, err := randomSalt()
	if err != nil {
		return err
	}
	hash := hashPassword(u.Password, salt)

	if err := s.db.CreateUser(u, hash, salt); err != nil {
		if errors.Is(err, persistence.ErrDuplicateUser) {
			return ErrUsernameTaken
		}
		return err
	}
	u.Password = ""
	return nil
}

// Login checks credentials and returns the sanitized user summary.
// Unknown username and wrong password are reported separately; deleted
// accounts behave like unknown ones.
func (s *UserService) Login(username, password string) (models.UserSummary, error) {
	record, err := s.db.FindUserByUsername(username)
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return models.UserSummary{}, ErrUnknownUser
		}
		return models.UserSummary{}, err
	}
	if record.User.Status == models.UserStatusDeleted {
		return models.UserSummary{}, ErrUnknownUser
	}

	expected := hashPassword(password, record.PasswordSalt)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(record.PasswordHash)) != 1 {
		return models.UserSummary{}, ErrWrongPassword
	}

	return models.UserSummary{
		ID:       record.User.ID,
		Name:     record.User.Name(),
		Username: record.User.Username,
		DOB:      record.User.DOB.Date,
	}, nil
}

func (s *UserService) ListUsers() ([]models.User, error) {
	return s.db.ListUsers()
}

func (s *UserService) GetUser(id int64) (*models.User, error) {
	user, err := s.db.GetUser(id)
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile edits mutable profile fields. Username, password and
// status are not touched here.
func (s *UserService) UpdateProfile(u *models.User) error {
	if err := s.db.UpdateUser(u); err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// Deactivate soft-deletes the account. The row stays.
func (s *UserService) Deactivate(id int64) error {
	if err := s.db.SetUserStatus(id, models.UserStatusDeleted); err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func randomSalt() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}
