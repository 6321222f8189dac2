package server

import (
	"errors"
	"net/http"

	"github.com/playvault/server/models"
	"github.com/playvault/server/services"
	"github.com/playvault/server/session"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := decodeBody(r, &user); err != nil {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "Không đọc được dữ liệu đăng ký")
		return
	}
	if err := s.users.Register(&user); err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "Đăng ký thất bại", err.Error())
		case errors.Is(err, services.ErrInvalidUser):
			writeError(w, http.StatusBadRequest, "Đăng ký thất bại", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể tạo tài khoản")
		}
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, _ *session.Session) {
	users, err := s.users.ListUsers()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể tải danh sách người dùng")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, _ *session.Session) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "ID người dùng không hợp lệ")
		return
	}
	user, err := s.users.GetUser(id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "Không tìm thấy", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể tải thông tin người dùng")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request, _ *session.Session) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "ID người dùng không hợp lệ")
		return
	}
	var user models.User
	if err := decodeBody(r, &user); err != nil {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "Không đọc được dữ liệu người dùng")
		return
	}
	user.ID = id
	if err := s.users.UpdateProfile(&user); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "Không tìm thấy", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể cập nhật hồ sơ")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleDeleteUser soft-deletes: the account is flagged, never removed.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, _ *session.Session) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "ID người dùng không hợp lệ")
		return
	}
	if err := s.users.Deactivate(id); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "Không tìm thấy", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể xóa tài khoản")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
