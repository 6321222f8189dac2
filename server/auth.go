package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/playvault/server/models"
	"github.com/playvault/server/services"
	"github.com/playvault/server/session"
)

// authedHandler is a handler that runs with a resolved session.
type authedHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// requireAuth resolves the bearer token; without a valid one the caller
// gets 401 and a login prompt instead of data.
func (s *Server) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Yêu cầu đăng nhập", "Vui lòng đăng nhập để tiếp tục")
			return
		}
		sess, ok := s.sessions.Get(r.Context(), token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Yêu cầu đăng nhập", "Phiên đăng nhập đã hết hạn, vui lòng đăng nhập lại")
			return
		}
		next(w, r, sess)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// handleLogin checks credentials and issues an opaque access token. The
// email field carries the username, as the original login endpoint did.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "Không đọc được dữ liệu đăng nhập")
		return
	}

	summary, err := s.users.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUnknownUser) || errors.Is(err, services.ErrWrongPassword) {
			writeError(w, http.StatusUnauthorized, "Đăng nhập thất bại", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể đăng nhập, vui lòng thử lại")
		return
	}

	sess, err := s.sessions.Create(r.Context(), summary)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể tạo phiên đăng nhập")
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		AccessToken: sess.Token,
		User:        summary,
	})
}

// handleLogout deletes the session. Idempotent: a missing or already
// invalid token still gets 204.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		s.sessions.Remove(r.Context(), token)
	}
	w.WriteHeader(http.StatusNoContent)
}
