package server

import (
	"errors"
	"net/http"

	"github.com/playvault/server/services"
	"github.com/playvault/server/session"
)

func (s *Server) handleGetWishlist(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	wishlist, err := s.wishlist.Get(sess.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể tải danh sách yêu thích")
		return
	}
	writeJSON(w, http.StatusOK, wishlist)
}

type toggleWishlistRequest struct {
	GameID int64 `json:"game_id"`
}

type toggleWishlistResponse struct {
	Wishlist interface{} `json:"wishlist"`
	Added    bool        `json:"added"`
}

// handleToggleWishlist flips one game's favorite status for the session
// user. The response says which way it went.
func (s *Server) handleToggleWishlist(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req toggleWishlistRequest
	if err := decodeBody(r, &req); err != nil || req.GameID <= 0 {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "Thiếu hoặc sai tham số game_id")
		return
	}

	wishlist, added, err := s.wishlist.Toggle(sess.UserID, req.GameID)
	if err != nil {
		if errors.Is(err, services.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "Không tìm thấy", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể cập nhật danh sách yêu thích")
		return
	}
	writeJSON(w, http.StatusOK, toggleWishlistResponse{Wishlist: wishlist, Added: added})
}
