package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/playvault/server/models"
	"github.com/playvault/server/services"
	"github.com/playvault/server/session"
)

// handleListComments serves GET /comments?game_id=N with user data
// joined onto each comment.
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(r.URL.Query().Get("game_id"), 10, 64)
	if err != nil || gameID <= 0 {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "Thiếu hoặc sai tham số game_id")
		return
	}

	comments, err := s.comments.ListByGame(gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể tải bình luận")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// handleAddComment posts a review as the logged-in user.
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var comment models.Comment
	if err := decodeBody(r, &comment); err != nil {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "Không đọc được dữ liệu bình luận")
		return
	}
	comment.UserID = sess.UserID

	if err := s.comments.Add(&comment); err != nil {
		if errors.Is(err, services.ErrInvalidComment) {
			writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể thêm bình luận")
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}
