package server

import (
	"net/http"
	"strconv"

	"github.com/playvault/server/models"
	"github.com/playvault/server/session"
)

// handleGetPurchases serves GET /purchases?user_id=N. Without the query
// parameter it defaults to the session user. The response keeps the
// array shape the original store produced: one purchase record per user,
// or an empty array for users who never bought anything.
func (s *Server) handleGetPurchases(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	userID := sess.UserID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "Tham số user_id không hợp lệ")
			return
		}
		userID = parsed
	}

	record, err := s.checkout.Purchases(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể tải lịch sử mua hàng")
		return
	}
	if len(record.GamesPurchased) == 0 {
		writeJSON(w, http.StatusOK, []models.Purchase{})
		return
	}
	writeJSON(w, http.StatusOK, []models.Purchase{*record})
}
