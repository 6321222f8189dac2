package server

import (
	"errors"
	"net/http"

	"github.com/playvault/server/services"
	"github.com/playvault/server/session"
)

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	view, err := s.cart.View(sess.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể tải giỏ hàng")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type addToCartRequest struct {
	GameID int64 `json:"game_id"`
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req addToCartRequest
	if err := decodeBody(r, &req); err != nil || req.GameID <= 0 {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "Thiếu hoặc sai tham số game_id")
		return
	}
	if err := s.cart.Add(sess.UserID, req.GameID); err != nil {
		if errors.Is(err, services.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "Không tìm thấy", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể thêm game vào giỏ hàng")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	gameID, ok := pathID(r, "gameID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "ID game không hợp lệ")
		return
	}
	if err := s.cart.Remove(sess.UserID, gameID); err != nil {
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể xóa game khỏi giỏ hàng")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkoutRequest struct {
	GameIDs []int64 `json:"game_ids"`
	All     bool    `json:"all"`
}

// handleCheckout purchases the selection (or everything with all=true).
// The cart clear and the purchase write are one transaction downstream.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req checkoutRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "Không đọc được dữ liệu thanh toán")
		return
	}
	if !req.All && len(req.GameIDs) == 0 {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "Vui lòng chọn ít nhất một game để thanh toán!")
		return
	}

	ids := req.GameIDs
	if req.All {
		ids = nil
	}
	receipt, err := s.checkout.Checkout(sess.UserID, ids)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCart) {
			writeError(w, http.StatusBadRequest, "Thanh toán thất bại", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Thanh toán thất bại. Vui lòng thử lại.")
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
