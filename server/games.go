package server

import (
	"errors"
	"net/http"

	"github.com/playvault/server/models"
	"github.com/playvault/server/services"
	"github.com/playvault/server/session"
)

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.catalog.ListGames()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể tải danh sách game")
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "ID game không hợp lệ")
		return
	}
	game, err := s.catalog.GetGame(id)
	if err != nil {
		if errors.Is(err, services.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "Không tìm thấy", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể tải thông tin game")
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request, _ *session.Session) {
	var game models.Game
	if err := decodeBody(r, &game); err != nil {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "Không đọc được dữ liệu game")
		return
	}
	if err := s.catalog.CreateGame(&game); err != nil {
		if errors.Is(err, services.ErrInvalidGame) {
			writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể tạo game")
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

func (s *Server) handleUpdateGame(w http.ResponseWriter, r *http.Request, _ *session.Session) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "ID game không hợp lệ")
		return
	}
	var game models.Game
	if err := decodeBody(r, &game); err != nil {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "Không đọc được dữ liệu game")
		return
	}
	game.ID = id
	if err := s.catalog.UpdateGame(&game); err != nil {
		switch {
		case errors.Is(err, services.ErrGameNotFound):
			writeError(w, http.StatusNotFound, "Không tìm thấy", err.Error())
		case errors.Is(err, services.ErrInvalidGame):
			writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể cập nhật game")
		}
		return
	}
	writeJSON(w, http.StatusOK, game)
}
