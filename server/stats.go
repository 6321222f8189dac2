package server

import (
	"net/http"
	"time"

	"github.com/playvault/server/session"
)

func (s *Server) handleCurrentStats(w http.ResponseWriter, r *http.Request, _ *session.Session) {
	stat, err := s.stats.Current(time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể tải dữ liệu thống kê. Vui lòng thử lại.")
		return
	}
	writeJSON(w, http.StatusOK, stat)
}

func (s *Server) handlePreviousStats(w http.ResponseWriter, r *http.Request, _ *session.Session) {
	stat, err := s.stats.Previous(time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Lỗi hệ thống", "Không thể tải dữ liệu thống kê. Vui lòng thử lại.")
		return
	}
	writeJSON(w, http.StatusOK, stat)
}
