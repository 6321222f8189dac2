package server

import (
	"net/http"

	"github.com/playvault/server/session"
	"github.com/playvault/server/upload"
)

const maxUploadMemory = 32 << 20 // 32 MB

type uploadResponse struct {
	URLs []string `json:"urls"`
}

// handleUpload forwards posted image files to the hosted image service
// and returns the secure URLs. Files that fail to upload are skipped,
// matching the storefront behavior.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, _ *session.Session) {
	if s.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "Lỗi hệ thống", "Dịch vụ tải ảnh chưa được cấu hình")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "Không đọc được dữ liệu ảnh")
		return
	}

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "Yêu cầu không hợp lệ", "Không có ảnh nào được gửi lên")
		return
	}

	files := make([]upload.File, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			continue
		}
		defer f.Close()
		files = append(files, upload.File{Name: header.Filename, Data: f})
	}

	urls := s.uploader.UploadAll(r.Context(), files)
	writeJSON(w, http.StatusOK, uploadResponse{URLs: urls})
}
