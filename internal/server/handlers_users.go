package server

import (
	"net/http"

	"github.com/ConstantineIIII/WhatsappClone/internal/app"
)

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, app.BadRequest("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("picture")
	if err != nil {
		writeError(w, app.BadRequest("picture file is required"))
		return
	}
	defer file.Close()

	url, err := s.app.UploadProfilePicture(
		r.Context(),
		user.ID,
		file,
		header.Size,
		header.Header.Get("Content-Type"),
		header.Filename,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"profilePictureUrl": url})
}

const maxUploadMemory = 8 << 20

func (s *Server) handleDeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	if err := s.app.DeleteProfilePicture(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "profile picture removed")
}

func (s *Server) handlePublicProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.app.PublicProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, profile)
}
