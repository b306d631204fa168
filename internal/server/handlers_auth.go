package server

import (
	"net/http"

	"github.com/ConstantineIIII/WhatsappClone/internal/app"
	"github.com/ConstantineIIII/WhatsappClone/internal/util"
)

func sessionInfo(r *http.Request) app.SessionInfo {
	return app.SessionInfo{
		DeviceInfo: r.UserAgent(),
		IPAddress:  util.ClientIP(r),
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		FullName    string `json:"fullName"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	result, err := s.app.Register(r.Context(), app.RegisterInput{
		Username:    body.Username,
		Email:       body.Email,
		Password:    body.Password,
		FullName:    body.FullName,
		PhoneNumber: body.PhoneNumber,
	}, sessionInfo(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, result)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	result, err := s.app.Login(r.Context(), body.Email, body.Password, sessionInfo(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	claims, _ := claimsFrom(r.Context())
	if err := s.app.Logout(r.Context(), user.ID, claims.TokenID, claims.Expires); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "logged out")
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	claims, _ := claimsFrom(r.Context())
	result, err := s.app.Refresh(r.Context(), user.ID, claims.TokenID, claims.Expires, sessionInfo(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	profile, err := s.app.Profile(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	var body struct {
		FullName      *string `json:"fullName"`
		Bio           *string `json:"bio"`
		PhoneNumber   *string `json:"phoneNumber"`
		StatusMessage *string `json:"statusMessage"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	profile, err := s.app.UpdateProfile(r.Context(), user.ID, app.UpdateProfileInput{
		FullName:      body.FullName,
		Bio:           body.Bio,
		PhoneNumber:   body.PhoneNumber,
		StatusMessage: body.StatusMessage,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, profile)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.app.ChangePassword(r.Context(), user.ID, body.CurrentPassword, body.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "password changed")
}
