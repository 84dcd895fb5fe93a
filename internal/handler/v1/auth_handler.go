package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medifit/medifit-api/internal/domain"
	"github.com/medifit/medifit-api/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Username        string      `json:"username" binding:"required"`
	Password        string      `json:"password" binding:"required"`
	Role            domain.Role `json:"role"`
	HospitalName    string      `json:"hospital_name"`
	HospitalAddress string      `json:"hospital_address"`
	PatientID       *uuid.UUID  `json:"patient_id"`
}

type userResponse struct {
	ID              uuid.UUID   `json:"id"`
	Username        string      `json:"username"`
	Role            domain.Role `json:"role"`
	HospitalName    string      `json:"hospital_name,omitempty"`
	HospitalAddress string      `json:"hospital_address,omitempty"`
	PatientID       *uuid.UUID  `json:"patient_id,omitempty"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:              u.ID,
		Username:        u.Username,
		Role:            u.Role,
		HospitalName:    u.HospitalName,
		HospitalAddress: u.HospitalAddress,
		PatientID:       u.PatientID,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), &service.RegisterUserCommand{
		Username:        req.Username,
		Password:        req.Password,
		Role:            req.Role,
		HospitalName:    req.HospitalName,
		HospitalAddress: req.HospitalAddress,
		PatientID:       req.PatientID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, "user registered", toUserResponse(user))
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "login successful", gin.H{
		"tokens": pair,
		"user":   toUserResponse(user),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "token refreshed", pair)
}

func (h *AuthHandler) Me(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		respondError(c, 401, "unauthorized")
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "", toUserResponse(user))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		respondError(c, 401, "unauthorized")
		return
	}

	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "password changed", nil)
}
