package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/Banyel3/iayos-sub011/config"
	"github.com/Banyel3/iayos-sub011/middleware"
	"github.com/Banyel3/iayos-sub011/model"
	"github.com/Banyel3/iayos-sub011/pkg/apperr"
	"github.com/Banyel3/iayos-sub011/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	backend  *service.Backend
	lockouts *service.LockoutService
	config   *config.Config
}

func NewAuthHandler(backend *service.Backend, lockouts *service.LockoutService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{backend: backend, lockouts: lockouts, config: cfg}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt string        `json:"expires_at"`
	Account   model.Account `json:"account"`
	Redirect  string        `json:"redirect"`
}

// Login checks credentials against the core API and issues a session token.
// An unverified account is not signed in: the response redirects to OTP
// verification instead.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.backend.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, apperr.Message(apperr.CategoryGeneric))
		return
	}
	if result.Error != "" {
		category := apperr.Classify(result.Error)
		c.JSON(statusForLogin(category), gin.H{
			"error":    apperr.Message(category),
			"category": category,
		})
		return
	}

	if !result.Account.Verified {
		c.JSON(http.StatusForbidden, gin.H{
			"error":    apperr.Message(apperr.CategoryVerificationRequired),
			"category": apperr.CategoryVerificationRequired,
			"redirect": "/verify-otp",
		})
		return
	}

	token, expiresAt, err := middleware.GenerateToken(result.Account.ID, result.Account.Email, result.Account.ProfileType, &h.config.Auth)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	redirect := model.DashboardPath(result.Account.ProfileType)
	if redirect == "" {
		redirect = "/select-role"
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00"),
		Account:   result.Account,
		Redirect:  redirect,
	})
}

// statusForLogin maps a classified sign-in failure to a status. Unlike the
// generic path, an unclassified login error is a 401, not a 500.
func statusForLogin(category apperr.Category) int {
	switch category {
	case apperr.CategoryVerificationRequired:
		return http.StatusForbidden
	case apperr.CategoryRateLimited:
		return http.StatusTooManyRequests
	case apperr.CategoryServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnauthorized
	}
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// VerifyOTP forwards a complete code to the core API. Incomplete codes are
// rejected locally and never reach the network.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Run the raw submission through the entry machine: digits are
	// extracted paste-style, and anything short of a full code is rejected
	// here instead of upstream.
	input := service.NewOTPInput(h.config.Security.OTPLength, nil)
	input.Paste(req.OTP)
	if !input.Filled() {
		respondError(c, &apperr.ValidationError{Field: "otp", Message: "Please enter the complete verification code"}, "")
		return
	}

	result, err := h.backend.VerifyOTP(c.Request.Context(), req.Email, input.Code())
	if err != nil {
		respondError(c, err, "Verification failed. Please try again.")
		return
	}
	if !result.Success {
		message := result.Error
		if message == "" {
			message = "Invalid verification code"
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "redirect": "/login"})
}

type ResendOTPRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResendOTP requests a fresh code, subject to a per-email cooldown. The
// cooldown end is persisted, so a gateway restart resumes the remaining
// wait instead of resetting it.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	key := service.LockoutKey("otp-resend", strings.ToLower(req.Email))
	remaining, err := h.lockouts.Remaining(key)
	if err == nil && remaining > 0 {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":        apperr.Message(apperr.CategoryRateLimited),
			"category":     apperr.CategoryRateLimited,
			"wait_seconds": remaining,
		})
		return
	}

	result, err := h.backend.ResendOTP(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err, "Could not resend the code. Please try again.")
		return
	}

	wait := result.WaitSeconds
	if wait <= 0 {
		wait = h.config.Security.OTPResendWaitSeconds
	}
	waitRemaining, err := h.lockouts.Arm(key, time.Duration(wait)*time.Second)
	if err == nil && waitRemaining > 0 {
		wait = waitRemaining
	}

	c.JSON(http.StatusOK, gin.H{
		"expires_in_minutes": result.ExpiresInMinutes,
		"wait_seconds":       wait,
	})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePassword forwards a password change for the signed-in account. A
// new password equal to the current one is rejected before any upstream
// call is made.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.NewPassword == req.CurrentPassword {
		respondError(c, &apperr.ValidationError{
			Field:   "new_password",
			Message: "New password must be different from current password",
		}, "")
		return
	}

	accountID := middleware.GetAccountID(c)
	if err := h.backend.ChangePassword(c.Request.Context(), accountID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err, "Could not change the password. Please try again.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// GetCurrentUser returns the session's account info.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"account_id":   middleware.GetAccountID(c),
		"email":        middleware.GetEmail(c),
		"profile_type": middleware.GetProfileType(c),
	})
}
