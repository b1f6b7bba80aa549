package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/auth"
	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/config"
	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/database"
	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/email"
	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/models"
	"github.com/FranciscoSoares0/WatchMatch-Backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Mailer delivers password-reset emails. Set during wiring in main; tests
// replace it with a fake.
var Mailer email.Sender

const resetTokenTTL = time.Hour

// region --- DTOs ---

// SignupInput defines the structure for user registration.
type SignupInput struct {
	Name     string `json:"name" binding:"required" example:"Ana"`
	Email    string `json:"email" binding:"required,email" example:"ana@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"Str0ng!Pass"`
}

// SigninInput defines the structure for password login.
type SigninInput struct {
	Email    string `json:"email" binding:"required,email" example:"ana@example.com"`
	Password string `json:"password" binding:"required" example:"Str0ng!Pass"`
}

// ChangePasswordInput defines the structure for changing the password of an
// authenticated user.
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// ForgotPasswordInput defines the structure for requesting a reset link.
type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordInput defines the structure for redeeming a reset token.
type ResetPasswordInput struct {
	NewPassword string `json:"newPassword" binding:"required,min=8"`
	ResetToken  string `json:"resetToken" binding:"required"`
}

// ProfileResponse defines the structure for the authenticated user's profile.
type ProfileResponse struct {
	ID           uint                `json:"id" example:"1"`
	Name         string              `json:"name" example:"Ana"`
	Email        string              `json:"email" example:"ana@example.com"`
	AuthProvider models.AuthProvider `json:"authProvider" example:"local"`
}

// MessageResponse represents a generic confirmation message.
type MessageResponse struct {
	Message string `json:"message" example:"Done"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// endregion

// region --- Auth Handlers ---

// Signup godoc
// @Summary      Register a new user
// @Description  Creates a local account. No session is started; the user signs in afterwards.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body SignupInput true "Registration Info"
// @Success      201  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Email already in use"
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/signup [post]
func Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingUser models.User
	if err := database.DB.Where("email = ?", input.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		AuthProvider: models.ProviderLocal,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		// The unique index on email backs the existence check above.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Account created successfully! Start exploring and enjoy your experience!"})
}

// Signin godoc
// @Summary      Log in with email and password
// @Description  Verifies credentials and sets the access_token and refresh_token cookies.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body SigninInput true "Login Info"
// @Success      200  {object}  ProfileResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/signin [post]
func Signin(c *gin.Context) {
	var input SigninInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.AuthProvider != models.ProviderLocal {
		// The public error must not reveal that the account exists under
		// another provider.
		log.Printf("Password login attempted for %s account (user %d)", user.AuthProvider, user.ID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	issueSession(c, user, false)
}

// GoogleCallback godoc
// @Summary      Complete a Google login
// @Description  Consumes the externally verified identity, gets or creates the google-provider user and redirects to the front end with session cookies set.
// @Tags         auth
// @Produce      json
// @Success      302
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/google/callback [get]
func GoogleCallback(c *gin.Context) {
	identityEmail := c.GetString(auth.ExternalEmailKey)
	identityName := c.GetString(auth.ExternalNameKey)

	var user models.User
	err := database.DB.Where("email = ?", identityEmail).First(&user).Error
	switch {
	case err == nil:
		if user.AuthProvider == models.ProviderLocal {
			// Linking a Google identity onto a password account would let
			// anyone controlling the Google address take the account over.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "This email is registered for password login"})
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Name:         identityName,
			Email:        identityEmail,
			AuthProvider: models.ProviderGoogle,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		return
	}

	issueSession(c, user, true)
}

// Refresh godoc
// @Summary      Rotate the session tokens
// @Description  Validates the refresh_token cookie and replaces both cookies with a fresh pair. The previous refresh token stops being honored.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  ProfileResponse
// @Failure      401  {object}  ErrorResponse "Invalid refresh token"
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/refresh [post]
func Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	userID, err := jwt.ParseRefreshToken(refreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	presented := jwt.HashRefreshToken(refreshToken)
	if user.RefreshTokenHash == "" ||
		subtle.ConstantTimeCompare([]byte(user.RefreshTokenHash), []byte(presented)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	issueSession(c, user, false)
}

// ChangePassword godoc
// @Summary      Change the current user's password
// @Description  Requires the current password; existing sessions stay valid.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ChangePasswordInput true "Password change"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/change-password [put]
func ChangePassword(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	if err := database.DB.Model(&user).Update("password_hash", string(hashedPassword)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// ForgotPassword godoc
// @Summary      Request a password reset link
// @Description  Always answers with the same message. When the email is registered, a reset token is stored and mailed.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body ForgotPasswordInput true "Account email"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/forgot-password [post]
func ForgotPassword(c *gin.Context) {
	var input ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := database.DB.Where("email = ?", input.Email).First(&user).Error
	if err == nil {
		token, err := generateResetToken()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate reset token"})
			return
		}

		resetToken := models.ResetToken{
			Token:     token,
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(resetTokenTTL),
		}
		if err := database.DB.Create(&resetToken).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store reset token"})
			return
		}

		// The token row is already persisted; a delivery failure leaves it
		// behind, which is accepted.
		if err := Mailer.SendPasswordResetEmail(user.Email, token); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send reset email"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a password reset link has been sent."})
}

// ResetPassword godoc
// @Summary      Reset a password with a token
// @Description  Redeems a reset token from a forgot-password email. Tokens are single-use and expire after one hour.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body ResetPasswordInput true "New password and token"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse "Invalid link"
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/reset-password [put]
func ResetPassword(c *gin.Context) {
	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Single-statement find-and-delete: two concurrent redemptions cannot
	// both see the row.
	var redeemed []models.ResetToken
	result := database.DB.Clauses(clause.Returning{}).
		Where("token = ? AND expires_at >= ?", input.ResetToken, time.Now()).
		Delete(&redeemed)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to redeem reset token"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid link"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, redeemed[0].UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	if err := database.DB.Model(&user).Update("password_hash", string(hashedPassword)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// Signout godoc
// @Summary      Sign out
// @Description  Clears both session cookies. The stored refresh-token hash is left in place.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  MessageResponse
// @Router       /auth/signout [post]
func Signout(c *gin.Context) {
	secure := config.AppConfig.IsProduction()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)

	c.JSON(http.StatusOK, gin.H{"message": "Signed out successfully"})
}

// GetMe godoc
// @Summary      Get current user's profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ProfileResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /auth/me [get]
func GetMe(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, buildProfileResponse(user))
}

// endregion

// region --- Helpers ---

// issueSession mints a fresh access/refresh pair, stores the refresh-token
// hash (invalidating the previous refresh token) and sets both cookies. In
// redirect mode the response is a redirect to the front end instead of the
// profile payload.
func issueSession(c *gin.Context, user models.User, redirect bool) {
	accessToken, _, err := jwt.GenerateAccessToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	refreshToken, _, err := jwt.GenerateRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	hash := jwt.HashRefreshToken(refreshToken)
	if err := database.DB.Model(&user).Update("refresh_token_hash", hash).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store session"})
		return
	}

	secure := config.AppConfig.IsProduction()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", accessToken,
		int(config.AppConfig.AccessTokenTTL().Seconds()), "/", "", secure, true)
	c.SetCookie("refresh_token", refreshToken,
		int(config.AppConfig.RefreshTokenTTL().Seconds()), "/", "", secure, true)

	if redirect {
		c.Redirect(http.StatusFound, config.AppConfig.FrontendURL)
		return
	}

	c.JSON(http.StatusOK, buildProfileResponse(user))
}

func buildProfileResponse(user models.User) ProfileResponse {
	return ProfileResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		AuthProvider: user.AuthProvider,
	}
}

// generateResetToken returns 32 random bytes as 64 hex characters.
func generateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// endregion
