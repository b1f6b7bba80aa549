package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/auth"
	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/config"
	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/database"
	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/models"
	"github.com/FranciscoSoares0/WatchMatch-Backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeMailer records password-reset emails instead of sending them.
type fakeMailer struct {
	sentTo     []string
	sentTokens []string
	failWith   error
}

func (m *fakeMailer) SendPasswordResetEmail(to, token string) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.sentTo = append(m.sentTo, to)
	m.sentTokens = append(m.sentTokens, token)
	return nil
}

var testDBCounter int

// setupTest wires the package globals to an in-memory database and a fake
// mailer, and returns a router with the same routes main registers.
func setupTest(t *testing.T) (*gin.Engine, *fakeMailer) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	config.AppConfig = &config.Config{
		JWTAccessSecret:        "test-access-secret",
		JWTAccessExpirationMS:  15 * 60 * 1000,
		JWTRefreshSecret:       "test-refresh-secret",
		JWTRefreshExpirationMS: 7 * 24 * 60 * 60 * 1000,
		FrontendURL:            "http://localhost:3000",
		Environment:            "test",
	}

	// A named shared-cache DSN keeps every pooled connection on the same
	// in-memory database.
	testDBCounter++
	dsn := fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", testDBCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	mailer := &fakeMailer{}
	Mailer = mailer

	router := gin.New()
	apiV1 := router.Group("/api/v1")

	authRoutes := apiV1.Group("/auth")
	authRoutes.POST("/signup", Signup)
	authRoutes.POST("/signin", Signin)
	authRoutes.POST("/refresh", Refresh)
	authRoutes.POST("/forgot-password", ForgotPassword)
	authRoutes.PUT("/reset-password", ResetPassword)
	authRoutes.POST("/signout", Signout)
	authRoutes.GET("/google/callback", auth.ExternalIdentityRequired(), GoogleCallback)
	authRoutes.PUT("/change-password", auth.AuthMiddleware(), ChangePassword)
	authRoutes.GET("/me", auth.AuthMiddleware(), GetMe)

	friendRoutes := apiV1.Group("/friends")
	friendRoutes.Use(auth.AuthMiddleware())
	friendRoutes.GET("", GetFriends)
	friendRoutes.POST("/requests", SendFriendRequest)
	friendRoutes.GET("/requests", GetFriendRequests)
	friendRoutes.GET("/sent-requests", GetSentRequests)
	friendRoutes.PATCH("/requests/:requestorId", RespondToFriendRequest)
	friendRoutes.DELETE("/:friendId", RemoveFriend)

	matchingRoutes := apiV1.Group("/matching")
	matchingRoutes.Use(auth.AuthMiddleware())
	matchingRoutes.POST("", StartMatching)
	matchingRoutes.GET("", GetMatchingSessions)
	matchingRoutes.POST("/:id/approvals", ApproveShow)

	return router, mailer
}

// createUser inserts a local-provider user directly. MinCost keeps the tests
// fast; the cost factor is not under test.
func createUser(t *testing.T, name, email, password string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		AuthProvider: models.ProviderLocal,
	}
	require.NoError(t, database.DB.Create(&user).Error)
	return user
}

// accessCookie mints a valid access-token cookie for a user.
func accessCookie(t *testing.T, userID uint) *http.Cookie {
	t.Helper()

	token, _, err := jwt.GenerateAccessToken(userID)
	require.NoError(t, err)
	return &http.Cookie{Name: "access_token", Value: token}
}

// doRequest performs a JSON request against the test router.
func doRequest(t *testing.T, router *gin.Engine, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a recorded JSON response into dest.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}

// responseCookie digs a named cookie out of the recorded response.
func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
