package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"
	"github.com/kinjaldesarla/PostIt/internal/apperr"
	"github.com/kinjaldesarla/PostIt/internal/models"
	"github.com/kinjaldesarla/PostIt/internal/repositories"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

var (
	passwordLowerRe   = regexp.MustCompile(`[a-z]`)
	passwordDigitRe   = regexp.MustCompile(`[0-9]`)
	passwordSpecialRe = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};'":\\|,.<>\/?]`)
)

const passwordPolicyMessage = "Password must be at least 8 characters, and include lowercase, digit, and special character."

func validPassword(password string) bool {
	return len(password) >= 8 &&
		passwordLowerRe.MatchString(password) &&
		passwordDigitRe.MatchString(password) &&
		passwordSpecialRe.MatchString(password)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   *auth.Client
	accessSecret   string
	refreshSecret  string
}

// NewAuthHandler creates a new AuthHandler. firebaseAuthClient may be nil
// when the Firebase provider is not configured.
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuthClient *auth.Client) *AuthHandler {
	accessSecret := os.Getenv("ACCESS_TOKEN_SECRET")
	if accessSecret == "" {
		accessSecret = "supersecretaccesskey"
	}
	refreshSecret := os.Getenv("REFRESH_TOKEN_SECRET")
	if refreshSecret == "" {
		refreshSecret = "supersecretrefreshkey"
	}
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuthClient,
		accessSecret:   accessSecret,
		refreshSecret:  refreshSecret,
	}
}

// RegisterAuthRoutes registers the unauthenticated auth routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.POST("/firebase-login", h.FirebaseLogin)
}

// RegisterSessionRoutes registers the auth routes that require a session
func (h *AuthHandler) RegisterSessionRoutes(g *echo.Group) {
	g.GET("/logout", h.Logout)
}

// Signup handles local user registration
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !validPassword(req.Password) {
		return apperr.BadRequest(passwordPolicyMessage)
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))

	// Check if user with this username or email already exists
	_, err := h.userRepository.GetUserByUsernameOrEmail(c.Request().Context(), username, req.Email)
	if err == nil {
		return apperr.Conflict("user with this email or username already exist")
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Fullname: req.Fullname,
		Username: username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(c.Request().Context(), user); err != nil {
		return err
	}

	return h.issueSession(c, user, http.StatusCreated, "User Register Successfully")
}

// Login handles local authentication by username or email
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByIdentifier(c.Request().Context(), req.Identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("User with this username or email does not exists")
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return apperr.Unauthorized("invalid password")
	}

	return h.issueSession(c, user, http.StatusOK, "User logged In Successfully")
}

// Logout clears the refresh token and session cookies
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := currentUserID(c)
	if userID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}

	if err := h.userRepository.SetRefreshToken(c.Request().Context(), userID, ""); err != nil {
		return err
	}

	clearCookie(c, "accessToken")
	clearCookie(c, "refreshToken")
	return respond(c, http.StatusOK, echo.Map{}, "user logged out")
}

// FirebaseLogin verifies a Firebase ID token and issues a local session,
// creating the user on first login
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return apperr.NotFound("Firebase login is not enabled")
	}

	var req models.FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.firebaseAuth.VerifyIDToken(context.Background(), req.IDToken)
	if err != nil {
		return apperr.Unauthorized("Invalid Firebase ID token")
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)

	user, err := h.userRepository.GetUserByFirebaseUID(c.Request().Context(), token.UID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		user, err = h.userRepository.GetUserByIdentifier(c.Request().Context(), email)
		if err != nil {
			if !errors.Is(err, repositories.ErrNotFound) {
				return err
			}
			// New user: derive a username from the email local part
			username := strings.ToLower(strings.SplitN(email, "@", 2)[0])
			user = &models.User{
				Fullname:    name,
				Username:    username,
				Email:       email,
				FirebaseUID: token.UID,
			}
			if err := h.userRepository.CreateUser(c.Request().Context(), user); err != nil {
				return err
			}
		} else {
			// Existing local account: link the Firebase UID
			user.FirebaseUID = token.UID
			if err := h.userRepository.UpdateProfile(c.Request().Context(), user); err != nil {
				return err
			}
		}
	}

	return h.issueSession(c, user, http.StatusOK, "User logged In Successfully")
}

func (h *AuthHandler) issueSession(c echo.Context, user *models.User, statusCode int, message string) error {
	accessToken, err := h.signToken(user, h.accessSecret, 24*time.Hour)
	if err != nil {
		return err
	}
	refreshToken, err := h.signToken(user, h.refreshSecret, 240*time.Hour)
	if err != nil {
		return err
	}

	if err := h.userRepository.SetRefreshToken(c.Request().Context(), user.ID, refreshToken); err != nil {
		return err
	}

	setCookie(c, "accessToken", accessToken)
	setCookie(c, "refreshToken", refreshToken)

	return respond(c, statusCode, echo.Map{
		"user":         user,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}, message)
}

func (h *AuthHandler) signToken(user *models.User, secret string, ttl time.Duration) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func setCookie(c echo.Context, name, value string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
