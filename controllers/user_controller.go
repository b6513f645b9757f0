package controllers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"comart-backend/middleware"
	"comart-backend/models"
	"comart-backend/repository"
	"comart-backend/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserController handles registration, sessions and profile management.
type UserController struct {
	users  repository.UserRepository
	tokens *services.TokenService
	logger *zap.Logger
}

// NewUserController creates a UserController.
func NewUserController(users repository.UserRepository, tokens *services.TokenService, logger *zap.Logger) *UserController {
	return &UserController{users: users, tokens: tokens, logger: logger}
}

type registerRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	Role        string `json:"role"`
	ProfilePic  string `json:"profilePic"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// profile strips the sensitive fields from a user document.
func profile(u *models.User) gin.H {
	return gin.H{
		"id":          u.ID.Hex(),
		"name":        u.Name,
		"email":       u.Email,
		"phoneNumber": u.PhoneNumber,
		"profilePic":  u.ProfilePic,
		"role":        u.Role,
		"active":      u.Active,
	}
}

// Register creates a new account. Vendors start inactive and wait for admin
// approval; buyers are active immediately.
func (uc *UserController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	role := req.Role
	switch role {
	case "":
		role = models.RoleBuyer
	case models.RoleBuyer, models.RoleVendor:
	default:
		respondError(c, http.StatusBadRequest, "Invalid role")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		uc.logger.Error("Failed to hash password", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Registration failed")
		return
	}

	user := &models.User{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		ProfilePic:  req.ProfilePic,
		Role:        role,
		Password:    string(hashed),
		Active:      role != models.RoleVendor,
	}

	if err := uc.users.Insert(c.Request.Context(), user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			respondError(c, http.StatusBadRequest, "User already exists")
			return
		}
		uc.logger.Error("Failed to create user", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Registration failed")
		return
	}

	uc.setSessionCookie(c, user)
	respondOK(c, http.StatusCreated, profile(user))
}

// Login authenticates an email/password pair and sets the session cookie.
func (uc *UserController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := uc.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !user.Active {
		respondError(c, http.StatusUnauthorized, "Sorry, this account is currently waiting for approval")
		return
	}

	uc.setSessionCookie(c, user)
	respondOK(c, http.StatusOK, profile(user))
}

// Logout clears the session cookie.
func (uc *UserController) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	respondOK(c, http.StatusOK, gin.H{"message": "Logged out"})
}

// GetProfile returns the authenticated user's profile.
func (uc *UserController) GetProfile(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}
	respondOK(c, http.StatusOK, profile(user))
}

// UpdateProfile updates the authenticated user's editable fields.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req struct {
		Name        string `json:"name"`
		PhoneNumber string `json:"phoneNumber"`
		ProfilePic  string `json:"profilePic"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	updates := bson.M{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.PhoneNumber != "" {
		updates["phoneNumber"] = req.PhoneNumber
	}
	if req.ProfilePic != "" {
		updates["profilePic"] = req.ProfilePic
	}
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "Nothing to update")
		return
	}

	updated, err := uc.users.Update(c.Request.Context(), user.ID, updates)
	if err != nil {
		uc.logger.Error("Failed to update profile", zap.String("user", user.ID.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	respondOK(c, http.StatusOK, profile(updated))
}

// GetUsers lists users, optionally filtered by role. Admin only.
func (uc *UserController) GetUsers(c *gin.Context) {
	users, err := uc.users.FindAll(c.Request.Context(), c.Query("role"))
	if err != nil {
		uc.logger.Error("Failed to list users", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, profile(&users[i]))
	}
	respondOK(c, http.StatusOK, out)
}

// ApproveVendor activates a pending vendor account. Admin only.
func (uc *UserController) ApproveVendor(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	updated, err := uc.users.Update(c.Request.Context(), id, bson.M{"active": true})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		uc.logger.Error("Failed to approve vendor", zap.String("user", id.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to approve vendor")
		return
	}
	respondOK(c, http.StatusOK, profile(updated))
}

// ForgotPassword issues a reset token for the account. Email delivery is out
// of scope; the token is logged so an operator pipeline can pick it up.
func (uc *UserController) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := uc.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, http.StatusNotFound, "No user found with that email")
		return
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to issue reset token")
		return
	}
	token := hex.EncodeToString(raw)
	hash := sha256.Sum256([]byte(token))

	_, err = uc.users.Update(c.Request.Context(), user.ID, bson.M{
		"resetPasswordToken":  hex.EncodeToString(hash[:]),
		"resetPasswordExpire": time.Now().Add(10 * time.Minute).UTC(),
	})
	if err != nil {
		uc.logger.Error("Failed to store reset token", zap.String("user", user.ID.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to issue reset token")
		return
	}

	uc.logger.Info("Password reset token issued", zap.String("user", user.ID.Hex()), zap.String("token", token))
	respondOK(c, http.StatusOK, gin.H{"message": "Reset token issued"})
}

// ResetPassword consumes a reset token and sets a new password.
func (uc *UserController) ResetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	hash := sha256.Sum256([]byte(c.Param("resettoken")))
	user, err := uc.users.FindByResetToken(c.Request.Context(), hex.EncodeToString(hash[:]))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid token")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	updated, err := uc.users.Update(c.Request.Context(), user.ID, bson.M{
		"password":            string(hashed),
		"resetPasswordToken":  "",
		"resetPasswordExpire": time.Time{},
	})
	if err != nil {
		uc.logger.Error("Failed to reset password", zap.String("user", user.ID.Hex()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	uc.setSessionCookie(c, updated)
	respondOK(c, http.StatusOK, profile(updated))
}

func (uc *UserController) setSessionCookie(c *gin.Context, user *models.User) {
	token, err := uc.tokens.Generate(user)
	if err != nil {
		uc.logger.Error("Failed to generate session token", zap.String("user", user.ID.Hex()), zap.Error(err))
		return
	}
	c.SetCookie(middleware.SessionCookieName, token, int((24 * time.Hour).Seconds()), "/", "", false, true)
}
