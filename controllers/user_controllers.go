package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/smartmenu-api/middlewares"
	"github.com/yeremiapane/smartmenu-api/models"
	"github.com/yeremiapane/smartmenu-api/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const forgotPasswordMessage = "If that email is registered, a reset link has been sent"

type UserController struct {
	DB     *gorm.DB
	Tokens *utils.TokenManager
	Log    logrus.FieldLogger

	// ResetTokenTTL is how long a password reset token stays valid.
	ResetTokenTTL time.Duration
	// ExposeResetToken echoes the reset token in the response. Only for
	// non-release builds, where no mail is sent.
	ExposeResetToken bool
}

func NewUserController(db *gorm.DB, tokens *utils.TokenManager, resetTTL time.Duration, exposeReset bool, log logrus.FieldLogger) *UserController {
	return &UserController{
		DB:               db,
		Tokens:           tokens,
		Log:              log.WithField("component", "auth"),
		ResetTokenTTL:    resetTTL,
		ExposeResetToken: exposeReset,
	}
}

// Register a new user. Without restaurantId a new restaurant id is minted.
// Adding a user to an existing restaurant takes a token of that
// restaurant's admin.
func (uc *UserController) Register(c *gin.Context) {
	type request struct {
		Name         string `json:"name" binding:"required"`
		Email        string `json:"email" binding:"required,email"`
		Password     string `json:"password" binding:"required,min=6"`
		Role         string `json:"role" binding:"required,oneof=admin manager staff"`
		RestaurantID string `json:"restaurantId"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.RestaurantID != "" {
		role := c.GetString(middlewares.CtxRole)
		if role == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("an admin token is required to join an existing restaurant"))
			return
		}
		if !strings.EqualFold(role, "admin") || c.GetString(middlewares.CtxRestaurantID) != req.RestaurantID {
			utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
			return
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		RestaurantID: req.RestaurantID,
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Password:     string(hashed),
		Role:         req.Role,
	}
	if user.RestaurantID == "" {
		user.RestaurantID = uuid.NewString()
	}

	var existing int64
	uc.DB.Model(&models.User{}).Where("email = ?", user.Email).Count(&existing)
	if existing > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("email already registered"))
		return
	}

	if err := uc.DB.Create(&user).Error; err != nil {
		utils.RespondFailure(c, http.StatusInternalServerError, "Failed to register user", err)
		return
	}

	uc.Log.WithFields(logrus.Fields{"email": user.Email, "role": user.Role}).Info("user registered")
	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id":      user.ID,
		"restaurantId": user.RestaurantID,
	})
}

// Login -> return JWT
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ?", strings.ToLower(input.Email)).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := uc.Tokens.GenerateToken(user.ID, user.Role, user.RestaurantID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	uc.Log.WithField("email", user.Email).Info("login successful")
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":        token,
		"user_role":    strings.ToLower(user.Role),
		"restaurantId": user.RestaurantID,
	})
}

// Logout -> revoke the presented token
func (uc *UserController) Logout(c *gin.Context) {
	claims, _ := c.Get(middlewares.CtxClaims)
	cc, _ := claims.(*utils.CustomClaims)
	uc.Tokens.Revoke(c.GetString(middlewares.CtxToken), cc)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// GetProfile -> user behind the JWT
func (uc *UserController) GetProfile(c *gin.Context) {
	userID, ok := c.Get(middlewares.CtxUserID)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", gin.H{
		"id":           user.ID,
		"name":         user.Name,
		"email":        user.Email,
		"role":         user.Role,
		"restaurantId": user.RestaurantID,
	})
}

// ForgotPassword -> store a reset token. The response is the same whether
// or not the email exists.
func (uc *UserController) ForgotPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	err := uc.DB.Where("email = ?", strings.ToLower(input.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondJSON(c, http.StatusOK, forgotPasswordMessage, nil)
		return
	}
	if err != nil {
		utils.RespondFailure(c, http.StatusInternalServerError, "Failed to process request", err)
		return
	}

	token := uuid.NewString()
	expiry := time.Now().Add(uc.ResetTokenTTL)
	if err := uc.DB.Model(&user).Updates(map[string]interface{}{
		"reset_token":        token,
		"reset_token_expiry": expiry,
	}).Error; err != nil {
		utils.RespondFailure(c, http.StatusInternalServerError, "Failed to process request", err)
		return
	}

	uc.Log.WithField("user_id", user.ID).Info("password reset requested")
	if uc.ExposeResetToken {
		utils.RespondJSON(c, http.StatusOK, forgotPasswordMessage, gin.H{"resetToken": token})
		return
	}
	utils.RespondJSON(c, http.StatusOK, forgotPasswordMessage, nil)
}

// ResetPassword -> set a new password with a valid reset token
func (uc *UserController) ResetPassword(c *gin.Context) {
	var input struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("reset_token = ? AND reset_token_expiry > ?", input.Token, time.Now()).
		First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid or expired reset token"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := uc.DB.Model(&user).Updates(map[string]interface{}{
		"password":           string(hashed),
		"reset_token":        nil,
		"reset_token_expiry": nil,
	}).Error; err != nil {
		utils.RespondFailure(c, http.StatusInternalServerError, "Failed to reset password", err)
		return
	}

	uc.Log.WithField("user_id", user.ID).Info("password reset")
	utils.RespondJSON(c, http.StatusOK, "Password has been reset", nil)
}

// ErrNoPermission is returned when a caller acts on another restaurant's data.
var ErrNoPermission = &CustomError{"You do not have permission"}

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}
