package controllers

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inkwell/blog-api/config"
	"github.com/inkwell/blog-api/models"
	"github.com/inkwell/blog-api/services"
	"github.com/inkwell/blog-api/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB           *gorm.DB
	GoogleConfig *config.GoogleConfig
	Identity     *services.IdentityBroadcaster
}

func NewAuthController(db *gorm.DB, identity *services.IdentityBroadcaster) *AuthController {
	return &AuthController{
		DB:           db,
		GoogleConfig: config.NewGoogleConfig(),
		Identity:     identity,
	}
}

// allowedEmail enforces the single-identity policy: only the configured
// address may authenticate, regardless of how it signed in.
func allowedEmail(email string) bool {
	allowed := config.AllowedEmail()
	return allowed != "" && strings.EqualFold(email, allowed)
}

func (ac *AuthController) issueTokens(user *models.User) (accessToken, refreshToken string, err error) {
	secret := []byte(os.Getenv("JWT_SECRET"))

	accessBase := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"exp":     time.Now().Add(time.Hour * 24 * 7).Unix(),
	})
	accessToken, err = accessBase.SignedString(secret)
	if err != nil {
		return "", "", err
	}

	// jti keeps tokens issued within the same second distinct; the
	// refresh_tokens table has a unique index on the token column.
	refreshBase := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"jti":     uuid.New().String(),
		"exp":     time.Now().Add(time.Hour * 24 * 30).Unix(),
	})
	refreshToken, err = refreshBase.SignedString(secret)
	if err != nil {
		return "", "", err
	}

	ac.DB.Create(&models.RefreshToken{
		UserID:         user.ID,
		Token:          refreshToken,
		ExpirationDate: time.Now().Add(time.Hour * 24 * 30),
	})
	return accessToken, refreshToken, nil
}

func (ac *AuthController) respondWithTokens(c *gin.Context, user *models.User) {
	accessToken, refreshToken, err := ac.issueTokens(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token", "success": false})
		return
	}

	ac.Identity.Set(&services.Identity{UserID: user.ID, Email: user.Email, Name: user.Name})

	c.JSON(http.StatusOK, gin.H{
		"token_type":    "Bearer",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          gin.H{"id": user.ID, "email": user.Email, "name": user.Name, "avatar": user.Avatar},
		"success":       true,
	})
}

// Register bootstraps the blog owner's account. Any email other than the
// configured one is rejected outright.
func (ac *AuthController) Register(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Name     string `json:"name" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	if !allowedEmail(input.Email) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This email is not authorized", "success": false})
		return
	}

	var existing models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Account already exists", "success": false})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password", "success": false})
		return
	}
	hashedStr := string(hashedPassword)

	user := models.User{
		Email:    input.Email,
		Name:     input.Name,
		Password: &hashedStr,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create account", "success": false})
		return
	}

	c.JSON(http.StatusCreated, StandardResponse{Success: true, Message: "Account created"})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !allowedEmail(input.Email) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This email is not authorized"})
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.Password == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	ac.respondWithTokens(c, &user)
}

// GoogleLogin accepts either an authorization code or an ID token. A
// Google identity whose email is not the configured one is rejected
// immediately; no session is created for it.
func (ac *AuthController) GoogleLogin(c *gin.Context) {
	var input struct {
		Code    string `json:"code"`
		IDToken string `json:"id_token"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var userInfo *config.GoogleUserInfo
	var err error
	switch {
	case input.IDToken != "":
		userInfo, err = ac.GoogleConfig.VerifyIDToken(input.IDToken)
	case input.Code != "":
		oauthToken, exchangeErr := ac.GoogleConfig.ExchangeCode(c.Request.Context(), input.Code)
		if exchangeErr != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Failed to exchange authorization code"})
			return
		}
		userInfo, err = ac.GoogleConfig.GetUserInfo(oauthToken.AccessToken)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "code or id_token is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Failed to verify Google identity"})
		return
	}

	if !allowedEmail(userInfo.Email) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This email is not authorized"})
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", userInfo.Email).First(&user).Error; err != nil {
		user = models.User{
			Email:  userInfo.Email,
			Name:   userInfo.Name,
			Avatar: userInfo.Picture,
		}
		if err := ac.DB.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create account"})
			return
		}
	}

	ac.respondWithTokens(c, &user)
}

func (ac *AuthController) RefreshToken(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	var refreshToken models.RefreshToken
	if err := ac.DB.Where("token = ?", input.RefreshToken).First(&refreshToken).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token", "success": false})
		return
	}

	if time.Now().After(refreshToken.ExpirationDate) {
		ac.DB.Delete(&refreshToken)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired", "success": false})
		return
	}

	var user models.User
	if err := ac.DB.First(&user, refreshToken.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found", "success": false})
		return
	}

	ac.DB.Delete(&refreshToken)
	ac.respondWithTokens(c, &user)
}

func (ac *AuthController) Logout(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&input)

	if input.RefreshToken != "" {
		ac.DB.Where("token = ?", input.RefreshToken).Delete(&models.RefreshToken{})
	}

	ac.Identity.Set(nil)

	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Logged out"})
}

func (ac *AuthController) GetProfile(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var user models.User
	if err := ac.DB.First(&user, claims.UserID).Error; err != nil {
		respondError(c, &utils.NotFoundError{Resource: "user"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: user})
}

func (ac *AuthController) UpdateProfile(c *gin.Context) {
	claims := utils.GetUser(c)

	var input struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := make(map[string]interface{})
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Avatar != "" {
		updates["avatar"] = input.Avatar
	}
	updates["updated_at"] = time.Now()

	if err := ac.DB.Model(&models.User{}).Where("id = ?", claims.UserID).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update profile"})
		return
	}

	var user models.User
	ac.DB.First(&user, claims.UserID)
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: user})
}
