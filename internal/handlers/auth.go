package handlers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/models"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

func Register(db *mongo.Database, jwtSecret string, accessTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		name := strings.TrimSpace(req.Name)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			log.Println("[AUTH] [ERROR] register db error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if count > 0 {
			log.Println("[AUTH] [ERROR] register email exists:", email)
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] register password hash failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "password hash failed"})
			return
		}

		now := time.Now()
		user := models.User{
			Email:        email,
			PasswordHash: string(hash),
			Name:         name,
			Phone:        strings.TrimSpace(req.Phone),
			Role:         "user",
			IsActive:     true,
			Children:     []models.Child{},
			Orders:       []models.OrderSummary{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		res, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			log.Println("[AUTH] [ERROR] register insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		id, _ := res.InsertedID.(primitive.ObjectID)
		accessToken, err := issueAccessToken(id, email, "user", jwtSecret, accessTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] register token generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}

		log.Println("[AUTH] [INFO] user registered:", email)
		c.JSON(http.StatusCreated, gin.H{
			"accessToken": accessToken,
			"user": gin.H{
				"id":    id.Hex(),
				"name":  name,
				"email": email,
			},
		})
	}
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func Login(db *mongo.Database, jwtSecret string, accessTTL, refreshTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || strings.TrimSpace(req.Password) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			log.Println("[AUTH] [ERROR] login invalid credentials")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		if !user.IsActive {
			log.Println("[AUTH] [ERROR] user inactive:", email)
			c.JSON(http.StatusForbidden, gin.H{"error": "user is inactive"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			log.Println("[AUTH] [ERROR] login invalid credentials")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		tokens, err := issueTokens(c, db, user.ID, user.Email, user.Role, jwtSecret, accessTTL, refreshTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] login token generation failed:", err)
			return
		}

		log.Println("[AUTH] [INFO] login succeeded:", user.Email)
		c.JSON(http.StatusOK, gin.H{
			"accessToken":  tokens.AccessToken,
			"refreshToken": tokens.RefreshToken,
			"expiresIn":    tokens.ExpiresIn,
			"user": gin.H{
				"id":    user.ID.Hex(),
				"name":  user.Name,
				"email": user.Email,
				"role":  user.Role,
			},
		})
	}
}

func Refresh(db *mongo.Database, jwtSecret string, accessTTL, refreshTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		plain := strings.TrimSpace(req.RefreshToken)
		if plain == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		hash := hashToken(plain)
		var token models.RefreshToken
		if err := db.Collection("refresh_tokens").FindOne(ctx, bson.M{
			"tokenHash": hash,
			"revoked":   false,
		}).Decode(&token); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}

		if time.Now().After(token.ExpiresAt) {
			_, _ = db.Collection("refresh_tokens").UpdateByID(ctx, token.ID, bson.M{"$set": bson.M{"revoked": true}})
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token expired"})
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": token.UserID}).Decode(&user); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		if !user.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "user is inactive"})
			return
		}

		newTokens, err := issueTokens(c, db, user.ID, user.Email, user.Role, jwtSecret, accessTTL, refreshTTL)
		if err != nil {
			return
		}

		_, _ = db.Collection("refresh_tokens").UpdateByID(ctx, token.ID, bson.M{
			"$set": bson.M{
				"revoked":         true,
				"replacedByToken": newTokens.RefreshTokenID,
			},
		})

		c.JSON(http.StatusOK, gin.H{
			"accessToken":  newTokens.AccessToken,
			"refreshToken": newTokens.RefreshToken,
			"expiresIn":    newTokens.ExpiresIn,
		})
	}
}

func Logout(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		plain := strings.TrimSpace(req.RefreshToken)
		if plain == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		hash := hashToken(plain)
		res, err := db.Collection("refresh_tokens").UpdateOne(ctx, bson.M{
			"tokenHash": hash,
			"revoked":   false,
		}, bson.M{"$set": bson.M{"revoked": true}})

		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func AdminLogin(db *mongo.Database, jwtSecret string, accessTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AdminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || strings.TrimSpace(req.Password) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var admin models.User
		err := db.Collection("users").FindOne(ctx, bson.M{
			"email": email,
			"role":  "admin",
		}).Decode(&admin)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		signed, err := issueAccessToken(admin.ID, admin.Email, "admin", jwtSecret, accessTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": signed})
	}
}

/* =========================
   TOKEN HELPERS
========================= */

func issueAccessToken(userID primitive.ObjectID, email, role, secret string, accessTTL time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID.Hex(),
		"email":  email,
		"role":   role,
		"exp":    time.Now().Add(accessTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

type issuedTokens struct {
	AccessToken    string
	RefreshToken   string
	RefreshTokenID primitive.ObjectID
	ExpiresIn      int64
}

func issueTokens(c *gin.Context, db *mongo.Database, userID primitive.ObjectID, email, role, secret string, accessTTL, refreshTTL time.Duration) (*issuedTokens, error) {
	now := time.Now()

	accessToken, err := issueAccessToken(userID, email, role, secret, accessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return nil, err
	}

	plainRefresh := generateRefreshString()
	if plainRefresh == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return nil, errors.New("could not generate refresh token")
	}
	hashed := hashToken(plainRefresh)

	refresh := models.RefreshToken{
		UserID:    userID,
		TokenHash: hashed,
		ExpiresAt: now.Add(refreshTTL),
		Revoked:   false,
		CreatedAt: now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := db.Collection("refresh_tokens").InsertOne(ctx, refresh)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return nil, err
	}

	refreshID, _ := res.InsertedID.(primitive.ObjectID)

	return &issuedTokens{
		AccessToken:    accessToken,
		RefreshToken:   plainRefresh,
		RefreshTokenID: refreshID,
		ExpiresIn:      int64(accessTTL.Seconds()),
	}, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateRefreshString() string {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(buf[:])
}
