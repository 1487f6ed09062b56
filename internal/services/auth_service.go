package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sqlizer/sqlizer/internal/models"
	"github.com/sqlizer/sqlizer/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ReasonPasswordReset marks tokens minted by the forget-password flow.
const ReasonPasswordReset = "forgetPassword"

// DefaultWorkgroupName is the private group every new user starts with.
const DefaultWorkgroupName = "My Projects"

// TokenClaims is the JWT payload for session and reset tokens.
type TokenClaims struct {
	Reason string `json:"reason,omitempty"`
	jwt.RegisteredClaims
}

// RegisterInput is the account creation payload.
type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// HashPassword hashes a clear-text password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword checks a clear-text password against its stored hash.
func ComparePassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// RegisterUser creates the account together with its private default
// workgroup and the creator's permission edge (create+update, no delete).
func RegisterUser(db *gorm.DB, input RegisterInput) (*models.User, error) {
	if input.FirstName == "" || input.LastName == "" || input.Email == "" || input.Password == "" {
		return nil, types.Validation("first_name, last_name, email and password are required")
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		return nil, types.Store("failed to hash password: %v", err)
	}

	user := &models.User{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  hashed,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return types.Conflict("email '%s' is already registered", input.Email)
			}
			return err
		}

		workgroup := &models.Workgroup{
			GroupName: DefaultWorkgroupName,
			CreatorID: user.ID,
			Private:   true,
		}
		if err := tx.Create(workgroup).Error; err != nil {
			return err
		}

		edge := &models.UserWorkgroup{
			UserID:      user.ID,
			GroupID:     workgroup.ID,
			CreateRight: true,
			UpdateRight: true,
			DeleteRight: false,
		}
		return tx.Create(edge).Error
	})
	if err != nil {
		if f, ok := types.AsFault(err); ok {
			return nil, f
		}
		return nil, types.Store("failed to register user: %v", err)
	}

	return user, nil
}

// GetUserByEmail fetches a user by email address.
func GetUserByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("user '%s' not found", email)
		}
		return nil, types.Store("failed to load user: %v", err)
	}
	return &user, nil
}

// GetUserByID fetches a user by id.
func GetUserByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("user '%s' not found", id)
		}
		return nil, types.Store("failed to load user: %v", err)
	}
	return &user, nil
}

// IssueToken mints a signed HS256 token for the user.
func IssueToken(key, userID, reason string, ttl time.Duration) (string, error) {
	claims := TokenClaims{
		Reason: reason,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	if err != nil {
		return "", types.Store("failed to sign token: %v", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a token, returning its claims.
func VerifyToken(key, tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, types.InvalidToken("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil || !token.Valid {
		return nil, types.InvalidToken("Invalid token")
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok || claims.Subject == "" {
		return nil, types.InvalidToken("Invalid token")
	}
	return claims, nil
}

// Login checks credentials and mints a session token.
func Login(db *gorm.DB, key string, ttl time.Duration, email, password string) (string, *models.User, error) {
	user, err := GetUserByEmail(db, email)
	if err != nil {
		if _, ok := types.AsFault(err); ok {
			return "", nil, types.InvalidToken("Invalid Email")
		}
		return "", nil, err
	}

	if !ComparePassword(password, user.Password) {
		return "", nil, types.InvalidToken("Invalid Password")
	}

	token, err := IssueToken(key, user.ID, "", ttl)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// UserFromToken resolves a bearer token to its user.
func UserFromToken(db *gorm.DB, key, token string) (*models.User, error) {
	claims, err := VerifyToken(key, token)
	if err != nil {
		return nil, err
	}
	user, err := GetUserByID(db, claims.Subject)
	if err != nil {
		if _, ok := types.AsFault(err); ok {
			return nil, types.InvalidToken("User not valid")
		}
		return nil, err
	}
	return user, nil
}

// IssueResetToken mints the short-lived password reset token.
func IssueResetToken(db *gorm.DB, key string, ttl time.Duration, email string) (string, *models.User, error) {
	user, err := GetUserByEmail(db, email)
	if err != nil {
		if _, ok := types.AsFault(err); ok {
			return "", nil, types.InvalidToken("Invalid Email")
		}
		return "", nil, err
	}
	token, err := IssueToken(key, user.ID, ReasonPasswordReset, ttl)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ResetPassword validates a reset token and stores the new password.
func ResetPassword(db *gorm.DB, key, token, newPassword string) error {
	if newPassword == "" {
		return types.Validation("newPassword is required")
	}
	claims, err := VerifyToken(key, token)
	if err != nil {
		return err
	}
	if claims.Reason != ReasonPasswordReset {
		return types.InvalidToken("Invalid token")
	}
	hashed, err := HashPassword(newPassword)
	if err != nil {
		return types.Store("failed to hash password: %v", err)
	}
	result := db.Model(&models.User{}).Where("id = ?", claims.Subject).Update("password", hashed)
	if result.Error != nil {
		return types.Store("failed to update password: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return types.NotFound("user '%s' not found", claims.Subject)
	}
	return nil
}
