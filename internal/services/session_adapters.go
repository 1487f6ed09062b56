package services

import (
	"github.com/sqlizer/sqlizer/internal/canvas"
	"github.com/sqlizer/sqlizer/internal/schema"
	"gorm.io/gorm"
)

// TokenResolver adapts the auth service to the session manager.
type TokenResolver struct {
	DB     *gorm.DB
	JWTKey string
}

// UserFromToken implements canvas.TokenResolver.
func (r *TokenResolver) UserFromToken(token string) (*canvas.Participant, error) {
	user, err := UserFromToken(r.DB, r.JWTKey, token)
	if err != nil {
		return nil, err
	}
	return &canvas.Participant{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		ImageURL:  user.ImageURL,
	}, nil
}

// PermissionChecker adapts the permission chain to the session manager.
type PermissionChecker struct {
	DB *gorm.DB
}

// CanUpdateDatabase implements canvas.PermissionChecker. The chain fails
// closed, so the error return is always nil.
func (p *PermissionChecker) CanUpdateDatabase(userID, canvasID string) (bool, error) {
	return CanUserUpdateDatabase(p.DB, userID, canvasID), nil
}

// DocumentStore adapts canvas persistence to the session manager.
type DocumentStore struct {
	DB *gorm.DB
}

// GetDocument implements canvas.DocumentStore.
func (s *DocumentStore) GetDocument(canvasID string) (*schema.Document, error) {
	return GetDocument(s.DB, canvasID)
}

// SaveDocument implements canvas.DocumentStore.
func (s *DocumentStore) SaveDocument(canvasID string, doc *schema.Document) error {
	return SaveDocument(s.DB, canvasID, doc)
}
