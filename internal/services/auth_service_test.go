package services_test

import (
	"testing"
	"time"

	"github.com/sqlizer/sqlizer/internal/models"
	"github.com/sqlizer/sqlizer/internal/services"
	"github.com/sqlizer/sqlizer/internal/types"
)

func TestRegisterUserSeedsDefaultWorkgroup(t *testing.T) {
	db := setupTestDB(t)

	user := registerTestUser(t, db, "ada@example.com")
	if user.ID == "" {
		t.Fatal("Expected an assigned user id")
	}

	edges, err := services.GetUserWorkgroups(db, user.ID)
	if err != nil {
		t.Fatalf("GetUserWorkgroups: %v", err)
	}
	if len(edges) != 1 {
		t.Fatalf("Expected one seeded workgroup, got %d", len(edges))
	}

	edge := edges[0]
	if edge.Workgroup.GroupName != services.DefaultWorkgroupName {
		t.Errorf("Unexpected group name %q", edge.Workgroup.GroupName)
	}
	if !edge.Workgroup.Private {
		t.Error("Expected the default workgroup to be private")
	}
	if !edge.CreateRight || !edge.UpdateRight || edge.DeleteRight {
		t.Errorf("Expected create+update without delete, got %+v", edge)
	}
}

func TestRegisterUserRejectsDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	registerTestUser(t, db, "ada@example.com")

	_, err := services.RegisterUser(db, services.RegisterInput{
		FirstName: "Other",
		LastName:  "User",
		Email:     "ada@example.com",
		Password:  "different",
	})
	f, ok := types.AsFault(err)
	if !ok || f.Type != types.FaultConflict {
		t.Errorf("Expected conflict fault, got %v", err)
	}
}

func TestRegisterUserStoresHashedPassword(t *testing.T) {
	db := setupTestDB(t)
	registerTestUser(t, db, "ada@example.com")

	var stored models.User
	if err := db.Where("email = ?", "ada@example.com").First(&stored).Error; err != nil {
		t.Fatalf("Failed to load user: %v", err)
	}
	if stored.Password == "s3cret!pass" {
		t.Error("Password must not be stored in clear text")
	}
	if !services.ComparePassword("s3cret!pass", stored.Password) {
		t.Error("Stored hash must verify against the original password")
	}
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	user := registerTestUser(t, db, "ada@example.com")

	token, loggedIn, err := services.Login(db, testJWTKey, time.Hour, "ada@example.com", "s3cret!pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("Expected user %s, got %s", user.ID, loggedIn.ID)
	}

	claims, err := services.VerifyToken(testJWTKey, token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.Subject != user.ID {
		t.Errorf("Expected subject %s, got %s", user.ID, claims.Subject)
	}

	_, _, err = services.Login(db, testJWTKey, time.Hour, "nobody@example.com", "s3cret!pass")
	if f, ok := types.AsFault(err); !ok || f.Type != types.FaultInvalidToken {
		t.Errorf("Expected invalidToken for unknown email, got %v", err)
	}

	_, _, err = services.Login(db, testJWTKey, time.Hour, "ada@example.com", "wrong")
	if f, ok := types.AsFault(err); !ok || f.Type != types.FaultInvalidToken {
		t.Errorf("Expected invalidToken for wrong password, got %v", err)
	}
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	token, err := services.IssueToken(testJWTKey, "user-1", "", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := services.VerifyToken("other-key", token); err == nil {
		t.Error("Expected a token signed with another key to fail")
	}
	if _, err := services.VerifyToken(testJWTKey, token+"x"); err == nil {
		t.Error("Expected a mangled token to fail")
	}

	expired, err := services.IssueToken(testJWTKey, "user-1", "", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := services.VerifyToken(testJWTKey, expired); err == nil {
		t.Error("Expected an expired token to fail")
	}
}

func TestUserFromToken(t *testing.T) {
	db := setupTestDB(t)
	user := registerTestUser(t, db, "ada@example.com")

	token, err := services.IssueToken(testJWTKey, user.ID, "", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	resolved, err := services.UserFromToken(db, testJWTKey, token)
	if err != nil {
		t.Fatalf("UserFromToken: %v", err)
	}
	if resolved.Email != "ada@example.com" {
		t.Errorf("Unexpected user %s", resolved.Email)
	}

	// Valid signature but no matching account
	orphan, _ := services.IssueToken(testJWTKey, "gone", "", time.Hour)
	if _, err := services.UserFromToken(db, testJWTKey, orphan); err == nil {
		t.Error("Expected a token for a deleted user to fail")
	}
}

func TestResetPasswordFlow(t *testing.T) {
	db := setupTestDB(t)
	user := registerTestUser(t, db, "ada@example.com")

	token, forUser, err := services.IssueResetToken(db, testJWTKey, time.Hour, "ada@example.com")
	if err != nil {
		t.Fatalf("IssueResetToken: %v", err)
	}
	if forUser.ID != user.ID {
		t.Errorf("Expected reset token for %s, got %s", user.ID, forUser.ID)
	}

	if err := services.ResetPassword(db, testJWTKey, token, "newpass!123"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	if _, _, err := services.Login(db, testJWTKey, time.Hour, "ada@example.com", "s3cret!pass"); err == nil {
		t.Error("Expected the old password to be rejected")
	}
	if _, _, err := services.Login(db, testJWTKey, time.Hour, "ada@example.com", "newpass!123"); err != nil {
		t.Errorf("Expected the new password to work, got %v", err)
	}
}

func TestResetPasswordRejectsSessionToken(t *testing.T) {
	db := setupTestDB(t)
	user := registerTestUser(t, db, "ada@example.com")

	session, err := services.IssueToken(testJWTKey, user.ID, "", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	err = services.ResetPassword(db, testJWTKey, session, "newpass!123")
	if f, ok := types.AsFault(err); !ok || f.Type != types.FaultInvalidToken {
		t.Errorf("Expected invalidToken for a session token, got %v", err)
	}
}
