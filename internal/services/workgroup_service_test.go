package services_test

import (
	"testing"

	"github.com/sqlizer/sqlizer/internal/models"
	"github.com/sqlizer/sqlizer/internal/services"
	"github.com/sqlizer/sqlizer/internal/types"
)

func boolPtr(v bool) *bool { return &v }

func TestCreateWorkgroupGrantsAllRights(t *testing.T) {
	db := setupTestDB(t)
	user := registerTestUser(t, db, "ada@example.com")

	edge, err := services.CreateWorkgroup(db, "Team Alpha", user.ID)
	if err != nil {
		t.Fatalf("CreateWorkgroup: %v", err)
	}
	if !edge.CreateRight || !edge.UpdateRight || !edge.DeleteRight {
		t.Errorf("Expected the creator to hold all rights, got %+v", edge)
	}
	if edge.Workgroup.CreatorID != user.ID {
		t.Errorf("Expected creator %s, got %s", user.ID, edge.Workgroup.CreatorID)
	}
}

func TestAddUserToWorkgroup(t *testing.T) {
	db := setupTestDB(t)
	owner := registerTestUser(t, db, "owner@example.com")
	member := registerTestUser(t, db, "member@example.com")

	edge, err := services.CreateWorkgroup(db, "Team Alpha", owner.ID)
	if err != nil {
		t.Fatalf("CreateWorkgroup: %v", err)
	}

	add := models.UserWorkgroup{
		UserID:      member.ID,
		GroupID:     edge.GroupID,
		CreateRight: true,
	}
	if err := services.AddUserToWorkgroup(db, add); err != nil {
		t.Fatalf("AddUserToWorkgroup: %v", err)
	}

	// Adding the same member twice is a conflict.
	err = services.AddUserToWorkgroup(db, add)
	if f, ok := types.AsFault(err); !ok || f.Type != types.FaultConflict {
		t.Errorf("Expected conflict for duplicate membership, got %v", err)
	}

	members, err := services.GetWorkgroupMembers(db, edge.GroupID)
	if err != nil {
		t.Fatalf("GetWorkgroupMembers: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("Expected 2 members, got %d", len(members))
	}
}

func TestUpdateUserRightsPartial(t *testing.T) {
	db := setupTestDB(t)
	owner := registerTestUser(t, db, "owner@example.com")
	member := registerTestUser(t, db, "member@example.com")

	edge, err := services.CreateWorkgroup(db, "Team Alpha", owner.ID)
	if err != nil {
		t.Fatalf("CreateWorkgroup: %v", err)
	}
	if err := services.AddUserToWorkgroup(db, models.UserWorkgroup{
		UserID:      member.ID,
		GroupID:     edge.GroupID,
		CreateRight: true,
		UpdateRight: true,
	}); err != nil {
		t.Fatalf("AddUserToWorkgroup: %v", err)
	}

	// Only delete_right changes; the other flags stay.
	if err := services.UpdateUserRights(db, member.ID, edge.GroupID, services.RightsInput{
		DeleteRight: boolPtr(true),
	}); err != nil {
		t.Fatalf("UpdateUserRights: %v", err)
	}

	updated, err := services.GetPermissionEdge(db, member.ID, edge.GroupID)
	if err != nil {
		t.Fatalf("GetPermissionEdge: %v", err)
	}
	if !updated.CreateRight || !updated.UpdateRight || !updated.DeleteRight {
		t.Errorf("Expected create+update preserved and delete granted, got %+v", updated)
	}

	err = services.UpdateUserRights(db, "ghost", edge.GroupID, services.RightsInput{CreateRight: boolPtr(false)})
	if f, ok := types.AsFault(err); !ok || f.Type != types.FaultNotFound {
		t.Errorf("Expected notFound for a missing edge, got %v", err)
	}
}

func TestRemoveUserFromWorkgroup(t *testing.T) {
	db := setupTestDB(t)
	owner := registerTestUser(t, db, "owner@example.com")
	member := registerTestUser(t, db, "member@example.com")

	edge, err := services.CreateWorkgroup(db, "Team Alpha", owner.ID)
	if err != nil {
		t.Fatalf("CreateWorkgroup: %v", err)
	}
	if err := services.AddUserToWorkgroup(db, models.UserWorkgroup{
		UserID:  member.ID,
		GroupID: edge.GroupID,
	}); err != nil {
		t.Fatalf("AddUserToWorkgroup: %v", err)
	}

	if err := services.RemoveUserFromWorkgroup(db, member.ID, edge.GroupID); err != nil {
		t.Fatalf("RemoveUserFromWorkgroup: %v", err)
	}

	_, err = services.GetPermissionEdge(db, member.ID, edge.GroupID)
	if f, ok := types.AsFault(err); !ok || f.Type != types.FaultNotFound {
		t.Errorf("Expected the membership gone, got %v", err)
	}
}

func TestDeleteWorkgroupRemovesEdges(t *testing.T) {
	db := setupTestDB(t)
	owner := registerTestUser(t, db, "owner@example.com")
	member := registerTestUser(t, db, "member@example.com")

	edge, err := services.CreateWorkgroup(db, "Team Alpha", owner.ID)
	if err != nil {
		t.Fatalf("CreateWorkgroup: %v", err)
	}
	if err := services.AddUserToWorkgroup(db, models.UserWorkgroup{
		UserID:  member.ID,
		GroupID: edge.GroupID,
	}); err != nil {
		t.Fatalf("AddUserToWorkgroup: %v", err)
	}

	if err := services.DeleteWorkgroup(db, edge.GroupID); err != nil {
		t.Fatalf("DeleteWorkgroup: %v", err)
	}

	if _, err := services.GetWorkgroupByID(db, edge.GroupID); err == nil {
		t.Error("Expected the workgroup gone")
	}
	var count int64
	db.Model(&models.UserWorkgroup{}).Where("group_id = ?", edge.GroupID).Count(&count)
	if count != 0 {
		t.Errorf("Expected no orphaned edges, got %d", count)
	}
}
