package services

import (
	"errors"

	"github.com/sqlizer/sqlizer/internal/models"
	"github.com/sqlizer/sqlizer/internal/types"
	"gorm.io/gorm"
)

// RightsInput carries the three permission flags of an edge. Nil means
// "leave unchanged" on partial updates.
type RightsInput struct {
	CreateRight *bool `json:"create_right"`
	UpdateRight *bool `json:"update_right"`
	DeleteRight *bool `json:"delete_right"`
}

// CreateWorkgroup creates a group and the creator's all-rights edge.
func CreateWorkgroup(db *gorm.DB, groupName, creatorID string) (*models.UserWorkgroup, error) {
	workgroup := &models.Workgroup{GroupName: groupName, CreatorID: creatorID}
	edge := &models.UserWorkgroup{
		CreateRight: true,
		UpdateRight: true,
		DeleteRight: true,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workgroup).Error; err != nil {
			return err
		}
		edge.UserID = creatorID
		edge.GroupID = workgroup.ID
		return tx.Create(edge).Error
	})
	if err != nil {
		return nil, types.Store("failed to create workgroup: %v", err)
	}

	edge.Workgroup = *workgroup
	return edge, nil
}

// GetWorkgroupByID fetches a workgroup.
func GetWorkgroupByID(db *gorm.DB, id string) (*models.Workgroup, error) {
	var workgroup models.Workgroup
	if err := db.Where("id = ?", id).First(&workgroup).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("workgroup '%s' not found", id)
		}
		return nil, types.Store("failed to load workgroup: %v", err)
	}
	return &workgroup, nil
}

// GetPermissionEdge fetches the (user, group) permission edge, or a
// notFound fault when the user is not a member.
func GetPermissionEdge(db *gorm.DB, userID, groupID string) (*models.UserWorkgroup, error) {
	var edge models.UserWorkgroup
	err := db.Where("user_id = ? AND group_id = ?", userID, groupID).First(&edge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("user '%s' is not a member of workgroup '%s'", userID, groupID)
		}
		return nil, types.Store("failed to load permission edge: %v", err)
	}
	return &edge, nil
}

// GetUserWorkgroups lists the caller's permission edges with their groups.
func GetUserWorkgroups(db *gorm.DB, userID string) ([]models.UserWorkgroup, error) {
	var edges []models.UserWorkgroup
	err := db.Where("user_id = ?", userID).Preload("Workgroup").Find(&edges).Error
	if err != nil {
		return nil, types.Store("failed to load workgroups: %v", err)
	}
	return edges, nil
}

// GetWorkgroupMembers lists a group's permission edges with their users.
func GetWorkgroupMembers(db *gorm.DB, groupID string) ([]models.UserWorkgroup, error) {
	var edges []models.UserWorkgroup
	err := db.Where("group_id = ?", groupID).Preload("User").Find(&edges).Error
	if err != nil {
		return nil, types.Store("failed to load workgroup members: %v", err)
	}
	return edges, nil
}

// AddUserToWorkgroup creates a permission edge for a new member.
func AddUserToWorkgroup(db *gorm.DB, edge models.UserWorkgroup) error {
	if _, err := GetPermissionEdge(db, edge.UserID, edge.GroupID); err == nil {
		return types.Conflict("user already in the group")
	}
	if err := db.Create(&edge).Error; err != nil {
		return types.Store("failed to add user to workgroup: %v", err)
	}
	return nil
}

// UpdateUserRights updates the flags of an existing edge. Nil flags keep
// their current value.
func UpdateUserRights(db *gorm.DB, userID, groupID string, rights RightsInput) error {
	updates := make(map[string]interface{})
	if rights.CreateRight != nil {
		updates["create_right"] = *rights.CreateRight
	}
	if rights.UpdateRight != nil {
		updates["update_right"] = *rights.UpdateRight
	}
	if rights.DeleteRight != nil {
		updates["delete_right"] = *rights.DeleteRight
	}
	if len(updates) == 0 {
		return types.Validation("no rights to update")
	}

	result := db.Model(&models.UserWorkgroup{}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Updates(updates)
	if result.Error != nil {
		return types.Store("failed to update rights: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return types.NotFound("user '%s' is not a member of workgroup '%s'", userID, groupID)
	}
	return nil
}

// RemoveUserFromWorkgroup deletes the (user, group) edge.
func RemoveUserFromWorkgroup(db *gorm.DB, userID, groupID string) error {
	result := db.Where("user_id = ? AND group_id = ?", userID, groupID).
		Delete(&models.UserWorkgroup{})
	if result.Error != nil {
		return types.Store("failed to remove user from workgroup: %v", result.Error)
	}
	return nil
}

// DeleteWorkgroup removes a group and all its permission edges.
func DeleteWorkgroup(db *gorm.DB, groupID string) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&models.UserWorkgroup{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", groupID).Delete(&models.Workgroup{}).Error
	})
	if err != nil {
		return types.Store("failed to delete workgroup: %v", err)
	}
	return nil
}
