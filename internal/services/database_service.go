// database_service.go
//
// Collaborative relational database schema design service
// Copyright (c) 2026 SQLizer
//
// This file is part of sqlizer.
// sqlizer is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// sqlizer is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with sqlizer.
// If not, see <https://www.gnu.org/licenses/>.

package services

import (
	"errors"
	"time"

	"github.com/sqlizer/sqlizer/internal/models"
	"github.com/sqlizer/sqlizer/internal/schema"
	"github.com/sqlizer/sqlizer/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultCanvasName is the canvas every new database group starts with.
const DefaultCanvasName = "master"

// CreateDatabaseGroup creates a group inside a workgroup and seeds it
// with an empty "master" canvas.
func CreateDatabaseGroup(db *gorm.DB, workgroupID, groupName string) (*models.Database, error) {
	doc := schema.NewDocument(DefaultCanvasName)
	structure, err := doc.Bytes()
	if err != nil {
		return nil, err
	}

	group := &models.DatabaseGroup{Name: groupName, WorkgroupID: workgroupID}
	canvas := &models.Database{
		Name:      DefaultCanvasName,
		Structure: models.JSON{JSON: datatypes.JSON(structure)},
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		canvas.GroupID = group.ID
		return tx.Create(canvas).Error
	})
	if err != nil {
		return nil, types.Store("failed to create database group: %v", err)
	}
	return canvas, nil
}

// GetDatabaseGroups lists a workgroup's groups with canvas summaries.
func GetDatabaseGroups(db *gorm.DB, workgroupID string) ([]models.DatabaseGroup, error) {
	var groups []models.DatabaseGroup
	err := db.Where("workgroup_id = ?", workgroupID).
		Preload("Databases", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "name", "group_id", "updated_at")
		}).
		Find(&groups).Error
	if err != nil {
		return nil, types.Store("failed to load database groups: %v", err)
	}
	return groups, nil
}

// GetDatabaseGroupByID fetches one database group.
func GetDatabaseGroupByID(db *gorm.DB, id string) (*models.DatabaseGroup, error) {
	var group models.DatabaseGroup
	if err := db.Where("id = ?", id).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("database group '%s' not found", id)
		}
		return nil, types.Store("failed to load database group: %v", err)
	}
	return &group, nil
}

// GetDatabaseByID fetches one canvas row.
func GetDatabaseByID(db *gorm.DB, id string) (*models.Database, error) {
	var database models.Database
	if err := db.Where("id = ?", id).First(&database).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("database '%s' not found", id)
		}
		return nil, types.Store("failed to load database: %v", err)
	}
	return &database, nil
}

// GetDatabaseByIDAndGroup fetches a canvas scoped to its group.
func GetDatabaseByIDAndGroup(db *gorm.DB, id, groupID string) (*models.Database, error) {
	var database models.Database
	err := db.Where("id = ? AND group_id = ?", id, groupID).First(&database).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("database '%s' not found in group '%s'", id, groupID)
		}
		return nil, types.Store("failed to load database: %v", err)
	}
	return &database, nil
}

// RenameDatabase updates a canvas name.
func RenameDatabase(db *gorm.DB, id, name string) (*models.Database, error) {
	result := db.Model(&models.Database{}).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return nil, types.Store("failed to rename database: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, types.NotFound("database '%s' not found", id)
	}
	return GetDatabaseByID(db, id)
}

// UpdateDatabaseStructure replaces the stored schema document wholesale.
func UpdateDatabaseStructure(db *gorm.DB, id string, structure []byte) (*models.Database, error) {
	result := db.Model(&models.Database{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"structure":  datatypes.JSON(structure),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, types.Store("failed to update database structure: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, types.NotFound("database '%s' not found", id)
	}
	return GetDatabaseByID(db, id)
}

// DuplicateDatabase copies a canvas within its group as "<name>_copy".
func DuplicateDatabase(db *gorm.DB, id, groupID string) (*models.Database, error) {
	source, err := GetDatabaseByIDAndGroup(db, id, groupID)
	if err != nil {
		return nil, err
	}

	copy := models.Database{
		Name:      source.Name + "_copy",
		GroupID:   source.GroupID,
		Structure: source.Structure,
		IsPublic:  source.IsPublic,
	}
	if err := db.Create(&copy).Error; err != nil {
		return nil, types.Store("failed to duplicate database: %v", err)
	}
	return &copy, nil
}

// CanUserUpdateDatabase resolves the permission chain canvas -> database
// group -> workgroup -> permission edge and returns the edge's update
// right. Any missing link fails closed.
func CanUserUpdateDatabase(db *gorm.DB, userID, databaseID string) bool {
	database, err := GetDatabaseByID(db, databaseID)
	if err != nil {
		return false
	}
	group, err := GetDatabaseGroupByID(db, database.GroupID)
	if err != nil {
		return false
	}
	workgroup, err := GetWorkgroupByID(db, group.WorkgroupID)
	if err != nil {
		return false
	}
	edge, err := GetPermissionEdge(db, userID, workgroup.ID)
	if err != nil {
		return false
	}
	return edge.UpdateRight
}

// GetDocument decodes the schema document stored for a canvas.
func GetDocument(db *gorm.DB, databaseID string) (*schema.Document, error) {
	database, err := GetDatabaseByID(db, databaseID)
	if err != nil {
		return nil, err
	}
	return schema.Parse(database.Structure.JSON)
}

// SaveDocument persists a schema document for a canvas. The per-row write
// is atomic; callers that need read-modify-write consistency serialize
// around it.
func SaveDocument(db *gorm.DB, databaseID string, doc *schema.Document) error {
	data, err := doc.Bytes()
	if err != nil {
		return err
	}
	_, err = UpdateDatabaseStructure(db, databaseID, data)
	return err
}
