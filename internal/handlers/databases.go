// databases.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sqlizer/sqlizer/internal/models"
	"github.com/sqlizer/sqlizer/internal/schema"
	"github.com/sqlizer/sqlizer/internal/services"
	"github.com/sqlizer/sqlizer/internal/types"
	"gorm.io/gorm"
)

// DatabaseHandler handles database group and canvas routes.
type DatabaseHandler struct {
	DB *gorm.DB
}

// requireMembership checks the caller belongs to the workgroup and returns
// the permission edge. Missing edges come back as permissionDenied.
func (h *DatabaseHandler) requireMembership(c *fiber.Ctx, workgroupID string) (*models.UserWorkgroup, error) {
	user := currentUser(c)
	edge, err := services.GetPermissionEdge(h.DB, user.ID, workgroupID)
	if err != nil {
		if f, ok := types.AsFault(err); ok && f.Type == types.FaultNotFound {
			return nil, types.PermissionDenied("group does not exist or user is not in group")
		}
		return nil, err
	}
	return edge, nil
}

// GetDatabases handles GET /database/getDatabases/:workgroupId
// @Summary List the database groups of a workgroup with their canvases
// @Tags Databases
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /database/getDatabases/{workgroupId} [get]
func (h *DatabaseHandler) GetDatabases(c *fiber.Ctx) error {
	workgroupID := c.Params("workgroupId")

	if _, err := h.requireMembership(c, workgroupID); err != nil {
		return renderError(c, err, "getDatabases")
	}

	groups, err := services.GetDatabaseGroups(h.DB, workgroupID)
	if err != nil {
		return renderError(c, err, "getDatabases")
	}
	return c.JSON(fiber.Map{"databases": groups})
}

// GetDatabase handles GET /database/getDatabase/:workgroupId/:databaseId
// @Summary Fetch one canvas including its stored structure
// @Tags Databases
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /database/getDatabase/{workgroupId}/{databaseId} [get]
func (h *DatabaseHandler) GetDatabase(c *fiber.Ctx) error {
	workgroupID := c.Params("workgroupId")
	databaseID := c.Params("databaseId")

	if _, err := h.requireMembership(c, workgroupID); err != nil {
		return renderError(c, err, "getDatabase")
	}

	database, err := services.GetDatabaseByID(h.DB, databaseID)
	if err != nil {
		return renderError(c, err, "getDatabase")
	}

	// The canvas must belong to a group owned by this workgroup.
	group, err := services.GetDatabaseGroupByID(h.DB, database.GroupID)
	if err != nil || group.WorkgroupID != workgroupID {
		return renderError(c, types.NotFound("db does not exist or is not in the group"), "getDatabase")
	}

	return c.JSON(fiber.Map{"database": database})
}

// CreateDatabaseGroup handles POST /database/createDatabaseGroup
// @Summary Create a database group seeded with its master canvas
// @Tags Databases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Database
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /database/createDatabaseGroup [post]
func (h *DatabaseHandler) CreateDatabaseGroup(c *fiber.Ctx) error {
	var input struct {
		WorkgroupID string `json:"workgroupId"`
		DBGroupName string `json:"dbGroupName"`
	}
	if !parseBody(c, &input) {
		return nil
	}
	if input.WorkgroupID == "" || input.DBGroupName == "" {
		return renderError(c, types.Validation("workgroupId and dbGroupName are required"), "createDatabaseGroup")
	}

	edge, err := h.requireMembership(c, input.WorkgroupID)
	if err != nil {
		return renderError(c, err, "createDatabaseGroup")
	}
	if !edge.CreateRight {
		return renderError(c, types.PermissionDenied("user is not allowed to create a database"), "createDatabaseGroup")
	}

	database, err := services.CreateDatabaseGroup(h.DB, input.WorkgroupID, input.DBGroupName)
	if err != nil {
		return renderError(c, err, "createDatabaseGroup")
	}
	return c.JSON(database)
}

// DuplicateDatabase handles PUT /database/duplicateDatabase
// @Summary Copy a canvas inside its group under "<name>_copy"
// @Tags Databases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /database/duplicateDatabase [put]
func (h *DatabaseHandler) DuplicateDatabase(c *fiber.Ctx) error {
	var input struct {
		DatabaseID      string `json:"databaseId"`
		WorkgroupID     string `json:"workgroupId"`
		DatabaseGroupID string `json:"databaseGroupId"`
	}
	if !parseBody(c, &input) {
		return nil
	}
	if input.DatabaseID == "" || input.WorkgroupID == "" || input.DatabaseGroupID == "" {
		return renderError(c, types.Validation("databaseId, workgroupId and databaseGroupId are required"), "duplicateDatabase")
	}

	edge, err := h.requireMembership(c, input.WorkgroupID)
	if err != nil {
		return renderError(c, err, "duplicateDatabase")
	}
	if !edge.CreateRight {
		return renderError(c, types.PermissionDenied("user is not allowed to create a database"), "duplicateDatabase")
	}

	duplicate, err := services.DuplicateDatabase(h.DB, input.DatabaseID, input.DatabaseGroupID)
	if err != nil {
		return renderError(c, err, "duplicateDatabase")
	}
	return c.JSON(fiber.Map{"success": true, "response": duplicate})
}

// RenameDatabase handles PUT /database/renameDatabase
// @Summary Rename a canvas
// @Tags Databases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Database
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /database/renameDatabase [put]
func (h *DatabaseHandler) RenameDatabase(c *fiber.Ctx) error {
	var input struct {
		DatabaseID   string `json:"databaseId"`
		DatabaseName string `json:"databaseName"`
		WorkgroupID  string `json:"workgroupId"`
	}
	if !parseBody(c, &input) {
		return nil
	}
	if input.DatabaseID == "" || input.DatabaseName == "" || input.WorkgroupID == "" {
		return renderError(c, types.Validation("databaseId, databaseName and workgroupId are required"), "renameDatabase")
	}

	edge, err := h.requireMembership(c, input.WorkgroupID)
	if err != nil {
		return renderError(c, err, "renameDatabase")
	}
	if !edge.UpdateRight {
		return renderError(c, types.PermissionDenied("user is not allowed to update the database"), "renameDatabase")
	}

	database, err := services.RenameDatabase(h.DB, input.DatabaseID, input.DatabaseName)
	if err != nil {
		return renderError(c, err, "renameDatabase")
	}
	return c.JSON(database)
}

// UpdateDatabase handles PUT /database/updateDatabase
// @Summary Replace a canvas structure wholesale
// @Tags Databases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Database
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /database/updateDatabase [put]
func (h *DatabaseHandler) UpdateDatabase(c *fiber.Ctx) error {
	var input struct {
		DatabaseID   string `json:"databaseId"`
		DatabaseJSON string `json:"databaseJson"`
		WorkgroupID  string `json:"workgroupId"`
	}
	if !parseBody(c, &input) {
		return nil
	}
	if input.DatabaseID == "" || input.DatabaseJSON == "" || input.WorkgroupID == "" {
		return renderError(c, types.Validation("databaseId, databaseJson and workgroupId are required"), "updateDatabase")
	}

	edge, err := h.requireMembership(c, input.WorkgroupID)
	if err != nil {
		return renderError(c, err, "updateDatabase")
	}
	if !edge.UpdateRight {
		return renderError(c, types.PermissionDenied("user is not allowed to update the database"), "updateDatabase")
	}

	// Reject payloads that do not decode as a schema document before
	// they reach storage.
	if _, err := schema.Parse([]byte(input.DatabaseJSON)); err != nil {
		return renderError(c, err, "updateDatabase")
	}

	database, err := services.UpdateDatabaseStructure(h.DB, input.DatabaseID, []byte(input.DatabaseJSON))
	if err != nil {
		return renderError(c, err, "updateDatabase")
	}
	return c.JSON(database)
}
