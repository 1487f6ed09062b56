package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sqlizer/sqlizer/internal/models"
	"github.com/sqlizer/sqlizer/internal/services"
	"github.com/sqlizer/sqlizer/internal/types"
	"gorm.io/gorm"
)

// WorkgroupHandler handles workgroup and permission routes
type WorkgroupHandler struct {
	DB *gorm.DB
}

// memberView is the admin-facing member listing entry.
type memberView struct {
	UserID    string          `json:"user_id"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Email     string          `json:"email"`
	Rights    map[string]bool `json:"rights"`
}

func rightsMap(edge models.UserWorkgroup) map[string]bool {
	return map[string]bool{
		"create_right": edge.CreateRight,
		"update_right": edge.UpdateRight,
		"delete_right": edge.DeleteRight,
	}
}

// GetWorkgroups handles GET /workgroups
// @Summary List the caller's workgroups
// @Tags Workgroups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /workgroups [get]
func (h *WorkgroupHandler) GetWorkgroups(c *fiber.Ctx) error {
	user := currentUser(c)

	edges, err := services.GetUserWorkgroups(h.DB, user.ID)
	if err != nil {
		return renderError(c, err, "getWorkgroups")
	}
	return c.JSON(fiber.Map{"workgroups": edges})
}

// GetWorkgroupsDatas handles GET /workgroups/datas
// @Summary Formatted per-group view with rights and, for admins, members
// @Tags Workgroups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /workgroups/datas [get]
func (h *WorkgroupHandler) GetWorkgroupsDatas(c *fiber.Ctx) error {
	user := currentUser(c)

	edges, err := services.GetUserWorkgroups(h.DB, user.ID)
	if err != nil {
		return renderError(c, err, "getWorkgroupsDatas")
	}

	groups := make([]fiber.Map, 0, len(edges))
	for _, edge := range edges {
		isAdmin := edge.Workgroup.CreatorID == user.ID
		group := fiber.Map{
			"group_name": edge.Workgroup.GroupName,
			"group_id":   edge.Workgroup.ID,
			"is_admin":   isAdmin,
			"rights":     rightsMap(edge),
		}

		if isAdmin {
			members, err := services.GetWorkgroupMembers(h.DB, edge.GroupID)
			if err != nil {
				return renderError(c, err, "getWorkgroupsDatas")
			}
			users := make([]memberView, 0, len(members))
			for _, member := range members {
				users = append(users, memberView{
					UserID:    member.User.ID,
					FirstName: member.User.FirstName,
					LastName:  member.User.LastName,
					Email:     member.User.Email,
					Rights:    rightsMap(member),
				})
			}
			group["users"] = users
		}
		groups = append(groups, group)
	}

	return c.JSON(fiber.Map{"success": true, "groups": groups})
}

// CreateWorkgroup handles POST /workgroups/createWorkgroup
// @Summary Create a workgroup
// @Tags Workgroups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /workgroups/createWorkgroup [post]
func (h *WorkgroupHandler) CreateWorkgroup(c *fiber.Ctx) error {
	user := currentUser(c)

	var input struct {
		GroupName string `json:"group_name"`
	}
	if !parseBody(c, &input) {
		return nil
	}
	if input.GroupName == "" {
		return renderError(c, types.Validation("group_name is required"), "createWorkgroup")
	}

	edge, err := services.CreateWorkgroup(h.DB, input.GroupName, user.ID)
	if err != nil {
		return renderError(c, err, "createWorkgroup")
	}
	return c.JSON(fiber.Map{"workgroup": edge})
}

// AddUserToWorkgroup handles PUT /workgroups/addUserToWorkgroup
// @Summary Add a member to a workgroup with initial rights
// @Tags Workgroups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /workgroups/addUserToWorkgroup [put]
func (h *WorkgroupHandler) AddUserToWorkgroup(c *fiber.Ctx) error {
	var input struct {
		Email       string `json:"email"`
		GroupID     string `json:"groupId"`
		CreateRight bool   `json:"create_right"`
		UpdateRight bool   `json:"update_right"`
		DeleteRight bool   `json:"delete_right"`
	}
	if !parseBody(c, &input) {
		return nil
	}
	if input.Email == "" || input.GroupID == "" {
		return renderError(c, types.Validation("email and groupId are required"), "addUserToWorkgroup")
	}

	member, err := services.GetUserByEmail(h.DB, input.Email)
	if err != nil {
		return renderError(c, err, "addUserToWorkgroup")
	}

	group, err := services.GetWorkgroupByID(h.DB, input.GroupID)
	if err != nil {
		return renderError(c, err, "addUserToWorkgroup")
	}

	edge := models.UserWorkgroup{
		UserID:      member.ID,
		GroupID:     group.ID,
		CreateRight: input.CreateRight,
		UpdateRight: input.UpdateRight,
		DeleteRight: input.DeleteRight,
	}
	if err := services.AddUserToWorkgroup(h.DB, edge); err != nil {
		return renderError(c, err, "addUserToWorkgroup")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"first_name": member.FirstName,
			"last_name":  member.LastName,
			"email":      member.Email,
			"rights":     rightsMap(edge),
		},
	})
}

// requireCreator loads the workgroup and checks the caller is its creator.
func (h *WorkgroupHandler) requireCreator(c *fiber.Ctx, groupID string) (*models.Workgroup, error) {
	user := currentUser(c)
	workgroup, err := services.GetWorkgroupByID(h.DB, groupID)
	if err != nil {
		return nil, err
	}
	if workgroup.CreatorID != user.ID {
		return nil, types.PermissionDenied("non-admin user can't edit rights")
	}
	return workgroup, nil
}

// UpdateUserRight handles PUT /workgroups/updateUserRight
// @Summary Replace a member's rights (creator only)
// @Tags Workgroups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /workgroups/updateUserRight [put]
func (h *WorkgroupHandler) UpdateUserRight(c *fiber.Ctx) error {
	var input struct {
		UserID  string               `json:"userId"`
		GroupID string               `json:"groupId"`
		Rights  services.RightsInput `json:"rights"`
	}
	if !parseBody(c, &input) {
		return nil
	}
	if input.UserID == "" || input.GroupID == "" {
		return renderError(c, types.Validation("userId and groupId are required"), "updateUserRight")
	}

	workgroup, err := h.requireCreator(c, input.GroupID)
	if err != nil {
		return renderError(c, err, "updateUserRight")
	}

	member, err := services.GetUserByID(h.DB, input.UserID)
	if err != nil {
		return renderError(c, err, "updateUserRight")
	}

	if err := services.UpdateUserRights(h.DB, member.ID, workgroup.ID, input.Rights); err != nil {
		return renderError(c, err, "updateUserRight")
	}
	return renderSuccess(c)
}

// updateSingleRight factors the three single-flag right endpoints.
func (h *WorkgroupHandler) updateSingleRight(c *fiber.Ctx, errorType string, pick func(value bool) services.RightsInput) error {
	var input struct {
		UserID      string `json:"userId"`
		GroupID     string `json:"groupId"`
		CreateRight *bool  `json:"create_right"`
		UpdateRight *bool  `json:"update_right"`
		DeleteRight *bool  `json:"delete_right"`
	}
	if !parseBody(c, &input) {
		return nil
	}
	if input.UserID == "" || input.GroupID == "" {
		return renderError(c, types.Validation("userId and groupId are required"), errorType)
	}

	var value *bool
	switch errorType {
	case "updateUserCreateRight":
		value = input.CreateRight
	case "updateUserUpdateRight":
		value = input.UpdateRight
	case "updateUserDeleteRight":
		value = input.DeleteRight
	}
	if value == nil {
		return renderError(c, types.Validation("missing right flag"), errorType)
	}

	workgroup, err := h.requireCreator(c, input.GroupID)
	if err != nil {
		return renderError(c, err, errorType)
	}

	member, err := services.GetUserByID(h.DB, input.UserID)
	if err != nil {
		return renderError(c, err, errorType)
	}

	if err := services.UpdateUserRights(h.DB, member.ID, workgroup.ID, pick(*value)); err != nil {
		return renderError(c, err, errorType)
	}
	return renderSuccess(c)
}

// UpdateUserCreateRight handles PUT /workgroups/updateUserCreateRight
func (h *WorkgroupHandler) UpdateUserCreateRight(c *fiber.Ctx) error {
	return h.updateSingleRight(c, "updateUserCreateRight", func(v bool) services.RightsInput {
		return services.RightsInput{CreateRight: &v}
	})
}

// UpdateUserUpdateRight handles PUT /workgroups/updateUserUpdateRight
func (h *WorkgroupHandler) UpdateUserUpdateRight(c *fiber.Ctx) error {
	return h.updateSingleRight(c, "updateUserUpdateRight", func(v bool) services.RightsInput {
		return services.RightsInput{UpdateRight: &v}
	})
}

// UpdateUserDeleteRight handles PUT /workgroups/updateUserDeleteRight
func (h *WorkgroupHandler) UpdateUserDeleteRight(c *fiber.Ctx) error {
	return h.updateSingleRight(c, "updateUserDeleteRight", func(v bool) services.RightsInput {
		return services.RightsInput{DeleteRight: &v}
	})
}

// RemoveUserOfWorkgroup handles DELETE /workgroups/removeUserOfWorkgroup
// @Summary Remove a member (creator only)
// @Tags Workgroups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /workgroups/removeUserOfWorkgroup [delete]
func (h *WorkgroupHandler) RemoveUserOfWorkgroup(c *fiber.Ctx) error {
	var input struct {
		UserID  string `json:"userId"`
		GroupID string `json:"groupId"`
	}
	if !parseBody(c, &input) {
		return nil
	}
	if input.UserID == "" || input.GroupID == "" {
		return renderError(c, types.Validation("userId and groupId are required"), "removeUserOfWorkgroup")
	}

	workgroup, err := h.requireCreator(c, input.GroupID)
	if err != nil {
		return renderError(c, err, "removeUserOfWorkgroup")
	}

	member, err := services.GetUserByID(h.DB, input.UserID)
	if err != nil {
		return renderError(c, err, "removeUserOfWorkgroup")
	}

	if err := services.RemoveUserFromWorkgroup(h.DB, member.ID, workgroup.ID); err != nil {
		return renderError(c, err, "removeUserOfWorkgroup")
	}
	return renderSuccess(c)
}

// DeleteWorkgroup handles DELETE /workgroups/deleteWorkgroup
// @Summary Delete a workgroup (requires delete right)
// @Tags Workgroups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /workgroups/deleteWorkgroup [delete]
func (h *WorkgroupHandler) DeleteWorkgroup(c *fiber.Ctx) error {
	user := currentUser(c)

	var input struct {
		GroupID string `json:"group_id"`
	}
	if !parseBody(c, &input) {
		return nil
	}
	if input.GroupID == "" {
		return renderError(c, types.Validation("group_id is required"), "deleteWorkgroup")
	}

	edge, err := services.GetPermissionEdge(h.DB, user.ID, input.GroupID)
	if err != nil {
		return renderError(c, err, "deleteWorkgroup")
	}
	if !edge.DeleteRight {
		return renderError(c, types.PermissionDenied("user cannot delete the group"), "deleteWorkgroup")
	}

	if err := services.DeleteWorkgroup(h.DB, input.GroupID); err != nil {
		return renderError(c, err, "deleteWorkgroup")
	}
	return renderSuccess(c)
}

// LeaveWorkgroup handles PUT /workgroups/leaveWorkgroup/:workgroupId
// @Summary Leave a workgroup (creators cannot leave)
// @Tags Workgroups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /workgroups/leaveWorkgroup/{workgroupId} [put]
func (h *WorkgroupHandler) LeaveWorkgroup(c *fiber.Ctx) error {
	user := currentUser(c)
	workgroupID := c.Params("workgroupId")

	workgroup, err := services.GetWorkgroupByID(h.DB, workgroupID)
	if err != nil {
		return renderError(c, err, "leaveWorkgroup")
	}
	if workgroup.CreatorID == user.ID {
		return renderError(c, types.PermissionDenied("you cannot leave a group that you created"), "leaveWorkgroup")
	}

	if err := services.RemoveUserFromWorkgroup(h.DB, user.ID, workgroup.ID); err != nil {
		return renderError(c, err, "leaveWorkgroup")
	}
	return renderSuccess(c)
}
