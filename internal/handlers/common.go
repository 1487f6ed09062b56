// common.go
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
	"github.com/sqlizer/sqlizer/internal/types"
	"github.com/sqlizer/sqlizer/internal/utils"
)

// currentUser returns the user resolved by the auth middleware.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

// renderSuccess sends the bare acknowledgement envelope.
func renderSuccess(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, fiber.Map{"success": true}, fiber.StatusOK)
}

// renderError maps service errors onto the standard error envelope.
func renderError(c *fiber.Ctx, err error, errorType string) error {
	if f, ok := types.AsFault(err); ok {
		return utils.FaultResponse(c, f)
	}
	return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, errorType)
}

// parseBody decodes the request body or renders a validation error.
func parseBody(c *fiber.Ctx, out interface{}) bool {
	if err := c.BodyParser(out); err != nil {
		_ = utils.FaultResponse(c, types.Validation("malformed request body: %v", err))
		return false
	}
	return true
}
