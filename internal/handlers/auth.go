package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sqlizer/sqlizer/internal/config"
	"github.com/sqlizer/sqlizer/internal/middleware"
	"github.com/sqlizer/sqlizer/internal/services"
	"github.com/sqlizer/sqlizer/internal/types"
	"gorm.io/gorm"
)

// ResetMailer delivers the password reset mail.
type ResetMailer interface {
	SendResetPasswordEmail(email, token string) error
}

// AuthHandler handles authentication routes
type AuthHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Mailer ResetMailer
}

// Register handles POST /auth/register
// @Summary Register an account
// @Description Create a user with a private default workgroup
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body services.RegisterInput true "Account"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if !parseBody(c, &input) {
		return nil
	}

	if _, err := services.RegisterUser(h.DB, input); err != nil {
		return renderError(c, err, "register")
	}
	return renderSuccess(c)
}

// Login handles POST /auth/login
// @Summary Log in
// @Description Exchange credentials for a 7-day bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !parseBody(c, &input) {
		return nil
	}
	if input.Email == "" || input.Password == "" {
		return renderError(c, types.Validation("email and password are required"), "login")
	}

	token, user, err := services.Login(h.DB, h.Cfg.JWTKey, h.Cfg.SessionTokenTTL, input.Email, input.Password)
	if err != nil {
		return renderError(c, err, "login")
	}

	return c.JSON(fiber.Map{
		"token":     token,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"email":     user.Email,
	})
}

// ForgetPassword handles POST /auth/forgetPassword
// @Summary Request a password reset
// @Description Mail a one-hour reset token to the account address
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /auth/forgetPassword [post]
func (h *AuthHandler) ForgetPassword(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
	}
	if !parseBody(c, &input) {
		return nil
	}
	if input.Email == "" {
		return renderError(c, types.Validation("email is required"), "forgetPassword")
	}

	token, user, err := services.IssueResetToken(h.DB, h.Cfg.JWTKey, h.Cfg.ResetTokenTTL, input.Email)
	if err != nil {
		return renderError(c, err, "forgetPassword")
	}

	if err := h.Mailer.SendResetPasswordEmail(user.Email, token); err != nil {
		log.Printf("failed to send reset mail to %s: %v", user.Email, err)
		return renderError(c, types.Store("An error has occured"), "forgetPassword")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "An email has been sent. It will expire in 1 hour",
	})
}

// ResetPassword handles PUT /auth/resetPassword
// @Summary Reset a password
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/resetPassword [put]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var input struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if !parseBody(c, &input) {
		return nil
	}
	if input.Token == "" {
		return renderError(c, types.Validation("token is required"), "resetPassword")
	}

	if err := services.ResetPassword(h.DB, h.Cfg.JWTKey, input.Token, input.NewPassword); err != nil {
		return renderError(c, err, "resetPassword")
	}
	return renderSuccess(c)
}

// VerifyToken handles GET /auth/verifyToken
// @Summary Verify a bearer token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/verifyToken [get]
func (h *AuthHandler) VerifyToken(c *fiber.Ctx) error {
	token, err := middleware.ExtractBearerToken(c)
	if err != nil {
		return renderError(c, err, "verifyToken")
	}
	if _, err := services.VerifyToken(h.Cfg.JWTKey, token); err != nil {
		return renderError(c, err, "verifyToken")
	}
	return renderSuccess(c)
}
