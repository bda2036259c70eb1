package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"nextup-api/domain/dto"
	"nextup-api/domain/services"
	"nextup-api/pkg/config"
	"nextup-api/pkg/logger"
	"nextup-api/pkg/utils"
)

const oauthStateCookie = "oauth_state"

type AuthHandler struct {
	userService   services.UserService
	googleConfig  config.GoogleOAuthConfig
	secureCookies bool
}

func NewAuthHandler(userService services.UserService, googleConfig config.GoogleOAuthConfig, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		googleConfig:  googleConfig,
		secureCookies: secureCookies,
	}
}

// GoogleLogin redirect ไปยัง Google OAuth consent screen
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	ctx := c.UserContext()

	// สร้าง state สำหรับ CSRF protection
	state := utils.GenerateRandomString(32)

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: "Lax",
		MaxAge:   300, // 5 นาที
	})

	logger.InfoContext(ctx, "Redirecting to Google OAuth")

	return c.Redirect(h.userService.GetGoogleOAuthURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback รับ callback จาก Google OAuth แล้ว redirect กลับ frontend พร้อม JWT
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	ctx := c.UserContext()

	code := c.Query("code")
	state := c.Query("state")
	frontendURL := h.googleConfig.FrontendURL

	if errorParam := c.Query("error"); errorParam != "" {
		logger.WarnContext(ctx, "Google OAuth error", "error", errorParam)
		return c.Redirect(frontendURL+"/login?error="+url.QueryEscape(errorParam), fiber.StatusTemporaryRedirect)
	}

	if code == "" {
		logger.WarnContext(ctx, "No code in Google callback")
		return c.Redirect(frontendURL+"/login?error=no_code", fiber.StatusTemporaryRedirect)
	}

	savedState := c.Cookies(oauthStateCookie)
	if savedState == "" || savedState != state {
		logger.WarnContext(ctx, "Invalid OAuth state")
		return c.Redirect(frontendURL+"/login?error=invalid_state", fiber.StatusTemporaryRedirect)
	}

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		MaxAge:   -1,
		HTTPOnly: true,
	})

	token, user, err := h.userService.LoginWithAuthCode(ctx, code)
	if err != nil {
		logger.WarnContext(ctx, "Google login failed", "error", err)
		return c.Redirect(frontendURL+"/login?error=login_failed", fiber.StatusTemporaryRedirect)
	}

	logger.InfoContext(ctx, "Google auth successful", "user_id", user.ID)

	return c.Redirect(frontendURL+"/auth/google/callback?token="+url.QueryEscape(token), fiber.StatusTemporaryRedirect)
}

// GoogleTokenLogin desktop/web ส่ง Google ID token (หรือ deep link ที่ถือ token) มาแลก JWT
func (h *AuthHandler) GoogleTokenLogin(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.GoogleTokenLoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		errors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", errors)
		return utils.ValidationErrorResponse(c, errors)
	}

	idToken := req.IDToken
	if idToken == "" {
		auth, err := utils.ParseDeepLink(req.DeepLink, h.googleConfig.DeepLinkScheme)
		if err != nil {
			logger.WarnContext(ctx, "Invalid deep link", "error", err)
			return utils.BadRequestResponse(c, "Invalid deep link")
		}
		idToken = auth.IDToken
	}

	token, user, err := h.userService.LoginWithIDToken(ctx, idToken)
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	logger.InfoContext(ctx, "Token login successful", "user_id", user.ID)

	return utils.SuccessResponse(c, dto.LoginResponse{
		Token: token,
		User:  *dto.UserToUserResponse(user),
	})
}
