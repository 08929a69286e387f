package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stockassist/platform/internal/application/dto"
	"github.com/stockassist/platform/internal/application/service"
	"github.com/stockassist/platform/internal/config"
	"github.com/stockassist/platform/internal/interfaces/http/middleware"
	"github.com/stockassist/platform/pkg/constants"
	"github.com/stockassist/platform/pkg/errors"
	"github.com/stockassist/platform/pkg/utils"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService service.AuthAppService
	cookie      config.CookieConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthAppService, cookie config.CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest.WithError(err))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	h.writeTokens(c, result)
}

// Refresh handles POST /api/auth/refresh. The refresh token is read from the
// RefreshToken cookie and replaced by a new one on success.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, ok := utils.RefreshTokenFromRequest(c.Request)
	if !ok {
		dto.SendError(c, errors.ErrUnauthenticated.WithMessage("refresh token cookie is missing"))
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		if errors.IsTokenError(err) {
			http.SetCookie(c.Writer, utils.ExpiredRefreshTokenCookie(h.cookie.Secure, h.cookie.Domain))
		}
		dto.SendError(c, err)
		return
	}
	h.writeTokens(c, result)
}

// Logout handles POST /api/auth/logout. It always clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := utils.RefreshTokenFromRequest(c.Request)
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		dto.SendError(c, err)
		return
	}
	http.SetCookie(c.Writer, utils.ExpiredRefreshTokenCookie(h.cookie.Secure, h.cookie.Domain))
	dto.SendSuccess(c, http.StatusOK, gin.H{"status": "ok"})
}

// Verify handles GET /api/auth/verify.
func (h *AuthHandler) Verify(c *gin.Context) {
	token, _ := utils.RefreshTokenFromRequest(c.Request)
	result, err := h.authService.Verify(c.Request.Context(), token)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}

// Me handles GET /api/auth/me. The route is guarded by RequireAuthenticated.
func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		dto.SendError(c, errors.ErrUnauthenticated)
		return
	}
	dto.SendSuccess(c, http.StatusOK, dto.NewPrincipalResponse(principal))
}

func (h *AuthHandler) writeTokens(c *gin.Context, result *dto.AuthResult) {
	http.SetCookie(c.Writer, utils.NewRefreshTokenCookie(result.RefreshToken, h.cookie.Secure, h.cookie.Domain))
	c.Header(constants.HeaderAuthorization, result.Token.AccessToken)
	dto.SendSuccess(c, http.StatusOK, result.Token)
}
