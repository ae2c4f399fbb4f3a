package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cddiller-backend/config"
	"cddiller-backend/internal/delivery/http/response"
	"cddiller-backend/internal/domain"
	"cddiller-backend/internal/usecase"
	"cddiller-backend/pkg/apperror"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
	config *config.Config
}

func NewAuthHandler(public *gin.RouterGroup, protected *gin.RouterGroup, authUC domain.AuthUsecase, cfg *config.Config, loginLimiter gin.HandlerFunc) {
	handler := &AuthHandler{authUC: authUC, config: cfg}

	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/login", loginLimiter, handler.Login)
		publicAuth.POST("/register", handler.Register)
		publicAuth.POST("/superadmin", handler.CreateSuperadmin)
	}

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.GET("/me", handler.Me)
		protectedAuth.GET("/landing", handler.Landing)
		protectedAuth.POST("/logout", handler.Logout)
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required,valid_name"`
	Role     string `json:"role" binding:"required,oneof=superadmin admin warehouse dealer agent store"`
}

type SuperadminRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required,valid_name"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresAt    int64           `json:"expires_at"`
	Profile      *domain.Profile `json:"profile"`
	LandingRoute string          `json:"landing_route"`
}

// Login godoc
// @Summary      User Login
// @Description  Authenticate with email and password. Inactive accounts are rejected and their session revoked.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      LoginRequest  true  "Credentials"
// @Success      200    {object}  response.Response{data=LoginResponse}
// @Failure      401    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	ctx := usecase.WithClientIP(c.Request.Context(), c.ClientIP())
	result, err := h.authUC.Login(ctx, req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	// Cookie mirrors the token for browser clients; API clients use the body.
	maxAge := int(time.Until(result.Session.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = 3600
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("auth_token", result.Session.AccessToken, maxAge, "/", "", true, true)

	response.Success(c, http.StatusOK, "Welcome back, "+result.Profile.Name+"!", LoginResponse{
		AccessToken:  result.Session.AccessToken,
		RefreshToken: result.Session.RefreshToken,
		ExpiresAt:    result.Session.ExpiresAt.Unix(),
		Profile:      result.Profile,
		LandingRoute: result.Profile.Role.LandingRoute(),
	})
}

// Register godoc
// @Summary      User Registration
// @Description  Create an account with a pending profile awaiting admin approval.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        register  body      RegisterRequest  true  "Registration Details"
// @Success      201    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	// Superadmin accounts only come from the bootstrap endpoint
	if role == domain.RoleSuperadmin {
		c.Error(apperror.Forbidden("cannot self-register as superadmin"))
		return
	}

	identity, err := h.authUC.Register(c.Request.Context(), req.Email, req.Password, req.Name, role)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Account created! Awaiting approval.", gin.H{
		"id":    identity.ID,
		"email": identity.Email,
	})
}

// CreateSuperadmin godoc
// @Summary      Bootstrap Superadmin
// @Description  Create the first superadmin account. Idempotent per email; fails once a superadmin exists.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        superadmin  body      SuperadminRequest  true  "Superadmin Details"
// @Success      201    {object}  response.Response{data=domain.Profile}
// @Failure      409    {object}  response.Response
// @Router       /auth/superadmin [post]
func (h *AuthHandler) CreateSuperadmin(c *gin.Context) {
	if !h.config.AllowSuperadminBootstrap {
		c.Error(apperror.Forbidden("superadmin bootstrap is disabled"))
		return
	}

	var req SuperadminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	profile, err := h.authUC.CreateSuperadmin(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Superadmin created successfully", profile)
}

// Me godoc
// @Summary      Current User
// @Description  Return the authenticated user's profile.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.Profile}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.MustGet(string(domain.KeyUserID)).(string)
	profile, err := h.authUC.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile retrieved", profile)
}

// Landing godoc
// @Summary      Landing Route
// @Description  Return the dashboard route the caller's role lands on.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /auth/landing [get]
func (h *AuthHandler) Landing(c *gin.Context) {
	role := c.MustGet(string(domain.KeyUserRole)).(domain.Role)
	response.Success(c, http.StatusOK, "Landing route resolved", gin.H{
		"role":          role,
		"landing_route": role.LandingRoute(),
	})
}

// Logout godoc
// @Summary      Logout
// @Description  Revoke the session server-side and clear the auth cookie. The cookie is cleared even if revocation fails.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetHeader("Authorization")
	if len(token) > 7 {
		token = token[7:] // strip "Bearer "
	} else if cookie, err := c.Cookie("auth_token"); err == nil {
		token = cookie
	}

	err := h.authUC.Logout(c.Request.Context(), token)

	// Local state goes regardless of what the upstream said
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("auth_token", "", -1, "/", "", true, true)

	if err != nil {
		response.Success(c, http.StatusOK, "Logged out (session revocation failed upstream)", nil)
		return
	}
	response.Success(c, http.StatusOK, "Logged out successfully", nil)
}
