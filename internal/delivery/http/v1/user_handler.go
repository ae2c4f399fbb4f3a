package v1

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cddiller-backend/internal/delivery/http/middleware"
	"cddiller-backend/internal/delivery/http/response"
	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

// maxAvatarBytes caps avatar uploads at 2 MiB before decoding.
const maxAvatarBytes = 2 << 20

type UserHandler struct {
	userUC domain.UserUsecase
}

func NewUserHandler(protected *gin.RouterGroup, userUC domain.UserUsecase) {
	handler := &UserHandler{userUC: userUC}

	users := protected.Group("/users")
	{
		users.GET("/:id/avatar", handler.Avatar)
		users.PUT("/me", handler.UpdateMe)
		users.POST("/me/avatar", middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig()), handler.UploadAvatar)
	}

	admin := users.Group("")
	admin.Use(middleware.RequireRoles(domain.RoleAdmin))
	{
		admin.GET("", handler.List)
		admin.GET("/:id", handler.Get)
		admin.POST("", handler.Create)
		admin.PATCH("/:id/status", handler.ChangeStatus)
	}
}

// List godoc
// @Summary      List Users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role    query  string  false  "Filter by role"
// @Param        status  query  string  false  "Filter by status"
// @Param        page    query  int     false  "Page number"
// @Success      200  {object}  response.Response{data=response.Paginated}
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var filter domain.ProfileFilter
	if role := c.Query("role"); role != "" {
		r, err := domain.ParseRole(role)
		if err != nil {
			c.Error(apperror.BadRequest(err.Error()))
			return
		}
		filter.Role = r
	}
	if status := c.Query("status"); status != "" {
		s, err := domain.ParseStatus(status)
		if err != nil {
			c.Error(apperror.BadRequest(err.Error()))
			return
		}
		filter.Status = s
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	users, total, err := h.userUC.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Users retrieved", response.Paginated{
		Items: users, Total: total, Page: page, PageSize: pageSize,
	})
}

// Get godoc
// @Summary      Get User
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=domain.Profile}
// @Failure      404  {object}  response.Response
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userUC.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User retrieved", user)
}

type CreateUserRequest struct {
	ID      string `json:"id" binding:"required,uuid"`
	Name    string `json:"name" binding:"required,valid_name"`
	Email   string `json:"email" binding:"required,email"`
	Role    string `json:"role" binding:"required,oneof=admin warehouse dealer agent store"`
	Phone   string `json:"phone" binding:"omitempty,valid_phone"`
	Address string `json:"address"`
}

// Create godoc
// @Summary      Create User Profile
// @Description  Attach a profile to an existing Supabase identity.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        user  body      CreateUserRequest  true  "User"
// @Success      201   {object}  response.Response{data=domain.Profile}
// @Failure      409   {object}  response.Response
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	profile := &domain.Profile{
		ID:      req.ID,
		Name:    req.Name,
		Email:   req.Email,
		Role:    role,
		Phone:   req.Phone,
		Address: req.Address,
		Status:  domain.StatusActive,
	}
	if err := h.userUC.Create(c.Request.Context(), profile); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "User created", profile)
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive pending"`
}

// ChangeStatus godoc
// @Summary      Change User Status
// @Description  Activate, deactivate or reset a user. Deactivated users are rejected at their next login.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string               true  "User ID"
// @Param        status  body      ChangeStatusRequest  true  "New status"
// @Success      200     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /users/{id}/status [patch]
func (h *UserHandler) ChangeStatus(c *gin.Context) {
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	if err := h.userUC.ChangeStatus(c.Request.Context(), c.Param("id"), status); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Status updated", nil)
}

type UpdateMeRequest struct {
	Name    string `json:"name" binding:"required,valid_name"`
	Phone   string `json:"phone" binding:"omitempty,valid_phone"`
	Address string `json:"address"`
}

// UpdateMe godoc
// @Summary      Update Own Profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        profile  body      UpdateMeRequest  true  "Profile fields"
// @Success      200      {object}  response.Response
// @Router       /users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	userID := c.MustGet(string(domain.KeyUserID)).(string)
	profile := &domain.Profile{
		ID:      userID,
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := h.userUC.Update(c.Request.Context(), profile); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", nil)
}

// UploadAvatar godoc
// @Summary      Upload Avatar
// @Description  Accepts PNG, JPEG or GIF; the image is resized and stored as PNG.
// @Tags         users
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Image file"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Router       /users/me/avatar [post]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		c.Error(apperror.BadRequest("avatar file is required"))
		return
	}
	if file.Size > maxAvatarBytes {
		c.Error(apperror.BadRequest("avatar exceeds 2MB limit"))
		return
	}

	f, err := file.Open()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxAvatarBytes+1))
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	userID := c.MustGet(string(domain.KeyUserID)).(string)
	url, err := h.userUC.StoreAvatar(c.Request.Context(), userID, data)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Avatar updated", gin.H{"avatar_url": url})
}

// Avatar godoc
// @Summary      Serve Avatar
// @Tags         users
// @Produce      png
// @Security     BearerAuth
// @Param        id  path  string  true  "User ID"
// @Success      200
// @Failure      404  {object}  response.Response
// @Router       /users/{id}/avatar [get]
func (h *UserHandler) Avatar(c *gin.Context) {
	data, err := h.userUC.LoadAvatar(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}
