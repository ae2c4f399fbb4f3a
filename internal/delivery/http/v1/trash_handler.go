package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cddiller-backend/internal/delivery/http/middleware"
	"cddiller-backend/internal/delivery/http/response"
	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

type TrashHandler struct {
	trashUC domain.TrashUsecase
}

func NewTrashHandler(protected *gin.RouterGroup, trashUC domain.TrashUsecase) {
	handler := &TrashHandler{trashUC: trashUC}

	trash := protected.Group("/trash")
	trash.Use(middleware.RequireRoles(domain.RoleAdmin))
	{
		trash.GET("", handler.List)
		trash.POST("/:entity/:id/restore", handler.Restore)
		trash.DELETE("/:entity/:id", handler.Purge)
	}
}

// List godoc
// @Summary      List Trash
// @Description  All soft-deleted records across orders, stores and dealers, newest first.
// @Tags         trash
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]domain.TrashEntry}
// @Router       /trash [get]
func (h *TrashHandler) List(c *gin.Context) {
	entries, err := h.trashUC.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Trash retrieved", entries)
}

// Restore godoc
// @Summary      Restore From Trash
// @Tags         trash
// @Produce      json
// @Security     BearerAuth
// @Param        entity  path      string  true  "orders | stores | dealers"
// @Param        id      path      string  true  "Record ID"
// @Success      200     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /trash/{entity}/{id}/restore [post]
func (h *TrashHandler) Restore(c *gin.Context) {
	entity := domain.TrashEntity(c.Param("entity"))
	if !entity.Valid() {
		c.Error(apperror.BadRequest("unknown trash entity"))
		return
	}
	if err := h.trashUC.Restore(c.Request.Context(), entity, c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Record restored", nil)
}

// Purge godoc
// @Summary      Purge From Trash
// @Description  Permanently delete a soft-deleted record. Irreversible.
// @Tags         trash
// @Produce      json
// @Security     BearerAuth
// @Param        entity  path      string  true  "orders | stores | dealers"
// @Param        id      path      string  true  "Record ID"
// @Success      200     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /trash/{entity}/{id} [delete]
func (h *TrashHandler) Purge(c *gin.Context) {
	entity := domain.TrashEntity(c.Param("entity"))
	if !entity.Valid() {
		c.Error(apperror.BadRequest("unknown trash entity"))
		return
	}
	if err := h.trashUC.Purge(c.Request.Context(), entity, c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Record permanently deleted", nil)
}
