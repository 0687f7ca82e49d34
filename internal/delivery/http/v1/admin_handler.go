package v1

import (
	"net/http"

	"go-rise-platform/internal/delivery/http/response"
	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	authUC domain.AuthUsecase
}

type UserListResponse struct {
	Users    []domain.User `json:"users"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

type RoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func NewAdminHandler(admin *gin.RouterGroup, authUC domain.AuthUsecase) {
	handler := &AdminHandler{authUC: authUC}

	users := admin.Group("/admin/users")
	{
		users.GET("", handler.ListUsers)
		users.PATCH("/:id/role", handler.AssignRole)
	}
}

// ListUsers godoc
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page       query  int  false  "Page"
// @Param        page_size  query  int  false  "Page size"
// @Success      200  {object}  response.Response{data=UserListResponse}
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, size := queryPage(c, "page_size", 20, 100)
	users, total, err := h.authUC.ListUsers(c.Request.Context(), page, size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Users retrieved", UserListResponse{Users: users, Total: total, Page: page, PageSize: size})
}

// AssignRole godoc
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string       true  "User ID"
// @Param        role  body  RoleRequest  true  "USER or ADMIN"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/users/{id}/role [patch]
func (h *AdminHandler) AssignRole(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.BadRequest("Role wajib diisi"))
		return
	}
	if err := h.authUC.AssignRole(c.Request.Context(), c.Param("id"), req.Role); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Role updated", nil)
}
