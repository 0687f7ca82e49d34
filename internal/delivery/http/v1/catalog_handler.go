package v1

import (
	"net/http"

	"go-rise-platform/internal/delivery/http/response"
	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogUC domain.CatalogUsecase
}

var catalogSegments = map[string]domain.CatalogKind{
	"programs":  domain.KindProgram,
	"bootcamps": domain.KindBootcamp,
	"academies": domain.KindAcademy,
	"courses":   domain.KindCourse,
}

func NewCatalogHandler(public, admin *gin.RouterGroup, catalogUC domain.CatalogUsecase) {
	handler := &CatalogHandler{catalogUC: catalogUC}

	for segment, kind := range catalogSegments {
		group := public.Group("/" + segment)
		group.GET("", handler.List(kind))
		group.GET("/:slug", handler.Get(kind))
	}

	adminCatalog := admin.Group("/admin/catalog")
	{
		adminCatalog.PUT("/:kind/:slug", handler.Upsert)
		adminCatalog.DELETE("/:kind/:slug", handler.Delete)
	}
}

// List godoc
// @Summary      List published catalog items
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.CatalogItem}
// @Router       /programs [get]
// @Router       /bootcamps [get]
// @Router       /academies [get]
// @Router       /courses [get]
func (h *CatalogHandler) List(kind domain.CatalogKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := h.catalogUC.List(c.Request.Context(), kind)
		if err != nil {
			_ = c.Error(err)
			return
		}
		response.Success(c, http.StatusOK, "Catalog retrieved", items)
	}
}

// Get godoc
// @Summary      Catalog item detail
// @Tags         catalog
// @Produce      json
// @Param        slug  path  string  true  "Item slug"
// @Success      200  {object}  response.Response{data=domain.CatalogItem}
// @Failure      404  {object}  response.Response
// @Router       /programs/{slug} [get]
// @Router       /bootcamps/{slug} [get]
// @Router       /academies/{slug} [get]
// @Router       /courses/{slug} [get]
func (h *CatalogHandler) Get(kind domain.CatalogKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := h.catalogUC.Get(c.Request.Context(), kind, c.Param("slug"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		response.Success(c, http.StatusOK, "Catalog item retrieved", item)
	}
}

func kindParam(c *gin.Context) (domain.CatalogKind, bool) {
	kind, ok := domain.ParseCatalogKind(c.Param("kind"))
	if !ok {
		_ = c.Error(apperror.BadRequest("Unknown catalog kind: " + c.Param("kind")))
	}
	return kind, ok
}

// Upsert godoc
// @Summary      Create or replace a catalog item
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path  string              true  "program, bootcamp, academy or course"
// @Param        slug  path  string              true  "Item slug"
// @Param        item  body  domain.CatalogItem  true  "Item"
// @Success      200  {object}  response.Response{data=domain.CatalogItem}
// @Failure      400  {object}  response.Response
// @Router       /admin/catalog/{kind}/{slug} [put]
func (h *CatalogHandler) Upsert(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	var item domain.CatalogItem
	if err := c.ShouldBindJSON(&item); err != nil {
		_ = c.Error(apperror.BadRequest("Invalid request body"))
		return
	}
	item.Kind = kind
	item.Slug = c.Param("slug")

	if err := h.catalogUC.Upsert(c.Request.Context(), &item); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Catalog item saved", item)
}

// Delete godoc
// @Summary      Delete a catalog item
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path  string  true  "program, bootcamp, academy or course"
// @Param        slug  path  string  true  "Item slug"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/catalog/{kind}/{slug} [delete]
func (h *CatalogHandler) Delete(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	if err := h.catalogUC.Delete(c.Request.Context(), kind, c.Param("slug")); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Catalog item deleted", nil)
}

type EnrollmentHandler struct {
	enrollmentUC domain.EnrollmentUsecase
}

type ProgressRequest struct {
	CompletedSessions []string `json:"completed_sessions" binding:"required"`
}

func NewEnrollmentHandler(protected *gin.RouterGroup, enrollmentUC domain.EnrollmentUsecase) {
	handler := &EnrollmentHandler{enrollmentUC: enrollmentUC}

	protected.POST("/programs/:slug/enroll", handler.Enroll)
	protected.GET("/programs/:slug/progress", handler.Progress)
	protected.PUT("/programs/:slug/progress", handler.UpdateProgress)
	protected.GET("/me/programs", handler.Mine)
}

// Enroll godoc
// @Summary      Enroll in a program
// @Description  Idempotent: returns the existing enrollment when already enrolled
// @Tags         enrollment
// @Produce      json
// @Security     BearerAuth
// @Param        slug  path  string  true  "Program slug"
// @Success      200  {object}  response.Response{data=domain.Enrollment}
// @Failure      404  {object}  response.Response
// @Router       /programs/{slug}/enroll [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	e, err := h.enrollmentUC.Enroll(c.Request.Context(), currentUserID(c), c.Param("slug"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Enrolled", e)
}

// Progress godoc
// @Summary      Program progress
// @Tags         enrollment
// @Produce      json
// @Security     BearerAuth
// @Param        slug  path  string  true  "Program slug"
// @Success      200  {object}  response.Response{data=domain.Enrollment}
// @Failure      404  {object}  response.Response
// @Router       /programs/{slug}/progress [get]
func (h *EnrollmentHandler) Progress(c *gin.Context) {
	e, err := h.enrollmentUC.GetProgress(c.Request.Context(), currentUserID(c), c.Param("slug"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Progress retrieved", e)
}

// UpdateProgress godoc
// @Summary      Update program progress
// @Tags         enrollment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        slug      path  string           true  "Program slug"
// @Param        progress  body  ProgressRequest  true  "Completed session titles"
// @Success      200  {object}  response.Response{data=domain.Enrollment}
// @Failure      400  {object}  response.Response
// @Router       /programs/{slug}/progress [put]
func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.BadRequest("completed_sessions is required"))
		return
	}
	e, err := h.enrollmentUC.UpdateProgress(c.Request.Context(), currentUserID(c), c.Param("slug"), req.CompletedSessions)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Progress updated", e)
}

// Mine godoc
// @Summary      My enrollments
// @Tags         enrollment
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]domain.Enrollment}
// @Router       /me/programs [get]
func (h *EnrollmentHandler) Mine(c *gin.Context) {
	list, err := h.enrollmentUC.ListMine(c.Request.Context(), currentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Enrollments retrieved", list)
}
