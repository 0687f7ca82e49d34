package v1

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go-rise-platform/internal/delivery/http/response"
	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RegistrationHandler struct {
	registrationUC domain.RegistrationUsecase
}

type EmailCheckResponse struct {
	EmailExists bool `json:"email_exists"`
}

type RegistrationListResponse struct {
	Registrations []domain.Registration `json:"registrations"`
	Pagination    domain.Pagination     `json:"pagination"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func NewRegistrationHandler(public, admin *gin.RouterGroup, registrationUC domain.RegistrationUsecase) {
	handler := &RegistrationHandler{registrationUC: registrationUC}

	registrations := public.Group("/registrations")
	{
		registrations.GET("/health", handler.Health)
		registrations.GET("/check-email/:email", handler.CheckEmail)
		registrations.POST("", handler.Submit(""))
		registrations.POST("/fully-funded", handler.Submit(domain.ScholarshipFullyFunded))
		registrations.POST("/self-funded", handler.Submit(domain.ScholarshipSelfFunded))
		registrations.GET("/submission/:submissionId", handler.GetSubmission)
		registrations.GET("/submission/:submissionId/status", handler.GetSubmissionStatus)
	}

	adminRegs := admin.Group("/admin/registrations")
	{
		adminRegs.GET("", handler.AdminList)
		adminRegs.GET("/stats", handler.Stats)
		adminRegs.GET("/export", handler.Export)
		adminRegs.GET("/:id", handler.AdminGet)
		adminRegs.PATCH("/:id/status", handler.UpdateStatus)
		adminRegs.DELETE("/:id", handler.Delete)
	}
}

// Health godoc
// @Summary      Registration service health
// @Tags         registrations
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /registrations/health [get]
func (h *RegistrationHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, "Registration service is running", gin.H{"timestamp": time.Now().UTC()})
}

// CheckEmail godoc
// @Summary      Check whether an email already registered
// @Tags         registrations
// @Produce      json
// @Param        email  path  string  true  "Email"
// @Success      200  {object}  response.Response{data=EmailCheckResponse}
// @Router       /registrations/check-email/{email} [get]
func (h *RegistrationHandler) CheckEmail(c *gin.Context) {
	exists, err := h.registrationUC.CheckEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Email checked", EmailCheckResponse{EmailExists: exists})
}

// Submit godoc
// @Summary      Submit a RYLS registration
// @Description  step1.scholarship_type selects the branch; the typed routes force it
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        registration  body  domain.RegistrationInput  true  "Registration"
// @Success      201  {object}  response.Response{data=domain.SubmissionResult}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /registrations [post]
// @Router       /registrations/fully-funded [post]
// @Router       /registrations/self-funded [post]
func (h *RegistrationHandler) Submit(forcedType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in domain.RegistrationInput
		if err := c.ShouldBindJSON(&in); err != nil {
			_ = c.Error(apperror.BadRequest("Format data pendaftaran tidak valid"))
			return
		}
		result, err := h.registrationUC.Submit(c.Request.Context(), in, forcedType)
		if err != nil {
			_ = c.Error(err)
			return
		}
		response.Success(c, http.StatusCreated, "Pendaftaran berhasil dikirim", result)
	}
}

// GetSubmission godoc
// @Summary      Registration by submission id
// @Tags         registrations
// @Produce      json
// @Param        submissionId  path  string  true  "Submission ID"
// @Success      200  {object}  response.Response{data=domain.Registration}
// @Failure      404  {object}  response.Response
// @Router       /registrations/submission/{submissionId} [get]
func (h *RegistrationHandler) GetSubmission(c *gin.Context) {
	reg, err := h.registrationUC.GetBySubmission(c.Request.Context(), c.Param("submissionId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Registration retrieved", reg)
}

// GetSubmissionStatus godoc
// @Summary      Registration and payment status
// @Tags         registrations
// @Produce      json
// @Param        submissionId  path  string  true  "Submission ID"
// @Success      200  {object}  response.Response{data=domain.SubmissionStatus}
// @Failure      404  {object}  response.Response
// @Router       /registrations/submission/{submissionId}/status [get]
func (h *RegistrationHandler) GetSubmissionStatus(c *gin.Context) {
	status, err := h.registrationUC.GetSubmissionStatus(c.Request.Context(), c.Param("submissionId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Status retrieved", status)
}

func registrationFilter(c *gin.Context) domain.RegistrationFilter {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return domain.RegistrationFilter{
		Page:            page,
		Limit:           limit,
		Search:          c.Query("search"),
		Status:          c.Query("status"),
		ScholarshipType: c.Query("scholarship_type"),
		SortBy:          c.Query("sort_by"),
		SortOrder:       c.Query("sort_order"),
	}
}

// AdminList godoc
// @Summary      List registrations
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page              query  int     false  "Page"
// @Param        limit             query  int     false  "Page size"
// @Param        search            query  string  false  "Name or email"
// @Param        status            query  string  false  "PENDING, APPROVED or REJECTED"
// @Param        scholarship_type  query  string  false  "FULLY_FUNDED or SELF_FUNDED"
// @Param        sort_by           query  string  false  "created_at, full_name or email"
// @Param        sort_order        query  string  false  "asc or desc"
// @Success      200  {object}  response.Response{data=RegistrationListResponse}
// @Router       /admin/registrations [get]
func (h *RegistrationHandler) AdminList(c *gin.Context) {
	regs, pagination, err := h.registrationUC.AdminList(c.Request.Context(), registrationFilter(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Registrations retrieved", RegistrationListResponse{Registrations: regs, Pagination: pagination})
}

// Stats godoc
// @Summary      Registration statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.RegistrationStats}
// @Router       /admin/registrations/stats [get]
func (h *RegistrationHandler) Stats(c *gin.Context) {
	stats, err := h.registrationUC.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Statistics retrieved", stats)
}

// Export godoc
// @Summary      Export registrations to XLSX
// @Tags         admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200  {file}  file
// @Router       /admin/registrations/export [get]
func (h *RegistrationHandler) Export(c *gin.Context) {
	data, err := h.registrationUC.Export(c.Request.Context(), registrationFilter(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	filename := fmt.Sprintf("ryls-registrations-%s.xlsx", time.Now().Format("20060102-150405"))
	response.Attachment(c, filename, xlsxContentType, data)
}

// AdminGet godoc
// @Summary      Registration detail
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Registration ID"
// @Success      200  {object}  response.Response{data=domain.Registration}
// @Failure      404  {object}  response.Response
// @Router       /admin/registrations/{id} [get]
func (h *RegistrationHandler) AdminGet(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	reg, err := h.registrationUC.AdminGet(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Registration retrieved", reg)
}

// UpdateStatus godoc
// @Summary      Approve or reject a registration
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  int            true  "Registration ID"
// @Param        status  body  StatusRequest  true  "New status"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/registrations/{id}/status [patch]
func (h *RegistrationHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.BadRequest("Status wajib diisi"))
		return
	}
	if err := h.registrationUC.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Status updated", nil)
}

// Delete godoc
// @Summary      Delete a registration
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Registration ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/registrations/{id} [delete]
func (h *RegistrationHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.registrationUC.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Registration deleted", nil)
}
