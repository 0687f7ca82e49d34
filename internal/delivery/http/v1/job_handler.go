package v1

import (
	"net/http"

	"go-rise-platform/internal/delivery/http/response"
	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

type JobListResponse struct {
	Jobs     []domain.Job `json:"jobs"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

func NewJobHandler(public, admin *gin.RouterGroup, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	// Only active jobs are visible here
	publicJobs := public.Group("/jobs")
	{
		publicJobs.GET("", handler.List)
		publicJobs.GET("/search", handler.Search)
		publicJobs.GET("/:id", handler.Get)
	}

	adminJobs := admin.Group("/jobs")
	{
		adminJobs.POST("", handler.Create)
		adminJobs.PUT("/:id", handler.Update)
		adminJobs.DELETE("/:id", handler.Delete)
	}
}

// List godoc
// @Summary      List active jobs
// @Tags         jobs
// @Produce      json
// @Param        search     query  string  false  "Title, company or skill"
// @Param        location   query  string  false  "City, region or country"
// @Param        page       query  int     false  "Page number"
// @Param        page_size  query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=JobListResponse}
// @Router       /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	page, size := queryPage(c, "page_size", 12, 100)
	jobs, total, err := h.jobUC.ListJobs(c.Request.Context(), c.Query("search"), c.Query("location"), page, size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs retrieved", JobListResponse{Jobs: jobs, Total: total, Page: page, PageSize: size})
}

// Search godoc
// @Summary      Search jobs
// @Tags         jobs
// @Produce      json
// @Param        search  query  string  true  "Search term"
// @Success      200  {object}  response.Response{data=[]domain.Job}
// @Router       /jobs/search [get]
func (h *JobHandler) Search(c *gin.Context) {
	jobs, err := h.jobUC.SearchJobs(c.Request.Context(), c.Query("search"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs retrieved", jobs)
}

// Get godoc
// @Summary      Job detail
// @Tags         jobs
// @Produce      json
// @Param        id  path  int  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	job, err := h.jobUC.GetJob(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job retrieved", job)
}

// Create godoc
// @Summary      Create a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        job  body      domain.Job  true  "Job"
// @Success      201  {object}  response.Response{data=domain.Job}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /jobs [post]
func (h *JobHandler) Create(c *gin.Context) {
	var job domain.Job
	if err := c.ShouldBindJSON(&job); err != nil {
		_ = c.Error(apperror.BadRequest("Invalid request body"))
		return
	}
	job.ID = 0
	if err := h.jobUC.CreateJob(c.Request.Context(), &job); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Job created", job)
}

// Update godoc
// @Summary      Update a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int         true  "Job ID"
// @Param        job  body      domain.Job  true  "Job"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [put]
func (h *JobHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var job domain.Job
	if err := c.ShouldBindJSON(&job); err != nil {
		_ = c.Error(apperror.BadRequest("Invalid request body"))
		return
	}
	job.ID = id
	if err := h.jobUC.UpdateJob(c.Request.Context(), &job); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job updated", job)
}

// Delete godoc
// @Summary      Delete a job
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [delete]
func (h *JobHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.jobUC.DeleteJob(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job deleted", nil)
}
