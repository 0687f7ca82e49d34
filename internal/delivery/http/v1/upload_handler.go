package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"go-rise-platform/internal/delivery/http/response"
	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploadUC domain.UploadUsecase
	maxBytes int64
}

type UploadResponse struct {
	ID   string            `json:"id"`
	URL  string            `json:"url"`
	Kind domain.UploadKind `json:"kind"`
}

func NewUploadHandler(public *gin.RouterGroup, uploadUC domain.UploadUsecase, maxBytes int64, limit gin.HandlerFunc) {
	handler := &UploadHandler{uploadUC: uploadUC, maxBytes: maxBytes}
	public.POST("/uploads/:kind", limit, handler.Upload)
}

// Upload godoc
// @Summary      Upload a registration file
// @Description  essay: PDF. headshot: JPG/PNG, recompressed to JPEG. payment-proof: PDF/JPG/PNG.
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        kind  path      string  true  "essay, headshot or payment-proof"
// @Param        file  formData  file    true  "File"
// @Success      201  {object}  response.Response{data=UploadResponse}
// @Failure      400  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Router       /uploads/{kind} [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	kind, ok := domain.ParseUploadKind(c.Param("kind"))
	if !ok {
		_ = c.Error(apperror.BadRequest("Jenis upload tidak dikenal"))
		return
	}

	// Multipart overhead on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(apperror.BadRequest(fmt.Sprintf("Ukuran file maksimal %d MB", h.maxBytes>>20)))
			return
		}
		_ = c.Error(apperror.BadRequest("File wajib diunggah pada field 'file'"))
		return
	}

	file, err := header.Open()
	if err != nil {
		_ = c.Error(apperror.Internal(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		_ = c.Error(apperror.Internal(err))
		return
	}

	upload, err := h.uploadUC.Upload(c.Request.Context(), domain.UploadInput{
		Kind:     kind,
		Filename: header.Filename,
		Data:     data,
		ClientIP: c.ClientIP(),
		UserID:   currentUserID(c),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "File uploaded", UploadResponse{ID: upload.ID, URL: upload.URL, Kind: upload.Kind})
}
