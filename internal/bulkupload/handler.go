package bulkupload

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/utils"
)

type Handler struct {
	service  Service
	maxBytes int64
}

func NewHandler(service Service, maxUploadMB int) *Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &Handler{service: service, maxBytes: int64(maxUploadMB) << 20}
}

// UploadIdeas handles POST /admin/upload-ideas
// @Summary Bulk upload ideas from a CSV, Excel or JSON file
// @Tags Bulk Upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "csv, xlsx, xls or json file"
// @Success 200 {object} Result
// @Failure 400 {object} gin.H
// @Failure 415 {object} gin.H
// @Router /admin/upload-ideas [post]
func (h *Handler) UploadIdeas(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, apperr.Validation("file is required"))
		return
	}
	if fh.Size > h.maxBytes {
		utils.RespondError(c, apperr.Validation(fmt.Sprintf("file exceeds the %d MB upload limit", h.maxBytes>>20)))
		return
	}

	f, err := fh.Open()
	if err != nil {
		utils.RespondError(c, apperr.Internal("failed to open file", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		utils.RespondError(c, apperr.Internal("failed to read file", err))
		return
	}
	if int64(len(data)) > h.maxBytes {
		utils.RespondError(c, apperr.Validation(fmt.Sprintf("file exceeds the %d MB upload limit", h.maxBytes>>20)))
		return
	}

	up := Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}
	res, err := h.service.Ingest(c.Request.Context(), up, c.GetString(utils.CtxUsername), auditlog.ActorFromContext(c))
	if err != nil {
		if res != nil {
			utils.RespondErrorWith(c, err, gin.H{"batchId": res.BatchID})
			return
		}
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      fmt.Sprintf("Uploaded %d of %d ideas", res.SuccessCount, res.TotalRows),
		"batchId":      res.BatchID,
		"filename":     res.Filename,
		"totalRows":    res.TotalRows,
		"successCount": res.SuccessCount,
		"failureCount": res.FailureCount,
	})
}

// UploadTemplate handles GET /admin/upload-template?format=csv|xlsx
func (h *Handler) UploadTemplate(c *gin.Context) {
	data, fname, mime, err := h.service.Template(c.DefaultQuery("format", string(FormatCSV)))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fname))
	c.Data(http.StatusOK, mime, data)
}
