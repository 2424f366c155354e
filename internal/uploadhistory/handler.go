package uploadhistory

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetUploadHistory handles GET /admin/upload-history
// Without page/limit the full ledger is returned, newest first.
// @Summary List upload batches
// @Tags Upload History
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {array} UploadHistory
// @Router /admin/upload-history [get]
func (h *Handler) GetUploadHistory(c *gin.Context) {
	if c.Query("page") == "" && c.Query("limit") == "" {
		rows, err := h.service.List(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	res, err := h.service.ListPaged(c.Request.Context(), page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetUploadBatch handles GET /admin/upload-history/:batchId
// @Summary Get one upload batch
// @Tags Upload History
// @Produce json
// @Security BearerAuth
// @Param batchId path string true "Batch ID"
// @Success 200 {object} UploadHistory
// @Failure 404 {object} gin.H
// @Router /admin/upload-history/{batchId} [get]
func (h *Handler) GetUploadBatch(c *gin.Context) {
	row, err := h.service.Get(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// DeleteUploadBatch handles DELETE /admin/upload-history/:batchId
// @Summary Delete a batch and every idea it created
// @Tags Upload History
// @Produce json
// @Security BearerAuth
// @Param batchId path string true "Batch ID"
// @Success 200 {object} DeleteResult
// @Failure 404 {object} gin.H
// @Failure 500 {object} gin.H
// @Router /admin/upload-history/{batchId} [delete]
func (h *Handler) DeleteUploadBatch(c *gin.Context) {
	batchID := c.Param("batchId")
	res, err := h.service.DeleteBatch(c.Request.Context(), batchID, auditlog.ActorFromContext(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      fmt.Sprintf("Deleted batch %s and %d ideas", batchID, res.DeletedIdeas),
		"batchId":      res.BatchID,
		"deletedIdeas": res.DeletedIdeas,
	})
}

// GetUploadStats handles GET /admin/upload-history/stats
func (h *Handler) GetUploadStats(c *gin.Context) {
	st, err := h.service.Stats(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// ExportUploadHistory handles GET /admin/upload-history/export?format=csv|xlsx|pdf
func (h *Handler) ExportUploadHistory(c *gin.Context) {
	data, fname, mime, err := h.service.Export(c.Request.Context(), c.DefaultQuery("format", FormatCSV))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fname))
	c.Data(http.StatusOK, mime, data)
}
