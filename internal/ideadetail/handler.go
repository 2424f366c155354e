package ideadetail

import (
	"context"
	"net/http"

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

// GetComplete handles GET /api/idea-details/:ideaId/complete
// @Summary Everything shown on the idea detail page
// @Tags Idea Details
// @Produce json
// @Param ideaId path int true "Idea ID"
// @Success 200 {object} Complete
// @Failure 404 {object} gin.H
// @Router /api/idea-details/{ideaId}/complete [get]
func (h *Handler) GetComplete(c *gin.Context) {
	ideaID, ok := utils.ParamID(c, "ideaId")
	if !ok {
		return
	}
	out, err := h.service.Complete(c.Request.Context(), ideaID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetInternalFactors(c *gin.Context) {
	ideaID, ok := utils.ParamID(c, "ideaId")
	if !ok {
		return
	}
	out, err := h.service.InternalFactors(c.Request.Context(), ideaID)
	write(c, http.StatusOK, out, err)
}

// GetInvestments handles GET /api/idea-details/:ideaId/investments
// @Summary Investment breakdown with total
// @Tags Idea Details
// @Produce json
// @Param ideaId path int true "Idea ID"
// @Success 200 {object} InvestmentSummary
// @Router /api/idea-details/{ideaId}/investments [get]
func (h *Handler) GetInvestments(c *gin.Context) {
	ideaID, ok := utils.ParamID(c, "ideaId")
	if !ok {
		return
	}
	out, err := h.service.InvestmentSummary(c.Request.Context(), ideaID)
	write(c, http.StatusOK, out, err)
}

func (h *Handler) GetSchemes(c *gin.Context) {
	ideaID, ok := utils.ParamID(c, "ideaId")
	if !ok {
		return
	}
	if t := c.Param("schemeType"); t != "" {
		out, err := h.service.SchemesByType(c.Request.Context(), ideaID, t)
		write(c, http.StatusOK, out, err)
		return
	}
	out, err := h.service.Schemes(c.Request.Context(), ideaID)
	write(c, http.StatusOK, out, err)
}

func (h *Handler) GetBankLoans(c *gin.Context) {
	ideaID, ok := utils.ParamID(c, "ideaId")
	if !ok {
		return
	}
	if t := c.Param("loanType"); t != "" {
		out, err := h.service.BankLoansByType(c.Request.Context(), ideaID, t)
		write(c, http.StatusOK, out, err)
		return
	}
	out, err := h.service.BankLoans(c.Request.Context(), ideaID)
	write(c, http.StatusOK, out, err)
}

// =============================
// Admin writes
// =============================

func (h *Handler) CreateInternalFactors(c *gin.Context) {
	var in InternalFactors
	ideaID, ok := bindForIdea(c, &in)
	if !ok {
		return
	}
	out, err := h.service.CreateInternalFactors(c.Request.Context(), ideaID, in, auditlog.ActorFromContext(c))
	write(c, http.StatusCreated, out, err)
}

// CreateInvestment handles POST /admin/idea-details/:ideaId/investments
// @Summary Add an investment line item
// @Tags Idea Details
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ideaId path int true "Idea ID"
// @Param investment body Investment true "Investment"
// @Success 201 {object} Investment
// @Failure 400 {object} gin.H
// @Router /admin/idea-details/{ideaId}/investments [post]
func (h *Handler) CreateInvestment(c *gin.Context) {
	var in Investment
	ideaID, ok := bindForIdea(c, &in)
	if !ok {
		return
	}
	out, err := h.service.CreateInvestment(c.Request.Context(), ideaID, in, auditlog.ActorFromContext(c))
	write(c, http.StatusCreated, out, err)
}

func (h *Handler) CreateScheme(c *gin.Context) {
	var in Scheme
	ideaID, ok := bindForIdea(c, &in)
	if !ok {
		return
	}
	out, err := h.service.CreateScheme(c.Request.Context(), ideaID, in, auditlog.ActorFromContext(c))
	write(c, http.StatusCreated, out, err)
}

func (h *Handler) CreateBankLoan(c *gin.Context) {
	var in BankLoan
	ideaID, ok := bindForIdea(c, &in)
	if !ok {
		return
	}
	out, err := h.service.CreateBankLoan(c.Request.Context(), ideaID, in, auditlog.ActorFromContext(c))
	write(c, http.StatusCreated, out, err)
}

func (h *Handler) DeleteInternalFactors(c *gin.Context) {
	h.deleteByID(c, h.service.DeleteInternalFactors)
}

func (h *Handler) DeleteInvestment(c *gin.Context) {
	h.deleteByID(c, h.service.DeleteInvestment)
}

func (h *Handler) DeleteScheme(c *gin.Context) {
	h.deleteByID(c, h.service.DeleteScheme)
}

func (h *Handler) DeleteBankLoan(c *gin.Context) {
	h.deleteByID(c, h.service.DeleteBankLoan)
}

func (h *Handler) deleteByID(c *gin.Context, del func(ctx context.Context, id uint, actor auditlog.Actor) error) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	if err := del(c.Request.Context(), id, auditlog.ActorFromContext(c)); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Deleted")
}

func bindForIdea(c *gin.Context, dst interface{}) (uint, bool) {
	ideaID, ok := utils.ParamID(c, "ideaId")
	if !ok {
		return 0, false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid payload: " + err.Error()})
		return 0, false
	}
	return ideaID, true
}

// write sends v, or the error envelope when err is set.
func write(c *gin.Context, status int, v interface{}, err error) {
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(status, v)
}
