package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "splitledger/internal/errors"
	"splitledger/internal/services"
)

// TransferHandler handles budget-to-budget transfer requests.
type TransferHandler struct {
	transferService services.TransferServicer
	auditService    services.AuditServicer
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferService services.TransferServicer, auditService services.AuditServicer) *TransferHandler {
	return &TransferHandler{transferService: transferService, auditService: auditService}
}

// CreateTransferRequest represents the request payload for a transfer.
type CreateTransferRequest struct {
	FromBudgetID   string    `json:"from_budget_id" binding:"required,uuid"`
	ToBudgetID     string    `json:"to_budget_id" binding:"required,uuid"`
	AmountMinor    int64     `json:"amount_minor" binding:"required,gt=0"`
	TransferDate   time.Time `json:"transfer_date"`
	Note           string    `json:"note" binding:"max=500"`
	FromCategoryID string    `json:"from_category_id" binding:"omitempty,uuid"`
	ToCategoryID   string    `json:"to_category_id" binding:"omitempty,uuid"`
}

// CreateTransfer handles moving money between budgets.
// @Summary     Create a transfer
// @Description Move money between two budgets; creates an expense entry in the source and an income entry in the destination atomically. Requires contributor or above on both budgets.
// @Tags        transfers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransferRequest true "Transfer details"
// @Success     201 {object} services.TransferResult "Transfer and paired entries"
// @Failure     400 {object} ErrorResponse "Invalid input, same budget, or currency mismatch"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Insufficient role on either budget"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transfers [post]
func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transferService.CreateTransfer(userID, services.CreateTransferInput{
		FromBudgetID:   req.FromBudgetID,
		ToBudgetID:     req.ToBudgetID,
		AmountMinor:    req.AmountMinor,
		TransferDate:   req.TransferDate,
		Note:           req.Note,
		FromCategoryID: req.FromCategoryID,
		ToCategoryID:   req.ToCategoryID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSFER", "budget_transfer", result.Transfer.ID, c.ClientIP(),
		map[string]interface{}{
			"from_budget_id": req.FromBudgetID,
			"to_budget_id":   req.ToBudgetID,
			"amount_minor":   req.AmountMinor,
		})

	c.JSON(http.StatusCreated, result)
}

// ListBudgetTransfers handles listing the transfers touching a budget.
// @Summary     List budget transfers
// @Description List transfers where the budget is the source or destination, newest first
// @Tags        transfers
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {array} models.BudgetTransfer "Transfers"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/transfers [get]
func (h *TransferHandler) ListBudgetTransfers(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transfers, err := h.transferService.GetBudgetTransfers(budgetID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transfers": transfers})
}
