package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "splitledger/internal/errors"
	"splitledger/internal/models"
	"splitledger/internal/pagination"
	"splitledger/internal/services"
	"splitledger/internal/uuid"
)

// EntryHandler handles entry-related requests.
type EntryHandler struct {
	entryService services.EntryServicer
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryService services.EntryServicer) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

// CreateEntryRequest represents the request payload for creating an entry.
type CreateEntryRequest struct {
	CategoryID   string           `json:"category_id" binding:"required,uuid"`
	Kind         models.EntryKind `json:"kind" binding:"required,entry_kind"`
	AmountMinor  int64            `json:"amount_minor" binding:"required,gte=0"`
	CurrencyCode string           `json:"currency_code" binding:"omitempty,iso4217"`
	EntryDate    time.Time        `json:"entry_date"`
	Description  string           `json:"description" binding:"max=500"`
	Counterparty string           `json:"counterparty" binding:"max=200"`
}

// UpdateEntryRequest represents the request payload for updating an entry.
type UpdateEntryRequest struct {
	CategoryID   *string           `json:"category_id" binding:"omitempty,uuid"`
	Kind         *models.EntryKind `json:"kind" binding:"omitempty,entry_kind"`
	AmountMinor  *int64            `json:"amount_minor" binding:"omitempty,gte=0"`
	EntryDate    *time.Time        `json:"entry_date"`
	Description  *string           `json:"description" binding:"omitempty,max=500"`
	Counterparty *string           `json:"counterparty" binding:"omitempty,max=200"`
}

// parseEntryFilter reads the optional list filters from the query string.
func parseEntryFilter(c *gin.Context) (services.EntryFilter, error) {
	var filter services.EntryFilter

	if v := c.Query("from_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date must be YYYY-MM-DD")
		}
		filter.FromDate = &d
	}
	if v := c.Query("to_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "to_date must be YYYY-MM-DD")
		}
		filter.ToDate = &d
	}
	if v := c.Query("kind"); v != "" {
		k := models.EntryKind(v)
		if k != models.EntryKindIncome && k != models.EntryKindExpense {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "kind must be 'income' or 'expense'")
		}
		filter.Kind = &k
	}
	if v := c.Query("category_id"); v != "" {
		if !uuid.IsValid(v) {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid category_id")
		}
		filter.CategoryID = &v
	}
	if v := c.Query("member_id"); v != "" {
		if !uuid.IsValid(v) {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid member_id")
		}
		filter.MemberID = &v
	}
	filter.Search = c.Query("search")
	filter.SortBy = c.Query("sort_by")
	filter.SortOrder = c.Query("sort_order")
	return filter, nil
}

// ListEntries handles listing a budget's entries.
// @Summary     List entries
// @Description List a budget's entries with filters and pagination
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       id          path  string true  "Budget ID"
// @Param       from_date   query string false "Start date (YYYY-MM-DD)"
// @Param       to_date     query string false "End date (YYYY-MM-DD)"
// @Param       kind        query string false "Filter by kind (income/expense)"
// @Param       category_id query string false "Filter by category"
// @Param       member_id   query string false "Filter by creator"
// @Param       search      query string false "Match description or counterparty"
// @Param       sort_by     query string false "Sort field (date/amount/description)"
// @Param       sort_order  query string false "Sort direction (asc/desc)"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Entry] "Paginated entries"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/entries [get]
func (h *EntryHandler) ListEntries(c *gin.Context) {
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

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseEntryFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.entryService.ListEntries(budgetID, userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateEntry handles recording a new entry.
// @Summary     Create an entry
// @Description Record an income or expense in the budget; contributor or above
// @Tags        entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Budget ID"
// @Param       request body CreateEntryRequest true "Entry details"
// @Success     201 {object} models.Entry "Entry created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Insufficient role"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/entries [post]
func (h *EntryHandler) CreateEntry(c *gin.Context) {
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

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entry, err := h.entryService.CreateEntry(budgetID, userID, req.CategoryID, req.Kind,
		req.AmountMinor, req.CurrencyCode, req.EntryDate, req.Description, req.Counterparty)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// GetEntry handles retrieving a specific entry.
// @Summary     Get entry by ID
// @Description Get one entry of the budget
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string true "Budget ID"
// @Param       entryId path string true "Entry ID"
// @Success     200 {object} models.Entry "Entry details"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/entries/{entryId} [get]
func (h *EntryHandler) GetEntry(c *gin.Context) {
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

	entryID, err := parsePathID(c, "entryId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.entryService.GetEntryByID(budgetID, entryID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// UpdateEntry handles updating an entry.
// @Summary     Update an entry
// @Description Update entry fields; contributor or above
// @Tags        entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Budget ID"
// @Param       entryId path string             true "Entry ID"
// @Param       request body UpdateEntryRequest true "Updated entry details"
// @Success     200 {object} models.Entry "Updated entry"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Insufficient role"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/entries/{entryId} [put]
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
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

	entryID, err := parsePathID(c, "entryId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entry, err := h.entryService.UpdateEntry(budgetID, entryID, userID, services.EntryUpdate{
		CategoryID:   req.CategoryID,
		Kind:         req.Kind,
		AmountMinor:  req.AmountMinor,
		EntryDate:    req.EntryDate,
		Description:  req.Description,
		Counterparty: req.Counterparty,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// DeleteEntry handles soft-deleting an entry.
// @Summary     Delete an entry
// @Description Soft-delete an entry; contributor or above
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string true "Budget ID"
// @Param       entryId path string true "Entry ID"
// @Success     200 {object} MessageResponse "Entry deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Insufficient role"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/entries/{entryId} [delete]
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
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

	entryID, err := parsePathID(c, "entryId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.entryService.DeleteEntry(budgetID, entryID, userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted successfully"})
}

// MonthlySummary handles the per-month aggregation of a budget's entries.
// @Summary     Monthly summary
// @Description Aggregate a budget's entries per calendar month
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Budget ID"
// @Param       from query string false "Start date (YYYY-MM-DD, default one year ago)"
// @Param       to   query string false "End date (YYYY-MM-DD, default today)"
// @Success     200 {array} services.MonthlySummaryRow "Monthly totals"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/summary/monthly [get]
func (h *EntryHandler) MonthlySummary(c *gin.Context) {
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

	now := time.Now().UTC()
	from := now.AddDate(-1, 0, 0)
	to := now
	if v := c.Query("from"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "from must be YYYY-MM-DD"))
			return
		}
		from = d
	}
	if v := c.Query("to"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must be YYYY-MM-DD"))
			return
		}
		to = d
	}

	rows, err := h.entryService.MonthlySummary(budgetID, userID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": rows})
}
