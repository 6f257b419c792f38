package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgie/internal/errors"
	"budgie/internal/models"
	"budgie/internal/projection"
	"budgie/internal/services"
	"budgie/internal/validator"
)

// LogHandler handles log entries and the month/search views over them.
type LogHandler struct {
	ledgerService services.LedgerServicer
	viewService   services.ViewServicer
	auditService  services.AuditServicer
	now           func() time.Time
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(ledgerService services.LedgerServicer, viewService services.ViewServicer, auditService services.AuditServicer) *LogHandler {
	return &LogHandler{
		ledgerService: ledgerService,
		viewService:   viewService,
		auditService:  auditService,
		now:           time.Now,
	}
}

// LogRequest represents the request payload for creating or updating a log.
type LogRequest struct {
	Amount             string  `json:"amount" binding:"omitempty,decimal_amount"`
	CategoryID         string  `json:"category_id" binding:"omitempty,uuid"`
	Timestamp          *string `json:"timestamp"`
	Notes              string  `json:"notes" binding:"max=1000"`
	ExcludedFromReport bool    `json:"excluded_from_report"`
}

// ViewQuery selects a month or a search across all months. Search wins when
// both are given; a missing month means the current one.
type ViewQuery struct {
	Month  string `form:"month" binding:"omitempty,month"`
	Search string `form:"search" binding:"max=200"`
}

// DayResponse is one calendar day of logs with its signed total.
type DayResponse struct {
	Date  string        `json:"date"`
	Total string        `json:"total"`
	Logs  []*models.Log `json:"logs"`
}

func (h *LogHandler) bindInput(c *gin.Context) (services.LogInput, error) {
	var req LogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return services.LogInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	input := services.LogInput{
		Amount:             req.Amount,
		CategoryID:         req.CategoryID,
		Notes:              req.Notes,
		ExcludedFromReport: req.ExcludedFromReport,
	}
	if req.Timestamp != nil && *req.Timestamp != "" {
		ts, err := parseTimestamp(*req.Timestamp, h.viewService.Location())
		if err != nil {
			return services.LogInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		input.Timestamp = ts
	}
	return input, nil
}

// view builds the month/search view described by the query string.
func (h *LogHandler) view(c *gin.Context) (*projection.View, error) {
	var query ViewQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	loc := h.viewService.Location()
	view := projection.NewView(h.now(), loc)
	if query.Month != "" {
		month, err := time.ParseInLocation(validator.MonthLayout, query.Month, loc)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be YYYY-MM")
		}
		view.SetMonth(month)
	}
	view.SetSearch(query.Search)
	return view, nil
}

// CreateLog records a log and updates the balance.
// @Summary     Create a log
// @Description Record an expense or income and update the balance
// @Tags        logs
// @Accept      json
// @Produce     json
// @Param       request body LogRequest true "Log details"
// @Success     201 {object} models.Log "Log created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Parent categories cannot carry logs"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /logs [post]
func (h *LogHandler) CreateLog(c *gin.Context) {
	input, err := h.bindInput(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	log, err := h.ledgerService.CreateLog(input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_LOG", "log", log.ID, c.ClientIP(),
		map[string]interface{}{"amount": log.Amount.String(), "category_id": log.CategoryID})

	c.JSON(http.StatusCreated, gin.H{"log": log})
}

// GetLog returns a log with its category.
// @Summary     Get log by ID
// @Description Get a log with its category
// @Tags        logs
// @Produce     json
// @Param       id path string true "Log ID"
// @Success     200 {object} models.Log "Log details"
// @Failure     400 {object} ErrorResponse "Invalid log ID"
// @Failure     404 {object} ErrorResponse "Log not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /logs/{id} [get]
func (h *LogHandler) GetLog(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	log, err := h.ledgerService.GetLog(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"log": log})
}

// UpdateLog replaces a log's fields and corrects the balance.
// @Summary     Update log
// @Description Replace a log's fields and correct the balance
// @Tags        logs
// @Accept      json
// @Produce     json
// @Param       id path string true "Log ID"
// @Param       request body LogRequest true "Log details"
// @Success     200 {object} models.Log "Log updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Log or category not found"
// @Failure     409 {object} ErrorResponse "Parent categories cannot carry logs"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /logs/{id} [put]
func (h *LogHandler) UpdateLog(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	input, err := h.bindInput(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	log, err := h.ledgerService.UpdateLog(id, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPDATE_LOG", "log", log.ID, c.ClientIP(),
		map[string]interface{}{"amount": log.Amount.String(), "category_id": log.CategoryID})

	c.JSON(http.StatusOK, gin.H{"log": log})
}

// DeleteLog removes a log and reverses its effect on the balance.
// @Summary     Delete log
// @Description Delete a log and reverse its effect on the balance
// @Tags        logs
// @Produce     json
// @Param       id path string true "Log ID"
// @Success     200 {object} MessageResponse "Log deleted"
// @Failure     400 {object} ErrorResponse "Invalid log ID"
// @Failure     404 {object} ErrorResponse "Log not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /logs/{id} [delete]
func (h *LogHandler) DeleteLog(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ledgerService.DeleteLog(id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_LOG", "log", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Log deleted successfully"})
}

// ListLogs returns the logs of a month, or every log matching a search,
// newest first.
// @Summary     List logs
// @Description List the logs of a month, or all logs matching a search, newest first
// @Tags        logs
// @Produce     json
// @Param       month query string false "Month (YYYY-MM), defaults to the current month"
// @Param       search query string false "Case-insensitive text in category title or notes"
// @Success     200 {array} models.Log "List of logs"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /logs [get]
func (h *LogHandler) ListLogs(c *gin.Context) {
	view, err := h.view(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	logs, err := h.viewService.ListLogs(view.Filter())
	if err != nil {
		respondWithError(c, err)
		return
	}
	if logs == nil {
		logs = []*models.Log{}
	}

	c.JSON(http.StatusOK, gin.H{
		"month":  view.Month().Format(validator.MonthLayout),
		"search": view.Search(),
		"logs":   logs,
	})
}

// ListDays returns the same logs as ListLogs grouped into calendar days.
// @Summary     List logs by day
// @Description List logs grouped by calendar day with signed daily totals
// @Tags        logs
// @Produce     json
// @Param       month query string false "Month (YYYY-MM), defaults to the current month"
// @Param       search query string false "Case-insensitive text in category title or notes"
// @Success     200 {array} DayResponse "Days with logs"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /logs/days [get]
func (h *LogHandler) ListDays(c *gin.Context) {
	view, err := h.view(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groups, err := h.viewService.Days(view.Filter())
	if err != nil {
		respondWithError(c, err)
		return
	}

	days := make([]DayResponse, 0, len(groups))
	for _, g := range groups {
		days = append(days, DayResponse{
			Date:  g.Date.Format(time.DateOnly),
			Total: g.TotalString(),
			Logs:  g.Logs,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"month":  view.Month().Format(validator.MonthLayout),
		"search": view.Search(),
		"days":   days,
	})
}
