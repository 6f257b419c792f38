package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "budgie/internal/errors"
	"budgie/internal/services"
)

// AccountHandler handles the ledger account.
type AccountHandler struct {
	accountService services.AccountServicer
	auditService   services.AuditServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer, auditService services.AuditServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService, auditService: auditService}
}

// SetupAccountRequest represents the request payload for setting up the account.
type SetupAccountRequest struct {
	Name *string `json:"name" binding:"omitempty,max=100"`
}

// SetupAccount creates the ledger account.
// @Summary     Set up the account
// @Description Create the single ledger account with an optional name
// @Tags        account
// @Accept      json
// @Produce     json
// @Param       request body SetupAccountRequest false "Account name"
// @Success     201 {object} models.Account "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Account already exists"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /account [post]
func (h *AccountHandler) SetupAccount(c *gin.Context) {
	var req SetupAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
		if trimmed == "" {
			req.Name = nil
		}
	}

	account, err := h.accountService.SetupAccount(req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("SETUP_ACCOUNT", "account", account.ID, c.ClientIP(),
		map[string]interface{}{"name": account.DisplayName()})

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// GetAccount returns the account and its balance.
// @Summary     Get the account
// @Description Get the ledger account and its running balance
// @Tags        account
// @Produce     json
// @Success     200 {object} models.Account "Account details"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /account [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	account, err := h.accountService.GetAccount()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account, "display_name": account.DisplayName()})
}

// VerifyBalance compares the cached balance with one recomputed from logs.
// @Summary     Verify the balance
// @Description Compare the cached balance with the signed sum of all logs
// @Tags        account
// @Produce     json
// @Success     200 {object} services.BalanceCheck "Balance check"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /account/verify [get]
func (h *AccountHandler) VerifyBalance(c *gin.Context) {
	check, err := h.accountService.VerifyBalance()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": check})
}
