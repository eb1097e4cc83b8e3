package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"cashflow_tracker/internal/export"
	"cashflow_tracker/internal/model"
	"cashflow_tracker/internal/query"
	"cashflow_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// TransactionHandler handles transaction related requests
type TransactionHandler struct {
	service service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(s service.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

func bindFilter(c *gin.Context) (query.Params, bool) {
	var p query.Params
	if err := c.ShouldBindQuery(&p); err != nil {
		badRequest(c, err)
		return p, false
	}
	return p, true
}

func transactionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction ID"})
		return 0, false
	}
	return id, true
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var req model.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	transaction, err := h.service.Create(c.Request.Context(), owner, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := transactionID(c)
	if !ok {
		return
	}
	var req model.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	transaction, err := h.service.Update(c.Request.Context(), id, owner, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transaction)
}

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := transactionID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, owner); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	p, ok := bindFilter(c)
	if !ok {
		return
	}

	transactions, err := h.service.List(c.Request.Context(), owner, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func (h *TransactionHandler) GetBalance(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	p, ok := bindFilter(c)
	if !ok {
		return
	}

	balance, err := h.service.Balance(c.Request.Context(), owner, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (h *TransactionHandler) GetBreakdown(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	p, ok := bindFilter(c)
	if !ok {
		return
	}

	breakdown, err := h.service.Breakdown(c.Request.Context(), owner, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

func (h *TransactionHandler) GetSummary(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	p, ok := bindFilter(c)
	if !ok {
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), owner, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *TransactionHandler) GetFilterOptions(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	periods, err := h.service.FilterOptions(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, periods)
}

func (h *TransactionHandler) ExportTransactions(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	p, ok := bindFilter(c)
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buffer, err := h.service.Export(c.Request.Context(), owner, p, format)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", format.FileName()))
	c.Data(http.StatusOK, format.ContentType(), buffer.Bytes())
}

// RegisterTransactionRoutes registers the owner-scoped ledger routes
func (h *TransactionHandler) RegisterTransactionRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	authed := rg.Group("", authMW)
	{
		txGroup := authed.Group("/transactions")
		txGroup.GET("", h.ListTransactions)
		txGroup.POST("", h.CreateTransaction)
		txGroup.GET("/export", h.ExportTransactions)
		txGroup.PUT("/:id", h.UpdateTransaction)
		txGroup.DELETE("/:id", h.DeleteTransaction)

		authed.GET("/balance", h.GetBalance)
		authed.GET("/breakdown", h.GetBreakdown)
		authed.GET("/summary", h.GetSummary)
		authed.GET("/filter-options", h.GetFilterOptions)
	}
}
