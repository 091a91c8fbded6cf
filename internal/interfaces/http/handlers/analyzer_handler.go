package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"nexacred.backend/internal/domain/entities"
	"nexacred.backend/internal/interfaces/http/response"
)

// defaultTransactionLimit bounds the transaction listing when the client
// does not ask for a specific page size.
const defaultTransactionLimit = 100

// analyzerService is the slice of the analyzer usecase this handler needs.
type analyzerService interface {
	AnalyzeWallet(ctx context.Context, walletAddress string) (*entities.RiskReport, error)
	GetTransactions(ctx context.Context, walletAddress string, limit int) (*entities.TransactionPage, error)
}

// AnalyzerHandler handles wallet risk analysis endpoints
type AnalyzerHandler struct {
	analyzer analyzerService
}

// NewAnalyzerHandler creates a new analyzer handler
func NewAnalyzerHandler(analyzer analyzerService) *AnalyzerHandler {
	return &AnalyzerHandler{
		analyzer: analyzer,
	}
}

// Analyze produces a credit-risk report for a wallet
// POST /api/analyzer/analyze/:address
func (h *AnalyzerHandler) Analyze(c *gin.Context) {
	report, err := h.analyzer.AnalyzeWallet(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, report)
}

// GetTransactions lists recent transactions for a wallet
// GET /api/analyzer/transactions/:address?limit=
func (h *AnalyzerHandler) GetTransactions(c *gin.Context) {
	limit := defaultTransactionLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	page, err := h.analyzer.GetTransactions(c.Request.Context(), c.Param("address"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, page)
}
