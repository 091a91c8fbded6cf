package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"nexacred.backend/internal/domain/entities"
	domainerrors "nexacred.backend/internal/domain/errors"
	"nexacred.backend/pkg/attest"
	"nexacred.backend/pkg/crypto"
	"nexacred.backend/pkg/logger"
	"nexacred.backend/pkg/redis"
)

// analyzerNow is swappable in tests.
var analyzerNow = time.Now

// TransactionSource supplies the transaction history the analyzer scores.
type TransactionSource interface {
	FetchTransactions(ctx context.Context, address string) ([]entities.Transaction, error)
}

// AnalyzerUsecase derives credit-risk reports from wallet transaction
// history. Reports are derived data: cached in Redis under a TTL, recomputed
// on miss, never stored in SQL. When a signer is configured each fresh
// report carries a JWS attestation over its JSON rendering.
type AnalyzerUsecase struct {
	source TransactionSource
	cache  *redis.ReportCache
	signer *attest.Signer
}

// NewAnalyzerUsecase creates a new analyzer usecase. cache and signer may be
// nil to disable caching and attestation respectively.
func NewAnalyzerUsecase(source TransactionSource, cache *redis.ReportCache, signer *attest.Signer) *AnalyzerUsecase {
	return &AnalyzerUsecase{
		source: source,
		cache:  cache,
		signer: signer,
	}
}

// AnalyzeWallet fetches the address's transaction history and scores it.
func (u *AnalyzerUsecase) AnalyzeWallet(ctx context.Context, walletAddress string) (*entities.RiskReport, error) {
	if !crypto.IsValidAddress(walletAddress) {
		return nil, domainerrors.ErrInvalidAddress
	}
	address := crypto.NormalizeAddress(walletAddress)

	if report, ok := u.cachedReport(ctx, address); ok {
		return report, nil
	}

	txs, err := u.source.FetchTransactions(ctx, address)
	if err != nil {
		return nil, err
	}

	report := scoreTransactions(address, txs, analyzerNow().Unix())

	if u.signer != nil {
		payload, err := json.Marshal(report)
		if err != nil {
			return nil, err
		}
		attestation, err := u.signer.Sign(payload)
		if err != nil {
			return nil, err
		}
		report.Attestation = attestation
	}

	u.storeReport(ctx, address, report)
	return report, nil
}

// GetTransactions returns the most recent transactions for an address.
// limit <= 0 means no limit; the count always reflects the full history.
func (u *AnalyzerUsecase) GetTransactions(ctx context.Context, walletAddress string, limit int) (*entities.TransactionPage, error) {
	if !crypto.IsValidAddress(walletAddress) {
		return nil, domainerrors.ErrInvalidAddress
	}
	address := crypto.NormalizeAddress(walletAddress)

	all, err := u.source.FetchTransactions(ctx, address)
	if err != nil {
		return nil, err
	}

	transactions := all
	if limit > 0 && len(all) > limit {
		transactions = all[len(all)-limit:]
	}

	return &entities.TransactionPage{
		WalletAddress:    address,
		TransactionCount: len(all),
		Transactions:     transactions,
	}, nil
}

func (u *AnalyzerUsecase) cachedReport(ctx context.Context, address string) (*entities.RiskReport, bool) {
	if u.cache == nil {
		return nil, false
	}
	data, ok, err := u.cache.Get(ctx, address)
	if err != nil {
		logger.WithContext(ctx).Debug("report cache read failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var report entities.RiskReport
	if err := json.Unmarshal(data, &report); err != nil {
		logger.WithContext(ctx).Warn("dropping undecodable cached report",
			zap.String("walletAddress", address), zap.Error(err))
		_ = u.cache.Invalidate(ctx, address)
		return nil, false
	}
	return &report, true
}

func (u *AnalyzerUsecase) storeReport(ctx context.Context, address string, report *entities.RiskReport) {
	if u.cache == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := u.cache.Put(ctx, address, data); err != nil {
		logger.WithContext(ctx).Debug("report cache write failed", zap.Error(err))
	}
}

// scoreTransactions turns a wallet's transaction history into a risk report.
// Pure over its inputs; txs must be sorted by timestamp ascending.
func scoreTransactions(address string, txs []entities.Transaction, now int64) *entities.RiskReport {
	if len(txs) == 0 {
		return &entities.RiskReport{
			WalletAddress:   address,
			RiskScore:       50,
			RiskLevel:       entities.RiskLevelMedium,
			RiskFactors:     []string{"No transaction history available"},
			PositiveFactors: []string{},
			DefiProtocols:   []entities.ProtocolInteraction{},
			Recommendation:  "Insufficient data for credit assessment",
			GeneratedAt:     now,
		}
	}

	total := len(txs)
	firstTs := txs[0].Timestamp
	lastTs := txs[total-1].Timestamp
	walletAgeDays := int((now - firstTs) / 86400)

	// Aggregate protocol interactions in first-encounter order so reports
	// for the same history are identical.
	defiInteractions := 0
	var order []string
	agg := make(map[string]*entities.ProtocolInteraction)
	for _, tx := range txs {
		if tx.Protocol == "" {
			continue
		}
		defiInteractions++
		p, ok := agg[tx.Protocol]
		if !ok {
			p = &entities.ProtocolInteraction{
				Name:             tx.Protocol,
				FirstInteraction: tx.Timestamp,
				RiskLevel:        entities.RiskLevelForProtocol(tx.Protocol),
			}
			agg[tx.Protocol] = p
			order = append(order, tx.Protocol)
		}
		p.Count++
		p.LastInteraction = tx.Timestamp
		if strings.EqualFold(tx.FromAddress, address) {
			if wei, err := strconv.ParseFloat(tx.Value, 64); err == nil {
				p.TotalValue += wei / 1e18
			}
		}
	}

	defiProtocols := make([]entities.ProtocolInteraction, 0, len(order))
	var highRisk []string
	for _, name := range order {
		p := agg[name]
		defiProtocols = append(defiProtocols, *p)
		if p.RiskLevel == entities.RiskLevelHigh {
			highRisk = append(highRisk, name)
		}
	}

	riskFactors := []string{}
	positiveFactors := []string{}

	if walletAgeDays < 30 {
		riskFactors = append(riskFactors, "New wallet (less than 30 days old)")
	} else if walletAgeDays > 365 {
		positiveFactors = append(positiveFactors, "Long wallet history (over 1 year)")
	}

	if total < 10 {
		riskFactors = append(riskFactors, "Low transaction volume")
	} else if total > 100 {
		positiveFactors = append(positiveFactors, "High transaction volume indicating active usage")
	}

	if len(highRisk) > 0 {
		riskFactors = append(riskFactors, fmt.Sprintf("Interaction with high-risk protocols (%s)", strings.Join(highRisk, ", ")))
	}

	if defiInteractions > 20 {
		positiveFactors = append(positiveFactors, "Significant DeFi experience")
	} else if defiInteractions == 0 {
		riskFactors = append(riskFactors, "No DeFi interactions")
	}

	if total > 1 {
		var gapSum int64
		for i := 1; i < total; i++ {
			gapSum += txs[i].Timestamp - txs[i-1].Timestamp
		}
		if float64(gapSum)/float64(total-1) < 86400 {
			positiveFactors = append(positiveFactors, "Regular transaction activity")
		}
	}

	daysSinceLast := int((now - lastTs) / 86400)
	if daysSinceLast > 90 {
		riskFactors = append(riskFactors, fmt.Sprintf("No recent activity (%d days since last transaction)", daysSinceLast))
	} else if daysSinceLast < 7 {
		positiveFactors = append(positiveFactors, "Recent wallet activity")
	}

	// Base score 50; each dimension shifts it within a fixed band.
	score := 50

	if walletAgeDays < 30 {
		score += min(15, 30-walletAgeDays)
	} else {
		score -= min(15, walletAgeDays/30)
	}

	if total < 10 {
		score += min(10, 10-total)
	} else {
		score -= min(10, total/10)
	}

	if defiInteractions == 0 {
		score += 15
	} else {
		score -= min(15, defiInteractions/2)
	}

	score += 5 * len(highRisk)

	if daysSinceLast > 90 {
		score += min(10, daysSinceLast/9)
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	level := entities.RiskLevelLow
	switch {
	case score > 70:
		level = entities.RiskLevelHigh
	case score > 40:
		level = entities.RiskLevelMedium
	}

	var recommendation string
	switch level {
	case entities.RiskLevelLow:
		recommendation = "Approved for credit"
	case entities.RiskLevelMedium:
		recommendation = "Requires additional verification"
	default:
		recommendation = "High risk - manual review required"
	}

	return &entities.RiskReport{
		WalletAddress:     address,
		RiskScore:         score,
		RiskLevel:         level,
		WalletAgeDays:     walletAgeDays,
		TotalTransactions: total,
		DefiInteractions:  defiInteractions,
		RiskFactors:       riskFactors,
		PositiveFactors:   positiveFactors,
		DefiProtocols:     defiProtocols,
		Recommendation:    recommendation,
		GeneratedAt:       now,
	}
}
