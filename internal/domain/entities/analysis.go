package entities

// Transaction is one on-chain transaction as seen by the analyzer.
// Value and GasUsed stay strings: wei amounts overflow int64 and the
// analyzer only needs them for display and coarse totals.
type Transaction struct {
	Hash        string `json:"hash"`
	FromAddress string `json:"fromAddress"`
	ToAddress   string `json:"toAddress"`
	Value       string `json:"value"`
	GasUsed     string `json:"gasUsed"`
	Timestamp   int64  `json:"timestamp"`
	Method      string `json:"method,omitempty"`
	Protocol    string `json:"protocol,omitempty"`
}

// RiskLevel buckets a risk score.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "Low"
	RiskLevelMedium RiskLevel = "Medium"
	RiskLevelHigh   RiskLevel = "High"
)

// ProtocolInteraction aggregates a wallet's usage of one DeFi protocol.
type ProtocolInteraction struct {
	Name             string    `json:"name"`
	Count            int       `json:"count"`
	FirstInteraction int64     `json:"firstInteraction,omitempty"`
	LastInteraction  int64     `json:"lastInteraction,omitempty"`
	TotalValue       float64   `json:"totalValue"`
	RiskLevel        RiskLevel `json:"riskLevel"`
}

// RiskReport is the credit-risk assessment derived from a wallet's
// transaction history. Reports are derived data: cached, never stored.
type RiskReport struct {
	WalletAddress     string                `json:"walletAddress"`
	RiskScore         int                   `json:"riskScore"`
	RiskLevel         RiskLevel             `json:"riskLevel"`
	WalletAgeDays     int                   `json:"walletAgeDays"`
	TotalTransactions int                   `json:"totalTransactions"`
	DefiInteractions  int                   `json:"defiInteractions"`
	RiskFactors       []string              `json:"riskFactors"`
	PositiveFactors   []string              `json:"positiveFactors"`
	DefiProtocols     []ProtocolInteraction `json:"defiProtocols"`
	Recommendation    string                `json:"recommendation"`
	GeneratedAt       int64                 `json:"generatedAt"`
	Attestation       string                `json:"attestation,omitempty"`
}

// TransactionPage is the analyzer's transaction listing response.
type TransactionPage struct {
	WalletAddress    string        `json:"walletAddress"`
	TransactionCount int           `json:"transactionCount"`
	Transactions     []Transaction `json:"transactions"`
}
