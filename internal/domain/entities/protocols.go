package entities

// Protocol classification tables used by the transaction analyzer. The
// entries mirror the platform's curated list; unknown protocols are treated
// as Medium risk.

// ProtocolNames lists the known protocols in classification order. The
// synthetic transaction source samples from this list, so the order is part
// of its deterministic output.
var ProtocolNames = []string{
	"Uniswap",
	"Aave",
	"Compound",
	"MakerDAO",
	"Curve",
	"Balancer",
	"SushiSwap",
	"1inch",
	"dYdX",
	"Yearn",
	"Synthetix",
	"Bancor",
	"0x Protocol",
	"PancakeSwap",
	"Polygon",
	"Arbitrum",
	"Optimism",
}

// ProtocolRiskLevels classifies known DeFi protocols.
var ProtocolRiskLevels = map[string]RiskLevel{
	"Uniswap":     RiskLevelLow,
	"Aave":        RiskLevelLow,
	"Compound":    RiskLevelLow,
	"MakerDAO":    RiskLevelMedium,
	"Curve":       RiskLevelLow,
	"Balancer":    RiskLevelLow,
	"SushiSwap":   RiskLevelMedium,
	"1inch":       RiskLevelLow,
	"dYdX":        RiskLevelMedium,
	"Yearn":       RiskLevelMedium,
	"Synthetix":   RiskLevelHigh,
	"Bancor":      RiskLevelMedium,
	"0x Protocol": RiskLevelLow,
	"PancakeSwap": RiskLevelMedium,
	"Polygon":     RiskLevelLow,
	"Arbitrum":    RiskLevelMedium,
	"Optimism":    RiskLevelMedium,
}

// MethodSignatures maps 4-byte selectors to the method labels shown in
// transaction listings.
var MethodSignatures = map[string]string{
	"0x095ea7b3": "approve",
	"0xa9059cbb": "transfer",
	"0x23b872dd": "transferFrom",
	"0x70a08231": "balanceOf",
	"0x18160ddd": "totalSupply",
	"0x7ff36ab5": "swapExactETHForTokens",
	"0x38ed1739": "swapExactTokensForTokens",
	"0xe8e33700": "addLiquidity",
	"0x4a25d94a": "removeLiquidity",
	"0x1e9a6950": "deposit",
	"0x2e1a7d4d": "withdraw",
	"0x128acb08": "stake",
	"0xb6b55f25": "unstake",
	"0xae9d70b0": "claim",
}

// MethodNames lists the method labels in selector-table order, for the
// synthetic source's deterministic sampling.
var MethodNames = []string{
	"approve",
	"transfer",
	"transferFrom",
	"balanceOf",
	"totalSupply",
	"swapExactETHForTokens",
	"swapExactTokensForTokens",
	"addLiquidity",
	"removeLiquidity",
	"deposit",
	"withdraw",
	"stake",
	"unstake",
	"claim",
}

// ProtocolAddresses maps mainnet token/governance addresses to their
// protocol. Protocols without an entry get a synthetic address in generated
// histories.
var ProtocolAddresses = map[string]string{
	"0x1f9840a85d5af5bf1d1762f925bdaddc4201f984": "Uniswap",
	"0x7fc66500c84a76ad7e9c93437bfc5ac33e2ddae9": "Aave",
	"0xc00e94cb662c3520282e6f5717214004a7f26888": "Compound",
	"0x9f8f72aa9304c8b593d555f12ef6589cc3a579a2": "MakerDAO",
	"0xd533a949740bb3306d119cc777fa900ba034cd52": "Curve",
	"0xba100000625a3754423978a60c9317c58a424e3d": "Balancer",
	"0x6b3595068778dd592e39a122f4f5a5cf09c90fe2": "SushiSwap",
	"0x111111111117dc0aa78b770fa6a738034120c302": "1inch",
	"0x92d6c1e31e14520e676a687f0a93788b716beff5": "dYdX",
	"0x0bc529c00c6401aef6d220be8c6ea1667f6ad93e": "Yearn",
	"0xc011a73ee8576fb46f5e1c5751ca3b9fe0af2a6f": "Synthetix",
}

var protocolAddressByName = func() map[string]string {
	byName := make(map[string]string, len(ProtocolAddresses))
	for addr, name := range ProtocolAddresses {
		byName[name] = addr
	}
	return byName
}()

// AddressForProtocol returns the known address of a protocol, if any.
func AddressForProtocol(name string) (string, bool) {
	addr, ok := protocolAddressByName[name]
	return addr, ok
}

// RiskLevelForProtocol classifies a protocol, defaulting to Medium for
// protocols outside the curated table.
func RiskLevelForProtocol(name string) RiskLevel {
	if level, ok := ProtocolRiskLevels[name]; ok {
		return level
	}
	return RiskLevelMedium
}
