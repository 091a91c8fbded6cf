package blockchain

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"nexacred.backend/internal/domain/entities"
)

// timeNow is swappable in tests.
var timeNow = time.Now

const (
	minTransactions     = 30
	maxTransactions     = 200
	minWalletAgeDays    = 90
	walletAgeSpreadDays = 810
	protocolTxChance    = 0.4
	minGas              = 21000
	maxProtocolGas      = 500000
	maxPlainGas         = 200000
	maxValueWei         = 1_000_000_000_000_000_000 // 1 ETH
)

// SyntheticSource generates transaction histories without touching a chain.
// The generator is seeded from the address suffix, so the same address
// always describes the same wallet: age, protocol set and transaction mix
// are stable across fetches (timestamps shift with the clock).
type SyntheticSource struct{}

// NewSyntheticSource creates the default transaction source.
func NewSyntheticSource() *SyntheticSource {
	return &SyntheticSource{}
}

// FetchTransactions generates the deterministic history for an address,
// sorted by timestamp ascending.
func (s *SyntheticSource) FetchTransactions(_ context.Context, address string) ([]entities.Transaction, error) {
	normalized := strings.ToLower(address)
	seed, err := addressSeed(normalized)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(int64(seed)))

	now := timeNow().Unix()
	count := minTransactions + rng.Intn(maxTransactions-minTransactions+1)
	ageDays := int64(minWalletAgeDays + seed%walletAgeSpreadDays)
	earliest := now - ageDays*86400

	protocols := sampleProtocols(rng, 3+seed%8)

	txs := make([]entities.Transaction, 0, count)
	for i := 0; i < count; i++ {
		ts := earliest + rng.Int63n(now-earliest+1)
		if rng.Float64() < protocolTxChance {
			txs = append(txs, protocolTransaction(rng, normalized, ts, protocols))
		} else {
			txs = append(txs, plainTransaction(rng, normalized, ts))
		}
	}

	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Timestamp < txs[j].Timestamp })
	return txs, nil
}

// addressSeed folds the address suffix into a small stable seed.
func addressSeed(address string) (int, error) {
	hexPart := strings.TrimPrefix(address, "0x")
	if len(hexPart) > 8 {
		hexPart = hexPart[len(hexPart)-8:]
	}
	v, err := strconv.ParseUint(hexPart, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("derive address seed: %w", err)
	}
	return int(v % 1000), nil
}

func sampleProtocols(rng *rand.Rand, n int) []string {
	if n > len(entities.ProtocolNames) {
		n = len(entities.ProtocolNames)
	}
	perm := rng.Perm(len(entities.ProtocolNames))
	sampled := make([]string, n)
	for i := range sampled {
		sampled[i] = entities.ProtocolNames[perm[i]]
	}
	return sampled
}

func protocolTransaction(rng *rand.Rand, wallet string, ts int64, protocols []string) entities.Transaction {
	protocol := protocols[rng.Intn(len(protocols))]
	to, ok := entities.AddressForProtocol(protocol)
	if !ok {
		to = randomAddress(rng)
	}
	return entities.Transaction{
		Hash:        randomHash(rng),
		FromAddress: wallet,
		ToAddress:   to,
		Value:       strconv.FormatInt(1+rng.Int63n(maxValueWei), 10),
		GasUsed:     strconv.FormatInt(minGas+rng.Int63n(maxProtocolGas-minGas+1), 10),
		Timestamp:   ts,
		Method:      entities.MethodNames[rng.Intn(len(entities.MethodNames))],
		Protocol:    protocol,
	}
}

func plainTransaction(rng *rand.Rand, wallet string, ts int64) entities.Transaction {
	// The wallet sits on exactly one side of a plain transfer.
	from, to := wallet, randomAddress(rng)
	if rng.Float64() < 0.5 {
		from, to = randomAddress(rng), wallet
	}
	return entities.Transaction{
		Hash:        randomHash(rng),
		FromAddress: from,
		ToAddress:   to,
		Value:       strconv.FormatInt(1+rng.Int63n(maxValueWei), 10),
		GasUsed:     strconv.FormatInt(minGas+rng.Int63n(maxPlainGas-minGas+1), 10),
		Timestamp:   ts,
	}
}

func randomHash(rng *rand.Rand) string {
	return "0x" + randomHex(rng, 32)
}

func randomAddress(rng *rand.Rand) string {
	return "0x" + randomHex(rng, 20)
}

func randomHex(rng *rand.Rand, n int) string {
	buf := make([]byte, n)
	rng.Read(buf)
	return hex.EncodeToString(buf)
}
