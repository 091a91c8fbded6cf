package blockchain

import (
	"context"
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"nexacred.backend/internal/domain/entities"
)

var dialRPCClient = ethclient.Dial

// RPCSource reads transaction history straight from a JSON-RPC node by
// scanning the most recent blocks. Suited to devnets and demos; a production
// deployment would sit on an indexer instead of walking blocks.
type RPCSource struct {
	client    *ethclient.Client
	chainID   *big.Int
	scanDepth uint64
}

// NewRPCSource dials the node and pins its chain ID for sender recovery.
func NewRPCSource(rpcURL string, scanDepth uint64) (*RPCSource, error) {
	client, err := dialRPCClient(rpcURL)
	if err != nil {
		return nil, err
	}

	chainID, err := client.ChainID(context.Background())
	if err != nil {
		client.Close()
		return nil, err
	}

	return &RPCSource{
		client:    client,
		chainID:   chainID,
		scanDepth: scanDepth,
	}, nil
}

// FetchTransactions scans the latest blocks for transactions touching the
// address, oldest first.
func (s *RPCSource) FetchTransactions(ctx context.Context, address string) ([]entities.Transaction, error) {
	target := strings.ToLower(address)

	head, err := s.client.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	var from uint64
	if head >= s.scanDepth {
		from = head - s.scanDepth + 1
	}

	signer := types.LatestSignerForChainID(s.chainID)
	var txs []entities.Transaction
	for number := from; number <= head; number++ {
		block, err := s.client.BlockByNumber(ctx, new(big.Int).SetUint64(number))
		if err != nil {
			return nil, err
		}
		for _, tx := range block.Transactions() {
			if entry, ok := s.classify(ctx, signer, tx, block.Time(), target); ok {
				txs = append(txs, entry)
			}
		}
	}
	return txs, nil
}

// classify converts a raw transaction into an analyzer entry when it touches
// the target address.
func (s *RPCSource) classify(ctx context.Context, signer types.Signer, tx *types.Transaction, blockTime uint64, target string) (entities.Transaction, bool) {
	var from, to string
	if sender, err := types.Sender(signer, tx); err == nil {
		from = strings.ToLower(sender.Hex())
	}
	if tx.To() != nil {
		to = strings.ToLower(tx.To().Hex())
	}
	if from != target && to != target {
		return entities.Transaction{}, false
	}

	entry := entities.Transaction{
		Hash:        tx.Hash().Hex(),
		FromAddress: from,
		ToAddress:   to,
		Value:       tx.Value().String(),
		GasUsed:     strconv.FormatUint(tx.Gas(), 10),
		Timestamp:   int64(blockTime),
	}

	// Prefer the receipt's actual gas over the transaction's limit.
	if s.client != nil {
		if receipt, err := s.client.TransactionReceipt(ctx, tx.Hash()); err == nil {
			entry.GasUsed = strconv.FormatUint(receipt.GasUsed, 10)
		}
	}

	if data := tx.Data(); len(data) >= 4 {
		if method, ok := entities.MethodSignatures["0x"+hex.EncodeToString(data[:4])]; ok {
			entry.Method = method
		}
	}
	if protocol, ok := entities.ProtocolAddresses[to]; ok {
		entry.Protocol = protocol
	}
	return entry, true
}

// Close releases the underlying RPC connection.
func (s *RPCSource) Close() {
	if s.client != nil {
		s.client.Close()
	}
}
