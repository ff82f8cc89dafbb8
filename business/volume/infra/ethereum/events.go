// Package ethereum implements the volume EventSource against an EVM
// JSON-RPC endpoint using go-ethereum.
package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	volumeApp "github.com/himanshuranjan007/data-provider-playground-lz0/business/volume/app"
	"github.com/himanshuranjan007/data-provider-playground-lz0/business/volume/domain"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/apperror"
)

// transferTopic is keccak256("Transfer(address,address,uint256)").
var transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// Ensure EventClient implements the EventSource port.
var _ volumeApp.EventSource = (*EventClient)(nil)

// EventClient reads ERC20 Transfer logs for one token contract.
type EventClient struct {
	client *ethclient.Client
	token  common.Address
}

// NewEventClient dials the RPC endpoint and targets the given token.
func NewEventClient(rpcURL, tokenAddress string) (*EventClient, error) {
	if !common.IsHexAddress(tokenAddress) {
		return nil, fmt.Errorf("invalid token address: %s", tokenAddress)
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	return &EventClient{
		client: client,
		token:  common.HexToAddress(tokenAddress),
	}, nil
}

// LatestBlock returns the current chain head block number.
func (c *EventClient) LatestBlock(ctx context.Context) (uint64, error) {
	head, err := c.client.BlockNumber(ctx)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.CodeEventQueryFailed, "block number")
	}
	return head, nil
}

// FilterTransfers returns transfer values within [fromBlock, toBlock].
func (c *EventClient) FilterTransfers(ctx context.Context, fromBlock, toBlock uint64) ([]domain.Transfer, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{c.token},
		Topics:    [][]common.Hash{{transferTopic}},
	}

	logs, err := c.client.FilterLogs(ctx, query)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeEventQueryFailed,
			fmt.Sprintf("filter logs %d-%d", fromBlock, toBlock))
	}

	transfers := make([]domain.Transfer, 0, len(logs))
	for _, l := range logs {
		if len(l.Data) == 0 {
			continue // non-standard event, value indexed away
		}
		transfers = append(transfers, domain.Transfer{
			Block: l.BlockNumber,
			Value: new(big.Int).SetBytes(l.Data),
		})
	}

	return transfers, nil
}

// Close releases the underlying RPC connection.
func (c *EventClient) Close() {
	c.client.Close()
}
