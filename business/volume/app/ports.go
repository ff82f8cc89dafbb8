// Package app contains the volume aggregation service and its ports.
package app

import (
	"context"

	"github.com/himanshuranjan007/data-provider-playground-lz0/business/volume/domain"
)

// EventSource retrieves historical transfer events for one token.
// Implementations are expected to enforce their backend's range limits;
// the service paginates by calling FilterTransfers per chunk.
type EventSource interface {
	// LatestBlock returns the current chain head block number.
	LatestBlock(ctx context.Context) (uint64, error)

	// FilterTransfers returns transfer values within [fromBlock, toBlock].
	FilterTransfers(ctx context.Context, fromBlock, toBlock uint64) ([]domain.Transfer, error)
}
