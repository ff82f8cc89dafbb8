package app

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/himanshuranjan007/data-provider-playground-lz0/business/volume/domain"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/logger"
)

// Config holds the aggregation window settings.
type Config struct {
	TokenSymbol   string
	TokenDecimals uint8
	WindowBlocks  uint64 // how far back from the chain head to sum
	ChunkBlocks   uint64 // page size per log query
}

// VolumeService sums historical transfer values into a volume figure.
// This is plain aggregation; unlike the depth search it has no search
// state and a failed chunk fails the whole report.
type VolumeService struct {
	source EventSource
	config Config
	log    logger.LoggerInterface
}

// NewVolumeService creates a volume aggregation service.
func NewVolumeService(source EventSource, cfg Config, log logger.LoggerInterface) *VolumeService {
	return &VolumeService{
		source: source,
		config: cfg,
		log:    log,
	}
}

// TotalVolume sums transfer values over the configured window ending at
// the current chain head, paging block ranges in chunks.
func (s *VolumeService) TotalVolume(ctx context.Context) (domain.Report, error) {
	head, err := s.source.LatestBlock(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("resolve chain head: %w", err)
	}

	window := domain.Window{ToBlock: head}
	if head > s.config.WindowBlocks {
		window.FromBlock = head - s.config.WindowBlocks + 1
	}

	total := new(big.Int)
	transfers := 0

	for from := window.FromBlock; from <= window.ToBlock; {
		to := from + s.config.ChunkBlocks - 1
		if to > window.ToBlock {
			to = window.ToBlock
		}

		page, err := s.source.FilterTransfers(ctx, from, to)
		if err != nil {
			return domain.Report{}, fmt.Errorf("transfers for blocks %d-%d: %w", from, to, err)
		}
		for _, t := range page {
			total.Add(total, t.Value)
		}
		transfers += len(page)

		from = to + 1
	}

	s.log.Debug(ctx, "volume window aggregated",
		"token", s.config.TokenSymbol,
		"from_block", window.FromBlock,
		"to_block", window.ToBlock,
		"transfers", transfers,
	)

	return domain.Report{
		TokenSymbol: s.config.TokenSymbol,
		Window:      window,
		TotalRaw:    total,
		Total:       decimal.NewFromBigInt(total, -int32(s.config.TokenDecimals)),
		Transfers:   transfers,
		MeasuredAt:  time.Now().UTC(),
	}, nil
}
