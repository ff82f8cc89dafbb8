package main

import (
	"time"

	liquidityDomain "github.com/himanshuranjan007/data-provider-playground-lz0/business/liquidity/domain"
	volumeDomain "github.com/himanshuranjan007/data-provider-playground-lz0/business/volume/domain"
)

// report is the JSON document handed to the surrounding aggregation
// layer. Amounts are serialized as integer strings in smallest units.
type report struct {
	GeneratedAt time.Time            `json:"generatedAt"`
	Routes      []routeReport        `json:"routes"`
	Volume      *volumeDomain.Report `json:"volume,omitempty"`
}

// newReport returns an empty report; Routes starts as an empty slice so
// a run where every route fails still emits "routes": [] rather than
// null, keeping the document schema stable for consumers.
func newReport() report {
	return report{
		GeneratedAt: time.Now().UTC(),
		Routes:      []routeReport{},
	}
}

type routeReport struct {
	SrcChain   string            `json:"srcChain"`
	SrcToken   string            `json:"srcToken"`
	SrcSymbol  string            `json:"srcSymbol"`
	DstChain   string            `json:"dstChain"`
	DstToken   string            `json:"dstToken"`
	DstSymbol  string            `json:"dstSymbol"`
	MeasuredAt time.Time         `json:"measuredAt"`
	Thresholds []thresholdReport `json:"thresholds"`
}

type thresholdReport struct {
	TargetBps   int64  `json:"targetBps"`
	MaxAmountIn string `json:"maxAmountIn"`
	AchievedBps int64  `json:"achievedBps"`
	Probes      int    `json:"probes"`
}

func newRouteReport(d liquidityDomain.RouteDepth) routeReport {
	r := routeReport{
		SrcChain:   d.Route.Src.ChainID,
		SrcToken:   d.Route.Src.AssetID,
		SrcSymbol:  d.Route.Src.Symbol,
		DstChain:   d.Route.Dst.ChainID,
		DstToken:   d.Route.Dst.AssetID,
		DstSymbol:  d.Route.Dst.Symbol,
		MeasuredAt: d.MeasuredAt,
	}
	for _, t := range d.Thresholds {
		r.Thresholds = append(r.Thresholds, thresholdReport{
			TargetBps:   t.TargetBps,
			MaxAmountIn: t.MaxAmountIn.String(),
			AchievedBps: t.AchievedBps,
			Probes:      len(t.Samples),
		})
	}
	return r
}
