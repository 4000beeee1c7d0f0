package aggregate

import (
	dealdomain "smart_crm_backend/internal/deals/domain"
)

// StageTotals sums the deals in one bucket.
type StageTotals struct {
	Count         int     `json:"count"`
	Value         float64 `json:"value"`
	WeightedValue float64 `json:"weighted_value"`
}

func (t *StageTotals) add(d dealdomain.Deal) {
	t.Count++
	t.Value += d.Value
	t.WeightedValue += weighted(d)
}

// PipelineSummary rolls up a deal collection.
type PipelineSummary struct {
	TotalDeals    int                              `json:"total_deals"`
	TotalValue    float64                          `json:"total_value"`
	WeightedValue float64                          `json:"weighted_value"`
	ActiveDeals   int                              `json:"active_deals"`
	ActiveValue   float64                          `json:"active_value"`
	ByStage       map[dealdomain.Stage]StageTotals `json:"by_stage"`

	// Deals whose stage is missing or not one of the fixed stages. They are
	// included in the totals above.
	Unrecognized StageTotals `json:"unrecognized"`
}

// SummarizePipeline totals deal values, the probability-weighted value and
// per-stage buckets. ByStage always carries all six stages.
func SummarizePipeline(deals []dealdomain.Deal) PipelineSummary {
	s := PipelineSummary{
		TotalDeals: len(deals),
		ByStage:    make(map[dealdomain.Stage]StageTotals, len(dealdomain.Stages)),
	}
	for _, stage := range dealdomain.Stages {
		s.ByStage[stage] = StageTotals{}
	}

	for _, d := range deals {
		s.TotalValue += d.Value
		s.WeightedValue += weighted(d)
		if d.IsActive() {
			s.ActiveDeals++
			s.ActiveValue += d.Value
		}

		if !d.Stage.Valid() {
			s.Unrecognized.add(d)
			continue
		}
		bucket := s.ByStage[d.Stage]
		bucket.add(d)
		s.ByStage[d.Stage] = bucket
	}
	return s
}

// StageGroup is one column of the pipeline board.
type StageGroup struct {
	Stage  dealdomain.Stage  `json:"stage"`
	Deals  []dealdomain.Deal `json:"deals"`
	Totals StageTotals       `json:"totals"`
}

// GroupByStage returns one group per fixed stage in board order, keeping the
// input order inside each group. Deals with an unrecognised stage are left
// out of the board.
func GroupByStage(deals []dealdomain.Deal) []StageGroup {
	groups := make([]StageGroup, len(dealdomain.Stages))
	index := make(map[dealdomain.Stage]int, len(dealdomain.Stages))
	for i, stage := range dealdomain.Stages {
		groups[i] = StageGroup{Stage: stage, Deals: []dealdomain.Deal{}}
		index[stage] = i
	}

	for _, d := range deals {
		i, ok := index[d.Stage]
		if !ok {
			continue
		}
		groups[i].Deals = append(groups[i].Deals, d)
		groups[i].Totals.add(d)
	}
	return groups
}

func weighted(d dealdomain.Deal) float64 {
	return d.Value * float64(d.Probability) / 100
}
