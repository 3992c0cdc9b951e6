package decision

import (
	"math"

	"github.com/kilianp07/gridpilot/core/dispatch"
	"github.com/kilianp07/gridpilot/core/model"
)

const (
	costScale   = 20000.0
	carbonScale = 5000.0
)

// Score rates a dispatch result for the scenario under policy p. demandMW is
// the effective demand used to express totals per MWh.
func Score(res dispatch.Result, demandMW float64, scn model.ScenarioType, p model.PolicyConstraints) float64 {
	rel := res.Reliability
	normCost := res.CostTotal / costScale
	normCarbon := res.CarbonTonnes / carbonScale

	var score float64
	if scn.IsSevere() {
		score = rel*1000 - normCost*10 - normCarbon*5
	} else {
		score = rel*500 - normCost*50 - normCarbon*20
	}

	var costPerMWh, carbonPerMWh float64
	if demandMW > 0 {
		costPerMWh = res.CostTotal / demandMW
		carbonPerMWh = res.CarbonTonnes / demandMW
	}
	if costPerMWh > p.MaxCostPerMWh {
		score -= 1000 * (costPerMWh / p.MaxCostPerMWh)
	}
	if rel < p.MinReliabilityScore {
		score -= 2000 * (p.MinReliabilityScore - rel)
	}
	if carbonPerMWh > p.MaxCarbonPerMWh {
		score -= 500 * (carbonPerMWh / p.MaxCarbonPerMWh)
	}

	switch p.RiskTolerance {
	case model.RiskAverse:
		if rel < 0.999 {
			score -= 500
		}
	case model.RiskSeeking:
		if costPerMWh < p.MaxCostPerMWh {
			score += 200
		}
	case model.RiskNeutral:
	}
	return score
}

// TradeOffs classifies the cost, reliability and carbon impact of a result.
func TradeOffs(res dispatch.Result) []model.TradeOff {
	out := make([]model.TradeOff, 0, 3)
	switch {
	case res.CostTotal > 20000:
		out = append(out, model.TradeOff{Aspect: "Cost", Impact: "High", Description: "Expensive dispatch due to peak sourcing."})
	case res.CostTotal < 10000:
		out = append(out, model.TradeOff{Aspect: "Cost", Impact: "Low", Description: "Cost-efficient operation."})
	default:
		out = append(out, model.TradeOff{Aspect: "Cost", Impact: "Medium", Description: "Standard operating cost."})
	}
	switch {
	case res.Reliability < 0.99:
		out = append(out, model.TradeOff{Aspect: "Reliability", Impact: "High", Description: "Significant risk of unserved energy."})
	case res.Reliability < 1:
		out = append(out, model.TradeOff{Aspect: "Reliability", Impact: "Medium", Description: "Minor load shedding possible."})
	default:
		out = append(out, model.TradeOff{Aspect: "Reliability", Impact: "Low", Description: "Full demand coverage."})
	}
	if res.CarbonTonnes > 5000 {
		out = append(out, model.TradeOff{Aspect: "Carbon", Impact: "High", Description: "High emissions from fossil/grid Sources."})
	} else {
		out = append(out, model.TradeOff{Aspect: "Carbon", Impact: "Low", Description: "Low emissions profile."})
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func newRank(name, reasoning string, res dispatch.Result) model.DecisionRank {
	risk := "Low"
	if res.Reliability < 0.98 {
		risk = "High"
	}
	return model.DecisionRank{
		OptionName:       name,
		CostImpact:       round(res.CostTotal, 2),
		ReliabilityScore: round(res.Reliability, 4),
		CarbonImpact:     round(res.CarbonTonnes, 2),
		RiskLevel:        risk,
		Reasoning:        reasoning,
		TradeOffs:        TradeOffs(res),
	}
}
