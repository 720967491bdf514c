package simulate

// Concession-rate bands separating soft from hard vendors, as mean
// relative price movement per round.
const (
	softConcessionRate = 0.03
	hardConcessionRate = 0.01
)

// DetectScenario classifies an observed sequence of vendor prices,
// oldest first, and reports a confidence in [0,1]. Too little history
// defaults to SOFT with low confidence rather than guessing hard.
func DetectScenario(prices []float64) (Scenario, float64) {
	if len(prices) < 2 {
		return ScenarioSoft, 0.3
	}

	var total float64
	steps := 0
	conceded := false
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev <= 0 {
			continue
		}
		steps++
		if prices[i] < prev {
			conceded = true
			total += (prev - prices[i]) / prev
		}
	}
	if steps == 0 {
		return ScenarioSoft, 0.3
	}
	if !conceded {
		return ScenarioWalkAway, 0.9
	}

	rate := total / float64(steps)
	switch {
	case rate >= softConcessionRate:
		return ScenarioSoft, 0.8
	case rate <= hardConcessionRate:
		return ScenarioHard, 0.8
	default:
		return ScenarioSoft, 0.5
	}
}
