// Package simulate models vendor behavior for self-play: canonical
// vendor policies, a deterministic offer generator, scenario detection
// from observed price movement, and a parallel batch runner.
package simulate

// Scenario is the qualitative vendor behavior label.
type Scenario string

const (
	ScenarioHard     Scenario = "HARD"
	ScenarioSoft     Scenario = "SOFT"
	ScenarioWalkAway Scenario = "WALK_AWAY"
)

// VendorPolicy drives the simulated vendor: where its floor is, how
// much it concedes per round, and when it stops moving.
type VendorPolicy struct {
	MinPrice       float64
	ConcessionStep float64
	MaxRounds      int
	Behavior       Scenario
}

// PolicyFor returns the canonical preset for a scenario, scaled to the
// vendor's opening price. A hard vendor barely moves off a high floor;
// a soft vendor concedes steadily; a walk-away vendor never moves.
func PolicyFor(scenario Scenario, openingPrice float64) VendorPolicy {
	switch scenario {
	case ScenarioHard:
		return VendorPolicy{
			MinPrice:       openingPrice * 0.95,
			ConcessionStep: openingPrice * 0.005,
			MaxRounds:      8,
			Behavior:       ScenarioHard,
		}
	case ScenarioWalkAway:
		return VendorPolicy{
			MinPrice:       openingPrice,
			ConcessionStep: 0,
			MaxRounds:      3,
			Behavior:       ScenarioWalkAway,
		}
	default:
		return VendorPolicy{
			MinPrice:       openingPrice * 0.80,
			ConcessionStep: openingPrice * 0.04,
			MaxRounds:      10,
			Behavior:       ScenarioSoft,
		}
	}
}
