package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/accordo-ai/accordo/core/offer"
	"github.com/accordo-ai/accordo/engine"
	"github.com/accordo-ai/accordo/observability"
	"github.com/accordo-ai/accordo/simulate"
	"github.com/accordo-ai/accordo/store"
)

func runSimulate(args []string) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	var (
		configFile = fs.String("config", "", "Path to config JSON file")
		scenarios  = fs.String("scenarios", "SOFT,HARD,WALK_AWAY", "Comma-separated vendor scenarios")
		runsPer    = fs.Int("runs", 1, "Runs per scenario")
		workers    = fs.Int("workers", 0, "Worker count (0 = auto)")
		target     = fs.Float64("target", 100, "Buyer target unit price")
		opening    = fs.Float64("opening", 120, "Vendor opening price")
		verbose    = fs.Bool("verbose", false, "Enable debug logging")
	)
	fs.Parse(args)

	setupObserver(*verbose)

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	// Self-play always runs in memory with fallback replies; it
	// exercises the decision pipeline, not the completion service.
	cfg.DatabasePath = ""
	cfg.LLM.Provider = "none"

	eng, err := engine.New(*cfg, store.NewMemoryStore(), nil)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	var runs []simulate.Run
	for _, name := range strings.Split(*scenarios, ",") {
		scenario := simulate.Scenario(strings.ToUpper(strings.TrimSpace(name)))
		for i := 0; i < *runsPer; i++ {
			runs = append(runs, simulate.Run{
				Scenario:     scenario,
				OpeningPrice: *opening,
				Terms:        "Net 60",
			})
		}
	}

	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		log.Fatalf("Failed to resolve observer: %v", err)
	}

	ctx := context.Background()
	outcomes, err := simulate.RunBatch(ctx, observer, *workers, runs, func(ctx context.Context, run simulate.Run) (simulate.Outcome, error) {
		return selfPlay(ctx, eng, run, *target)
	})
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcomes); err != nil {
		log.Fatalf("Failed to encode outcomes: %v", err)
	}
}

// selfPlay drives one deal to a terminal state against a simulated
// vendor and summarizes the result.
func selfPlay(ctx context.Context, eng *engine.Engine, run simulate.Run, target float64) (simulate.Outcome, error) {
	deal, err := eng.StartDeal(ctx, offer.Requisition{TargetUnitPrice: target}, store.ModeInsights)
	if err != nil {
		return simulate.Outcome{}, err
	}

	policy := simulate.PolicyFor(run.Scenario, run.OpeningPrice)
	vendor := simulate.NewVendor(policy, run.OpeningPrice, run.Terms)

	outcome := simulate.Outcome{Scenario: run.Scenario}
	// The engine escalates at its own round limit, so this bound only
	// guards against a vendor that never triggers a terminal decision.
	for turn := 0; turn < deal.Config.MaxRounds+2; turn++ {
		o := vendor.NextOffer()
		res, err := eng.ProcessTurn(ctx, deal.ID, vendor.Utterance(o))
		if err != nil {
			return simulate.Outcome{}, fmt.Errorf("turn %d: %w", turn+1, err)
		}

		outcome.Rounds = res.Deal.Round
		outcome.Status = string(res.Deal.Status)
		if res.UsedFallback {
			outcome.Fallbacks++
		}
		if res.Deal.Terminal() {
			outcome.FinalPrice = res.Deal.State.LastVendorOffer.Price()
			break
		}
	}
	outcome.Detected, _ = simulate.DetectScenario(vendor.QuotedPrices())
	return outcome, nil
}
