package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/udisondev/elemcore/internal/combat"
	"github.com/udisondev/elemcore/internal/contrib"
	"github.com/udisondev/elemcore/internal/contributor"
)

var simulateFlags struct {
	attacker    string
	defender    string
	attElem     string
	defElem     string
	attMastery  float64
	defMastery  float64
	rounds      int
	interval    float64
	seed        uint64
	strength    float64
	agility     float64
	showEffects bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate a duel between two actors and summarize the outcomes",
	RunE:  runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simulateFlags.attacker, "attacker", "demo-fire", "attacker actor id")
	f.StringVar(&simulateFlags.defender, "defender", "demo-metal", "defender actor id")
	f.StringVar(&simulateFlags.attElem, "att-elem", "fire", "attacker element")
	f.StringVar(&simulateFlags.defElem, "def-elem", "metal", "defender element")
	f.Float64Var(&simulateFlags.attMastery, "att-exp", 1e6, "attacker experience in its element")
	f.Float64Var(&simulateFlags.defMastery, "def-exp", 1e4, "defender experience in its element")
	f.IntVar(&simulateFlags.rounds, "rounds", 100, "number of attacks")
	f.Float64Var(&simulateFlags.interval, "interval", 1, "seconds between attacks")
	f.Uint64Var(&simulateFlags.seed, "seed", 1, "random seed")
	f.Float64Var(&simulateFlags.strength, "strength", 30, "primary strength of both actors")
	f.Float64Var(&simulateFlags.agility, "agility", 20, "primary agility of both actors")
	f.BoolVar(&simulateFlags.showEffects, "effects", false, "print active effects after the duel")
}

type simulationSummary struct {
	hits, crits, interactions, statuses int
	damage, maxHit                      float64
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	f := simulateFlags

	mem := contrib.NewMemoryMasteryStore()
	mem.Set(f.attacker, f.attElem, f.attMastery)
	mem.Set(f.defender, f.defElem, f.defMastery)

	e, cleanup, err := buildEngine(ctx, mem)
	if err != nil {
		return err
	}
	defer cleanup()

	primary := map[string]float64{"strength": f.strength, "agility": f.agility}
	att := contributor.StaticActor{ID: f.attacker, Stats: contributor.NewPrimaryStats(primary)}
	def := contributor.StaticActor{ID: f.defender, Stats: contributor.NewPrimaryStats(primary)}

	rng := rand.New(rand.NewPCG(f.seed, f.seed^0x9e3779b97f4a7c15))
	var s simulationSummary
	for range f.rounds {
		rolls := combat.Rolls{Hit: rng.Float64(), Crit: rng.Float64(), Interaction: rng.Float64(), Status: rng.Float64()}
		out, err := e.ResolveAttack(ctx, att, def, f.attElem, f.defElem, rolls)
		if err != nil {
			return err
		}
		if out.Hit {
			s.hits++
		}
		if out.Crit {
			s.crits++
		}
		if out.InteractionTriggered {
			s.interactions++
		}
		if out.StatusApplied {
			s.statuses++
		}
		s.damage += out.Damage
		s.maxHit = max(s.maxHit, out.Damage)

		e.Statuses().Tick(f.defender, f.interval)
	}

	attStats, err := e.GetElementStats(ctx, att, f.attElem)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Duel: %s (%s) -> %s (%s), %d rounds\n", f.attacker, f.attElem, f.defender, f.defElem, f.rounds)
	fmt.Fprintf(out, "Attacker stats (%s):\n", f.attElem)
	for _, name := range attStats.Stats() {
		v := attStats.Get(name)
		fmt.Fprintf(out, "  %-28s omni=%-10.4g element=%-10.4g total=%.4g\n", name, v.Omni, v.Element, v.Total())
	}
	n := float64(max(f.rounds, 1))
	fmt.Fprintf(out, "Hits:         %d (%.1f%%)\n", s.hits, 100*float64(s.hits)/n)
	fmt.Fprintf(out, "Crits:        %d\n", s.crits)
	fmt.Fprintf(out, "Interactions: %d\n", s.interactions)
	fmt.Fprintf(out, "Statuses:     %d\n", s.statuses)
	fmt.Fprintf(out, "Damage:       total=%.1f avg=%.2f max=%.2f\n", s.damage, s.damage/n, s.maxHit)

	cs := e.CacheStats()
	fmt.Fprintf(out, "Cache:        hits=%d misses=%d entries=%d\n", cs.Hits, cs.Misses, cs.Len)

	if f.showEffects {
		for _, inst := range e.ActiveEffects(f.defender) {
			fmt.Fprintf(out, "Effect %-10s phase=%s stacks=%d intensity=%.3f duration=%.2f\n",
				inst.Kind, inst.Phase, inst.Stacks, inst.Intensity, inst.Duration)
		}
	}
	return nil
}
