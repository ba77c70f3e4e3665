package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/udisondev/elemcore/internal/interaction"
	"github.com/udisondev/elemcore/internal/status"
)

var triggerFlags struct {
	kind       string
	attMastery float64
	defMastery float64
	statusProb float64
	statusRes  float64
	miss       bool
	roll       float64
	repeat     int
	tick       float64
	seed       uint64
}

var triggerCmd = &cobra.Command{
	Use:   "trigger <attacker-element> <defender-element>",
	Short: "Attempt status effect triggers and show the effect lifecycle",
	Args:  cobra.ExactArgs(2),
	RunE:  runTrigger,
}

func init() {
	f := triggerCmd.Flags()
	f.StringVar(&triggerFlags.kind, "kind", "", "status effect kind (default: attacker element's first)")
	f.Float64Var(&triggerFlags.attMastery, "att-mastery", 0, "attacker mastery")
	f.Float64Var(&triggerFlags.defMastery, "def-mastery", 0, "defender mastery")
	f.Float64Var(&triggerFlags.statusProb, "status-prob", 0, "attacker status probability")
	f.Float64Var(&triggerFlags.statusRes, "status-res", 0, "defender status resistance")
	f.BoolVar(&triggerFlags.miss, "miss", false, "the carrying attack missed")
	f.Float64Var(&triggerFlags.roll, "roll", -1, "fixed roll in [0,1); negative draws from --seed")
	f.IntVar(&triggerFlags.repeat, "repeat", 1, "number of attempts")
	f.Float64Var(&triggerFlags.tick, "tick", 1, "seconds simulated between attempts")
	f.Uint64Var(&triggerFlags.seed, "seed", 1, "random seed")
}

func runTrigger(cmd *cobra.Command, args []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	engine := status.NewEngine(interaction.NewResolver(store), status.Options{})
	rng := rand.New(rand.NewPCG(triggerFlags.seed, triggerFlags.seed))

	req := status.TriggerRequest{
		AttackerID:        "attacker",
		TargetID:          "target",
		AttackerElement:   args[0],
		DefenderElement:   args[1],
		Kind:              triggerFlags.kind,
		AttackerMastery:   triggerFlags.attMastery,
		DefenderMastery:   triggerFlags.defMastery,
		StatusProbability: triggerFlags.statusProb,
		StatusResistance:  triggerFlags.statusRes,
		Hit:               !triggerFlags.miss,
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Probability: %.4f\n", engine.Probability(req))
	fmt.Fprintf(out, "%-4s %-6s %-7s %-9s %-6s %-10s %-9s %s\n",
		"#", "roll", "applied", "phase", "stacks", "intensity", "duration", "refractory")

	for i := range triggerFlags.repeat {
		req.Roll = triggerFlags.roll
		if req.Roll < 0 {
			req.Roll = rng.Float64()
		}
		inst, applied := engine.ApplyTrigger(req)
		fmt.Fprintf(out, "%-4d %-6.3f %-7t %-9s %-6d %-10.3f %-9.2f %.3f\n",
			i+1, req.Roll, applied, inst.Phase, inst.Stacks, inst.Intensity, inst.Duration,
			engine.Refractory(req.TargetID, inst.Kind))
		engine.Tick(req.TargetID, triggerFlags.tick)
	}
	return nil
}
