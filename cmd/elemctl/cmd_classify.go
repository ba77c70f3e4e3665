package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/udisondev/elemcore/internal/interaction"
)

var classifyFlags struct {
	attMastery float64
	defMastery float64
}

var classifyCmd = &cobra.Command{
	Use:   "classify <attacker-element> <defender-element>",
	Short: "Classify an element pair and show its trigger probability",
	Args:  cobra.ExactArgs(2),
	RunE:  runClassify,
}

func init() {
	f := classifyCmd.Flags()
	f.Float64Var(&classifyFlags.attMastery, "att-mastery", 0, "attacker mastery")
	f.Float64Var(&classifyFlags.defMastery, "def-mastery", 0, "defender mastery")
}

func runClassify(cmd *cobra.Command, args []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	r := interaction.NewResolver(store)

	rel, err := store.Relationship(args[0], args[1])
	if err != nil {
		return err
	}
	_, p := r.Resolve(args[0], args[1], classifyFlags.attMastery, classifyFlags.defMastery)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Relationship: %s\n", rel)
	fmt.Fprintf(out, "Base:         %.4f\n", store.BaseTrigger(rel))
	fmt.Fprintf(out, "Delta:        %g\n", interaction.MasteryDelta(classifyFlags.attMastery, classifyFlags.defMastery))
	fmt.Fprintf(out, "Probability:  %.4f\n", p)
	fmt.Fprintf(out, "Damage:       x%.2f\n", r.ScaledDamageMultiplier(rel, classifyFlags.attMastery, classifyFlags.defMastery))
	return nil
}
