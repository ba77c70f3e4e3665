package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/udisondev/elemcore/internal/element"
)

var roundtripFlags struct {
	tolerance float64
}

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip [experience...]",
	Short: "Check the experience/power scale inverse and show mastery levels",
	RunE:  runRoundtrip,
}

func init() {
	roundtripCmd.Flags().Float64Var(&roundtripFlags.tolerance, "tolerance", 1e-9, "maximum relative error")
}

func runRoundtrip(cmd *cobra.Command, args []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	curve := store.PowerCurve()

	var samples []float64
	if len(args) == 0 {
		for l := element.Beginner; l <= element.Supreme; l++ {
			samples = append(samples, l.Threshold(), l.Threshold()*1.5+1)
		}
	}
	for _, a := range args {
		var v float64
		if _, err := fmt.Sscan(a, &v); err != nil {
			return fmt.Errorf("experience %q: %w", a, err)
		}
		samples = append(samples, v)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-14s %-16s %-12s %-14s %s\n", "experience", "level", "power", "inverse", "rel_error")
	var worst float64
	for _, exp := range samples {
		power := curve.PowerScale(exp)
		back := curve.Experience(power)
		rel := 0.0
		if exp != 0 {
			rel = math.Abs(back-exp) / exp
		}
		worst = max(worst, rel)
		fmt.Fprintf(out, "%-14.6g %-16s %-12.4f %-14.6g %.2e\n", exp, element.MasteryLevelFor(exp), power, back, rel)
	}

	if worst > roundtripFlags.tolerance {
		return fmt.Errorf("round trip error %.2e exceeds tolerance %.2e", worst, roundtripFlags.tolerance)
	}
	fmt.Fprintf(out, "OK (max relative error %.2e)\n", worst)
	return nil
}
