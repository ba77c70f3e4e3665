package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/udisondev/elemcore/internal/config"
	"github.com/udisondev/elemcore/internal/element"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the engine config, element catalog and bonus tables",
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, _ []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	if _, err := cfg.Aggregation.Rules(); err != nil {
		return fmt.Errorf("aggregation config: %w", err)
	}
	tables, err := config.LoadTables(cfg.TablesFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Catalog: %s (%d elements, omni %q)\n", cfg.ElementsFile, store.Len(), store.OmniID())
	for _, id := range store.Elements() {
		def, _ := store.Definition(id)
		var effects []string
		for _, eff := range def.StatusEffects {
			effects = append(effects, eff.Kind)
		}
		fmt.Fprintf(out, "  %-10s generates=%v overcomes=%v effects=[%s]\n",
			id, def.Generates, def.Overcomes, strings.Join(effects, ","))
	}

	dyn := store.Dynamics()
	fmt.Fprintf(out, "Interaction: trigger_scale=%g steepness=%g\n", dyn.TriggerScale, dyn.Steepness)
	for _, rel := range []element.Relationship{element.Generating, element.Overcoming, element.Neutral} {
		fmt.Fprintf(out, "  %-10s base=%.3f damage_x%.2f\n", rel, store.BaseTrigger(rel), store.DamageMultiplier(rel))
	}

	fmt.Fprintf(out, "Tables: %s (%d)\n", cfg.TablesFile, len(tables))
	for _, t := range tables {
		fmt.Fprintf(out, "  %-10s priority=%d actors=%d\n", t.SystemID, t.Priority, len(t.Actors))
	}
	fmt.Fprintln(out, "OK")
	return nil
}
