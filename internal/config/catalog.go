package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/elemcore/internal/element"
)

// CatalogFile is the on-disk layout of the element catalog.
// Omitted tuning sections fall back to element defaults.
type CatalogFile struct {
	OmniID        string              `yaml:"omni_id"`
	Relationships *RelationshipsFile  `yaml:"relationships"`
	Interaction   *InteractionFile    `yaml:"interaction"`
	PowerCurve    *PowerCurveFile     `yaml:"power_curve"`
	Elements      []ElementFile       `yaml:"elements"`
	StatusEffects *StatusDynamicsFile `yaml:"default_status_dynamics"`
}

// RelationshipsFile holds base trigger probabilities and damage multipliers.
type RelationshipsFile struct {
	Generating float64 `yaml:"generating"`
	Overcoming float64 `yaml:"overcoming"`
	Neutral    float64 `yaml:"neutral"`

	GeneratingMultiplier float64 `yaml:"generating_multiplier"`
	OvercomingMultiplier float64 `yaml:"overcoming_multiplier"`
	NeutralMultiplier    float64 `yaml:"neutral_multiplier"`
	SameMultiplier       float64 `yaml:"same_multiplier"`

	MultiplierScaling float64 `yaml:"multiplier_scaling"`
	MinMultiplier     float64 `yaml:"min_multiplier"`
	MaxMultiplier     float64 `yaml:"max_multiplier"`
}

// InteractionFile holds the trigger sigmoid coefficients.
type InteractionFile struct {
	TriggerScale float64 `yaml:"trigger_scale"`
	Steepness    float64 `yaml:"steepness"`
}

// PowerCurveFile holds the experience to power scale coefficients.
type PowerCurveFile struct {
	Scale float64 `yaml:"scale"`
	Pivot float64 `yaml:"pivot"`
}

// ElementFile is one element entry.
type ElementFile struct {
	ID            string             `yaml:"id"`
	Category      string             `yaml:"category"`
	Stats         []string           `yaml:"stats"`
	Base          BaseFile           `yaml:"base"`
	Generates     []string           `yaml:"generates"`
	Overcomes     []string           `yaml:"overcomes"`
	StatusEffects []StatusEffectFile `yaml:"status_effects"`
}

// BaseFile holds element base properties.
type BaseFile struct {
	Damage     float64 `yaml:"damage"`
	Defense    float64 `yaml:"defense"`
	CritRate   float64 `yaml:"crit_rate"`
	CritDamage float64 `yaml:"crit_damage"`
	Accuracy   float64 `yaml:"accuracy"`
}

// StatusEffectFile is one status effect of an element.
type StatusEffectFile struct {
	Kind            string              `yaml:"kind"`
	BaseDuration    float64             `yaml:"base_duration"` // seconds
	BaseIntensity   float64             `yaml:"base_intensity"`
	MaxStacks       int                 `yaml:"max_stacks"`
	Stackable       bool                `yaml:"stackable"`
	RefreshDuration bool                `yaml:"refresh_duration"`
	StackAndRefresh bool                `yaml:"stack_and_refresh"`
	ApplyOnMiss     bool                `yaml:"apply_on_miss"`
	Dynamics        *StatusDynamicsFile `yaml:"dynamics"`
}

// StatusDynamicsFile holds the coupled intensity/refractory coefficients.
type StatusDynamicsFile struct {
	IntensityGain    float64 `yaml:"intensity_gain"`
	IntensityDamping float64 `yaml:"intensity_damping"`
	DecayRate        float64 `yaml:"decay_rate"`
	RefractoryGain   float64 `yaml:"refractory_gain"`
	RefractoryDecay  float64 `yaml:"refractory_decay"`
}

func (f *StatusDynamicsFile) toDynamics(fallback element.StatusDynamics) element.StatusDynamics {
	if f == nil {
		return fallback
	}
	return element.StatusDynamics{
		IntensityGain:    f.IntensityGain,
		IntensityDamping: f.IntensityDamping,
		DecayRate:        f.DecayRate,
		RefractoryGain:   f.RefractoryGain,
		RefractoryDecay:  f.RefractoryDecay,
	}
}

// Catalog converts the file into an element.Catalog. It does not validate;
// element.NewStore does.
func (f CatalogFile) Catalog() element.Catalog {
	cat := element.Catalog{
		OmniID:        f.OmniID,
		Relationships: element.DefaultRelationshipTuning(),
		Interaction:   element.DefaultInteractionDynamics(),
		Power:         element.DefaultPowerCurve(),
	}
	if cat.OmniID == "" {
		cat.OmniID = element.DefaultOmniID
	}
	if r := f.Relationships; r != nil {
		cat.Relationships = element.RelationshipTuning{
			Generating:           r.Generating,
			Overcoming:           r.Overcoming,
			Neutral:              r.Neutral,
			GeneratingMultiplier: r.GeneratingMultiplier,
			OvercomingMultiplier: r.OvercomingMultiplier,
			NeutralMultiplier:    r.NeutralMultiplier,
			SameMultiplier:       r.SameMultiplier,
			MultiplierScaling:    r.MultiplierScaling,
			MinMultiplier:        r.MinMultiplier,
			MaxMultiplier:        r.MaxMultiplier,
		}
	}
	if i := f.Interaction; i != nil {
		cat.Interaction = element.InteractionDynamics{TriggerScale: i.TriggerScale, Steepness: i.Steepness}
	}
	if p := f.PowerCurve; p != nil {
		cat.Power = element.PowerCurve{Scale: p.Scale, Pivot: p.Pivot}
	}

	defaultDyn := f.StatusEffects.toDynamics(element.DefaultStatusDynamics())

	cat.Elements = make([]element.Definition, 0, len(f.Elements))
	for _, e := range f.Elements {
		def := element.Definition{
			ID:       e.ID,
			Category: e.Category,
			Stats:    e.Stats,
			Base: element.BaseProperties{
				Damage:     e.Base.Damage,
				Defense:    e.Base.Defense,
				CritRate:   e.Base.CritRate,
				CritDamage: e.Base.CritDamage,
				Accuracy:   e.Base.Accuracy,
			},
			Generates: e.Generates,
			Overcomes: e.Overcomes,
		}
		for _, s := range e.StatusEffects {
			def.StatusEffects = append(def.StatusEffects, element.StatusEffectDef{
				Kind:            s.Kind,
				BaseDuration:    s.BaseDuration,
				BaseIntensity:   s.BaseIntensity,
				MaxStacks:       s.MaxStacks,
				Stackable:       s.Stackable,
				RefreshDuration: s.RefreshDuration,
				StackAndRefresh: s.StackAndRefresh,
				ApplyOnMiss:     s.ApplyOnMiss,
				Dynamics:        s.Dynamics.toDynamics(defaultDyn),
			})
		}
		cat.Elements = append(cat.Elements, def)
	}
	return cat
}

// ParseCatalog decodes catalog YAML. Unknown fields are rejected.
func ParseCatalog(data []byte) (element.Catalog, error) {
	var f CatalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return element.Catalog{}, err
	}
	return f.Catalog(), nil
}

// LoadCatalog loads the element catalog. Unlike engine config, a missing
// catalog is an error: the engine cannot run without elements.
func LoadCatalog(path string) (element.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return element.Catalog{}, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		return element.Catalog{}, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	return cat, nil
}

// LoadStore loads the catalog at path and builds the element store.
func LoadStore(path string) (*element.Store, error) {
	cat, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	store, err := element.NewStore(cat)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return store, nil
}
