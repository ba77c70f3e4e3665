// Package dynamics holds the pure numeric kernel of elemental combat:
// the trigger sigmoid, intensity integration and refractory decay.
//
// All functions are lock-free and allocation-free. Non-finite inputs are
// replaced by neutral values instead of propagating NaN into combat state.
package dynamics

import "math"

// MinScale replaces zero or non-finite scale parameters.
const MinScale = 1e-9

// Epsilon is the intensity below which a decaying effect is considered gone.
const Epsilon = 1e-6

// sigmoidLimit keeps Sigmoid strictly inside (0,1). The float64 logistic
// saturates to exactly 1 around x≈37.
const sigmoidLimit = 1e-15

// Sigmoid returns the logistic function 1/(1+e^-x).
// The result is strictly inside (0,1) and monotonic in x.
func Sigmoid(x float64) float64 {
	if math.IsNaN(x) {
		x = 0
	}

	var s float64
	if x >= 0 {
		s = 1 / (1 + math.Exp(-x))
	} else {
		// e^x / (1+e^x) avoids overflow of e^-x for large negative x.
		e := math.Exp(x)
		s = e / (1 + e)
	}

	switch {
	case s < sigmoidLimit:
		return sigmoidLimit
	case s > 1-sigmoidLimit:
		return 1 - sigmoidLimit
	}
	return s
}

// TriggerProbability maps a base trigger and a stat delta to a probability:
//
//	p = clamp(base + Sigmoid(delta/scale * steepness), 0, 1)
//
// The clamp is the only hard bound.
func TriggerProbability(base, delta, scale, steepness float64) float64 {
	base = Finite(base)
	delta = Finite(delta)
	scale = Scale(scale)
	if math.IsNaN(steepness) || math.IsInf(steepness, 0) || steepness == 0 {
		steepness = 1
	}
	return Clamp01(base + Sigmoid(delta/scale*steepness))
}

// EvolveIntensity advances intensity by one explicit Euler step of
// dI/dt = gain*delta - damping*I. Floored at 0, no ceiling.
func EvolveIntensity(current, delta, gain, damping, dt float64) float64 {
	current = Finite(current)
	if current < 0 {
		current = 0
	}
	dt = Finite(dt)
	if dt <= 0 {
		return current
	}
	next := current + (Finite(gain)*Finite(delta)-Finite(damping)*current)*dt
	if next < 0 || math.IsNaN(next) {
		return 0
	}
	if math.IsInf(next, 1) {
		return math.MaxFloat64
	}
	return next
}

// EvolveRefractory decays the refractory counter: current*e^(-decay*dt).
func EvolveRefractory(current, decay, dt float64) float64 {
	current = Finite(current)
	if current <= 0 {
		return 0
	}
	dt = Finite(dt)
	if dt <= 0 {
		return current
	}
	decay = Finite(decay)
	if decay < 0 {
		decay = 0
	}
	return current * math.Exp(-decay*dt)
}

// SuppressByRefractory lowers a trigger probability while the target is
// refractory: p / (1 + refractory).
func SuppressByRefractory(p, refractory float64) float64 {
	p = Clamp01(p)
	refractory = Finite(refractory)
	if refractory <= 0 {
		return p
	}
	return p / (1 + refractory)
}

// Decay returns v*e^(-rate*dt), floored at 0.
func Decay(v, rate, dt float64) float64 {
	return EvolveRefractory(v, rate, dt)
}

// Clamp01 clamps p into [0,1]. NaN maps to 0.
func Clamp01(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Finite returns v, or 0 if v is NaN or infinite.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Scale returns s if it is a usable positive scale, MinScale otherwise.
func Scale(s float64) float64 {
	if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
		return MinScale
	}
	return s
}
