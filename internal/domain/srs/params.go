package srs

import "fmt"

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Core limits
	MinEaseFactor float64

	// Intervals used for the first and second successful repetitions, in days.
	FirstInterval  int
	SecondInterval int

	// RetentionWeight is how strongly the latest grade pulls the retention
	// score (0..1). The score is an exponential moving average of grade*20.
	RetentionWeight float64

	// PriorityIntervalDivisor shortens intervals for interview priority items.
	PriorityIntervalDivisor int

	// MaxInterval caps the interval in days.
	MaxInterval int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	MinEaseFactor           float64
	FirstInterval           int
	SecondInterval          int
	RetentionWeight         float64
	PriorityIntervalDivisor int
	MaxInterval             int
}

// NewDefaultParams creates a new Params instance with the classic SM-2 values.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:           1.3,
		FirstInterval:           1,
		SecondInterval:          6,
		RetentionWeight:         0.3,
		PriorityIntervalDivisor: 2,
		MaxInterval:             36500,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.RetentionWeight > 0 && config.RetentionWeight <= 1 {
		params.RetentionWeight = config.RetentionWeight
	}
	if config.PriorityIntervalDivisor > 0 {
		params.PriorityIntervalDivisor = config.PriorityIntervalDivisor
	}
	if config.MaxInterval > 0 {
		params.MaxInterval = config.MaxInterval
	}

	return params
}

// Validate checks that the parameters produce a usable schedule.
func (p *Params) Validate() error {
	switch {
	case p.MinEaseFactor < 1.0:
		return fmt.Errorf("%w: min ease factor %.2f below 1.0", ErrInvalidParams, p.MinEaseFactor)
	case p.FirstInterval < 1 || p.SecondInterval < p.FirstInterval:
		return fmt.Errorf("%w: intervals %d/%d", ErrInvalidParams, p.FirstInterval, p.SecondInterval)
	case p.RetentionWeight <= 0 || p.RetentionWeight > 1:
		return fmt.Errorf("%w: retention weight %.2f", ErrInvalidParams, p.RetentionWeight)
	case p.PriorityIntervalDivisor < 1:
		return fmt.Errorf("%w: priority divisor %d", ErrInvalidParams, p.PriorityIntervalDivisor)
	case p.MaxInterval < p.SecondInterval:
		return fmt.Errorf("%w: max interval %d below second interval %d", ErrInvalidParams, p.MaxInterval, p.SecondInterval)
	}
	return nil
}
