package cloudcost

import "errors"

// Explicit-failure class errors. Unlike the growth analyzer, the cost
// engine fails loudly: a wrong dollar figure is worse than no figure.
var (
	// ErrInvalidWorkload marks numerically invalid workload parameters.
	ErrInvalidWorkload = errors.New("invalid workload")

	// ErrNoSuitableInstance means the catalog has no instance matching the
	// required optimization flag and performance data.
	ErrNoSuitableInstance = errors.New("no suitable instance in catalog")

	// ErrNoSpotPricing means spot pricing was requested but the chosen
	// instance does not offer it. Retrying with on-demand pricing is the
	// usual recovery.
	ErrNoSpotPricing = errors.New("spot pricing not available")
)
