package strategy

import "github.com/evoquant/stock-backtester/pkg/data"

// Trigger is the rule-based signal for one bar: whether the entry or exit
// condition holds and how strong the conviction is. Strength is meaningful
// only when Entry or Exit is set.
type Trigger struct {
	Entry    bool
	Exit     bool
	Strength float64
}

// Strategy is a rule-trigger function the simulator consults every bar.
type Strategy interface {
	// GetName returns the name of the strategy
	GetName() string

	// Prepare computes any indicator columns the strategy needs that the
	// table does not already carry. Called once before the simulation loop.
	Prepare(table *data.PriceTable) error

	// Signal evaluates the rule conditions at bar i. Requires i >= 1 so
	// crossings have a previous bar to compare against.
	Signal(table *data.PriceTable, i int) Trigger
}
