// Package prediction estimates pickup waiting times. The shipped estimator
// is a placeholder formula; a model-backed implementation can replace it
// behind the same interface.
package prediction

// Estimator returns an advisory waiting time in minutes for an order of
// itemCount resolved lines at the given vendor. Pure and synchronous.
type Estimator interface {
	Estimate(vendorID, itemCount int) int
}

// BaselineEstimator is the fixed formula: Base + PerItem per line.
type BaselineEstimator struct {
	Base    int
	PerItem int
}

// NewBaselineEstimator returns the default 5 + 3*items estimator.
func NewBaselineEstimator() *BaselineEstimator {
	return &BaselineEstimator{Base: 5, PerItem: 3}
}

// Estimate implements Estimator.
func (e *BaselineEstimator) Estimate(_ int, itemCount int) int {
	return e.Base + e.PerItem*itemCount
}
