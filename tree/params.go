package tree

import "fmt"

// SplitSearch selects how threshold nodes look for split rules.
type SplitSearch uint

const (
	// IterativeScan evaluates evenly spaced thresholds over each feature's range.
	IterativeScan SplitSearch = iota
	// RandomScan evaluates uniformly drawn thresholds over each feature's range.
	RandomScan
)

func (ss SplitSearch) String() string {
	switch ss {
	case IterativeScan:
		return "iterative"
	case RandomScan:
		return "random"
	}
	return fmt.Sprintf("SplitSearch(%d)", uint(ss))
}

// ParseSplitSearch takes the name of a split search and returns it.
func ParseSplitSearch(name string) (SplitSearch, error) {
	switch name {
	case "iterative":
		return IterativeScan, nil
	case "random":
		return RandomScan, nil
	}
	return 0, fmt.Errorf("unknown split search %q, valid ones are iterative and random", name)
}

// Params holds the hyperparameters used to grow a tree.
type Params struct {
	// MinSamplesPerNode is the minimum number of samples a node needs
	// to be split.
	MinSamplesPerNode uint
	// MaxDepth is the depth at which nodes stop being split.
	MaxDepth uint
	// NumSplittingSteps is the number of thresholds evaluated per feature
	// by threshold scans, and the number of features sampled by cluster
	// searches.
	NumSplittingSteps uint
	// RemoveFeatureAfterSplit disallows reusing a feature below the node
	// that splits on it.
	RemoveFeatureAfterSplit bool
	SplitSearch             SplitSearch
	// MinRMSErrorPerNode stops splitting cluster and regression nodes
	// whose best split has an error at or below it.
	MinRMSErrorPerNode float64
}

// DefaultParams returns the hyperparameters used unless told otherwise.
func DefaultParams() Params {
	return Params{
		MinSamplesPerNode:  5,
		MaxDepth:           10,
		NumSplittingSteps:  100,
		SplitSearch:        IterativeScan,
		MinRMSErrorPerNode: 0.01,
	}
}

// Validate returns an error if the parameters cannot be used to grow a tree.
func (p Params) Validate() error {
	if p.NumSplittingSteps == 0 {
		return fmt.Errorf("number of splitting steps must be positive")
	}
	if p.SplitSearch != IterativeScan && p.SplitSearch != RandomScan {
		return fmt.Errorf("unknown split search %v", p.SplitSearch)
	}
	if p.MinRMSErrorPerNode < 0 {
		return fmt.Errorf("minimum RMS error per node cannot be negative")
	}
	return nil
}
