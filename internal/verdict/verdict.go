// Package verdict holds the outcome of checking a claim.
package verdict

import (
	"errors"
	"fmt"
	"math"
)

// ErrPercentageRange is returned when a truth percentage falls outside [0, 100].
var ErrPercentageRange = errors.New("truth percentage must lie between 0 and 100 (inclusive)")

const undeterminedJustification = "claim analysis is not available yet"

// Verdict is an immutable judgement about a claim.
type Verdict struct {
	IsTrue          bool    `json:"is_true"`
	TruthPercentage float64 `json:"truth_percentage"`
	Justification   string  `json:"justification"`
}

// New builds a Verdict, rejecting percentages outside [0, 100].
func New(isTrue bool, truthPercentage float64, justification string) (Verdict, error) {
	if math.IsNaN(truthPercentage) || truthPercentage < 0 || truthPercentage > 100 {
		return Verdict{}, fmt.Errorf("%w: got %v", ErrPercentageRange, truthPercentage)
	}
	return Verdict{
		IsTrue:          isTrue,
		TruthPercentage: truthPercentage,
		Justification:   justification,
	}, nil
}

// Undetermined is the verdict reported while no analysis stage exists.
func Undetermined() Verdict {
	return Verdict{Justification: undeterminedJustification}
}

// Likely renders the boolean outcome as a phrase.
func (v Verdict) Likely() string {
	if v.IsTrue {
		return "most likely true"
	}
	return "most likely false"
}
