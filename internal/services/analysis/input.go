package analysis

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/finsight/internal/services/benchmark"
	"github.com/ternarybob/finsight/internal/services/fundamentals"
)

// DefaultWACC is used for EVA when the input leaves WACC at zero.
const DefaultWACC = 0.10

// Input is everything one analysis run needs: the raw provider payload plus
// run parameters.
type Input struct {
	fundamentals.DatasetInput

	// WACC is the cost of capital for EVA. Zero selects DefaultWACC.
	WACC float64 `json:"wacc,omitempty" validate:"gte=0,lte=1"`

	// Peers are optional industry peer sets used for benchmarking.
	Peers benchmark.PeerSets `json:"peers,omitempty"`
}

// Validate checks the input using go-playground/validator.
func (in *Input) Validate() error {
	validate := validator.New()
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("invalid analysis input: %w", err)
	}
	return nil
}

func (in *Input) wacc() float64 {
	if in.WACC == 0 {
		return DefaultWACC
	}
	return in.WACC
}

func (in *Input) ticker() string {
	return strings.TrimSpace(in.Ticker)
}
