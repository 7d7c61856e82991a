package benchmark

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultIndustry is the fallback key in a peer file.
const DefaultIndustry = "default"

// PeerSets maps industry -> metric -> peer values.
//
//	default:
//	  gross_profitability: [18.5, 24.1, 31.0]
//	software:
//	  gross_profitability: [42.0, 55.3, 61.8]
type PeerSets map[string]map[string][]float64

// LoadPeerSets reads a YAML peer file. Industry keys are matched
// case-insensitively.
func LoadPeerSets(path string) (PeerSets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read peer file %s: %w", path, err)
	}
	return ParsePeerSets(data)
}

// ParsePeerSets decodes YAML peer data.
func ParsePeerSets(data []byte) (PeerSets, error) {
	var raw map[string]map[string][]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse peer sets: %w", err)
	}
	sets := make(PeerSets, len(raw))
	for industry, series := range raw {
		sets[normalizeIndustry(industry)] = series
	}
	return sets, nil
}

// For returns the peer series for an industry, falling back to the default
// entry. Nil when neither exists.
func (p PeerSets) For(industry string) map[string][]float64 {
	if p == nil {
		return nil
	}
	if series, ok := p[normalizeIndustry(industry)]; ok {
		return series
	}
	return p[DefaultIndustry]
}

func normalizeIndustry(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
