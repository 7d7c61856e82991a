package scoring

import (
	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/services/metrics"
)

// NeutralScore is the quality score before any adjustment.
const NeutralScore = 50.0

// QualityScore adjusts the neutral score by the Piotroski, Altman, Beneish
// and FCF conversion results, clamped to [0, 100]. Absent slots contribute
// nothing.
func QualityScore(a *models.ComprehensiveAnalysis) float64 {
	score := NeutralScore
	if a == nil {
		return score
	}

	if a.Piotroski != nil {
		score += a.Piotroski.Value/9*15 - 7.5
	}

	if a.AltmanZ != nil {
		z := a.AltmanZ.Value
		switch {
		case z > 3:
			score += 10
		case z > 2:
			score += 5
		case z < 1.8:
			score -= 10
		}
	}

	if a.BeneishM != nil {
		m := a.BeneishM.Value
		switch {
		case m < -2.22:
			score += 10
		case m > -1.78:
			score -= 15
		}
	}

	if a.FCFConversion != nil {
		fcf := a.FCFConversion.Value
		switch {
		case fcf >= 100:
			score += 15
		case fcf >= 80:
			score += 10
		case fcf < 50:
			score -= 10
		}
	}

	return metrics.ClampFloat64(score, 0, 100)
}
