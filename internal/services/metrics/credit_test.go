package metrics

import (
	"testing"

	"github.com/ternarybob/finsight/internal/models"
)

func TestCreditRisk(t *testing.T) {
	tests := []struct {
		name       string
		input      CreditInput
		wantScore  float64
		wantInterp string
		wantRunway bool
	}{
		{
			name: "strong profile",
			input: CreditInput{
				EBITDA: 200, InterestExpense: 20, TotalDebt: 300, Cash: 100,
				CurrentLiabilities: 150, FreeCashFlow: 50, Capex: 40, ShortTermDebt: 30,
			},
			wantScore:  4,
			wantInterp: "Strong Credit Profile - Low risk of default",
		},
		{
			name: "burning cash",
			input: CreditInput{
				EBITDA: 10, InterestExpense: 20, TotalDebt: 500, Cash: 10,
				CurrentLiabilities: 100, FreeCashFlow: -60, Capex: 5, ShortTermDebt: 50,
			},
			wantScore:  0,
			wantInterp: "Weak Credit Profile - Elevated default risk",
			wantRunway: true,
		},
		{
			name:       "no operations",
			input:      CreditInput{},
			wantScore:  1,
			wantInterp: "Weak Credit Profile - Elevated default risk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CreditRisk(tt.input)
			if result.Value != tt.wantScore {
				t.Errorf("CreditRisk() score = %v, want %v", result.Value, tt.wantScore)
			}
			if result.Interpretation != tt.wantInterp {
				t.Errorf("CreditRisk() interpretation = %q, want %q", result.Interpretation, tt.wantInterp)
			}
			_, hasRunway := result.Components["runway_months"]
			if hasRunway != tt.wantRunway {
				t.Errorf("CreditRisk() runway present = %v, want %v", hasRunway, tt.wantRunway)
			}
			if !tt.wantRunway && result.Label("runway") != RunwayNotApplicable {
				t.Errorf("CreditRisk() runway label = %q", result.Label("runway"))
			}
		})
	}
}

func TestCreditRiskDefaultsAndFlags(t *testing.T) {
	strong := CreditRisk(CreditInput{EBITDA: 200, InterestExpense: 20, TotalDebt: 300, Cash: 100, CurrentLiabilities: 150, FreeCashFlow: 50, Capex: 40, ShortTermDebt: 30})
	if strong.Components["interest_coverage"] != 10 || strong.Components["dscr_proxy"] != 3.2 || strong.Components["net_debt_to_ebitda"] != 1 {
		t.Errorf("components = %v", strong.Components)
	}
	if !hasFlag(strong, models.SeverityPositive, "Strong credit profile") {
		t.Errorf("expected positive flag, got %v", strong.Flags)
	}

	debtFree := CreditRisk(CreditInput{EBITDA: 50})
	if debtFree.Components["interest_coverage"] != 100 || debtFree.Components["dscr_proxy"] != 100 {
		t.Errorf("debt-free coverage defaults = %v", debtFree.Components)
	}

	lossMaking := CreditRisk(CreditInput{EBITDA: -10, TotalDebt: 100})
	if lossMaking.Components["net_debt_to_ebitda"] != 100 {
		t.Errorf("net_debt_to_ebitda = %v, want 100", lossMaking.Components["net_debt_to_ebitda"])
	}

	burning := CreditRisk(CreditInput{EBITDA: 10, InterestExpense: 20, TotalDebt: 500, Cash: 10, CurrentLiabilities: 100, FreeCashFlow: -60, Capex: 5, ShortTermDebt: 50})
	if burning.Components["runway_months"] != 2 {
		t.Errorf("runway_months = %v, want 2", burning.Components["runway_months"])
	}
	if !hasFlag(burning, models.SeverityCritical, "Less than 2.0 months of cash runway") {
		t.Errorf("expected runway flag, got %v", burning.Flags)
	}
	for _, want := range []string{"Interest Coverage low", "DSCR < 1.0", "High Leverage"} {
		if !hasFlag(burning, models.SeverityWarning, want) {
			t.Errorf("expected %q warning, got %v", want, burning.Flags)
		}
	}
}
