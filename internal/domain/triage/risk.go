package triage

// MaxRiskScore caps the additive risk score.
const MaxRiskScore = 100

// Facts is the patient data the risk rules look at.
type Facts struct {
	// BMI is the patient's most recent BMI, nil when none was recorded.
	BMI          *float64
	SymptomCount int
}

// Rule adds Points and appends Label when Applies reports true.
type Rule struct {
	Label   string
	Points  int
	Applies func(Facts) bool
}

// Assessment is the result of running the rules for one patient.
type Assessment struct {
	RiskScore   int      `json:"risk_score"`
	Predictions []string `json:"predictions"`
}

// DefaultRules returns the clinic's risk rules in evaluation order. The two
// BMI rules are independent, so a BMI above 30 triggers both.
func DefaultRules() []Rule {
	return []Rule{
		{
			Label:   "Diabetes (HIGH RISK)",
			Points:  40,
			Applies: func(f Facts) bool { return f.BMI != nil && *f.BMI > 30 },
		},
		{
			Label:   "Heart Disease (MEDIUM RISK)",
			Points:  30,
			Applies: func(f Facts) bool { return f.BMI != nil && *f.BMI > 25 },
		},
		{
			Label:   "Chronic Condition (MONITOR)",
			Points:  20,
			Applies: func(f Facts) bool { return f.SymptomCount > 5 },
		},
	}
}

// Predictor evaluates an ordered rule set.
type Predictor struct {
	rules []Rule
}

// NewPredictor returns a Predictor over rules. With no rules it uses
// DefaultRules.
func NewPredictor(rules ...Rule) *Predictor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Predictor{rules: rules}
}

// Assess sums the points of every applicable rule, clamped to MaxRiskScore,
// and lists their labels in rule order.
func (p *Predictor) Assess(f Facts) Assessment {
	score := 0
	predictions := []string{}
	for _, r := range p.rules {
		if r.Applies == nil || !r.Applies(f) {
			continue
		}
		score += r.Points
		predictions = append(predictions, r.Label)
	}
	if score > MaxRiskScore {
		score = MaxRiskScore
	}
	return Assessment{RiskScore: score, Predictions: predictions}
}
