package triage

import "strconv"

// BMI category labels.
const (
	CategoryUnderweight = "Underweight"
	CategoryNormal      = "Normal"
	CategoryOverweight  = "Overweight"
	CategoryObese       = "Obese"
)

// ComputeBMI returns weight (kg) / height (m)², rounded to two decimals.
// Rounding works on the exact binary value, so 2.675 (stored just below
// the half) becomes 2.67. Callers validate that both inputs are positive.
func ComputeBMI(weight, height float64) float64 {
	return roundTo2(weight / (height * height))
}

func roundTo2(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return r
}

// Categorize places a BMI value in its band. Each band includes its lower
// bound: 18.5 is Normal, 25 is Overweight, 30 is Obese.
func Categorize(bmi float64) string {
	switch {
	case bmi < 18.5:
		return CategoryUnderweight
	case bmi < 25:
		return CategoryNormal
	case bmi < 30:
		return CategoryOverweight
	default:
		return CategoryObese
	}
}
