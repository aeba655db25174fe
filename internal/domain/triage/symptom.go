// Package triage holds the fixed clinical rules used by the records API:
// symptom keyword lookup, BMI categorization, and the additive risk score.
// Everything here is pure and safe for concurrent use.
package triage

import "strings"

// Condition is the outcome of matching free-text symptoms against the
// keyword table.
type Condition struct {
	Name   string `json:"condition"`
	Action string `json:"action"`
}

// symptomRule maps a keyword to the condition it indicates.
type symptomRule struct {
	Keyword   string
	Condition Condition
}

// UnknownCondition is returned when no keyword matches.
var UnknownCondition = Condition{Name: "Unknown", Action: "Consult doctor"}

// symptomTable is ordered: the first keyword contained in the text wins.
// New entries must be placed according to the precedence they should have.
var symptomTable = []symptomRule{
	{Keyword: "fever", Condition: Condition{Name: "Fever", Action: "Rest and drink water"}},
	{Keyword: "cough", Condition: Condition{Name: "Cough", Action: "Cough syrup and fluids"}},
	{Keyword: "headache", Condition: Condition{Name: "Headache", Action: "Rest and pain relief"}},
	{Keyword: "chest pain", Condition: Condition{Name: "Chest Pain", Action: "See doctor immediately"}},
}

// DetectCondition lowercases text and returns the condition of the first
// keyword it contains.
func DetectCondition(text string) Condition {
	lower := strings.ToLower(text)
	for _, rule := range symptomTable {
		if strings.Contains(lower, rule.Keyword) {
			return rule.Condition
		}
	}
	return UnknownCondition
}
