package models

// BudgetStatus shows model calls used against the process-wide ceiling.
type BudgetStatus struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}
