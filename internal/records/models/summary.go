package models

// ModuleSummary counts one module's records.
type ModuleSummary struct {
	Module  Module `json:"module"`
	Total   int    `json:"total"`
	Pending int    `json:"pending"`
}

// Summary is the dashboard aggregate across every module.
type Summary struct {
	Modules []ModuleSummary `json:"modules"`
	Total   int             `json:"total"`
	Pending int             `json:"pending"`
}

// Add folds one module's counts into the totals.
func (s *Summary) Add(ms ModuleSummary) {
	s.Modules = append(s.Modules, ms)
	s.Total += ms.Total
	s.Pending += ms.Pending
}
