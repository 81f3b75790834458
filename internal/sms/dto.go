package sms

// UpdateCostSettingsRequest sets the global per-message price.
type UpdateCostSettingsRequest struct {
	CostPerSMS *float64 `json:"cost_per_sms" validate:"required"`
	Currency   string   `json:"currency" validate:"max=10"`
}

// YearToDate aggregates the current year's traffic.
type YearToDate struct {
	TotalSMS    int     `json:"total_sms"`
	TotalCost   float64 `json:"total_cost"`
	SuccessRate float64 `json:"success_rate"`
}

// StatsResponse is the super-admin accounting dashboard payload.
type StatsResponse struct {
	CurrentMonth       MonthlyStats                `json:"current_month"`
	MonthlyHistory     []MonthlyStats              `json:"monthly_history"`
	YearToDate         YearToDate                  `json:"year_to_date"`
	CostSettings       CostSettings                `json:"cost_settings"`
	CompaniesBreakdown map[string]CompanyBreakdown `json:"companies_breakdown"`
}

// MonthlyReportResponse is the drill-down for one month.
type MonthlyReportResponse struct {
	MonthlyStats   MonthlyStats        `json:"monthly_stats"`
	DailyBreakdown map[string]Counters `json:"daily_breakdown"`
	Period         string              `json:"period"`
}
