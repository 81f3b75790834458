package sms

import "time"

// Log is one append-only record of an SMS attempt.
type Log struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone_number"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Method    string    `json:"method"`
	Error     string    `json:"error,omitempty"`
	CompanyID *string   `json:"company_id"`
	SentAt    time.Time `json:"sent_at"`
}

// Log statuses.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// CostSettings is the mutable singleton pricing record.
type CostSettings struct {
	CostPerSMS float64   `json:"cost_per_sms"`
	Currency   string    `json:"currency"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DefaultCostSettings applies until a super admin sets a price.
func DefaultCostSettings() CostSettings {
	return CostSettings{CostPerSMS: 0.05, Currency: "EUR"}
}

// Counters is a sent/failed pair used by the per-company and per-day
// breakdowns.
type Counters struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// CompanyBreakdown is one company's share of a month's traffic.
type CompanyBreakdown struct {
	CompanyName string   `json:"company_name"`
	Stats       Counters `json:"stats"`
}

// MonthlyStats is the usage record for one calendar month, upserted on
// every send attempt. CostAtCreation snapshots the price when the record
// was first written; increments always use the live settings, so a
// mid-month price change reprices subsequent messages only.
type MonthlyStats struct {
	ID             string                      `json:"id"`
	Year           int                         `json:"year"`
	Month          int                         `json:"month"`
	TotalSent      int                         `json:"total_sent"`
	Successful     int                         `json:"successful"`
	Failed         int                         `json:"failed"`
	TotalCost      float64                     `json:"total_cost"`
	CostAtCreation float64                     `json:"cost_per_sms_at_creation"`
	Currency       string                      `json:"currency"`
	Companies      map[string]CompanyBreakdown `json:"companies_breakdown"`
	Daily          map[string]Counters         `json:"daily_breakdown"`
	CreatedAt      time.Time                   `json:"created_at"`
}

// SuccessRate returns successful/total as a percentage, 0 for an empty
// month.
func (m MonthlyStats) SuccessRate() float64 {
	if m.TotalSent == 0 {
		return 0
	}
	return float64(m.Successful) / float64(m.TotalSent) * 100
}
