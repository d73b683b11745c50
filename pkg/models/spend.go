package models

// SpendPeriod defines the time window for a spend limit.
type SpendPeriod string

const (
	SpendDaily   SpendPeriod = "daily"
	SpendMonthly SpendPeriod = "monthly"
)

// SpendPolicy caps estimated USD spend per period, optionally per model.
type SpendPolicy struct {
	Model  string      `json:"model,omitempty" yaml:"model,omitempty"`
	MaxUSD float64     `json:"max_usd" yaml:"max_usd"`
	Period SpendPeriod `json:"period" yaml:"period"`
}

// SpendStatus shows current estimated spend against a policy.
type SpendStatus struct {
	Policy    SpendPolicy `json:"policy"`
	Used      float64     `json:"used"`
	Remaining float64     `json:"remaining"`
}
