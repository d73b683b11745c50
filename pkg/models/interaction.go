package models

import "time"

// Interaction tracks one assistant exchange: what was asked, which model
// answered, and what it cost.
type Interaction struct {
	ID            int64     `json:"id"`
	SessionID     string    `json:"session_id,omitempty"`
	Model         string    `json:"model"`
	Department    string    `json:"department,omitempty"`
	QueryType     string    `json:"query_type"`
	InputTokens   int       `json:"input_tokens"`
	OutputTokens  int       `json:"output_tokens"`
	TotalTokens   int       `json:"total_tokens"`
	LatencyMs     int64     `json:"latency_ms"`
	EstimatedCost float64   `json:"estimated_cost"`
	CreatedAt     time.Time `json:"created_at"`
}

// Session groups a user's consecutive interactions into one conversation.
type Session struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	LastActivity  time.Time `json:"last_activity"`
	RequestCount  int       `json:"request_count"`
	TotalTokens   int       `json:"total_tokens"`
	EstimatedCost float64   `json:"estimated_cost"`
}

// InteractionSummary aggregates interactions per model.
type InteractionSummary struct {
	Model         string  `json:"model"`
	RequestCount  int     `json:"request_count"`
	InputTokens   int     `json:"input_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	TotalTokens   int     `json:"total_tokens"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// DailyCostSummary is the per-day roll-up the cost aggregator job writes for
// the dashboard.
type DailyCostSummary struct {
	Date          string               `json:"date"`
	Requests      int                  `json:"requests"`
	TokensUsed    int                  `json:"tokens_used"`
	EstimatedCost float64              `json:"estimated_cost"`
	ByModel       []InteractionSummary `json:"by_model"`
}
