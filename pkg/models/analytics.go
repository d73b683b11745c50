package models

// ChatEvent is the structured analytics record emitted for every assistant
// exchange, shaped for the log collector's custom-log ingestion.
type ChatEvent struct {
	Timestamp         string  `json:"timestamp"`
	RequestID         string  `json:"request_id"`
	SessionID         string  `json:"session_id"`
	UserQuery         string  `json:"user_query"`
	ResponseLength    int     `json:"response_length"`
	Model             string  `json:"model_used"`
	InputTokens       int     `json:"input_tokens"`
	OutputTokens      int     `json:"output_tokens"`
	TotalTokens       int     `json:"total_tokens"`
	LatencyMs         int64   `json:"latency_ms"`
	EstimatedCost     float64 `json:"estimated_cost"`
	DepartmentContext string  `json:"department_context"`
	QueryType         string  `json:"query_type"`
	CacheHit          bool    `json:"cache_hit"`
	ErrorOccurred     bool    `json:"error_occurred"`
	ErrorMessage      string  `json:"error_message,omitempty"`
}
