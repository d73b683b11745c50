package mcp

import (
	"context"
	"encoding/json"
	"time"
)

// Tool argument structs.

type modelArgs struct {
	Model string `json:"model"`
}

type sessionDetailArgs struct {
	SessionID string `json:"session_id"`
}

type dailyCostsArgs struct {
	Date string `json:"date"`
}

// toolHandler is a function that handles a tool call.
type toolHandler func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult

// toolHandlers maps tool names to their handlers.
var toolHandlers = map[string]toolHandler{
	"clinsight_usage":          handleUsage,
	"clinsight_sessions":       handleSessions,
	"clinsight_session_detail": handleSessionDetail,
	"clinsight_daily_costs":    handleDailyCosts,
	"clinsight_spend":          handleSpend,
	"clinsight_cache_stats":    handleCacheStats,
	"clinsight_vte_metrics":    handleVTEMetrics,
	"clinsight_vte_alerts":     handleVTEAlerts,
}

// allTools is the list of tool definitions exposed via tools/list.
var allTools = []ToolDefinition{
	{
		Name:        "clinsight_usage",
		Description: "Show aggregated assistant usage and estimated cost, optionally filtered by model.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"model": map[string]any{
					"type":        "string",
					"description": "Filter by model (optional, omit for all models)",
				},
			},
		},
	},
	{
		Name:        "clinsight_sessions",
		Description: "List all tracked conversation sessions, newest first.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "clinsight_session_detail",
		Description: "Show per-request detail for a specific session.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"session_id"},
			"properties": map[string]any{
				"session_id": map[string]any{
					"type":        "string",
					"description": "The session ID to inspect",
				},
			},
		},
	},
	{
		Name:        "clinsight_daily_costs",
		Description: "Show the per-model cost roll-up for one calendar day.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"date": map[string]any{
					"type":        "string",
					"description": "Day in YYYY-MM-DD format (optional, defaults to today)",
				},
			},
		},
	},
	{
		Name:        "clinsight_spend",
		Description: "Show estimated spend against every configured spend policy.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "clinsight_cache_stats",
		Description: "Show response cache statistics (entries, hits, misses, hit rate).",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "clinsight_vte_metrics",
		Description: "Show VTE prophylaxis and event rates per department.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "clinsight_vte_alerts",
		Description: "Check department metrics against clinical goals and list any alerts.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
}

func textResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

func errorResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: true,
	}
}

func handleUsage(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args modelArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	rows, err := s.tracker.Summary(ctx, args.Model)
	if err != nil {
		return errorResult("Error fetching usage: " + err.Error())
	}
	return textResult(formatSummary(rows))
}

func handleSessions(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	sessions, err := s.tracker.ListSessions(ctx)
	if err != nil {
		return errorResult("Error fetching sessions: " + err.Error())
	}
	return textResult(formatSessions(sessions))
}

func handleSessionDetail(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args sessionDetailArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	if args.SessionID == "" {
		return errorResult("session_id is required")
	}
	interactions, err := s.tracker.SessionInteractions(ctx, args.SessionID)
	if err != nil {
		return errorResult("Error fetching session detail: " + err.Error())
	}
	return textResult(formatInteractions(interactions))
}

func handleDailyCosts(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args dailyCostsArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}

	day := time.Now().UTC()
	if args.Date != "" {
		t, err := time.Parse("2006-01-02", args.Date)
		if err != nil {
			return errorResult("Invalid date (use YYYY-MM-DD): " + err.Error())
		}
		day = t
	}

	summary, err := s.tracker.DailyCosts(ctx, day)
	if err != nil {
		return errorResult("Error fetching daily costs: " + err.Error())
	}
	return textResult(formatDailyCosts(summary))
}

func handleSpend(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	if s.enforcer == nil {
		return textResult("Spend enforcement is not configured.")
	}
	statuses, err := s.enforcer.Status(ctx)
	if err != nil {
		return errorResult("Error fetching spend status: " + err.Error())
	}
	return textResult(formatSpendStatus(statuses))
}

func handleCacheStats(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	if s.cache == nil {
		return textResult("Cache is not configured.")
	}
	stats, err := s.cache.Stats(ctx)
	if err != nil {
		return errorResult("Error fetching cache stats: " + err.Error())
	}
	return textResult(formatCacheStats(stats))
}

func handleVTEMetrics(_ context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	if s.vteStore == nil {
		return textResult("VTE data is not configured.")
	}
	return textResult(formatMetrics(s.vteStore.Metrics()))
}

func handleVTEAlerts(_ context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	if s.vteStore == nil {
		return textResult("VTE data is not configured.")
	}
	check := s.vteStore.CheckThresholds(s.vteCfg.GoalPercent, s.vteCfg.MaxEventRate)
	return textResult(formatThresholdCheck(check))
}
