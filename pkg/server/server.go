// Package server exposes the dashboard HTTP API: the assistant chat endpoint
// plus the cost, spend, and VTE metric views it reads from.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/clinsight-ai/clinsight/pkg/analytics"
	"github.com/clinsight-ai/clinsight/pkg/budget"
	cachepkg "github.com/clinsight-ai/clinsight/pkg/cache/sqlite"
	"github.com/clinsight-ai/clinsight/pkg/config"
	"github.com/clinsight-ai/clinsight/pkg/costs"
	"github.com/clinsight-ai/clinsight/pkg/models"
	"github.com/clinsight-ai/clinsight/pkg/tracker"
	"github.com/clinsight-ai/clinsight/pkg/vte"
)

// Completer sends a chat completion request upstream.
type Completer interface {
	Complete(ctx context.Context, model string, messages []models.ChatMessage, maxTokens int) (*models.ChatCompletionResponse, error)
}

// Server is the dashboard HTTP API.
type Server struct {
	cfg        *config.Config
	completer  Completer
	calculator *costs.Calculator
	tracker    tracker.Tracker
	cache      *cachepkg.Cache
	enforcer   *budget.Enforcer
	vteStore   *vte.Store
	collector  *analytics.Collector
	tracer     trace.Tracer
	mux        *http.ServeMux
}

// New creates a Server wired with all dependencies. cache and enforcer may
// be nil when those subsystems are disabled.
func New(cfg *config.Config, completer Completer, calc *costs.Calculator, t tracker.Tracker,
	c *cachepkg.Cache, e *budget.Enforcer, store *vte.Store, col *analytics.Collector, tracer trace.Tracer) *Server {
	s := &Server{
		cfg:        cfg,
		completer:  completer,
		calculator: calc,
		tracker:    t,
		cache:      c,
		enforcer:   e,
		vteStore:   store,
		collector:  col,
		tracer:     tracer,
		mux:        http.NewServeMux(),
	}
	s.mux.HandleFunc("/v1/chat", s.handleChat)
	s.mux.HandleFunc("/api/costs/session", s.handleSessionCosts)
	s.mux.HandleFunc("/api/costs/history", s.handleCostHistory)
	s.mux.HandleFunc("/api/costs/clear", s.handleClearCosts)
	s.mux.HandleFunc("/api/spend", s.handleSpend)
	s.mux.HandleFunc("/api/vte/metrics", s.handleVTEMetrics)
	s.mux.HandleFunc("/api/vte/alerts", s.handleVTEAlerts)
	s.mux.HandleFunc("/api/log-chat", s.handleLogChat)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("clinsight dashboard listening on %s", s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

// chatRequest is the dashboard's chat endpoint payload.
type chatRequest struct {
	Message    string `json:"message"`
	Model      string `json:"model,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
	Department string `json:"department,omitempty"`
	MaxTokens  int    `json:"max_tokens,omitempty"`
}

// chatResponse is what the dashboard renders after an exchange.
type chatResponse struct {
	RequestID     string       `json:"request_id"`
	SessionID     string       `json:"session_id"`
	Reply         string       `json:"reply"`
	Model         string       `json:"model"`
	QueryType     string       `json:"query_type"`
	Usage         models.Usage `json:"usage"`
	EstimatedCost float64      `json:"estimated_cost"`
	Disclaimer    string       `json:"disclaimer"`
	CacheHit      bool         `json:"cache_hit"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx, span := s.tracer.Start(r.Context(), "chat")
	defer span.End()

	requestID := uuid.NewString()
	queryType := analytics.ClassifyQuery(req.Message)
	span.SetAttributes(
		attribute.String("chat.request_id", requestID),
		attribute.String("chat.query_type", queryType),
	)

	sessionID, err := s.tracker.ResolveSession(ctx, req.SessionID, s.cfg.Session.GapTimeout)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "resolve session: "+err.Error())
		return
	}

	messages := []models.ChatMessage{{Role: "user", Content: req.Message}}
	cacheKey := cachepkg.Key(req.Model, messages)

	var completion *models.ChatCompletionResponse
	cacheHit := false
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, cacheKey); err != nil {
			log.Printf("cache lookup failed: %v", err)
		} else if ok {
			var c models.ChatCompletionResponse
			if err := json.Unmarshal(cached, &c); err == nil {
				completion = &c
				cacheHit = true
			}
		}
	}

	start := time.Now()
	if completion == nil {
		if s.enforcer != nil {
			if err := s.enforcer.Check(ctx, req.Model, 0); err != nil {
				if errors.Is(err, budget.ErrSpendLimitExceeded) {
					writeError(w, http.StatusTooManyRequests, err.Error())
					return
				}
				writeError(w, http.StatusInternalServerError, "spend check: "+err.Error())
				return
			}
		}

		completion, err = s.completer.Complete(ctx, req.Model, messages, req.MaxTokens)
		if err != nil {
			span.RecordError(err)
			s.emitEvent(models.ChatEvent{
				Timestamp:     time.Now().UTC().Format(time.RFC3339),
				RequestID:     requestID,
				SessionID:     sessionID,
				UserQuery:     req.Message,
				Model:         req.Model,
				QueryType:     queryType,
				ErrorOccurred: true,
				ErrorMessage:  err.Error(),
			})
			writeError(w, http.StatusBadGateway, "completion failed: "+err.Error())
			return
		}

		if s.cache != nil {
			if data, err := json.Marshal(completion); err == nil {
				if err := s.cache.Put(ctx, cacheKey, req.Model, data, 0); err != nil {
					log.Printf("cache store failed: %v", err)
				}
			}
		}
	}
	latency := time.Since(start)

	usage := models.Usage{}
	if completion.Usage != nil {
		usage = *completion.Usage
	}

	rec := s.calculator.Calculate(req.Model, usage.PromptTokens, usage.CompletionTokens)
	span.SetAttributes(
		attribute.Int("chat.total_tokens", rec.TotalTokens),
		attribute.Float64("chat.estimated_cost", rec.TotalEstimatedCost),
		attribute.Bool("chat.cache_hit", cacheHit),
	)

	err = s.tracker.Record(ctx, models.Interaction{
		SessionID:     sessionID,
		Model:         rec.Model,
		Department:    req.Department,
		QueryType:     queryType,
		InputTokens:   rec.InputTokens,
		OutputTokens:  rec.OutputTokens,
		TotalTokens:   rec.TotalTokens,
		LatencyMs:     latency.Milliseconds(),
		EstimatedCost: rec.TotalEstimatedCost,
		CreatedAt:     rec.Timestamp,
	})
	if err != nil {
		log.Printf("record interaction failed: %v", err)
	}

	reply := completion.Content()
	s.emitEvent(models.ChatEvent{
		Timestamp:         rec.Timestamp.Format(time.RFC3339),
		RequestID:         requestID,
		SessionID:         sessionID,
		UserQuery:         req.Message,
		ResponseLength:    len(reply),
		Model:             rec.Model,
		InputTokens:       rec.InputTokens,
		OutputTokens:      rec.OutputTokens,
		TotalTokens:       rec.TotalTokens,
		LatencyMs:         latency.Milliseconds(),
		EstimatedCost:     rec.TotalEstimatedCost,
		DepartmentContext: req.Department,
		QueryType:         queryType,
		CacheHit:          cacheHit,
	})

	writeJSON(w, http.StatusOK, chatResponse{
		RequestID:     requestID,
		SessionID:     sessionID,
		Reply:         reply,
		Model:         rec.Model,
		QueryType:     queryType,
		Usage:         usage,
		EstimatedCost: rec.TotalEstimatedCost,
		Disclaimer:    rec.Source,
		CacheHit:      cacheHit,
	})
}

// emitEvent ships an analytics event without blocking the request path.
func (s *Server) emitEvent(event models.ChatEvent) {
	if s.collector == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.collector.Send(ctx, event); err != nil {
			log.Printf("analytics send failed: %v", err)
		}
	}()
}

func (s *Server) handleSessionCosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.calculator.SessionTotal())
}

func (s *Server) handleCostHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.calculator.History())
}

func (s *Server) handleClearCosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.calculator.ClearSession()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleSpend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.enforcer == nil {
		writeJSON(w, http.StatusOK, []models.SpendStatus{})
		return
	}
	statuses, err := s.enforcer.Status(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleVTEMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.vteStore.Metrics())
}

func (s *Server) handleVTEAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	check := s.vteStore.CheckThresholds(s.cfg.VTE.GoalPercent, s.cfg.VTE.MaxEventRate)
	writeJSON(w, http.StatusOK, check)
}

// handleLogChat accepts a pre-built analytics event from the dashboard
// frontend and forwards it to the collector.
func (s *Server) handleLogChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var event models.ChatEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid event body")
		return
	}
	if event.RequestID == "" {
		event.RequestID = uuid.NewString()
	}
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	s.emitEvent(event)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "request_id": event.RequestID})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"records": s.vteStore.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
