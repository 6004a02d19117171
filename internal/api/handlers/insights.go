// Package handlers implements the HTTP handlers of the insights API.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/juanmagp80/Clyra-sub003/internal/api/middleware"
	"github.com/juanmagp80/Clyra-sub003/internal/api/response"
	"github.com/juanmagp80/Clyra-sub003/internal/insights"
	"github.com/juanmagp80/Clyra-sub003/internal/logging"
	"github.com/juanmagp80/Clyra-sub003/internal/notify"
	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

const maxRequestBody = 1 << 20 // 1 MB

// InsightsHandler serves the performance analysis and insight history
// endpoints.
type InsightsHandler struct {
	service       *insights.Service
	reporter      *notify.Reporter
	logger        logging.Logger
	exposeDetails bool
}

// NewInsightsHandler creates the insights handler. When exposeDetails is
// false (production), error responses omit diagnostic details. A nil
// reporter disables the post-analysis summary email.
func NewInsightsHandler(service *insights.Service, reporter *notify.Reporter, logger logging.Logger, exposeDetails bool) *InsightsHandler {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &InsightsHandler{service: service, reporter: reporter, logger: logger, exposeDetails: exposeDetails}
}

// analyzeRequest is the request body for the analysis endpoint. UserID is
// honored only for callers without a session (server-to-server).
type analyzeRequest struct {
	UserID string `json:"user_id"`
	Period string `json:"period"`
}

// analyzeResponse is the wire shape of a successful analysis.
type analyzeResponse struct {
	Success     bool                  `json:"success"`
	Period      types.Period          `json:"period"`
	Analysis    types.InsightPayload  `json:"analysis"`
	Metrics     types.MetricsSnapshot `json:"metrics"`
	Summary     insights.Summary      `json:"summary"`
	Source      string                `json:"source"`
	RecordID    string                `json:"record_id,omitempty"`
	Persisted   bool                  `json:"persisted"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// AnalyzePerformance handles POST /api/ai/analyze-performance.
func (h *InsightsHandler) AnalyzePerformance(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.WriteBadRequest(w, "Invalid request body", h.details(err))
		return
	}

	userID := h.resolveUserID(r, req.UserID)
	if userID == "" {
		response.WriteUnauthorized(w, "Authentication required")
		return
	}

	period := types.ParsePeriod(req.Period)
	result, err := h.service.AnalyzePerformance(r.Context(), userID, period, "api")
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Performance analysis failed",
			"user_id", userID, "period", string(period), "error", err.Error())
		response.WriteInternalError(w, "Could not analyze performance", h.details(err))
		return
	}

	h.emailReport(r, result)

	response.WriteJSON(w, http.StatusOK, analyzeResponse{
		Success:     true,
		Period:      result.Period,
		Analysis:    result.Analysis,
		Metrics:     result.Metrics,
		Summary:     result.Summary,
		Source:      result.Source,
		RecordID:    result.RecordID,
		Persisted:   result.Persisted,
		GeneratedAt: result.GeneratedAt,
	})
}

// listResponse is the wire shape of the insight history endpoint.
type listResponse struct {
	Success  bool                  `json:"success"`
	Insights []types.InsightRecord `json:"insights"`
	Count    int                   `json:"count"`
}

// ListInsights handles GET /api/insights.
func (h *InsightsHandler) ListInsights(w http.ResponseWriter, r *http.Request) {
	userID := h.resolveUserID(r, r.URL.Query().Get("user_id"))
	if userID == "" {
		response.WriteUnauthorized(w, "Authentication required")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			response.WriteBadRequest(w, "limit must be an integer between 1 and 100", "")
			return
		}
		limit = parsed
	}

	records, err := h.service.ListInsights(r.Context(), userID, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list insights",
			"user_id", userID, "error", err.Error())
		response.WriteInternalError(w, "Could not load insights", h.details(err))
		return
	}

	response.WriteJSON(w, http.StatusOK, listResponse{
		Success:  true,
		Insights: records,
		Count:    len(records),
	})
}

// emailReport sends the summary email to the session's address. Delivery
// failures never fail the request; callers without a session email simply
// get no report.
func (h *InsightsHandler) emailReport(r *http.Request, result *insights.AnalysisResult) {
	if h.reporter == nil {
		return
	}
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil || identity.Email == "" {
		return
	}

	err := h.reporter.SendPerformanceReport(r.Context(), identity.Email, notify.ReportData{
		Period:      result.Period,
		Metrics:     result.Metrics,
		Analysis:    &result.Analysis,
		GeneratedAt: result.GeneratedAt,
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to email performance report",
			"user_id", identity.ID, "error", err.Error())
	}
}

// resolveUserID prefers the authenticated session identity; the explicit
// user ID is a trusted-caller fallback for requests without one.
func (h *InsightsHandler) resolveUserID(r *http.Request, explicit string) string {
	if identity := middleware.IdentityFromContext(r.Context()); identity != nil {
		return identity.ID
	}
	return explicit
}

func (h *InsightsHandler) details(err error) string {
	if !h.exposeDetails || err == nil {
		return ""
	}
	return err.Error()
}
