package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "healthcli/internal/errors"
	"healthcli/internal/health"
)

// AnalysisRequest carries an already-parsed record collection; file
// discovery and parsing happen upstream of this service.
type AnalysisRequest struct {
	Records []health.HealthRecord `json:"records" validate:"required,min=1,dive"`
}

// AnalysisResponse is the per-participant analysis plus the batch-wide
// quality report.
type AnalysisResponse struct {
	Participants map[string]health.ParticipantDocument `json:"participants"`
	Quality      health.QualityReport                  `json:"quality"`
}

// AnalysisHandler handles analysis HTTP requests
type AnalysisHandler struct {
	analyzer *health.Analyzer
	logger   *slog.Logger
	validate *validator.Validate
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analyzer *health.Analyzer, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		logger:   logger.With(slog.String("handler", "analysis")),
		validate: validator.New(),
	}
}

// RegisterRoutes registers the analysis routes
func (h *AnalysisHandler) RegisterRoutes(r chi.Router) {
	r.Post("/analysis", h.Analyze)
}

// Analyze handles POST /api/v1/analysis
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode analysis request",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.logger.WarnContext(ctx, "analysis request validation failed",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.ValidationFailedWithErrors(validationErrors(err)))
		return
	}

	h.logger.InfoContext(ctx, "starting analysis request",
		slog.Int("records", len(req.Records)))

	results, err := h.analyzer.AnalyzeBatch(ctx, req.Records)
	if err != nil {
		// AnalyzeBatch only fails on type-level malformed input; statistical
		// edge cases never surface here.
		h.logger.WarnContext(ctx, "batch analysis rejected input",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	resp := AnalysisResponse{
		Participants: make(map[string]health.ParticipantDocument, len(results)),
		Quality:      health.BuildQualityReport(results),
	}
	for id, analysis := range results {
		resp.Participants[id] = health.BuildDocument(analysis)
	}

	render.JSON(w, r, resp)
}

// validationErrors flattens validator output into field-level details.
func validationErrors(err error) []apierrors.ValidationError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []apierrors.ValidationError{{Field: "request", Message: err.Error()}}
	}
	out := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apierrors.ValidationError{
			Field:   fe.Namespace(),
			Message: fmt.Sprintf("failed %q validation", fe.Tag()),
		})
	}
	return out
}
