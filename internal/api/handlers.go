package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/moolen/casa/internal/analysis"
	"github.com/moolen/casa/internal/config"
	"github.com/moolen/casa/internal/logging"
	"github.com/moolen/casa/internal/period"
	"github.com/moolen/casa/internal/records"
	"github.com/moolen/casa/internal/service"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxBodyBytes caps configuration update payloads
const maxBodyBytes = 1 << 20

// AnalysisService is the subset of service.AnalysisService the handlers need
type AnalysisService interface {
	Status() service.Status
	Periods() ([]period.Period, error)
	Config() analysis.Config
	Settings() *config.Settings
	UpdateConfig(ctx context.Context, o analysis.Overrides) (analysis.Config, error)
	Reload(ctx context.Context) error
	Analyze(ctx context.Context, label string) (*analysis.PeriodResult, error)
	Historic(ctx context.Context, labels []string) (*service.HistoricReport, error)
	Systemic(ctx context.Context, labels []string) (*service.SystemicReport, error)
}

// Handlers serves the /v1 analysis endpoints
type Handlers struct {
	svc    AnalysisService
	logger *logging.Logger
	tracer trace.Tracer
}

// NewHandlers creates the analysis handlers
func NewHandlers(svc AnalysisService, logger *logging.Logger, tracer trace.Tracer) *Handlers {
	return &Handlers{svc: svc, logger: logger, tracer: tracer}
}

// PeriodInfo describes one available reporting period
type PeriodInfo struct {
	Label       string    `json:"label"`
	DisplayName string    `json:"displayName"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// ConfigResponse is the body of GET and POST /v1/config
type ConfigResponse struct {
	Config       analysis.Config     `json:"config"`
	ExcludeCodes []string            `json:"excludeCodes"`
	Partners     map[string][]string `json:"partners,omitempty"`
}

// Status handles GET /v1/status
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	_ = WriteSuccess(w, h.svc.Status())
}

// Periods handles GET /v1/periods
func (h *Handlers) Periods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.svc.Periods()
	if err != nil {
		h.respondWithError(r.Context(), w, err)
		return
	}
	out := make([]PeriodInfo, 0, len(periods))
	for _, p := range periods {
		out = append(out, PeriodInfo{Label: p.Label(), DisplayName: p.DisplayName(), Start: p.Start, End: p.End})
	}
	_ = WriteSuccess(w, map[string]interface{}{"periods": out})
}

// Analyze handles GET /v1/analyze/{period}
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	label := r.PathValue("period")
	ctx, span := h.tracer.Start(r.Context(), "api.analyze", trace.WithAttributes(attribute.String("period", label)))
	defer span.End()

	res, err := h.svc.Analyze(ctx, label)
	if err != nil {
		span.RecordError(err)
		h.respondWithError(ctx, w, err)
		return
	}
	_ = WriteSuccess(w, res)
}

// Historic handles GET /v1/historic?periods=a,b
func (h *Handlers) Historic(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "api.historic")
	defer span.End()

	report, err := h.svc.Historic(ctx, periodsParam(r))
	if err != nil {
		span.RecordError(err)
		h.respondWithError(ctx, w, err)
		return
	}
	_ = WriteSuccess(w, report)
}

// Systemic handles GET /v1/systemic?periods=a,b
func (h *Handlers) Systemic(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "api.systemic")
	defer span.End()

	report, err := h.svc.Systemic(ctx, periodsParam(r))
	if err != nil {
		span.RecordError(err)
		h.respondWithError(ctx, w, err)
		return
	}
	_ = WriteSuccess(w, report)
}

// GetConfig handles GET /v1/config
func (h *Handlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	_ = WriteSuccess(w, h.configResponse(h.svc.Config()))
}

// UpdateConfig handles POST /v1/config with a partial analysis configuration body
func (h *Handlers) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var overrides analysis.Overrides
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&overrides); err != nil {
		if errors.Is(err, io.EOF) {
			h.respondWithError(ctx, w, NewInvalidRequestError("request body is empty"))
			return
		}
		h.respondWithError(ctx, w, NewInvalidRequestError("invalid JSON body: %v", err))
		return
	}

	cfg, err := h.svc.UpdateConfig(ctx, overrides)
	if err != nil {
		h.respondWithError(ctx, w, err)
		return
	}
	_ = WriteSuccess(w, h.configResponse(cfg))
}

// Reload handles POST /v1/datasets/reload
func (h *Handlers) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reload(r.Context()); err != nil {
		h.respondWithError(r.Context(), w, err)
		return
	}
	_ = WriteSuccess(w, h.svc.Status())
}

func (h *Handlers) configResponse(cfg analysis.Config) ConfigResponse {
	settings := h.svc.Settings()
	codes := settings.Exclusions()
	if codes == nil {
		codes = records.DefaultExcludeCodes()
	}
	return ConfigResponse{Config: cfg, ExcludeCodes: codes, Partners: settings.PartnerMap()}
}

func (h *Handlers) respondWithError(ctx context.Context, w http.ResponseWriter, err error) {
	apiErr := FromError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.WithContext(ctx).Error("Request failed: %v", err)
	} else {
		h.logger.WithContext(ctx).Debug("Request rejected: %v", err)
	}
	WriteAPIError(w, apiErr)
}

// periodsParam returns the comma separated periods query value, or nil when absent.
func periodsParam(r *http.Request) []string {
	var labels []string
	for _, l := range strings.Split(r.URL.Query().Get("periods"), ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}
