// Package httpapi exposes the deal registry, the analysis engine, and the
// snapshot store over a JSON HTTP surface.
package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mgirard/rentadesk/internal/deals"
	"github.com/mgirard/rentadesk/internal/dealstore"
	"github.com/mgirard/rentadesk/internal/rentab"
	"github.com/mgirard/rentadesk/internal/telemetry"
)

type Server struct {
	registry *deals.Registry
	store    dealstore.Store
	engine   rentab.Config
	md       goldmark.Markdown
}

func NewServer(registry *deals.Registry, store dealstore.Store, engine rentab.Config) http.Handler {
	s := &Server{
		registry: registry,
		store:    store,
		engine:   engine,
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/deals", s.handleDeals)
	mux.HandleFunc("/v1/deals/", s.handleDealSubtree)
	mux.HandleFunc("/v1/watch", s.handleWatch)
	mux.HandleFunc("/v1/health", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeStoreError(w http.ResponseWriter, err error) {
	var se *dealstore.Error
	if errors.As(err, &se) {
		writeJSON(w, se.Status, map[string]any{
			"ok": false,
			"error": map[string]any{
				"code":      se.Code,
				"message":   se.Message,
				"transient": se.Transient,
			},
		})
		return
	}
	writeJSON(w, 500, map[string]any{
		"ok": false,
		"error": map[string]any{
			"code":      dealstore.CodeInternal,
			"message":   err.Error(),
			"transient": true,
		},
	})
}

func writeValidationError(w http.ResponseWriter, message string) {
	writeJSON(w, 400, map[string]any{
		"ok": false,
		"error": map[string]any{
			"code":      dealstore.CodeValidation,
			"message":   message,
			"transient": false,
		},
	})
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeJSON(w, 404, map[string]any{
		"ok": false,
		"error": map[string]any{
			"code":      dealstore.CodeNotFound,
			"message":   message,
			"transient": false,
		},
	})
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return []byte("{}"), nil
	}
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	return blob, nil
}

func parseInt64(value string, def int64) int64 {
	if strings.TrimSpace(value) == "" {
		return def
	}
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func parseWaitSeconds(value string) time.Duration {
	if strings.TrimSpace(value) == "" {
		return 0
	}
	v, err := strconv.Atoi(value)
	if err != nil || v < 0 {
		return 0
	}
	return time.Duration(v) * time.Second
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) handleDeals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		blob, err := readBody(r)
		if err != nil {
			writeValidationError(w, "read body: "+err.Error())
			return
		}
		var req deals.CreateInput
		if err := json.Unmarshal(blob, &req); err != nil {
			writeValidationError(w, "invalid JSON: "+err.Error())
			return
		}
		meta, err := s.registry.Create(req)
		if err != nil {
			writeValidationError(w, err.Error())
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true, "deal": meta})
	case http.MethodGet:
		writeJSON(w, 200, map[string]any{"deals": s.registry.List()})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleDealSubtree routes /v1/deals/{id} and /v1/deals/{id}/{op}.
func (s *Server) handleDealSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/deals/")
	dealID, op, _ := strings.Cut(rest, "/")
	dealID = strings.TrimSpace(dealID)
	if dealID == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	meta, ok := s.registry.Get(dealID)
	if !ok {
		writeNotFound(w, "unknown deal "+dealID)
		return
	}

	switch op {
	case "":
		if !methodOnly(w, r, http.MethodGet) {
			return
		}
		writeJSON(w, 200, map[string]any{"deal": meta})
	case "form":
		s.handleForm(w, r, meta)
	case "analyze":
		s.handleAnalyze(w, r, meta)
	case "snapshot":
		s.handleSnapshot(w, r, meta)
	case "report":
		s.handleReport(w, r, meta)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// handleForm returns the questionnaire for a deal: rebuilt from the stored
// snapshot when one exists, otherwise prefilled from the deal metadata.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request, meta *deals.Meta) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	snap, err := s.store.Read(meta.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if snap != nil {
		writeJSON(w, 200, map[string]any{"form": formFromInput(snap.Input), "source": "snapshot"})
		return
	}
	writeJSON(w, 200, map[string]any{"form": deals.PrefillForm(meta), "source": "meta"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request, meta *deals.Meta) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	_, span := telemetry.Tracer().Start(r.Context(), "rentadesk.analyze")
	defer span.End()
	span.SetAttributes(attribute.String("deal.id", meta.ID))

	blob, err := readBody(r)
	if err != nil {
		writeValidationError(w, "read body: "+err.Error())
		return
	}
	var form rentab.Form
	if err := json.Unmarshal(blob, &form); err != nil {
		span.SetStatus(codes.Error, "invalid form")
		writeValidationError(w, "invalid JSON: "+err.Error())
		return
	}

	in := rentab.NormalizeForm(form)
	snap := rentab.Analyze(in, s.engine)
	span.SetAttributes(
		attribute.String("deal.strategy", string(in.Strategy)),
		attribute.String("deal.decision", string(snap.Scenarios.Base.Decision)),
	)

	stored, err := s.store.Write(meta.ID, snap)
	if err != nil {
		span.SetStatus(codes.Error, "store write failed")
		writeStoreError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{
		"ok":         true,
		"snapshot":   stored,
		"disclaimer": rentab.Disclaimer,
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request, meta *deals.Meta) {
	switch r.Method {
	case http.MethodGet:
		snap, err := s.store.Read(meta.ID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"snapshot": snap})
	case http.MethodPatch:
		blob, err := readBody(r)
		if err != nil {
			writeValidationError(w, "read body: "+err.Error())
			return
		}
		var patch dealstore.Patch
		if err := json.Unmarshal(blob, &patch); err != nil {
			writeValidationError(w, "invalid JSON: "+err.Error())
			return
		}
		snap, err := s.store.Patch(meta.ID, patch)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		// nil snapshot: nothing to patch against, deliberately not an error
		writeJSON(w, 200, map[string]any{"ok": true, "snapshot": snap})
	case http.MethodDelete:
		if err := s.store.Clear(meta.ID); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, meta *deals.Meta) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	_, span := telemetry.Tracer().Start(r.Context(), "rentadesk.report")
	defer span.End()
	span.SetAttributes(attribute.String("deal.id", meta.ID))

	snap, err := s.store.Read(meta.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if snap == nil {
		writeNotFound(w, "deal "+meta.ID+" has no snapshot to report on")
		return
	}

	markdown := rentab.BuildReport(meta.Title, *snap)
	if strings.EqualFold(r.URL.Query().Get("format"), "html") {
		var buf bytes.Buffer
		if err := s.md.Convert([]byte(markdown), &buf); err != nil {
			span.SetStatus(codes.Error, "markdown render failed")
			writeStoreError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(markdown))
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	after := parseInt64(r.URL.Query().Get("after"), 0)
	wait := parseWaitSeconds(r.URL.Query().Get("wait"))
	dealID := strings.TrimSpace(r.URL.Query().Get("deal"))

	events, cursor := s.store.WatchSince(after, dealID, wait)
	writeJSON(w, 200, map[string]any{
		"events": events,
		"cursor": strconv.FormatInt(cursor, 10),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	health := s.store.Health()
	health["deals"] = len(s.registry.List())
	writeJSON(w, 200, health)
}

func formFromInput(in rentab.Input) rentab.Form {
	return rentab.Form{
		Strategy:             string(in.Strategy),
		PurchasePrice:        formatField(in.PurchasePrice),
		NotaryFeeRatePct:     formatField(in.NotaryFeeRatePct),
		WorksBudget:          formatField(in.WorksBudget),
		MiscFees:             formatField(in.MiscFees),
		DurationMonths:       formatField(in.DurationMonths),
		Surface:              formatField(in.Surface),
		TargetResalePrice:    formatField(in.TargetResalePrice),
		MonthlyRent:          formatField(in.MonthlyRent),
		MonthlyCharges:       formatField(in.MonthlyCharges),
		AnnualPropertyTax:    formatField(in.AnnualPropertyTax),
		MarginalTaxRatePct:   formatField(in.MarginalTaxRatePct),
		FlatTaxRatePct:       formatField(in.FlatTaxRatePct),
		UseFlatTax:           in.UseFlatTax,
		PersonalContribution: formatField(in.PersonalContribution),
	}
}

// formatField keeps zero-valued fields blank so a rebuilt form looks like
// one the user left empty, not one filled with zeros.
func formatField(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
