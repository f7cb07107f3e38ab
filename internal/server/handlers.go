package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/plotkit/dotwhisker/pkg/cache"
	"github.com/plotkit/dotwhisker/pkg/chart"
	"github.com/plotkit/dotwhisker/pkg/coeff/tidy"
	"github.com/plotkit/dotwhisker/pkg/errors"
	dwio "github.com/plotkit/dotwhisker/pkg/io"
	"github.com/plotkit/dotwhisker/pkg/observability"
	"github.com/plotkit/dotwhisker/pkg/pipeline"
	"github.com/plotkit/dotwhisker/pkg/render/whisker/sink"
	"github.com/plotkit/dotwhisker/pkg/render/whisker/styles"
	"github.com/plotkit/dotwhisker/pkg/theme"
)

// renderRequest is the POST /v1/charts/{kind} body. Table carries the
// same JSON document the CLI reads from a file; the remaining fields
// mirror the CLI flags.
type renderRequest struct {
	Table         json.RawMessage   `json:"table"`
	Term          string            `json:"term,omitempty"` // secret_weapon only
	Alpha         float64           `json:"alpha,omitempty"`
	TermOrder     []string          `json:"term_order,omitempty"`
	ModelOrder    []string          `json:"model_order,omitempty"`
	Relabel       map[string]string `json:"relabel,omitempty"`
	HideIntercept bool              `json:"hide_intercept,omitempty"`
	Vertical      bool              `json:"vertical,omitempty"`
	Dodge         float64           `json:"dodge,omitempty"`
	Brackets      [][]string        `json:"brackets,omitempty"`
	Format        string            `json:"format,omitempty"` // "svg" (default) or "json"
	Style         string            `json:"style,omitempty"`  // "classic" (default) or "minimal"
	NoLegend      bool              `json:"no_legend,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := chi.URLParam(r, "kind")
	if kind != chart.KindPlot && kind != chart.KindSecretWeapon && kind != chart.KindSmallMultiple {
		s.writeError(w, errors.New(errors.ErrCodeInvalidParameter, "unknown chart kind %q", kind))
		return
	}

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInputFormat, err, "decode request"))
		return
	}
	if len(req.Table) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInputFormat, "request has no table"))
		return
	}
	if req.Format == "" {
		req.Format = "svg"
	}
	if req.Format != "svg" && req.Format != "json" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidParameter, "unknown format %q", req.Format))
		return
	}
	style, err := styleFor(req.Style)
	if err != nil {
		s.writeError(w, err)
		return
	}

	key := s.artifactKey(kind, &req)
	if data, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		s.writeArtifact(w, req.Format, data, true)
		return
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	tab, err := dwio.ReadJSON(bytes.NewReader(req.Table))
	if err != nil {
		s.writeError(w, err)
		return
	}

	runner, err := pipeline.NewRunner(pipeline.Options{
		Alpha:         req.Alpha,
		TermOrder:     req.TermOrder,
		ModelOrder:    req.ModelOrder,
		Relabel:       req.Relabel,
		HideIntercept: req.HideIntercept,
		Vertical:      req.Vertical,
		Dodge:         req.Dodge,
		Logger:        s.logger,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	assembleStart := time.Now()
	observability.Chart().OnAssembleStart(ctx, kind, tab.Len())
	var c *chart.Chart
	switch kind {
	case chart.KindPlot:
		c, err = runner.Plot(tidy.FromTable(tab))
	case chart.KindSecretWeapon:
		c, err = runner.SecretWeapon(tidy.FromTable(tab), req.Term)
	case chart.KindSmallMultiple:
		c, err = runner.SmallMultiple(tidy.FromTable(tab))
	}
	observability.Chart().OnAssembleComplete(ctx, kind, time.Since(assembleStart), err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(req.Brackets) > 0 {
		if c, err = pipeline.AddBrackets(c, req.Brackets); err != nil {
			s.writeError(w, err)
			return
		}
	}

	renderStart := time.Now()
	observability.Chart().OnRenderStart(ctx, req.Format)
	var data []byte
	if req.Format == "json" {
		data, err = sink.RenderJSON(c)
	} else {
		opts := []sink.SVGOption{sink.WithStyle(style)}
		if req.NoLegend {
			opts = append(opts, sink.WithoutLegend())
		}
		data = sink.RenderSVG(c, theme.Default(), opts...)
	}
	observability.Chart().OnRenderComplete(ctx, req.Format, len(data), time.Since(renderStart), err)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("cache write failed", "error", err, "request_id", requestIDFrom(ctx))
	} else {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	s.writeArtifact(w, req.Format, data, false)
}

// artifactKey derives the cache key for a request. The table document
// is hashed as received; options hash through the keyer.
func (s *Server) artifactKey(kind string, req *renderRequest) string {
	chartKey := s.keyer.ChartKey(cache.Hash(req.Table), cache.ChartKeyOpts{
		Kind:          kind + ":" + req.Term,
		Alpha:         req.Alpha,
		TermOrder:     req.TermOrder,
		ModelOrder:    req.ModelOrder,
		HideIntercept: req.HideIntercept,
		Vertical:      req.Vertical,
		Dodge:         req.Dodge,
	})
	extra, _ := json.Marshal(struct {
		Relabel  map[string]string `json:"relabel"`
		Brackets [][]string        `json:"brackets"`
		NoLegend bool              `json:"no_legend"`
	}{req.Relabel, req.Brackets, req.NoLegend})
	return s.keyer.ArtifactKey(cache.Hash(append([]byte(chartKey), extra...)), cache.ArtifactKeyOpts{
		Format: req.Format,
		Style:  req.Style,
	})
}

func (s *Server) writeArtifact(w http.ResponseWriter, format string, data []byte, cached bool) {
	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "image/svg+xml")
	}
	if cached {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// writeError maps pipeline error codes to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInputFormat, errors.ErrCodeInvalidParameter, errors.ErrCodeInvalidTheme:
		status = http.StatusBadRequest
	case errors.ErrCodeInsufficientModels, errors.ErrCodeAmbiguousOrder, errors.ErrCodeUnknownTerm:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	})
}

func styleFor(name string) (styles.Style, error) {
	switch name {
	case "", "classic":
		return styles.Classic{}, nil
	case "minimal":
		return styles.Minimal{}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidParameter, "unknown style %q", name)
	}
}
