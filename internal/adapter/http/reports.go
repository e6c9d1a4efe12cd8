package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/domain"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/store"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type reportHandler struct {
	store  ReportStore
	logger *slog.Logger
}

type reportSummary struct {
	Source      string       `json:"source"`
	RunID       string       `json:"run_id"`
	GeneratedAt time.Time    `json:"generated_at"`
	Threshold   float64      `json:"threshold"`
	Stats       domain.Stats `json:"stats"`
	Years       []int        `json:"years"`
	Cities      []string     `json:"cities"`
}

func (h *reportHandler) list(w http.ResponseWriter, _ *http.Request) {
	out := []reportSummary{}
	for _, src := range h.store.Sources() {
		r, err := h.store.Latest(src)
		if err != nil {
			continue
		}
		out = append(out, reportSummary{
			Source:      r.Source,
			RunID:       r.RunID,
			GeneratedAt: r.GeneratedAt,
			Threshold:   r.Threshold,
			Stats:       r.Stats,
			Years:       r.Exceedances.Years(),
			Cities:      r.Monthly.Cities,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *reportHandler) get(w http.ResponseWriter, r *http.Request) {
	report, ok := h.latest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// monthlyQuery selects a sub-matrix. Empty lists keep everything.
type monthlyQuery struct {
	Years  []int    `validate:"dive,gte=1900,lte=2100"`
	Cities []string `validate:"dive,required"`
}

func (h *reportHandler) monthly(w http.ResponseWriter, r *http.Request) {
	var q monthlyQuery
	years, err := parseInts(r.URL.Query(), "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q.Years = years
	q.Cities = r.URL.Query()["city"]
	if err := validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, ok := h.latest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.Monthly.Select(q.Years, q.Cities))
}

// exceedanceQuery ranks the stations of one year.
type exceedanceQuery struct {
	Year  int    `validate:"required,gte=1900,lte=2100"`
	N     int    `validate:"gte=1,lte=1000"`
	Order string `validate:"oneof=top bottom"`
}

func (h *reportHandler) exceedances(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	if values.Get("year") == "" {
		report, ok := h.latest(w, r)
		if ok {
			writeJSON(w, http.StatusOK, report.Exceedances)
		}
		return
	}

	q := exceedanceQuery{N: 10, Order: "top"}
	var err error
	if q.Year, err = strconv.Atoi(values.Get("year")); err != nil {
		writeError(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	if s := values.Get("n"); s != "" {
		if q.N, err = strconv.Atoi(s); err != nil {
			writeError(w, http.StatusBadRequest, "n must be an integer")
			return
		}
	}
	if s := values.Get("order"); s != "" {
		q.Order = s
	}
	if err := validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, ok := h.latest(w, r)
	if !ok {
		return
	}
	if q.Order == "bottom" {
		writeJSON(w, http.StatusOK, report.Exceedances.Bottom(q.Year, q.N))
		return
	}
	writeJSON(w, http.StatusOK, report.Exceedances.Top(q.Year, q.N))
}

func (h *reportHandler) latest(w http.ResponseWriter, r *http.Request) (domain.Report, bool) {
	source := r.PathValue("source")
	report, err := h.store.Latest(source)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no report for %q", source))
			return domain.Report{}, false
		}
		h.logger.Error("report lookup failed", "source", source, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch report")
		return domain.Report{}, false
	}
	return report, true
}

func parseInts(values url.Values, key string) ([]int, error) {
	var out []int
	for _, s := range values[key] {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer: %q", key, s)
		}
		out = append(out, n)
	}
	return out, nil
}
