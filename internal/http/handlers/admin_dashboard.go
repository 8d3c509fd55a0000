package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/leadlens-ai/leadlens/pkg/logging"
)

type dashboardDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type dashboardRepo interface {
	FinishedCohortByDay(ctx context.Context, start, end time.Time, qualifyScore int) ([]FinishedCohortDay, error)
}

// FinishedCohortDay captures finished-interview counts by finish day.
type FinishedCohortDay struct {
	Day        time.Time `json:"-"`
	DayLabel   string    `json:"day"`
	Finished   int64     `json:"finished"`
	Qualified  int64     `json:"qualified"`
	ScoreTotal int64     `json:"-"`
}

type SelectionLatencySnapshot struct {
	Total   int64                    `json:"total"`
	P90Ms   float64                  `json:"p90_ms"`
	P95Ms   float64                  `json:"p95_ms"`
	Buckets []SelectionLatencyBucket `json:"buckets"`
}

type SelectionLatencyBucket struct {
	LeSeconds float64 `json:"le_seconds"`
	Label     string  `json:"label,omitempty"`
	Count     int64   `json:"count"`
}

// AdminDashboard is the operational summary served to reviewers.
type AdminDashboard struct {
	PeriodStart      string                   `json:"period_start"`
	PeriodEnd        string                   `json:"period_end"`
	QualifyScore     int                      `json:"qualify_score"`
	Finished         int64                    `json:"finished"`
	Qualified        int64                    `json:"qualified"`
	QualifiedPct     float64                  `json:"qualified_pct"`
	AvgScore         float64                  `json:"avg_score"`
	SelectionLatency SelectionLatencySnapshot `json:"selection_latency"`
	Daily            []FinishedCohortDay      `json:"daily"`
}

// DashboardRepository queries interview outcomes from the archive table.
type DashboardRepository struct {
	db dashboardDB
}

func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	if pool == nil {
		panic("handlers: pgx pool required for dashboard")
	}
	return &DashboardRepository{db: pool}
}

func NewDashboardRepositoryWithDB(db dashboardDB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) FinishedCohortByDay(ctx context.Context, start, end time.Time, qualifyScore int) ([]FinishedCohortDay, error) {
	if end.Before(start) || end.Equal(start) {
		return nil, fmt.Errorf("admin dashboard: invalid time range")
	}

	query := `
		SELECT date_trunc('day', finished_at) AS day,
		       COUNT(*) AS finished,
		       COUNT(*) FILTER (WHERE score >= $3) AS qualified,
		       COALESCE(SUM(score), 0) AS score_total
		FROM interview_archive
		WHERE finished_at >= $1
		  AND finished_at < $2
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.db.Query(ctx, query, start, end, qualifyScore)
	if err != nil {
		return nil, fmt.Errorf("admin dashboard: query cohort: %w", err)
	}
	defer rows.Close()

	var results []FinishedCohortDay
	for rows.Next() {
		var day time.Time
		var finished, qualified, scoreTotal int64
		if err := rows.Scan(&day, &finished, &qualified, &scoreTotal); err != nil {
			return nil, fmt.Errorf("admin dashboard: scan cohort: %w", err)
		}
		results = append(results, FinishedCohortDay{
			Day:        day.UTC(),
			DayLabel:   day.UTC().Format("2006-01-02"),
			Finished:   finished,
			Qualified:  qualified,
			ScoreTotal: scoreTotal,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("admin dashboard: iterate cohort: %w", err)
	}
	return results, nil
}

// AdminDashboardHandler serves the operational dashboard JSON.
type AdminDashboardHandler struct {
	repo         dashboardRepo
	gatherer     prometheus.Gatherer
	qualifyScore int
	logger       *logging.Logger
}

func NewAdminDashboardHandler(repo dashboardRepo, gatherer prometheus.Gatherer, qualifyScore int, logger *logging.Logger) *AdminDashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if qualifyScore <= 0 {
		qualifyScore = 70
	}
	return &AdminDashboardHandler{
		repo:         repo,
		gatherer:     gatherer,
		qualifyScore: qualifyScore,
		logger:       logger,
	}
}

// GetDashboard returns interview outcome metrics.
// GET /admin/dashboard
// Query params:
//   - start: RFC3339 timestamp (optional, requires end)
//   - end: RFC3339 timestamp (optional, requires start)
//   - days: integer window (default 7) when start/end omitted
func (h *AdminDashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		http.Error(w, `{"error":"dashboard disabled (db not configured)"}`, http.StatusServiceUnavailable)
		return
	}

	start, end, err := parseDashboardWindow(r)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	cohort, err := h.repo.FinishedCohortByDay(r.Context(), start, end, h.qualifyScore)
	if err != nil {
		h.logger.Error("failed to query dashboard cohort", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	cohort = fillMissingDays(cohort, start, end)

	var finishedTotal, qualifiedTotal, scoreTotal int64
	for _, day := range cohort {
		finishedTotal += day.Finished
		qualifiedTotal += day.Qualified
		scoreTotal += day.ScoreTotal
	}

	qualifiedPct := 0.0
	avgScore := 0.0
	if finishedTotal > 0 {
		qualifiedPct = (float64(qualifiedTotal) / float64(finishedTotal)) * 100.0
		avgScore = float64(scoreTotal) / float64(finishedTotal)
	}

	latency := snapshotSelectionLatency(h.gatherer)

	resp := AdminDashboard{
		PeriodStart:      start.UTC().Format(time.RFC3339),
		PeriodEnd:        end.UTC().Format(time.RFC3339),
		QualifyScore:     h.qualifyScore,
		Finished:         finishedTotal,
		Qualified:        qualifiedTotal,
		QualifiedPct:     qualifiedPct,
		AvgScore:         avgScore,
		SelectionLatency: latency,
		Daily:            cohort,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func parseDashboardWindow(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()

	startRaw := strings.TrimSpace(q.Get("start"))
	endRaw := strings.TrimSpace(q.Get("end"))
	if (startRaw == "") != (endRaw == "") {
		return time.Time{}, time.Time{}, fmt.Errorf("both start and end must be provided, or neither")
	}
	if startRaw != "" {
		start, err := time.Parse(time.RFC3339, startRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start time, use RFC3339 format")
		}
		end, err := time.Parse(time.RFC3339, endRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end time, use RFC3339 format")
		}
		if !end.After(start) {
			return time.Time{}, time.Time{}, fmt.Errorf("end must be after start")
		}
		return start.UTC(), end.UTC(), nil
	}

	days := 7
	if raw := strings.TrimSpace(q.Get("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 90 {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid days; must be 1-90")
		}
		days = parsed
	}

	now := time.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -days)
	return start, end, nil
}

func fillMissingDays(existing []FinishedCohortDay, start, end time.Time) []FinishedCohortDay {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	lookup := map[string]FinishedCohortDay{}
	for _, d := range existing {
		key := d.Day.UTC().Format("2006-01-02")
		lookup[key] = d
	}

	out := make([]FinishedCohortDay, 0, int(endDay.Sub(startDay).Hours()/24)+1)
	for day := startDay; day.Before(endDay); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		if found, ok := lookup[key]; ok {
			out = append(out, found)
			continue
		}
		out = append(out, FinishedCohortDay{
			Day:      day,
			DayLabel: key,
		})
	}
	return out
}

func snapshotSelectionLatency(gatherer prometheus.Gatherer) SelectionLatencySnapshot {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return SelectionLatencySnapshot{}
	}

	var family *dto.MetricFamily
	for _, mf := range mfs {
		if mf != nil && mf.GetName() == "leadlens_llm_selection_latency_seconds" {
			family = mf
			break
		}
	}
	if family == nil {
		return SelectionLatencySnapshot{}
	}

	// Aggregate histograms across selection kinds.
	cumulativeByUpper := map[float64]uint64{}
	var sampleCount uint64

	for _, metric := range family.Metric {
		if metric == nil {
			continue
		}
		h := metric.GetHistogram()
		if h == nil {
			continue
		}
		sampleCount += h.GetSampleCount()
		for _, b := range h.Bucket {
			if b == nil {
				continue
			}
			cumulativeByUpper[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}

	if sampleCount == 0 || len(cumulativeByUpper) == 0 {
		return SelectionLatencySnapshot{}
	}

	uppers := make([]float64, 0, len(cumulativeByUpper))
	for upper := range cumulativeByUpper {
		uppers = append(uppers, upper)
	}
	sort.Float64s(uppers)

	buckets := make([]SelectionLatencyBucket, 0, len(uppers))
	var prev uint64
	var lastFiniteUpper float64
	for _, upper := range uppers {
		cum := cumulativeByUpper[upper]
		if math.IsInf(upper, 1) {
			overflow := int64(0)
			if cum >= prev {
				overflow = int64(cum - prev)
			} else {
				overflow = int64(cum)
			}
			if overflow > 0 {
				buckets = append(buckets, SelectionLatencyBucket{
					LeSeconds: lastFiniteUpper,
					Label:     fmt.Sprintf(">%s", formatSeconds(lastFiniteUpper)),
					Count:     overflow,
				})
			}
			prev = cum
			continue
		}

		lastFiniteUpper = upper
		count := int64(0)
		if cum >= prev {
			count = int64(cum - prev)
		} else {
			count = int64(cum)
		}
		buckets = append(buckets, SelectionLatencyBucket{
			LeSeconds: upper,
			Count:     count,
		})
		prev = cum
	}

	p90 := histogramQuantile(0.90, sampleCount, uppers, cumulativeByUpper)
	p95 := histogramQuantile(0.95, sampleCount, uppers, cumulativeByUpper)

	return SelectionLatencySnapshot{
		Total:   int64(sampleCount),
		P90Ms:   p90 * 1000.0,
		P95Ms:   p95 * 1000.0,
		Buckets: buckets,
	}
}

func histogramQuantile(q float64, total uint64, uppers []float64, cumulativeByUpper map[float64]uint64) float64 {
	if total == 0 || q <= 0 {
		return 0
	}
	if q >= 1 {
		for i := len(uppers) - 1; i >= 0; i-- {
			if !math.IsInf(uppers[i], 1) {
				return uppers[i]
			}
		}
		return 0
	}

	target := q * float64(total)
	var prevUpper float64
	var prevCum float64

	for _, upper := range uppers {
		cum := float64(cumulativeByUpper[upper])
		if cum < target {
			prevUpper = upper
			prevCum = cum
			continue
		}

		// If we can't interpolate, return the bucket upper bound.
		bucketCount := cum - prevCum
		if bucketCount <= 0 || upper == prevUpper {
			return upper
		}
		if math.IsInf(upper, 1) {
			return prevUpper
		}

		fraction := (target - prevCum) / bucketCount
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}

		lower := prevUpper
		return lower + fraction*(upper-lower)
	}

	return uppers[len(uppers)-1]
}

func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	if seconds < 1 {
		return fmt.Sprintf("%.2fs", seconds)
	}
	if seconds < 10 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	return fmt.Sprintf("%.0fs", seconds)
}
