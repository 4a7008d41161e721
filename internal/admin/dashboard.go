package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/puntaluxe/growth-engine/pkg/logging"
)

type dashboardDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type dashboardRepo interface {
	FunnelByDay(ctx context.Context, start, end time.Time) ([]FunnelDay, error)
}

// FunnelDay captures prospect intake and outreach counts by creation day.
type FunnelDay struct {
	Day       time.Time `json:"-"`
	DayLabel  string    `json:"day"`
	Prospects int64     `json:"prospects"`
	Queued    int64     `json:"queued"`
}

// TriageSnapshot summarizes triage action counters from the process registry.
type TriageSnapshot struct {
	Approved    int64 `json:"approved"`
	VideoAudits int64 `json:"video_audits"`
	Rejected    int64 `json:"rejected"`
	Failed      int64 `json:"failed"`
}

// FeedSnapshot summarizes change-feed counters from the process registry.
type FeedSnapshot struct {
	Applied    int64 `json:"applied"`
	Duplicates int64 `json:"duplicates"`
	Reconnects int64 `json:"reconnects"`
}

type Dashboard struct {
	PeriodStart  string         `json:"period_start"`
	PeriodEnd    string         `json:"period_end"`
	Prospects    int64          `json:"prospects"`
	Queued       int64          `json:"queued"`
	QueueRatePct float64        `json:"queue_rate_pct"`
	Triage       TriageSnapshot `json:"triage"`
	Feed         FeedSnapshot   `json:"feed"`
	Daily        []FunnelDay    `json:"daily"`
}

// DashboardRepository queries funnel metrics from the database.
type DashboardRepository struct {
	db dashboardDB
}

func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	if pool == nil {
		panic("admin: pgx pool required for dashboard")
	}
	return &DashboardRepository{db: pool}
}

func NewDashboardRepositoryWithDB(db dashboardDB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) FunnelByDay(ctx context.Context, start, end time.Time) ([]FunnelDay, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("admin dashboard: invalid time range")
	}

	query := `
		SELECT date_trunc('day', p.created_at) AS day,
		       COUNT(*) AS prospects,
		       COUNT(DISTINCT o.lead_id) AS queued
		FROM prospect_properties p
		LEFT JOIN outreach_queue o
		  ON o.lead_id = p.id
		WHERE p.created_at >= $1
		  AND p.created_at < $2
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("admin dashboard: query funnel: %w", err)
	}
	defer rows.Close()

	var results []FunnelDay
	for rows.Next() {
		var day time.Time
		var prospects, queued int64
		if err := rows.Scan(&day, &prospects, &queued); err != nil {
			return nil, fmt.Errorf("admin dashboard: scan funnel: %w", err)
		}
		results = append(results, FunnelDay{
			Day:       day.UTC(),
			DayLabel:  day.UTC().Format("2006-01-02"),
			Prospects: prospects,
			Queued:    queued,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("admin dashboard: iterate funnel: %w", err)
	}
	return results, nil
}

// DashboardHandler serves operational dashboard JSON for the growth team.
type DashboardHandler struct {
	repo     dashboardRepo
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

func NewDashboardHandler(repo dashboardRepo, gatherer prometheus.Gatherer, logger *logging.Logger) *DashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &DashboardHandler{repo: repo, gatherer: gatherer, logger: logger}
}

// GetDashboard returns funnel and triage metrics.
// GET /admin/dashboard
// Query params:
//   - start: RFC3339 timestamp (optional, requires end)
//   - end: RFC3339 timestamp (optional, requires start)
//   - days: integer window (default 7) when start/end omitted
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		http.Error(w, `{"error":"dashboard disabled (db not configured)"}`, http.StatusServiceUnavailable)
		return
	}

	start, end, err := parseDashboardWindow(r)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	funnel, err := h.repo.FunnelByDay(r.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to query dashboard funnel", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	funnel = fillMissingDays(funnel, start, end)

	var prospects, queued int64
	for _, day := range funnel {
		prospects += day.Prospects
		queued += day.Queued
	}

	queueRate := 0.0
	if prospects > 0 {
		queueRate = (float64(queued) / float64(prospects)) * 100.0
	}

	triage, feed := snapshotCounters(h.gatherer)

	resp := Dashboard{
		PeriodStart:  start.UTC().Format(time.RFC3339),
		PeriodEnd:    end.UTC().Format(time.RFC3339),
		Prospects:    prospects,
		Queued:       queued,
		QueueRatePct: queueRate,
		Triage:       triage,
		Feed:         feed,
		Daily:        funnel,
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

func fillMissingDays(existing []FunnelDay, start, end time.Time) []FunnelDay {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	lookup := map[string]FunnelDay{}
	for _, d := range existing {
		lookup[d.Day.UTC().Format("2006-01-02")] = d
	}

	out := make([]FunnelDay, 0, int(endDay.Sub(startDay).Hours()/24)+1)
	for day := startDay; day.Before(endDay); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		if found, ok := lookup[key]; ok {
			out = append(out, found)
			continue
		}
		out = append(out, FunnelDay{Day: day, DayLabel: key})
	}
	return out
}

func snapshotCounters(gatherer prometheus.Gatherer) (TriageSnapshot, FeedSnapshot) {
	var triage TriageSnapshot
	var feed FeedSnapshot

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return triage, feed
	}

	for _, mf := range mfs {
		if mf == nil {
			continue
		}
		switch mf.GetName() {
		case "growthengine_triage_actions_total":
			for _, metric := range mf.Metric {
				if metric == nil || metric.GetCounter() == nil {
					continue
				}
				count := int64(metric.GetCounter().GetValue())
				if !hasLabel(metric, "outcome", "ok") {
					triage.Failed += count
					continue
				}
				switch labelValue(metric, "action") {
				case "approve":
					triage.Approved += count
				case "video_audit":
					triage.VideoAudits += count
				case "reject":
					triage.Rejected += count
				}
			}
		case "growthengine_feed_events_total":
			for _, metric := range mf.Metric {
				if metric == nil || metric.GetCounter() == nil {
					continue
				}
				count := int64(metric.GetCounter().GetValue())
				switch labelValue(metric, "disposition") {
				case "applied":
					feed.Applied += count
				case "duplicate":
					feed.Duplicates += count
				}
			}
		case "growthengine_feed_reconnects_total":
			for _, metric := range mf.Metric {
				if metric == nil || metric.GetCounter() == nil {
					continue
				}
				feed.Reconnects += int64(metric.GetCounter().GetValue())
			}
		}
	}
	return triage, feed
}

func hasLabel(metric *dto.Metric, name, value string) bool {
	return labelValue(metric, name) == value
}

func labelValue(metric *dto.Metric, name string) string {
	for _, lp := range metric.Label {
		if lp == nil {
			continue
		}
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
