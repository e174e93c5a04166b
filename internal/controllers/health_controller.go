package controllers

import (
	"fmt"
	"net/http"
	"time"
	"varietyd/internal/services"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	coordinator services.CoordinatorInterface
	startTime   time.Time
}

type healthResponse struct {
	Status            string   `json:"status"`
	Uptime            string   `json:"uptime"`
	UptimeSeconds     float64  `json:"uptime_seconds"`
	QueueDepth        int64    `json:"queue_depth"`
	KnownYears        []int    `json:"known_years"`
	HistoryYear       int      `json:"history_year"`
	CurrentAgeSeconds *float64 `json:"current_age_seconds"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := hc.coordinator.Stats()
	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		QueueDepth:    stats.QueueDepth,
		KnownYears:    stats.KnownYears,
		HistoryYear:   stats.HistoryYear,
	}
	if resp.KnownYears == nil {
		resp.KnownYears = []int{}
	}
	if stats.HasCurrent {
		age := stats.CurrentAge.Seconds()
		resp.CurrentAgeSeconds = &age
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(coordinator services.CoordinatorInterface) *HealthController {
	return &HealthController{
		coordinator: coordinator,
		startTime:   time.Now(),
	}
}
