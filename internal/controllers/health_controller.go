package controllers

import (
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"onegoodthing/internal/storage"
	"time"
)

type HealthController struct {
	store     storage.Store
	snapshot  storage.Snapshotter
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Storage       string  `json:"storage"`
	Entries       *int    `json:"entries,omitempty"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Storage:       hc.store.Driver(),
	}
	// only stores held in memory know their size without a query
	if n := hc.snapshot.EntryCount(); n >= 0 {
		resp.Entries = &n
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(store storage.Store, snapshot storage.Snapshotter) *HealthController {
	return &HealthController{
		store:     store,
		snapshot:  snapshot,
		startTime: time.Now(),
	}
}
