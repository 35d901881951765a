package api

import (
	"encoding/json"
	"net/http"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HealthResponse reports server and host status
type HealthResponse struct {
	Status         string  `json:"status"`
	Store          string  `json:"store"`
	Hostname       string  `json:"hostname,omitempty"`
	UptimeSeconds  uint64  `json:"uptime_seconds,omitempty"`
	CPUPercent     float64 `json:"cpu_percent,omitempty"`
	MemUsedPercent float64 `json:"mem_used_percent,omitempty"`
}

// Health reports server liveness, store connectivity and a host snapshot
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Store:  "ok",
	}

	status := http.StatusOK
	if err := h.store.HealthCheck(); err != nil {
		resp.Status = "degraded"
		resp.Store = err.Error()
		status = http.StatusServiceUnavailable
	}

	// Host snapshot is best-effort; failures don't degrade health
	if info, err := host.Info(); err == nil {
		resp.Hostname = info.Hostname
		resp.UptimeSeconds = info.Uptime
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		resp.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		resp.MemUsedPercent = vm.UsedPercent
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
