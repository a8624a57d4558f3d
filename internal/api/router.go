// Package api is the operator-facing HTTP surface: health, version, and
// authenticated export of the collected responses. Participants never see
// it; they only talk to the bot.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/openfieldlab/hashbot/internal/middleware"
	"github.com/openfieldlab/hashbot/internal/record"
)

type Router struct {
	reader    record.Reader
	commit    string
	buildTime string
}

func NewRouter(reader record.Reader, commit, buildTime string) *Router {
	return &Router{reader: reader, commit: commit, buildTime: buildTime}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", rt.handleHealth)
	mux.HandleFunc("/version", rt.handleVersion)
	mux.Handle("/api/export", middleware.WithOperator(middleware.RequireOperator(http.HandlerFunc(rt.handleExport))))
	mux.Handle("/api/stats", middleware.WithOperator(middleware.RequireOperator(http.HandlerFunc(rt.handleStats))))
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":   true,
		"name": "Hashbot",
	})
}

func (rt *Router) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"commit":     rt.commit,
		"build_time": rt.buildTime,
	})
}

// GET /api/export — all collected rows as CSV.
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rows, err := rt.reader.List()
	if err != nil {
		log.Printf("api: list responses for export: %v", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	out, err := record.ExportCSV(rows)
	if err != nil {
		log.Printf("api: render export csv: %v", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	if op, ok := middleware.OperatorFromContext(r.Context()); ok {
		log.Printf("api: export of %d rows by %s", len(rows), op)
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="hashtag_study.csv"`)
	_, _ = w.Write(out)
}

// GET /api/stats — participation counts, no response content.
func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rows, err := rt.reader.List()
	if err != nil {
		log.Printf("api: list responses for stats: %v", err)
		http.Error(w, "stats failed", http.StatusInternalServerError)
		return
	}
	participants := map[string]struct{}{}
	byRound := map[string]int{}
	for _, row := range rows {
		participants[row.ParticipantID] = struct{}{}
		byRound[strconv.Itoa(row.RoundIndex)]++
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"total":        len(rows),
		"participants": len(participants),
		"by_round":     byRound,
	})
}
