package api

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	defaultLeaderboardLimit = 10
	defaultEventsLimit      = 50
	maxListLimit            = 1024
)

// Handler methods for routerHandlers
// These are used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"service": "survivors",
		"endpoints": []string{
			"GET /api/state",
			"GET /api/stats",
			"GET /api/frame.png",
			"GET /api/skills",
			"POST /api/skills",
			"POST /api/skills/{index}/levelup",
			"POST /api/input",
			"POST /api/restart",
			"GET /api/leaderboard",
			"GET /api/events",
			"GET /ws",
		},
	})
}

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.GetSnapshot()
	writeJSON(w, snap)
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"game":      h.engine.GetStats(),
		"rateLimit": h.rateLimiter.Stats(),
	})
}

func (h *routerHandlers) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.GetSnapshot()

	// Encode fully before writing so a failure can still produce a JSON error
	var buf bytes.Buffer
	start := time.Now()
	err := h.renderer.WritePNG(&buf, &snap)
	RecordRender(time.Since(start))
	if err != nil {
		log.Printf("❌ Frame render failed: %v", err)
		writeError(w, "Render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (h *routerHandlers) handleGetSkills(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.SkillInfo())
}

func (h *routerHandlers) handleAddSkill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string `json:"kind"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if req.Kind == "" {
		writeError(w, "Kind is required", http.StatusBadRequest)
		return
	}

	index, ok := h.engine.AddSkill(strings.ToLower(req.Kind))
	if !ok {
		writeError(w, "Unknown skill kind", http.StatusBadRequest)
		return
	}

	log.Printf("⚔️ Skill %s added in slot %d", req.Kind, index)
	writeJSON(w, map[string]interface{}{
		"success": true,
		"index":   index,
	})
}

func (h *routerHandlers) handleLevelUpSkill(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, "Invalid skill index", http.StatusBadRequest)
		return
	}

	if !h.engine.LevelUpSkill(index) {
		writeError(w, "Skill not found", http.StatusNotFound)
		return
	}

	resp := map[string]interface{}{"success": true}
	if skills := h.engine.SkillInfo(); index < len(skills) {
		resp["skill"] = skills[index]
	}
	writeJSON(w, resp)
}

func (h *routerHandlers) handleInput(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key  string `json:"key"`
		Down bool   `json:"down"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	key, ok := normalizeKey(req.Key)
	if !ok {
		writeError(w, "Key must be one of w, a, s, d", http.StatusBadRequest)
		return
	}

	h.engine.HandleKey(key, req.Down)
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleRestart(w http.ResponseWriter, r *http.Request) {
	log.Println("🔄 Restart requested via API")
	h.engine.Restart()
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Leaderboard(queryLimit(r, defaultLeaderboardLimit)))
}

func (h *routerHandlers) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.RecentEvents(queryLimit(r, defaultEventsLimit)))
}

// Helper functions (package-level for reuse)

// normalizeKey accepts a movement key in either case.
func normalizeKey(key string) (string, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	switch k {
	case "w", "a", "s", "d":
		return k, true
	}
	return "", false
}

// queryLimit reads ?limit=, falling back to def and capping at maxListLimit.
func queryLimit(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
