package activity

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
)

// Handler serves the activity log as JSON.
//
//	GET /activity?resource=contact&record_id=<uuid>&limit=50
type Handler struct {
	log *Log
}

func NewHandler(l *Log) *Handler {
	return &Handler{log: l}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	opts := QueryOptions{
		Resource: r.URL.Query().Get("resource"),
		RecordID: r.URL.Query().Get("record_id"),
		Limit:    50,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Limit = n
		}
	}
	if opts.Limit > 500 {
		opts.Limit = 500
	}

	entries := h.log.Query(opts)
	if entries == nil {
		entries = []Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"entries": entries,
		"count":   len(entries),
	}); err != nil {
		log.Printf("activity: encode response: %v", err)
	}
}
