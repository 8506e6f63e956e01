package http

import (
	"encoding/json"
	nethttp "net/http"
)

// All platform responses share one envelope: {success, message?, data?}.
// Clients treat success=false and non-2xx uniformly.

func writeData(w nethttp.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func writeErr(w nethttp.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}
