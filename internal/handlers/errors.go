package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "Internal server error"

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// JSONError sends the error envelope {"success": false, "message": ...}.
func JSONError(w http.ResponseWriter, message string, status int) {
	JSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// JSONData sends the data envelope {"success": true, "data": ...}.
func JSONData(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}
