package errors

import (
	"encoding/json"
	"net/http"
)

// WriteHTTP writes err as a JSON body with its status code.
func WriteHTTP(w http.ResponseWriter, err *AppError) {
	status := err.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]*AppError{"error": err})
}
