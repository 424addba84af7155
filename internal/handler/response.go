package handler

import (
	"encoding/json"
	"net/http"
)

// respondWithError adalah helper untuk mengirim respons error dalam format JSON.
// Contoh: {"error": "Invalid JSON"}
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJson(w, code, map[string]string{"error": message})
}

// respondWithJson menangani marshaling, setting header, dan penulisan respons.
func respondWithJson(w http.ResponseWriter, code int, payload interface{}) {
	dat, err := json.Marshal(payload)
	if err != nil {
		// Avoid recursion - write error directly
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(dat)
}

// respondWithRaw menulis body dari upstream apa adanya.
// Content-Type dari upstream diteruskan; body kosong tidak diberi Content-Type.
func respondWithRaw(w http.ResponseWriter, code int, contentType string, body []byte) {
	if len(body) > 0 {
		if contentType == "" {
			contentType = "application/json"
		}
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(code)
	w.Write(body)
}
