package rest

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// RespondWithJSON отправляет JSON-ответ
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(response)
}

// normalizeAddress декодирует адрес один раз, а если остались %-последовательности - второй.
// При ошибке декодирования возвращается исходная строка.
func normalizeAddress(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	if strings.Contains(decoded, "%") {
		twice, err := url.QueryUnescape(decoded)
		if err != nil {
			return strings.TrimSpace(raw)
		}
		decoded = twice
	}
	return strings.TrimSpace(decoded)
}
