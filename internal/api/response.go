package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/parsererror"
	"fjacquet/spendwise/internal/storage"
)

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// message is the body of successful deletes and imports.
type message struct {
	Message string `json:"message"`
}

// writeServiceError maps domain errors to status codes. Anything it does
// not recognise is logged and reported as a 500 with fallback as the message.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error, fallback string) {
	var (
		validationErr *parsererror.ValidationError
		mappingErr    *parsererror.MappingError
		batchErr      *parsererror.BatchError
		parseErr      *parsererror.ParseError
	)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &validationErr):
		WriteError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &mappingErr):
		WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":            "Could not detect required columns",
			"missing":          mappingErr.Missing,
			"detected":         mappingErr.Detected,
			"availableHeaders": mappingErr.Available,
		})
	case errors.As(err, &batchErr):
		WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "No valid transactions to import",
			"details": batchErr.Messages(),
		})
	case errors.As(err, &parseErr):
		WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "Failed to parse CSV",
			"details": []string{parseErr.Error()},
		})
	default:
		logger.WithError(err).Error(fallback,
			logging.F(logging.FieldMethod, r.Method),
			logging.F(logging.FieldPath, r.URL.Path),
			logging.F(logging.FieldRequestID, RequestIDFrom(r.Context())))
		WriteError(w, http.StatusInternalServerError, fallback)
	}
}

// decodeJSON reads the request body into dst. It writes a 400 and returns
// false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
