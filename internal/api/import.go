package api

import (
	"net/http"
	"strings"

	"fjacquet/spendwise/internal/columnmapper"
	"fjacquet/spendwise/internal/importer"
	"fjacquet/spendwise/internal/models"
)

type importRequest struct {
	BankAccountID string            `json:"bankAccountId"`
	CSVData       string            `json:"csvData"`
	ColumnMapping map[string]string `json:"columnMapping"`
	DefaultType   string            `json:"defaultType"`
}

type importResponse struct {
	Message       string            `json:"message"`
	Imported      int               `json:"imported"`
	Errors        []string          `json:"errors,omitempty"`
	Duplicates    int               `json:"duplicates,omitempty"`
	Categorized   int               `json:"categorized,omitempty"`
	ColumnMapping map[string]string `json:"columnMapping"`
}

// importTransactions handles POST /api/transactions/import
func (s *Server) importTransactions(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.BankAccountID) == "" {
		WriteError(w, http.StatusBadRequest, "bankAccountId is required")
		return
	}
	if strings.TrimSpace(req.CSVData) == "" {
		WriteError(w, http.StatusBadRequest, "csvData is required")
		return
	}

	mapping, err := columnmapper.FromStrings(req.ColumnMapping)
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Invalid column mapping")
		return
	}
	ir := importer.Request{
		UserID:    UserIDFrom(r.Context()),
		AccountID: req.BankAccountID,
		Data:      strings.NewReader(req.CSVData),
		Mapping:   mapping,
	}
	if req.DefaultType != "" {
		dir, err := models.ParseDirection(req.DefaultType)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "defaultType must be CREDIT or DEBIT")
			return
		}
		ir.DefaultDirection = dir
	}

	result, err := s.svc.Importer.Import(r.Context(), ir)
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to import transactions")
		return
	}
	WriteJSON(w, http.StatusOK, importResponse{
		Message:       "Import completed",
		Imported:      result.Imported,
		Errors:        result.Errors(),
		Duplicates:    result.Duplicates,
		Categorized:   result.Categorized,
		ColumnMapping: result.Mapping.Strings(),
	})
}
