package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"registrar/internal/identity/models"
	dErrors "registrar/pkg/domain-errors"
)

// submissionResponse is the caller-facing view of a ledger entry.
type submissionResponse struct {
	Status      string   `json:"status"`
	RequestID   string   `json:"requestId"`
	TRN         string   `json:"trn,omitempty"`
	CandidateID string   `json:"candidateId,omitempty"`
	OptOutToken string   `json:"optOutToken,omitempty"`
	Details     []string `json:"details,omitempty"`
}

const (
	statusCompleted = "completed"
	statusPending   = "pending"
	statusWithheld  = "withheld"
)

func completedResponse(entry *models.LedgerEntry) submissionResponse {
	resp := submissionResponse{
		Status:      statusCompleted,
		RequestID:   entry.RequestID.String(),
		TRN:         entry.TRN.String(),
		OptOutToken: entry.OptOutToken,
	}
	if entry.CandidateID != nil {
		resp.CandidateID = entry.CandidateID.String()
	}
	return resp
}

func pendingResponse(entry *models.LedgerEntry, status string) submissionResponse {
	return submissionResponse{
		Status:    status,
		RequestID: entry.RequestID.String(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError translates a coded domain error into the JSON error envelope.
// Internal errors omit the description so nothing leaks.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := toHTTPStatus(code)

	body := map[string]any{"error": string(code)}
	if code != dErrors.CodeInternal {
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			body["error_description"] = domainErr.Message
		}
		if details := dErrors.DetailsOf(err); len(details) > 0 {
			body["details"] = details
		}
	}
	if code == dErrors.CodeUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	writeJSON(w, status, body)
}

func toHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
