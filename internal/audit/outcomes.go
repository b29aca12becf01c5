package audit

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"roomproof/internal/domain"
)

// DecodeOutcomes parses a persisted comparison payload. The outcome array is
// accepted natively or JSON-encoded as a string (older rows were written
// double-encoded); anything unreadable yields an empty list, never an error.
// Counts are clamped to zero and each status is rederived so the verdict
// invariant holds no matter what was stored.
func DecodeOutcomes(data []byte) []domain.AuditOutcome {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []domain.AuditOutcome{}
	}

	var outcomes []domain.AuditOutcome
	if err := json.Unmarshal(trimmed, &outcomes); err == nil {
		return sanitize(outcomes)
	}

	var encoded string
	if err := json.Unmarshal(trimmed, &encoded); err == nil {
		if err := json.Unmarshal([]byte(encoded), &outcomes); err == nil {
			return sanitize(outcomes)
		}
	}

	slog.Warn("comparison payload is not valid JSON")
	return []domain.AuditOutcome{}
}

// EncodeOutcomes serializes outcomes as the canonical JSON array. A nil slice
// encodes as [].
func EncodeOutcomes(outcomes []domain.AuditOutcome) ([]byte, error) {
	if outcomes == nil {
		outcomes = []domain.AuditOutcome{}
	}
	return json.Marshal(outcomes)
}

func sanitize(outcomes []domain.AuditOutcome) []domain.AuditOutcome {
	if outcomes == nil {
		return []domain.AuditOutcome{}
	}
	for i := range outcomes {
		if outcomes[i].ExpectedCount < 0 {
			outcomes[i].ExpectedCount = 0
		}
		if outcomes[i].FoundCount < 0 {
			outcomes[i].FoundCount = 0
		}
		outcomes[i].Status = statusFor(outcomes[i].ExpectedCount, outcomes[i].FoundCount)
	}
	return outcomes
}
