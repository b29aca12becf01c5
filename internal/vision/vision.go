package vision

import (
	"context"
	"io"

	"roomproof/internal/domain"
	"roomproof/internal/inventory"
)

// AnalysisPrompt is the shared prompt used by all vision adapters. The reply
// is required to be the canonical inventory JSON shape; the normalizer
// tolerates fencing and prose anyway.
const AnalysisPrompt = `You are taking inventory of a room from a photo. List every distinct
item you can see. Respond with JSON only, no prose, in exactly this shape:
{"items":[{"name":"Sofa","count":1,"condition":"Good"}],"location":"East Wall"}
"count" is how many of that item are visible; "condition" is a short phrase
such as "Good" or "Worn"; "location" is a short label for where in the room
the photo was taken, or "" if unclear.`

type Analyzer interface {
	Analyze(ctx context.Context, r io.Reader, mimeType string) (*AnalysisResult, error)
}

type AnalysisResult struct {
	List        domain.List
	RawResponse string
}

// ParseResponse turns a raw model reply into the canonical item list. Fenced,
// prose-wrapped, or unparsable replies degrade to an empty list rather than
// an error; a flaky model never fails a capture.
func ParseResponse(raw string) domain.List {
	return inventory.Normalize(raw)
}
