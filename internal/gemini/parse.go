package gemini

import (
	"encoding/json"

	"callscribe/pkg/model"
)

// ParseTranscript extracts the transcript from a raw generateContent
// response body. Total: every structural anomaly yields an empty-result
// outcome instead of an error, so nothing raises past this boundary.
func ParseTranscript(raw []byte) model.Outcome {
	var resp GenerateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return model.Empty("Error parsing transcript: " + err.Error())
	}

	if len(resp.Candidates) == 0 {
		return model.Empty("No response")
	}

	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == "" {
		return model.Empty("No transcript generated")
	}

	return model.Success(parts[0].Text)
}
