package gemini

// GenerateRequest is the generateContent request body.
type GenerateRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

// Content groups the parts of one request turn.
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is either an instruction text or an inline media payload.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
}

// InlineData carries base64-encoded audio tagged with its media type.
type InlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// GenerationConfig holds the fixed generation parameters.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// GenerateResponse is the success response shape: the transcript is the
// first text part of the first candidate.
type GenerateResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one completion candidate.
type Candidate struct {
	Content CandidateContent `json:"content"`
}

// CandidateContent holds a candidate's content parts.
type CandidateContent struct {
	Parts []CandidatePart `json:"parts"`
}

// CandidatePart is one text fragment of a candidate.
type CandidatePart struct {
	Text string `json:"text"`
}

// ErrorResponse is the structured error body returned on non-2xx status.
type ErrorResponse struct {
	Error *ErrorBody `json:"error"`
}

// ErrorBody carries the remote failure details.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}
