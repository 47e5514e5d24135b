package gemini

import (
	"encoding/base64"
	"fmt"

	"callscribe/pkg/model"
)

// Fixed generation parameters. Low temperature keeps the output close to
// the mandated line grammar; the token cap bounds runaway transcripts.
const (
	temperature     = 0.3
	topK            = 40
	topP            = 0.95
	maxOutputTokens = 4096
)

const promptTemplate = `Transcribe this call recording in %s.

IMPORTANT REQUIREMENTS:
1. Identify and label different speakers (Speaker 1, Speaker 2, etc.)
2. Include timestamps in milliseconds for each speaker's segment [startMs to endMs]
3. Format: Speaker X - "text here" [startTime ms to endTime ms]
4. Ensure you capture at least %d speakers if present
5. Check for up to %d different speakers
6. Use exact language of the audio
7. Include punctuation

Output format example:
Speaker 1 - "Hello, how can I help?" [0ms to 2500ms]
Speaker 2 - "I need help with my account" [2600ms to 5000ms]
Speaker 1 - "Sure, let me look that up" [5100ms to 8000ms]

Now transcribe the audio:`

// BuildRequest assembles the transcription request for one recording from
// the job configuration and the downloaded audio. Pure and total: the same
// job and payload always produce the same request.
func BuildRequest(job model.Job, payload *model.MediaPayload) *GenerateRequest {
	prompt := fmt.Sprintf(promptTemplate,
		job.Language.PromptDescription(),
		job.MinSpeakers,
		job.MaxSpeakers,
	)

	return &GenerateRequest{
		Contents: []Content{
			{
				Parts: []Part{
					{Text: prompt},
					{
						InlineData: &InlineData{
							MimeType: payload.MimeType,
							Data:     base64.StdEncoding.EncodeToString(payload.Data),
						},
					},
				},
			},
		},
		GenerationConfig: GenerationConfig{
			Temperature:     temperature,
			TopK:            topK,
			TopP:            topP,
			MaxOutputTokens: maxOutputTokens,
		},
	}
}
