package gemini

import (
	"encoding/base64"
	"testing"
	"time"

	"callscribe/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJob() model.Job {
	return model.Job{
		Language:     model.LanguageMixed,
		MinSpeakers:  2,
		MaxSpeakers:  4,
		APIKey:       "key",
		FetchTimeout: 30 * time.Second,
		CallTimeout:  2 * time.Minute,
	}
}

func TestBuildRequest_PromptContents(t *testing.T) {
	payload := &model.MediaPayload{Data: []byte("audio-bytes"), MimeType: "audio/wav"}

	req := BuildRequest(testJob(), payload)

	require.Len(t, req.Contents, 1)
	require.Len(t, req.Contents[0].Parts, 2)

	prompt := req.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "Mixed English and Hindi (code-switching)")
	assert.Contains(t, prompt, "at least 2 speakers")
	assert.Contains(t, prompt, "up to 4 different speakers")
	assert.Contains(t, prompt, `Speaker X - "text here" [startTime ms to endTime ms]`)
	assert.Contains(t, prompt, `Speaker 1 - "Hello, how can I help?" [0ms to 2500ms]`)
}

func TestBuildRequest_InlineAudio(t *testing.T) {
	payload := &model.MediaPayload{Data: []byte("audio-bytes"), MimeType: "audio/wav"}

	req := BuildRequest(testJob(), payload)

	inline := req.Contents[0].Parts[1].InlineData
	require.NotNil(t, inline)
	assert.Equal(t, "audio/wav", inline.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("audio-bytes")), inline.Data)
}

func TestBuildRequest_FixedGenerationParameters(t *testing.T) {
	payload := &model.MediaPayload{Data: []byte("x"), MimeType: "audio/mpeg"}

	req := BuildRequest(testJob(), payload)

	assert.Equal(t, 0.3, req.GenerationConfig.Temperature)
	assert.Equal(t, 40, req.GenerationConfig.TopK)
	assert.Equal(t, 0.95, req.GenerationConfig.TopP)
	assert.Equal(t, 4096, req.GenerationConfig.MaxOutputTokens)
}

func TestBuildRequest_Deterministic(t *testing.T) {
	payload := &model.MediaPayload{Data: []byte("same"), MimeType: "audio/ogg"}

	first := BuildRequest(testJob(), payload)
	second := BuildRequest(testJob(), payload)

	assert.Equal(t, first, second)
}
