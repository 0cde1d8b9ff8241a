package flows

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// TranscriptionInput carries a recorded voice note as a base64 data URI.
type TranscriptionInput struct {
	AudioDataURI string `json:"audioDataUri"`
}

// TranscriptionOutput is the recognized text.
type TranscriptionOutput struct {
	Transcript string `json:"transcript"`
}

// TranscriptionFlow transcribes voice notes recorded in the field.
var TranscriptionFlow = define[TranscriptionInput, TranscriptionOutput](
	Transcription,
	"Transcribes a voice note supplied as a base64 data URI.",
	object([]string{"audioDataUri"}, map[string]*jsonschema.Schema{
		"audioDataUri": pattern("Audio as data:<mimetype>;base64,<payload>", `^data:audio/[a-zA-Z0-9.+-]+(;[^;,]+)*;base64,[A-Za-z0-9+/]+={0,2}$`),
	}),
	object([]string{"transcript"}, map[string]*jsonschema.Schema{
		"transcript": str("Verbatim transcript of the audio"),
	}),
	`Transcribe the attached audio recording verbatim. The speaker is a field sales
representative logging notes about a customer visit; keep names, numbers and amounts exactly as spoken.
Respond with a JSON object containing "transcript".`,
	func(in TranscriptionInput) ([]Media, error) {
		m, err := parseDataURI(in.AudioDataURI)
		if err != nil {
			return nil, err
		}
		return []Media{m}, nil
	},
)

func parseDataURI(uri string) (Media, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Media{}, errors.New("data uri must start with data:")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return Media{}, errors.New("data uri must be base64 encoded")
	}
	mimeType, _, _ := strings.Cut(strings.TrimSuffix(meta, ";base64"), ";")
	if mimeType == "" {
		return Media{}, errors.New("data uri missing mime type")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Media{}, err
	}
	if len(data) == 0 {
		return Media{}, errors.New("data uri payload is empty")
	}
	return Media{MIMEType: mimeType, Data: data}, nil
}
