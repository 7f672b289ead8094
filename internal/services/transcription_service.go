package services

import (
	"context"
	"io"
	"strings"
)

// Transcriber converts a recorded audio blob to text through an external
// speech-to-text provider.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

// MediaStore persists an audio blob and returns a durable URL for it.
type MediaStore interface {
	Save(audio io.Reader, filename string) (string, error)
}

// TranscriptionService is the gateway between uploaded recordings, the blob
// store, and the external speech-to-text provider. It never retries a failed
// provider call; the client decides whether to record another take.
type TranscriptionService struct {
	media MediaStore
	stt   Transcriber
}

func NewTranscriptionService(media MediaStore, stt Transcriber) *TranscriptionService {
	return &TranscriptionService{media: media, stt: stt}
}

// Transcribe forwards the blob to the provider and returns its text verbatim.
// Empty uploads are rejected before any provider call is made.
func (s *TranscriptionService) Transcribe(ctx context.Context, audio io.Reader, filename string, size int64) (string, error) {
	if audio == nil || size == 0 {
		return "", NewInvalidError("audio file is empty")
	}
	text, err := s.stt.Transcribe(ctx, audio, filename)
	if err != nil {
		return "", NewUnavailableError("transcription service unavailable")
	}
	if strings.TrimSpace(text) == "" {
		return "", NewUnavailableError("transcription produced no text")
	}
	return text, nil
}

// StoreAudio writes the blob to durable storage and returns its URL.
func (s *TranscriptionService) StoreAudio(audio io.Reader, filename string, size int64) (string, error) {
	if audio == nil || size == 0 {
		return "", NewInvalidError("audio file is empty")
	}
	url, err := s.media.Save(audio, filename)
	if err != nil {
		return "", NewUnavailableError("failed to store audio")
	}
	return url, nil
}
