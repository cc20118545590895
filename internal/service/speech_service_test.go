package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"speech_therapy_backend/internal/config"
	"speech_therapy_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attempt.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF fake wav payload"), 0644))
	return path
}

func TestWhisperClientTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "attempt.wav", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "  cat  "}`))
	}))
	defer server.Close()

	client := NewWhisperClient(config.SpeechConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "whisper-1",
		Timeout: 5 * time.Second,
	})

	text, err := client.Transcribe(context.Background(), writeTestAudio(t))
	require.NoError(t, err)
	assert.Equal(t, "cat", text)
}

func TestWhisperClientTranscribeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewWhisperClient(config.SpeechConfig{BaseURL: server.URL, Model: "whisper-1", Timeout: 5 * time.Second})

	_, err := client.Transcribe(context.Background(), writeTestAudio(t))
	assert.ErrorIs(t, err, util.ErrSpeechUnavailable)
}

func TestWhisperClientTranscribeMissingFile(t *testing.T) {
	client := NewWhisperClient(config.SpeechConfig{BaseURL: "http://127.0.0.1:0", Model: "whisper-1"})

	_, err := client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}
