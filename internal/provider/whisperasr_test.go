package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeMedia(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(path, []byte("fake-audio"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestASRClient_Transcribe(t *testing.T) {
	var gotPath, gotOutput, gotLanguage string
	var gotFilename string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotOutput = r.URL.Query().Get("output")
		gotLanguage = r.URL.Query().Get("language")

		file, header, err := r.FormFile("audio_file")
		if err != nil {
			t.Errorf("missing audio_file part: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		file.Close()
		gotFilename = header.Filename

		json.NewEncoder(w).Encode(asrResponse{
			Text:     "hello world",
			Language: "en",
			Segments: []Segment{
				{Start: 0, End: 2.5, Text: "hello"},
				{Start: 2.5, End: 5, Text: "world"},
			},
		})
	}))
	defer srv.Close()

	client := NewASRClient(srv.URL)
	res, err := client.Transcribe(context.Background(), writeMedia(t), Options{Language: "en"})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if gotPath != "/asr" {
		t.Errorf("path = %q, want /asr", gotPath)
	}
	if gotOutput != "json" {
		t.Errorf("output = %q, want json", gotOutput)
	}
	if gotLanguage != "en" {
		t.Errorf("language = %q, want en", gotLanguage)
	}
	if gotFilename != "clip.mp3" {
		t.Errorf("uploaded filename = %q", gotFilename)
	}
	if res.Text != "hello world" || res.Language != "en" {
		t.Errorf("result = %+v", res)
	}
	if len(res.Segments) != 2 || res.Segments[1].Text != "world" {
		t.Errorf("segments = %+v", res.Segments)
	}
}

func TestASRClient_AutoLanguageOmitted(t *testing.T) {
	var hadLanguage bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadLanguage = r.URL.Query()["language"]
		json.NewEncoder(w).Encode(asrResponse{Text: "x"})
	}))
	defer srv.Close()

	client := NewASRClient(srv.URL)
	if _, err := client.Transcribe(context.Background(), writeMedia(t), Options{Language: "auto"}); err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if hadLanguage {
		t.Error("auto language should not be sent")
	}
}

func TestASRClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewASRClient(srv.URL)
	_, err := client.Transcribe(context.Background(), writeMedia(t), Options{})
	if err == nil {
		t.Fatal("expected error on 500")
	}
	if !errors.Is(err, ErrProvider) {
		t.Errorf("error should wrap ErrProvider: %v", err)
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error should carry the status: %v", err)
	}
	if !isRetryable(err) {
		t.Error("5xx response should be retryable")
	}
}

func TestASRClient_ClientErrorNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unsupported media", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewASRClient(srv.URL)
	_, err := client.Transcribe(context.Background(), writeMedia(t), Options{})
	if err == nil {
		t.Fatal("expected error on 422")
	}
	if isRetryable(err) {
		t.Error("4xx response must not be retryable")
	}
}

func TestASRClient_MissingFile(t *testing.T) {
	client := NewASRClient("http://localhost:9000")
	_, err := client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"), Options{})
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider for missing file, got %v", err)
	}
}

func TestASRClient_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewASRClient(srv.URL)
	if _, err := client.Transcribe(context.Background(), writeMedia(t), Options{}); !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider for bad JSON, got %v", err)
	}
}

func TestBuildURL_KeepsExistingPath(t *testing.T) {
	client := NewASRClient("http://host:9000/whisper/asr")

	got, err := client.buildURL(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "http://host:9000/whisper/asr?") {
		t.Errorf("explicit path should be kept: %q", got)
	}
}
