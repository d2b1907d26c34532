package translate

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func decodeBody(t *testing.T, body []byte) map[string]string {
	t.Helper()
	var m map[string]string
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	return m
}

func TestOpenTranslatorWireContract(t *testing.T) {
	p := &OpenTranslator{Endpoint: "https://translate.example/translate"}

	spec, err := p.BuildRequest("hello", "en", "it")
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}
	if spec.Method != http.MethodPost {
		t.Errorf("method = %q, want POST", spec.Method)
	}
	body := decodeBody(t, spec.Body)
	want := map[string]string{"q": "hello", "source": "en", "target": "it"}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("body[%q] = %q, want %q", k, body[k], v)
		}
	}
	if len(body) != len(want) {
		t.Errorf("body has extra fields: %v", body)
	}

	got, err := p.ParseResponse([]byte(`{"translatedText":"ciao"}`))
	if err != nil || got != "ciao" {
		t.Errorf("ParseResponse() = %q, %v", got, err)
	}
}

func TestCustomBackendWireContract(t *testing.T) {
	p := &CustomBackend{Endpoint: "https://operator.example/api", APIKey: "k123"}

	spec, err := p.BuildRequest("hello", "en", "de")
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}
	body := decodeBody(t, spec.Body)
	if body["text"] != "hello" || body["target"] != "de" {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["source"]; ok {
		t.Error("custom backend request must not carry a source field")
	}
	if got := spec.Header.Get("X-Api-Key"); got != "k123" {
		t.Errorf("X-Api-Key = %q", got)
	}

	// No key configured: no header.
	spec, _ = (&CustomBackend{Endpoint: "x"}).BuildRequest("a", "b", "c")
	if spec.Header.Get("X-Api-Key") != "" {
		t.Error("unexpected API key header without a configured key")
	}

	got, err := p.ParseResponse([]byte(`{"translated":"hallo"}`))
	if err != nil || got != "hallo" {
		t.Errorf("ParseResponse() = %q, %v", got, err)
	}
}

func TestPublicFallbackWireContract(t *testing.T) {
	p := &PublicFallback{Endpoint: "https://memory.example/get"}

	spec, err := p.BuildRequest("good morning", "en", "fr")
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}
	if spec.Method != http.MethodGet {
		t.Errorf("method = %q, want GET", spec.Method)
	}
	if spec.Body != nil {
		t.Error("GET request must not carry a body")
	}
	wantURL := "https://memory.example/get?langpair=en%7Cfr&q=good+morning"
	if spec.URL != wantURL {
		t.Errorf("URL = %q, want %q", spec.URL, wantURL)
	}

	got, err := p.ParseResponse([]byte(`{"responseData":{"translatedText":"bonjour"},"responseStatus":200}`))
	if err != nil || got != "bonjour" {
		t.Errorf("ParseResponse() = %q, %v", got, err)
	}
}

func TestParseResponseFailures(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		raw      string
		wantErr  error
	}{
		{"primary malformed", &OpenTranslator{}, `not json`, ErrMalformedResponse},
		{"primary empty", &OpenTranslator{}, `{"translatedText":""}`, ErrEmptyResult},
		{"primary missing field", &OpenTranslator{}, `{}`, ErrEmptyResult},
		{"secondary malformed", &CustomBackend{}, `[]`, ErrMalformedResponse},
		{"secondary empty", &CustomBackend{}, `{"translated":""}`, ErrEmptyResult},
		{"tertiary malformed", &PublicFallback{}, `{`, ErrMalformedResponse},
		{"tertiary non-200 status", &PublicFallback{}, `{"responseData":{"translatedText":"x"},"responseStatus":403}`, ErrMalformedResponse},
		{"tertiary empty", &PublicFallback{}, `{"responseData":{"translatedText":""},"responseStatus":200}`, ErrEmptyResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.provider.ParseResponse([]byte(tt.raw))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseResponse(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}
