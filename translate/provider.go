// Package translate turns page text into translated text through an ordered
// waterfall of unreliable translation services.
package translate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/overlaykit/speechcore/gateway"
)

// Provider wraps one translation service's wire contract. List order in the
// waterfall is the fallback priority.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string

	// BuildRequest produces the outbound request for one chunk of text.
	BuildRequest(text, source, target string) (gateway.RequestSpec, error)

	// ParseResponse extracts the translation from a raw response body. It
	// returns ErrEmptyResult or ErrMalformedResponse when the body is
	// unusable; the waterfall treats either as this provider's failure.
	ParseResponse(raw []byte) (string, error)
}

// OpenTranslator is the primary provider: a generic open translation
// service speaking the LibreTranslate wire shape.
type OpenTranslator struct {
	Endpoint string
}

// Name implements Provider.
func (p *OpenTranslator) Name() string { return "open-translator" }

// BuildRequest implements Provider.
func (p *OpenTranslator) BuildRequest(text, source, target string) (gateway.RequestSpec, error) {
	body, err := json.Marshal(map[string]string{
		"q":      text,
		"source": source,
		"target": target,
	})
	if err != nil {
		return gateway.RequestSpec{}, fmt.Errorf("encode request: %w", err)
	}
	return gateway.RequestSpec{
		Method: http.MethodPost,
		URL:    p.Endpoint,
		Body:   body,
	}, nil
}

// ParseResponse implements Provider.
func (p *OpenTranslator) ParseResponse(raw []byte) (string, error) {
	var resp struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if resp.TranslatedText == "" {
		return "", ErrEmptyResult
	}
	return resp.TranslatedText, nil
}

// CustomBackend is the secondary provider: an operator-configured backend
// with an optional API-key header.
type CustomBackend struct {
	Endpoint string
	APIKey   string
}

// Name implements Provider.
func (p *CustomBackend) Name() string { return "custom-backend" }

// BuildRequest implements Provider.
func (p *CustomBackend) BuildRequest(text, _, target string) (gateway.RequestSpec, error) {
	body, err := json.Marshal(map[string]string{
		"text":   text,
		"target": target,
	})
	if err != nil {
		return gateway.RequestSpec{}, fmt.Errorf("encode request: %w", err)
	}
	spec := gateway.RequestSpec{
		Method: http.MethodPost,
		URL:    p.Endpoint,
		Body:   body,
	}
	if p.APIKey != "" {
		spec.Header = http.Header{"X-Api-Key": []string{p.APIKey}}
	}
	return spec, nil
}

// ParseResponse implements Provider.
func (p *CustomBackend) ParseResponse(raw []byte) (string, error) {
	var resp struct {
		Translated string `json:"translated"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if resp.Translated == "" {
		return "", ErrEmptyResult
	}
	return resp.Translated, nil
}

// PublicFallback is the tertiary provider: a public memory-backed service
// queried over GET with a langpair parameter.
type PublicFallback struct {
	Endpoint string
}

// Name implements Provider.
func (p *PublicFallback) Name() string { return "public-fallback" }

// BuildRequest implements Provider.
func (p *PublicFallback) BuildRequest(text, source, target string) (gateway.RequestSpec, error) {
	query := url.Values{}
	query.Set("q", text)
	query.Set("langpair", source+"|"+target)
	return gateway.RequestSpec{
		Method: http.MethodGet,
		URL:    p.Endpoint + "?" + query.Encode(),
	}, nil
}

// ParseResponse implements Provider. The service reports its own status in
// the body; a non-200 responseStatus counts as failure even on HTTP 200.
func (p *PublicFallback) ParseResponse(raw []byte) (string, error) {
	var resp struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
		ResponseStatus int `json:"responseStatus"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if resp.ResponseStatus != 200 {
		return "", fmt.Errorf("%w: responseStatus %d", ErrMalformedResponse, resp.ResponseStatus)
	}
	if resp.ResponseData.TranslatedText == "" {
		return "", ErrEmptyResult
	}
	return resp.ResponseData.TranslatedText, nil
}
