package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"hospital-scheduler/config"
)

// DefaultLang is the language doctor records are stored in
const DefaultLang = "en"

var ErrTranslate = errors.New("translation failed")

// Translator renders English text in the target language
type Translator interface {
	Translate(ctx context.Context, text, lang string) (string, error)
}

var langAliases = map[string]string{
	"en-us": "en",
	"en-in": "en",
	"en-gb": "en",
	"hi-in": "hi",
	"te-in": "te",
	"ta-in": "ta",
	"kn-in": "kn",
	"mr-in": "mr",
}

// NormalizeLang lowercases a language tag and maps regional variants to the
// base code ("en_IN" -> "en", "hi-IN" -> "hi"). Empty input means English.
func NormalizeLang(lang string) string {
	l := strings.ToLower(strings.TrimSpace(lang))
	l = strings.ReplaceAll(l, "_", "-")
	if l == "" {
		return DefaultLang
	}
	if base, ok := langAliases[l]; ok {
		return base
	}
	if i := strings.IndexByte(l, '-'); i > 0 {
		return l[:i]
	}
	return l
}

// Passthrough returns the translation of text, or text itself for English,
// empty input or any translator failure.
func Passthrough(ctx context.Context, t Translator, text, lang string) string {
	lang = NormalizeLang(lang)
	if t == nil || lang == DefaultLang || strings.TrimSpace(text) == "" {
		return text
	}
	out, err := t.Translate(ctx, text, lang)
	if err != nil || out == "" {
		return text
	}
	return out
}

// HTTPTranslator talks to a LibreTranslate compatible /translate endpoint
type HTTPTranslator struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPTranslator(cfg config.TranslateConfig) *HTTPTranslator {
	return &HTTPTranslator{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

func (t *HTTPTranslator) Translate(ctx context.Context, text, lang string) (string, error) {
	lang = NormalizeLang(lang)
	if lang == DefaultLang {
		return text, nil
	}
	if t.endpoint == "" {
		return "", fmt.Errorf("%w: no endpoint configured", ErrTranslate)
	}

	body, err := json.Marshal(translateRequest{
		Q:      text,
		Source: DefaultLang,
		Target: lang,
		Format: "text",
		APIKey: t.apiKey,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslate, err)
	}
	defer resp.Body.Close()

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrTranslate, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrTranslate, resp.StatusCode, out.Error)
	}
	return out.TranslatedText, nil
}
