// Package provider contains thin clients for external services: translation,
// geocoding, bus arrivals, outgoing mail and Google Calendar. They follow one
// rule: log the failure, return an error (or a fallback), never panic and
// never take down the request path with an unbounded wait.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// translateTimeout bounds each outbound translation call. On timeout or
// failure the next endpoint is tried, then the dictionary fallback.
const translateTimeout = 5 * time.Second

// Translator translates private-message text. Endpoints are tried in order;
// when every endpoint fails the built-in dictionary handles the common
// caregiving phrases word by word so the feature degrades instead of dying.
type Translator struct {
	endpoints []string
	client    *http.Client
	log       *zap.Logger
}

// NewTranslator builds a Translator from a comma-separated endpoint list.
func NewTranslator(endpointCSV string, log *zap.Logger) *Translator {
	var eps []string
	for _, e := range strings.Split(endpointCSV, ",") {
		if e = strings.TrimSpace(e); e != "" {
			eps = append(eps, e)
		}
	}
	return &Translator{
		endpoints: eps,
		client:    &http.Client{Timeout: translateTimeout},
		log:       log,
	}
}

type translateReq struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResp struct {
	TranslatedText string `json:"translatedText"`
}

// Translate returns the translated text and whether a remote endpoint (true)
// or the dictionary fallback (false) produced it.
func (t *Translator) Translate(ctx context.Context, text, targetLang string) (string, bool) {
	for _, ep := range t.endpoints {
		out, err := t.callEndpoint(ctx, ep, text, targetLang)
		if err != nil {
			t.log.Warn("translate endpoint failed", zap.String("endpoint", ep), zap.Error(err))
			continue
		}
		if out != "" {
			return out, true
		}
	}
	return dictionaryTranslate(text, targetLang), false
}

func (t *Translator) callEndpoint(ctx context.Context, endpoint, text, targetLang string) (string, error) {
	body, err := json.Marshal(translateReq{Q: text, Source: "auto", Target: targetLang, Format: "text"})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errStatus(resp.StatusCode)
	}
	var tr translateResp
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}
	return tr.TranslatedText, nil
}

// fallbackDict covers the handful of phrases the care pages actually send
// when every translation endpoint is down. Keys are lower-cased English.
var fallbackDict = map[string]map[string]string{
	"zh": {
		"hello":     "你好",
		"thank you": "谢谢",
		"help":      "帮助",
		"medicine":  "药",
		"doctor":    "医生",
		"hospital":  "医院",
		"yes":       "是",
		"no":        "不是",
	},
	"ms": {
		"hello":     "helo",
		"thank you": "terima kasih",
		"help":      "tolong",
		"medicine":  "ubat",
		"doctor":    "doktor",
		"hospital":  "hospital",
		"yes":       "ya",
		"no":        "tidak",
	},
	"ta": {
		"hello":     "வணக்கம்",
		"thank you": "நன்றி",
		"help":      "உதவி",
		"medicine":  "மருந்து",
		"doctor":    "மருத்துவர்",
		"hospital":  "மருத்துவமனை",
		"yes":       "ஆம்",
		"no":        "இல்லை",
	},
}

// dictionaryTranslate maps whole phrases first, then falls back word by word.
// Unknown words pass through untouched.
func dictionaryTranslate(text, targetLang string) string {
	dict, ok := fallbackDict[strings.ToLower(targetLang)]
	if !ok {
		return text
	}
	lower := strings.ToLower(strings.TrimSpace(text))
	if out, ok := dict[lower]; ok {
		return out
	}
	words := strings.Fields(lower)
	for i, w := range words {
		if out, ok := dict[w]; ok {
			words[i] = out
		}
	}
	return strings.Join(words, " ")
}

type errStatus int

func (e errStatus) Error() string { return "unexpected status " + http.StatusText(int(e)) }
