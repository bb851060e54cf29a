package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTranslateUsesEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req translateReq
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "zh", req.Target)
		_ = json.NewEncoder(w).Encode(translateResp{TranslatedText: "你好，世界"})
	}))
	defer srv.Close()

	tr := NewTranslator(srv.URL, zap.NewNop())
	out, remote := tr.Translate(context.Background(), "hello world", "zh")
	assert.True(t, remote)
	assert.Equal(t, "你好，世界", out)
}

func TestTranslateTriesEndpointsInOrder(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(translateResp{TranslatedText: "terima kasih"})
	}))
	defer good.Close()

	tr := NewTranslator(bad.URL+","+good.URL, zap.NewNop())
	out, remote := tr.Translate(context.Background(), "thank you", "ms")
	assert.True(t, remote)
	assert.Equal(t, "terima kasih", out)
}

func TestTranslateFallsBackToDictionary(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()

	tr := NewTranslator(bad.URL, zap.NewNop())
	out, remote := tr.Translate(context.Background(), "thank you", "zh")
	assert.False(t, remote)
	assert.Equal(t, "谢谢", out)
}

func TestDictionaryTranslate(t *testing.T) {
	assert.Equal(t, "谢谢", dictionaryTranslate("Thank You", "zh"))
	assert.Equal(t, "tolong doktor", dictionaryTranslate("help doctor", "ms"))
	// Unknown words pass through.
	assert.Equal(t, "bring the 药", dictionaryTranslate("bring the medicine", "zh"))
	// Unknown language returns input untouched.
	assert.Equal(t, "hello", dictionaryTranslate("hello", "fr"))
}

func TestTranslateNoEndpointsConfigured(t *testing.T) {
	tr := NewTranslator("", zap.NewNop())
	out, remote := tr.Translate(context.Background(), "hospital", "ta")
	assert.False(t, remote)
	assert.Equal(t, "மருத்துவமனை", out)
}
