package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiator_Match(t *testing.T) {
	n := NewNegotiator([]string{"en", "ko"})
	cases := map[string]string{
		"":                        "en",
		"ko-KR,ko;q=0.9,en;q=0.8": "ko",
		"en-US,en;q=0.9":          "en",
		"fr-FR,fr;q=0.9":          "en",
		"fr;q=0.9, ko;q=0.5":      "ko",
		"*":                       "en",
	}
	for in, want := range cases {
		assert.Equal(t, want, n.Match(in), "Accept-Language %q", in)
	}
}

func TestEnrich_AttachesInfo(t *testing.T) {
	var got *RequestInfo
	h := Enrich(NewNegotiator([]string{"en", "ko"}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/en/blog", nil)
	req.Header.Set("Accept-Language", "ko")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "ko", got.Locale)
	assert.Equal(t, []string{"ko"}, got.Languages)
	assert.Equal(t, "203.0.113.9", got.IP.String())
	assert.True(t, got.UA.IsBot)
	assert.Equal(t, "/en/blog", got.URL.Path)
}

func TestFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, FromContext(req.Context()))
}
