package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/desk-rental-marketplace/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	hdr.Add("X-Custom", "a")
	hdr.Add("X-Custom", "b")
	body := []byte(`{"desks":[]}`)

	encoded, err := encodePayload(http.StatusOK, hdr, body)
	assert.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(encoded)
	assert.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, []string{"a", "b"}, gotHdr["X-Custom"])
	assert.Equal(t, body, gotBody)
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	_, _, _, ok := decodePayload([]byte("short"))
	assert.False(t, ok)

	// Header length pointing past the end of the buffer.
	bad := make([]byte, 8)
	bad[7] = 0xFF
	_, _, _, ok = decodePayload(bad)
	assert.False(t, ok)
}

func TestCacheKeyVariesByRouteAndQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache"}
	e := echo.New()

	key := func(target string) string {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/v1/desks")
		return cacheKeyFrom(cfg, c)
	}

	assert.Equal(t, key("/v1/desks?city=berlin"), key("/v1/desks?city=berlin"))
	assert.NotEqual(t, key("/v1/desks?city=berlin"), key("/v1/desks?city=munich"))
	assert.NotEqual(t, key("/v1/desks"), key("/v1/desks?city=berlin"))
}

func TestAsInt64Conversions(t *testing.T) {
	assert.Equal(t, int64(5), asInt64(int64(5)))
	assert.Equal(t, int64(5), asInt64("5"))
	assert.Equal(t, int64(5), asInt64(float64(5.0)))
	assert.Equal(t, int64(0), asInt64("nope"))
	assert.Equal(t, int64(0), asInt64(nil))
}
