package transport

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_Proxy(t *testing.T) {
	c := NewHTTPClient("http://proxy.local:8080", 5*time.Second)
	assert.Equal(t, 5*time.Second, c.Timeout)

	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, tr.Proxy)
	req, err := http.NewRequest(http.MethodGet, "https://api.coingecko.com", nil)
	require.NoError(t, err)
	u, err := tr.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "proxy.local:8080", u.Host)
}

func TestNewHTTPClient_NoProxy(t *testing.T) {
	for _, proxy := range []string{"", "://bad"} {
		c := NewHTTPClient(proxy, time.Second)
		tr, ok := c.Transport.(*http.Transport)
		require.True(t, ok)
		assert.Nil(t, tr.Proxy, "proxy %q", proxy)
	}
}
