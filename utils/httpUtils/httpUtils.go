package httpUtils

import (
	"net"
	"net/http"
	"time"
)

var DefaultHttpClient *http.Client

func init() {
	DefaultHttpClient = createHTTPClient()
}

// Completions can take minutes before the first byte arrives, so only the
// connection phases are bounded here. Callers bound the whole request with a context.
func createHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = 7 * time.Second
	transport.MaxIdleConnsPerHost = 20
	transport.IdleConnTimeout = 5 * time.Minute

	client := &http.Client{
		Transport: transport,
	}

	return client
}
