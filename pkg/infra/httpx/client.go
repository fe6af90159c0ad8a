package httpx

import "net/http"

// Client is the outbound HTTP surface used by the moderation components.
// Both *http.Client and FastHTTPClient satisfy it.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}
