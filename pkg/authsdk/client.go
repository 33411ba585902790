package authsdk

import (
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// SDKClient talks to the gateway. Session cookies set by the gateway are kept
// in the client's cookie jar, so a Login followed by Me works like a browser.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// Origin, when set, is sent as the Origin header so the gateway builds
	// redirects for that web origin.
	Origin string
}

// NewSDKClient creates a client with its own cookie jar. Redirects are not
// followed so callers can inspect the callback's Location.
func NewSDKClient(baseURL string) *SDKClient {
	jar, _ := cookiejar.New(nil)
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Cookie returns the value of the named cookie held for the gateway.
func (c *SDKClient) Cookie(name string) (string, bool) {
	if c.HTTPClient.Jar == nil {
		return "", false
	}
	req, err := http.NewRequest(http.MethodGet, c.BaseURL, nil)
	if err != nil {
		return "", false
	}
	for _, ck := range c.HTTPClient.Jar.Cookies(req.URL) {
		if ck.Name == name {
			return ck.Value, true
		}
	}
	return "", false
}
