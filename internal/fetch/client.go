// Package fetch provides the outbound HTTP client used by metadata probes and
// the direct-fetch relay. It impersonates a real browser at the TLS layer so
// trivial anti-bot checks on the media platforms do not poison the probe tiers.
package fetch

import (
	"fmt"
	"net/http"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Doer is the minimal client surface the probes and proxy depend on.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type tlsWrapper struct {
	inner tls_client.HttpClient
}

func (w *tlsWrapper) Do(req *http.Request) (*http.Response, error) {
	fReq := &fhttp.Request{
		Method:        req.Method,
		URL:           req.URL,
		Proto:         req.Proto,
		ProtoMajor:    req.ProtoMajor,
		ProtoMinor:    req.ProtoMinor,
		Header:        make(fhttp.Header),
		Body:          req.Body,
		ContentLength: req.ContentLength,
		Host:          req.Host,
	}
	for k, v := range req.Header {
		fReq.Header[k] = v
	}
	if ctx := req.Context(); ctx != nil {
		fReq = fReq.WithContext(ctx)
	}

	resp, err := w.inner.Do(fReq)
	if err != nil {
		return nil, err
	}

	netResp := &http.Response{
		Status:           resp.Status,
		StatusCode:       resp.StatusCode,
		Proto:            resp.Proto,
		ProtoMajor:       resp.ProtoMajor,
		ProtoMinor:       resp.ProtoMinor,
		ContentLength:    resp.ContentLength,
		Body:             resp.Body,
		Header:           make(http.Header),
		Uncompressed:     resp.Uncompressed,
		TransferEncoding: resp.TransferEncoding,
		Request:          req,
	}
	for k, v := range resp.Header {
		netResp.Header[k] = v
	}
	return netResp, nil
}

// RelayTimeout is the overall request budget for body relays. Full-length
// videos can take many minutes to stream, so the relay client must not share
// the probe client's short budget.
const RelayTimeout = 10 * time.Minute

// NewRelayClient builds the Doer the streaming proxy relays bodies through.
// Probes bound their own requests with context timeouts; relays only carry
// this long stop-gap so a wedged upstream cannot hold a connection forever.
func NewRelayClient() (Doer, error) {
	return NewBrowserClient(RelayTimeout)
}

// NewBrowserClient builds a Doer with a Chrome TLS fingerprint and the given
// overall request timeout.
func NewBrowserClient(timeout time.Duration) (Doer, error) {
	jar := tls_client.NewCookieJar()
	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(int(timeout.Seconds())),
		tls_client.WithClientProfile(profiles.DefaultClientProfile),
		tls_client.WithRandomTLSExtensionOrder(),
		tls_client.WithCookieJar(jar),
		// Some platforms serve media through proxied hosts without valid
		// certificate chains.
		tls_client.WithInsecureSkipVerify(),
	}

	c, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("fetch: create tls client: %w", err)
	}
	return &tlsWrapper{inner: c}, nil
}

// BrowserHeaders applies a desktop browser user agent plus the platform's
// Referer and Origin to req, leaving caller-set values alone.
func BrowserHeaders(req *http.Request, referer string) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if referer != "" {
		if req.Header.Get("Referer") == "" {
			req.Header.Set("Referer", referer)
		}
		if req.Header.Get("Origin") == "" {
			req.Header.Set("Origin", trimPath(referer))
		}
	}
}

func trimPath(u string) string {
	// Keep scheme://host only.
	for i := 0; i < len(u); i++ {
		if u[i] == '/' && i+1 < len(u) && u[i+1] == '/' {
			rest := u[i+2:]
			for j := 0; j < len(rest); j++ {
				if rest[j] == '/' {
					return u[:i+2] + rest[:j]
				}
			}
			return u
		}
	}
	return u
}
