package wasp

import (
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

const gatewayPath = "/wasp/"

// HTTPTransport posts packets to the programming gateway, which
// forwards them over the radio.  The destination node is part of the
// URL path; the body is the raw payload.
type HTTPTransport struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
}

func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {

	return NewHTTPTransportWithClient(&fasthttp.Client{Name: "wipe"}, baseURL, timeout)
}

func NewHTTPTransportWithClient(c *fasthttp.Client, baseURL string,
	timeout time.Duration) *HTTPTransport {

	return &HTTPTransport{
		client:  c,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
	}
}

func (t *HTTPTransport) Send(p Packet) error {

	if len(p.Payload) > MaxDataLen {
		return ErrPayloadTooLong
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s%s%d", t.baseURL, gatewayPath, p.Dst))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/octet-stream")
	req.SetBody(p.Payload)

	if err := t.client.DoTimeout(req, resp, t.timeout); err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("gateway status %d", resp.StatusCode())
	}

	return nil
}
