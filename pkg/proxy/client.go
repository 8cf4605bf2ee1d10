// Package proxy talks to the control-plane HTTP service (oio-proxy).
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/open-io/oio-sharding/pkg/oiolog"
)

const (
	apiVersion = "v3.0"

	HeaderRequestID         = "X-oio-req-id"
	HeaderShardingTimestamp = "X-oio-sharding-timestamp"
	HeaderShardingQueueURL  = "X-oio-sharding-queue-url"
)

type Config struct {
	ProxyURL  string
	Namespace string
	// Timeout bounds every single request, zero means no bound.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Target addresses a container either by its id or by account and
// reference, with an optional object path.
type Target struct {
	Account   string
	Reference string
	Path      string
	Cid       string
}

func (t Target) params() url.Values {
	params := url.Values{}
	if t.Cid != "" {
		params.Set("cid", t.Cid)
	} else {
		params.Set("acct", t.Account)
		params.Set("ref", t.Reference)
	}
	if t.Path != "" {
		params.Set("path", t.Path)
	}
	return params
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client issues requests under one request prefix of the namespace API,
// e.g. "/container/sharding".
type Client struct {
	endpoint   string
	prefix     string
	timeout    time.Duration
	httpClient *http.Client
}

func newClient(cfg Config, prefix string) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	base := strings.TrimRight(cfg.ProxyURL, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		endpoint:   base + "/" + apiVersion + "/" + url.PathEscape(cfg.Namespace),
		prefix:     prefix,
		timeout:    cfg.Timeout,
		httpClient: hc,
	}
}

func (c *Client) request(ctx context.Context, method, path string, target Target, extra url.Values, payload any) (*Response, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "proxy"+c.prefix+path)
	defer span.Finish()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := target.params()
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	reqURL := c.endpoint + c.prefix + path + "?" + params.Encode()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode request payload")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build request %s %s", method, path)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set(HeaderRequestID, reqID)
	span.SetTag("http.method", method)
	span.SetTag("http.url", reqURL)
	span.SetTag("oio.req_id", reqID)

	oiolog.Zero.Debug().
		Str("method", method).
		Str("url", reqURL).
		Str("req-id", reqID).
		Msg("proxy: sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.SetTag("error", true)
		return nil, errors.Wrapf(err, "%s %s", method, c.prefix+path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read response of %s %s", method, c.prefix+path)
	}
	span.SetTag("http.status_code", resp.StatusCode)

	oiolog.Zero.Debug().
		Str("method", method).
		Str("url", reqURL).
		Str("req-id", reqID).
		Int("status", resp.StatusCode).
		Msg("proxy: got response")

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
