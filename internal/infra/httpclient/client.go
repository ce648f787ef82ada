package httpclient

import (
	"bytes"
	"context"
	"net/http"
	"time"
)

type Options struct {
	Timeout time.Duration
}

// Client is a thin wrapper over http.Client. Requests are issued exactly once;
// callers decide what a non-2xx status means.
type Client struct {
	client *http.Client
}

func New(opts Options) *Client {
	return &Client{
		client: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.client.Do(req.WithContext(ctx))
}

// Post sends body with the given extra headers. Credentials belong in header,
// never in url: transport errors quote the url verbatim.
func (c *Client) Post(ctx context.Context, url string, contentType string, body []byte, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(ctx, req)
}

func (c *Client) PostJSON(ctx context.Context, url string, body []byte, header http.Header) (*http.Response, error) {
	return c.Post(ctx, url, "application/json", body, header)
}
