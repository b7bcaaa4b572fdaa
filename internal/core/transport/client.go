// Package transport issues the panel's asynchronous HTTP calls. Each call
// completes exactly once, with an Outcome, and can be cancelled.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrConstruct is returned by Send when a request cannot be built. No call
// is started in that case.
var ErrConstruct = errors.New("cannot construct request")

const (
	acceptJSON = "application/json"
	acceptHTML = "text/html,application/xhtml+xml"
	formType   = "application/x-www-form-urlencoded"

	tracerName = "github.com/colonyops/flypanel/internal/core/transport"
)

// Request describes one call. Params form the body of a POST and are
// appended to the query string of any other method.
type Request struct {
	Method string
	URL    string
	Params Params
}

// Outcome is the terminal state of a call. Status is 0 when no response was
// received (network failure or cancellation); Err says why.
type Outcome struct {
	Status     int
	StatusText string
	Body       []byte
	Err        error
}

// Client sends requests. The zero value is not usable; call New.
type Client struct {
	http   *http.Client
	log    zerolog.Logger
	tracer trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its cookie jar, if any, is
// shared by every call and page fetch.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each call. Zero, the default, never times out.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// New returns a Client with a fresh cookie jar.
func New(opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		http:   &http.Client{Jar: jar},
		log:    zerolog.Nop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send starts req in the background and returns its Call. The call ends when
// ctx is done, when Cancel is called, or when the response body is read.
func (c *Client) Send(ctx context.Context, req Request) (*Call, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	target := req.URL
	var body io.Reader
	if method == http.MethodPost {
		body = strings.NewReader(req.Params.Encode())
	} else {
		target = AppendQuery(target, req.Params)
	}

	id := ulid.Make().String()
	ctx, cancel := context.WithCancel(ctx)
	ctx, span := c.tracer.Start(ctx, "transport.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", target),
			attribute.String("flypanel.request_id", id),
		),
	)

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "construct")
		span.End()
		cancel()
		c.log.Error().Err(err).Str("request_id", id).Str("url", target).Msg("cannot construct request")
		return nil, fmt.Errorf("%w: %w", ErrConstruct, err)
	}
	httpReq.Header.Set("Accept", acceptJSON)
	if body != nil {
		httpReq.Header.Set("Content-Type", formType)
	}

	call := &Call{
		ID:      id,
		Request: Request{Method: method, URL: target, Params: req.Params},
		done:    make(chan struct{}),
		cancel:  cancel,
	}

	c.log.Debug().Ctx(ctx).Str("request_id", id).Str("method", method).Str("url", target).Msg("request started")
	go c.run(httpReq, call, span)
	return call, nil
}

func (c *Client) run(req *http.Request, call *Call, span trace.Span) {
	defer span.End()
	defer call.cancel()

	start := time.Now()
	out := c.do(req)

	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.Err.Error())
		c.log.Debug().Ctx(req.Context()).Err(out.Err).Str("request_id", call.ID).Dur("elapsed", time.Since(start)).Msg("request failed")
	} else {
		span.SetAttributes(attribute.Int("http.status_code", out.Status))
		c.log.Debug().Ctx(req.Context()).Str("request_id", call.ID).Int("status", out.Status).Dur("elapsed", time.Since(start)).Msg("request complete")
	}

	call.finish(out)
}

func (c *Client) do(req *http.Request) Outcome {
	resp, err := c.http.Do(req)
	if err != nil {
		return Outcome{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{Err: fmt.Errorf("read body: %w", err)}
	}
	return Outcome{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Body:       body,
	}
}

// Page is a fetched HTML document.
type Page struct {
	URL  string // final URL after redirects
	Body []byte
}

// FetchPage loads a full page synchronously, following redirects, the way a
// browser navigation does. Responses outside 2xx are errors.
func (c *Client) FetchPage(ctx context.Context, rawURL string) (Page, error) {
	ctx, span := c.tracer.Start(ctx, "transport.fetch_page",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.url", rawURL)),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		span.RecordError(err)
		return Page{}, fmt.Errorf("%w: %w", ErrConstruct, err)
	}
	req.Header.Set("Accept", acceptHTML)

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		return Page{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, resp.Status)
		return Page{}, fmt.Errorf("fetch %s: %s", rawURL, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return Page{URL: resp.Request.URL.String(), Body: body}, nil
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
