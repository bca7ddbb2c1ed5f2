package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"
)

// DefaultHTTPTimeout bounds a single HTTP probe.
const DefaultHTTPTimeout = 5 * time.Second

// maxDrain caps how much of a response body is read before closing.
const maxDrain = 64 << 10

// HTTPConfig configures an HTTPProber.
type HTTPConfig struct {
	// URL is the health endpoint.
	URL string

	// Method is GET or HEAD.
	// Default: HEAD
	Method string

	// AuthHeader is sent verbatim as the Authorization header when set.
	AuthHeader string

	// Timeout bounds the whole request including the body drain.
	// Default: 5 seconds
	Timeout time.Duration

	// Client performs the request.
	// Default: a client with no overall timeout that does not follow
	// redirects of HEAD requests; Timeout applies per probe.
	Client *http.Client

	// Collapse maps every non-2xx status to Unhealthy instead of
	// distinguishing gateway failures from other codes.
	Collapse bool
}

// HTTPProber checks a service by requesting its health URL.
//
// Status mapping: 2xx is Healthy; 502, 503 and 504 are Unhealthy; any other
// code is Degraded, or Unhealthy when Collapse is set.
type HTTPProber struct {
	config HTTPConfig
}

// NewHTTPProber creates an HTTP prober.
func NewHTTPProber(config HTTPConfig) *HTTPProber {
	if config.Method == "" {
		config.Method = http.MethodHead
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultHTTPTimeout
	}
	if config.Client == nil {
		config.Client = &http.Client{CheckRedirect: headStaysOnFirstResponse}
	}
	return &HTTPProber{config: config}
}

// Probe performs the request.
func (p *HTTPProber) Probe(ctx context.Context) Result {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, p.config.Method, p.config.URL, nil)
	if err != nil {
		return finish(Result{
			Outcome: OutcomeError,
			Detail:  fmt.Sprintf("build request: %v", err),
			Err:     err,
		}, start)
	}
	if p.config.AuthHeader != "" {
		req.Header.Set("Authorization", p.config.AuthHeader)
	}

	resp, err := p.config.Client.Do(req)
	if err != nil {
		return finish(classifyTransportError(ctx, err), start)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
	_ = resp.Body.Close()

	r := Result{
		Outcome:    p.classifyStatus(resp.StatusCode),
		Detail:     fmt.Sprintf("HTTP %d", resp.StatusCode),
		StatusCode: resp.StatusCode,
	}
	return finish(r, start)
}

// headStaysOnFirstResponse reports a redirect answered to HEAD as is, so a
// 3xx health URL classifies as Degraded. GET follows redirects.
func headStaysOnFirstResponse(req *http.Request, via []*http.Request) error {
	if len(via) > 0 && via[0].Method == http.MethodHead {
		return http.ErrUseLastResponse
	}
	if len(via) >= 10 {
		return errors.New("stopped after 10 redirects")
	}
	return nil
}

func (p *HTTPProber) classifyStatus(code int) Outcome {
	switch {
	case code >= 200 && code < 300:
		return OutcomeHealthy
	case code == http.StatusBadGateway, code == http.StatusServiceUnavailable, code == http.StatusGatewayTimeout:
		return OutcomeUnhealthy
	case p.config.Collapse:
		return OutcomeUnhealthy
	default:
		return OutcomeDegraded
	}
}

func classifyTransportError(ctx context.Context, err error) Result {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) || isTimeout(err) {
		return Result{
			Outcome: OutcomeTimeout,
			Detail:  "request timed out",
			Err:     fmt.Errorf("%w: %v", ErrTimeout, err),
		}
	}
	if isConnectError(err) {
		return Result{
			Outcome: OutcomeUnreachable,
			Detail:  "connection failed",
			Err:     fmt.Errorf("%w: %v", ErrUnreachable, err),
		}
	}
	return Result{
		Outcome: OutcomeError,
		Detail:  err.Error(),
		Err:     err,
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isConnectError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
