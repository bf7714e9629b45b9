package healthz

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sealmetrics/sealcheck/internal/logger"
)

const defaultPort = "8080"

// probedPaths are the routes a healthy instance answers with 200
var probedPaths = []string{"/health", "/metrics", "/endpoints"}

// ErrRoute reports a probed route that did not answer with 200
type ErrRoute struct {
	Path   string
	Status int
	Err    error
}

func (e *ErrRoute) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("route %s unreachable: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("route %s answered %d", e.Path, e.Status)
}

func (e *ErrRoute) Unwrap() error {
	return e.Err
}

// Prober checks a sealcheck instance running on the local host
type Prober struct {
	host   string
	client *http.Client
}

// NewProber returns a prober for the api listening on the given address.
// Only the port of the address is used, the probe always targets localhost.
func NewProber(address string) *Prober {
	return &Prober{
		host:   probeHost(address),
		client: &http.Client{},
	}
}

// Probe requests every probed route and joins the failures
func (p *Prober) Probe(ctx context.Context) error {
	var errs []error
	for _, path := range probedPaths {
		if err := p.probe(ctx, path); err != nil {
			logger.FromContext(ctx).Warn("Route is unhealthy", "path", path, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Prober) probe(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+p.host+path, http.NoBody)
	if err != nil {
		return &ErrRoute{Path: path, Err: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return &ErrRoute{Path: path, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // nothing is read

	if resp.StatusCode != http.StatusOK {
		return &ErrRoute{Path: path, Status: resp.StatusCode}
	}
	return nil
}

// probeHost maps a listening address to the loopback host:port reaching it
func probeHost(addr string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		port = defaultPort
	}
	return net.JoinHostPort("localhost", port)
}
