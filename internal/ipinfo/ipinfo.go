// Package ipinfo resolves the address pair stored with each admin login.
package ipinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"vaultadmin/internal/models"
)

const Unknown = "unknown"

type Resolver interface {
	Lookup(ctx context.Context) models.IPAddress
}

// HTTPResolver reads the host address from local interfaces and the public
// address from a JSON lookup service replying {"ip": "..."}.
type HTTPResolver struct {
	url    string
	client *http.Client
	lg     *zap.SugaredLogger
	addrs  func() ([]net.Addr, error)
}

func New(url string, timeout time.Duration, lg *zap.SugaredLogger) *HTTPResolver {
	return &HTTPResolver{
		url:    url,
		client: &http.Client{Timeout: timeout},
		lg:     lg,
		addrs:  net.InterfaceAddrs,
	}
}

// Lookup never fails; unresolved parts are reported as Unknown.
func (r *HTTPResolver) Lookup(ctx context.Context) models.IPAddress {
	system := r.SystemIP()
	browser := r.BrowserIP(ctx)
	return models.IPAddress{SystemIP: &system, BrowserIP: &browser}
}

// SystemIP is the first non-loopback IPv4 address of the host.
func (r *HTTPResolver) SystemIP() string {
	addrs, err := r.addrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if v4 := ipnet.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	return "127.0.0.1"
}

func (r *HTTPResolver) BrowserIP(ctx context.Context) string {
	ip, err := r.fetch(ctx)
	if err != nil {
		r.lg.Warnw("public ip lookup failed", "url", r.url, "error", err)
		return Unknown
	}
	return ip
}

func (r *HTTPResolver) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.IP == "" {
		return "", fmt.Errorf("empty ip in response")
	}
	return body.IP, nil
}
