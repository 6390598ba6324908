// Package linkcheck decides whether generated resource links are safe and
// reachable. Checks are best-effort: every failure collapses to "invalid".
package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/alexanderramin/tutor/internal/domain"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimeout        = 5 * time.Second
	DefaultMaxConcurrency = 8
	DefaultUserAgent      = "tutor-linkcheck/1.0"
	maxRedirects          = 10
)

// Checker reports whether a URL is usable. Implementations never fail;
// any problem is reported as false.
type Checker interface {
	IsReachable(ctx context.Context, rawURL string) bool
}

// Config controls the HTTP probe.
type Config struct {
	Timeout        time.Duration `yaml:"timeout"`
	MaxConcurrency int           `yaml:"max_concurrency"`
	UserAgent      string        `yaml:"user_agent"`
}

// DefaultConfig returns the standard probe settings.
func DefaultConfig() Config {
	return Config{
		Timeout:        DefaultTimeout,
		MaxConcurrency: DefaultMaxConcurrency,
		UserAgent:      DefaultUserAgent,
	}
}

// Validator probes URLs over HTTP after a static safety filter.
type Validator struct {
	cfg       Config
	http      *http.Client
	looksSafe func(string) bool
}

// NewValidator creates a Validator. Zero config fields take defaults.
func NewValidator(cfg Config) *Validator {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = def.MaxConcurrency
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	v := &Validator{cfg: cfg, looksSafe: LooksSafe}
	v.http = &http.Client{
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errors.New("too many redirects")
			}
			if !v.looksSafe(req.URL.String()) {
				return fmt.Errorf("redirect to unsafe url %q", req.URL.Redacted())
			}
			return nil
		},
	}
	return v
}

// MaxConcurrency is the in-flight ceiling used by the Scrub helpers.
func (v *Validator) MaxConcurrency() int {
	return v.cfg.MaxConcurrency
}

// IsReachable applies LooksSafe, then HEADs the URL, falling back to GET
// when HEAD answers >= 400. Success is any status in [200,400).
func (v *Validator) IsReachable(ctx context.Context, rawURL string) bool {
	if !v.looksSafe(rawURL) {
		return false
	}

	status, err := v.probe(ctx, http.MethodHead, rawURL)
	if err != nil {
		return false
	}
	if status >= 400 {
		// Some hosts mishandle HEAD.
		status, err = v.probe(ctx, http.MethodGet, rawURL)
		if err != nil {
			return false
		}
	}
	return status >= 200 && status < 400
}

func (v *Validator) probe(ctx context.Context, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", v.cfg.UserAgent)

	resp, err := v.http.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// LooksSafe rejects non-http(s) schemes, missing hosts, and literal IP hosts
// outside public unicast space.
func LooksSafe(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}
	host := u.Hostname()
	if host == "" {
		return false
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		// A name, not an IP literal.
		return true
	}
	addr = addr.Unmap()
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsUnspecified() {
		return false
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return false
		}
	}
	return true
}

// reservedPrefixes are non-public ranges that netip's predicates miss.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("64:ff9b:1::/48"),
	netip.MustParsePrefix("2001::/23"),
	netip.MustParsePrefix("2001:db8::/32"),
}

// CheckAll runs checker over urls with at most limit checks in flight.
// results[i] belongs to urls[i] regardless of completion order; a check
// that panics counts as unreachable.
func CheckAll(ctx context.Context, checker Checker, urls []string, limit int) []bool {
	results := make([]bool, len(urls))
	if len(urls) == 0 {
		return results
	}
	if limit <= 0 {
		limit = DefaultMaxConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, u := range urls {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					results[i] = false
				}
			}()
			results[i] = checker.IsReachable(ctx, u)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ScrubRefs checks every non-nil ref and returns a copy of refs in which the
// unreachable ones are nil.
func ScrubRefs(ctx context.Context, checker Checker, refs []*string, limit int) []*string {
	out := make([]*string, len(refs))
	copy(out, refs)

	var idx []int
	var urls []string
	for i, r := range refs {
		if r != nil && *r != "" {
			idx = append(idx, i)
			urls = append(urls, *r)
		}
	}

	ok := CheckAll(ctx, checker, urls, limit)
	for j, i := range idx {
		if !ok[j] {
			out[i] = nil
		}
	}
	return out
}

// CheckAll checks urls with v, bounded by the configured concurrency.
func (v *Validator) CheckAll(ctx context.Context, urls []string) []bool {
	return CheckAll(ctx, v, urls, v.cfg.MaxConcurrency)
}

// ScrubTasks drops unreachable resource_ref values from tasks using v.
func (v *Validator) ScrubTasks(ctx context.Context, tasks []domain.Task) []domain.Task {
	return ScrubTasks(ctx, v, tasks, v.cfg.MaxConcurrency)
}

// ScrubTasks returns a copy of tasks whose unreachable resource_ref values
// are set to nil. Tasks without a ref are left untouched.
func ScrubTasks(ctx context.Context, checker Checker, tasks []domain.Task, limit int) []domain.Task {
	refs := make([]*string, len(tasks))
	for i, t := range tasks {
		refs[i] = t.ResourceRef
	}
	scrubbed := ScrubRefs(ctx, checker, refs, limit)

	out := make([]domain.Task, len(tasks))
	copy(out, tasks)
	for i := range out {
		out[i].ResourceRef = scrubbed[i]
	}
	return out
}
