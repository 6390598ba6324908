package linkcheck

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testValidator trusts the httptest server even though it listens on loopback.
func testValidator(cfg Config, srv *httptest.Server) *Validator {
	v := NewValidator(cfg)
	v.looksSafe = func(u string) bool {
		return strings.HasPrefix(u, srv.URL) || LooksSafe(u)
	}
	return v
}

func strPtr(s string) *string { return &s }

func TestLooksSafe(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.sqltutorial.org/", true},
		{"http://example.com/path?q=1", true},
		{"HTTPS://Example.com", true},
		{"https://93.184.216.34/", true},
		{"ftp://example.com/file", false},
		{"javascript:alert(1)", false},
		{"https://", false},
		{"not a url", false},
		{"http://127.0.0.1:8080/", false},
		{"http://10.0.0.5/", false},
		{"http://192.168.1.1/admin", false},
		{"http://172.16.4.2/", false},
		{"http://169.254.169.254/latest/meta-data", false},
		{"http://[::1]/", false},
		{"http://[fe80::1]/", false},
		{"http://[fd00::1]/", false},
		{"http://[::ffff:10.0.0.1]/", false},
		{"http://0.0.0.0/", false},
		{"http://0.1.2.3/", false},
		{"http://100.64.0.1/", false},
		{"http://100.127.255.254/", false},
		{"http://100.128.0.1/", true},
		{"http://192.0.0.8/", false},
		{"http://198.18.0.1/", false},
		{"http://198.19.255.1/", false},
		{"http://203.0.113.9/", false},
		{"http://255.255.255.255/", false},
		{"http://[2001:db8::1]/", false},
		{"http://[::ffff:100.64.0.1]/", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksSafe(tt.url))
		})
	}
}

func TestIsReachable_HeadSuccess(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		ua = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := testValidator(DefaultConfig(), srv)
	assert.True(t, v.IsReachable(context.Background(), srv.URL+"/doc"))
	assert.Equal(t, DefaultUserAgent, ua)
}

func TestIsReachable_FallsBackToGet(t *testing.T) {
	var methods []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := testValidator(DefaultConfig(), srv)
	assert.True(t, v.IsReachable(context.Background(), srv.URL))
	assert.Equal(t, []string{http.MethodHead, http.MethodGet}, methods)
}

func TestIsReachable_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	v := testValidator(DefaultConfig(), srv)
	assert.False(t, v.IsReachable(context.Background(), srv.URL+"/missing"))
}

func TestIsReachable_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	v := testValidator(DefaultConfig(), srv)
	assert.True(t, v.IsReachable(context.Background(), srv.URL+"/old"))
}

func TestIsReachable_RejectsUnsafeWithoutRequest(t *testing.T) {
	v := NewValidator(DefaultConfig())
	assert.False(t, v.IsReachable(context.Background(), "http://127.0.0.1:1/"))
	assert.False(t, v.IsReachable(context.Background(), "file:///etc/passwd"))
}

func TestIsReachable_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	v := testValidator(Config{Timeout: 30 * time.Millisecond}, srv)
	assert.False(t, v.IsReachable(context.Background(), srv.URL))
}

type fakeChecker struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	check    func(string) bool
}

func (f *fakeChecker) IsReachable(_ context.Context, u string) bool {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return f.check(u)
}

func TestCheckAll_PreservesOrderAndBoundsConcurrency(t *testing.T) {
	var urls []string
	for i := 0; i < 30; i++ {
		urls = append(urls, fmt.Sprintf("https://example.com/%d", i))
	}
	checker := &fakeChecker{check: func(u string) bool {
		var n int
		fmt.Sscanf(u, "https://example.com/%d", &n)
		return n%2 == 0
	}}

	results := CheckAll(context.Background(), checker, urls, 8)

	require.Len(t, results, 30)
	for i, ok := range results {
		assert.Equal(t, i%2 == 0, ok, "url %d", i)
	}
	assert.LessOrEqual(t, checker.peak.Load(), int32(8))
}

func TestCheckAll_PanicCountsAsInvalid(t *testing.T) {
	checker := &fakeChecker{check: func(u string) bool {
		if strings.HasSuffix(u, "boom") {
			panic("checker exploded")
		}
		return true
	}}

	results := CheckAll(context.Background(), checker, []string{"https://a.dev", "https://b.dev/boom", "https://c.dev"}, 8)
	assert.Equal(t, []bool{true, false, true}, results)
}

func TestScrubTasks_Batch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/slow/", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	timeout := 100 * time.Millisecond
	v := testValidator(Config{Timeout: timeout, MaxConcurrency: 8}, srv)

	refs := []string{
		srv.URL + "/ok/1",
		"http://10.1.2.3/notes",
		srv.URL + "/ok/2",
		srv.URL + "/slow/1",
		"http://192.168.0.10/",
		srv.URL + "/ok/3",
		"http://127.0.0.1:9/private",
		srv.URL + "/slow/2",
		srv.URL + "/ok/4",
		srv.URL + "/ok/5",
	}
	tasks := make([]domain.Task, len(refs))
	for i, r := range refs {
		tasks[i] = domain.Task{Title: fmt.Sprintf("t%d", i), Type: domain.TaskReading, EstMinutes: 20, DueDate: "2026-03-10", ResourceRef: strPtr(r)}
	}
	tasks = append(tasks, domain.Task{Title: "no link", Type: domain.TaskQuiz, EstMinutes: 10, DueDate: "2026-03-10"})

	start := time.Now()
	out := v.ScrubTasks(context.Background(), tasks)
	elapsed := time.Since(start)

	require.Len(t, out, len(tasks))
	invalid := map[int]bool{1: true, 3: true, 4: true, 6: true, 7: true}
	for i := range refs {
		if invalid[i] {
			assert.Nil(t, out[i].ResourceRef, "task %d should be scrubbed", i)
		} else {
			require.NotNil(t, out[i].ResourceRef, "task %d should keep its ref", i)
			assert.Equal(t, refs[i], *out[i].ResourceRef)
		}
	}
	assert.Nil(t, out[len(out)-1].ResourceRef)
	// 10 checks with 8 in flight: two timeout rounds at most, never ten.
	assert.Less(t, elapsed, 2*timeout+300*time.Millisecond)

	// The input slice is not modified.
	require.NotNil(t, tasks[1].ResourceRef)
}

func TestScrubRefs_EmptyInput(t *testing.T) {
	out := ScrubRefs(context.Background(), NewValidator(Config{}), nil, 8)
	assert.Empty(t, out)
}
