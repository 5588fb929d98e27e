package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func newRequester(t *testing.T, timeout time.Duration, keepBody bool) *Requester {
	t.Helper()
	req, err := NewRequester(RequesterConfig{
		Timeout:  timeout,
		Workers:  10,
		KeepBody: keepBody,
	})
	if err != nil {
		t.Fatalf("NewRequester: %v", err)
	}
	return req
}

// openPort starts a listener that accepts connections for the duration
// of the test and returns its port.
func openPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
	return ln.Addr().(*net.TCPAddr).Port
}

// closedPort returns a port that was just released, so connecting to it
// is refused.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func TestRunDeliversOneOutcomePerSpec(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin":
			w.WriteHeader(http.StatusOK)
		case "/slow":
			time.Sleep(20 * time.Millisecond)
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	var specs []Spec
	for i := 0; i < 40; i++ {
		path := fmt.Sprintf("/p%d", i)
		if i%5 == 0 {
			path = "/slow"
		}
		specs = append(specs, Spec{
			Kind:  KindPathProbe,
			Label: fmt.Sprintf("spec-%d", i),
			URL:   srv.URL + path,
		})
	}
	// Faults must be delivered too, not dropped.
	specs = append(specs,
		Spec{Kind: KindPathProbe, Label: "bad", URL: "://not-a-url"},
		Spec{Kind: KindTCPConnect, Label: "refused", Host: "127.0.0.1", Port: closedPort(t)},
	)

	exec := NewExecutor(newRequester(t, 5*time.Second, false), 2*time.Second)

	for _, workers := range []int{1, 7, 20} {
		t.Run(fmt.Sprintf("workers-%d", workers), func(t *testing.T) {
			seen := make(map[string]int)
			outcomes := Run(context.Background(), exec, specs, Config{
				Workers: workers,
				Timeout: 2 * time.Second,
			})
			for out := range outcomes {
				seen[out.Spec.Label]++
			}

			if len(seen) != len(specs) {
				t.Fatalf("got %d distinct outcomes, want %d", len(seen), len(specs))
			}
			for label, n := range seen {
				if n != 1 {
					t.Errorf("spec %s delivered %d times", label, n)
				}
			}
		})
	}
}

func TestRunTimeoutIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	spec := Spec{Kind: KindHTTPExistence, Label: "hang", URL: srv.URL, Markers: []string{"gone"}}
	exec := NewExecutor(newRequester(t, 5*time.Second, true), 200*time.Millisecond)

	start := time.Now()
	outcomes := Run(context.Background(), exec, []Spec{spec}, Config{
		Workers: 1,
		Timeout: 200 * time.Millisecond,
	})

	var got []Outcome
	for out := range outcomes {
		got = append(got, out)
	}
	elapsed := time.Since(start)

	if len(got) != 1 {
		t.Fatalf("got %d outcomes, want 1", len(got))
	}
	if got[0].Kind != OutcomeTimeout {
		t.Errorf("got outcome %s, want timeout", got[0].Kind)
	}
	if elapsed > 1500*time.Millisecond {
		t.Errorf("timeout not enforced, scan took %s", elapsed)
	}
	if v := Classify(got[0]); v.Kind != Indeterminate {
		t.Errorf("timed out existence probe classified %s, want indeterminate", v.Kind)
	}
}

func TestRunCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	var specs []Spec
	for i := 0; i < 30; i++ {
		specs = append(specs, Spec{
			Kind:  KindPathProbe,
			Label: fmt.Sprintf("spec-%d", i),
			URL:   srv.URL + "/p" + strconv.Itoa(i),
		})
	}

	exec := NewExecutor(newRequester(t, 5*time.Second, false), 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	outcomes := Run(ctx, exec, specs, Config{Workers: 5, Timeout: 5 * time.Second})

	go func() {
		time.Sleep(150 * time.Millisecond)
		cancel()
	}()

	report := NewReport("cancel-test", len(specs))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for out := range outcomes {
			report.Add(Classify(out))
		}
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("dispatcher did not return after cancellation")
	}

	report.Finalize()
	if report.Len() >= len(specs) {
		t.Errorf("cancelled scan delivered %d of %d outcomes", report.Len(), len(specs))
	}
	if report.Complete {
		t.Error("cancelled report must be marked incomplete")
	}
}

func TestRunThreeTCPPorts(t *testing.T) {
	open := openPort(t)
	closedA := closedPort(t)
	closedB := closedPort(t)

	ports := []int{open, closedA, closedB}
	var specs []Spec
	for _, p := range ports {
		specs = append(specs, Spec{
			Kind:  KindTCPConnect,
			Label: strconv.Itoa(p),
			Host:  "127.0.0.1",
			Port:  p,
		})
	}

	exec := NewExecutor(newRequester(t, 2*time.Second, false), 2*time.Second)
	report := NewReport("127.0.0.1", len(specs))
	for out := range Run(context.Background(), exec, specs, Config{Workers: 3, Timeout: 2 * time.Second}) {
		report.Add(Classify(out))
	}
	report.Finalize()

	if !report.Complete || report.Len() != 3 {
		t.Fatalf("report incomplete: %d of 3 verdicts", report.Len())
	}

	byPort := make(map[string]VerdictKind)
	for _, v := range report.Verdicts {
		byPort[v.Spec.Label] = v.Kind
	}
	if byPort[strconv.Itoa(open)] != Present {
		t.Errorf("open port %d not present: %s", open, byPort[strconv.Itoa(open)])
	}
	if byPort[strconv.Itoa(closedA)] != Absent {
		t.Errorf("closed port %d not absent: %s", closedA, byPort[strconv.Itoa(closedA)])
	}
	if byPort[strconv.Itoa(closedB)] != Absent {
		t.Errorf("closed port %d not absent: %s", closedB, byPort[strconv.Itoa(closedB)])
	}
	if report.Counts.Present != 1 || report.Counts.Absent != 2 {
		t.Errorf("counts present=%d absent=%d, want 1/2", report.Counts.Present, report.Counts.Absent)
	}
}

func TestHeaderCandidates(t *testing.T) {
	got, err := headerCandidates("http://example.com")
	if err != nil {
		t.Fatalf("headerCandidates: %v", err)
	}
	if len(got) != 2 || got[0] != "http://example.com" || got[1] != "https://example.com" {
		t.Errorf("http URL candidates = %v", got)
	}

	got, err = headerCandidates("https://example.com")
	if err != nil {
		t.Fatalf("headerCandidates: %v", err)
	}
	if len(got) != 1 || got[0] != "https://example.com" {
		t.Errorf("https URL candidates = %v", got)
	}

	if _, err := headerCandidates("://broken"); err == nil {
		t.Error("expected error for malformed URL")
	}
}

func TestRunHeaderFetchTLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "tlsd")
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	spec := Spec{Kind: KindHeaderFetch, Label: "headers", URL: srv.URL}
	exec := NewExecutor(newRequester(t, 2*time.Second, false), 2*time.Second)
	out := exec.Execute(context.Background(), spec)

	if out.Kind != OutcomeStatus {
		t.Fatalf("got outcome %s (%s), want status", out.Kind, out.Err)
	}
	if out.Scheme != "https" {
		t.Errorf("answered scheme %q, want https", out.Scheme)
	}
	if out.Header.Get("Server") != "tlsd" {
		t.Error("missing Server header payload")
	}
	// Any response is present for a header fetch, status regardless.
	if v := Classify(out); v.Kind != Present {
		t.Errorf("header fetch with response classified %s", v.Kind)
	}
}

func TestRunHeaderFetchUnreachable(t *testing.T) {
	port := closedPort(t)
	spec := Spec{
		Kind:  KindHeaderFetch,
		Label: "headers",
		URL:   "http://127.0.0.1:" + strconv.Itoa(port),
	}

	exec := NewExecutor(newRequester(t, 500*time.Millisecond, false), 500*time.Millisecond)
	out := exec.Execute(context.Background(), spec)

	if out.Kind == OutcomeStatus || out.Kind == OutcomeBody {
		t.Fatalf("unreachable host produced response outcome %s", out.Kind)
	}
	if v := Classify(out); v.Kind != Indeterminate {
		t.Errorf("total connection failure classified %s, want indeterminate", v.Kind)
	}
}
