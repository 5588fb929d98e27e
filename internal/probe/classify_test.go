package probe

import (
	"testing"
)

func TestClassifyExistence(t *testing.T) {
	spec := Spec{Kind: KindHTTPExistence, Label: "github", Markers: []string{"Not Found"}}

	tests := []struct {
		name string
		out  Outcome
		want VerdictKind
	}{
		{
			name: "200 without marker",
			out:  Outcome{Spec: spec, Kind: OutcomeBody, StatusCode: 200, Body: []byte("<html>profile page</html>")},
			want: Present,
		},
		{
			name: "200 with marker different case",
			out:  Outcome{Spec: spec, Kind: OutcomeBody, StatusCode: 200, Body: []byte("sorry, page NOT FOUND here")},
			want: Absent,
		},
		{
			name: "200 with marker mid-body",
			out:  Outcome{Spec: spec, Kind: OutcomeBody, StatusCode: 200, Body: []byte("xxx not found xxx")},
			want: Absent,
		},
		{
			name: "404",
			out:  Outcome{Spec: spec, Kind: OutcomeBody, StatusCode: 404},
			want: Absent,
		},
		{
			name: "redirect status",
			out:  Outcome{Spec: spec, Kind: OutcomeBody, StatusCode: 302},
			want: Absent,
		},
		{
			name: "timeout",
			out:  Outcome{Spec: spec, Kind: OutcomeTimeout, Err: "context deadline exceeded"},
			want: Indeterminate,
		},
		{
			name: "network error",
			out:  Outcome{Spec: spec, Kind: OutcomeNetError, Err: "no such host"},
			want: Indeterminate,
		},
		{
			name: "malformed target",
			out:  Outcome{Spec: spec, Kind: OutcomeBadTarget, Err: "missing scheme"},
			want: Indeterminate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Classify(tt.out)
			if v.Kind != tt.want {
				t.Errorf("got %s (%s), want %s", v.Kind, v.Reason, tt.want)
			}
			if v.Reason == "" {
				t.Error("verdict has no reason")
			}
		})
	}
}

func TestClassifyExistenceEmptyMarkers(t *testing.T) {
	spec := Spec{Kind: KindHTTPExistence, Label: "plain"}
	out := Outcome{Spec: spec, Kind: OutcomeBody, StatusCode: 200, Body: []byte("anything at all")}

	v := Classify(out)
	if v.Kind != Present {
		t.Errorf("200 with no markers should be present, got %s (%s)", v.Kind, v.Reason)
	}
}

func TestClassifyConnect(t *testing.T) {
	spec := Spec{Kind: KindTCPConnect, Label: "80", Host: "example.com", Port: 80}

	tests := []struct {
		name string
		out  Outcome
		want VerdictKind
	}{
		{"established", Outcome{Spec: spec, Kind: OutcomeConnect}, Present},
		{"refused", Outcome{Spec: spec, Kind: OutcomeRefused, Err: "connection refused"}, Absent},
		{"timeout", Outcome{Spec: spec, Kind: OutcomeTimeout, Err: "i/o timeout"}, Absent},
		{"dns failure", Outcome{Spec: spec, Kind: OutcomeNetError, Err: "no such host"}, Indeterminate},
		{"bad port", Outcome{Spec: spec, Kind: OutcomeBadTarget, Err: "port out of range"}, Indeterminate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := Classify(tt.out); v.Kind != tt.want {
				t.Errorf("got %s (%s), want %s", v.Kind, v.Reason, tt.want)
			}
		})
	}
}

func TestClassifyConnectBannerDoesNotChangeVerdict(t *testing.T) {
	spec := Spec{Kind: KindTCPConnect, Label: "22", Host: "example.com", Port: 22}

	with := Classify(Outcome{Spec: spec, Kind: OutcomeConnect, Banner: "SSH-2.0-OpenSSH_9.6"})
	without := Classify(Outcome{Spec: spec, Kind: OutcomeConnect})

	if with.Kind != without.Kind {
		t.Errorf("banner changed verdict: %s vs %s", with.Kind, without.Kind)
	}
	if with.Outcome.Banner != "SSH-2.0-OpenSSH_9.6" {
		t.Error("banner payload lost during classification")
	}
}

func TestClassifyHeaders(t *testing.T) {
	spec := Spec{Kind: KindHeaderFetch, Label: "headers", URL: "http://example.com"}

	tests := []struct {
		name string
		out  Outcome
		want VerdictKind
	}{
		{"200", Outcome{Spec: spec, Kind: OutcomeStatus, StatusCode: 200}, Present},
		{"500 still answers", Outcome{Spec: spec, Kind: OutcomeStatus, StatusCode: 500}, Present},
		{"403 still answers", Outcome{Spec: spec, Kind: OutcomeStatus, StatusCode: 403}, Present},
		{"refused", Outcome{Spec: spec, Kind: OutcomeRefused, Err: "connection refused"}, Indeterminate},
		{"timeout", Outcome{Spec: spec, Kind: OutcomeTimeout, Err: "i/o timeout"}, Indeterminate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := Classify(tt.out); v.Kind != tt.want {
				t.Errorf("got %s (%s), want %s", v.Kind, v.Reason, tt.want)
			}
		})
	}
}

func TestClassifyPath(t *testing.T) {
	spec := Spec{Kind: KindPathProbe, Label: "admin", URL: "http://example.com/admin"}

	tests := []struct {
		name string
		out  Outcome
		want VerdictKind
	}{
		{"200", Outcome{Spec: spec, Kind: OutcomeBody, StatusCode: 200}, Present},
		{"301", Outcome{Spec: spec, Kind: OutcomeBody, StatusCode: 301}, Present},
		{"302", Outcome{Spec: spec, Kind: OutcomeBody, StatusCode: 302}, Present},
		{"403", Outcome{Spec: spec, Kind: OutcomeBody, StatusCode: 403}, Present},
		{"404", Outcome{Spec: spec, Kind: OutcomeBody, StatusCode: 404}, Absent},
		{"500", Outcome{Spec: spec, Kind: OutcomeBody, StatusCode: 500}, Absent},
		{"timeout", Outcome{Spec: spec, Kind: OutcomeTimeout, Err: "i/o timeout"}, Absent},
		{"refused", Outcome{Spec: spec, Kind: OutcomeRefused, Err: "connection refused"}, Absent},
		{"malformed target", Outcome{Spec: spec, Kind: OutcomeBadTarget, Err: "missing host"}, Indeterminate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := Classify(tt.out); v.Kind != tt.want {
				t.Errorf("got %s (%s), want %s", v.Kind, v.Reason, tt.want)
			}
		})
	}
}

func TestClassifyDropsBody(t *testing.T) {
	out := Outcome{
		Spec:       Spec{Kind: KindHTTPExistence, Markers: []string{"gone"}},
		Kind:       OutcomeBody,
		StatusCode: 200,
		Body:       []byte("a large page body"),
	}

	v := Classify(out)
	if v.Outcome.Body != nil {
		t.Error("classified verdict should not retain the body")
	}
}

func TestClassifyDeterministic(t *testing.T) {
	out := Outcome{
		Spec:       Spec{Kind: KindHTTPExistence, Markers: []string{"not found", "unavailable"}},
		Kind:       OutcomeBody,
		StatusCode: 200,
		Body:       []byte("this user is unavailable and not found"),
	}

	first := Classify(out)
	for i := 0; i < 10; i++ {
		if v := Classify(out); v.Kind != first.Kind || v.Reason != first.Reason {
			t.Fatalf("classification not deterministic: %s/%q vs %s/%q",
				v.Kind, v.Reason, first.Kind, first.Reason)
		}
	}
}
