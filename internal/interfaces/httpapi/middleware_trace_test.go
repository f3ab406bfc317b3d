package httpapi

import "testing"

func TestShouldTraceRequest_HealthPaths(t *testing.T) {
	paths := []string{"/healthz", "/health", "/livez", "/readyz", " /healthz ", "/metrics"}
	for _, path := range paths {
		if shouldTraceRequest(path) {
			t.Fatalf("expected no tracing for path %q", path)
		}
	}
}

func TestShouldTraceRequest_NonHealthPaths(t *testing.T) {
	paths := []string{"/v1/leaderboard", "/v1/weeks/3", "/", "/docs"}
	for _, path := range paths {
		if !shouldTraceRequest(path) {
			t.Fatalf("expected tracing for path %q", path)
		}
	}
}

func TestNormalizeIP(t *testing.T) {
	tests := map[string]string{
		"203.0.113.7:5123":       "203.0.113.7",
		"198.51.100.1, 10.0.0.1": "198.51.100.1",
		"[2001:db8::1]:443":      "2001:db8::1",
		"not-an-ip":              "",
		"":                       "",
	}
	for in, want := range tests {
		if got := normalizeIP(in); got != want {
			t.Fatalf("normalizeIP(%q)=%q want=%q", in, got, want)
		}
	}
}
