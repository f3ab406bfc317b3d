package admincli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/app"
	"github.com/riskibarqy/prediction-league/internal/config"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

const testAdminKey = "cli-secret"

func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()

	cfg := config.Config{StoreDriver: config.StoreMemory, AdminAPIKey: testAdminKey}
	out := &bytes.Buffer{}
	runner := NewRunner(func(ctx context.Context) (*app.Container, error) {
		return app.New(ctx, cfg, logging.NewNop())
	}, out)
	t.Cleanup(func() { _ = runner.Close() })
	return runner, out
}

func run(runner *Runner, args ...string) error {
	return runner.App().Run(append([]string{"prediction-admin"}, args...))
}

func TestRunner_Leaderboard(t *testing.T) {
	t.Parallel()

	runner, out := newTestRunner(t)
	if err := run(runner, "leaderboard"); err != nil {
		t.Fatalf("leaderboard: %v", err)
	}

	text := out.String()
	for _, want := range []string{"POS", "Alex", "Sam", "Jo", "0.0%"} {
		if !strings.Contains(text, want) {
			t.Fatalf("leaderboard output missing %q:\n%s", want, text)
		}
	}
}

func TestRunner_MutationsRequireAdminKey(t *testing.T) {
	t.Parallel()

	runner, _ := newTestRunner(t)
	err := run(runner, "--admin-key", "wrong", "set-result", "--match", "1", "--result", "HOME")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("unexpected error: got=%v want=%v", err, usecase.ErrUnauthorized)
	}
	if code := ExitCode(err); code != 3 {
		t.Fatalf("unexpected exit code: got=%d want=3", code)
	}
}

func TestRunner_SetResultAndWeeks(t *testing.T) {
	t.Parallel()

	runner, out := newTestRunner(t)
	if err := run(runner, "--admin-key", testAdminKey, "set-result", "--match", "1", "--result", "draw"); err != nil {
		t.Fatalf("set-result: %v", err)
	}
	if !strings.Contains(out.String(), "match 1 (week 1) result=DRAW") {
		t.Fatalf("unexpected set-result output: %s", out.String())
	}

	out.Reset()
	if err := run(runner, "weeks"); err != nil {
		t.Fatalf("weeks: %v", err)
	}
	if !strings.Contains(out.String(), "LOCKED") {
		t.Fatalf("expected week 1 locked after a result:\n%s", out.String())
	}
}

func TestRunner_SeedWeek(t *testing.T) {
	t.Parallel()

	runner, out := newTestRunner(t)
	runner.now = func() time.Time { return time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC) }

	path := filepath.Join(t.TempDir(), "week2.yaml")
	raw := `week: 2
matches:
  - {home: A1, away: B1, lockout: "2026-10-24T14:00:00Z"}
  - {home: A2, away: B2, lockout: "2026-10-24T14:00:00Z"}
  - {home: A3, away: B3, lockout: "2026-10-24T14:00:00Z"}
  - {home: A4, away: B4, lockout: "2026-10-24T14:00:00Z"}
  - {home: A5, away: B5, lockout: "2026-10-24T14:00:00Z", fixture_ref_id: 55}
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	if err := run(runner, "--admin-key", testAdminKey, "seed-week", "--file", path); err != nil {
		t.Fatalf("seed-week: %v", err)
	}
	if got := strings.Count(out.String(), "locks 2026-10-24T14:00:00Z"); got != 5 {
		t.Fatalf("unexpected created lines: got=%d want=5\n%s", got, out.String())
	}

	err := run(runner, "--admin-key", testAdminKey, "seed-week", "--file", path)
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected duplicate week rejection, got %v", err)
	}
}

func TestRunner_ResetUsersNeedsConfirmation(t *testing.T) {
	t.Parallel()

	runner, out := newTestRunner(t)
	err := run(runner, "--admin-key", testAdminKey, "reset-users")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("unexpected exit code: got=%d want=2 (err=%v)", code, err)
	}

	if err := run(runner, "--admin-key", testAdminKey, "reset-users", "--yes", "--to-week", "1"); err != nil {
		t.Fatalf("reset-users: %v", err)
	}
	if !strings.Contains(out.String(), `"usersReset": 3`) {
		t.Fatalf("unexpected reset output: %s", out.String())
	}
}

func TestRunner_AutoScoreIdle(t *testing.T) {
	t.Parallel()

	runner, out := newTestRunner(t)
	if err := run(runner, "--admin-key", testAdminKey, "--actor", "ops", "auto-score"); err != nil {
		t.Fatalf("auto-score: %v", err)
	}
	if !strings.Contains(out.String(), "no locked week with unresolved matches") {
		t.Fatalf("unexpected tick log: %s", out.String())
	}
}
