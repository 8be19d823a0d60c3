package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

var idPattern = regexp.MustCompile(`id: ([0-9a-f-]{36})`)

type harness struct {
	t   *testing.T
	bin string
	env []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get cwd: %v", err)
	}

	binDir := os.Getenv("CREWPLAN_BIN_DIR")
	if binDir == "" {
		binDir = filepath.Join(cwd, "..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)
	bin := filepath.Join(binDir, "crewplan")
	if _, err := os.Stat(bin); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s, build it with 'go build -o bin/crewplan ./cmd/crewplan'", bin)
	}

	home := t.TempDir()
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "CREWPLAN_") || strings.HasPrefix(e, "HOME=") {
			continue
		}
		env = append(env, e)
	}
	env = append(env,
		fmt.Sprintf("HOME=%s", home),
		fmt.Sprintf("CREWPLAN_HOME=%s", filepath.Join(home, "crewplan")),
	)
	return &harness{t: t, bin: bin, env: env}
}

// run executes the CLI and fails the test if it exits non-zero.
func (h *harness) run(args ...string) string {
	h.t.Helper()
	out, err := h.exec(args...)
	if err != nil {
		h.t.Fatalf("crewplan %v failed: %v\nOutput: %s", args, err, out)
	}
	return out
}

// fail executes the CLI and fails the test if it exits zero.
func (h *harness) fail(args ...string) string {
	h.t.Helper()
	out, err := h.exec(args...)
	if err == nil {
		h.t.Fatalf("crewplan %v succeeded unexpectedly\nOutput: %s", args, out)
	}
	return out
}

func (h *harness) exec(args ...string) (string, error) {
	cmd := exec.Command(h.bin, args...)
	cmd.Env = h.env
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func expectContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func nextMonday() time.Time {
	d := time.Now().AddDate(0, 0, 7)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func TestEndToEndWorkflow(t *testing.T) {
	h := newHarness(t)
	monday := nextMonday().Format("2006-01-02")
	tuesday := nextMonday().AddDate(0, 0, 1).Format("2006-01-02")

	// 1. Initialize
	out := h.run("init")
	expectContains(t, out, "Initialized crewplan storage")

	// 2. Crew
	h.run("employee", "add", "Petra", "--class", "producer", "--hour-cap", "10")
	h.run("employee", "add", "Ivan", "--class", "installer")
	out = h.run("employee", "list")
	expectContains(t, out, "Petra", "Ivan")

	// 3. Immediate scheduling picks the only producer
	out = h.run("task", "add", "Cut panels", "--type", "production", "--start", monday+" 08:00", "--hours", "6")
	expectContains(t, out, "scheduled for Petra")

	// 4. Without weather data an outdoor installation is refused
	out = h.fail("task", "add", "Roof", "--type", "installation", "--start", monday+" 08:00", "--hours", "8")
	expectContains(t, out, "not suitable for installation")

	// 5. Indoor installations skip the weather gate
	out = h.run("task", "add", "Showroom fit-out", "--type", "installation", "--indoor", "--start", monday+" 08:00", "--hours", "8")
	expectContains(t, out, "scheduled for Ivan")

	// 6. Planned tasks are assigned by optimize until capacity runs out
	out = h.run("task", "plan", "Glue frames", "--type", "production", "--start", monday+" 14:00", "--hours", "3")
	m := idPattern.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("no task id in output:\n%s", out)
	}
	glueID := m[1]
	h.run("task", "plan", "Overflow", "--type", "production", "--start", tuesday+" 08:00", "--hours", "4")

	out = h.run("optimize", "--from", monday, "--days", "7")
	expectContains(t, out, "Assigned 1 task(s), 1 could not be assigned")

	out = h.run("workload", "--week", monday, "--employee", "Petra")
	expectContains(t, out, "Petra", "9h of 10h", "Glue frames")

	// 7. Lifecycle
	out = h.run("task", "status", glueID, "completed")
	expectContains(t, out, "is now completed")
	out = h.run("task", "list", "--unassigned")
	expectContains(t, out, "Overflow")

	// 8. Maintenance
	out = h.run("backup", "create")
	expectContains(t, out, "Backup created")
	out = h.run("doctor")
	expectContains(t, out, "Database reachable: OK", "Data validation: OK")
}
