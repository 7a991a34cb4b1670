package cli

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/applyninja/ninja/internal/config"
	"github.com/applyninja/ninja/internal/testutil"
)

// newHome returns a state directory whose config has no artificial delays.
func newHome(t *testing.T) string {
	t.Helper()
	t.Setenv(config.EnvServer, "")
	t.Setenv(config.EnvDebug, "")
	home := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Payment.ProofDelayMs = 0
	cfg.Upload.RedirectDelayMs = 0
	if err := config.WriteConfig(home, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}
	return home
}

func run(t *testing.T, home, server, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(append([]string{"--home", home, "--server", server}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func writeResume(t *testing.T) string {
	t.Helper()
	dir := testutil.TempFiles(t, map[string]string{"cv.pdf": testutil.Resume()})
	return filepath.Join(dir, "cv.pdf")
}

func TestUploadThenStatus(t *testing.T) {
	b := testutil.NewBackend(t)
	home := newHome(t)

	out, err := run(t, home, b.URL(), "", "upload", writeResume(t))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	for _, want := range []string{"Analysis Complete! Redirecting...", "Name:   Ada Lovelace", "Plan:   Free", "Next: ninja status"} {
		if !strings.Contains(out, want) {
			t.Errorf("upload output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, home, b.URL(), "", "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "Welcome, Ada Lovelace") {
		t.Errorf("status output:\n%s", out)
	}

	out, err = run(t, home, b.URL(), "", "events")
	if err != nil {
		t.Fatalf("events failed: %v", err)
	}
	if !strings.Contains(out, "upload_completed") {
		t.Errorf("events output:\n%s", out)
	}
}

func TestUploadServerErrorSurfacesStatusText(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Script(testutil.RouteUpload, testutil.Fail(http.StatusBadGateway, `{"error":"ignored"}`))
	home := newHome(t)

	out, err := run(t, home, b.URL(), "", "upload", writeResume(t))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(out, "Error: Server Error: Bad Gateway") {
		t.Errorf("output:\n%s", out)
	}
}

func TestEmptyFilesAreRejected(t *testing.T) {
	b := testutil.NewBackend(t)
	home := newHome(t)
	dir := testutil.TempFiles(t, map[string]string{"empty.pdf": "", "empty.png": ""})

	_, err := run(t, home, b.URL(), "", "upload", filepath.Join(dir, "empty.pdf"))
	if err == nil || err.Error() != "please choose a resume file to upload" {
		t.Errorf("upload err = %v", err)
	}
	if n := b.Calls(testutil.RouteUpload); n != 0 {
		t.Errorf("upload calls = %d, want 0", n)
	}

	_, err = run(t, home, b.URL(), "", "pay", "submit", filepath.Join(dir, "empty.png"))
	if err == nil || err.Error() != "Please upload a screenshot of your payment." {
		t.Errorf("pay submit err = %v", err)
	}
	out, _ := run(t, home, b.URL(), "", "events")
	if strings.Contains(out, "proof_submitted") {
		t.Errorf("empty screenshot was accepted:\n%s", out)
	}
}

func TestPaySubmitThenUploadActivatesPro(t *testing.T) {
	b := testutil.NewBackend(t)
	home := newHome(t)

	if _, err := run(t, home, b.URL(), "", "pay", "submit"); err == nil || err.Error() != "Please upload a screenshot of your payment." {
		t.Errorf("pay submit without file err = %v", err)
	}

	shot := filepath.Join(testutil.TempFiles(t, map[string]string{"paid.png": "png"}), "paid.png")
	out, err := run(t, home, b.URL(), "", "pay", "submit", shot)
	if err != nil {
		t.Fatalf("pay submit failed: %v", err)
	}
	if !strings.Contains(out, "ninja upload") {
		t.Errorf("pay submit should point to upload:\n%s", out)
	}

	out, err = run(t, home, b.URL(), "", "upload", writeResume(t))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if !strings.Contains(out, "Pro plan activated.") || !strings.Contains(out, "Plan:   Pro") {
		t.Errorf("upload output:\n%s", out)
	}
	if n := b.Calls(testutil.RouteVerifyPayment); n != 1 {
		t.Errorf("verify calls = %d", n)
	}
}

func TestSettingsSetPreservesUnknownFields(t *testing.T) {
	b := testutil.NewBackend(t)
	home := newHome(t)
	if _, err := run(t, home, b.URL(), "", "upload", writeResume(t)); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	out, err := run(t, home, b.URL(), "", "settings", "set", "--skills", "a, b, b, ")
	if err != nil {
		t.Fatalf("settings set failed: %v", err)
	}
	if !strings.Contains(out, "Settings Saved!") {
		t.Errorf("output:\n%s", out)
	}

	out, err = run(t, home, b.URL(), "", "profile")
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	compact := strings.Join(strings.Fields(out), "")
	if !strings.Contains(compact, `"skills":["a","b","b"]`) {
		t.Errorf("skills not replaced:\n%s", out)
	}
	if !strings.Contains(out, "ada@example.com") {
		t.Errorf("email lost by merge:\n%s", out)
	}

	if _, err := run(t, home, b.URL(), "", "settings", "set"); err == nil {
		t.Error("settings set without flags should fail")
	}
}

func TestSearchRequiresProfile(t *testing.T) {
	b := testutil.NewBackend(t)
	home := newHome(t)

	_, err := run(t, home, b.URL(), "", "search")
	if err == nil || err.Error() != "Please upload a resume first." {
		t.Errorf("err = %v", err)
	}

	if _, err := run(t, home, b.URL(), "", "upload", writeResume(t)); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	out, err := run(t, home, b.URL(), "", "search")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.HasPrefix(out, "https://www.google.com/search?q=Backend%20Engineer%20Go%20PostgreSQL%20Kubernetes%20jobs") {
		t.Errorf("link = %q", out)
	}
}

func TestHistoryListAndClear(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Script(testutil.RouteHistory, testutil.JSON(testutil.History(2)), testutil.JSON(`[]`))
	home := newHome(t)

	out, err := run(t, home, b.URL(), "", "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "TechCorp AI") || !strings.Contains(out, "Applied") {
		t.Errorf("history output:\n%s", out)
	}

	out, err = run(t, home, b.URL(), "n\n", "history", "clear")
	if err != nil {
		t.Fatalf("history clear failed: %v", err)
	}
	if !strings.Contains(out, "Cancelled.") || b.Calls(testutil.RouteClearHistory) != 0 {
		t.Errorf("declined clear output:\n%s", out)
	}

	out, err = run(t, home, b.URL(), "", "history", "clear", "--yes")
	if err != nil {
		t.Fatalf("history clear --yes failed: %v", err)
	}
	if !strings.Contains(out, "No applications logged yet.") {
		t.Errorf("clear output:\n%s", out)
	}
}

func TestAgentDeploy(t *testing.T) {
	b := testutil.NewBackend(t)
	home := newHome(t)

	out, err := run(t, home, b.URL(), "hunter2\n", "agent", "deploy", "--email", "ada@example.com")
	if err != nil {
		t.Fatalf("deploy failed: %v", err)
	}
	if !strings.Contains(out, "✅ LinkedIn Pilot finished batch") {
		t.Errorf("deploy output:\n%s", out)
	}
}

func TestAgentDeployPaymentRequired(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Script(testutil.RouteDeploy, testutil.Fail(http.StatusPaymentRequired, `{"error":"PAYMENT_REQUIRED"}`))
	home := newHome(t)

	out, err := run(t, home, b.URL(), "hunter2\nn\n", "agent", "deploy", "--email", "ada@example.com")
	if err != nil {
		t.Fatalf("deploy failed: %v", err)
	}
	for _, want := range []string{"Upgrade required", "ninja pay submit"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if n := b.Calls(testutil.RouteVerifyPayment); n != 0 {
		t.Errorf("verify calls = %d, declined prompt must not verify", n)
	}
}

func TestAgentDeployServerError(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Script(testutil.RouteDeploy, testutil.Fail(http.StatusInternalServerError, `{"error":"chrome crashed"}`))
	home := newHome(t)

	_, err := run(t, home, b.URL(), "pw\n", "agent", "deploy", "--email", "a@b.c")
	if err == nil || err.Error() != "Agent Error: chrome crashed" {
		t.Errorf("err = %v", err)
	}
}

func TestConfigInit(t *testing.T) {
	t.Setenv(config.EnvServer, "")
	home := t.TempDir()

	out, err := run(t, home, "http://example.test:9000", "", "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, "config.yaml") {
		t.Errorf("output = %q", out)
	}
	data, err := os.ReadFile(config.Path(home))
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(data), "http://example.test:9000") {
		t.Errorf("config missing server:\n%s", data)
	}

	if _, err := run(t, home, "http://example.test:9000", "", "config", "init"); err == nil {
		t.Error("second init without --force should fail")
	}
}

func TestResetAndEphemeral(t *testing.T) {
	b := testutil.NewBackend(t)
	home := newHome(t)

	if _, err := run(t, home, b.URL(), "", "--ephemeral", "upload", writeResume(t)); err != nil {
		t.Fatalf("ephemeral upload failed: %v", err)
	}
	out, _ := run(t, home, b.URL(), "", "status")
	if !strings.Contains(out, "Please upload a resume first.") {
		t.Errorf("ephemeral profile leaked to disk:\n%s", out)
	}

	if _, err := run(t, home, b.URL(), "", "upload", writeResume(t)); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	out, err := run(t, home, b.URL(), "", "reset", "--yes")
	if err != nil || !strings.Contains(out, "Removed applyNinjaUser") || !strings.Contains(out, "Profile deleted.") {
		t.Fatalf("reset: %v\n%s", err, out)
	}
	out, err = run(t, home, b.URL(), "", "reset", "--yes")
	if err != nil || !strings.Contains(out, "Nothing stored.") {
		t.Errorf("second reset: %v\n%s", err, out)
	}
	if _, err := run(t, home, b.URL(), "", "profile"); err == nil {
		t.Error("profile should be gone after reset")
	}
}
