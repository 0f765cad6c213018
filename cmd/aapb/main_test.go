package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clamsutils/internal/aapbjson"
	"clamsutils/internal/ledger"
	"clamsutils/internal/transcript"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	logDir     string
	ledgerPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_TOKEN", "")
	t.Setenv("AAPB_STORAGE_URL", "")

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		logDir:     filepath.Join(base, "logs"),
		ledgerPath: filepath.Join(base, "state", "ledger.db"),
	}
	content := fmt.Sprintf("[paths]\nlog_dir = %q\n\n[ledger]\npath = %q\n\n[logging]\nlevel = \"warn\"\n", env.logDir, env.ledgerPath)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliTestEnv) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(e.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestCLIGUID(t *testing.T) {
	setupCLITestEnv(t)

	out, errOut, err := runCLI(t, []string{"guid", "cpb-aacip-507-0z70v8b17g.mp4", "nothing-here"}, "")
	if err == nil {
		t.Fatal("expected error when an input has no guid")
	}
	if strings.TrimSpace(out) != "cpb-aacip-507-0z70v8b17g" {
		t.Fatalf("unexpected stdout %q", out)
	}
	requireContains(t, errOut, "nothing-here")

	out, _, err = runCLI(t, []string{"guid", "--json", "/data/cpb-aacip_525-9g5gb1zh7x.transcript.json"}, "")
	if err != nil {
		t.Fatalf("guid --json: %v", err)
	}
	requireContains(t, out, `"guid": "cpb-aacip_525-9g5gb1zh7x"`)
}

func TestCLICleanupAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	env.write(t, "in/show.txt", "ROBERT MacNEIL: Hello.\nJUDY WOODRUFF: Hi.\n")
	env.write(t, "in/broken.json", `{"parts": [}`)
	outDir := filepath.Join(env.baseDir, "out")

	out, _, err := runCLI(t, []string{"cleanup", "--ledger", filepath.Join(env.baseDir, "in"), outDir}, env.configPath)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	requireContains(t, out, "show.txt")
	requireContains(t, out, "malformed")

	data, err := os.ReadFile(filepath.Join(outDir, "show.txt"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "Hello.  Hi." {
		t.Fatalf("unexpected cleaned text %q", data)
	}

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var entries []ledger.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(entries))
	}
	if entries[0].RunID == "" || entries[0].RunID != entries[1].RunID {
		t.Fatalf("expected one shared run id, got %q and %q", entries[0].RunID, entries[1].RunID)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history table: %v", err)
	}
	requireContains(t, out, "broken.json")
	requireContains(t, out, "  + cleaned    1\n")
	requireContains(t, out, "  ! malformed  1\n")
}

func TestCLIHistoryWithoutLedger(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No ledger at")
}

func TestCLISpans(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.write(t, "show.txt", "JIM LEHRER: Good evening.\nJUDY WOODRUFF: Thanks, Jim.")

	out, _, err := runCLI(t, []string{"spans", "--json", path}, env.configPath)
	if err != nil {
		t.Fatalf("spans: %v", err)
	}
	var turns []transcript.Turn
	if err := json.Unmarshal([]byte(out), &turns); err != nil {
		t.Fatalf("decode spans: %v\n%s", err, out)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %+v", turns)
	}
	if turns[0].SpeakerID != "JIM_LEHRER" || turns[0].Text != "Good evening." {
		t.Fatalf("unexpected first turn %+v", turns[0])
	}
	if turns[1].SpeakerID != "JUDY_WOODRUFF" || turns[1].Text != "Thanks, Jim." {
		t.Fatalf("unexpected second turn %+v", turns[1])
	}

	out, _, err = runCLI(t, []string{"spans", "--range", "30:", path}, env.configPath)
	if err != nil {
		t.Fatalf("spans --range: %v", err)
	}
	requireContains(t, out, "JUDY_WOODRUFF")
	if strings.Contains(out, "JIM_LEHRER") {
		t.Fatalf("range should exclude the first turn:\n%s", out)
	}
}

func TestCLIConvert(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "out.json")
	source := filepath.Join("..", "..", "internal", "aapbjson", "testdata", "asr.mmif")

	if _, _, err := runCLI(t, []string{"convert", "--pretty", source, target}, env.configPath); err != nil {
		t.Fatalf("convert: %v", err)
	}
	file, err := os.Open(target)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()
	doc, err := aapbjson.Read(file)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if doc.ID != "cpb-aacip-507-0z70v8b17g" || len(doc.Parts) != 3 {
		t.Fatalf("unexpected document %+v", doc)
	}

	before, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	_, errOut, err := runCLI(t, []string{"convert", source, target}, env.configPath)
	if err != nil {
		t.Fatalf("convert onto existing output: %v", err)
	}
	suffixed := filepath.Join(env.baseDir, "out-1.json")
	requireContains(t, errOut, suffixed)
	if _, err := os.Stat(suffixed); err != nil {
		t.Fatalf("expected suffixed output: %v", err)
	}
	after, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("existing output was overwritten")
	}
	if _, _, err := runCLI(t, []string{"convert", "--to-mmif", target, "-"}, env.configPath); err == nil {
		t.Fatal("expected --to-mmif to be unsupported")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Log directory")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse an existing file")
	}
}

func TestInvalidLogLevel(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"--log-level", "loud", "history"}, env.configPath); err == nil {
		t.Fatal("expected invalid log level error")
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in        string
		start     int
		end       int
		expectErr bool
	}{
		{"10:20", 10, 20, false},
		{":20", 0, 20, false},
		{"10:", 10, 100, false},
		{"20:10", 0, 0, true},
		{"abc", 0, 0, true},
		{"-1:5", 0, 0, true},
	}
	for _, tt := range tests {
		start, end, err := parseRange(tt.in, 100)
		if tt.expectErr {
			if err == nil {
				t.Errorf("parseRange(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || start != tt.start || end != tt.end {
			t.Errorf("parseRange(%q) = %d, %d, %v; want %d, %d", tt.in, start, end, err, tt.start, tt.end)
		}
	}
}
