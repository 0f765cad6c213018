package batch_test

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"clamsutils/internal/batch"
	"clamsutils/internal/services"
	"clamsutils/internal/testsupport"
)

const (
	plainTranscript = "ROBERT MacNEIL: Hello.\nJUDY WOODRUFF: Hi.\n"
	partsTranscript = `{"parts":[{"text":"Good evening."},{"text":"LEHRER: Thanks."}]}`
)

func seedInputs(t *testing.T, dir string) {
	t.Helper()
	testsupport.WriteText(t, filepath.Join(dir, "cpb-aacip-507-0z70v8b17g.txt"), plainTranscript)
	testsupport.WriteText(t, filepath.Join(dir, "parts.json"), partsTranscript)
	testsupport.WriteText(t, filepath.Join(dir, "empty.json"), `{"id":"cpb-aacip-1"}`)
	testsupport.WriteText(t, filepath.Join(dir, "broken.json"), `{"parts": [}`)
	testsupport.WriteText(t, filepath.Join(dir, "notes.md"), "ignored")
}

func TestRunCleansDirectoryAndSkipsBadInputs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	in := filepath.Join(base, "in")
	out := filepath.Join(base, "out")
	seedInputs(t, in)

	summary, err := batch.New(cfg, nil, nil).Run(context.Background(), in, out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 4 || summary.Cleaned != 2 || summary.Skipped != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	want := []string{"cpb-aacip-507-0z70v8b17g.txt", "parts.txt"}
	if got := testsupport.ListNames(t, out); !slices.Equal(got, want) {
		t.Fatalf("outputs = %v, want %v", got, want)
	}
	if got := testsupport.ReadText(t, filepath.Join(out, "cpb-aacip-507-0z70v8b17g.txt")); got != "Hello.  Hi." {
		t.Fatalf("plain output = %q", got)
	}
	if got := testsupport.ReadText(t, filepath.Join(out, "parts.txt")); got != "Good evening.\nThanks." {
		t.Fatalf("json output = %q", got)
	}

	// Items follow sorted input order: broken, cpb-..., empty, parts.
	statuses := make([]string, 0, len(summary.Items))
	for _, item := range summary.Items {
		statuses = append(statuses, item.Status)
	}
	if !slices.Equal(statuses, []string{"malformed", "cleaned", "missing", "cleaned"}) {
		t.Fatalf("statuses = %v", statuses)
	}
	plain := summary.Items[1]
	if plain.GUID != "cpb-aacip-507-0z70v8b17g" || plain.Speakers != 2 {
		t.Fatalf("unexpected plain item %+v", plain)
	}
}

func TestRunNeverOverwrites(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	input := testsupport.WriteText(t, filepath.Join(base, "in", "show.txt"), plainTranscript)
	out := filepath.Join(base, "out")
	testsupport.WriteText(t, filepath.Join(out, "show.txt"), "keep me")

	runner := batch.New(cfg, nil, nil)
	for range 2 {
		if _, err := runner.Run(context.Background(), input, out); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}

	want := []string{"show-1.txt", "show-2.txt", "show.txt"}
	if got := testsupport.ListNames(t, out); !slices.Equal(got, want) {
		t.Fatalf("outputs = %v, want %v", got, want)
	}
	if got := testsupport.ReadText(t, filepath.Join(out, "show.txt")); got != "keep me" {
		t.Fatalf("existing output was overwritten: %q", got)
	}
}

func TestRunParallelRecordsLedger(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLedger(), testsupport.WithJobs(4))
	store := testsupport.MustOpenLedger(t, cfg)
	base := testsupport.BaseDir(cfg)
	in := filepath.Join(base, "in")
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt", "f.txt"} {
		testsupport.WriteText(t, filepath.Join(in, name), plainTranscript)
	}
	testsupport.WriteText(t, filepath.Join(in, "g.json"), `{}`)

	ctx := services.WithRunID(context.Background(), "run-42")
	summary, err := batch.New(cfg, store, nil).Run(ctx, in, filepath.Join(base, "out"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Cleaned != 6 || summary.Skipped != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	entries, err := store.Recent(context.Background(), 100)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 7 {
		t.Fatalf("expected 7 ledger entries, got %d", len(entries))
	}
	statuses := map[string]int{}
	for _, entry := range entries {
		if entry.RunID != "run-42" {
			t.Fatalf("entry missing run id: %+v", entry)
		}
		statuses[entry.Status]++
	}
	if statuses["cleaned"] != 6 || statuses["missing"] != 1 {
		t.Fatalf("unexpected ledger statuses %v", statuses)
	}
}

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	if _, err := batch.CollectInputs(filepath.Join(dir, "missing")); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing input, got %v", err)
	}
	if _, err := batch.CollectInputs(dir); !errors.Is(err, services.ErrMissingData) {
		t.Fatalf("expected missing data for empty dir, got %v", err)
	}

	testsupport.WriteText(t, filepath.Join(dir, "b.TXT"), "x")
	testsupport.WriteText(t, filepath.Join(dir, "a.json"), "{}")
	testsupport.WriteText(t, filepath.Join(dir, "sub", "c.txt"), "x")
	got, err := batch.CollectInputs(dir)
	if err != nil {
		t.Fatalf("CollectInputs: %v", err)
	}
	want := []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.TXT")}
	if !slices.Equal(got, want) {
		t.Fatalf("inputs = %v, want %v", got, want)
	}
}
