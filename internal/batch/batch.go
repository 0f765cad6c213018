package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"clamsutils/internal/config"
	"clamsutils/internal/fileutil"
	"clamsutils/internal/guid"
	"clamsutils/internal/ledger"
	"clamsutils/internal/logging"
	"clamsutils/internal/preflight"
	"clamsutils/internal/services"
	"clamsutils/internal/transcript"
)

// Recorder persists per-file outcomes. *ledger.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, entry ledger.Entry) (ledger.Entry, error)
}

// Runner cleans transcripts in bulk.
type Runner struct {
	pipeline  *transcript.Pipeline
	extractor *transcript.SpanExtractor
	jobs      int
	recorder  Recorder
	logger    *slog.Logger
}

// Item is the outcome for one input file.
type Item struct {
	Input       string `json:"input"`
	Output      string `json:"output,omitempty"`
	GUID        string `json:"guid,omitempty"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	InputChars  int    `json:"input_chars"`
	OutputChars int    `json:"output_chars"`
	Speakers    int    `json:"speakers"`
}

// Summary totals a run.
type Summary struct {
	OutputDir string        `json:"output_dir"`
	Total     int           `json:"total"`
	Cleaned   int           `json:"cleaned"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Elapsed   time.Duration `json:"elapsed"`
	Items     []Item        `json:"items"`
}

// New builds a Runner from cfg. recorder may be nil to disable the ledger.
func New(cfg *config.Config, recorder Recorder, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	rules := transcript.RulesFromConfig(cfg)
	jobs := 1
	if cfg != nil && cfg.Cleanup.Jobs > 1 {
		jobs = cfg.Cleanup.Jobs
	}
	return &Runner{
		pipeline:  transcript.NewPipeline(rules),
		extractor: transcript.NewSpanExtractor(rules),
		jobs:      jobs,
		recorder:  recorder,
		logger:    logging.NewComponentLogger(logger, "batch"),
	}
}

// Run cleans in (a file or a directory) into the directory out.
func (r *Runner) Run(ctx context.Context, in, out string) (Summary, error) {
	started := time.Now()
	summary := Summary{OutputDir: out}

	inputs, err := CollectInputs(in)
	if err != nil {
		return summary, err
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "batch", "create output", out, err)
	}
	if result := preflight.CheckDirectoryAccess("Output directory", out); !result.Passed {
		return summary, preflight.FirstFailure([]preflight.Result{result})
	}

	r.logger.Info("cleanup started",
		logging.String(logging.FieldEventType, "cleanup_start"),
		logging.String("input", in),
		logging.String("output_dir", out),
		logging.Int("files", len(inputs)),
		logging.Int("jobs", r.jobs),
	)

	items := make([]Item, len(inputs))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.jobs)
	for i, path := range inputs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				items[i] = Item{Input: path, Status: services.Outcome(err), Error: err.Error()}
				return err
			}
			item, err := r.processFile(groupCtx, path, out)
			items[i] = item
			if err != nil && !services.Skippable(err) {
				return err
			}
			return nil
		})
	}
	runErr := group.Wait()

	summary.Items = items
	summary.Total = len(items)
	for _, item := range items {
		switch item.Status {
		case services.OutcomeCleaned:
			summary.Cleaned++
		case services.OutcomeMissing, services.OutcomeMalformed:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	summary.Elapsed = time.Since(started)

	r.logger.Info("cleanup finished",
		logging.String(logging.FieldEventType, "cleanup_complete"),
		logging.Int("cleaned", summary.Cleaned),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, runErr
}

func (r *Runner) processFile(ctx context.Context, path, out string) (Item, error) {
	ctx = services.WithInputPath(ctx, path)
	logger := logging.WithContext(ctx, r.logger)
	item := Item{Input: path}
	if id, ok := guid.FromPath(path); ok {
		item.GUID = id
	}

	err := r.cleanInto(&item, out)
	item.Status = services.Outcome(err)
	if err != nil {
		item.Error = err.Error()
		if services.Skippable(err) {
			logging.WarnWithContext(logger, "transcript skipped", "transcript_skipped",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check that the file holds plain text or AAPB JSON with parts[].text"),
			)
		} else {
			logging.ErrorWithContext(logger, "transcript failed", "transcript_failed", logging.Error(err))
		}
	} else {
		logger.Debug("transcript cleaned",
			logging.String("output", item.Output),
			logging.Int("speakers", item.Speakers),
			logging.Int("input_chars", item.InputChars),
			logging.Int("output_chars", item.OutputChars),
		)
	}

	r.record(ctx, logger, item)
	return item, err
}

func (r *Runner) cleanInto(item *Item, out string) error {
	src, err := transcript.ReadFile(item.Input)
	if err != nil {
		return err
	}
	cleaned := r.pipeline.Clean(src.Text)
	item.InputChars = len(src.Text)
	item.OutputChars = len(cleaned)
	item.Speakers = countSpeakers(r.extractor.Extract(src.Text))

	output, err := fileutil.WriteUnique(out, fileutil.Stem(item.Input), ".txt", []byte(cleaned))
	if err != nil {
		return fmt.Errorf("write output for %s: %w", item.Input, err)
	}
	item.Output = output
	return nil
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, item Item) {
	if r.recorder == nil {
		return
	}
	runID, _ := services.RunIDFromContext(ctx)
	entry := ledger.Entry{
		RunID:       runID,
		InputPath:   item.Input,
		OutputPath:  item.Output,
		GUID:        item.GUID,
		Status:      item.Status,
		Error:       item.Error,
		InputChars:  item.InputChars,
		OutputChars: item.OutputChars,
		Speakers:    item.Speakers,
	}
	if _, err := r.recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		logging.WarnWithContext(logger, "ledger write failed", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "outcome not recorded"),
		)
	}
}

func countSpeakers(spans []transcript.Span) int {
	seen := make(map[string]struct{}, len(spans))
	for _, span := range spans {
		seen[span.SpeakerID] = struct{}{}
	}
	return len(seen)
}

// CollectInputs returns in itself when it is a file, or the sorted .json and
// .txt files directly inside it when it is a directory.
func CollectInputs(in string) ([]string, error) {
	info, err := os.Stat(in)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrConfiguration, "batch", "collect inputs", fmt.Sprintf("%s does not exist", in), nil)
		}
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if !info.IsDir() {
		return []string{in}, nil
	}

	entries, err := os.ReadDir(in)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}
	var inputs []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".txt":
			inputs = append(inputs, filepath.Join(in, entry.Name()))
		}
	}
	slices.Sort(inputs)
	if len(inputs) == 0 {
		return nil, services.Wrap(services.ErrMissingData, "batch", "collect inputs", fmt.Sprintf("no .json or .txt files in %s", in), nil)
	}
	return inputs, nil
}
