package aapbjson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/text/language"

	"clamsutils/internal/config"
	"clamsutils/internal/guid"
	"clamsutils/internal/logging"
	"clamsutils/internal/mmif"
	"clamsutils/internal/services"
)

// asrTypes are the annotation types a view must declare to be treated as
// speech recognition output.
var asrTypes = []string{mmif.TypeSentence, mmif.TypeTimeFrame, mmif.TypeAlignment, mmif.TypeTextDocument}

// Converter projects MMIF ASR views into AAPB-JSON.
type Converter struct {
	defaultLanguage string
	pretty          bool
	logger          *slog.Logger
}

// NewConverter builds a converter from the converter section of cfg.
func NewConverter(cfg *config.Config, logger *slog.Logger) *Converter {
	c := &Converter{
		defaultLanguage: "en-US",
		logger:          logging.NewComponentLogger(logger, "aapbjson"),
	}
	if cfg != nil {
		if lang := strings.TrimSpace(cfg.Converter.DefaultLanguage); lang != "" {
			c.defaultLanguage = lang
		}
		c.pretty = cfg.Converter.Pretty
	}
	return c
}

// Pretty reports whether output is indented by default.
func (c *Converter) Pretty() bool {
	return c.pretty
}

// Convert reads MMIF from r and writes AAPB-JSON to w.
func (c *Converter) Convert(ctx context.Context, r io.Reader, w io.Writer, pretty bool) (*Document, error) {
	m, err := mmif.Parse(r)
	if err != nil {
		return nil, err
	}
	doc, err := c.FromMMIF(ctx, m)
	if err != nil {
		return nil, err
	}
	if err := Write(w, doc, pretty); err != nil {
		return nil, err
	}
	return doc, nil
}

// FromMMIF builds an AAPB-JSON document from the first ASR view of m.
func (c *Converter) FromMMIF(ctx context.Context, m *mmif.Mmif) (*Document, error) {
	logger := logging.WithContext(ctx, c.logger)
	views := m.ViewsContaining(asrTypes...)
	if len(views) == 0 {
		return nil, services.Wrap(services.ErrMissingData, "aapbjson", "find asr view", "no view contains Sentence, TimeFrame, Alignment and TextDocument", nil)
	}
	view := views[0]
	logger.Debug("asr view selected",
		logging.String("view_id", view.ID),
		logging.String("app", view.Metadata.App),
		logging.Int("candidate_views", len(views)),
	)

	id, lang, err := c.identify(m, view)
	if err != nil {
		return nil, err
	}
	parts, err := partsFromView(m, view)
	if err != nil {
		return nil, err
	}
	logger.Debug("asr view converted",
		logging.String("guid", id),
		logging.String("language", lang),
		logging.Int("parts", len(parts)),
	)
	return &Document{ID: id, Language: lang, Parts: parts}, nil
}

// identify finds the GUID of the media aligned to the view's text document
// and the language of that text.
func (c *Converter) identify(m *mmif.Mmif, view *mmif.View) (string, string, error) {
	lang := c.defaultLanguage
	for _, td := range view.AnnotationsOfType(mmif.TypeTextDocument) {
		_, tdLang := td.Text()
		for _, media := range m.AlignedOfType(td, mmif.TypeAudioDocument, mmif.TypeVideoDocument) {
			location, err := media.LocationPath()
			if err != nil {
				return "", "", err
			}
			id, ok := guid.FromString(location)
			if !ok {
				continue
			}
			if tdLang != "" {
				lang = tdLang
			}
			return id, normalizeLanguage(lang), nil
		}
	}
	return "", "", services.Wrap(services.ErrMissingData, "aapbjson", "find guid", "no AAPB GUID in the aligned audio or video location", nil)
}

func normalizeLanguage(raw string) string {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return tag.String()
}

func partsFromView(m *mmif.Mmif, view *mmif.View) ([]Part, error) {
	sentences := view.AnnotationsOfType(mmif.TypeSentence)
	parts := make([]Part, 0, len(sentences))
	for i, sent := range sentences {
		start, end, err := sentenceInterval(m, view, sent)
		if err != nil {
			return nil, err
		}
		parts = append(parts, Part{
			StartTime: FormatSeconds(start),
			EndTime:   FormatSeconds(end),
			Text:      sent.String("text"),
			SpeakerID: NumericSpeaker(i + 1),
		})
	}
	return parts, nil
}

// sentenceInterval prefers a TimeFrame aligned to the sentence itself and
// otherwise spans the TimeFrames of its first and last target tokens.
func sentenceInterval(m *mmif.Mmif, view *mmif.View, sent *mmif.Annotation) (float64, float64, error) {
	if frames := m.AlignedOfType(sent, mmif.TypeTimeFrame); len(frames) > 0 {
		return mmif.Interval(frames[0])
	}

	targets := sent.Strings("targets")
	if len(targets) == 0 {
		return 0, 0, services.Wrap(services.ErrMissingData, "aapbjson", "sentence time",
			fmt.Sprintf("sentence %s has no time frame and no targets", sent.LongID()), nil)
	}
	start, end := math.Inf(1), math.Inf(-1)
	for _, ref := range []string{targets[0], targets[len(targets)-1]} {
		token, ok := m.Resolve(view, ref)
		if !ok {
			return 0, 0, services.Wrap(services.ErrMissingData, "aapbjson", "sentence time",
				fmt.Sprintf("sentence %s targets unknown annotation %q", sent.LongID(), ref), nil)
		}
		for _, frame := range m.AlignedOfType(token, mmif.TypeTimeFrame) {
			s, e, err := mmif.Interval(frame)
			if err != nil {
				return 0, 0, err
			}
			start = math.Min(start, s)
			end = math.Max(end, e)
		}
	}
	if math.IsInf(start, 0) || math.IsInf(end, 0) {
		return 0, 0, services.Wrap(services.ErrMissingData, "aapbjson", "sentence time",
			fmt.Sprintf("tokens of sentence %s are not aligned to time frames", sent.LongID()), nil)
	}
	return start, end, nil
}

// Write encodes doc as JSON, indented by two spaces when pretty is set.
func Write(w io.Writer, doc *Document, pretty bool) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encode aapb json: %w", err)
	}
	return nil
}

// Read decodes an AAPB-JSON document.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, services.Wrap(services.ErrMalformedInput, "aapbjson", "decode", "invalid AAPB JSON", err)
	}
	return &doc, nil
}

// ToMMIF is the reverse conversion, which has no agreed target layout yet.
func ToMMIF(io.Reader, io.Writer) error {
	return services.Wrap(services.ErrNotSupported, "aapbjson", "to mmif", "conversion from AAPB-JSON to MMIF is not implemented", nil)
}
