package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"clamsutils/internal/services"
)

// partsDocument is the subset of an AAPB-JSON transcript the loader reads.
// Pointers distinguish a missing field from an empty one.
type partsDocument struct {
	Parts *[]struct {
		Text *string `json:"text"`
	} `json:"parts"`
}

// LoadParts decodes an AAPB-JSON transcript and joins its part texts with
// single spaces. ok is false when the object has no parts array or a part has
// no text; invalid JSON is a MalformedInput error.
func LoadParts(r io.Reader) (string, bool, error) {
	var doc partsDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return "", false, services.Wrap(services.ErrMalformedInput, "transcript", "decode json", "invalid transcript JSON", err)
	}
	if doc.Parts == nil {
		return "", false, nil
	}
	texts := make([]string, 0, len(*doc.Parts))
	for _, part := range *doc.Parts {
		if part.Text == nil {
			return "", false, nil
		}
		texts = append(texts, *part.Text)
	}
	return strings.Join(texts, " "), true, nil
}

// IsJSONFile reports whether path should be read as AAPB-JSON: a .json
// extension, or a .txt file whose trimmed content is wrapped in braces.
func IsJSONFile(path string) (bool, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return true, nil
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return false, services.Wrap(services.ErrMalformedInput, "transcript", "read file", path, err)
		}
		trimmed := bytes.TrimSpace(data)
		return bytes.HasPrefix(trimmed, []byte("{")) && bytes.HasSuffix(trimmed, []byte("}")), nil
	default:
		return false, nil
	}
}

// Source is a transcript read from disk, before cleanup.
type Source struct {
	Path string
	Text string
	JSON bool
}

// ReadFile loads the raw transcript text at path. Plain text gets a leading
// newline so a speaker marker on the first line is anchored like any other.
// JSON parts text is used as is, with no leading newline, so a marker at the
// very start of the first part has nothing to anchor on and is kept. A JSON
// transcript without parts or text is a MissingData error.
func ReadFile(path string) (Source, error) {
	isJSON, err := IsJSONFile(path)
	if err != nil {
		return Source{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return Source{}, services.Wrap(services.ErrMalformedInput, "transcript", "open file", path, err)
	}
	defer file.Close()

	if isJSON {
		text, ok, err := LoadParts(file)
		if err != nil {
			return Source{}, fmt.Errorf("%s: %w", path, err)
		}
		if !ok {
			return Source{}, services.Wrap(services.ErrMissingData, "transcript", "load parts", fmt.Sprintf("%s has no parts[].text", path), nil)
		}
		return Source{Path: path, Text: text, JSON: true}, nil
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return Source{}, services.Wrap(services.ErrMalformedInput, "transcript", "read file", path, err)
	}
	return Source{Path: path, Text: "\n" + string(data)}, nil
}

// CleanFile reads path and returns its cleaned transcript.
func CleanFile(path string, rules Rules) (string, error) {
	return NewPipeline(rules).CleanFile(path)
}

// CleanFile reads path and runs the pipeline over its transcript text.
func (p *Pipeline) CleanFile(path string) (string, error) {
	src, err := ReadFile(path)
	if err != nil {
		return "", err
	}
	return p.Clean(src.Text), nil
}
