package aapbjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Document is an AAPB-JSON transcript.
type Document struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Parts    []Part `json:"parts"`
}

// Part is one timed utterance. Times are seconds with three decimals.
type Part struct {
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Text      string    `json:"text"`
	SpeakerID SpeakerID `json:"speaker_id"`
}

// SpeakerID is either a running number or a speaker label. It marshals as a
// JSON number when it holds an integer and as a string otherwise.
type SpeakerID struct {
	num   int
	label string
	isNum bool
}

// NumericSpeaker returns an integer SpeakerID.
func NumericSpeaker(n int) SpeakerID {
	return SpeakerID{num: n, isNum: true}
}

// LabelSpeaker returns a string SpeakerID.
func LabelSpeaker(label string) SpeakerID {
	return SpeakerID{label: label}
}

// Int returns the numeric id and whether the id is numeric.
func (s SpeakerID) Int() (int, bool) {
	return s.num, s.isNum
}

func (s SpeakerID) String() string {
	if s.isNum {
		return strconv.Itoa(s.num)
	}
	return s.label
}

// MarshalJSON implements json.Marshaler.
func (s SpeakerID) MarshalJSON() ([]byte, error) {
	if s.isNum {
		return []byte(strconv.Itoa(s.num)), nil
	}
	return json.Marshal(s.label)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *SpeakerID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var label string
		if err := json.Unmarshal(trimmed, &label); err != nil {
			return err
		}
		*s = LabelSpeaker(label)
		return nil
	}
	if bytes.Equal(trimmed, []byte("null")) {
		*s = SpeakerID{}
		return nil
	}
	n, err := strconv.Atoi(string(trimmed))
	if err != nil {
		return fmt.Errorf("speaker_id must be an integer or string: %w", err)
	}
	*s = NumericSpeaker(n)
	return nil
}

// FormatSeconds renders seconds the way AAPB-JSON stores times.
func FormatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
