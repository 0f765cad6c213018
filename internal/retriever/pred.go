package retriever

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"clamsutils/internal/fileutil"
	"clamsutils/internal/logging"
	"clamsutils/internal/services"
	"clamsutils/internal/textutil"
)

// Predictions posts pipeline to storageURL and writes every returned MMIF
// into folder as <guid>.mmif (<guid>-1.mmif when two GUIDs sanitize to the
// same name). An empty storageURL falls back to the configured endpoint.
func (c *Client) Predictions(ctx context.Context, storageURL string, pipeline []byte, folder string) (Result, error) {
	target := strings.TrimSpace(storageURL)
	if target == "" {
		target = c.storageURL
	}
	if target == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, "retriever", "predictions", "storage url is required (set retriever.storage_url or AAPB_STORAGE_URL)", nil)
	}
	if !json.Valid(pipeline) {
		return Result{}, services.Wrap(services.ErrMalformedInput, "retriever", "predictions", "pipeline is not valid JSON", nil)
	}

	mmifs, err := c.fetchPredictions(ctx, target, pipeline)
	if err != nil {
		return Result{}, err
	}

	folder, lock, err := c.prepareFolder(folder, "preds-")
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = lock.Unlock() }()

	guids := make([]string, 0, len(mmifs))
	for guid := range mmifs {
		guids = append(guids, guid)
	}
	slices.Sort(guids)

	result := Result{Folder: folder, Files: []string{}}
	for _, guid := range guids {
		name := textutil.SanitizeFileName(guid)
		if name == "" {
			logging.WarnWithContext(c.logger, "prediction skipped", "prediction_invalid_guid",
				logging.String("guid", guid),
				logging.String(logging.FieldErrorHint, "storage returned an empty identifier"),
			)
			continue
		}
		content, err := mmifContent(mmifs[guid])
		if err != nil {
			return result, services.Wrap(services.ErrMalformedInput, "retriever", "predictions", fmt.Sprintf("mmif for %s", guid), err)
		}
		path, err := fileutil.WriteUnique(folder, name, ".mmif", content)
		if err != nil {
			return result, err
		}
		result.Files = append(result.Files, path)
	}

	c.logger.Info("predictions downloaded",
		logging.String(logging.FieldEventType, "pred_download_complete"),
		logging.String("folder", folder),
		logging.Int("files", len(result.Files)),
	)
	return result, nil
}

func (c *Client) fetchPredictions(ctx context.Context, target string, pipeline []byte) (map[string]json.RawMessage, error) {
	req, err := c.newRequest(ctx, http.MethodPost, target, bytes.NewReader(pipeline))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req, "request predictions")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var mmifs map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&mmifs); err != nil {
		return nil, services.Wrap(services.ErrMalformedInput, "retriever", "decode predictions", "storage response is not a JSON object", err)
	}
	return mmifs, nil
}

// mmifContent accepts either an embedded MMIF object or a serialized MMIF
// string and returns the document bytes.
func mmifContent(raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var serialized string
		if err := json.Unmarshal(trimmed, &serialized); err != nil {
			return nil, err
		}
		return []byte(serialized), nil
	}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.New("empty document")
	}
	return trimmed, nil
}
