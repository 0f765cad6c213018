package retriever

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"clamsutils/internal/fileutil"
	"clamsutils/internal/logging"
	"clamsutils/internal/services"
)

// goldListing is the subset of GitHub's directory page JSON the retriever uses.
// The endpoint is undocumented.
type goldListing struct {
	Payload *struct {
		Tree struct {
			Items []struct {
				Path        string `json:"path"`
				ContentType string `json:"contentType"`
			} `json:"items"`
		} `json:"tree"`
		Repo struct {
			OwnerLogin string `json:"ownerLogin"`
			Name       string `json:"name"`
		} `json:"repo"`
		RefInfo struct {
			Name string `json:"name"`
		} `json:"refInfo"`
	} `json:"payload"`
}

// Gold downloads every file of the GitHub directory at dirURL into folder.
// Files sharing a base name are kept side by side as name-1.ext, name-2.ext.
func (c *Client) Gold(ctx context.Context, dirURL, folder string) (Result, error) {
	dirURL = strings.TrimSpace(dirURL)
	if dirURL == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, "retriever", "gold", "directory url is required", nil)
	}

	listing, err := c.fetchListing(ctx, dirURL)
	if err != nil {
		return Result{}, err
	}

	folder, lock, err := c.prepareFolder(folder, "golds-")
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = lock.Unlock() }()

	p := listing.Payload
	result := Result{Folder: folder, Files: []string{}}
	for _, item := range p.Tree.Items {
		if item.ContentType == "directory" || item.Path == "" {
			continue
		}
		rawURL, err := url.JoinPath(c.rawBaseURL, p.Repo.OwnerLogin, p.Repo.Name, p.RefInfo.Name, item.Path)
		if err != nil {
			return result, services.Wrap(services.ErrConfiguration, "retriever", "gold", "build raw url", err)
		}
		target, err := c.download(ctx, rawURL, folder, path.Base(item.Path))
		if err != nil {
			return result, err
		}
		result.Files = append(result.Files, target)
		c.logger.Debug("gold file downloaded",
			logging.String("url", rawURL),
			logging.String("file", target),
		)
	}

	c.logger.Info("gold files downloaded",
		logging.String(logging.FieldEventType, "gold_download_complete"),
		logging.String("folder", folder),
		logging.Int("files", len(result.Files)),
	)
	return result, nil
}

func (c *Client) fetchListing(ctx context.Context, dirURL string) (goldListing, error) {
	req, err := c.newRequest(ctx, http.MethodGet, dirURL, nil)
	if err != nil {
		return goldListing{}, err
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.do(req, "list gold directory")
	if err != nil {
		return goldListing{}, err
	}
	defer resp.Body.Close()

	var listing goldListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil || listing.Payload == nil {
		msg := fmt.Sprintf("failed to load the directory URL %s; the gold retriever relies on an undocumented GitHub endpoint which may have changed", dirURL)
		return goldListing{}, services.Wrap(services.ErrMalformedInput, "retriever", "decode gold listing", msg, err)
	}
	return listing, nil
}

// download saves rawURL under folder as name, or a suffixed variant when
// name is taken, and returns the written path.
func (c *Client) download(ctx context.Context, rawURL, folder, name string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	c.authorize(req)

	resp, err := c.do(req, "download gold file")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	ext := filepath.Ext(name)
	return fileutil.CopyUnique(folder, strings.TrimSuffix(name, ext), ext, resp.Body)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
