package retriever

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"clamsutils/internal/config"
	"clamsutils/internal/fileutil"
	"clamsutils/internal/logging"
	"clamsutils/internal/services"
)

const defaultTimeout = 60 * time.Second

// HTTPDoer describes the HTTP client used by the retrievers.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client downloads gold and prediction files.
type Client struct {
	client      HTTPDoer
	rawBaseURL  string
	token       string
	storageURL  string
	userAgent   string
	downloadDir string
	logger      *slog.Logger
}

// Result lists what a retrieval wrote.
type Result struct {
	Folder string   `json:"folder"`
	Files  []string `json:"files"`
}

// New returns a Client configured from cfg. A nil doer uses an http.Client
// with the configured timeout.
func New(cfg *config.Config, doer HTTPDoer, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Client{
		client: doer,
		logger: logging.NewComponentLogger(logger, "retriever"),
	}
	if cfg != nil {
		c.rawBaseURL = cfg.Retriever.RawBaseURL
		c.token = strings.TrimSpace(cfg.Retriever.GitHubToken)
		c.storageURL = strings.TrimSpace(cfg.Retriever.StorageURL)
		c.userAgent = cfg.Retriever.UserAgent
		c.downloadDir = cfg.Paths.DownloadDir
	}
	if c.client == nil {
		timeout := defaultTimeout
		if cfg != nil && cfg.RetrieverTimeout() > 0 {
			timeout = cfg.RetrieverTimeout()
		}
		c.client = &http.Client{Timeout: timeout}
	}
	return c
}

// StorageURL returns the configured storage endpoint.
func (c *Client) StorageURL() string {
	return c.storageURL
}

// prepareFolder resolves the target folder, checks it is empty and locks it.
// An empty folder name allocates a fresh temporary directory.
func (c *Client) prepareFolder(folder, pattern string) (string, *fileutil.DirLock, error) {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		base := c.downloadDir
		if base != "" {
			if err := os.MkdirAll(base, 0o755); err != nil {
				return "", nil, fmt.Errorf("create download directory: %w", err)
			}
		}
		tmp, err := os.MkdirTemp(base, pattern)
		if err != nil {
			return "", nil, fmt.Errorf("create temporary folder: %w", err)
		}
		folder = tmp
	}
	if err := fileutil.EnsureEmptyDir(folder); err != nil {
		return "", nil, err
	}
	lock, err := fileutil.LockDir(folder)
	if err != nil {
		return "", nil, err
	}
	return folder, lock, nil
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "retriever", "build request", target, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// do sends req and fails on any non-2xx status. The caller closes the body.
func (c *Client) do(req *http.Request, operation string) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternal, "retriever", operation, req.URL.String(), err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		detail := fmt.Sprintf("%s returned %d", req.URL.String(), resp.StatusCode)
		if text := strings.TrimSpace(string(snippet)); text != "" {
			detail += ": " + text
		}
		return nil, services.Wrap(services.ErrExternal, "retriever", operation, detail, nil)
	}
	return resp, nil
}
