// Package jobsource loads the static job posting dataset.
//
// The dataset is produced exactly once per process lifetime with a two-tier
// fallback: remote URL first, local JSON file second, empty list last. The
// returned slice is treated as immutable for the remainder of the process.
package jobsource

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/careercoach-ai/career-coach-backend/internal/domain"
)

// Loader fetches job postings from a remote URL with a local file fallback.
type Loader struct {
	url        string
	path       string
	httpClient *http.Client
}

// New constructs a Loader. url may be empty, in which case only the local
// file is consulted.
func New(url, path string, timeout time.Duration) *Loader {
	return &Loader{
		url:        url,
		path:       path,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Load returns the job dataset. It never fails: every fallback transition is
// logged and the worst case is an empty list, which the matcher reports as a
// distinct dataset-unavailable condition at request time.
func (l *Loader) Load(ctx context.Context) []domain.JobPosting {
	if l.url != "" {
		jobs, err := l.fetchRemote(ctx)
		if err == nil {
			slog.Info("job dataset loaded from remote", slog.String("url", l.url), slog.Int("count", len(jobs)))
			return jobs
		}
		slog.Warn("remote job dataset fetch failed, falling back to local file",
			slog.String("url", l.url), slog.Any("error", err))
	}

	jobs, err := l.readLocal()
	if err != nil {
		slog.Warn("local job dataset read failed, serving empty dataset",
			slog.String("path", l.path), slog.Any("error", err))
		return nil
	}
	slog.Info("job dataset loaded from local file", slog.String("path", l.path), slog.Int("count", len(jobs)))
	return jobs
}

func (l *Loader) fetchRemote(ctx context.Context) ([]domain.JobPosting, error) {
	var jobs []domain.JobPosting
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := l.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("dataset url status %d", resp.StatusCode)
		}
		decoded, err := decodeJobs(json.NewDecoder(resp.Body))
		if err != nil {
			// A non-list payload will not become a list on retry.
			return backoff.Permanent(err)
		}
		jobs = decoded
		return nil
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (l *Loader) readLocal() ([]domain.JobPosting, error) {
	b, err := os.ReadFile(l.path)
	if err != nil {
		return nil, err
	}
	var jobs []domain.JobPosting
	if err := json.Unmarshal(b, &jobs); err != nil {
		return nil, fmt.Errorf("dataset file: %w", err)
	}
	return jobs, nil
}

func decodeJobs(dec *json.Decoder) ([]domain.JobPosting, error) {
	var jobs []domain.JobPosting
	if err := dec.Decode(&jobs); err != nil {
		return nil, fmt.Errorf("dataset payload is not a job list: %w", err)
	}
	return jobs, nil
}
