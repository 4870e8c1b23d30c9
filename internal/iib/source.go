package iib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/util/retry"
)

// DefaultIndexURL is the index document published by the CI trigger pipeline.
const DefaultIndexURL = "https://raw.githubusercontent.com/RedHatQE/openshift-ci-trigger/main/operators-latest-iib.json"

// Source provides the index document.
type Source interface {
	Load(ctx context.Context) (Index, error)
	String() string
}

// FileSource reads the index from a local file.
type FileSource struct {
	Path string
}

func (s *FileSource) Load(_ context.Context) (Index, error) {
	return LoadFile(s.Path)
}

func (s *FileSource) String() string {
	return "file://" + s.Path
}

// ObjectDownloader checks for and downloads object-storage objects.
type ObjectDownloader interface {
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)
	DownloadToFile(ctx context.Context, bucket, key, path string) error
}

// ErrIndexNotFound is returned when the configured index object is missing.
var ErrIndexNotFound = errors.New("IIB index not found")

// S3Source downloads the index from a bucket to a temporary file and parses
// it from there.
type S3Source struct {
	Bucket string
	Key    string
	Client ObjectDownloader
	// TempDir is the directory of the downloaded copy; os.TempDir() when empty.
	TempDir string
}

func (s *S3Source) Load(ctx context.Context) (Index, error) {
	exists, err := s.Client.ObjectExists(ctx, s.Bucket, s.Key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, s)
	}

	f, err := os.CreateTemp(s.TempDir, "iib-index-*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary index file: %w", err)
	}
	path := f.Name()
	_ = f.Close()
	defer os.Remove(path)

	if err := s.Client.DownloadToFile(ctx, s.Bucket, s.Key, path); err != nil {
		return nil, err
	}
	return LoadFile(path)
}

func (s *S3Source) String() string {
	return fmt.Sprintf("s3://%s/%s", s.Bucket, s.Key)
}

// HTTPSource fetches the index over HTTP(S).
type HTTPSource struct {
	URL    string
	Client *http.Client
	Retry  []retry.Option
}

func (s *HTTPSource) Load(ctx context.Context) (Index, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	var body []byte
	err := retry.WithExponentialBackoff(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
		if err != nil {
			return retry.Fatal(fmt.Errorf("failed to build request: %w", err))
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", s.URL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("failed to fetch %s: unexpected status %s", s.URL, resp.Status)
			if resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusTooManyRequests {
				return retry.Fatal(err)
			}
			return err
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", s.URL, err)
		}
		return nil
	}, s.Retry...)
	if err != nil {
		return nil, err
	}

	return Parse(body)
}

func (s *HTTPSource) String() string {
	return s.URL
}
