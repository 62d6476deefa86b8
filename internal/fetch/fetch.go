// Package fetch downloads, verifies and unpacks source archives.
package fetch

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Archive is a remote source archive and its expected digest. At least one
// of MD5 and SHA256 should be set.
type Archive struct {
	URL    string
	MD5    string
	SHA256 string
}

// Filename returns the base name of the archive.
func (a Archive) Filename() string {
	return path.Base(a.URL)
}

// ChecksumError reports a digest mismatch. The offending file is removed
// before it is returned.
type ChecksumError struct {
	File     string
	Algo     string
	Expected string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%s: %s mismatch: want %s, got %s", e.File, e.Algo, e.Expected, e.Actual)
}

// Fetcher downloads archives over HTTP.
type Fetcher struct {
	Client *http.Client
}

// New returns a Fetcher with a bounded request timeout.
func New() *Fetcher {
	return &Fetcher{Client: &http.Client{Timeout: 10 * time.Minute}}
}

// Get makes sure a is downloaded into dir and verified, then unpacks it into
// dir. A previously downloaded file is reused when its digest matches.
func (f *Fetcher) Get(ctx context.Context, a Archive, dir string) error {
	file := filepath.Join(dir, a.Filename())
	if err := Verify(file, a); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("discarding cached archive", "file", file, "error", err)
		}
		slog.Info("downloading", "url", a.URL)
		if err := f.Download(ctx, a.URL, file); err != nil {
			return err
		}
		if err := Verify(file, a); err != nil {
			return err
		}
	}
	return Extract(file, dir)
}

// Download writes the body of url to file.
func (f *Fetcher) Download(ctx context.Context, url, file string) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	tmp := file + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("download %s: %w", url, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, file)
}

// Verify checks file against the digests of a. On mismatch the file is
// removed and a *ChecksumError is returned.
func Verify(file string, a Archive) error {
	type digest struct {
		algo, want string
		h          hash.Hash
	}
	var checks []digest
	if a.SHA256 != "" {
		checks = append(checks, digest{"sha256", a.SHA256, sha256.New()})
	}
	if a.MD5 != "" {
		checks = append(checks, digest{"md5", a.MD5, md5.New()})
	}

	fp, err := os.Open(file)
	if err != nil {
		return err
	}
	writers := make([]io.Writer, len(checks))
	for i := range checks {
		writers[i] = checks[i].h
	}
	_, err = io.Copy(io.MultiWriter(writers...), fp)
	fp.Close()
	if err != nil {
		return err
	}

	for _, c := range checks {
		actual := hex.EncodeToString(c.h.Sum(nil))
		if !strings.EqualFold(actual, c.want) {
			os.Remove(file)
			return &ChecksumError{File: file, Algo: c.algo, Expected: c.want, Actual: actual}
		}
	}
	return nil
}
