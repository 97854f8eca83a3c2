// Package registry queries an npm-compatible package registry for published
// versions. Lookups are best-effort: callers degrade failures to an unknown
// sentinel instead of aborting the audit.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"github.com/pkgvet/pkgvet/pkg/report"
	"github.com/pkgvet/pkgvet/pkg/tree"
)

// DefaultBaseURL is the public npm registry.
const DefaultBaseURL = "https://registry.npmjs.org"

const (
	requestTimeout = 30 * time.Second
	maxRetries     = 3
)

// ErrNotFound indicates the registry has no such package.
var ErrNotFound = errors.New("package not found in registry")

// ErrNoVersions indicates the registry returned no usable version entries.
var ErrNoVersions = errors.New("no published versions found")

// Client looks up package metadata from one registry endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the given registry base URL; an empty URL
// selects the public npm registry.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type packageDocument struct {
	Versions map[string]json.RawMessage `json:"versions"`
}

// Versions returns the package's published versions sorted ascending by
// semver ordering. Version strings the registry reports that do not parse as
// semver are skipped.
func (c *Client) Versions(ctx context.Context, name string) ([]string, error) {
	doc, err := c.fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	parsed := make([]*semver.Version, 0, len(doc.Versions))
	for raw := range doc.Versions {
		v, err := semver.NewVersion(raw)
		if err != nil {
			log.Debugf("skipping unparseable registry version %q for %s", raw, name)
			continue
		}
		parsed = append(parsed, v)
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoVersions, name)
	}
	sort.Sort(semver.Collection(parsed))

	out := make([]string, len(parsed))
	for i, v := range parsed {
		out[i] = v.Original()
	}
	return out, nil
}

// LatestVersion returns the newest published version of the package.
func (c *Client) LatestVersion(ctx context.Context, name string) (string, error) {
	versions, err := c.Versions(ctx, name)
	if err != nil {
		return "", err
	}
	return versions[len(versions)-1], nil
}

// Resolve annotates the candidate with the latest known registry version.
// Failures degrade to the unknown sentinel; unnamed candidates are skipped.
func (c *Client) Resolve(ctx context.Context, cand *tree.Candidate) {
	if cand.Name == "" || cand.Latest != "" {
		return
	}
	latest, err := c.LatestVersion(ctx, cand.Name)
	if err != nil {
		log.Debugf("registry lookup failed for %s: %v", cand.Name, err)
		cand.Latest = report.LatestUnknown
		return
	}
	cand.Latest = latest
}

// fetch retrieves the package document, retrying transient failures with
// capped exponential backoff. 404s are permanent.
func (c *Client) fetch(ctx context.Context, name string) (*packageDocument, error) {
	endpoint := c.baseURL + "/" + escapeName(name)

	var doc packageDocument
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrNotFound, name))
		case resp.StatusCode >= 500:
			return fmt.Errorf("registry returned %d for %s", resp.StatusCode, name)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("registry returned %d for %s", resp.StatusCode, name))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &doc); err != nil {
			return backoff.Permanent(fmt.Errorf("invalid registry response for %s: %w", name, err))
		}
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}
	return &doc, nil
}

// escapeName encodes a package name for the registry URL, keeping the scope
// separator of scoped packages ("@scope/name") in its encoded form.
func escapeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(url.PathEscape(name), "%2F", "%2f")
}
