package ocm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/oauth2"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/util/retry"
)

const (
	// ClientID is the SSO client the offline token was issued for.
	ClientID = "cloud-services"

	clustersPath = "/api/clusters_mgmt/v1/clusters"
	addonsPath   = "/api/clusters_mgmt/v1/addons"

	defaultPollInterval = 10 * time.Second
	defaultHTTPTimeout  = 30 * time.Second
)

var (
	// ErrClusterNotFound is returned when no cluster matches a name.
	ErrClusterNotFound = errors.New("cluster not found")
	// ErrAddonNotFound is returned for an unknown add-on or one that is not
	// installed on the cluster.
	ErrAddonNotFound = errors.New("addon not found")
	// ErrAddonFailed is returned when an add-on installation reports the
	// failed state.
	ErrAddonFailed = errors.New("addon installation failed")
)

// APIError is an error response of the OCM API.
type APIError struct {
	StatusCode int    `json:"-"`
	ID         string `json:"id"`
	Code       string `json:"code"`
	Reason     string `json:"reason"`
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("OCM API error %d (%s): %s", e.StatusCode, e.Code, e.Reason)
	}
	return fmt.Sprintf("OCM API error %d", e.StatusCode)
}

// Client talks to one OCM environment.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      []retry.Option
	poll       time.Duration
	log        logr.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the authenticated HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithHTTPTimeout sets the timeout of a single API request.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetry sets the retry options of every API request.
func WithRetry(opts ...retry.Option) Option {
	return func(c *Client) { c.retry = opts }
}

// WithPollInterval sets the interval of the Wait* methods.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.poll = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log logr.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client for the OCM API at baseURL. offlineToken is
// exchanged for access tokens at tokenURL as needed.
func NewClient(ctx context.Context, baseURL, tokenURL, offlineToken string, opts ...Option) *Client {
	conf := &oauth2.Config{
		ClientID: ClientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: offlineToken})
	hc := oauth2.NewClient(ctx, ts)
	hc.Timeout = defaultHTTPTimeout

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
		poll:       defaultPollInterval,
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends a request and decodes a JSON response into out when it is not
// nil. Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	return retry.WithExponentialBackoff(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return retry.Fatal(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		c.log.V(1).Info("OCM request", "method", method, "path", path)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			var retrieveErr *oauth2.RetrieveError
			if errors.As(err, &retrieveErr) {
				return retry.Fatal(fmt.Errorf("failed to obtain OCM access token: %w", err))
			}
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			apiErr := &APIError{StatusCode: resp.StatusCode}
			_ = json.Unmarshal(data, apiErr)
			if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
				return apiErr
			}
			return retry.Fatal(apiErr)
		}

		if out == nil || len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return retry.Fatal(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	}, c.retry...)
}

// IsNotFound reports whether err is a 404 API error.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type cluster struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

type clusterList struct {
	Items []cluster `json:"items"`
	Total int       `json:"total"`
}

// ClusterID returns the ID of the cluster with the given name.
func (c *Client) ClusterID(ctx context.Context, name string) (string, error) {
	q := url.Values{}
	q.Set("search", fmt.Sprintf("name = '%s'", name))
	q.Set("size", "1")

	var list clusterList
	if err := c.do(ctx, http.MethodGet, clustersPath+"?"+q.Encode(), nil, &list); err != nil {
		return "", fmt.Errorf("failed to look up cluster %s: %w", name, err)
	}
	if len(list.Items) == 0 {
		return "", fmt.Errorf("%w: %s", ErrClusterNotFound, name)
	}
	return list.Items[0].ID, nil
}

// AddonExists reports whether OCM knows an add-on with the given ID.
func (c *Client) AddonExists(ctx context.Context, addonID string) (bool, error) {
	err := c.do(ctx, http.MethodGet, addonsPath+"/"+url.PathEscape(addonID), nil, nil)
	switch {
	case err == nil:
		return true, nil
	case IsNotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("failed to get addon %s: %w", addonID, err)
	}
}

// Parameter is an add-on installation parameter.
type Parameter struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

type addonRef struct {
	ID string `json:"id"`
}

type parameterList struct {
	Items []Parameter `json:"items"`
}

type addonInstallation struct {
	Addon      addonRef       `json:"addon"`
	Parameters *parameterList `json:"parameters,omitempty"`
	State      string         `json:"state,omitempty"`
}

func (c *Client) installationPath(clusterID, addonID string) string {
	p := clustersPath + "/" + url.PathEscape(clusterID) + "/addons"
	if addonID != "" {
		p += "/" + url.PathEscape(addonID)
	}
	return p
}

// InstallAddon requests the installation of an add-on on a cluster.
func (c *Client) InstallAddon(ctx context.Context, clusterID, addonID string, params []Parameter) error {
	body := addonInstallation{Addon: addonRef{ID: addonID}}
	if len(params) > 0 {
		body.Parameters = &parameterList{Items: params}
	}
	if err := c.do(ctx, http.MethodPost, c.installationPath(clusterID, ""), body, nil); err != nil {
		return fmt.Errorf("failed to install addon %s: %w", addonID, err)
	}
	return nil
}

// UninstallAddon requests the removal of an add-on from a cluster.
func (c *Client) UninstallAddon(ctx context.Context, clusterID, addonID string) error {
	if err := c.do(ctx, http.MethodDelete, c.installationPath(clusterID, addonID), nil, nil); err != nil {
		return fmt.Errorf("failed to uninstall addon %s: %w", addonID, err)
	}
	return nil
}

// AddonState returns the state of an add-on installation, such as
// "installing", "ready", "failed" or "deleting". An add-on that is not
// installed returns ErrAddonNotFound.
func (c *Client) AddonState(ctx context.Context, clusterID, addonID string) (string, error) {
	var inst addonInstallation
	err := c.do(ctx, http.MethodGet, c.installationPath(clusterID, addonID), nil, &inst)
	if err != nil {
		if IsNotFound(err) {
			return "", fmt.Errorf("%w: %s", ErrAddonNotFound, addonID)
		}
		return "", fmt.Errorf("failed to get addon %s state: %w", addonID, err)
	}
	return inst.State, nil
}
