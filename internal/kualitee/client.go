// SPDX-License-Identifier: Apache-2.0

package kualitee

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nischay/kualitee-cli/internal/logging"
	"github.com/pkg/errors"
)

const (
	// DefaultBaseURL is the public Kualitee API root.
	DefaultBaseURL = "https://apiss3.kualitee.com/api/v2"
	// DefaultListLength is the page size requested from list endpoints.
	DefaultListLength = 2000
	// DefaultRCAField is the custom field holding the root cause of a defect.
	DefaultRCAField = "custom_field_11665"

	maxLoggedBody = 2000
)

// Options configures a Client.
type Options struct {
	BaseURL            string
	Token              string
	ProjectID          int
	Timeout            time.Duration
	InsecureSkipVerify bool
	DefectListLength   int
	TestCaseListLength int
	FetchWorkers       int
	RCAField           string

	// HTTPClient overrides the client built from Timeout and InsecureSkipVerify.
	HTTPClient *http.Client
}

// Client talks to the Kualitee REST API. Read operations never return errors to
// the caller: failures are logged and surface as empty results.
type Client struct {
	opts   Options
	http   *http.Client
	logger *slog.Logger
}

// HTTPError is returned for any non-200 response.
type HTTPError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s returned HTTP %d", e.Method, e.Endpoint, e.StatusCode)
}

// NewClient creates a client. A nil logger discards all output.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.DefectListLength <= 0 {
		opts.DefectListLength = DefaultListLength
	}
	if opts.TestCaseListLength <= 0 {
		opts.TestCaseListLength = DefaultListLength
	}
	if opts.FetchWorkers <= 0 {
		opts.FetchWorkers = DefaultFetchWorkers
	}
	if opts.RCAField == "" {
		opts.RCAField = DefaultRCAField
	}
	if logger == nil {
		logger = logging.Discard()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if opts.InsecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
		}
		httpClient = &http.Client{Timeout: opts.Timeout, Transport: transport}
	}

	return &Client{opts: opts, http: httpClient, logger: logger}
}

// FetchWorkers is the configured bound for concurrent detail fetches.
func (c *Client) FetchWorkers() int {
	return c.opts.FetchWorkers
}

// credentials returns the fields every JSON request carries.
func (c *Client) credentials() map[string]any {
	return map[string]any{
		"token":      c.opts.Token,
		"project_id": c.opts.ProjectID,
	}
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body map[string]any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrapf(err, "encoding %s request", endpoint)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrapf(err, "building %s request", endpoint)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, endpoint, maskFields(body), out)
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	target := c.opts.BaseURL + endpoint + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return errors.Wrapf(err, "building %s request", endpoint)
	}

	return c.do(req, endpoint+"?"+maskQuery(query).Encode(), nil, out)
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrapf(err, "building %s request", endpoint)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	logged := make(map[string]any, len(form))
	for key, values := range maskQuery(form) {
		logged[key] = strings.Join(values, ",")
	}
	return c.do(req, endpoint, logged, out)
}

// postMultipart uploads one file under fileField alongside plain form fields.
// The file is read and closed before the request is sent.
func (c *Client) postMultipart(ctx context.Context, endpoint string, fields map[string]string, fileField, filePath, contentType string, out any) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return errors.Wrapf(err, "writing form field %s", key)
		}
	}

	if err := writeFilePart(writer, fileField, filePath, contentType); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "closing multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+endpoint, &body)
	if err != nil {
		return errors.Wrapf(err, "building %s request", endpoint)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	logged := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		logged[key] = value
	}
	logged[fileField] = filepath.Base(filePath)

	return c.do(req, endpoint, maskFields(logged), out)
}

func writeFilePart(writer *multipart.Writer, fieldName, filePath, contentType string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return errors.Wrapf(err, "opening %s", filePath)
	}
	defer file.Close()

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(fieldName), escapeQuotes(filepath.Base(filePath))))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return errors.Wrap(err, "creating file part")
	}
	if _, err := io.Copy(part, file); err != nil {
		return errors.Wrapf(err, "reading %s", filePath)
	}
	return nil
}

// do sends the request and decodes a 200 response into out.
func (c *Client) do(req *http.Request, endpoint string, loggedBody map[string]any, out any) error {
	c.logger.Info("api request", "method", req.Method, "endpoint", endpoint)
	if loggedBody != nil {
		if data, err := json.MarshalIndent(loggedBody, "", "  "); err == nil {
			c.logger.Debug("request body", "endpoint", endpoint, "body", string(data))
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		// The request URL may carry the token in its query.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = c.opts.BaseURL + endpoint
		}
		c.logger.Error("api request failed", "method", req.Method, "endpoint", endpoint,
			"elapsed", elapsed.Round(time.Millisecond), "error", err.Error())
		return errors.Wrapf(err, "%s %s", req.Method, endpoint)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.logger.Info("api response", "method", req.Method, "endpoint", endpoint,
		"status", resp.StatusCode, "elapsed", elapsed.Round(time.Millisecond))
	if err != nil {
		c.logger.Error("reading response body failed", "endpoint", endpoint, "error", err.Error())
		return errors.Wrapf(err, "reading %s response", endpoint)
	}
	c.logger.Debug("response body", "endpoint", endpoint, "body", logging.Truncate(string(data), maxLoggedBody))

	if resp.StatusCode != http.StatusOK {
		httpErr := &HTTPError{
			Method:     req.Method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       logging.Truncate(string(data), maxLoggedBody),
		}
		c.logger.Error("api error", "method", req.Method, "endpoint", endpoint,
			"status", resp.StatusCode, "body", httpErr.Body)
		return httpErr
	}

	if out == nil {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		c.logger.Error("malformed response body", "endpoint", endpoint, "error", err.Error())
		return errors.Wrapf(err, "decoding %s response", endpoint)
	}
	return nil
}

func maskFields(fields map[string]any) map[string]any {
	masked := make(map[string]any, len(fields))
	for k, v := range fields {
		masked[k] = v
	}
	if token, ok := masked["token"].(string); ok {
		masked["token"] = logging.MaskToken(token)
	}
	return masked
}

func maskQuery(values url.Values) url.Values {
	masked := make(url.Values, len(values))
	for k, v := range values {
		masked[k] = append([]string(nil), v...)
	}
	if token := masked.Get("token"); token != "" {
		masked.Set("token", logging.MaskToken(token))
	}
	return masked
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// Flag decodes the loosely typed "status" field of response envelopes.
type Flag bool

// UnmarshalJSON accepts booleans, numbers and strings.
func (f *Flag) UnmarshalJSON(data []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch t := v.(type) {
	case bool:
		*f = Flag(t)
	case json.Number:
		*f = t.String() != "0"
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		*f = Flag(s != "" && s != "false" && s != "0")
	default:
		*f = false
	}
	return nil
}

// envelope is the common shape of write responses.
type envelope struct {
	Status  *Flag `json:"status"`
	Message any   `json:"message"`
}
