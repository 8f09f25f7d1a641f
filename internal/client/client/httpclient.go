package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/resumecli/internal/client/models"
	"github.com/dmitrijs2005/resumecli/internal/common"
	"github.com/dmitrijs2005/resumecli/internal/logging"
	"github.com/google/uuid"
)

const (
	pathRegister  = "/api/auth/register"
	pathLogin     = "/api/auth/login"
	pathMe        = "/api/auth/me"
	pathUpload    = "/api/resume/upload"
	pathResumes   = "/api/resume/"
	pathDashboard = "/api/dashboard/"

	uploadField = "file"
)

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
	log     logging.Logger
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. The timeout passed to
// NewHTTPClient is applied to it.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient returns a client for the backend at baseURL. A zero timeout
// disables the per-request deadline.
func NewHTTPClient(baseURL string, timeout time.Duration, creds CredentialSource, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		creds:   creds,
		log:     logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	c.http.Timeout = timeout
	return c
}

var errEmptyToken = errors.New("decode response: empty access_token")

type requestBody struct {
	reader      io.Reader
	contentType string
}

func jsonBody(v any) (*requestBody, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return &requestBody{reader: bytes.NewReader(b), contentType: "application/json"}, nil
}

func multipartBody(field, filename string, content io.Reader) (*requestBody, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copy file content: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	return &requestBody{reader: &buf, contentType: w.FormDataContentType()}, nil
}

// do executes one request. out may be nil when the body is not needed.
func (c *HTTPClient) do(ctx context.Context, method, path string, body *requestBody, requiresAuth bool, out any) error {
	var reader io.Reader
	if body != nil {
		reader = body.reader
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", body.contentType)
	}

	if requiresAuth && c.creds != nil {
		cred, ok, err := c.creds.Load(ctx)
		if err != nil {
			return fmt.Errorf("load credential: %w", err)
		}
		if ok {
			req.Header.Set(common.AuthorizationHeader, common.BearerScheme+" "+cred.AccessToken)
		}
	}

	log := c.log.With("method", method, "path", path, "request_id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug(ctx, "request failed", "error", err)
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseAPIError(resp.StatusCode, data)
		log.Debug(ctx, "request rejected", "status", resp.StatusCode, "kind", apiErr.Kind.String())
		return apiErr
	}

	log.Debug(ctx, "request completed", "status", resp.StatusCode)

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) credential(ctx context.Context, path string, payload any) (models.Credential, error) {
	body, err := jsonBody(payload)
	if err != nil {
		return models.Credential{}, err
	}

	var cred models.Credential
	if err := c.do(ctx, http.MethodPost, path, body, false, &cred); err != nil {
		return models.Credential{}, err
	}
	if cred.AccessToken == "" {
		return models.Credential{}, errEmptyToken
	}
	if cred.TokenType == "" {
		cred.TokenType = common.DefaultTokenType
	}
	return cred, nil
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (models.Credential, error) {
	return c.credential(ctx, pathRegister, req)
}

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (models.Credential, error) {
	return c.credential(ctx, pathLogin, req)
}

func (c *HTTPClient) Me(ctx context.Context) (models.UserProfile, error) {
	var u models.UserProfile
	if err := c.do(ctx, http.MethodGet, pathMe, nil, true, &u); err != nil {
		return models.UserProfile{}, err
	}
	return u, nil
}

func (c *HTTPClient) UploadResume(ctx context.Context, filename string, content io.Reader) (models.UploadOutcome, error) {
	body, err := multipartBody(uploadField, filename, content)
	if err != nil {
		return models.UploadOutcome{}, err
	}

	var out models.UploadOutcome
	if err := c.do(ctx, http.MethodPost, pathUpload, body, true, &out); err != nil {
		return models.UploadOutcome{}, err
	}
	return out, nil
}

func (c *HTTPClient) GetResume(ctx context.Context, resumeID string) (models.ResumeWithAnalysis, error) {
	var out models.ResumeWithAnalysis
	if err := c.do(ctx, http.MethodGet, pathResumes+url.PathEscape(resumeID), nil, true, &out); err != nil {
		return models.ResumeWithAnalysis{}, err
	}
	return out, nil
}

func (c *HTTPClient) ListResumes(ctx context.Context) (models.ResumeList, error) {
	var out models.ResumeList
	if err := c.do(ctx, http.MethodGet, pathResumes, nil, true, &out); err != nil {
		return models.ResumeList{}, err
	}
	return out, nil
}

func (c *HTTPClient) Dashboard(ctx context.Context) (models.DashboardSnapshot, error) {
	var out models.DashboardSnapshot
	if err := c.do(ctx, http.MethodGet, pathDashboard, nil, true, &out); err != nil {
		return models.DashboardSnapshot{}, err
	}
	return out, nil
}
