package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/billing-admin/apiclient"
	"github.com/jrsteele09/billing-admin/auth"
	"github.com/jrsteele09/billing-admin/internal/errors"
	"github.com/jrsteele09/billing-admin/users"
)

const maxErrorBody = 64 << 10

// blockResponse may omit isActive, in which case the caller's view is flipped.
type blockResponse struct {
	IsActive *bool `json:"isActive"`
}

// API is the authenticated transport. *apiclient.Client satisfies it.
type API interface {
	Do(ctx context.Context, url string, cfg apiclient.RequestConfig) (*http.Response, error)
}

// Service exposes the billing resources as typed calls. A non-2xx answer becomes *errors.RemoteRejection.
type Service struct {
	api   API
	retry RetryPolicy
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithRetryPolicy replaces DefaultRetryPolicy for the calls that retry
func WithRetryPolicy(p RetryPolicy) ServiceOption {
	return func(s *Service) {
		s.retry = p
	}
}

func NewService(api API, opts ...ServiceOption) *Service {
	s := &Service{api: api, retry: DefaultRetryPolicy}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Devices(ctx context.Context) ([]Device, error) {
	return list[Device](ctx, s.api, devicePath)
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return list[Category](ctx, s.api, categoryPath)
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*Category, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	res, err := call[Category](ctx, s.api, http.MethodPost, categoryPath, in)
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (*Category, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	res, err := call[Category](ctx, s.api, http.MethodPut, fmt.Sprintf("%s/%d", categoryPath, id), in)
	if err != nil {
		return nil, err
	}
	if res.Data.ID == 0 {
		res.Data = Category{ID: id, Name: in.Name, Period: in.Period, Price: in.Price}
	}
	return &res.Data, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	_, err := call[json.RawMessage](ctx, s.api, http.MethodDelete, fmt.Sprintf("%s/%d", categoryPath, id), nil)
	return err
}

func (s *Service) Transactions(ctx context.Context) ([]Transaction, error) {
	return list[Transaction](ctx, s.api, transactionPath)
}

func (s *Service) Users(ctx context.Context) ([]users.ManagedUser, error) {
	return list[users.ManagedUser](ctx, s.api, userPath)
}

func (s *Service) CreateUser(ctx context.Context, in NewUserInput) (*users.ManagedUser, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	res, err := call[users.ManagedUser](ctx, s.api, http.MethodPost, userPath, in)
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}

// SetBlocked toggles whether a user may sign in. currentlyActive is the state the caller last saw; it decides the
// outcome when the server does not echo the new state back. Transport failures are retried per the retry policy.
func (s *Service) SetBlocked(ctx context.Context, userID string, currentlyActive bool) (*BlockResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "user id is required")
	}

	var result *BlockResult
	err := s.retry.Do(ctx, "SetBlocked", func(ctx context.Context) error {
		res, err := send[blockResponse](ctx, s.api, apiclient.RequestConfig{
			Method:  http.MethodPatch,
			Headers: map[string]string{"Accept": "application/json"},
		}, fmt.Sprintf("%s/%s/block", userPath, userID))
		if err != nil {
			return err
		}

		result = &BlockResult{IsActive: !currentlyActive, Message: res.Message}
		if res.Data.IsActive != nil {
			result.IsActive = *res.Data.IsActive
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	res, err := call[Dashboard](ctx, s.api, http.MethodGet, dashboardPath, nil)
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}

func validateInput(in any) error {
	if err := auth.Validate(in); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrInvalidRequest, auth.FormatValidationErrors(err))
	}
	return nil
}

func list[T any](ctx context.Context, api API, path string) ([]T, error) {
	res, err := call[[]T](ctx, api, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if res.Data == nil {
		return []T{}, nil
	}
	return res.Data, nil
}

func call[T any](ctx context.Context, api API, method, path string, payload any) (*envelope[T], error) {
	cfg := apiclient.RequestConfig{Method: method}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "[billing %s %s] encode body", method, path)
		}
		cfg.Body = body
	}
	return send[T](ctx, api, cfg, path)
}

func send[T any](ctx context.Context, api API, cfg apiclient.RequestConfig, path string) (*envelope[T], error) {
	resp, err := api.Do(ctx, path, cfg)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errors.RemoteRejection{StatusCode: resp.StatusCode, Message: readMessage(resp.Body, resp.Status)}
	}

	var out envelope[T]
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.TransportError{Op: cfg.Method, URL: path, Err: err}
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrapf(err, "[billing %s %s] decode response", cfg.Method, path)
	}
	return &out, nil
}

// readMessage pulls the "message" field out of an error body, falling back to the status line.
func readMessage(r io.Reader, status string) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return status
	}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(raw))
}
