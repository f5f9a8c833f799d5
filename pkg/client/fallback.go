package client

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// fallbackClient delegates to the real transport and substitutes the mock
// double's answer when the backend is unreachable. It only masks
// infrastructure failures (no connectivity, HTML 404 pages, 5xx); domain
// errors from a live backend pass through untouched.
type fallbackClient struct {
	real Client
	mock Client
	log  logrus.FieldLogger
}

// Compile-time interface check.
var _ Client = (*fallbackClient)(nil)

// NewFallback wraps real so that infrastructure failures are answered by
// mock. Used only in development mode.
func NewFallback(real, mock Client, log logrus.FieldLogger) Client {
	return &fallbackClient{
		real: real,
		mock: mock,
		log:  log.WithField("component", "mock-fallback"),
	}
}

// shouldFallBack reports whether err is an infrastructure failure the
// mock double may mask: a transport error, a non-JSON response, or a
// JSON response with status 404 or >= 500.
func shouldFallBack(err error) bool {
	if err == nil {
		return false
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode == 404 || reqErr.StatusCode >= 500
	}

	var decErr *DecodeError
	if errors.As(err, &decErr) {
		return decErr.StatusCode == 0 ||
			decErr.StatusCode == 404 ||
			decErr.StatusCode >= 500
	}

	// Anything else from the real transport is a network-level failure.
	return true
}

func (f *fallbackClient) warn(op string, err error) {
	f.log.WithError(err).
		WithField("op", op).
		Warn("Backend not available, serving mock data")
}

func (f *fallbackClient) SetToken(token string) {
	f.real.SetToken(token)
	f.mock.SetToken(token)
}

func (f *fallbackClient) Token() string {
	return f.real.Token()
}

func (f *fallbackClient) Login(
	ctx context.Context, email, password string,
) (*AuthResponse, error) {
	resp, err := f.real.Login(ctx, email, password)
	if !shouldFallBack(err) {
		return resp, err
	}

	f.warn("login", err)

	return f.mock.Login(ctx, email, password)
}

func (f *fallbackClient) Signup(
	ctx context.Context, req SignupRequest,
) (*AuthResponse, error) {
	resp, err := f.real.Signup(ctx, req)
	if !shouldFallBack(err) {
		return resp, err
	}

	f.warn("signup", err)

	return f.mock.Signup(ctx, req)
}

func (f *fallbackClient) CurrentUser(ctx context.Context) (*MeResponse, error) {
	resp, err := f.real.CurrentUser(ctx)
	if !shouldFallBack(err) {
		return resp, err
	}

	f.warn("me", err)

	return f.mock.CurrentUser(ctx)
}

func (f *fallbackClient) Logout(ctx context.Context) error {
	err := f.real.Logout(ctx)
	if !shouldFallBack(err) {
		return err
	}

	f.warn("logout", err)

	return f.mock.Logout(ctx)
}

func (f *fallbackClient) ListCompanies(ctx context.Context) ([]Company, error) {
	resp, err := f.real.ListCompanies(ctx)
	if !shouldFallBack(err) {
		return resp, err
	}

	f.warn("list-companies", err)

	return f.mock.ListCompanies(ctx)
}

func (f *fallbackClient) GetCompany(
	ctx context.Context, id string,
) (*Company, error) {
	resp, err := f.real.GetCompany(ctx, id)
	if !shouldFallBack(err) {
		return resp, err
	}

	f.warn("get-company", err)

	return f.mock.GetCompany(ctx, id)
}

func (f *fallbackClient) CreateCompany(
	ctx context.Context, req CreateCompanyRequest,
) (*CompanyProfile, error) {
	resp, err := f.real.CreateCompany(ctx, req)
	if !shouldFallBack(err) {
		return resp, err
	}

	f.warn("create-company", err)

	return f.mock.CreateCompany(ctx, req)
}

func (f *fallbackClient) ListBugReports(
	ctx context.Context, userID string,
) ([]BugReport, error) {
	resp, err := f.real.ListBugReports(ctx, userID)
	if !shouldFallBack(err) {
		return resp, err
	}

	f.warn("list-bug-reports", err)

	return f.mock.ListBugReports(ctx, userID)
}

func (f *fallbackClient) GetBugReport(
	ctx context.Context, id string,
) (*BugReport, error) {
	resp, err := f.real.GetBugReport(ctx, id)
	if !shouldFallBack(err) {
		return resp, err
	}

	f.warn("get-bug-report", err)

	return f.mock.GetBugReport(ctx, id)
}

func (f *fallbackClient) CreateBugReport(
	ctx context.Context, req CreateBugReportRequest,
) (*BugReport, error) {
	resp, err := f.real.CreateBugReport(ctx, req)
	if !shouldFallBack(err) {
		return resp, err
	}

	f.warn("create-bug-report", err)

	return f.mock.CreateBugReport(ctx, req)
}

func (f *fallbackClient) UpdateBugReport(
	ctx context.Context, id string, req UpdateBugReportRequest,
) (*BugReport, error) {
	resp, err := f.real.UpdateBugReport(ctx, id, req)
	if !shouldFallBack(err) {
		return resp, err
	}

	f.warn("update-bug-report", err)

	return f.mock.UpdateBugReport(ctx, id, req)
}

func (f *fallbackClient) GetUser(
	ctx context.Context, id string,
) (*User, error) {
	resp, err := f.real.GetUser(ctx, id)
	if !shouldFallBack(err) {
		return resp, err
	}

	f.warn("get-user", err)

	return f.mock.GetUser(ctx, id)
}

func (f *fallbackClient) UpdateUser(
	ctx context.Context, id string, req UpdateUserRequest,
) (*User, error) {
	resp, err := f.real.UpdateUser(ctx, id, req)
	if !shouldFallBack(err) {
		return resp, err
	}

	f.warn("update-user", err)

	return f.mock.UpdateUser(ctx, id, req)
}
