package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"user":{"id":"1","name":"John Doe","email":"john@example.com","username":"johndoe"}}`)
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, time.Second)

	// No token held yet, no header.
	_, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)

	c.SetToken("abc123")

	me, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", gotAuth)
	require.NotNil(t, me.User)
	assert.Equal(t, "john@example.com", me.User.Email)
}

func TestHTTPClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"token": "server-token",
			"user": {"id": "1", "name": "John Doe", "email": "john@example.com"},
			"companyProfile": null
		}`)
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, time.Second)

	resp, err := c.Login(context.Background(), "john@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "server-token", resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "1", resp.User.ID)
	assert.Nil(t, resp.CompanyProfile)
}

func TestHTTPClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantReqErr  bool
		wantDecErr  bool
		wantMessage string
		wantStatus  int
	}{
		{
			name:        "json error body becomes RequestError",
			status:      http.StatusUnauthorized,
			contentType: "application/json",
			body:        `{"message": "Invalid credentials"}`,
			wantReqErr:  true,
			wantMessage: "Invalid credentials",
			wantStatus:  401,
		},
		{
			name:        "error key is also accepted",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `{"error": "missing field"}`,
			wantReqErr:  true,
			wantMessage: "missing field",
			wantStatus:  400,
		},
		{
			name:        "html error page becomes DecodeError",
			status:      http.StatusNotFound,
			contentType: "text/html",
			body:        "<!DOCTYPE html><html><body>Not Found</body></html>",
			wantDecErr:  true,
			wantMessage: "HTML",
			wantStatus:  404,
		},
		{
			name:        "plain text body becomes DecodeError",
			status:      http.StatusBadGateway,
			contentType: "text/plain",
			body:        "upstream connect error",
			wantDecErr:  true,
			wantMessage: "non-JSON",
			wantStatus:  502,
		},
		{
			name:        "json body without content type is still a domain error",
			status:      http.StatusConflict,
			contentType: "",
			body:        `{"message": "User already exists"}`,
			wantReqErr:  true,
			wantMessage: "User already exists",
			wantStatus:  409,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}

				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := NewHTTP(srv.URL, time.Second)

			_, err := c.CurrentUser(context.Background())
			require.Error(t, err)

			if tt.wantReqErr {
				var reqErr *RequestError
				require.ErrorAs(t, err, &reqErr)
				assert.Equal(t, tt.wantStatus, reqErr.StatusCode)
				assert.Contains(t, reqErr.Message, tt.wantMessage)
			}

			if tt.wantDecErr {
				var decErr *DecodeError
				require.ErrorAs(t, err, &decErr)
				assert.Equal(t, tt.wantStatus, decErr.StatusCode)
				assert.Contains(t, decErr.Detail, tt.wantMessage)
			}

			status, ok := HTTPStatusCode(err)
			assert.True(t, ok)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestHTTPClient_EmptySuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, time.Second)

	// Logout does not decode a body, an empty response is fine.
	require.NoError(t, c.Logout(context.Background()))

	// CurrentUser needs a body, an empty one is a decode failure.
	_, err := c.CurrentUser(context.Background())

	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Contains(t, decErr.Detail, "empty response body")
}

func TestHTTPClient_NetworkErrorHasNoStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewHTTP(srv.URL, time.Second)

	_, err := c.CurrentUser(context.Background())
	require.Error(t, err)

	_, ok := HTTPStatusCode(err)
	assert.False(t, ok)
}

func TestHTTPClient_ListDecodesDefensively(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "array body",
			body: `[{"id":"1","name":"TechCorp Security"},{"id":"2","name":"FinanceFlow"}]`,
			want: 2,
		},
		{
			name: "empty array",
			body: `[]`,
			want: 0,
		},
		{
			name: "object body yields empty slice",
			body: `{"message": "unexpected shape"}`,
			want: 0,
		},
		{
			name: "null body yields empty slice",
			body: `null`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/companies", r.URL.Path)

				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := NewHTTP(srv.URL, time.Second)

			companies, err := c.ListCompanies(context.Background())
			require.NoError(t, err)
			require.NotNil(t, companies)
			assert.Len(t, companies, tt.want)
		})
	}
}

func TestHTTPClient_ListBugReportsFiltersByUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bug-reports", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("userId"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":"1","userId":"42","title":"XSS in profile"}]`)
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, time.Second)

	reports, err := c.ListBugReports(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "42", reports[0].UserID)
}

func TestHTTPClient_UpdateBugReportSendsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/bug-reports/7", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"7","status":"accepted"}`)
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, time.Second)

	report, err := c.UpdateBugReport(
		context.Background(), "7", UpdateBugReportRequest{Status: StatusAccepted},
	)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, report.Status)
}

func TestHTTPStatusCode_PlainError(t *testing.T) {
	_, ok := HTTPStatusCode(errors.New("boom"))
	assert.False(t, ok)

	_, ok = HTTPStatusCode(nil)
	assert.False(t, ok)
}

func TestValidSeverityAndStatus(t *testing.T) {
	assert.True(t, ValidSeverity(SeverityLow))
	assert.True(t, ValidSeverity(SeverityCritical))
	assert.False(t, ValidSeverity("catastrophic"))

	assert.True(t, ValidStatus(StatusPending))
	assert.True(t, ValidStatus(StatusUnderReview))
	assert.False(t, ValidStatus("closed"))
}
