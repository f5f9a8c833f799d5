package client

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient fails every overridden call with a fixed error.
type stubClient struct {
	Client

	err   error
	token string
	calls int
}

func (s *stubClient) Login(context.Context, string, string) (*AuthResponse, error) {
	s.calls++

	return nil, s.err
}

func (s *stubClient) ListCompanies(context.Context) ([]Company, error) {
	s.calls++

	return nil, s.err
}

func (s *stubClient) SetToken(token string) { s.token = token }
func (s *stubClient) Token() string        { return s.token }

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

func TestShouldFallBack(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "domain 401 passes through",
			err:  &RequestError{StatusCode: 401, Message: "Invalid credentials"},
			want: false,
		},
		{
			name: "domain 409 passes through",
			err:  &RequestError{StatusCode: 409, Message: "User already exists"},
			want: false,
		},
		{
			name: "json 404 falls back",
			err:  &RequestError{StatusCode: 404},
			want: true,
		},
		{
			name: "json 500 falls back",
			err:  &RequestError{StatusCode: 500},
			want: true,
		},
		{
			name: "html 404 page falls back",
			err:  &DecodeError{StatusCode: 404, Detail: "expected JSON response but received HTML"},
			want: true,
		},
		{
			name: "gateway 502 page falls back",
			err:  &DecodeError{StatusCode: 502},
			want: true,
		},
		{
			name: "decode failure on a domain status passes through",
			err:  &DecodeError{StatusCode: 400, Detail: "invalid JSON response"},
			want: false,
		},
		{
			name: "network error falls back",
			err:  errors.New("dial tcp: connection refused"),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldFallBack(tt.err))
		})
	}
}

func TestFallbackClient_ServesMockOnInfrastructureFailure(t *testing.T) {
	real := &stubClient{err: errors.New("dial tcp: connection refused")}
	f := NewFallback(real, NewMock(), testLogger())

	resp, err := f.Login(context.Background(), "john@example.com", "password123")
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, "john@example.com", resp.User.Email)
	assert.True(t, IsMockToken(resp.Token))
	assert.Equal(t, 1, real.calls)

	companies, err := f.ListCompanies(context.Background())
	require.NoError(t, err)
	assert.Len(t, companies, 3)
}

func TestFallbackClient_DomainErrorsPassThrough(t *testing.T) {
	real := &stubClient{
		err: &RequestError{StatusCode: 401, Message: "Invalid credentials"},
	}
	f := NewFallback(real, NewMock(), testLogger())

	// The mock would accept these credentials, but the live backend
	// answered, so its verdict stands.
	_, err := f.Login(context.Background(), "john@example.com", "password123")

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 401, reqErr.StatusCode)
	assert.Equal(t, "Invalid credentials", reqErr.Message)
}

func TestFallbackClient_SetTokenPropagatesToBoth(t *testing.T) {
	real := &stubClient{}
	mock := NewMock()
	f := NewFallback(real, mock, testLogger())

	f.SetToken("abc123")

	assert.Equal(t, "abc123", real.token)
	assert.Equal(t, "abc123", mock.Token())
	assert.Equal(t, "abc123", f.Token())
}
