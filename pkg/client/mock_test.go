package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClient_Login(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		password   string
		wantErr    bool
		wantStatus int
	}{
		{
			name:     "valid canned credentials",
			email:    "john@example.com",
			password: "password123",
		},
		{
			name:       "wrong password",
			email:      "john@example.com",
			password:   "nope",
			wantErr:    true,
			wantStatus: 401,
		},
		{
			name:       "unknown email",
			email:      "nobody@example.com",
			password:   "password123",
			wantErr:    true,
			wantStatus: 401,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMock()

			resp, err := m.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr {
				require.Error(t, err)

				var reqErr *RequestError
				require.ErrorAs(t, err, &reqErr)
				assert.Equal(t, tt.wantStatus, reqErr.StatusCode)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, resp.User)
			assert.Equal(t, tt.email, resp.User.Email)
			assert.True(t, IsMockToken(resp.Token))
		})
	}
}

func TestMockClient_LoginThenCurrentUser(t *testing.T) {
	m := NewMock()

	resp, err := m.Login(context.Background(), "jane@example.com", "password123")
	require.NoError(t, err)

	me, err := m.CurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, me.User)
	assert.Equal(t, resp.User.ID, me.User.ID)
}

func TestMockClient_CurrentUserReadmitsRestoredToken(t *testing.T) {
	// A mock token persisted by a previous run is unknown to this
	// instance's session table but still resolves to a canned user.
	m := NewMock()
	m.SetToken(MockTokenPrefix + "restored-from-disk")

	me, err := m.CurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, me.User)
	assert.Equal(t, "john@example.com", me.User.Email)
}

func TestMockClient_CurrentUserRejectsForeignToken(t *testing.T) {
	m := NewMock()
	m.SetToken("real-backend-token")

	_, err := m.CurrentUser(context.Background())

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 401, reqErr.StatusCode)
}

func TestMockClient_Signup(t *testing.T) {
	m := NewMock()

	resp, err := m.Signup(context.Background(), SignupRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "s3cret",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, "Ada Lovelace", resp.User.Name)
	assert.Equal(t, "ada", resp.User.Username)
	assert.True(t, IsMockToken(resp.Token))
	assert.Nil(t, resp.CompanyProfile)

	// The new account logs in with its own password, not the canned one.
	_, err = m.Login(context.Background(), "ada@example.com", "s3cret")
	require.NoError(t, err)

	_, err = m.Login(context.Background(), "ada@example.com", "password123")
	require.Error(t, err)
}

func TestMockClient_SignupDuplicateEmail(t *testing.T) {
	m := NewMock()

	_, err := m.Signup(context.Background(), SignupRequest{
		FirstName: "John",
		LastName:  "Again",
		Email:     "john@example.com",
		Password:  "whatever",
	})

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 409, reqErr.StatusCode)
	assert.Equal(t, "User already exists", reqErr.Message)
}

func TestMockClient_Logout(t *testing.T) {
	m := NewMock()

	_, err := m.Login(context.Background(), "john@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, m.Logout(context.Background()))
	assert.Empty(t, m.Token())

	_, err = m.CurrentUser(context.Background())
	require.Error(t, err)
}

func TestMockClient_Companies(t *testing.T) {
	m := NewMock()

	companies, err := m.ListCompanies(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 3)
	assert.Equal(t, "TechCorp Security", companies[0].Name)

	company, err := m.GetCompany(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "FinanceFlow", company.Name)

	_, err = m.GetCompany(context.Background(), "999")

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 404, reqErr.StatusCode)
}

func TestMockClient_CreateCompany(t *testing.T) {
	m := NewMock()

	// Unauthenticated creation is rejected.
	_, err := m.CreateCompany(context.Background(), CreateCompanyRequest{Name: "Acme"})

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 401, reqErr.StatusCode)

	resp, err := m.Login(context.Background(), "jane@example.com", "password123")
	require.NoError(t, err)
	assert.Nil(t, resp.CompanyProfile)

	profile, err := m.CreateCompany(context.Background(), CreateCompanyRequest{
		Name:     "Acme Security",
		Industry: "Technology",
		Website:  "https://acme.example.com",
		BugReportTemplate: &BugReportTemplate{
			Title:    "Vulnerability report",
			Severity: SeverityMedium,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Security", profile.Name)
	require.NotNil(t, profile.BugReportTemplate)

	// The profile is now attached to the session user.
	me, err := m.CurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, me.CompanyProfile)
	assert.Equal(t, profile.ID, me.CompanyProfile.ID)

	// And the catalog gained an entry that accepts reports.
	companies, err := m.ListCompanies(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 4)
	assert.True(t, companies[3].AcceptingReports)
}

func TestMockClient_BugReports(t *testing.T) {
	m := NewMock()

	all, err := m.ListBugReports(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := m.ListBugReports(context.Background(), "1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := m.ListBugReports(context.Background(), "2")
	require.NoError(t, err)
	require.NotNil(t, none)
	assert.Empty(t, none)

	report, err := m.GetBugReport(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "SQL Injection in Login Form", report.Title)
}

func TestMockClient_CreateBugReport(t *testing.T) {
	m := NewMock()

	resp, err := m.Login(context.Background(), "john@example.com", "password123")
	require.NoError(t, err)

	report, err := m.CreateBugReport(context.Background(), CreateBugReportRequest{
		CompanyID:        "1",
		CompanyName:      "TechCorp Security",
		Title:            "IDOR on invoice download",
		Description:      "Sequential invoice ids are not checked against the session user.",
		Severity:         SeverityHigh,
		StepsToReproduce: "1. Log in\n2. Download an invoice\n3. Increment the id",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, StatusPending, report.Status)
	assert.Equal(t, resp.User.ID, report.UserID)
	assert.NotEmpty(t, report.CreatedAt)
	assert.Equal(t, report.CreatedAt, report.SubmittedAt)

	all, err := m.ListBugReports(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMockClient_UpdateBugReport(t *testing.T) {
	m := NewMock()

	report, err := m.UpdateBugReport(
		context.Background(), "1", UpdateBugReportRequest{Status: StatusAccepted},
	)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, report.Status)

	// The stored copy changed too.
	stored, err := m.GetBugReport(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, stored.Status)

	_, err = m.UpdateBugReport(
		context.Background(), "1", UpdateBugReportRequest{Status: "closed"},
	)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 400, reqErr.StatusCode)

	_, err = m.UpdateBugReport(
		context.Background(), "999", UpdateBugReportRequest{Status: StatusRejected},
	)
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 404, reqErr.StatusCode)
}

func TestMockClient_UpdateUser(t *testing.T) {
	m := NewMock()

	user, err := m.UpdateUser(context.Background(), "1", UpdateUserRequest{
		Name:  "John Q. Doe",
		Email: "john.doe@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "John Q. Doe", user.Name)
	assert.Equal(t, "john.doe@example.com", user.Email)

	// The password hash follows the email change.
	_, err = m.Login(context.Background(), "john.doe@example.com", "password123")
	require.NoError(t, err)

	_, err = m.Login(context.Background(), "john@example.com", "password123")
	require.Error(t, err)
}
