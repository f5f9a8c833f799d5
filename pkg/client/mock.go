package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MockTokenPrefix marks tokens issued by the mock double. A durable token
// carrying this prefix must never be trusted against a real backend.
const MockTokenPrefix = "mock-token-"

// mockPassword is the password every canned user accepts.
const mockPassword = "password123"

// IsMockToken reports whether token was issued by the mock double.
func IsMockToken(token string) bool {
	return strings.HasPrefix(token, MockTokenPrefix)
}

// mockClient is a development double for the platform API. It serves
// canned data, verifies canned credentials with bcrypt like the real
// backend would, and mutates its in-memory collections on writes.
type mockClient struct {
	mu sync.Mutex

	users     []User
	passwords map[string][]byte // email -> bcrypt hash
	companies []Company
	reports   []BugReport
	profiles  map[string]*CompanyProfile // user id -> profile
	sessions  map[string]string          // token -> user id

	token string
}

// Compile-time interface check.
var _ Client = (*mockClient)(nil)

// NewMock creates the development double with its canned data set.
func NewMock() Client {
	m := &mockClient{
		users: []User{
			{ID: "1", Name: "John Doe", Email: "john@example.com", Username: "johndoe"},
			{ID: "2", Name: "Jane Smith", Email: "jane@example.com", Username: "janesmith"},
			{ID: "3", Name: "Test User", Email: "test@bugbridge.com", Username: "testuser"},
		},
		companies: []Company{
			{
				ID:               "1",
				Name:             "TechCorp Security",
				Industry:         "Technology",
				Description:      "Leading technology company focused on cybersecurity solutions.",
				Website:          "https://techcorp.com",
				AcceptingReports: true,
				CreatedAt:        "2024-01-15",
				BugReportsCount:  15,
			},
			{
				ID:               "2",
				Name:             "FinanceFlow",
				Industry:         "Finance",
				Description:      "Modern financial services platform with robust security measures.",
				Website:          "https://financeflow.com",
				AcceptingReports: true,
				CreatedAt:        "2024-02-01",
				BugReportsCount:  8,
			},
			{
				ID:               "3",
				Name:             "StartupXYZ",
				Industry:         "Startup",
				Description:      "Innovative startup building the next generation of web applications.",
				Website:          "https://startupxyz.com",
				AcceptingReports: true,
				CreatedAt:        "2024-02-15",
				BugReportsCount:  3,
			},
		},
		reports: []BugReport{
			{
				ID:               "1",
				CompanyID:        "1",
				CompanyName:      "TechCorp Security",
				UserID:           "1",
				Title:            "SQL Injection in Login Form",
				Description:      "Found a SQL injection vulnerability in the login form that allows unauthorized access.",
				Severity:         SeverityHigh,
				StepsToReproduce: "1. Go to login page\n2. Enter malicious SQL in username field\n3. Observe database error",
				Status:           StatusPending,
				CreatedAt:        "2024-01-20",
				SubmittedAt:      "2024-01-20",
			},
			{
				ID:               "2",
				CompanyID:        "2",
				CompanyName:      "FinanceFlow",
				UserID:           "1",
				Title:            "XSS in User Profile",
				Description:      "Cross-site scripting vulnerability in user profile page.",
				Severity:         SeverityMedium,
				StepsToReproduce: "1. Navigate to profile page\n2. Inject script in bio field\n3. Script executes on page load",
				Status:           StatusUnderReview,
				CreatedAt:        "2024-01-25",
				SubmittedAt:      "2024-01-25",
			},
		},
		passwords: make(map[string][]byte, 3),
		profiles:  make(map[string]*CompanyProfile),
		sessions:  make(map[string]string),
	}

	// MinCost keeps construction cheap; the double only needs the same
	// verification path as the real backend, not its work factor.
	for _, u := range m.users {
		hash, err := bcrypt.GenerateFromPassword(
			[]byte(mockPassword), bcrypt.MinCost,
		)
		if err != nil {
			panic(fmt.Sprintf("hashing mock password: %v", err))
		}

		m.passwords[u.Email] = hash
	}

	return m
}

func (m *mockClient) SetToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = strings.TrimSpace(token)
}

func (m *mockClient) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.token
}

// mockID mints a millisecond-timestamp identifier, matching what the
// platform assigns to mock-created entities.
func mockID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

func (m *mockClient) userByEmail(email string) *User {
	for i := range m.users {
		if m.users[i].Email == email {
			return &m.users[i]
		}
	}

	return nil
}

func (m *mockClient) userByID(id string) *User {
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i]
		}
	}

	return nil
}

// authedUser resolves the held token to its user. Callers hold m.mu.
func (m *mockClient) authedUser() (*User, error) {
	userID, ok := m.sessions[m.token]
	if !ok {
		return nil, &RequestError{
			StatusCode: 401, Message: "Invalid token",
		}
	}

	user := m.userByID(userID)
	if user == nil {
		return nil, &RequestError{
			StatusCode: 401, Message: "Invalid token",
		}
	}

	return user, nil
}

func (m *mockClient) issueSession(userID string) string {
	token := MockTokenPrefix + uuid.NewString()
	m.sessions[token] = userID
	m.token = token

	return token
}

func (m *mockClient) Login(
	_ context.Context, email, password string,
) (*AuthResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user := m.userByEmail(email)
	if user == nil {
		return nil, &RequestError{
			StatusCode: 401, Message: "Invalid credentials",
		}
	}

	hash, ok := m.passwords[email]
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return nil, &RequestError{
			StatusCode: 401, Message: "Invalid credentials",
		}
	}

	token := m.issueSession(user.ID)
	u := *user

	return &AuthResponse{
		Token:          token,
		User:           &u,
		CompanyProfile: m.profiles[user.ID],
	}, nil
}

func (m *mockClient) Signup(
	_ context.Context, req SignupRequest,
) (*AuthResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.userByEmail(req.Email) != nil {
		return nil, &RequestError{
			StatusCode: 409, Message: "User already exists",
		}
	}

	username := req.Email
	if at := strings.Index(req.Email, "@"); at > 0 {
		username = req.Email[:at]
	}

	user := User{
		ID:       mockID(),
		Name:     strings.TrimSpace(req.FirstName + " " + req.LastName),
		Email:    req.Email,
		Username: username,
	}

	hash, err := bcrypt.GenerateFromPassword(
		[]byte(req.Password), bcrypt.MinCost,
	)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	m.users = append(m.users, user)
	m.passwords[user.Email] = hash

	token := m.issueSession(user.ID)
	u := user

	return &AuthResponse{
		Token:          token,
		User:           &u,
		CompanyProfile: nil,
	}, nil
}

func (m *mockClient) CurrentUser(_ context.Context) (*MeResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// A mock token restored from a previous run predates this instance's
	// session table. Re-admit it as the first canned user so development
	// sessions survive restarts.
	if _, ok := m.sessions[m.token]; !ok && IsMockToken(m.token) {
		m.sessions[m.token] = m.users[0].ID
	}

	user, err := m.authedUser()
	if err != nil {
		return nil, err
	}

	u := *user

	return &MeResponse{
		User:           &u,
		CompanyProfile: m.profiles[user.ID],
	}, nil
}

func (m *mockClient) Logout(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, m.token)
	m.token = ""

	return nil
}

func (m *mockClient) ListCompanies(_ context.Context) ([]Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Company, len(m.companies))
	copy(out, m.companies)

	return out, nil
}

func (m *mockClient) GetCompany(
	_ context.Context, id string,
) (*Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.companies {
		if m.companies[i].ID == id {
			c := m.companies[i]

			return &c, nil
		}
	}

	return nil, &RequestError{StatusCode: 404, Message: "Company not found"}
}

func (m *mockClient) CreateCompany(
	_ context.Context, req CreateCompanyRequest,
) (*CompanyProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, err := m.authedUser()
	if err != nil {
		return nil, err
	}

	profile := &CompanyProfile{
		ID:                mockID(),
		Name:              req.Name,
		Industry:          req.Industry,
		Description:       req.Description,
		Website:           req.Website,
		BugReportTemplate: req.BugReportTemplate,
	}

	m.profiles[user.ID] = profile

	m.companies = append(m.companies, Company{
		ID:               profile.ID,
		Name:             req.Name,
		Industry:         req.Industry,
		Description:      req.Description,
		Website:          req.Website,
		AcceptingReports: true,
		CreatedAt:        time.Now().UTC().Format(time.RFC3339),
	})

	p := *profile

	return &p, nil
}

func (m *mockClient) ListBugReports(
	_ context.Context, userID string,
) ([]BugReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]BugReport, 0, len(m.reports))

	for _, r := range m.reports {
		if userID == "" || r.UserID == userID {
			out = append(out, r)
		}
	}

	return out, nil
}

func (m *mockClient) GetBugReport(
	_ context.Context, id string,
) (*BugReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.reports {
		if m.reports[i].ID == id {
			r := m.reports[i]

			return &r, nil
		}
	}

	return nil, &RequestError{StatusCode: 404, Message: "Bug report not found"}
}

func (m *mockClient) CreateBugReport(
	_ context.Context, req CreateBugReportRequest,
) (*BugReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)

	report := BugReport{
		ID:               mockID(),
		CompanyID:        req.CompanyID,
		CompanyName:      req.CompanyName,
		Title:            req.Title,
		Description:      req.Description,
		Severity:         req.Severity,
		StepsToReproduce: req.StepsToReproduce,
		AdditionalInfo:   req.AdditionalInfo,
		Attachments:      req.Attachments,
		Status:           StatusPending,
		CreatedAt:        now,
		SubmittedAt:      now,
	}

	if userID, ok := m.sessions[m.token]; ok {
		report.UserID = userID
	}

	m.reports = append(m.reports, report)

	return &report, nil
}

func (m *mockClient) UpdateBugReport(
	_ context.Context, id string, req UpdateBugReportRequest,
) (*BugReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req.Status != "" && !ValidStatus(req.Status) {
		return nil, &RequestError{
			StatusCode: 400,
			Message:    fmt.Sprintf("unknown status %q", req.Status),
		}
	}

	for i := range m.reports {
		if m.reports[i].ID != id {
			continue
		}

		if req.Status != "" {
			m.reports[i].Status = req.Status
		}

		r := m.reports[i]

		return &r, nil
	}

	return nil, &RequestError{StatusCode: 404, Message: "Bug report not found"}
}

func (m *mockClient) GetUser(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user := m.userByID(id)
	if user == nil {
		return nil, &RequestError{StatusCode: 404, Message: "User not found"}
	}

	u := *user

	return &u, nil
}

func (m *mockClient) UpdateUser(
	_ context.Context, id string, req UpdateUserRequest,
) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user := m.userByID(id)
	if user == nil {
		return nil, &RequestError{StatusCode: 404, Message: "User not found"}
	}

	if req.Name != "" {
		user.Name = req.Name
	}

	if req.Username != "" {
		user.Username = req.Username
	}

	if req.Email != "" && req.Email != user.Email {
		m.passwords[req.Email] = m.passwords[user.Email]
		delete(m.passwords, user.Email)
		user.Email = req.Email
	}

	u := *user

	return &u, nil
}
