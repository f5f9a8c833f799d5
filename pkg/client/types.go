package client

// Bug report severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Bug report statuses.
const (
	StatusPending     = "pending"
	StatusUnderReview = "under_review"
	StatusAccepted    = "accepted"
	StatusRejected    = "rejected"
)

// ValidSeverity reports whether s is a known severity level.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}

	return false
}

// ValidStatus reports whether s is a known report status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusAccepted, StatusRejected:
		return true
	}

	return false
}

// User is the authenticated platform user.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// BugReportTemplate pre-fills the submission form shown to researchers.
type BugReportTemplate struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Severity         string `json:"severity"`
	StepsToReproduce string `json:"stepsToReproduce"`
	ExpectedBehavior string `json:"expectedBehavior"`
	AdditionalInfo   string `json:"additionalInfo"`
}

// CompanyProfile describes the company owned by the current user, if any.
type CompanyProfile struct {
	ID                string             `json:"id,omitempty"`
	Name              string             `json:"name"`
	Industry          string             `json:"industry"`
	Description       string             `json:"description"`
	Website           string             `json:"website"`
	BugReportTemplate *BugReportTemplate `json:"bugReportTemplate,omitempty"`
	BugReportsCount   int                `json:"bugReportsCount"`
}

// Company is a read-only catalog entry fetched from the platform.
type Company struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Industry         string `json:"industry"`
	Description      string `json:"description"`
	Website          string `json:"website"`
	AcceptingReports bool   `json:"acceptingReports"`
	CreatedAt        string `json:"createdAt"`
	BugReportsCount  int    `json:"bugReportsCount"`
}

// BugReport is a submitted vulnerability disclosure.
//
// Timestamps are kept as the server's string form; the catalog backend
// returns date-only values for older records.
type BugReport struct {
	ID               string   `json:"id"`
	CompanyID        string   `json:"companyId"`
	CompanyName      string   `json:"companyName"`
	UserID           string   `json:"userId,omitempty"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Severity         string   `json:"severity"`
	StepsToReproduce string   `json:"stepsToReproduce"`
	AdditionalInfo   string   `json:"additionalInfo,omitempty"`
	Status           string   `json:"status"`
	CreatedAt        string   `json:"createdAt"`
	SubmittedAt      string   `json:"submittedAt"`
	Attachments      []string `json:"attachments,omitempty"`
}

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	Token          string          `json:"token"`
	User           *User           `json:"user"`
	CompanyProfile *CompanyProfile `json:"companyProfile"`
}

// MeResponse is returned by the current-user endpoint.
type MeResponse struct {
	User           *User           `json:"user"`
	CompanyProfile *CompanyProfile `json:"companyProfile"`
}

// SignupRequest carries registration fields.
type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// CreateCompanyRequest creates or replaces the caller's company profile.
type CreateCompanyRequest struct {
	Name              string             `json:"name"`
	Industry          string             `json:"industry"`
	Website           string             `json:"website"`
	Description       string             `json:"description"`
	BugReportTemplate *BugReportTemplate `json:"bugReportTemplate,omitempty"`
}

// CreateBugReportRequest submits a new report.
type CreateBugReportRequest struct {
	CompanyID        string   `json:"companyId"`
	CompanyName      string   `json:"companyName"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Severity         string   `json:"severity"`
	StepsToReproduce string   `json:"stepsToReproduce"`
	AdditionalInfo   string   `json:"additionalInfo,omitempty"`
	Attachments      []string `json:"attachments,omitempty"`
}

// UpdateBugReportRequest mutates a report server-side. Only status changes
// are accepted for now.
type UpdateBugReportRequest struct {
	Status string `json:"status,omitempty"`
}

// UpdateUserRequest updates a user profile.
type UpdateUserRequest struct {
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}
