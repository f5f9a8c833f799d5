// Package store is the single source of truth for session and domain
// state. Every mutation goes through a named transition applied as an
// atomic whole-state replacement; commands orchestrate transitions around
// platform API calls.
package store

import (
	"slices"

	"github.com/bugbridge/disclosoor/pkg/client"
)

// State is one immutable snapshot of application state. Collection slots
// are always non-nil arrays.
type State struct {
	User           *client.User
	CompanyProfile *client.CompanyProfile
	Companies      []client.Company
	BugReports     []client.BugReport
	Notifications  []Notification
	Loading        bool
	Err            string
}

// initialState returns the empty state all sessions start from.
func initialState() State {
	return State{
		Companies:     []client.Company{},
		BugReports:    []client.BugReport{},
		Notifications: []Notification{},
	}
}

// clone deep-copies the slice slots so a snapshot cannot alias live
// state.
func (s State) clone() State {
	s.Companies = slices.Clone(s.Companies)
	s.BugReports = slices.Clone(s.BugReports)
	s.Notifications = slices.Clone(s.Notifications)

	return s
}

// action is one named state transition. Transitions are pure: given the
// current state they produce the next state, never partially applying.
type action interface {
	apply(State) State
}

type loginSuccess struct {
	user    *client.User
	profile *client.CompanyProfile
}

func (a loginSuccess) apply(s State) State {
	s.User = a.user
	s.CompanyProfile = a.profile
	s.Loading = false
	s.Err = ""

	return s
}

type logoutAction struct{}

func (logoutAction) apply(s State) State {
	s.User = nil
	s.CompanyProfile = nil
	s.Companies = []client.Company{}
	s.BugReports = []client.BugReport{}
	s.Loading = false
	s.Err = ""

	return s
}

type setLoading struct {
	loading bool
}

func (a setLoading) apply(s State) State {
	s.Loading = a.loading

	return s
}

type setError struct {
	msg string
}

func (a setError) apply(s State) State {
	s.Err = a.msg
	s.Loading = false

	return s
}

type setCompanies struct {
	companies []client.Company
}

func (a setCompanies) apply(s State) State {
	companies := a.companies
	if companies == nil {
		companies = []client.Company{}
	}

	s.Companies = companies
	s.Loading = false
	s.Err = ""

	return s
}

type setBugReports struct {
	reports []client.BugReport
}

func (a setBugReports) apply(s State) State {
	reports := a.reports
	if reports == nil {
		reports = []client.BugReport{}
	}

	s.BugReports = reports
	s.Loading = false
	s.Err = ""

	return s
}

type setCompanyProfile struct {
	profile *client.CompanyProfile
}

func (a setCompanyProfile) apply(s State) State {
	s.CompanyProfile = a.profile
	s.Loading = false
	s.Err = ""

	return s
}

type addBugReport struct {
	report client.BugReport
}

func (a addBugReport) apply(s State) State {
	reports := slices.Clone(s.BugReports)
	s.BugReports = append(reports, a.report)
	s.Loading = false
	s.Err = ""

	return s
}

type updateBugReportStatus struct {
	id     string
	status string
}

func (a updateBugReportStatus) apply(s State) State {
	reports := slices.Clone(s.BugReports)

	for i := range reports {
		if reports[i].ID == a.id {
			reports[i].Status = a.status
		}
	}

	s.BugReports = reports
	s.Loading = false
	s.Err = ""

	return s
}

type addNotification struct {
	notification Notification
}

func (a addNotification) apply(s State) State {
	notifications := slices.Clone(s.Notifications)
	s.Notifications = append(notifications, a.notification)

	return s
}

type removeNotification struct {
	id int64
}

func (a removeNotification) apply(s State) State {
	notifications := make([]Notification, 0, len(s.Notifications))

	for _, n := range s.Notifications {
		if n.ID != a.id {
			notifications = append(notifications, n)
		}
	}

	s.Notifications = notifications

	return s
}
