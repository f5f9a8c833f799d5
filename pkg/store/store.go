package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bugbridge/disclosoor/pkg/client"
	"github.com/bugbridge/disclosoor/pkg/session"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Credentials is the durable slot holding the session token between runs.
type Credentials interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileCredentials stores the token in the user config directory.
type FileCredentials struct{}

func (FileCredentials) Load() (string, error) { return session.Load() }
func (FileCredentials) Save(t string) error   { return session.Save(t) }
func (FileCredentials) Clear() error          { return session.Clear() }

// Store mediates every state mutation through named transitions and
// exposes the platform command set. Commands either fully succeed (all
// transitions applied, value returned) or fully fail (error recorded and
// returned); there is no partial-success state and no retrying.
//
// Commands that touch the same slot concurrently race on last-response-
// wins; commands on disjoint slots are safe to overlap because each
// transition is applied atomically under the store lock.
type Store struct {
	log    logrus.FieldLogger
	client client.Client
	creds  Credentials

	// mockMode mirrors the development fallback flag; a mock-issued
	// token is only trusted at restore time when it is set.
	mockMode bool

	mu          sync.Mutex
	state       State
	subscribers []func(State)

	timers             map[int64]*time.Timer
	lastNotificationID int64
	notificationTTL    time.Duration
}

// New creates a Store around the given client and credential slot.
func New(
	c client.Client,
	creds Credentials,
	mockMode bool,
	log logrus.FieldLogger,
) *Store {
	return &Store{
		log:             log.WithField("component", "store"),
		client:          c,
		creds:           creds,
		mockMode:        mockMode,
		state:           initialState(),
		timers:          make(map[int64]*time.Timer),
		notificationTTL: NotificationTTL,
	}
}

// Client exposes the underlying platform client for read-only lookups
// that do not belong in state.
func (s *Store) Client() client.Client {
	return s.client
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.clone()
}

// Subscribe registers fn to be called with a snapshot after every
// transition. Subscribers run outside the store lock.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribers = append(s.subscribers, fn)
}

// dispatch applies one transition and fans the new snapshot out to
// subscribers.
func (s *Store) dispatch(a action) {
	s.mu.Lock()
	s.state = a.apply(s.state)
	snap := s.state.clone()
	subs := make([]func(State), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// fail records err into the error slot and returns it to the caller.
func (s *Store) fail(err error) error {
	s.dispatch(setError{msg: err.Error()})

	return err
}

// RestoreSession validates a durably stored token at startup. A token
// issued by the mock double is discarded outright when mock mode is off,
// so a stale development credential never masquerades as a real session.
// Any validation failure silently clears the slot.
func (s *Store) RestoreSession(ctx context.Context) {
	token, err := s.creds.Load()
	if err != nil {
		s.log.WithError(err).Warn("Failed to read stored session")

		return
	}

	if token == "" {
		return
	}

	if client.IsMockToken(token) && !s.mockMode {
		s.log.Info("Discarding mock-issued session token")

		if err := s.creds.Clear(); err != nil {
			s.log.WithError(err).Warn("Failed to clear stored session")
		}

		return
	}

	s.client.SetToken(token)

	me, err := s.client.CurrentUser(ctx)
	if err != nil {
		s.log.WithError(err).Debug("Stored session rejected")
		s.client.SetToken("")

		if err := s.creds.Clear(); err != nil {
			s.log.WithError(err).Warn("Failed to clear stored session")
		}

		return
	}

	s.dispatch(loginSuccess{user: me.User, profile: me.CompanyProfile})
}

// Login authenticates, persists the session token durably, and applies
// the login-success transition. The raw response is returned for caller
// messaging.
func (s *Store) Login(
	ctx context.Context, email, password string,
) (*client.AuthResponse, error) {
	s.dispatch(setLoading{loading: true})

	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, s.fail(err)
	}

	if err := s.creds.Save(resp.Token); err != nil {
		return nil, s.fail(fmt.Errorf("storing session token: %w", err))
	}

	s.client.SetToken(resp.Token)
	s.dispatch(loginSuccess{user: resp.User, profile: resp.CompanyProfile})

	return resp, nil
}

// Signup registers a new account; symmetric to Login.
func (s *Store) Signup(
	ctx context.Context, req client.SignupRequest,
) (*client.AuthResponse, error) {
	s.dispatch(setLoading{loading: true})

	resp, err := s.client.Signup(ctx, req)
	if err != nil {
		return nil, s.fail(err)
	}

	if err := s.creds.Save(resp.Token); err != nil {
		return nil, s.fail(fmt.Errorf("storing session token: %w", err))
	}

	s.client.SetToken(resp.Token)
	s.dispatch(loginSuccess{user: resp.User, profile: resp.CompanyProfile})

	return resp, nil
}

// Logout calls the remote logout best-effort, then unconditionally clears
// the durable token and resets session, profile, and collections.
func (s *Store) Logout(ctx context.Context) {
	if err := s.client.Logout(ctx); err != nil {
		s.log.WithError(err).Warn("Remote logout failed")
	}

	if err := s.creds.Clear(); err != nil {
		s.log.WithError(err).Warn("Failed to clear stored session")
	}

	s.client.SetToken("")
	s.dispatch(logoutAction{})
}

// LoadCompanies fetches the company catalog. The companies slot is always
// an array afterwards; on failure the previous collection is kept so a
// transient network error never blanks a list already on screen.
func (s *Store) LoadCompanies(ctx context.Context) ([]client.Company, error) {
	s.dispatch(setLoading{loading: true})

	companies, err := s.client.ListCompanies(ctx)
	if err != nil {
		return nil, s.fail(err)
	}

	s.dispatch(setCompanies{companies: companies})

	return companies, nil
}

// LoadBugReports fetches reports, optionally scoped to one user. Same
// array guarantee and keep-on-failure policy as LoadCompanies.
func (s *Store) LoadBugReports(
	ctx context.Context, userID string,
) ([]client.BugReport, error) {
	s.dispatch(setLoading{loading: true})

	reports, err := s.client.ListBugReports(ctx, userID)
	if err != nil {
		return nil, s.fail(err)
	}

	s.dispatch(setBugReports{reports: reports})

	return reports, nil
}

// CreateBugReport submits a report and optimistically appends the
// server's copy to the local collection. No re-fetch.
func (s *Store) CreateBugReport(
	ctx context.Context, req client.CreateBugReportRequest,
) (*client.BugReport, error) {
	s.dispatch(setLoading{loading: true})

	report, err := s.client.CreateBugReport(ctx, req)
	if err != nil {
		return nil, s.fail(err)
	}

	s.dispatch(addBugReport{report: *report})

	return report, nil
}

// CreateCompany submits a company profile and replaces the local profile
// slot wholesale.
func (s *Store) CreateCompany(
	ctx context.Context, req client.CreateCompanyRequest,
) (*client.CompanyProfile, error) {
	s.dispatch(setLoading{loading: true})

	profile, err := s.client.CreateCompany(ctx, req)
	if err != nil {
		return nil, s.fail(err)
	}

	s.dispatch(setCompanyProfile{profile: profile})

	return profile, nil
}

// UpdateBugReportStatus asks the server to change a report's status and
// patches the local copy on success.
func (s *Store) UpdateBugReportStatus(
	ctx context.Context, id, status string,
) (*client.BugReport, error) {
	s.dispatch(setLoading{loading: true})

	report, err := s.client.UpdateBugReport(
		ctx, id, client.UpdateBugReportRequest{Status: status},
	)
	if err != nil {
		return nil, s.fail(err)
	}

	s.dispatch(updateBugReportStatus{id: id, status: report.Status})

	return report, nil
}

// Refresh loads companies and bug reports concurrently. The two commands
// mutate disjoint slots, so overlapping them is safe.
func (s *Store) Refresh(ctx context.Context, userID string) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := s.LoadCompanies(ctx)

		return err
	})

	g.Go(func() error {
		_, err := s.LoadBugReports(ctx, userID)

		return err
	})

	return g.Wait()
}
