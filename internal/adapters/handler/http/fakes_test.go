package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/elections/internal/core/domain"
	"github.com/vncsmyrnk/elections/internal/core/ports"
)

const testSecret = "test-secret"

type fakeElectionService struct {
	created    ports.CreateElectionInput
	transition domain.Action
	hidden     *bool
	actor      string
	err        error
	election   *domain.Election
}

func (f *fakeElectionService) Create(_ context.Context, input ports.CreateElectionInput) (*domain.Election, error) {
	f.created = input
	return f.election, f.err
}

func (f *fakeElectionService) Get(_ context.Context, id uuid.UUID, roles domain.Roles) (*domain.Election, error) {
	return f.election, f.err
}

func (f *fakeElectionService) List(_ context.Context, roles domain.Roles, includeArchived bool) ([]*domain.Election, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*domain.Election{f.election}, nil
}

func (f *fakeElectionService) Transition(_ context.Context, id uuid.UUID, action domain.Action, actor string) (*domain.Election, error) {
	f.transition = action
	f.actor = actor
	return f.election, f.err
}

func (f *fakeElectionService) SetHidden(_ context.Context, id uuid.UUID, hidden bool, actor string) (*domain.Election, error) {
	f.hidden = &hidden
	f.actor = actor
	return f.election, f.err
}

type fakeVoteService struct {
	input ports.SubmitVoteInput
	roles domain.Roles
	ids   []uuid.UUID
	voted bool
	err   error
}

func (f *fakeVoteService) SubmitVote(_ context.Context, input ports.SubmitVoteInput) ([]uuid.UUID, error) {
	f.input = input
	return f.ids, f.err
}

func (f *fakeVoteService) GetVoteStatus(_ context.Context, electionID uuid.UUID, identity string, roles domain.Roles) (bool, error) {
	f.roles = roles
	return f.voted, f.err
}

type fakeResultService struct {
	results domain.ElectionResults
	err     error
}

func (f *fakeResultService) GetResults(_ context.Context, electionID uuid.UUID, roles domain.Roles) (domain.ElectionResults, error) {
	return f.results, f.err
}

type fakeAnonymizer struct {
	salt  []byte
	actor string
	n     int64
	err   error
}

func (f *fakeAnonymizer) AnonymizeClosedElection(_ context.Context, electionID uuid.UUID, salt []byte, actor string) (int64, error) {
	f.salt = salt
	f.actor = actor
	return f.n, f.err
}

type testApp struct {
	handler   http.Handler
	elections *fakeElectionService
	votes     *fakeVoteService
	results   *fakeResultService
	anon      *fakeAnonymizer
	healthErr error
}

func newTestApp(t *testing.T, debug bool) *testApp {
	t.Helper()

	app := &testApp{
		elections: &fakeElectionService{election: &domain.Election{ID: uuid.New(), Title: "Board"}},
		votes:     &fakeVoteService{},
		results:   &fakeResultService{},
		anon:      &fakeAnonymizer{},
	}
	resp := NewResponder(nil, debug)
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "elections_test_total", Help: "test"}))

	handler := NewHandler(RouterConfig{
		Gatherer: registry,
		HealthCheck: func(ctx context.Context) error {
			return app.healthErr
		},
	}, Handlers{
		Auth:      NewAuthenticator([]byte(testSecret), resp),
		Elections: NewElectionHandler(app.elections, app.results, resp),
		Votes:     NewVoteHandler(app.votes, resp),
		Admin:     NewAdminHandler(app.elections, app.anon, []byte("salt"), resp),
	})
	app.handler = handler
	return app
}

func signToken(t *testing.T, subject string, roles []string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   subject,
		"roles": roles,
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (a *testApp) do(t *testing.T, method, path, token string, body io.Reader) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.serve(req)
}

func (a *testApp) serve(req *http.Request) *http.Response {
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec.Result()
}

var errBoom = errors.New("boom: connection string leaked")
