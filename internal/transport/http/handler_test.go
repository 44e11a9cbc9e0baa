package httptransport

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"verifybridge/internal/bridge/models"
	"verifybridge/internal/bridge/request"
	dErrors "verifybridge/pkg/domain-errors"
	"verifybridge/pkg/platform/middleware/requestid"
	"verifybridge/pkg/requestcontext"
	"verifybridge/pkg/testutil"
)

type call struct {
	method    string
	args      request.Args
	requestID string
}

type stubCaller struct {
	mu     sync.Mutex
	calls  []call
	result models.BridgeResult
	err    error
}

func (s *stubCaller) Call(ctx context.Context, method string, args request.Args) (models.BridgeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call{method: method, args: args, requestID: requestcontext.RequestID(ctx)})
	return s.result, s.err
}

type checkFunc func(ctx context.Context) error

func (f checkFunc) Health(ctx context.Context) error { return f(ctx) }

type HandlerSuite struct {
	suite.Suite
	caller *stubCaller
	router http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.caller = &stubCaller{}
	s.router = NewRouter(RouterConfig{Gatherer: prometheus.NewRegistry()}, NewHandler(s.caller, nil))
}

// =============================================================================
// Method channel
// =============================================================================

func (s *HandlerSuite) TestSuccessfulCallReturnsResult() {
	s.caller.result = models.BridgeResult{Type: models.ResultCompleted, SessionID: "sess-1", Status: "Approved"}

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/methods/startVerification", map[string]any{
		"token":  "tok-1",
		"config": map[string]any{"language": "fr"},
	})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	body := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
	s.Equal("completed", (*body)["type"])
	s.Equal("sess-1", (*body)["sessionId"])
	s.NotContains(*body, "errorType")

	s.Require().Len(s.caller.calls, 1)
	got := s.caller.calls[0]
	s.Equal("startVerification", got.method)
	s.Equal("tok-1", got.args["token"])
	s.NotEmpty(got.requestID)
	s.Equal(got.requestID, rr.Header().Get(requestid.Header))
}

func (s *HandlerSuite) TestEmptyBodyIsPassedAsEmptyArgs() {
	s.caller.err = dErrors.New(dErrors.CodeInvalidArgument, "Token is required")

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/v1/methods/startVerification"))

	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	body := testutil.UnmarshalErrorResponse(s.T(), rr)
	s.Equal("INVALID_ARGUMENT", body["error"])
	s.Equal("Token is required", body["error_description"])
	s.Require().Len(s.caller.calls, 1)
	s.Empty(s.caller.calls[0].args)
}

func (s *HandlerSuite) TestNonObjectBodyIsRejected() {
	rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/v1/methods/startVerification", `["tok"]`))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "INVALID_ARGUMENT")
	s.Empty(s.caller.calls)
}

func (s *HandlerSuite) TestUnknownMethod() {
	s.caller.err = dErrors.New(dErrors.CodeNotImplemented, "method not implemented: getPlatformVersion")

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/methods/getPlatformVersion", map[string]any{}))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "NOT_IMPLEMENTED")
}

func (s *HandlerSuite) TestInternalErrorHidesMessage() {
	s.caller.err = errors.New("redis exploded")

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/methods/startVerification", map[string]any{"token": "t"}))

	testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
	body := testutil.UnmarshalErrorResponse(s.T(), rr)
	s.Equal("INTERNAL", body["error"])
	s.NotContains(body, "error_description")
}

// =============================================================================
// Operational endpoints
// =============================================================================

func TestHealthz(t *testing.T) {
	t.Run("all dependencies healthy", func(t *testing.T) {
		router := NewRouter(RouterConfig{
			Gatherer: prometheus.NewRegistry(),
			Checks:   map[string]HealthChecker{"redis": checkFunc(func(context.Context) error { return nil })},
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatusOK(t, rr)
		body := testutil.UnmarshalErrorResponse(t, rr)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "ok", body["redis"])
	})

	t.Run("degraded dependency", func(t *testing.T) {
		router := NewRouter(RouterConfig{
			Gatherer: prometheus.NewRegistry(),
			Checks:   map[string]HealthChecker{"redis": checkFunc(func(context.Context) error { return errors.New("down") })},
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		testutil.AssertJSONContains(t, rr, "redis", "unavailable")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "verifybridge_test_total", Help: "test"})
	require.NoError(t, reg.Register(counter))
	counter.Inc()

	router := NewRouter(RouterConfig{Gatherer: reg})
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))

	testutil.AssertStatusOK(t, rr)
	assert.Contains(t, rr.Body.String(), "verifybridge_test_total 1")
}
