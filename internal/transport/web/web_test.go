package web_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/avstrong/campusnest/internal/auth"
	"github.com/avstrong/campusnest/internal/idgen/simple"
	"github.com/avstrong/campusnest/internal/logger"
	"github.com/avstrong/campusnest/internal/migration"
	"github.com/avstrong/campusnest/internal/pricing"
	"github.com/avstrong/campusnest/internal/rental"
	"github.com/avstrong/campusnest/internal/storage/memory"
	"github.com/avstrong/campusnest/internal/transport/web"
)

type ServerSuite struct {
	suite.Suite

	ts     *httptest.Server
	db     *memory.DB
	issuer *auth.Issuer
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	ctx := context.Background()
	l := logger.NewNop()

	db := memory.New(memory.Config{L: l})
	s.Require().NoError(migration.Up(ctx, l, db, 2))
	s.db = db

	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	s.Require().NoError(err)
	s.issuer = issuer

	manager := rental.New(l, db, simple.New("id-"), pricing.New(db))

	srv, err := web.New(ctx, web.Conf{
		L:                 l,
		ServerLogger:      nil,
		Host:              "localhost",
		Port:              "0",
		ReadHeaderTimeout: time.Second,
		LivenessEndpoint:  "/liveness",
	}, manager, issuer)
	s.Require().NoError(err)

	s.ts = httptest.NewServer(srv.Handler())
}

func (s *ServerSuite) TearDownTest() {
	s.ts.Close()
}

func (s *ServerSuite) token(userID string, role rental.Role) string {
	token, err := s.issuer.Issue(userID, role)
	s.Require().NoError(err)

	return token
}

func (s *ServerSuite) do(method, path, token, body string, headers ...string) (int, map[string]any) {
	req, err := http.NewRequestWithContext(context.Background(), method, s.ts.URL+path, strings.NewReader(body))
	s.Require().NoError(err)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.ts.Client().Do(req)
	s.Require().NoError(err)

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		s.Require().NoError(json.Unmarshal(raw, &out))
	}

	return resp.StatusCode, out
}

const bookingBody = `{"startDate":"2025-07-01T00:00:00Z","endDate":"2025-07-20T00:00:00Z","roomId":"r-1","roomsCount":1,"membersCount":1}`

func (s *ServerSuite) TestLiveness() {
	status, _ := s.do(http.MethodGet, "/liveness", "", "")
	s.Equal(http.StatusNoContent, status)
}

func (s *ServerSuite) TestAPIRequiresToken() {
	status, body := s.do(http.MethodGet, "/api/properties", "", "")
	s.Equal(http.StatusUnauthorized, status)
	s.Equal("missing bearer token", body["message"])

	status, _ = s.do(http.MethodGet, "/api/properties", "garbage", "")
	s.Equal(http.StatusUnauthorized, status)
}

func (s *ServerSuite) TestGetProperty() {
	student := s.token("s-1", rental.RoleStudent)

	status, body := s.do(http.MethodGet, "/api/properties/"+migration.DemoPropertyID, student, "")
	s.Equal(http.StatusOK, status)
	s.Equal("Sunrise Residency", body["title"])

	status, body = s.do(http.MethodGet, "/api/properties/nope", student, "")
	s.Equal(http.StatusNotFound, status)
	s.Equal("not found", body["message"])
}

func (s *ServerSuite) TestCreateBooking() {
	student := s.token("s-1", rental.RoleStudent)

	status, body := s.do(http.MethodPost, "/api/bookings/book/"+migration.DemoPropertyID, student, bookingBody,
		"Idempotency-Key", "k-1")
	s.Require().Equal(http.StatusCreated, status)
	s.Equal("pending", body["status"])
	s.Equal("s-1", body["studentId"])

	id := body["id"]

	status, body = s.do(http.MethodPost, "/api/bookings/book/"+migration.DemoPropertyID, student, bookingBody,
		"Idempotency-Key", "k-1")
	s.Equal(http.StatusCreated, status)
	s.Equal(id, body["id"])

	status, body = s.do(http.MethodPost, "/api/bookings/book/"+migration.DemoPropertyID, student, bookingBody)
	s.Equal(http.StatusConflict, status)
	s.Contains(body["message"], "pending booking")
}

func (s *ServerSuite) TestCreateBooking_Validation() {
	student := s.token("s-1", rental.RoleStudent)

	status, body := s.do(http.MethodPost, "/api/bookings/book/"+migration.DemoPropertyID, student,
		`{"startDate":"2025-07-20T00:00:00Z","endDate":"2025-07-01T00:00:00Z","roomsCount":1,"membersCount":1}`)
	s.Equal(http.StatusBadRequest, status)
	s.Equal("validation failed", body["message"])
	s.Contains(body["fields"], "startDate")

	status, _ = s.do(http.MethodPost, "/api/bookings/book/"+migration.DemoPropertyID, student, `{`)
	s.Equal(http.StatusBadRequest, status)
}

func (s *ServerSuite) TestCreateBooking_UnpricedProperty() {
	//nolint:exhaustruct
	s.Require().NoError(s.db.AddProperty(context.Background(), &rental.Property{
		ID:      "p-free",
		OwnerID: migration.DemoOwnerID,
		Title:   "Rent on request",
	}))

	status, body := s.do(http.MethodPost, "/api/bookings/book/p-free", s.token("s-1", rental.RoleStudent),
		`{"startDate":"2025-07-01T00:00:00Z","endDate":"2025-07-20T00:00:00Z","roomsCount":1,"membersCount":1}`)
	s.Equal(http.StatusBadRequest, status)
	s.Contains(body["fields"], "roomId")
}

func (s *ServerSuite) TestCreateBooking_OwnerForbidden() {
	owner := s.token(migration.DemoOwnerID, rental.RoleOwner)

	status, _ := s.do(http.MethodPost, "/api/bookings/book/"+migration.DemoPropertyID, owner, bookingBody)
	s.Equal(http.StatusForbidden, status)
}

func (s *ServerSuite) TestApproveBooking() {
	student := s.token("s-1", rental.RoleStudent)
	owner := s.token(migration.DemoOwnerID, rental.RoleOwner)
	stranger := s.token("owner-2", rental.RoleOwner)

	status, body := s.do(http.MethodPost, "/api/bookings/book/"+migration.DemoPropertyID, student, bookingBody)
	s.Require().Equal(http.StatusCreated, status)

	path := "/api/bookings/owner/" + body["id"].(string)

	status, _ = s.do(http.MethodPatch, path, stranger, `{"status":"approved"}`)
	s.Equal(http.StatusForbidden, status)

	status, body = s.do(http.MethodPatch, path, owner, `{"status":"approved"}`)
	s.Require().Equal(http.StatusOK, status)
	s.Equal("approved", body["status"])

	status, _ = s.do(http.MethodPatch, path, owner, `{"status":"rejected"}`)
	s.Equal(http.StatusConflict, status)
}

func (s *ServerSuite) TestSubscribe_Capacity() {
	body := `{"plan":"monthly","startDate":"2025-07-01T00:00:00Z"}`

	for _, user := range []string{"s-1", "s-2"} {
		status, _ := s.do(http.MethodPost, "/api/mess/"+migration.DemoMessID+"/subscribe",
			s.token(user, rental.RoleStudent), body)
		s.Require().Equal(http.StatusCreated, status)
	}

	status, _ := s.do(http.MethodPost, "/api/mess/"+migration.DemoMessID+"/subscribe",
		s.token("s-1", rental.RoleStudent), body)
	s.Equal(http.StatusConflict, status)

	status, resp := s.do(http.MethodPost, "/api/mess/"+migration.DemoMessID+"/subscribe",
		s.token("s-3", rental.RoleStudent), body)
	s.Equal(http.StatusPreconditionFailed, status)
	s.Contains(resp["message"], "full")
	s.Equal([]any{resp["message"]}, resp["reasons"])

	status, resp = s.do(http.MethodGet, "/api/mess/"+migration.DemoMessID, s.token("s-3", rental.RoleStudent), "")
	s.Equal(http.StatusOK, status)
	s.InDelta(2, resp["currentSubscribers"], 0)
}

func (s *ServerSuite) TestMetrics() {
	s.do(http.MethodPost, "/api/mess/"+migration.DemoMessID+"/subscribe",
		s.token("s-1", rental.RoleStudent), `{"plan":"monthly","startDate":"2025-07-01T00:00:00Z"}`)

	resp, err := s.ts.Client().Get(s.ts.URL + "/metrics")
	s.Require().NoError(err)

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	s.Contains(string(raw), `campusnest_mess_subscribe_requests_total{mess="m-1",status="201"} 1`)
	s.Contains(string(raw), `campusnest_mess_subscribers{mess="m-1"} 1`)
}

func (s *ServerSuite) TestMetrics_UnknownMessLabel() {
	status, _ := s.do(http.MethodPost, "/api/mess/no-such-mess/subscribe",
		s.token("s-1", rental.RoleStudent), `{"plan":"monthly","startDate":"2025-07-01T00:00:00Z"}`)
	s.Equal(http.StatusNotFound, status)

	resp, err := s.ts.Client().Get(s.ts.URL + "/metrics")
	s.Require().NoError(err)

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	s.Contains(string(raw), `campusnest_mess_subscribe_requests_total{mess="unknown",status="404"} 1`)
	s.NotContains(string(raw), "no-such-mess")
}

func TestNew_IndependentRegistries(t *testing.T) {
	l := logger.NewNop()
	db := memory.New(memory.Config{L: l})
	manager := rental.New(l, db, simple.New(""), pricing.New(db))

	//nolint:exhaustruct
	conf := web.Conf{L: l, LivenessEndpoint: "/liveness"}

	_, err := web.New(context.Background(), conf, manager, nil)
	require.NoError(t, err)

	_, err = web.New(context.Background(), conf, manager, nil)
	assert.NoError(t, err)
}
