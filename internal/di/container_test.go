package di

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"clubportal/internal/config"
	"clubportal/internal/portalapi/portalapitest"
	"clubportal/internal/realtime"
	"clubportal/internal/shared/clock"
	"clubportal/internal/shared/eventbus"
	"clubportal/internal/shared/logger"
	"clubportal/internal/shared/profile"
	"clubportal/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type EdgeTestSuite struct {
	suite.Suite
	api       *portalapitest.Server
	clock     *clock.Fake
	backend   *storage.MemoryBackend
	container *Container
	app       *fiber.App
	profileID string

	clubUID  string
	eventUID string
}

func (s *EdgeTestSuite) SetupTest() {
	s.clock = clock.NewFake(time.Now())
	s.api = portalapitest.New()
	s.api.Now = s.clock.Now
	s.api.TokenTTL = 10 * time.Minute
	s.api.Start()

	exec := s.api.AddUser("Ada", "ada@example.edu", "pw")
	s.clubUID = s.api.AddClub("Chess", exec)
	s.eventUID = s.api.AddEvent(s.clubUID, "Blitz night")

	cfg, err := config.Parse()
	s.Require().NoError(err)
	cfg.API.BaseURL = s.api.BaseURL()

	s.backend = storage.NewMemoryBackend()
	s.container, err = NewContainer(context.Background(), cfg, logger.NewNopLogger(),
		WithBackend(s.backend),
		WithClock(s.clock),
		WithAPIDial(s.api.Dial),
	)
	s.Require().NoError(err)
	s.app = s.container.NewApp()
	s.profileID = uuid.NewString()
}

func (s *EdgeTestSuite) TearDownTest() {
	s.Require().NoError(s.container.Close(context.Background()))
	_ = s.api.Close()
}

func (s *EdgeTestSuite) do(method, path, body string) (int, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(profile.HeaderName, s.profileID)
	resp, err := s.app.Test(req, 5000)
	s.Require().NoError(err)
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		s.Require().NoError(json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func (s *EdgeTestSuite) login() {
	status, body := s.do("POST", "/session/login", `{"email":"ada@example.edu","password":"pw"}`)
	s.Require().Equal(fiber.StatusOK, status, body)
	s.Require().Equal(true, body["authenticated"])
}

func (s *EdgeTestSuite) TestHealth() {
	status, body := s.do("GET", "/health", "")
	s.Equal(fiber.StatusOK, status)
	s.Equal("HEALTHY", body["status"])
}

func (s *EdgeTestSuite) TestSignedOutViewsRedirectToLogin() {
	status, body := s.do("GET", "/views/home/access", "")
	s.Equal(fiber.StatusOK, status)
	s.Equal(false, body["allowed"])
	s.Equal("/login", body["redirect"])

	status, _ = s.do("GET", "/session", "")
	s.Equal(fiber.StatusUnauthorized, status)

	status, _ = s.do("GET", "/clubs/"+s.clubUID, "")
	s.Equal(fiber.StatusUnauthorized, status)
}

func (s *EdgeTestSuite) TestLoginPersistsAndGuardsPass() {
	s.login()

	token, ok, err := s.backend.Get(context.Background(), s.profileID, storage.KeyToken)
	s.Require().NoError(err)
	s.True(ok)
	s.NotEmpty(token)

	status, body := s.do("GET", "/views/dashboard/access", "")
	s.Equal(fiber.StatusOK, status)
	s.Equal(true, body["allowed"])

	status, body = s.do("GET", "/preferences/club", "")
	s.Equal(fiber.StatusOK, status)
	s.Equal(s.clubUID, body["club"].(map[string]interface{})["uid"])
}

func (s *EdgeTestSuite) TestClubPageAndEventRegistration() {
	s.login()

	status, body := s.do("GET", "/clubs/"+s.clubUID, "")
	s.Require().Equal(fiber.StatusOK, status)
	s.Len(body["execs"], 1)

	status, body = s.do("POST", "/events/"+s.eventUID+"/join", "")
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal(true, body["is_attending"])

	status, body = s.do("POST", "/events/"+s.eventUID+"/join", "")
	s.GreaterOrEqual(status, fiber.StatusBadRequest)
	s.Equal("Already registered for this event", body["message"])
}

func (s *EdgeTestSuite) TestDiscussionFlow() {
	s.login()
	other := s.api.AddComment(s.eventUID, "", "Bo", "first")

	status, body := s.do("GET", "/events/"+s.eventUID+"/comments", "")
	s.Require().Equal(fiber.StatusOK, status)
	s.Len(body["comments"], 1)

	status, body = s.do("POST", "/events/"+s.eventUID+"/comments", `{"content":"second"}`)
	s.Require().Equal(fiber.StatusCreated, status)
	comments := body["comments"].([]interface{})
	s.Len(comments, 2)
	s.Equal("second", comments[0].(map[string]interface{})["content"])

	status, body = s.do("POST", "/comments/"+other+"/replies", `{"content":"reply"}`)
	s.Require().Equal(fiber.StatusCreated, status)
	s.Equal(true, body["applied"])

	status, body = s.do("POST", "/events/"+s.eventUID+"/comments", `{"content":"   "}`)
	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("comment cannot be empty", body["message"])
}

func (s *EdgeTestSuite) TestPalettePreferences() {
	status, body := s.do("GET", "/preferences/palette", "")
	s.Equal(fiber.StatusOK, status)
	s.Equal("dark", body["palette"])

	status, body = s.do("PUT", "/preferences/palette", `{"palette":"sunset"}`)
	s.Equal(fiber.StatusOK, status)
	s.Equal("sunset", body["palette"])

	status, body = s.do("POST", "/preferences/palette/cycle", "")
	s.Equal(fiber.StatusOK, status)
	s.Equal("system", body["palette"])

	status, _ = s.do("PUT", "/preferences/palette", `{"palette":"neon"}`)
	s.Equal(fiber.StatusBadRequest, status)
}

func (s *EdgeTestSuite) TestExpiryLogsOutAndReloadsViews() {
	s.login()
	sub := s.container.Hub.Subscribe(s.profileID)

	s.clock.Advance(10*time.Minute + 2*time.Second)

	var types []string
	for len(sub.C) > 0 {
		types = append(types, (<-sub.C).Type)
	}
	s.Contains(types, "session.expired")
	s.Contains(types, realtime.MessageTypeReload)

	_, ok, err := s.backend.Get(context.Background(), s.profileID, storage.KeyToken)
	s.Require().NoError(err)
	s.False(ok)

	status, _ := s.do("GET", "/session", "")
	s.Equal(fiber.StatusUnauthorized, status)
}

func (s *EdgeTestSuite) TestLogout() {
	s.login()
	status, _ := s.do("POST", "/session/logout", "")
	s.Equal(fiber.StatusOK, status)
	status, _ = s.do("GET", "/session", "")
	s.Equal(fiber.StatusUnauthorized, status)
}

func (s *EdgeTestSuite) TestDistinctProfilesKeepTheirOwnSessions() {
	ids := make([]string, 5)
	for i := range ids {
		ids[i] = uuid.NewString()
		s.profileID = ids[i]
		s.do("GET", "/session", "")
	}
	s.ElementsMatch(ids, s.container.Sessions.Profiles())
	for _, id := range ids {
		_, ok := s.container.Sessions.Lookup(id)
		s.True(ok, id)
	}
}

func (s *EdgeTestSuite) TestLoginStaysUnderItsProfile() {
	alice := uuid.NewString()
	s.profileID = alice
	s.login()

	s.profileID = uuid.NewString()
	status, _ := s.do("GET", "/session", "")
	s.Equal(fiber.StatusUnauthorized, status)

	_, ok, err := s.backend.Get(context.Background(), alice, storage.KeyToken)
	s.Require().NoError(err)
	s.True(ok)
	_, ok, err = s.backend.Get(context.Background(), s.profileID, storage.KeyToken)
	s.Require().NoError(err)
	s.False(ok)

	s.profileID = alice
	status, body := s.do("GET", "/session", "")
	s.Equal(fiber.StatusOK, status)
	s.Equal(true, body["authenticated"])
}

func TestEdgeTestSuite(t *testing.T) {
	suite.Run(t, new(EdgeTestSuite))
}

func TestOpenBackend_Memory(t *testing.T) {
	backend, err := OpenBackend(context.Background(), config.StorageConfig{Backend: config.StorageMemory}, logger.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := backend.(*storage.MemoryBackend); !ok {
		t.Fatalf("expected memory backend, got %T", backend)
	}

	sealed, err := OpenBackend(context.Background(), config.StorageConfig{Backend: config.StorageMemory, SealKey: "k"}, logger.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sealed.(*storage.SealedBackend); !ok {
		t.Fatalf("expected sealed backend, got %T", sealed)
	}
}

func TestNewContainer_EventBusFromConfig(t *testing.T) {
	cfg, err := config.Parse()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Events = config.EventsConfig{Async: true, MaxRetries: 1, RetryDelay: time.Millisecond}

	c, err := NewContainer(context.Background(), cfg, logger.NewNopLogger(), WithBackend(storage.NewMemoryBackend()))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = c.Close(context.Background()) }()

	profileID := uuid.NewString()
	sub := c.Hub.Subscribe(profileID)

	var attempts int32
	c.Bus.Subscribe(eventbus.EventTypeSessionLoggedIn, func(context.Context, eventbus.Event) error {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return errors.New("transient")
		}
		return nil
	})

	event := eventbus.NewProfileEvent(eventbus.EventTypeSessionLoggedIn, profileID, "test", nil)
	if err := c.Bus.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Fatalf("expected one retry, got %d attempts", got)
	}
	select {
	case msg := <-sub.C:
		if msg.Type != eventbus.EventTypeSessionLoggedIn {
			t.Fatalf("unexpected message %q", msg.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("event was not forwarded to the hub")
	}
}
