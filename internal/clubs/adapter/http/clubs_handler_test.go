package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	clubshttp "clubportal/internal/clubs/adapter/http"
	clubmodel "clubportal/internal/clubs/domain/model"
	"clubportal/internal/clubs/usecase"
	"clubportal/internal/portalapi"
	"clubportal/internal/portalapi/portalapitest"
	apperrors "clubportal/internal/shared/errors"
	"clubportal/internal/shared/httpx"
	"clubportal/internal/shared/logger"
	"clubportal/internal/shared/profile"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type staticTokens map[string]string

func (t staticTokens) Token(_ context.Context, profileID string) (string, error) {
	tok, ok := t[profileID]
	if !ok {
		return "", apperrors.NewAuthenticationError("not signed in").WithCause(apperrors.ErrNoSession)
	}
	return tok, nil
}

type ClubsHTTPTestSuite struct {
	suite.Suite
	api       *portalapitest.Server
	app       *fiber.App
	profileID string
	clubUID   string
	eventUID  string
}

func (s *ClubsHTTPTestSuite) SetupTest() {
	s.api = portalapitest.New()
	s.api.Start()

	exec := s.api.AddUser("Ada", "ada@example.edu", "pw")
	s.api.AddUser("Bo", "bo@example.edu", "pw")
	s.clubUID = s.api.AddClub("Chess", exec)
	s.eventUID = s.api.AddEvent(s.clubUID, "Blitz night")

	client, err := portalapi.NewClient(portalapi.Options{BaseURL: s.api.BaseURL(), Dial: s.api.Dial}, logger.NewNopLogger())
	s.Require().NoError(err)

	s.profileID = uuid.NewString()
	tokens := staticTokens{s.profileID: s.api.TokenFor("bo@example.edu", time.Hour)}

	s.app = fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler})
	s.app.Use(profile.New(profile.Config{}))
	clubshttp.NewClubsHTTPHandler(usecase.NewClubsUsecase(client, nil), tokens).RegisterRoutes(s.app)
}

func (s *ClubsHTTPTestSuite) TearDownTest() {
	_ = s.api.Close()
}

func (s *ClubsHTTPTestSuite) do(method, path, profileID string, out interface{}) int {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(profile.HeaderName, profileID)
	resp, err := s.app.Test(req, 5000)
	s.Require().NoError(err)
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	if out != nil && len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, out))
	}
	return resp.StatusCode
}

func (s *ClubsHTTPTestSuite) TestClubPageSplitsMembers() {
	var page clubmodel.ClubPage
	status := s.do("GET", "/clubs/"+s.clubUID, s.profileID, &page)
	s.Equal(fiber.StatusOK, status)
	s.Len(page.Execs, 1)
	s.Len(page.Members, 0)
	s.Len(page.Events, 1)
}

func (s *ClubsHTTPTestSuite) TestJoinAndLeaveClub() {
	var page clubmodel.ClubPage
	s.Equal(fiber.StatusOK, s.do("POST", "/clubs/"+s.clubUID+"/join", s.profileID, &page))
	s.Len(page.Members, 1)

	var mine []map[string]interface{}
	s.Equal(fiber.StatusOK, s.do("GET", "/clubs/my-clubs", s.profileID, &mine))
	s.Len(mine, 1)

	page = clubmodel.ClubPage{}
	s.Equal(fiber.StatusOK, s.do("POST", "/clubs/"+s.clubUID+"/leave", s.profileID, &page))
	s.Len(page.Members, 0)
}

func (s *ClubsHTTPTestSuite) TestJoinFailureShowsDefaultMessage() {
	s.api.FailNext("POST", "/clubs/"+s.clubUID+"/join", fiber.StatusInternalServerError, "")

	var body httpx.ErrorResponse
	status := s.do("POST", "/clubs/"+s.clubUID+"/join", s.profileID, &body)
	s.GreaterOrEqual(status, fiber.StatusBadRequest)
	s.Equal(usecase.MsgJoinClubFailed, body.Message)

	var page clubmodel.ClubPage
	s.Equal(fiber.StatusOK, s.do("POST", "/clubs/"+s.clubUID+"/join", s.profileID, &page))
}

func (s *ClubsHTTPTestSuite) TestEventRegistration() {
	var event map[string]interface{}
	s.Equal(fiber.StatusOK, s.do("POST", "/events/"+s.eventUID+"/join", s.profileID, &event))
	s.Equal(true, event["is_attending"])
	s.EqualValues(1, event["participant_count"])

	event = nil
	s.Equal(fiber.StatusOK, s.do("POST", "/events/"+s.eventUID+"/leave", s.profileID, &event))
	s.Equal(false, event["is_attending"])
}

func (s *ClubsHTTPTestSuite) TestSignedOutProfile() {
	status := s.do("GET", "/clubs", uuid.NewString(), nil)
	s.Equal(fiber.StatusUnauthorized, status)
}

func TestClubsHTTPTestSuite(t *testing.T) {
	suite.Run(t, new(ClubsHTTPTestSuite))
}
