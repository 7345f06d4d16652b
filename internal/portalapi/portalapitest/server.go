// Package portalapitest runs an in-memory stand-in for the club API, for tests and
// local demos of the edge.
package portalapitest

import (
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/valyala/fasthttp/fasthttputil"

	clubmodel "clubportal/internal/clubs/domain/model"
	discussionmodel "clubportal/internal/discussion/domain/model"
	sessionmodel "clubportal/internal/session/domain/model"
)

const signingSecret = "portalapitest-secret"

type account struct {
	user     sessionmodel.User
	password string
}

type clubState struct {
	club    clubmodel.Club
	members []clubmodel.Member
}

type eventState struct {
	event     clubmodel.Event
	attendees map[string]bool
}

type failure struct {
	status int
	msg    string
}

// Server is a fake club API served over an in-memory listener.
type Server struct {
	App *fiber.App

	// TokenTTL is the lifetime of minted access tokens.
	TokenTTL time.Duration
	// Now is the clock used for token expiry and comment timestamps.
	Now func() time.Time

	ln       *fasthttputil.InmemoryListener
	mu       sync.Mutex
	seq      int
	accounts map[string]*account
	clubs    map[string]*clubState
	events   map[string]*eventState
	comments map[string]discussionmodel.Forest
	failures map[string]failure
	calls    map[string]int
}

// New creates a server with no data. Call Start before use.
func New() *Server {
	s := &Server{
		App:      fiber.New(fiber.Config{DisableStartupMessage: true}),
		TokenTTL: time.Hour,
		Now:      time.Now,
		ln:       fasthttputil.NewInmemoryListener(),
		accounts: make(map[string]*account),
		clubs:    make(map[string]*clubState),
		events:   make(map[string]*eventState),
		comments: make(map[string]discussionmodel.Forest),
		failures: make(map[string]failure),
		calls:    make(map[string]int),
	}
	s.routes()
	return s
}

// Start serves in the background.
func (s *Server) Start() {
	go func() { _ = s.App.Listener(s.ln) }()
}

// Close stops the server.
func (s *Server) Close() error {
	return s.App.Shutdown()
}

// Dial connects to the in-memory listener; it satisfies fasthttp.DialFunc.
func (s *Server) Dial(string) (net.Conn, error) {
	return s.ln.Dial()
}

// BaseURL is a placeholder base URL; Dial ignores the host.
func (s *Server) BaseURL() string { return "http://portal-api.test" }

// FailNext makes the next request to "METHOD /path" fail with status and msg.
func (s *Server) FailNext(method, path string, status int, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, msg: msg}
}

// Calls returns how many requests hit "METHOD /path".
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// AddUser registers an account and returns its uid.
func (s *Server) AddUser(name, email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(name, email, password)
}

func (s *Server) addUserLocked(name, email, password string) string {
	uid := s.nextID("user")
	s.accounts[email] = &account{user: sessionmodel.User{UID: uid, Name: name, Email: email}, password: password}
	return uid
}

// AddClub creates a club whose executive is execUID.
func (s *Server) AddClub(name, execUID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := s.nextID("club")
	state := &clubState{club: clubmodel.Club{UID: uid, Name: name, Status: "active"}}
	if acc := s.accountByUID(execUID); acc != nil {
		state.members = append(state.members, clubmodel.Member{
			UserUID: execUID, UserName: acc.user.Name, Type: clubmodel.MemberTypeExec, Role: "president",
		})
	}
	s.clubs[uid] = state
	return uid
}

// AddEvent creates an event for clubUID.
func (s *Server) AddEvent(clubUID, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := s.nextID("event")
	s.events[uid] = &eventState{
		event: clubmodel.Event{
			UID: uid, ClubUID: clubUID, Name: name, Status: "upcoming",
			StartDatetime: s.Now().UTC().Add(24 * time.Hour).Format("2006-01-02T15:04:05"),
		},
		attendees: make(map[string]bool),
	}
	s.comments[uid] = discussionmodel.Forest{}
	return uid
}

// AddComment stores a comment as if another user posted it and returns its uid.
// parentUID empty makes it top-level.
func (s *Server) AddComment(eventUID, parentUID, author, content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.newComment(author, content)
	if parentUID == "" {
		s.comments[eventUID] = discussionmodel.AddTopLevel(s.comments[eventUID], c)
	} else {
		s.comments[eventUID], _ = discussionmodel.AddReply(s.comments[eventUID], parentUID, c)
	}
	return c.ID
}

// TokenFor mints a token for email expiring after ttl.
func (s *Server) TokenFor(email string, ttl time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accounts[email]
	if acc == nil {
		return ""
	}
	return s.mint(acc.user.UID, ttl)
}

func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *Server) accountByUID(uid string) *account {
	for _, acc := range s.accounts {
		if acc.user.UID == uid {
			return acc
		}
	}
	return nil
}

func (s *Server) newComment(author, content string) discussionmodel.Comment {
	ts, _ := discussionmodel.ParseTimestamp(s.Now().UTC().Format("2006-01-02T15:04:05.000000"))
	return discussionmodel.Comment{
		ID:        s.nextID("comment"),
		Author:    author,
		Body:      content,
		CreatedAt: ts,
		Children:  []discussionmodel.Comment{},
	}
}

func (s *Server) mint(uid string, ttl time.Duration) string {
	now := s.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	signed, _ := tok.SignedString([]byte(signingSecret))
	return signed
}

func errorMsg(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"msg": msg})
}

// authenticated resolves the bearer token to an account.
func (s *Server) authenticated(c *fiber.Ctx) (*account, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, errorMsg(c, fiber.StatusUnauthorized, "Missing Authorization Header")
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(signingSecret), nil
	}, jwt.WithTimeFunc(s.Now))
	if err != nil {
		return nil, errorMsg(c, fiber.StatusUnauthorized, "Token has expired")
	}
	acc := s.accountByUID(claims.Subject)
	if acc == nil {
		return nil, errorMsg(c, fiber.StatusUnauthorized, "User not found")
	}
	return acc, nil
}
