package portalapitest

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	clubmodel "clubportal/internal/clubs/domain/model"
	discussionmodel "clubportal/internal/discussion/domain/model"
)

func (s *Server) routes() {
	s.App.Use(func(c *fiber.Ctx) error {
		s.mu.Lock()
		key := c.Method() + " " + c.Path()
		s.calls[key]++
		f, fail := s.failures[key]
		delete(s.failures, key)
		s.mu.Unlock()
		if fail {
			return errorMsg(c, f.status, f.msg)
		}
		return c.Next()
	})

	s.App.Post("/auth/login", s.login)
	s.App.Post("/auth/register", s.register)
	s.App.Get("/auth/me", s.locked(s.me))

	s.App.Get("/clubs/", s.locked(s.listClubs))
	s.App.Get("/clubs/my-clubs", s.locked(s.myClubs))
	s.App.Get("/clubs/:uid", s.locked(s.getClub))
	s.App.Get("/clubs/:uid/members", s.locked(s.clubMembers))
	s.App.Post("/clubs/:uid/join", s.locked(s.joinClub))
	s.App.Post("/clubs/:uid/leave", s.locked(s.leaveClub))

	s.App.Get("/events/", s.locked(s.listEvents))
	s.App.Get("/events/club/:uid", s.locked(s.clubEvents))
	s.App.Get("/events/:uid", s.locked(s.getEvent))
	s.App.Post("/events/:uid/join", s.locked(s.joinEvent))
	s.App.Post("/events/:uid/leave", s.locked(s.leaveEvent))

	s.App.Get("/comments/event/:uid", s.locked(s.eventComments))
	s.App.Post("/comments/", s.locked(s.postComment))
	s.App.Post("/comments/:uid/reply", s.locked(s.postReply))
}

// locked authenticates the caller and runs h under the server lock.
func (s *Server) locked(h func(c *fiber.Ctx, acc *account) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		acc, err := s.authenticated(c)
		if acc == nil {
			return err
		}
		return h(c, acc)
	}
}

func (s *Server) login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return errorMsg(c, fiber.StatusBadRequest, "Invalid request body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accounts[body.Email]
	if acc == nil || acc.password != body.Password {
		return errorMsg(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	return c.JSON(fiber.Map{"access_token": s.mint(acc.user.UID, s.TokenTTL), "uid": acc.user.UID})
}

func (s *Server) register(c *fiber.Ctx) error {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil || body.Email == "" || body.Password == "" {
		return errorMsg(c, fiber.StatusBadRequest, "Email and password are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[body.Email]; exists {
		return errorMsg(c, fiber.StatusConflict, "Email already registered")
	}
	uid := s.addUserLocked(body.Name, body.Email, body.Password)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"access_token": s.mint(uid, s.TokenTTL), "uid": uid})
}

func (s *Server) me(c *fiber.Ctx, acc *account) error {
	return c.JSON(acc.user)
}

func (s *Server) listClubs(c *fiber.Ctx, _ *account) error {
	out := []clubmodel.Club{}
	for _, st := range s.clubs {
		out = append(out, st.club)
	}
	return c.JSON(out)
}

func (s *Server) myClubs(c *fiber.Ctx, acc *account) error {
	out := []clubmodel.Club{}
	for _, st := range s.clubs {
		for _, m := range st.members {
			if m.UserUID == acc.user.UID {
				club := st.club
				club.Role = m.Role
				if club.Role == "" {
					club.Role = m.Type
				}
				out = append(out, club)
			}
		}
	}
	return c.JSON(out)
}

func (s *Server) club(c *fiber.Ctx) (*clubState, error) {
	st := s.clubs[c.Params("uid")]
	if st == nil {
		return nil, errorMsg(c, fiber.StatusNotFound, "Club not found")
	}
	return st, nil
}

func (s *Server) getClub(c *fiber.Ctx, _ *account) error {
	st, err := s.club(c)
	if st == nil {
		return err
	}
	return c.JSON(st.club)
}

func (s *Server) clubMembers(c *fiber.Ctx, _ *account) error {
	st, err := s.club(c)
	if st == nil {
		return err
	}
	return c.JSON(append([]clubmodel.Member{}, st.members...))
}

func (s *Server) joinClub(c *fiber.Ctx, acc *account) error {
	st, err := s.club(c)
	if st == nil {
		return err
	}
	for _, m := range st.members {
		if m.UserUID == acc.user.UID {
			return errorMsg(c, fiber.StatusConflict, "Already a member of this club")
		}
	}
	st.members = append(st.members, clubmodel.Member{
		UserUID: acc.user.UID, UserName: acc.user.Name, Type: clubmodel.MemberTypeMember,
	})
	return c.JSON(fiber.Map{"msg": "Joined club"})
}

func (s *Server) leaveClub(c *fiber.Ctx, acc *account) error {
	st, err := s.club(c)
	if st == nil {
		return err
	}
	kept := st.members[:0:0]
	for _, m := range st.members {
		if m.UserUID != acc.user.UID {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(st.members) {
		return errorMsg(c, fiber.StatusBadRequest, "Not a member of this club")
	}
	st.members = kept
	return c.JSON(fiber.Map{"msg": "Left club"})
}

func (s *Server) view(st *eventState, uid string) clubmodel.Event {
	ev := st.event
	ev.IsAttending = st.attendees[uid]
	ev.ParticipantCount = len(st.attendees)
	return ev
}

func (s *Server) listEvents(c *fiber.Ctx, acc *account) error {
	out := []clubmodel.Event{}
	for _, st := range s.events {
		out = append(out, s.view(st, acc.user.UID))
	}
	return c.JSON(out)
}

func (s *Server) clubEvents(c *fiber.Ctx, acc *account) error {
	out := []clubmodel.Event{}
	for _, st := range s.events {
		if st.event.ClubUID == c.Params("uid") {
			out = append(out, s.view(st, acc.user.UID))
		}
	}
	return c.JSON(out)
}

func (s *Server) event(c *fiber.Ctx) (*eventState, error) {
	st := s.events[c.Params("uid")]
	if st == nil {
		return nil, errorMsg(c, fiber.StatusNotFound, "Event not found")
	}
	return st, nil
}

func (s *Server) getEvent(c *fiber.Ctx, acc *account) error {
	st, err := s.event(c)
	if st == nil {
		return err
	}
	return c.JSON(s.view(st, acc.user.UID))
}

func (s *Server) joinEvent(c *fiber.Ctx, acc *account) error {
	st, err := s.event(c)
	if st == nil {
		return err
	}
	if st.attendees[acc.user.UID] {
		return errorMsg(c, fiber.StatusConflict, "Already registered for this event")
	}
	st.attendees[acc.user.UID] = true
	return c.JSON(fiber.Map{"msg": "Registered"})
}

func (s *Server) leaveEvent(c *fiber.Ctx, acc *account) error {
	st, err := s.event(c)
	if st == nil {
		return err
	}
	if !st.attendees[acc.user.UID] {
		return errorMsg(c, fiber.StatusBadRequest, "Not registered for this event")
	}
	delete(st.attendees, acc.user.UID)
	return c.JSON(fiber.Map{"msg": "Unregistered"})
}

func (s *Server) eventComments(c *fiber.Ctx, _ *account) error {
	forest, ok := s.comments[c.Params("uid")]
	if !ok {
		return errorMsg(c, fiber.StatusNotFound, "Event not found")
	}
	return c.JSON(forest)
}

func (s *Server) postComment(c *fiber.Ctx, acc *account) error {
	var body struct {
		EventUID string `json:"event_uid"`
		Content  string `json:"content"`
	}
	if err := c.BodyParser(&body); err != nil || strings.TrimSpace(body.Content) == "" {
		return errorMsg(c, fiber.StatusBadRequest, "Content is required")
	}
	forest, ok := s.comments[body.EventUID]
	if !ok {
		return errorMsg(c, fiber.StatusNotFound, "Event not found")
	}
	created := s.newComment(acc.user.Name, body.Content)
	s.comments[body.EventUID] = discussionmodel.AddTopLevel(forest, created)
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (s *Server) postReply(c *fiber.Ctx, acc *account) error {
	var body struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&body); err != nil || strings.TrimSpace(body.Content) == "" {
		return errorMsg(c, fiber.StatusBadRequest, "Content is required")
	}
	parent := c.Params("uid")
	created := s.newComment(acc.user.Name, body.Content)
	for eventUID, forest := range s.comments {
		if next, ok := discussionmodel.AddReply(forest, parent, created); ok {
			s.comments[eventUID] = next
			return c.Status(fiber.StatusCreated).JSON(created)
		}
	}
	return errorMsg(c, fiber.StatusNotFound, "Comment not found")
}
