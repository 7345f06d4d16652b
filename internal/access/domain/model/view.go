package model

// Redirect targets
const (
	RedirectLogin      = "/login"
	RedirectCreateClub = "/clubs/create"
)

// Rule is one CEL condition a view requires. Redirect is where a caller that fails
// it is sent.
type Rule struct {
	Expression string `json:"expression"`
	Redirect   string `json:"redirect"`
}

// View is a named screen and the rules guarding it, checked in order.
type View struct {
	Name  string `json:"name"`
	Rules []Rule `json:"rules"`
}

// Subject is what guards see about the caller.
type Subject struct {
	Authenticated bool
	UserUID       string
	UserName      string
	UserEmail     string
	ClubSelected  bool
	ClubCount     int
}

// Vars returns the CEL activation for s.
func (s Subject) Vars() map[string]interface{} {
	var user interface{}
	if s.Authenticated {
		user = map[string]interface{}{
			"uid":   s.UserUID,
			"name":  s.UserName,
			"email": s.UserEmail,
		}
	}
	return map[string]interface{}{
		"session": map[string]interface{}{
			"authenticated": s.Authenticated,
			"user":          user,
		},
		"club": map[string]interface{}{
			"selected": s.ClubSelected,
			"count":    int64(s.ClubCount),
		},
	}
}

// Decision is the outcome of guarding a view.
type Decision struct {
	View     string `json:"view"`
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
}

const (
	requireSession = "session.authenticated"
	requireClub    = "club.count > 0"
)

// DefaultViews are the portal's guarded screens. login and register are open.
func DefaultViews() []View {
	signedIn := Rule{Expression: requireSession, Redirect: RedirectLogin}
	hasClub := Rule{Expression: requireClub, Redirect: RedirectCreateClub}
	return []View{
		{Name: "login"},
		{Name: "register"},
		{Name: "home", Rules: []Rule{signedIn}},
		{Name: "club", Rules: []Rule{signedIn}},
		{Name: "event", Rules: []Rule{signedIn}},
		{Name: "settings", Rules: []Rule{signedIn}},
		{Name: "clubs", Rules: []Rule{signedIn}},
		{Name: "dashboard", Rules: []Rule{signedIn, hasClub}},
		{Name: "events", Rules: []Rule{signedIn, hasClub}},
	}
}
