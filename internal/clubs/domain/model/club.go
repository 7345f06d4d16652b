package model

// Club is a club as returned by GET /clubs/{uid} and GET /clubs/my-clubs. Role is only
// present in the caller's own club list.
type Club struct {
	UID         string            `json:"uid"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	IconURL     string            `json:"icon_url,omitempty"`
	Status      string            `json:"status,omitempty"`
	Budget      *float64          `json:"budget,omitempty"`
	SocialLinks map[string]string `json:"social_links,omitempty"`
	Role        string            `json:"role,omitempty"`
}

// Member types
const (
	MemberTypeExec   = "exec"
	MemberTypeMember = "member"
)

// Member is one entry of GET /clubs/{uid}/members.
type Member struct {
	UserUID  string `json:"user_uid"`
	UserName string `json:"user_name"`
	Type     string `json:"type"`
	Role     string `json:"role,omitempty"`
}

// Event is an event summary or detail. Fields absent from list responses stay zero.
type Event struct {
	UID              string `json:"uid"`
	ClubUID          string `json:"club_uid,omitempty"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	Type             string `json:"type,omitempty"`
	BannerURL        string `json:"banner_url,omitempty"`
	StartDatetime    string `json:"start_datetime,omitempty"`
	EndDatetime      string `json:"end_datetime,omitempty"`
	Location         string `json:"location,omitempty"`
	Status           string `json:"status,omitempty"`
	Limit            *int   `json:"limit,omitempty"`
	IsAttending      bool   `json:"is_attending"`
	ParticipantCount int    `json:"participant_count"`
}

// ClubPage is everything the club view shows.
type ClubPage struct {
	Club    Club     `json:"club"`
	Execs   []Member `json:"execs"`
	Members []Member `json:"members"`
	Events  []Event  `json:"events"`
}

// SplitMembers separates executives from general members, keeping order.
func SplitMembers(all []Member) (execs, members []Member) {
	execs = []Member{}
	members = []Member{}
	for _, m := range all {
		switch m.Type {
		case MemberTypeExec:
			execs = append(execs, m)
		case MemberTypeMember:
			members = append(members, m)
		}
	}
	return execs, members
}
