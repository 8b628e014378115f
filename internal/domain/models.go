// Package domain defines the persistence models for users, friendships,
// surveys and their ordered entries, responses, and answers. These types are
// mapped with GORM and form the core data layer of the survey application.
package domain

import (
	"time"
)

// Privacy levels a Response can carry. They govern who may see the response
// and whether the author's identity is disclosed.
const (
	PrivacyPrivate = "private" // owner only
	PrivacyFriends = "friends" // owner + confirmed friends
	PrivacyPublic  = "public"  // anyone who answered the survey
	PrivacyHidden  = "hidden"  // anyone who answered, author withheld
)

// ValidPrivacy reports whether p is one of the recognised privacy levels.
func ValidPrivacy(p string) bool {
	switch p {
	case PrivacyPrivate, PrivacyFriends, PrivacyPublic, PrivacyHidden:
		return true
	}
	return false
}

// User is an account holder. Usernames are unique case-insensitively; the
// application enforces this with folded lookups rather than a DB collation.
//
// Fields:
//   - ID: auto-increment primary key.
//   - Username: login name; stored as entered, matched case-insensitively.
//   - Password: bcrypt hash of the password. Never serialized.
//   - Email: optional contact address (nil when unset).
type User struct {
	ID        uint      `json:"id"       gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"type:varchar(64);not null;index"`
	Password  string    `json:"-"        gorm:"type:varchar(255);not null"`
	Email     *string   `json:"email,omitempty" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Friendship links an unordered pair of users. A row is created unconfirmed
// by the requester (FriendA) and flips to confirmed when the other side
// issues a matching request. At most one row exists per unordered pair; the
// repository checks both orderings before inserting.
type Friendship struct {
	ID        uint      `json:"id"          gorm:"primaryKey"`
	FriendAID uint      `json:"friend_a_id" gorm:"not null;index;uniqueIndex:ux_friend_pair,priority:1"`
	FriendBID uint      `json:"friend_b_id" gorm:"not null;index;uniqueIndex:ux_friend_pair,priority:2"`
	Confirmed bool      `json:"confirmed"   gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`

	FriendA User `json:"-" gorm:"foreignKey:FriendAID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	FriendB User `json:"-" gorm:"foreignKey:FriendBID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Friendship.
func (Friendship) TableName() string { return "friendships" }

// Survey is a named, user-owned collection of ordered entries (questions and
// headings) plus the responses submitted against them. Deleting a survey
// cascades to its entries and responses.
type Survey struct {
	ID              uint      `json:"id"   gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex"`
	UserID          uint      `json:"user_id" gorm:"not null;index"`
	Description     string    `json:"description"      gorm:"type:text;not null"`
	LongDescription string    `json:"long_description" gorm:"type:text;not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID"`
}

// TableName returns the database table name for Survey.
func (Survey) TableName() string { return "surveys" }

// Question is a survey entry a respondent scores on the −2..2 scale.
//
// Order is a float sort key: new questions take a time-derived key so they
// append without renumbering, and fractional keys support insertion between
// neighbours. FlipID optionally points at the question's semantic opposite;
// the pairing is symmetric and the lower-id member is the pair's canonical
// representative for ordering.
type Question struct {
	ID       uint    `json:"id"        gorm:"primaryKey"`
	SurveyID uint    `json:"survey_id" gorm:"not null;index"`
	FlipID   *uint   `json:"flip_id,omitempty" gorm:"index"`
	Order    float64 `json:"order"     gorm:"column:sort_order;not null;default:0"`
	Section  string  `json:"section"   gorm:"type:varchar(255);not null;default:''"`
	Text     string  `json:"text"      gorm:"type:text;not null"`
	Extra    *string `json:"extra,omitempty" gorm:"type:text"`

	Survey Survey    `json:"-" gorm:"foreignKey:SurveyID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Flip   *Question `json:"-" gorm:"foreignKey:FlipID;references:ID"`
}

// TableName returns the database table name for Question.
func (Question) TableName() string { return "questions" }

// IsFirstOfPair reports whether q is the canonical (lower-id) member of a
// flip pair.
func (q *Question) IsFirstOfPair() bool {
	return q.FlipID != nil && q.ID < *q.FlipID
}

// IsSecondOfPair reports whether q is the non-canonical member of a flip pair.
func (q *Question) IsSecondOfPair() bool {
	return q.FlipID != nil && q.ID > *q.FlipID
}

// Matches reports whether other answers the same underlying preference as q:
// either the same question, or q's flip partner.
func (q *Question) Matches(other *Question) bool {
	if q.FlipID != nil {
		return *q.FlipID == other.ID
	}
	return q.ID == other.ID
}

// Heading is a survey entry used purely to section the display. It sorts
// among questions by its order key and never participates in flip pairing.
type Heading struct {
	ID       uint    `json:"id"        gorm:"primaryKey"`
	SurveyID uint    `json:"survey_id" gorm:"not null;index"`
	Order    float64 `json:"order"     gorm:"column:sort_order;not null;default:0"`
	Text     string  `json:"text"      gorm:"type:text;not null"`

	Survey Survey `json:"-" gorm:"foreignKey:SurveyID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Heading.
func (Heading) TableName() string { return "headings" }

// Response is one user's submission to one survey. The application enforces
// at most one response per (user, survey): lookups take the first match and
// resubmission replaces it in place.
type Response struct {
	ID        uint      `json:"id"        gorm:"primaryKey"`
	UserID    uint      `json:"user_id"   gorm:"not null;index"`
	SurveyID  uint      `json:"survey_id" gorm:"not null;index"`
	Privacy   string    `json:"privacy"   gorm:"type:varchar(16);not null;default:'private'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User   User   `json:"-" gorm:"foreignKey:UserID;references:ID"`
	Survey Survey `json:"-" gorm:"foreignKey:SurveyID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Response.
func (Response) TableName() string { return "responses" }

// Answer is a single scored question within a response. Answers are deleted
// and recreated wholesale when a response is resubmitted.
type Answer struct {
	ID         uint `json:"id"          gorm:"primaryKey"`
	QuestionID uint `json:"question_id" gorm:"not null;index"`
	ResponseID uint `json:"response_id" gorm:"not null;index"`
	Value      int  `json:"value"       gorm:"not null;check:value BETWEEN -2 AND 2"`

	Question Question `json:"-" gorm:"foreignKey:QuestionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Response Response `json:"-" gorm:"foreignKey:ResponseID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Answer.
func (Answer) TableName() string { return "answers" }

// ValueName returns the fixed semantic label for an answer value on the
// −2..2 scale. Unknown values map to the neutral label.
func (a *Answer) ValueName() string {
	switch a.Value {
	case -2, -1:
		return "do not want"
	case 1:
		return "would try"
	case 2:
		return "like"
	default:
		return "don't care about"
	}
}

// Session maps an opaque token to a logged-in username. Sessions live in the
// database so restarts do not log everyone out.
type Session struct {
	Token    string    `json:"-"        gorm:"type:varchar(128);primaryKey"`
	Username string    `json:"username" gorm:"type:varchar(64);not null;index"`
	ATime    time.Time `json:"atime"    gorm:"not null"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }
