// Package identity holds the contact record attached to a vault.
//
// An Identity never carries secret material, so it appears unchanged in both
// the secret and the public export of a vault.
package identity

import "encoding/json"

// Identity is an immutable contact record.
//
// Identity values are comparable with == and may be used as map keys.
// Equality covers all four fields; an absent comment is distinct from an
// empty one.
type Identity struct {
	firstName  string
	lastName   string
	email      string
	comment    string
	hasComment bool
}

// New returns an Identity without a comment.
func New(firstName, lastName, email string) Identity {
	return Identity{firstName: firstName, lastName: lastName, email: email}
}

// NewWithComment returns an Identity carrying a free-text comment.
func NewWithComment(firstName, lastName, email, comment string) Identity {
	return Identity{
		firstName:  firstName,
		lastName:   lastName,
		email:      email,
		comment:    comment,
		hasComment: true,
	}
}

func (i Identity) FirstName() string { return i.firstName }
func (i Identity) LastName() string  { return i.lastName }
func (i Identity) Email() string     { return i.email }

// Comment returns the comment and whether one is set.
func (i Identity) Comment() (string, bool) { return i.comment, i.hasComment }

type wireIdentity struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Comment   *string `json:"comment,omitempty"`
}

func (i Identity) MarshalJSON() ([]byte, error) {
	w := wireIdentity{FirstName: i.firstName, LastName: i.lastName, Email: i.email}
	if i.hasComment {
		c := i.comment
		w.Comment = &c
	}
	return json.Marshal(w)
}

func (i *Identity) UnmarshalJSON(b []byte) error {
	var w wireIdentity
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.Comment != nil {
		*i = NewWithComment(w.FirstName, w.LastName, w.Email, *w.Comment)
		return nil
	}
	*i = New(w.FirstName, w.LastName, w.Email)
	return nil
}
