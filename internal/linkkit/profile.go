package linkkit

// Profile is the imported profile handed back to the frontend. ID carries the
// template identifier the import was requested for, not a provider identifier.
type Profile struct {
	ID             string  `json:"id"`
	FullName       string  `json:"fullName"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	ProfilePicture string  `json:"profilePicture"`
	Email          *string `json:"email"`
	EmailVerified  bool    `json:"emailVerified"`
}

// ProfileClaims holds the OpenID Connect userinfo fields returned by LinkedIn.
// Email stays nil when the member has not shared an address.
type ProfileClaims struct {
	Sub           string  `json:"sub"`
	Name          string  `json:"name"`
	GivenName     string  `json:"given_name"`
	FamilyName    string  `json:"family_name"`
	Picture       string  `json:"picture"`
	Email         *string `json:"email"`
	EmailVerified bool    `json:"email_verified"`
}

// NewProfile maps userinfo claims onto a Profile bound to the template identifier.
func NewProfile(templateID string, claims ProfileClaims) Profile {
	return Profile{
		ID:             templateID,
		FullName:       claims.Name,
		FirstName:      claims.GivenName,
		LastName:       claims.FamilyName,
		ProfilePicture: claims.Picture,
		Email:          claims.Email,
		EmailVerified:  claims.EmailVerified,
	}
}

func (profile Profile) clone() Profile {
	cloned := profile
	if profile.Email != nil {
		email := *profile.Email
		cloned.Email = &email
	}
	return cloned
}
