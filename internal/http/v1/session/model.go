package session

// Session describes the caller's position relative to the administrator.
type Session struct {
	State string `json:"state"           enum:"unauthenticated,admin" doc:"Gate state"           example:"admin"`
	UID   string `json:"uid,omitempty"                                doc:"Administrator UID"    example:"Xk2pL9"`
	Email string `json:"email,omitempty"                              doc:"Administrator email"  example:"admin@example.com"`
}

// LoginResult is returned after a successful administrator sign-in.
type LoginResult struct {
	Session
	IDToken   string `json:"idToken"   doc:"Firebase ID token, usable as a Bearer token"`
	ExpiresIn int    `json:"expiresIn" doc:"Token lifetime in seconds" example:"3600"`
}

// Account is a newly created account.
type Account struct {
	UID   string `json:"uid"   doc:"New account UID"   example:"Xk2pL9"`
	Email string `json:"email" doc:"New account email" example:"new@example.com"`
}
