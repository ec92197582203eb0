package session

// SessionGetOutput for GET /session
type SessionGetOutput struct {
	SetCookie string `header:"Set-Cookie" doc:"Clears a rejected session cookie"`
	Body      Session
}

// LoginOutput for POST /session
type LoginOutput struct {
	SetCookie string `header:"Set-Cookie" doc:"Session cookie"`
	Body      LoginResult
}

// LogoutOutput for DELETE /session (204 No Content)
type LogoutOutput struct {
	SetCookie string `header:"Set-Cookie" doc:"Expired session cookie"`
}

// SignupOutput for POST /signup (201 Created)
type SignupOutput struct {
	Body Account
}

// PasswordResetOutput for POST /password-reset (202 Accepted)
type PasswordResetOutput struct{}
