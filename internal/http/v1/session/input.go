package session

// SessionGetInput for GET /session
type SessionGetInput struct {
	Authorization string `header:"Authorization" doc:"Optional Bearer token"`
	Cookie        string `header:"Cookie"        doc:"Optional session cookie"`
}

// LoginInput for POST /session
type LoginInput struct {
	Body struct {
		Email    string `json:"email"    format:"email" required:"true" doc:"Account email"    example:"admin@example.com"`
		Password string `json:"password" minLength:"1"  required:"true" doc:"Account password" example:"secret123"`
	}
}

// LogoutInput for DELETE /session
type LogoutInput struct {
	Authorization string `header:"Authorization" doc:"Optional Bearer token"`
	Cookie        string `header:"Cookie"        doc:"Optional session cookie"`
}

// SignupInput for POST /signup
type SignupInput struct {
	Body struct {
		Email    string `json:"email"    format:"email" required:"true" doc:"Account email"           example:"new@example.com"`
		Password string `json:"password" minLength:"6"  required:"true" doc:"At least 6 characters"   example:"secret123"`
	}
}

// PasswordResetInput for POST /password-reset
type PasswordResetInput struct {
	Body struct {
		Email string `json:"email" format:"email" required:"true" doc:"Account email" example:"admin@example.com"`
	}
}
