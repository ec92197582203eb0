package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/company-admin/internal/http/v1/company"
	"github.com/janisto/company-admin/internal/http/v1/session"
	"github.com/janisto/company-admin/internal/platform/auth"
	"github.com/janisto/company-admin/internal/platform/identity"
	companysvc "github.com/janisto/company-admin/internal/service/company"
)

// Register wires all HTTP routes into the provided API router.
func Register(
	api huma.API,
	authn *auth.Authenticator,
	provider identity.Provider,
	companyService *companysvc.Service,
) {
	// Apply auth middleware for protected endpoints
	api.UseMiddleware(auth.NewAuthMiddleware(api, authn))

	session.Register(api, provider, authn)
	company.Register(api, companyService)
}
