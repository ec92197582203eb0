package company

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/janisto/company-admin/internal/platform/auth"
	applog "github.com/janisto/company-admin/internal/platform/logging"
	"github.com/janisto/company-admin/internal/platform/timeutil"
	companysvc "github.com/janisto/company-admin/internal/service/company"
)

// bodyHeadroom covers the profile fields and products sent next to the image.
const bodyHeadroom int64 = 256 << 10

// UpsertBodyLimit is the largest upsert request body for images of up to
// maxImageBytes. The image travels base64 encoded inside the JSON document.
func UpsertBodyLimit(maxImageBytes int64) int64 {
	return 4*((maxImageBytes+2)/3) + bodyHeadroom
}

// Register registers the dashboard data endpoints. All of them require the administrator.
func Register(api huma.API, svc *companysvc.Service) {
	security := []map[string][]string{
		{"bearerAuth": {}},
	}

	huma.Register(api, huma.Operation{
		OperationID: "get-company",
		Method:      http.MethodGet,
		Path:        "/company",
		Summary:     "Get company profile",
		Description: "Returns the company profile with its products.",
		Tags:        []string{"Company"},
		Security:    security,
	}, func(ctx context.Context, _ *CompanyGetInput) (*CompanyGetOutput, error) {
		c, err := svc.Get(ctx)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &CompanyGetOutput{Body: toHTTPCompany(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "upsert-company",
		Method:      http.MethodPut,
		Path:        "/company",
		Summary:     "Create or replace company profile",
		Description: "Writes the profile, replaces every product and resolves the image. " +
			"Cleared fields are removed from the record. Concurrent edits are last-write-wins.",
		Tags:         []string{"Company"},
		Security:     security,
		MaxBodyBytes: UpsertBodyLimit(svc.MaxImageBytes()),
	}, func(ctx context.Context, input *CompanyUpsertInput) (*CompanyUpsertOutput, error) {
		user := auth.UserFromContext(ctx)

		snap, img := toSnapshot(input)
		c, err := svc.Upsert(ctx, user.UID, snap, img)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &CompanyUpsertOutput{Body: toHTTPCompany(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "purge-company-details",
		Method:      http.MethodDelete,
		Path:        "/company/details",
		Summary:     "Clear products and image",
		Description: "Removes every product and the image reference while keeping the profile fields, then deletes the image.",
		Tags:        []string{"Company"},
		Security:    security,
	}, func(ctx context.Context, _ *CompanyPurgeInput) (*CompanyPurgeOutput, error) {
		user := auth.UserFromContext(ctx)

		res, err := svc.Purge(ctx, user.UID)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &CompanyPurgeOutput{Body: PurgeResult{
			PreviousImageURL: res.PreviousImageURL,
			ImageDeleted:     res.PreviousImageURL != "" && res.BlobDeleteErr == nil,
		}}, nil
	})
}

func toSnapshot(input *CompanyUpsertInput) (companysvc.Snapshot, *companysvc.Image) {
	b := input.Body
	snap := companysvc.Snapshot{
		Address:    b.Address,
		Email:      b.Email,
		ImageURL:   b.ImageURL,
		Taux:       b.Taux,
		Telephones: b.Telephones,
		Products:   make([]companysvc.ProductSpec, 0, len(b.Products)),
	}
	if b.SocialMedia != nil {
		snap.Facebook = b.SocialMedia.Facebook
		snap.Instagram = b.SocialMedia.Instagram
	}
	if b.DernierMisAJour != nil && !b.DernierMisAJour.IsZero() {
		t := b.DernierMisAJour.Time
		snap.DernierMisAJour = &t
	}
	for _, p := range b.Products {
		snap.Products = append(snap.Products, companysvc.ProductSpec{
			Name:        p.Name,
			Category:    companysvc.Category(p.Category),
			Description: p.Description,
			Price:       p.Price,
		})
	}

	var img *companysvc.Image
	if b.Image != nil {
		img = &companysvc.Image{
			Data:        b.Image.Data,
			ContentType: b.Image.ContentType,
			Filename:    b.Image.Filename,
		}
	}
	return snap, img
}

func mapServiceError(ctx context.Context, err error) error {
	var verr *companysvc.ValidationError
	switch {
	case errors.As(err, &verr):
		details := make([]error, 0, len(verr.Issues))
		for _, is := range verr.Issues {
			details = append(details, &huma.ErrorDetail{
				Location: "body." + is.Field,
				Message:  is.Message,
			})
		}
		return huma.Error422UnprocessableEntity("validation failed", details...)
	case errors.Is(err, companysvc.ErrNotFound):
		return huma.Error404NotFound("company profile not configured")
	case errors.Is(err, companysvc.ErrBlobWrite):
		applog.LogError(ctx, "image upload failed", err)
		return huma.Error502BadGateway("image storage unavailable")
	case isUnavailable(err):
		applog.LogError(ctx, "document store unavailable", err)
		return huma.Error503ServiceUnavailable("document store unavailable")
	default:
		applog.LogError(ctx, "company operation failed", err)
		return huma.Error500InternalServerError("internal error")
	}
}

// isUnavailable reports whether err wraps a gRPC Unavailable status.
func isUnavailable(err error) bool {
	var se interface{ GRPCStatus() *status.Status }
	return errors.As(err, &se) && se.GRPCStatus().Code() == codes.Unavailable
}

func toHTTPCompany(c *companysvc.Company) Company {
	p := c.Profile
	out := Company{
		ID:              p.ID,
		Address:         p.Address,
		Email:           p.Email,
		ImageURL:        p.ImageURL,
		Taux:            p.Taux,
		Telephones:      p.Telephones,
		DernierMisAJour: timeutil.Ptr(p.DernierMisAJour),
		LastUpdateDate:  timeutil.Time{Time: p.LastUpdateDate},
		CreatedAt:       timeutil.Time{Time: p.CreatedAt},
		Products:        make([]Product, 0, len(c.Products)),
	}
	if p.SocialMedia != nil {
		out.SocialMedia = &SocialMedia{
			Facebook:  p.SocialMedia.Facebook,
			Instagram: p.SocialMedia.Instagram,
		}
	}
	for _, prod := range c.Products {
		out.Products = append(out.Products, Product{
			ID:          prod.ID,
			Name:        prod.Name,
			Category:    string(prod.Category),
			Description: prod.Description,
			Price:       prod.Price,
			InfoID:      prod.InfoID,
		})
	}
	return out
}
