package company

import (
	"github.com/janisto/company-admin/internal/platform/timeutil"
)

// CompanyGetInput for GET /company (no body needed)
type CompanyGetInput struct{}

// ProductBody is a desired product.
type ProductBody struct {
	Name        string  `json:"name"        minLength:"1" maxLength:"20"                                                 doc:"Product name"      example:"Pneu X200"`
	Category    string  `json:"category"    enum:"Industriel,Performance,Résistant,Pro,Polyvalent,Standard"              doc:"Product category"  example:"Pro"`
	Description string  `json:"description" minLength:"1" maxLength:"60"                                                 doc:"Short description" example:"Pneu renforcé"`
	Price       float64 `json:"price"       exclusiveMinimum:"0"                                                         doc:"Unit price"        example:"120.5"`
}

// ImageBody is a new image, base64 encoded in JSON.
type ImageBody struct {
	Data        []byte `json:"data"                  doc:"Image bytes (base64 in JSON)"`
	ContentType string `json:"contentType,omitempty" doc:"Media type, sniffed when omitted" example:"image/png"`
	Filename    string `json:"filename,omitempty"    doc:"Original file name"                example:"logo.png"`
}

// CompanyUpsertInput for PUT /company
type CompanyUpsertInput struct {
	Body struct {
		Address         string         `json:"address"                   minLength:"1"  doc:"Postal address"                         example:"12 avenue Foch, Paris"`
		Email           string         `json:"email"                     format:"email" doc:"Contact email"                          example:"contact@example.com"`
		SocialMedia     *SocialMedia   `json:"socialMedia,omitempty"                    doc:"Social links; empty values clear them"`
		ImageURL        string         `json:"imageUrl,omitempty"                       doc:"Current image URL to keep; omit to clear"`
		Taux            *float64       `json:"taux,omitempty"            minimum:"0"    doc:"Exchange rate"                          example:"655.957"`
		Telephones      string         `json:"telephones,omitempty"                     doc:"Phone numbers, free text"               example:"+33 1 23 45 67 89"`
		DernierMisAJour *timeutil.Time `json:"dernierMisAJour,omitempty"                doc:"Manually entered last update"           example:"2024-05-01"`
		Products        []ProductBody  `json:"products"                                 doc:"Full product list; replaces the stored set"`
		Image           *ImageBody     `json:"image,omitempty"                          doc:"New image; replaces the stored one"`
	}
}

// CompanyPurgeInput for DELETE /company/details (no body needed)
type CompanyPurgeInput struct{}
