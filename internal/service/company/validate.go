package company

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	return v
}

// normalize trims surrounding whitespace from every text input.
func normalize(s Snapshot) Snapshot {
	s.Address = strings.TrimSpace(s.Address)
	s.Email = strings.TrimSpace(s.Email)
	s.Facebook = strings.TrimSpace(s.Facebook)
	s.Instagram = strings.TrimSpace(s.Instagram)
	s.ImageURL = strings.TrimSpace(s.ImageURL)
	s.Telephones = strings.TrimSpace(s.Telephones)
	products := make([]ProductSpec, len(s.Products))
	for i, p := range s.Products {
		p.Name = strings.TrimSpace(p.Name)
		p.Description = strings.TrimSpace(p.Description)
		products[i] = p
	}
	s.Products = products
	return s
}

func (s *Service) validateSnapshot(snap Snapshot) error {
	err := s.validate.Struct(snap)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Issues = append(verr.Issues, Issue{
			Field:   fieldPath(fe.Namespace()),
			Message: issueMessage(fe),
		})
	}
	return verr
}

// fieldPath drops the root struct name: "Snapshot.products[0].name" -> "products[0].name".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be an absolute URL"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "category":
		return fmt.Sprintf("must be one of %s", categoryList())
	default:
		return "is invalid"
	}
}

func categoryList() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// imageTypes are the raster formats accepted for the company image. SVG is
// left out because it can carry script.
var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// validateImage checks size and type and returns the image with the content
// type sniffed from its data. A declared type must agree with the data.
func (s *Service) validateImage(img Image) (Image, error) {
	var issues []Issue
	if len(img.Data) == 0 {
		issues = append(issues, Issue{Field: "image", Message: "must not be empty"})
	}
	if int64(len(img.Data)) > s.maxImageBytes {
		issues = append(issues, Issue{
			Field:   "image",
			Message: fmt.Sprintf("must be at most %d bytes", s.maxImageBytes),
		})
	}
	if len(issues) > 0 {
		return img, &ValidationError{Issues: issues}
	}

	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(img.Data))
	if !imageTypes[sniffed] {
		return img, &ValidationError{Issues: []Issue{{Field: "image", Message: "must be a PNG, JPEG, GIF, WebP or BMP image"}}}
	}
	if img.ContentType != "" && img.ContentType != "application/octet-stream" {
		declared, _, err := mime.ParseMediaType(img.ContentType)
		if declared == "image/jpg" {
			declared = "image/jpeg"
		}
		if err != nil || declared != sniffed {
			return img, &ValidationError{Issues: []Issue{{Field: "image", Message: "content type does not match image data"}}}
		}
	}
	img.ContentType = sniffed
	return img, nil
}
