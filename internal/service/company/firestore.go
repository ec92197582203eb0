package company

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// firestoreProfile maps to the profile document.
type firestoreProfile struct {
	Address         string                `firestore:"address,omitempty"`
	Email           string                `firestore:"email,omitempty"`
	SocialMedia     *firestoreSocialMedia `firestore:"socialMedia,omitempty"`
	ImageURL        string                `firestore:"imageUrl,omitempty"`
	Taux            *float64              `firestore:"taux,omitempty"`
	Telephones      string                `firestore:"telephones,omitempty"`
	DernierMisAJour *time.Time            `firestore:"dernierMisAJour,omitempty"`
	LastUpdateDate  time.Time             `firestore:"lastUpdateDate"`
	CreatedAt       time.Time             `firestore:"createdAt"`
}

type firestoreSocialMedia struct {
	Facebook  string `firestore:"facebook,omitempty"`
	Instagram string `firestore:"instagram,omitempty"`
}

// firestoreProduct maps to a product document.
type firestoreProduct struct {
	Name        string  `firestore:"name"`
	Category    string  `firestore:"category"`
	Description string  `firestore:"description"`
	Price       float64 `firestore:"price"`
	InfoID      string  `firestore:"infoId"`
}

// FirestoreStore implements Store on Firestore.
type FirestoreStore struct {
	client *firestore.Client
	cfg    Config
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client, cfg Config) *FirestoreStore {
	return &FirestoreStore{client: client, cfg: cfg}
}

// ProfileID returns the singleton document ID.
func (s *FirestoreStore) ProfileID() string {
	return s.cfg.ProfileID
}

func (s *FirestoreStore) profileRef() *firestore.DocumentRef {
	return s.client.Collection(s.cfg.ProfilesCollection).Doc(s.cfg.ProfileID)
}

func (s *FirestoreStore) products() *firestore.CollectionRef {
	return s.client.Collection(s.cfg.ProductsCollection)
}

func (s *FirestoreStore) productsQuery() firestore.Query {
	return s.products().Where("infoId", "==", s.cfg.ProfileID)
}

// Get reads the profile and its products.
func (s *FirestoreStore) Get(ctx context.Context) (*Company, error) {
	doc, err := s.profileRef().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	profile, err := s.decodeProfile(doc)
	if err != nil {
		return nil, err
	}

	docs, err := s.productsQuery().Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	products, err := decodeProducts(docs)
	if err != nil {
		return nil, err
	}
	return &Company{Profile: *profile, Products: products}, nil
}

// Replace writes the profile with merge semantics and swaps the product set
// in a single transaction. The transaction is attempted once.
func (s *FirestoreStore) Replace(ctx context.Context, update ProfileUpdate, products []ProductSpec) error {
	profileRef := s.profileRef()

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		exists := true
		if _, err := tx.Get(profileRef); err != nil {
			if status.Code(err) != codes.NotFound {
				return err
			}
			exists = false
		}
		old, err := tx.Documents(s.productsQuery()).GetAll()
		if err != nil {
			return err
		}

		data := profileData(update)
		data["lastUpdateDate"] = firestore.ServerTimestamp
		if !exists {
			data["createdAt"] = firestore.ServerTimestamp
		}
		if err := tx.Set(profileRef, data, firestore.MergeAll); err != nil {
			return err
		}

		for _, doc := range old {
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}
		for _, p := range products {
			fp := firestoreProduct{
				Name:        p.Name,
				Category:    string(p.Category),
				Description: p.Description,
				Price:       p.Price,
				InfoID:      s.cfg.ProfileID,
			}
			if err := tx.Create(s.products().NewDoc(), fp); err != nil {
				return err
			}
		}
		return nil
	}, firestore.MaxAttempts(1))
}

// Purge drops the image reference and all products in a single transaction.
func (s *FirestoreStore) Purge(ctx context.Context) (string, error) {
	profileRef := s.profileRef()
	var previous string

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(profileRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		var fp firestoreProfile
		if err := doc.DataTo(&fp); err != nil {
			return err
		}
		old, err := tx.Documents(s.productsQuery()).GetAll()
		if err != nil {
			return err
		}

		if err := tx.Update(profileRef, []firestore.Update{
			{Path: "imageUrl", Value: firestore.Delete},
			{Path: "lastUpdateDate", Value: firestore.ServerTimestamp},
		}); err != nil {
			return err
		}
		for _, d := range old {
			if err := tx.Delete(d.Ref); err != nil {
				return err
			}
		}
		previous = fp.ImageURL
		return nil
	}, firestore.MaxAttempts(1))
	if err != nil {
		return "", err
	}
	return previous, nil
}

// profileData converts field instructions into a merge payload. Kept fields
// are omitted and removed fields carry the Delete sentinel.
func profileData(u ProfileUpdate) map[string]any {
	data := make(map[string]any)
	putField(data, "address", u.Address)
	putField(data, "email", u.Email)
	putField(data, "telephones", u.Telephones)
	putField(data, "taux", u.Taux)
	putField(data, "dernierMisAJour", u.DernierMisAJour)
	putField(data, "imageUrl", u.ImageURL)

	if u.RemoveSocialMedia {
		data["socialMedia"] = firestore.Delete
		return data
	}
	social := make(map[string]any)
	putField(social, "facebook", u.Facebook)
	putField(social, "instagram", u.Instagram)
	if len(social) > 0 {
		data["socialMedia"] = social
	}
	return data
}

func putField[T any](data map[string]any, key string, f Field[T]) {
	switch f.Op() {
	case OpSet:
		data[key] = f.value
	case OpRemove:
		data[key] = firestore.Delete
	}
}

func (s *FirestoreStore) decodeProfile(doc *firestore.DocumentSnapshot) (*Profile, error) {
	var fp firestoreProfile
	if err := doc.DataTo(&fp); err != nil {
		return nil, err
	}
	p := &Profile{
		ID:              doc.Ref.ID,
		Address:         fp.Address,
		Email:           fp.Email,
		ImageURL:        fp.ImageURL,
		Taux:            fp.Taux,
		Telephones:      fp.Telephones,
		DernierMisAJour: fp.DernierMisAJour,
		LastUpdateDate:  fp.LastUpdateDate,
		CreatedAt:       fp.CreatedAt,
	}
	if fp.SocialMedia != nil {
		p.SocialMedia = &SocialMedia{
			Facebook:  fp.SocialMedia.Facebook,
			Instagram: fp.SocialMedia.Instagram,
		}
	}
	if p.DernierMisAJour != nil {
		t := p.DernierMisAJour.UTC()
		p.DernierMisAJour = &t
	}
	return p, nil
}

func decodeProducts(docs []*firestore.DocumentSnapshot) ([]Product, error) {
	products := make([]Product, 0, len(docs))
	for _, doc := range docs {
		var fp firestoreProduct
		if err := doc.DataTo(&fp); err != nil {
			return nil, err
		}
		products = append(products, Product{
			ID:          doc.Ref.ID,
			Name:        fp.Name,
			Category:    Category(fp.Category),
			Description: fp.Description,
			Price:       fp.Price,
			InfoID:      fp.InfoID,
		})
	}
	return products, nil
}

// Compile-time interface check
var _ Store = (*FirestoreStore)(nil)
