package company

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/janisto/company-admin/internal/service/blob"
)

const actor = "admin-uid"

type fixture struct {
	svc   *Service
	store *MemoryStore
	blobs *blob.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := NewMemoryStore(DefaultConfig())
	var mu sync.Mutex
	clock := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	store.Now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	blobs := blob.NewMemoryStore("memory://blobs", "dataItemImages")
	return &fixture{svc: NewService(store, blobs), store: store, blobs: blobs}
}

func (f *fixture) upsert(t *testing.T, snap Snapshot, img *Image) *Company {
	t.Helper()
	c, err := f.svc.Upsert(context.Background(), actor, snap, img)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	return c
}

func pngImage() *Image {
	return &Image{Data: pngHeader, ContentType: "image/png", Filename: "logo.png"}
}

func threeProducts() []ProductSpec {
	return []ProductSpec{
		{Name: "A", Category: CategoryPro, Description: "a", Price: 1},
		{Name: "B", Category: CategoryStandard, Description: "b", Price: 2},
		{Name: "C", Category: CategoryResistant, Description: "c", Price: 3.5},
	}
}

func TestUpsertCreatesProfile(t *testing.T) {
	f := newFixture(t)
	snap := validSnapshot()
	snap.Products = threeProducts()

	c := f.upsert(t, snap, nil)

	if c.Profile.ID != "main_company_info" {
		t.Errorf("expected fixed ID, got %q", c.Profile.ID)
	}
	if c.Profile.CreatedAt.IsZero() || c.Profile.LastUpdateDate.IsZero() {
		t.Error("expected timestamps set")
	}
	if c.Profile.SocialMedia != nil {
		t.Error("expected no socialMedia container")
	}
	if len(c.Products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(c.Products))
	}
	for _, p := range c.Products {
		if p.InfoID != "main_company_info" || p.ID == "" {
			t.Errorf("unexpected product %+v", p)
		}
	}
	if len(f.blobs.Uploads()) != 0 || len(f.blobs.Deletes()) != 0 {
		t.Error("expected no blob traffic")
	}
}

func TestUpsertKeepsCreatedAtAndRefreshesLastUpdate(t *testing.T) {
	f := newFixture(t)
	first := f.upsert(t, validSnapshot(), nil)
	second := f.upsert(t, validSnapshot(), nil)

	if !second.Profile.CreatedAt.Equal(first.Profile.CreatedAt) {
		t.Errorf("createdAt changed: %v -> %v", first.Profile.CreatedAt, second.Profile.CreatedAt)
	}
	if !second.Profile.LastUpdateDate.After(first.Profile.LastUpdateDate) {
		t.Errorf("lastUpdateDate not refreshed: %v -> %v", first.Profile.LastUpdateDate, second.Profile.LastUpdateDate)
	}
}

func TestUpsertKeepsImageWhenUnchanged(t *testing.T) {
	f := newFixture(t)
	before := f.upsert(t, validSnapshot(), pngImage())

	snap := validSnapshot()
	snap.ImageURL = before.Profile.ImageURL
	after := f.upsert(t, snap, nil)

	if after.Profile.ImageURL != before.Profile.ImageURL {
		t.Fatalf("imageUrl changed: %q -> %q", before.Profile.ImageURL, after.Profile.ImageURL)
	}
	if len(f.blobs.Deletes()) != 0 || len(f.blobs.Uploads()) != 1 {
		t.Fatalf("unexpected blob traffic: uploads=%v deletes=%v", f.blobs.Uploads(), f.blobs.Deletes())
	}
}

func TestUpsertReplacesImage(t *testing.T) {
	f := newFixture(t)
	old := f.upsert(t, validSnapshot(), pngImage()).Profile.ImageURL

	snap := validSnapshot()
	snap.ImageURL = old
	c := f.upsert(t, snap, pngImage())

	deletes := f.blobs.Deletes()
	if len(deletes) != 1 || deletes[0] != old {
		t.Fatalf("expected exactly one delete of %q, got %v", old, deletes)
	}
	uploads := f.blobs.Uploads()
	if len(uploads) != 2 {
		t.Fatalf("expected one upload per call, got %v", uploads)
	}
	if c.Profile.ImageURL != uploads[1] || c.Profile.ImageURL == old {
		t.Fatalf("expected new reference %q, got %q", uploads[1], c.Profile.ImageURL)
	}
	if f.blobs.Has(old) || !f.blobs.Has(c.Profile.ImageURL) {
		t.Fatal("expected old blob gone and new blob stored")
	}
}

func TestUpsertClearsImage(t *testing.T) {
	f := newFixture(t)
	old := f.upsert(t, validSnapshot(), pngImage()).Profile.ImageURL

	c := f.upsert(t, validSnapshot(), nil)

	if c.Profile.ImageURL != "" {
		t.Fatalf("expected image removed, got %q", c.Profile.ImageURL)
	}
	if deletes := f.blobs.Deletes(); len(deletes) != 1 || deletes[0] != old {
		t.Fatalf("expected delete of %q, got %v", old, deletes)
	}
}

func TestUpsertNoImageIsNoop(t *testing.T) {
	f := newFixture(t)
	f.upsert(t, validSnapshot(), nil)
	c := f.upsert(t, validSnapshot(), nil)

	if c.Profile.ImageURL != "" {
		t.Fatalf("expected no image, got %q", c.Profile.ImageURL)
	}
	if len(f.blobs.Uploads())+len(f.blobs.Deletes()) != 0 {
		t.Fatal("expected no blob traffic")
	}
}

func TestUpsertKeepSignalWithoutStoredImage(t *testing.T) {
	f := newFixture(t)
	snap := validSnapshot()
	snap.ImageURL = "https://example.com/stale.png"

	c := f.upsert(t, snap, nil)

	if c.Profile.ImageURL != "" {
		t.Fatalf("a keep signal must not write a reference, got %q", c.Profile.ImageURL)
	}
	if len(f.blobs.Deletes()) != 0 {
		t.Fatal("expected no blob delete")
	}
}

func TestUpsertReplacesProducts(t *testing.T) {
	f := newFixture(t)
	snap := validSnapshot()
	snap.Products = threeProducts()
	first := f.upsert(t, snap, nil)

	snap.Products = snap.Products[:2]
	second := f.upsert(t, snap, nil)

	if len(second.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(second.Products))
	}
	old := make(map[string]bool)
	for _, p := range first.Products {
		old[p.ID] = true
	}
	for _, p := range second.Products {
		if old[p.ID] {
			t.Fatalf("product %s survived the replace", p.ID)
		}
		if p.InfoID != f.store.ProfileID() {
			t.Fatalf("unexpected infoId %q", p.InfoID)
		}
	}

	snap.Products = nil
	if c := f.upsert(t, snap, nil); len(c.Products) != 0 {
		t.Fatalf("expected empty product set, got %d", len(c.Products))
	}
}

func TestUpsertLeavesUnlinkedProducts(t *testing.T) {
	f := newFixture(t)
	f.store.SeedProduct(Product{ID: "foreign", Name: "x", InfoID: "other"})

	f.upsert(t, validSnapshot(), nil)

	if f.store.ProductCount() != 2 {
		t.Fatalf("expected the unlinked product to survive, count=%d", f.store.ProductCount())
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC)
	snap := validSnapshot()
	snap.Telephones = "555-1234"
	snap.Taux = ptr(655.957)
	snap.DernierMisAJour = &day
	snap.Instagram = "https://instagram.com/acme"
	snap.Products = threeProducts()

	first := f.upsert(t, snap, pngImage())
	snap.ImageURL = first.Profile.ImageURL
	second := f.upsert(t, snap, nil)

	a, b := first.Profile, second.Profile
	a.LastUpdateDate, b.LastUpdateDate = time.Time{}, time.Time{}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("profiles differ:\n%+v\n%+v", a, b)
	}
	if len(second.Products) != len(first.Products) {
		t.Fatalf("product count changed: %d -> %d", len(first.Products), len(second.Products))
	}
}

func TestUpsertClearsOptionalField(t *testing.T) {
	f := newFixture(t)
	snap := validSnapshot()
	snap.Telephones = "555-1234"
	snap.Facebook = "https://facebook.com/acme"
	f.upsert(t, snap, nil)

	snap.Telephones = ""
	snap.Facebook = ""
	c := f.upsert(t, snap, nil)

	if c.Profile.Telephones != "" {
		t.Fatalf("expected telephones absent, got %q", c.Profile.Telephones)
	}
	if c.Profile.SocialMedia != nil {
		t.Fatalf("expected socialMedia container removed, got %+v", c.Profile.SocialMedia)
	}
}

func TestUpsertValidationRunsFirst(t *testing.T) {
	f := newFixture(t)
	snap := validSnapshot()
	snap.Email = "nope"

	_, err := f.svc.Upsert(context.Background(), actor, snap, pngImage())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(f.blobs.Uploads()) != 0 {
		t.Fatal("expected no upload")
	}
	if _, err := f.store.Get(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected nothing stored, got %v", err)
	}

	_, err = f.svc.Upsert(context.Background(), actor, validSnapshot(), &Image{Data: []byte("text")})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for non-image, got %v", err)
	}
}

func TestUpsertSupersededDeleteFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	old := f.upsert(t, validSnapshot(), pngImage()).Profile.ImageURL
	f.blobs.DeleteErr = errors.New("storage unavailable")

	c := f.upsert(t, validSnapshot(), pngImage())

	if c.Profile.ImageURL == old || c.Profile.ImageURL == "" {
		t.Fatalf("expected new reference, got %q", c.Profile.ImageURL)
	}
}

func TestUpsertUploadFailure(t *testing.T) {
	f := newFixture(t)
	f.upsert(t, validSnapshot(), nil)
	f.blobs.UploadErr = errors.New("quota exceeded")

	_, err := f.svc.Upsert(context.Background(), actor, validSnapshot(), pngImage())
	if !errors.Is(err, ErrBlobWrite) {
		t.Fatalf("expected ErrBlobWrite, got %v", err)
	}
}

func TestUpsertTransactionFailureDiscardsUpload(t *testing.T) {
	f := newFixture(t)
	f.store.ReplaceErr = errors.New("aborted")

	_, err := f.svc.Upsert(context.Background(), actor, validSnapshot(), pngImage())
	if !errors.Is(err, ErrStoreWrite) {
		t.Fatalf("expected ErrStoreWrite, got %v", err)
	}
	uploads := f.blobs.Uploads()
	if len(uploads) != 1 {
		t.Fatalf("expected one upload, got %v", uploads)
	}
	if f.blobs.Has(uploads[0]) {
		t.Fatal("expected the uncommitted upload to be deleted")
	}
}

func TestUpsertStoreReadError(t *testing.T) {
	f := newFixture(t)
	f.store.GetErr = errors.New("unavailable")

	_, err := f.svc.Upsert(context.Background(), actor, validSnapshot(), nil)
	if !errors.Is(err, ErrStoreRead) {
		t.Fatalf("expected ErrStoreRead, got %v", err)
	}
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Get(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	f.upsert(t, validSnapshot(), nil)
	c, err := f.svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.Profile.Email != "contact@example.com" || len(c.Products) != 1 {
		t.Fatalf("unexpected company %+v", c)
	}

	f.store.GetErr = errors.New("unavailable")
	if _, err := f.svc.Get(context.Background()); !errors.Is(err, ErrStoreRead) {
		t.Fatalf("expected ErrStoreRead, got %v", err)
	}
}

func TestPurge(t *testing.T) {
	f := newFixture(t)
	snap := validSnapshot()
	snap.Products = threeProducts()
	before := f.upsert(t, snap, pngImage())

	res, err := f.svc.Purge(context.Background(), actor)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if res.PreviousImageURL != before.Profile.ImageURL {
		t.Fatalf("previous = %q, want %q", res.PreviousImageURL, before.Profile.ImageURL)
	}
	if res.BlobDeleteErr != nil {
		t.Fatalf("unexpected blob error: %v", res.BlobDeleteErr)
	}

	after, err := f.svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(after.Products) != 0 {
		t.Fatalf("expected no products, got %d", len(after.Products))
	}
	if after.Profile.ImageURL != "" {
		t.Fatalf("expected no image, got %q", after.Profile.ImageURL)
	}
	if after.Profile.Address != before.Profile.Address || after.Profile.Email != before.Profile.Email {
		t.Fatal("purge must keep address and email")
	}
	if !after.Profile.LastUpdateDate.After(before.Profile.LastUpdateDate) {
		t.Fatal("expected lastUpdateDate refreshed")
	}
	if f.blobs.Has(before.Profile.ImageURL) {
		t.Fatal("expected the image deleted")
	}
}

func TestPurgeWithoutImage(t *testing.T) {
	f := newFixture(t)
	f.upsert(t, validSnapshot(), nil)

	res, err := f.svc.Purge(context.Background(), actor)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if res.PreviousImageURL != "" || len(f.blobs.Deletes()) != 0 {
		t.Fatal("expected no blob delete")
	}
}

func TestPurgeNotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Purge(context.Background(), actor); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPurgeBlobDeleteFailure(t *testing.T) {
	f := newFixture(t)
	f.upsert(t, validSnapshot(), pngImage())
	f.blobs.DeleteErr = errors.New("denied")

	res, err := f.svc.Purge(context.Background(), actor)
	if err != nil {
		t.Fatalf("purge must commit despite blob failure: %v", err)
	}
	if !errors.Is(res.BlobDeleteErr, ErrBlobDelete) {
		t.Fatalf("expected ErrBlobDelete, got %v", res.BlobDeleteErr)
	}
}

func TestPurgeStoreError(t *testing.T) {
	f := newFixture(t)
	f.store.PurgeErr = errors.New("aborted")

	if _, err := f.svc.Purge(context.Background(), actor); !errors.Is(err, ErrStoreWrite) {
		t.Fatalf("expected ErrStoreWrite, got %v", err)
	}
}

func TestCategorizeError(t *testing.T) {
	tests := map[error]string{
		&ValidationError{}: "validation",
		ErrNotFound:        "not_found",
		ErrBlobWrite:       "blob_write",
		ErrStoreRead:       "store_read",
		ErrStoreWrite:      "store_write",
		errors.New("x"):    "internal_error",
	}
	for err, want := range tests {
		if got := categorizeError(err); got != want {
			t.Errorf("categorizeError(%v) = %q, want %q", err, got, want)
		}
	}
}
