package company

import "time"

// Op is the instruction carried by a Field.
type Op uint8

const (
	// OpKeep leaves the stored value untouched.
	OpKeep Op = iota
	// OpSet overwrites the stored value.
	OpSet
	// OpRemove deletes the field from the record.
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpSet:
		return "set"
	case OpRemove:
		return "remove"
	default:
		return "keep"
	}
}

// Field is a three-valued update instruction. The zero value keeps the
// stored value.
type Field[T any] struct {
	op    Op
	value T
}

// Set returns a Field that overwrites the stored value with v.
func Set[T any](v T) Field[T] {
	return Field[T]{op: OpSet, value: v}
}

// Remove returns a Field that deletes the stored value.
func Remove[T any]() Field[T] {
	return Field[T]{op: OpRemove}
}

// Op returns the instruction.
func (f Field[T]) Op() Op { return f.op }

// Value returns the value to write and whether the field is a set.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.op == OpSet
}

func applyValue[T any](f Field[T], current, absent T) T {
	switch f.op {
	case OpSet:
		return f.value
	case OpRemove:
		return absent
	default:
		return current
	}
}

func applyPtr[T any](f Field[T], current *T) *T {
	switch f.op {
	case OpSet:
		v := f.value
		return &v
	case OpRemove:
		return nil
	default:
		return current
	}
}

// ProfileUpdate is one instruction per stored profile attribute.
// RemoveSocialMedia drops the whole socialMedia container and overrides
// Facebook and Instagram.
type ProfileUpdate struct {
	Address           Field[string]
	Email             Field[string]
	Telephones        Field[string]
	Taux              Field[float64]
	DernierMisAJour   Field[time.Time]
	Facebook          Field[string]
	Instagram         Field[string]
	RemoveSocialMedia bool
	ImageURL          Field[string]
}

// SocialMediaTouched reports whether the update writes anything under socialMedia.
func (u ProfileUpdate) SocialMediaTouched() bool {
	return u.RemoveSocialMedia || u.Facebook.op != OpKeep || u.Instagram.op != OpKeep
}

// Apply returns p with the update applied. Timestamps are left to the store.
func (u ProfileUpdate) Apply(p Profile) Profile {
	p.Address = applyValue(u.Address, p.Address, "")
	p.Email = applyValue(u.Email, p.Email, "")
	p.Telephones = applyValue(u.Telephones, p.Telephones, "")
	p.ImageURL = applyValue(u.ImageURL, p.ImageURL, "")
	p.Taux = applyPtr(u.Taux, p.Taux)
	p.DernierMisAJour = applyPtr(u.DernierMisAJour, p.DernierMisAJour)

	switch {
	case u.RemoveSocialMedia:
		p.SocialMedia = nil
	case u.Facebook.op != OpKeep || u.Instagram.op != OpKeep:
		var sm SocialMedia
		if p.SocialMedia != nil {
			sm = *p.SocialMedia
		}
		sm.Facebook = applyValue(u.Facebook, sm.Facebook, "")
		sm.Instagram = applyValue(u.Instagram, sm.Instagram, "")
		p.SocialMedia = &sm
	}
	return p
}
