package company

import "time"

// PlanProfileUpdate derives the field instructions that turn current into
// desired. current is nil when no profile exists yet.
//
// A non-empty desired value is written. An empty desired value removes the
// field only when a stored value exists, so untouched and cleared fields stay
// distinguishable. The image reference is left to the caller.
func PlanProfileUpdate(current *Profile, desired Snapshot) ProfileUpdate {
	var cur Profile
	if current != nil {
		cur = *current
	}

	u := ProfileUpdate{
		Address:    planText(cur.Address, desired.Address),
		Email:      planText(cur.Email, desired.Email),
		Telephones: planText(cur.Telephones, desired.Telephones),
	}

	switch {
	case desired.Taux != nil:
		u.Taux = Set(*desired.Taux)
	case cur.Taux != nil:
		u.Taux = Remove[float64]()
	}

	switch {
	case desired.DernierMisAJour != nil:
		u.DernierMisAJour = Set(desired.DernierMisAJour.UTC())
	case cur.DernierMisAJour != nil:
		u.DernierMisAJour = Remove[time.Time]()
	}

	var stored SocialMedia
	if cur.SocialMedia != nil {
		stored = *cur.SocialMedia
	}
	if desired.Facebook == "" && desired.Instagram == "" {
		u.RemoveSocialMedia = !cur.SocialMedia.IsEmpty()
		return u
	}
	u.Facebook = planText(stored.Facebook, desired.Facebook)
	u.Instagram = planText(stored.Instagram, desired.Instagram)
	return u
}

func planText(stored, desired string) Field[string] {
	switch {
	case desired != "":
		return Set(desired)
	case stored != "":
		return Remove[string]()
	default:
		return Field[string]{}
	}
}
