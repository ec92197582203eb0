package company

// CompanyGetOutput for GET /company
type CompanyGetOutput struct {
	Body Company
}

// CompanyUpsertOutput for PUT /company
type CompanyUpsertOutput struct {
	Body Company
}

// CompanyPurgeOutput for DELETE /company/details
type CompanyPurgeOutput struct {
	Body PurgeResult
}
