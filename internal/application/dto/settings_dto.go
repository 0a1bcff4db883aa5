package dto

// LegalNoticesRequest body para PUT /api/settings/legal-notices.
type LegalNoticesRequest struct {
	Notices []string `json:"notices" validate:"max=20,dive,max=500"`
}

// SweepResponse resultado de POST /api/storage/sweep.
type SweepResponse struct {
	Evicted int `json:"evicted"`
}
