package entity

// StorageDocument es el documento único persistido bajo la clave de almacenamiento.
type StorageDocument struct {
	Quotes             []Quote     `json:"quotes"`
	Draft              *QuoteDraft `json:"draft,omitempty"`
	DefaultCompany     *Company    `json:"default_company,omitempty"`
	DefaultConditions  *Conditions `json:"default_conditions,omitempty"`
	CustomLegalNotices []string    `json:"custom_legal_notices"`
	LastSequenceNumber int         `json:"last_sequence_number"`
}

// DefaultStorageDocument es el documento usado cuando no hay datos o no se pueden leer.
func DefaultStorageDocument() StorageDocument {
	conditions := DefaultConditions()
	return StorageDocument{
		Quotes:             []Quote{},
		DefaultConditions:  &conditions,
		CustomLegalNotices: []string{},
	}
}
