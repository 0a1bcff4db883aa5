package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/jhoicas/devis-api/internal/domain"
	"github.com/jhoicas/devis-api/internal/domain/entity"
)

// ExportSnapshot devuelve el documento completo como JSON UTF-8 indentado.
func (s *Store) ExportSnapshot(ctx context.Context) ([]byte, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("storage: exportar: %w", err)
	}
	return data, nil
}

// ImportSnapshot valida el snapshot y, solo si es válido, fusiona sus claves en el documento.
// Exige la clave "quotes" con un array JSON. Ante cualquier error devuelve
// domain.ErrInvalidSnapshot y no modifica los datos almacenados.
// El contador de secuencia nunca retrocede: se conserva el mayor entre el almacenado y el importado.
func (s *Store) ImportSnapshot(ctx context.Context, data []byte) error {
	p, err := parseSnapshot(data)
	if err != nil {
		return err
	}
	imported := p.LastSequenceNumber
	p.LastSequenceNumber = nil
	return s.update(ctx, func(doc *entity.StorageDocument) error {
		p.apply(doc)
		if imported != nil {
			doc.LastSequenceNumber = max(doc.LastSequenceNumber, *imported)
		}
		return nil
	})
}

func parseSnapshot(data []byte) (Patch, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Patch{}, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}
	rawQuotes, ok := fields["quotes"]
	if !ok || !isJSONArray(rawQuotes) {
		return Patch{}, fmt.Errorf("%w: \"quotes\" debe ser un array", domain.ErrInvalidSnapshot)
	}

	var p Patch
	var quotes []entity.Quote
	if err := json.Unmarshal(rawQuotes, &quotes); err != nil {
		return Patch{}, fmt.Errorf("%w: quotes: %v", domain.ErrInvalidSnapshot, err)
	}
	p.Quotes = &quotes

	if raw, ok := fields["draft"]; ok {
		if isJSONNull(raw) {
			p.ClearDraft = true
		} else {
			var d entity.QuoteDraft
			if err := json.Unmarshal(raw, &d); err != nil {
				return Patch{}, fmt.Errorf("%w: draft: %v", domain.ErrInvalidSnapshot, err)
			}
			p.Draft = &d
		}
	}
	if raw, ok := fields["default_company"]; ok && !isJSONNull(raw) {
		var c entity.Company
		if err := json.Unmarshal(raw, &c); err != nil {
			return Patch{}, fmt.Errorf("%w: default_company: %v", domain.ErrInvalidSnapshot, err)
		}
		p.DefaultCompany = &c
	}
	if raw, ok := fields["default_conditions"]; ok && !isJSONNull(raw) {
		var c entity.Conditions
		if err := json.Unmarshal(raw, &c); err != nil {
			return Patch{}, fmt.Errorf("%w: default_conditions: %v", domain.ErrInvalidSnapshot, err)
		}
		p.DefaultConditions = &c
	}
	if raw, ok := fields["custom_legal_notices"]; ok && !isJSONNull(raw) {
		var notices []string
		if err := json.Unmarshal(raw, &notices); err != nil {
			return Patch{}, fmt.Errorf("%w: custom_legal_notices: %v", domain.ErrInvalidSnapshot, err)
		}
		p.CustomLegalNotices = &notices
	}
	if raw, ok := fields["last_sequence_number"]; ok && !isJSONNull(raw) {
		var seq float64
		if err := json.Unmarshal(raw, &seq); err != nil || seq < 0 || seq != math.Trunc(seq) {
			return Patch{}, fmt.Errorf("%w: last_sequence_number debe ser un entero no negativo", domain.ErrInvalidSnapshot)
		}
		n := int(seq)
		p.LastSequenceNumber = &n
	}
	return p, nil
}

func isJSONArray(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '['
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
