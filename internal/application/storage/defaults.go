package storage

import (
	"context"

	"github.com/jhoicas/devis-api/internal/domain/entity"
)

// SaveDraft guarda el borrador actual (a lo sumo uno).
func (s *Store) SaveDraft(ctx context.Context, d entity.QuoteDraft) error {
	return s.Save(ctx, Patch{Draft: &d})
}

// GetDraft devuelve el borrador actual o nil.
func (s *Store) GetDraft(ctx context.Context) (*entity.QuoteDraft, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Draft, nil
}

// ClearDraft elimina el borrador.
func (s *Store) ClearDraft(ctx context.Context) error {
	return s.Save(ctx, Patch{ClearDraft: true})
}

func (s *Store) SaveDefaultCompany(ctx context.Context, c entity.Company) error {
	return s.Save(ctx, Patch{DefaultCompany: &c})
}

func (s *Store) GetDefaultCompany(ctx context.Context) (*entity.Company, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.DefaultCompany, nil
}

func (s *Store) SaveDefaultConditions(ctx context.Context, c entity.Conditions) error {
	return s.Save(ctx, Patch{DefaultConditions: &c})
}

// GetDefaultConditions devuelve las condiciones por defecto; si no hay, las de fábrica.
func (s *Store) GetDefaultConditions(ctx context.Context) (entity.Conditions, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return entity.Conditions{}, err
	}
	if doc.DefaultConditions == nil {
		return entity.DefaultConditions(), nil
	}
	return *doc.DefaultConditions, nil
}

func (s *Store) SaveCustomLegalNotices(ctx context.Context, notices []string) error {
	if notices == nil {
		notices = []string{}
	}
	return s.Save(ctx, Patch{CustomLegalNotices: &notices})
}

func (s *Store) GetCustomLegalNotices(ctx context.Context) ([]string, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.CustomLegalNotices, nil
}
