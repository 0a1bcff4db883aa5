package devis

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/devis-api/internal/application/dto"
	"github.com/jhoicas/devis-api/internal/application/storage"
	"github.com/jhoicas/devis-api/internal/domain"
	"github.com/jhoicas/devis-api/internal/domain/entity"
	"github.com/jhoicas/devis-api/pkg/legal"
	"github.com/jhoicas/devis-api/pkg/logger"
)

// SettingsUseCase valores por defecto del emisor y mantenimiento del almacenamiento.
type SettingsUseCase struct {
	store     SettingsStore
	validator *Validator
	log       *logger.Logger
}

func NewSettingsUseCase(store SettingsStore, validator *Validator, log *logger.Logger) *SettingsUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SettingsUseCase{store: store, validator: validator, log: log}
}

// GetCompany devuelve la empresa por defecto o ErrNotFound.
func (uc *SettingsUseCase) GetCompany(ctx context.Context) (*entity.Company, error) {
	c, err := uc.store.GetDefaultCompany(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("empresa por defecto: %w", domain.ErrNotFound)
	}
	return c, nil
}

// SaveCompany guarda la empresa por defecto. Si falta el número de IVA y la empresa
// no está en franquicia, se deriva del SIREN.
func (uc *SettingsUseCase) SaveCompany(ctx context.Context, req dto.CompanyRequest) (*entity.Company, error) {
	if err := uc.validator.Struct(req); err != nil {
		return nil, err
	}
	c := companyFromRequest(req)
	if c.VATNumber == "" && !c.IsMicroEnterprise() && c.SIRET != "" {
		vat, err := legal.ComputeVATNumber(c.SIRET)
		if err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo derivar el número de IVA")
		} else {
			c.VATNumber = vat
		}
	}
	if err := uc.store.SaveDefaultCompany(ctx, c); err != nil {
		return nil, fmt.Errorf("ajustes: empresa: %w", err)
	}
	return &c, nil
}

// GetConditions devuelve las condiciones por defecto (de fábrica si no hay guardadas).
func (uc *SettingsUseCase) GetConditions(ctx context.Context) (entity.Conditions, error) {
	return uc.store.GetDefaultConditions(ctx)
}

func (uc *SettingsUseCase) SaveConditions(ctx context.Context, req dto.ConditionsRequest) (*entity.Conditions, error) {
	if err := uc.validator.Struct(req); err != nil {
		return nil, err
	}
	c := conditionsFromRequest(req, entity.DefaultConditions(), nil)
	if err := uc.store.SaveDefaultConditions(ctx, c); err != nil {
		return nil, fmt.Errorf("ajustes: condiciones: %w", err)
	}
	return &c, nil
}

func (uc *SettingsUseCase) GetLegalNotices(ctx context.Context) ([]string, error) {
	notices, err := uc.store.GetCustomLegalNotices(ctx)
	if err != nil {
		return nil, err
	}
	if notices == nil {
		notices = []string{}
	}
	return notices, nil
}

// SaveLegalNotices reemplaza las menciones personalizadas, descartando las vacías.
func (uc *SettingsUseCase) SaveLegalNotices(ctx context.Context, req dto.LegalNoticesRequest) ([]string, error) {
	if err := uc.validator.Struct(req); err != nil {
		return nil, err
	}
	notices := make([]string, 0, len(req.Notices))
	for _, n := range req.Notices {
		if n = strings.TrimSpace(n); n != "" {
			notices = append(notices, n)
		}
	}
	if err := uc.store.SaveCustomLegalNotices(ctx, notices); err != nil {
		return nil, fmt.Errorf("ajustes: menciones: %w", err)
	}
	return notices, nil
}

func (uc *SettingsUseCase) Usage(ctx context.Context) (storage.Usage, error) {
	return uc.store.StorageUsage(ctx)
}

// Sweep aplica la política de retención y devuelve cuántos presupuestos se eliminaron.
func (uc *SettingsUseCase) Sweep(ctx context.Context) (*dto.SweepResponse, error) {
	n, err := uc.store.Sweep(ctx)
	if err != nil {
		return nil, fmt.Errorf("ajustes: limpieza: %w", err)
	}
	uc.log.Info().Int("evicted", n).Msg("limpieza manual del almacenamiento")
	return &dto.SweepResponse{Evicted: n}, nil
}

func (uc *SettingsUseCase) Export(ctx context.Context) ([]byte, error) {
	return uc.store.ExportSnapshot(ctx)
}

func (uc *SettingsUseCase) Import(ctx context.Context, data []byte) error {
	if err := uc.store.ImportSnapshot(ctx, data); err != nil {
		return err
	}
	uc.log.Info().Int("bytes", len(data)).Msg("snapshot importado")
	return nil
}
