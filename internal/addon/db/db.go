package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-addons/internal/addon"
	"ms-addons/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// CreateAddon → insert new catalog entry
func (d *DB) CreateAddon(ctx context.Context, a *models.Addon) error {
	_, err := d.Bun.NewInsert().Model(recordFromAddon(a)).Exec(ctx)
	return err
}

// GetAddonByID → fetch one add-on; (nil, nil) when the row is absent
func (d *DB) GetAddonByID(ctx context.Context, id string) (*models.Addon, error) {
	var record AddonRecord
	err := d.Bun.NewSelect().
		Model(&record).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record.toAddon(), nil
}

// UpdateAddon → rewrite the full row, mirroring legacy columns
func (d *DB) UpdateAddon(ctx context.Context, a *models.Addon) error {
	record := recordFromAddon(a)
	res, err := d.Bun.NewUpdate().
		Model(record).
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return addon.ErrAddonNotFound
	}
	return nil
}

// DeleteAddon → remove a catalog entry
func (d *DB) DeleteAddon(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*AddonRecord)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ListAddons → filtered catalog listing, newest first
func (d *DB) ListAddons(ctx context.Context, filter addon.ListFilter) ([]*models.Addon, error) {
	var records []AddonRecord
	q := d.Bun.NewSelect().Model(&records)
	if filter.PartnerID != "" {
		q = q.Where("partner_id = ?", filter.PartnerID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", string(models.NormalizeCategory(filter.Category)))
	}
	if filter.Available != nil {
		q = q.Where("COALESCE(is_available, availability) = ?", *filter.Available)
	}
	if err := q.Order("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}

	addons := make([]*models.Addon, 0, len(records))
	for i := range records {
		addons = append(addons, records[i].toAddon())
	}
	return addons, nil
}

// FindByIDs → batched existence lookup. Missing IDs are simply absent from
// the result, never nil placeholders.
func (d *DB) FindByIDs(ctx context.Context, ids []string) ([]*models.Addon, error) {
	if len(ids) == 0 {
		return []*models.Addon{}, nil
	}

	var records []AddonRecord
	err := d.Bun.NewSelect().
		Model(&records).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	addons := make([]*models.Addon, 0, len(records))
	for i := range records {
		addons = append(addons, records[i].toAddon())
	}
	return addons, nil
}
