package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"ms-addons/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// UpsertBundle replaces the experience's bundle atomically: existing rows are
// dropped and the new reference set inserted in one transaction. The
// experience_id key keeps at most one bundle per experience.
func (d *DB) UpsertBundle(ctx context.Context, b *models.AddonBundle) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*BundleItemRecord)(nil)).
			Where("experience_id = ?", b.ExperienceID).
			Exec(ctx)
		if err != nil {
			return err
		}

		if b.IsEmpty() {
			return nil
		}

		now := time.Now().UTC()
		records := make([]BundleItemRecord, 0, b.TotalCount())
		for i, ref := range b.IncludedAddons {
			records = append(records, recordFromReference(b.ExperienceID, ref, i, now))
		}
		for i, ref := range b.OptionalAddons {
			records = append(records, recordFromReference(b.ExperienceID, ref, len(b.IncludedAddons)+i, now))
		}

		_, err = tx.NewInsert().Model(&records).Exec(ctx)
		return err
	})
}

// GetBundleByExperience rebuilds the bundle from its rows. No rows means an
// empty bundle, not an error.
func (d *DB) GetBundleByExperience(ctx context.Context, experienceID string) (*models.AddonBundle, error) {
	var records []BundleItemRecord
	err := d.Bun.NewSelect().
		Model(&records).
		Where("experience_id = ?", experienceID).
		Order("sort_order ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return models.EmptyBundle(experienceID), nil
	}

	var included, optional []models.AddonReference
	for _, record := range records {
		ref := record.toReference()
		if ref.IsRequired {
			included = append(included, ref)
		} else {
			optional = append(optional, ref)
		}
	}

	return models.NewAddonBundle(experienceID, included, optional)
}

// DeleteBundle clears every reference for the experience.
func (d *DB) DeleteBundle(ctx context.Context, experienceID string) error {
	_, err := d.Bun.NewDelete().
		Model((*BundleItemRecord)(nil)).
		Where("experience_id = ?", experienceID).
		Exec(ctx)
	return err
}

// ReferencesAddon reports whether any bundle still holds the add-on.
func (d *DB) ReferencesAddon(ctx context.Context, addonID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*BundleItemRecord)(nil)).
		Where("addon_id = ?", addonID).
		Exists(ctx)
}
