package drugs

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const drugCols = `id, name, medical_condition, side_effects, generic_name, drug_classes,
	brand_names, activity, rx_otc, pregnancy_category, csa, alcohol, related_drugs,
	medical_condition_description, rating, review_count, link`

func (r *repoPG) SearchByName(ctx context.Context, name string) ([]*Drug, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+drugCols+` FROM drugs WHERE name ILIKE '%' || $1 || '%' ORDER BY name`,
		name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Drug
	for rows.Next() {
		var d Drug
		if err := rows.Scan(&d.ID, &d.Name, &d.MedicalCondition, &d.SideEffects,
			&d.GenericName, &d.DrugClasses, &d.BrandNames, &d.Activity, &d.RxOTC,
			&d.PregnancyCategory, &d.CSA, &d.Alcohol, &d.RelatedDrugs,
			&d.MedicalConditionDescription, &d.Rating, &d.ReviewCount, &d.Link); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (r *repoPG) InsertBatch(ctx context.Context, batch []*Drug) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var inserted int64
	for _, d := range batch {
		tag, err := tx.Exec(ctx, `
			INSERT INTO drugs (name, medical_condition, side_effects, generic_name,
				drug_classes, brand_names, activity, rx_otc, pregnancy_category, csa,
				alcohol, related_drugs, medical_condition_description, rating,
				review_count, link)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
			ON CONFLICT (name) DO NOTHING`,
			d.Name, d.MedicalCondition, d.SideEffects, d.GenericName, d.DrugClasses,
			d.BrandNames, d.Activity, d.RxOTC, d.PregnancyCategory, d.CSA, d.Alcohol,
			d.RelatedDrugs, d.MedicalConditionDescription, d.Rating, d.ReviewCount, d.Link)
		if err != nil {
			return 0, err
		}
		inserted += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}
