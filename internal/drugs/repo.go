package drugs

import "context"

type Repository interface {
	// SearchByName does a case-insensitive substring match on the drug
	// name.
	SearchByName(ctx context.Context, name string) ([]*Drug, error)
	// InsertBatch inserts rows in one transaction, skipping names that
	// already exist. Returns the number of rows actually inserted.
	InsertBatch(ctx context.Context, batch []*Drug) (int64, error)
}
