// Package repo contains all database access logic for the store directory API.
// No business logic lives here, only SQL, transactions, and type mapping.
// Every failure is classified into the domain error taxonomy before it
// leaves this package.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ymorita/store-directory/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and
// pgx.Tx. Accepting this interface instead of *pgxpool.Pool directly allows
// integration tests to pass a transaction that is rolled back after each
// test, giving free per-test isolation without any manual cleanup. Write
// operations call Begin, which on a pgx.Tx opens a savepoint.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// StoreRepo defines the persistence operations for stores, the shared tag
// dictionary, and the stores_tags join table. The service layer depends on
// this interface, not the concrete Postgres implementation.
type StoreRepo interface {
	// List returns stores matching the filter, each with its tag names
	// aggregated, ordered by insertion. Tags is never nil.
	List(ctx context.Context, filter domain.ListFilter) ([]domain.StoreWithTags, error)

	// GetByStoreID retrieves one store by its external UUID.
	// Returns domain.ErrNotFound if no such store exists.
	GetByStoreID(ctx context.Context, storeID uuid.UUID) (domain.StoreWithTags, error)

	// Create inserts a store row and links it to every name in tagNames,
	// inserting missing dictionary rows first, all in one transaction.
	// Returns the new store's external UUID.
	Create(ctx context.Context, store domain.Store, tagNames []string) (uuid.UUID, error)

	// Update applies a partial update in one transaction. Provided scalar
	// fields are overwritten; a non-nil Tags slice is reconciled against
	// the store's current links. Returns domain.ErrNotFound before any
	// write if the external id resolves to nothing.
	Update(ctx context.Context, storeID uuid.UUID, patch domain.StorePatch) error

	// Delete removes all join rows for the store, then the store row, in
	// one transaction. Returns domain.ErrNotFound if the store is absent.
	// Dictionary rows are never deleted; orphan tags persist.
	Delete(ctx context.Context, storeID uuid.UUID) error
}

// pgStoreRepo is the Postgres implementation of StoreRepo.
type pgStoreRepo struct {
	db db
}

// NewStoreRepo constructs a StoreRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback
// isolation.
func NewStoreRepo(db db) StoreRepo {
	return &pgStoreRepo{db: db}
}

// storeColumns selects one row per store with its tag names aggregated.
// The FILTER clause keeps NULLs out of the array; COALESCE turns a tagless
// store into an empty array rather than NULL.
const storeColumns = `
	SELECT s.store_id, s.store_name, s.address, s.content, s.lat, s.lng,
	       s.created_at, s.updated_at,
	       COALESCE(array_agg(t.tag_name) FILTER (WHERE t.tag_name IS NOT NULL), '{}') AS tags
	FROM stores s
	LEFT JOIN stores_tags st ON st.store_id = s.id
	LEFT JOIN tags t ON t.id = st.tag_id`

// List returns stores matching the filter with their tag names aggregated.
func (r *pgStoreRepo) List(ctx context.Context, filter domain.ListFilter) ([]domain.StoreWithTags, error) {
	const q = storeColumns + `
	WHERE (@name_pattern = '' OR s.store_name ILIKE '%' || @name_pattern || '%')
	  AND (@tag_name = '' OR EXISTS (
	        SELECT 1
	        FROM stores_tags st2
	        JOIN tags t2 ON t2.id = st2.tag_id
	        WHERE st2.store_id = s.id AND t2.tag_name = @tag_name))
	GROUP BY s.id
	ORDER BY s.id`

	args := pgx.NamedArgs{
		"name_pattern": filter.NamePattern,
		"tag_name":     filter.TagName,
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.StoreRepo.List: %w", classify(err))
	}
	defer rows.Close()

	stores := []domain.StoreWithTags{}
	for rows.Next() {
		s, err := scanStoreWithTags(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StoreRepo.List: scan: %w", classify(err))
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StoreRepo.List: rows: %w", classify(err))
	}
	return stores, nil
}

// GetByStoreID retrieves one store by external UUID with its tags.
func (r *pgStoreRepo) GetByStoreID(ctx context.Context, storeID uuid.UUID) (domain.StoreWithTags, error) {
	const q = storeColumns + `
	WHERE s.store_id = @store_id
	GROUP BY s.id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"store_id": storeID})
	s, err := scanStoreWithTags(row)
	if err != nil {
		return domain.StoreWithTags{}, fmt.Errorf("repo.StoreRepo.GetByStoreID: %w", classify(err))
	}
	return s, nil
}

// Create inserts the store row and reconciles its tag links against an empty
// current set, all inside one transaction.
func (r *pgStoreRepo) Create(ctx context.Context, store domain.Store, tagNames []string) (uuid.UUID, error) {
	storeID := uuid.New()

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		const q = `
			INSERT INTO stores (store_id, store_name, address, content, lat, lng)
			VALUES (@store_id, @store_name, @address, @content, @lat, @lng)
			RETURNING id`

		args := pgx.NamedArgs{
			"store_id":   storeID,
			"store_name": store.Name,
			"address":    store.Address,
			"content":    store.Content,
			"lat":        store.Lat,
			"lng":        store.Lng,
		}

		var internalID int64
		if err := tx.QueryRow(ctx, q, args).Scan(&internalID); err != nil {
			return classify(err)
		}

		diff := domain.DiffTags(map[string]uuid.UUID{}, tagNames)
		return applyTagDiff(ctx, tx, internalID, diff)
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("repo.StoreRepo.Create: %w", err)
	}
	return storeID, nil
}

// Update resolves the external id, overwrites any provided scalar fields,
// and reconciles tag links when patch.Tags is non-nil, all in one transaction.
func (r *pgStoreRepo) Update(ctx context.Context, storeID uuid.UUID, patch domain.StorePatch) error {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		internalID, err := resolveForUpdate(ctx, tx, storeID)
		if err != nil {
			return err
		}

		// COALESCE leaves a column untouched when its argument is NULL,
		// so nil patch fields fall through to the existing value.
		const q = `
			UPDATE stores
			SET store_name = COALESCE(@store_name, store_name),
			    address    = COALESCE(@address, address),
			    content    = COALESCE(@content, content),
			    lat        = COALESCE(@lat, lat),
			    lng        = COALESCE(@lng, lng),
			    updated_at = now()
			WHERE id = @id`

		args := pgx.NamedArgs{
			"id":         internalID,
			"store_name": patch.Name,
			"address":    patch.Address,
			"content":    patch.Content,
			"lat":        patch.Lat,
			"lng":        patch.Lng,
		}

		if _, err := tx.Exec(ctx, q, args); err != nil {
			return classify(err)
		}

		if patch.Tags == nil {
			return nil
		}
		current, err := currentTags(ctx, tx, internalID)
		if err != nil {
			return err
		}
		return applyTagDiff(ctx, tx, internalID, domain.DiffTags(current, patch.Tags))
	})
	if err != nil {
		return fmt.Errorf("repo.StoreRepo.Update: %w", err)
	}
	return nil
}

// Delete removes the store's join rows, then the store row.
func (r *pgStoreRepo) Delete(ctx context.Context, storeID uuid.UUID) error {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		internalID, err := resolveForUpdate(ctx, tx, storeID)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM stores_tags WHERE store_id = @id`,
			pgx.NamedArgs{"id": internalID}); err != nil {
			return classify(err)
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM stores WHERE id = @id`,
			pgx.NamedArgs{"id": internalID}); err != nil {
			return classify(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("repo.StoreRepo.Delete: %w", err)
	}
	return nil
}

// inTx runs fn inside a transaction. Commit only happens when fn returns
// nil; any failure rolls the whole transaction back, so partial writes are
// never observable.
func (r *pgStoreRepo) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// resolveForUpdate maps an external store UUID to its internal row id,
// locking the row for the remainder of the transaction.
// Returns domain.ErrNotFound when the id resolves to nothing.
func resolveForUpdate(ctx context.Context, tx pgx.Tx, storeID uuid.UUID) (int64, error) {
	const q = `SELECT id FROM stores WHERE store_id = @store_id FOR UPDATE`

	var internalID int64
	if err := tx.QueryRow(ctx, q, pgx.NamedArgs{"store_id": storeID}).Scan(&internalID); err != nil {
		return 0, classify(err)
	}
	return internalID, nil
}

// currentTags returns the store's linked tag names mapped to the external
// ids of the join rows carrying them, the input shape domain.DiffTags needs.
func currentTags(ctx context.Context, tx pgx.Tx, internalID int64) (map[string]uuid.UUID, error) {
	const q = `
		SELECT t.tag_name, st.stores_tags_id
		FROM stores_tags st
		JOIN tags t ON t.id = st.tag_id
		WHERE st.store_id = @store_id`

	rows, err := tx.Query(ctx, q, pgx.NamedArgs{"store_id": internalID})
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	current := map[string]uuid.UUID{}
	for rows.Next() {
		var (
			name   string
			linkID pgtype.UUID
		)
		if err := rows.Scan(&name, &linkID); err != nil {
			return nil, classify(err)
		}
		current[name] = uuid.UUID(linkID.Bytes)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return current, nil
}

// applyTagDiff executes a reconciliation plan inside the caller's
// transaction: stale links are deleted, dictionary rows are inserted for
// names not yet in the tags table, and one join row is created per added
// name. A concurrent insert of the same tag name loses to the UNIQUE
// constraint on tag_name and surfaces as domain.ErrDataIntegrity.
func applyTagDiff(ctx context.Context, tx pgx.Tx, internalID int64, diff domain.TagDiff) error {
	if len(diff.RemoveLinkIDs) > 0 {
		const q = `DELETE FROM stores_tags WHERE stores_tags_id = ANY(@link_ids)`
		if _, err := tx.Exec(ctx, q, pgx.NamedArgs{"link_ids": diff.RemoveLinkIDs}); err != nil {
			return classify(err)
		}
	}
	if len(diff.AddNames) == 0 {
		return nil
	}

	existing, err := dictionaryIDs(ctx, tx, diff.AddNames)
	if err != nil {
		return err
	}

	for _, name := range diff.AddNames {
		tagID, ok := existing[name]
		if !ok {
			const q = `
				INSERT INTO tags (tag_id, tag_name)
				VALUES (@tag_id, @tag_name)
				RETURNING id`
			args := pgx.NamedArgs{"tag_id": uuid.New(), "tag_name": name}
			if err := tx.QueryRow(ctx, q, args).Scan(&tagID); err != nil {
				return classify(err)
			}
		}

		const q = `
			INSERT INTO stores_tags (stores_tags_id, store_id, tag_id)
			VALUES (@link_id, @store_id, @tag_id)`
		args := pgx.NamedArgs{"link_id": uuid.New(), "store_id": internalID, "tag_id": tagID}
		if _, err := tx.Exec(ctx, q, args); err != nil {
			return classify(err)
		}
	}
	return nil
}

// dictionaryIDs returns the internal row ids of tags whose names already
// exist in the dictionary.
func dictionaryIDs(ctx context.Context, tx pgx.Tx, names []string) (map[string]int64, error) {
	const q = `SELECT id, tag_name FROM tags WHERE tag_name = ANY(@names)`

	rows, err := tx.Query(ctx, q, pgx.NamedArgs{"names": names})
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	ids := map[string]int64{}
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, classify(err)
		}
		ids[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return ids, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing
// scanStoreWithTags to be reused for QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanStoreWithTags maps one aggregated row into a domain.StoreWithTags.
func scanStoreWithTags(s scanner) (domain.StoreWithTags, error) {
	var (
		out domain.StoreWithTags
		id  pgtype.UUID
	)
	err := s.Scan(&id, &out.Name, &out.Address, &out.Content, &out.Lat, &out.Lng,
		&out.CreatedAt, &out.UpdatedAt, &out.Tags)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.StoreWithTags{}, domain.ErrNotFound
		}
		return domain.StoreWithTags{}, err
	}
	out.StoreID = uuid.UUID(id.Bytes)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out, nil
}
