package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huandz/freshmart/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, price, original_price, category, rating, in_stock, unit, image`

func scanProduct(row pgx.Row) (*product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.OriginalPrice,
		&p.Category, &p.Rating, &p.InStock, &p.Unit, &p.Image,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns the whole catalog ordered by id.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY id`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	defer rows.Close()

	return collectProducts(rows)
}

// GetByID returns a single product, or product.ErrNotFound.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*product.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, product.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get product %d", id)
	}
	return p, nil
}

// GetByIDs returns the products matching ids, in catalog order. Missing ids
// are simply absent from the result.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY id`, ids,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get products by ids")
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Create inserts a product. When p.ID is zero the database assigns the next
// id and the assigned value is written back into p.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	if p.ID != 0 {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO products (id, name, price, original_price, category, rating, in_stock, unit, image)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.ID, p.Name, p.Price, p.OriginalPrice, p.Category, p.Rating, p.InStock, p.Unit, p.Image,
		)
		if err != nil {
			return errors.Wrapf(err, "create product %d", p.ID)
		}
		return nil
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, price, original_price, category, rating, in_stock, unit, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		p.Name, p.Price, p.OriginalPrice, p.Category, p.Rating, p.InStock, p.Unit, p.Image,
	).Scan(&p.ID)
	if err != nil {
		return errors.Wrap(err, "create product")
	}
	return nil
}

// Upsert inserts the product under its explicit id, overwriting any existing
// row. Used by the catalog seed tool; the identity sequence is advanced
// afterwards via ResetProductSequence.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, name, price, original_price, category, rating, in_stock, unit, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, price = EXCLUDED.price,
			original_price = EXCLUDED.original_price, category = EXCLUDED.category,
			rating = EXCLUDED.rating, in_stock = EXCLUDED.in_stock,
			unit = EXCLUDED.unit, image = EXCLUDED.image`,
		p.ID, p.Name, p.Price, p.OriginalPrice, p.Category, p.Rating, p.InStock, p.Unit, p.Image,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert product %d", p.ID)
	}
	return nil
}

// ResetProductSequence moves the id sequence past the highest explicit id so
// later inserts without an id do not collide with seeded rows.
func (r *ProductRepository) ResetProductSequence(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		SELECT setval(pg_get_serial_sequence('products', 'id'),
		              (SELECT COALESCE(MAX(id), 1) FROM products))`,
	)
	if err != nil {
		return errors.Wrap(err, "reset product id sequence")
	}
	return nil
}

// Update overwrites all fields of the product with p.ID.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $2, price = $3, original_price = $4, category = $5,
		    rating = $6, in_stock = $7, unit = $8, image = $9
		WHERE id = $1`,
		p.ID, p.Name, p.Price, p.OriginalPrice, p.Category, p.Rating, p.InStock, p.Unit, p.Image,
	)
	if err != nil {
		return errors.Wrapf(err, "update product %d", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes the product with the given id.
func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "delete product %d", id)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]product.Product, error) {
	var out []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate products")
	}
	return out, nil
}
