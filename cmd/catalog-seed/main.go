// Command catalog-seed loads the product catalog into PostgreSQL. It streams
// gzip-compressed JSON-lines catalog files (one product object per line),
// skips duplicate ids across files, and upserts everything into the products
// table. With no catalog files present it falls back to the embedded default
// catalog.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/huandz/freshmart/data"
	"github.com/huandz/freshmart/internal/domain/product"
	"github.com/huandz/freshmart/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing catalog*.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog seed completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "catalog*.gz"))
	if err != nil {
		return errors.Wrap(err, "glob catalog files")
	}

	var products []product.Product
	if len(files) == 0 {
		slog.Info("no catalog files found, using embedded catalog")
		products, err = data.Catalog()
		if err != nil {
			return errors.Wrap(err, "load embedded catalog")
		}
	} else {
		slog.Info("decoding catalog files", slog.Int("files", len(files)))
		products, err = decodeCatalogFiles(ctx, files)
		if err != nil {
			return errors.Wrap(err, "decode catalog files")
		}
	}

	products = dedupe(products)
	slog.Info("products to seed", slog.Int("count", len(products)))

	slog.Info("connecting to database")
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewProductRepository(pool)
	for i, p := range products {
		if err := repo.Upsert(ctx, &p); err != nil {
			return errors.Wrapf(err, "upsert product %d", p.ID)
		}
		if (i+1)%100 == 0 || i+1 == len(products) {
			slog.Info("write progress", slog.Int("written", i+1), slog.Int("total", len(products)))
		}
	}

	return repo.ResetProductSequence(ctx)
}

// decodeCatalogFiles streams every file concurrently and returns the decoded
// products in file order.
func decodeCatalogFiles(ctx context.Context, files []string) ([]product.Product, error) {
	perFile := make([][]product.Product, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(decodeFile(ctx, i, f, perFile))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []product.Product
	for _, ps := range perFile {
		out = append(out, ps...)
	}
	return out, nil
}

func decodeFile(ctx context.Context, idx int, path string, results [][]product.Product) func() error {
	return func() error {
		var (
			products []product.Product
			count    uint64
		)

		if err := streamGzFile(ctx, path, func(line []byte) error {
			p, err := decodeProduct(line)
			if err != nil {
				return err
			}
			products = append(products, *p)

			count++
			if count%progressEvery == 0 {
				slog.Info("decode progress",
					slog.Int("file", idx+1),
					slog.Uint64("products", count),
				)
			}
			return nil
		}); err != nil {
			return errors.Wrapf(err, "decode file %d", idx+1)
		}

		slog.Info("decode complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_products", count),
		)

		results[idx] = products
		return nil
	}
}

// decodeProduct parses one JSON-lines catalog entry.
func decodeProduct(line []byte) (*product.Product, error) {
	var p product.Product
	d := jx.DecodeBytes(line)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			id, err := d.Int()
			if err != nil {
				return err
			}
			p.ID = id
		case "name":
			s, err := d.Str()
			if err != nil {
				return err
			}
			p.Name = s
		case "price":
			v, err := decodeDecimal(d)
			if err != nil {
				return err
			}
			p.Price = v
		case "originalPrice":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := decodeDecimal(d)
			if err != nil {
				return err
			}
			p.OriginalPrice = &v
		case "category":
			s, err := d.Str()
			if err != nil {
				return err
			}
			p.Category = s
		case "rating":
			f, err := d.Float64()
			if err != nil {
				return err
			}
			p.Rating = f
		case "inStock":
			b, err := d.Bool()
			if err != nil {
				return err
			}
			p.InStock = b
		case "unit":
			s, err := d.Str()
			if err != nil {
				return err
			}
			p.Unit = s
		case "image":
			s, err := d.Str()
			if err != nil {
				return err
			}
			p.Image = s
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode product object")
	}

	if p.ID == 0 {
		return nil, errors.New("product id is required")
	}
	return &p, nil
}

// decodeDecimal reads a JSON number (or numeric string) without going
// through float64.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	if d.Next() == jx.String {
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(s)
	}
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(n.String())
}

// dedupe drops repeated product ids, keeping the first occurrence. The bloom
// filter answers "definitely unseen" cheaply; only possible repeats hit the
// exact set.
func dedupe(products []product.Product) []product.Product {
	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	seen := make(map[int]struct{}, len(products))

	out := products[:0]
	var dropped int
	for _, p := range products {
		key := strconv.Itoa(p.ID)
		if filter.TestString(key) {
			if _, dup := seen[p.ID]; dup {
				dropped++
				continue
			}
		}
		filter.AddString(key)
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}

	if dropped > 0 {
		slog.Info("duplicate ids dropped", slog.Int("count", dropped))
	}
	return out
}

// streamGzFile opens a gzip-compressed file and calls fn for each non-empty
// line.
func streamGzFile(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
