package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV exports and inserts/updates products.
//
// A row with a handle starts a product. Rows without one continue it and
// may add a product image, a new colour variant or another image for the
// last variant.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	logger      *zap.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		logger:      logger.Named("importer"),
	}
}

// Run parses CSV rows and upserts products grouped by handle.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *domain.Product
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		handle := pick(record, index, "handle")
		if handle != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current, err = parseProduct(record, index)
			if err != nil {
				return imported, fmt.Errorf("line %d: %w", line, err)
			}
		}
		if current == nil {
			continue
		}
		if err := addMedia(current, record, index); err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	i.logger.Info("catalog import finished", zap.Int("products", imported))
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, p *domain.Product) error {
	if p.Handle == "" || p.Title == "" || p.Price <= 0 {
		return fmt.Errorf("invalid product row (missing required fields) for handle %q", p.Handle)
	}
	if p.ID != "" && len(p.ID) != 36 {
		return fmt.Errorf("invalid id for handle %q: %s", p.Handle, p.ID)
	}
	if _, err := i.productRepo.Upsert(ctx, *p); err != nil {
		return fmt.Errorf("upsert product %q: %w", p.Handle, err)
	}
	i.logger.Debug("product imported", zap.String("handle", p.Handle), zap.Int("variants", len(p.Variants)))
	return nil
}

func parseProduct(record []string, index map[string]int) (*domain.Product, error) {
	p := &domain.Product{
		ID:            pick(record, index, "id"),
		Handle:        pick(record, index, "handle"),
		Title:         pick(record, index, "title"),
		Description:   pick(record, index, "description"),
		Category:      pick(record, index, "category"),
		Gender:        pick(record, index, "gender"),
		SizeType:      domain.SizeType(strings.ToLower(pick(record, index, "sizeType"))),
		Sizes:         splitList(pick(record, index, "sizes")),
		PairsWellWith: splitList(pick(record, index, "pairsWellWith")),
	}

	price, err := parseAmount(pick(record, index, "price"))
	if err != nil {
		return nil, fmt.Errorf("price for %q: %w", p.Handle, err)
	}
	p.Price = price
	if raw := pick(record, index, "originalPrice"); raw != "" {
		orig, err := parseAmount(raw)
		if err != nil {
			return nil, fmt.Errorf("originalPrice for %q: %w", p.Handle, err)
		}
		p.OriginalPrice = &orig
	}
	switch p.SizeType {
	case "", domain.SizeTypeClothing, domain.SizeTypeNumeric, domain.SizeTypeOneSize:
	default:
		return nil, fmt.Errorf("unknown sizeType %q for %q", p.SizeType, p.Handle)
	}
	return p, nil
}

func addMedia(p *domain.Product, record []string, index map[string]int) error {
	if img := pick(record, index, "image"); img != "" {
		p.Images = append(p.Images, img)
	}

	name := pick(record, index, "variant.colorName")
	hex := pick(record, index, "variant.colorHex")
	img := pick(record, index, "variant.image")
	if name != "" || hex != "" {
		stock := 0
		if raw := pick(record, index, "variant.stock"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid variant stock %q", raw)
			}
			stock = n
		}
		p.Variants = append(p.Variants, domain.Variant{ColorName: name, ColorHex: hex, Stock: stock})
	}
	if img != "" {
		if len(p.Variants) == 0 {
			return fmt.Errorf("variant image %q before any variant of %q", img, p.Handle)
		}
		last := &p.Variants[len(p.Variants)-1]
		last.Images = append(last.Images, img)
	}
	return nil
}

// parseAmount reads a whole-rupee amount such as "2400" or "2,400".
func parseAmount(raw string) (int64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	return n, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
