package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/matthewbaird/cruder/internal/schema"
)

// SQLStore persists records of one resource in a SQLite table whose shape
// is derived from the resource schema. Statements are built with the ent
// SQL builder; list order is insertion order (rowid), which keeps the
// pagination determinism invariant without an explicit sort key.
type SQLStore struct {
	db      *sql.DB
	res     *schema.Resource
	table   string
	builder *entsql.DialectBuilder
}

// NewSQLStore creates the store and bootstraps the backing table.
func NewSQLStore(ctx context.Context, db *sql.DB, res *schema.Resource) (*SQLStore, error) {
	s := &SQLStore{
		db:      db,
		res:     res,
		table:   res.Name + "s",
		builder: entsql.Dialect(dialect.SQLite),
	}
	if err := s.ensureTable(ctx); err != nil {
		return nil, fmt.Errorf("bootstrapping table %s: %w", s.table, err)
	}
	return s, nil
}

// ensureTable creates the resource table if it does not exist yet.
func (s *SQLStore) ensureTable(ctx context.Context) error {
	cols := []string{"id TEXT PRIMARY KEY", "created_at TEXT NOT NULL", "updated_at TEXT NOT NULL"}
	for _, fd := range s.res.Fields() {
		col := fd.Name + " " + columnType(fd.Type)
		if fd.Unique {
			col += " UNIQUE"
		}
		cols = append(cols, col)
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.table, strings.Join(cols, ", "))
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

func columnType(ft schema.FieldType) string {
	switch ft {
	case schema.TypeNumber:
		return "INTEGER"
	case schema.TypeDecimal:
		return "REAL"
	case schema.TypeBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func (s *SQLStore) columns() []string {
	cols := []string{"id", "created_at", "updated_at"}
	for _, fd := range s.res.Fields() {
		cols = append(cols, fd.Name)
	}
	return cols
}

func (s *SQLStore) Insert(ctx context.Context, rec Record) error {
	values := []any{
		rec.ID.String(),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	for _, fd := range s.res.Fields() {
		values = append(values, toColumnValue(rec.Values[fd.Name]))
	}
	query, args := s.builder.Insert(s.table).
		Columns(s.columns()...).
		Values(values...).
		Query()
	_, err := s.db.ExecContext(ctx, query, args...)
	return s.mapError(err)
}

func (s *SQLStore) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	query, args := s.builder.Select(s.columns()...).
		From(entsql.Table(s.table)).
		Where(entsql.EQ("id", id.String())).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Record{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Record{}, err
		}
		return Record{}, ErrNotFound
	}
	return s.scanRecord(rows)
}

func (s *SQLStore) Update(ctx context.Context, rec Record) error {
	upd := s.builder.Update(s.table).
		Set("updated_at", time.Now().UTC().Format(time.RFC3339Nano))
	for _, fd := range s.res.Fields() {
		upd.Set(fd.Name, toColumnValue(rec.Values[fd.Name]))
	}
	query, args := upd.Where(entsql.EQ("id", rec.ID.String())).Query()
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return s.mapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id uuid.UUID) error {
	query, args := s.builder.Delete(s.table).
		Where(entsql.EQ("id", id.String())).
		Query()
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]Record, error) {
	query, args := s.builder.Select(s.columns()...).
		From(entsql.Table(s.table)).
		OrderBy("rowid").
		Query()
	return s.queryRecords(ctx, query, args)
}

// Search pushes the engine's OR-combined case-insensitive substring match
// down into SQLite.
func (s *SQLStore) Search(ctx context.Context, fields []string, query string) ([]Record, error) {
	if query == "" || len(fields) == 0 {
		return s.List(ctx)
	}
	preds := make([]*entsql.Predicate, 0, len(fields))
	for _, f := range fields {
		if !s.res.Has(f) {
			continue
		}
		preds = append(preds, entsql.ContainsFold(f, query))
	}
	if len(preds) == 0 {
		return s.List(ctx)
	}
	stmt, args := s.builder.Select(s.columns()...).
		From(entsql.Table(s.table)).
		Where(entsql.Or(preds...)).
		OrderBy("rowid").
		Query()
	return s.queryRecords(ctx, stmt, args)
}

func (s *SQLStore) queryRecords(ctx context.Context, query string, args []any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := s.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLStore) scanRecord(rows *sql.Rows) (Record, error) {
	fields := s.res.Fields()
	targets := make([]any, 3+len(fields))
	raw := make([]any, 3+len(fields))
	for i := range raw {
		targets[i] = &raw[i]
	}
	if err := rows.Scan(targets...); err != nil {
		return Record{}, err
	}

	id, err := uuid.Parse(asString(raw[0]))
	if err != nil {
		return Record{}, fmt.Errorf("parsing record id: %w", err)
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, asString(raw[1]))
	updatedAt, _ := time.Parse(time.RFC3339Nano, asString(raw[2]))

	rec := Record{
		ID:        id,
		Values:    make(map[string]any, len(fields)),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	for i, fd := range fields {
		v := fromColumnValue(fd.Type, raw[3+i])
		if v != nil {
			rec.Values[fd.Name] = v
		}
	}
	return rec, nil
}

// toColumnValue converts an engine value to its SQLite representation.
func toColumnValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		if t {
			return int64(1)
		}
		return int64(0)
	default:
		return v
	}
}

// fromColumnValue converts a scanned SQLite value back to the engine type
// for the field.
func fromColumnValue(ft schema.FieldType, raw any) any {
	if raw == nil {
		return nil
	}
	switch ft {
	case schema.TypeNumber:
		if n, ok := raw.(int64); ok {
			return n
		}
	case schema.TypeDecimal:
		switch t := raw.(type) {
		case float64:
			return t
		case int64:
			return float64(t)
		}
	case schema.TypeBool:
		switch t := raw.(type) {
		case int64:
			return t != 0
		case bool:
			return t
		}
	default:
		return asString(raw)
	}
	return asString(raw)
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// mapError converts SQLite constraint failures into ConstraintError so the
// form layer can surface them per field.
func (s *SQLStore) mapError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "constraint failed") {
		return &ConstraintError{Column: constraintColumn(msg), Message: msg}
	}
	return err
}
