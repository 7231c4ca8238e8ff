package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/dawalabs/medglot"
)

// PostgresStore reads and writes the medicines catalog.
//
// Logical schema: `medicines` maps pos_item_code to route_name;
// `medicines_details` holds one row per (route_name, language) with the
// declared content columns, the meta_keywords JSON column, and the gpt_*
// shadow columns.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Open connects to Postgres, verifies the connection, and tunes the pool
// for a single sequential run.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// RouteKeys maps item codes to route keys in one batch query.
func (s *PostgresStore) RouteKeys(ctx context.Context, itemCodes []string) (map[string]string, error) {
	if len(itemCodes) == 0 {
		return map[string]string{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT pos_item_code, route_name FROM medicines WHERE pos_item_code = ANY($1)`,
		pq.Array(itemCodes))
	if err != nil {
		return nil, fmt.Errorf("route key lookup: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var code, route string
		if err := rows.Scan(&code, &route); err != nil {
			return nil, err
		}
		out[code] = route
	}
	return out, rows.Err()
}

// Record fetches and decodes the content row for (routeKey, language).
func (s *PostgresStore) Record(ctx context.Context, routeKey, language string) (*medglot.Record, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM medicines_details WHERE route_name = $1 AND language = $2`,
		columnList())

	row := s.db.QueryRowContext(ctx, query, routeKey, language)

	raw := make([]sql.NullString, len(medglot.Fields))
	dest := make([]any, len(raw))
	for i := range raw {
		dest[i] = &raw[i]
	}
	if err := row.Scan(dest...); err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("fetching %s/%s: %w", routeKey, language, err)
	}

	fields := make(map[string]any, len(medglot.Fields))
	for i, f := range medglot.Fields {
		if !raw[i].Valid {
			fields[f.Name] = nil
			continue
		}
		val, err := decodeColumn(f, raw[i].String)
		if err != nil {
			return nil, fmt.Errorf("decoding %s of %s/%s: %w", f.Name, routeKey, language, err)
		}
		fields[f.Name] = val
	}

	return &medglot.Record{RouteKey: routeKey, Language: language, Fields: fields}, nil
}

// Keywords fetches the keyword-metadata column for (routeKey, language).
func (s *PostgresStore) Keywords(ctx context.Context, routeKey, language string) (*medglot.KeywordSet, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT meta_keywords FROM medicines_details WHERE route_name = $1 AND language = $2`,
		routeKey, language).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching keywords for %s/%s: %w", routeKey, language, err)
	}
	if !raw.Valid || raw.String == "" {
		return nil, ErrNotFound
	}

	var ks medglot.KeywordSet
	if err := json.Unmarshal([]byte(raw.String), &ks); err != nil {
		return nil, fmt.Errorf("decoding keywords for %s/%s: %w", routeKey, language, err)
	}
	return &ks, nil
}

// SaveKeywords stores the keyword set as JSON.
func (s *PostgresStore) SaveKeywords(ctx context.Context, routeKey, language string, ks *medglot.KeywordSet) error {
	data, err := json.Marshal(ks)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE medicines_details SET meta_keywords = $1 WHERE route_name = $2 AND language = $3`,
		string(data), routeKey, language)
	if err != nil {
		return fmt.Errorf("saving keywords for %s/%s: %w", routeKey, language, err)
	}
	return nil
}

// MedicineName returns the name column for (routeKey, language).
func (s *PostgresStore) MedicineName(ctx context.Context, routeKey, language string) (string, error) {
	var name sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM medicines_details WHERE route_name = $1 AND language = $2`,
		routeKey, language).Scan(&name)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("fetching name for %s/%s: %w", routeKey, language, err)
	}
	if !name.Valid || name.String == "" {
		return "", ErrNotFound
	}
	return name.String, nil
}

// UpdateTranslation writes every declared field plus the shadow provenance
// columns in a single UPDATE statement. fields must carry an entry for each
// declared field and shadow; nil entries write NULL.
func (s *PostgresStore) UpdateTranslation(ctx context.Context, routeKey, language string, fields map[string]any) error {
	var sets []string
	args := []any{routeKey, language}

	appendColumn := func(column string, f medglot.Field, value any) error {
		encoded, err := encodeColumn(f, value)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", column, err)
		}
		args = append(args, encoded)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		return nil
	}

	for _, f := range medglot.Fields {
		if err := appendColumn(f.Name, f, fields[f.Name]); err != nil {
			return err
		}
	}
	for _, f := range medglot.ShadowFields() {
		if err := appendColumn(f.Shadow, f, fields[f.Shadow]); err != nil {
			return err
		}
	}

	query := fmt.Sprintf(
		`UPDATE medicines_details SET %s WHERE route_name = $1 AND language = $2`,
		strings.Join(sets, ", "))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating %s/%s: %w", routeKey, language, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("updating %s/%s: %w", routeKey, language, ErrNotFound)
	}
	return nil
}

// IncompleteRoutes returns the routes whose row in the given language is
// missing one or more required fields.
func (s *PostgresStore) IncompleteRoutes(ctx context.Context, routeKeys []string, language string) ([]string, error) {
	if len(routeKeys) == 0 {
		return nil, nil
	}

	var preds []string
	for _, name := range medglot.RequiredFields {
		preds = append(preds, name+" IS NULL")
	}
	query := fmt.Sprintf(
		`SELECT route_name FROM medicines_details WHERE language = $2 AND route_name = ANY($1) AND (%s)`,
		strings.Join(preds, " OR "))

	rows, err := s.db.QueryContext(ctx, query, pq.Array(routeKeys), language)
	if err != nil {
		return nil, fmt.Errorf("incomplete-route query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var route string
		if err := rows.Scan(&route); err != nil {
			return nil, err
		}
		out = append(out, route)
	}
	return out, rows.Err()
}

// UpdateMeta writes the meta title and description.
func (s *PostgresStore) UpdateMeta(ctx context.Context, routeKey, language, title, description string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE medicines_details SET meta_title = $3, meta_description = $4 WHERE route_name = $1 AND language = $2`,
		routeKey, language, title, description)
	if err != nil {
		return fmt.Errorf("updating meta for %s/%s: %w", routeKey, language, err)
	}
	return nil
}

// columnList renders the declared fields as a SELECT column list.
func columnList() string {
	names := make([]string, len(medglot.Fields))
	for i, f := range medglot.Fields {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}

// decodeColumn converts a raw column value into the field's declared shape.
func decodeColumn(f medglot.Field, raw string) (any, error) {
	switch f.Kind {
	case medglot.KindString:
		return raw, nil
	case medglot.KindStringList:
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, err
		}
		return out, nil
	case medglot.KindObjectList:
		var out []map[string]any
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown kind %d", f.Kind)
}

// encodeColumn converts a field value back into its column representation.
// Lists serialize as JSON; nil stays NULL.
func encodeColumn(f medglot.Field, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if f.Kind == medglot.KindString {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		return s, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Verify PostgresStore implements Store
var _ Store = (*PostgresStore)(nil)
