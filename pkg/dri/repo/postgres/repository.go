package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-dri/pkg/dri"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements dri.Repository using PostgreSQL, keeping the
// properties bag in a JSONB column
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) dri.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) dri.Repository {
	return &Repository{db: pool}
}

const recordColumns = `id, label, type, COALESCE(parent_id, ''), properties,
	COALESCE(file_location, ''), COALESCE(fedora_id, ''), publication_status,
	date_created, date_modified`

// columns maps queryable record fields to their column.
var columns = map[string]string{
	dri.FieldType:              "type",
	dri.FieldLabel:             "label",
	dri.FieldParentID:          "parent_id",
	dri.FieldFileLocation:      "file_location",
	dri.FieldFedoraID:          "fedora_id",
	dri.FieldPublicationStatus: "publication_status",
}

func (r *Repository) CreateRecord(ctx context.Context, record *dri.Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	props := record.Properties
	if props == nil {
		props = dri.Properties{}
	}

	query := `
		INSERT INTO records (
			id, label, type, parent_id, properties, file_location,
			fedora_id, publication_status, date_created, date_modified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		record.ID, record.Label, record.Type, nullable(record.ParentID), props,
		nullable(record.FileLocation), nullable(record.FedoraID),
		string(record.PublicationStatus), record.DateCreated, record.DateModified)
	return err
}

func (r *Repository) GetRecord(ctx context.Context, id string) (*dri.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = $1`

	record, err := scanRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dri.ErrRecordNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *Repository) UpdateRecord(ctx context.Context, id string, update dri.RecordUpdate) error {
	args := []interface{}{id}
	var sets []string
	set := func(expr string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if update.Type != nil {
		set("type = $%d", *update.Type)
	}
	if update.ParentID != nil {
		set("parent_id = $%d", nullable(*update.ParentID))
	}
	if len(update.Properties) > 0 {
		set("properties = properties || $%d::jsonb", update.Properties)
	}
	if update.FileLocation != nil {
		set("file_location = $%d", nullable(*update.FileLocation))
	}
	if update.FedoraID != nil {
		set("fedora_id = $%d", nullable(*update.FedoraID))
	}
	if update.PublicationStatus != nil {
		set("publication_status = $%d", string(*update.PublicationStatus))
	}
	set("date_modified = $%d", update.DateModified)

	query := `UPDATE records SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dri.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) DeleteRecord(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dri.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) ListRecords(ctx context.Context, params dri.ListRecordsParams) ([]*dri.Record, error) {
	where, args := whereClause(params.Filter)

	orderColumn := "date_created"
	if params.SortBy == dri.SortByDateModified {
		orderColumn = "date_modified"
	}
	dir := "ASC"
	if params.Descending {
		dir = "DESC NULLS LAST"
	}

	query := `SELECT ` + recordColumns + ` FROM records` + where +
		fmt.Sprintf(` ORDER BY %s %s, id %s`, orderColumn, dir, strings.Fields(dir)[0])
	if params.Limit > 0 {
		args = append(args, params.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if params.Offset > 0 {
		args = append(args, params.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	return r.queryRecords(ctx, query, args...)
}

func (r *Repository) CountRecords(ctx context.Context, filter dri.RecordFilter) (int64, error) {
	where, args := whereClause(filter)

	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM records`+where, args...).Scan(&count)
	return count, err
}

func (r *Repository) QueryRecords(ctx context.Context, field, prefix string) ([]*dri.Record, error) {
	var expr string
	var args []interface{}
	if column, ok := columns[field]; ok {
		expr = column
	} else if path, ok := dri.PropertyPath(field); ok {
		args = append(args, path)
		expr = `properties #>> $1`
	} else {
		return nil, fmt.Errorf("%w: %q", dri.ErrInvalidQueryField, field)
	}

	args = append(args, dri.PrefixPattern(prefix))
	query := `SELECT ` + recordColumns + ` FROM records` +
		fmt.Sprintf(` WHERE %s ~* $%d ORDER BY date_created, id`, expr, len(args))

	return r.queryRecords(ctx, query, args...)
}

func (r *Repository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]*dri.Record, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*dri.Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func whereClause(f dri.RecordFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.Type != "" {
		args = append(args, f.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.ParentID != nil {
		if *f.ParentID == "" {
			// empty parents are stored as NULL
			conds = append(conds, "parent_id IS NULL")
		} else {
			args = append(args, *f.ParentID)
			conds = append(conds, fmt.Sprintf("parent_id = $%d", len(args)))
		}
	}
	if f.ModifiedOnly {
		conds = append(conds, "date_modified IS NOT NULL")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanRecord(row pgx.Row) (*dri.Record, error) {
	var record dri.Record
	var status string
	err := row.Scan(
		&record.ID, &record.Label, &record.Type, &record.ParentID, &record.Properties,
		&record.FileLocation, &record.FedoraID, &status,
		&record.DateCreated, &record.DateModified)
	if err != nil {
		return nil, err
	}
	record.PublicationStatus = dri.PublicationStatus(status)
	if record.Properties == nil {
		record.Properties = dri.Properties{}
	}
	return &record, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
