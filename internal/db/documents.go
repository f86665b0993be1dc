package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/theLastOfCats/gameshelf/internal/docstore"
	"github.com/theLastOfCats/gameshelf/internal/model"
)

const upsertDocumentSQLite = `INSERT INTO documents (path, collection, doc_id, fields, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET fields=excluded.fields, updated_at=excluded.updated_at`

const upsertDocumentMySQL = `INSERT INTO documents (path, collection, doc_id, fields, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE fields=VALUES(fields), updated_at=VALUES(updated_at)`

func (db *DB) GetDocument(ctx context.Context, path string) (*model.Document, error) {
	collection, id, err := docstore.SplitDocument(path)
	if err != nil {
		return nil, err
	}
	row := db.QueryRowContext(ctx, `SELECT fields, created_at, updated_at FROM documents WHERE path = ?`, collection+"/"+id)

	var (
		raw                  string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&raw, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return buildDocument(collection, id, raw, createdAt, updatedAt)
}

func (db *DB) ListDocuments(ctx context.Context, collection string) ([]model.Document, error) {
	collection, err := docstore.CleanCollection(collection)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT doc_id, fields, created_at, updated_at FROM documents WHERE collection = ? ORDER BY created_at, doc_id`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		var (
			id, raw              string
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&id, &raw, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		doc, err := buildDocument(collection, id, raw, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// UpsertDocument writes a document. With merge set the stored fields are
// kept and overlaid by w.Fields; otherwise the document is replaced.
// Creation time survives both.
func (db *DB) UpsertDocument(ctx context.Context, path string, w model.Write, merge bool) (*model.Document, error) {
	collection, id, err := docstore.SplitDocument(path)
	if err != nil {
		return nil, err
	}
	path = collection + "/" + id

	var doc *model.Document
	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		fields := map[string]any{}
		now := time.Now().UnixMilli()
		createdAt := now

		var (
			raw      string
			storedAt int64
		)
		err := tx.QueryRowContext(ctx, `SELECT fields, created_at FROM documents WHERE path = ?`, path).Scan(&raw, &storedAt)
		switch {
		case err == nil:
			createdAt = storedAt
			if merge {
				if err := json.Unmarshal([]byte(raw), &fields); err != nil {
					return fmt.Errorf("decode stored fields: %w", err)
				}
			}
		case errors.Is(err, sql.ErrNoRows):
		default:
			return err
		}

		for k, v := range w.Fields {
			fields[k] = v
		}
		for _, k := range w.ServerTimestamps {
			fields[k] = now
		}

		encoded, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("encode fields: %w", err)
		}

		query := upsertDocumentSQLite
		if db.dialect == DialectMySQL {
			query = upsertDocumentMySQL
		}
		if _, err := tx.ExecContext(ctx, query, path, collection, id, string(encoded), createdAt, now); err != nil {
			return err
		}

		doc, err = buildDocument(collection, id, string(encoded), createdAt, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument removes a document. Deleting a missing document is not an error.
func (db *DB) DeleteDocument(ctx context.Context, path string) error {
	collection, id, err := docstore.SplitDocument(path)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, collection+"/"+id)
	return err
}

func buildDocument(collection, id, raw string, createdAt, updatedAt int64) (*model.Document, error) {
	fields := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("decode fields of %s/%s: %w", collection, id, err)
	}
	return &model.Document{
		Path:       collection + "/" + id,
		ID:         id,
		Fields:     fields,
		CreateTime: time.UnixMilli(createdAt).UTC(),
		UpdateTime: time.UnixMilli(updatedAt).UTC(),
	}, nil
}
