package db

import (
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
)

// Layer is a cached GeoJSON layer body
type Layer struct {
	Source    string `db:"source"`
	Body      []byte `db:"body"`
	Bytes     int64  `db:"bytes"`
	FetchedAt int64  `db:"fetched_at"` // unix seconds
}

// LayerInfo describes a cached layer without its body
type LayerInfo struct {
	Source    string    `db:"source" json:"source"`
	Bytes     int64     `db:"bytes" json:"bytes"`
	FetchedAt time.Time `db:"-" json:"fetched_at"`
}

// CachedLayer returns the cached body for source, if any
func (db *DB) CachedLayer(source string) ([]byte, time.Time, bool, error) {
	var l Layer
	err := db.Get(&l, `SELECT source, body, bytes, fetched_at FROM layers WHERE source = ?`, source)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, eris.Wrapf(err, "db: get layer %s", source)
	}
	return l.Body, time.Unix(l.FetchedAt, 0), true, nil
}

// StoreLayer inserts or replaces the cached body for source
func (db *DB) StoreLayer(source string, body []byte, fetchedAt time.Time) error {
	query := `
		INSERT INTO layers (source, body, bytes, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			body = excluded.body,
			bytes = excluded.bytes,
			fetched_at = excluded.fetched_at
	`
	if _, err := db.Exec(query, source, body, len(body), fetchedAt.Unix()); err != nil {
		return eris.Wrapf(err, "db: store layer %s", source)
	}
	return nil
}

// ListLayers returns every cached layer ordered by source
func (db *DB) ListLayers() ([]LayerInfo, error) {
	var rows []struct {
		Source    string `db:"source"`
		Bytes     int64  `db:"bytes"`
		FetchedAt int64  `db:"fetched_at"`
	}
	if err := db.Select(&rows, `SELECT source, bytes, fetched_at FROM layers ORDER BY source`); err != nil {
		return nil, eris.Wrap(err, "db: list layers")
	}

	out := make([]LayerInfo, 0, len(rows))
	for _, r := range rows {
		out = append(out, LayerInfo{Source: r.Source, Bytes: r.Bytes, FetchedAt: time.Unix(r.FetchedAt, 0)})
	}
	return out, nil
}

// DeleteLayers removes every cached layer and returns how many were removed
func (db *DB) DeleteLayers() (int64, error) {
	res, err := db.Exec(`DELETE FROM layers`)
	if err != nil {
		return 0, eris.Wrap(err, "db: delete layers")
	}
	return res.RowsAffected()
}
