package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	sqlite3 "modernc.org/sqlite"

	"github.com/stashlog/stashlog/internal/model"
	"github.com/stashlog/stashlog/internal/store"
)

// New opens a SQLite-backed store at path and ensures the schema exists.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wraps an existing connection (used by tests and the factory).
func NewWithDB(db *sql.DB) store.Store { return &liteStore{db: db} }

type liteStore struct{ db *sql.DB }

func (s *liteStore) Users() store.Users             { return &users{db: s.db} }
func (s *liteStore) Collections() store.Collections { return &collections{db: s.db} }
func (s *liteStore) Items() store.Items             { return &items{db: s.db} }
func (s *liteStore) Events() store.Events           { return &events{db: s.db} }
func (s *liteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *liteStore) Close() error                   { return s.db.Close() }

// SQLITE_CONSTRAINT_UNIQUE and SQLITE_CONSTRAINT_PRIMARYKEY extended codes.
const (
	codeConstraintUnique     = 2067
	codeConstraintPrimaryKey = 1555
)

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	var se *sqlite3.Error
	if errors.As(err, &se) {
		if c := se.Code(); c == codeConstraintUnique || c == codeConstraintPrimaryKey {
			return model.ErrConflict
		}
	}
	return err
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, username, passwordHash string) (*model.User, error) {
	now := time.Now().UTC()
	res, err := u.db.ExecContext(ctx, `INSERT INTO users (username, password_hash, created) VALUES (?,?,?)`,
		username, passwordHash, now)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.User{ID: id, Username: username, PasswordHash: passwordHash, Created: now}, nil
}

func (u *users) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(u.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created FROM users WHERE id=?`, id))
}

func (u *users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(u.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created FROM users WHERE lower(username)=lower(?)`, username))
}

func (u *users) Delete(ctx context.Context, id int64) error {
	res, err := u.db.ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var out model.User
	if err := row.Scan(&out.ID, &out.Username, &out.PasswordHash, &out.Created); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// --- Collections ---

type collections struct{ db *sql.DB }

func (c *collections) Create(ctx context.Context, in *model.Collection) (*model.Collection, error) {
	now := time.Now().UTC()
	res, err := c.db.ExecContext(ctx, `INSERT INTO collections (owner_id, name, slug, created) VALUES (?,?,?,?)`,
		in.OwnerID, in.Name, in.Slug, now)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Collection{ID: id, OwnerID: in.OwnerID, Name: in.Name, Slug: in.Slug, Created: now}, nil
}

func (c *collections) GetByID(ctx context.Context, ownerID, id int64) (*model.Collection, error) {
	return scanCollection(c.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, slug, created FROM collections WHERE id=? AND owner_id=?`, id, ownerID))
}

func (c *collections) FindByName(ctx context.Context, ownerID int64, name string) (*model.Collection, error) {
	return scanCollection(c.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, slug, created FROM collections WHERE owner_id=? AND lower(name)=lower(?)`, ownerID, name))
}

func (c *collections) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Collection, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, owner_id, name, slug, created FROM collections WHERE owner_id=? ORDER BY name COLLATE NOCASE`, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Collection
	for rows.Next() {
		var out model.Collection
		if err := rows.Scan(&out.ID, &out.OwnerID, &out.Name, &out.Slug, &out.Created); err != nil {
			return nil, err
		}
		res = append(res, &out)
	}
	return res, rows.Err()
}

func (c *collections) Rename(ctx context.Context, ownerID, id int64, name, slug string) (*model.Collection, error) {
	res, err := c.db.ExecContext(ctx,
		`UPDATE collections SET name=?, slug=? WHERE id=? AND owner_id=?`, name, slug, id, ownerID)
	if err != nil {
		return nil, translate(err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return c.GetByID(ctx, ownerID, id)
}

func (c *collections) Delete(ctx context.Context, ownerID, id int64) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM collections WHERE id=? AND owner_id=?`, id, ownerID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func scanCollection(row *sql.Row) (*model.Collection, error) {
	var out model.Collection
	if err := row.Scan(&out.ID, &out.OwnerID, &out.Name, &out.Slug, &out.Created); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// --- Items ---

type items struct{ db *sql.DB }

func (i *items) Create(ctx context.Context, ownerID int64, in *model.Item) (*model.Item, error) {
	if err := i.ownsCollection(ctx, ownerID, in.CollectionID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	res, err := i.db.ExecContext(ctx,
		`INSERT INTO items (collection_id, name, description, created) VALUES (?,?,?,?)`,
		in.CollectionID, in.Name, in.Description, now)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Item{ID: id, CollectionID: in.CollectionID, Name: in.Name, Description: in.Description, Created: now}, nil
}

func (i *items) GetByID(ctx context.Context, ownerID, id int64) (*model.Item, error) {
	return scanItem(i.db.QueryRowContext(ctx, `
        SELECT i.id, i.collection_id, i.name, i.description, i.created
        FROM items i JOIN collections c ON c.id = i.collection_id
        WHERE i.id=? AND c.owner_id=?`, id, ownerID))
}

func (i *items) FindByName(ctx context.Context, ownerID, collectionID int64, name string) (*model.Item, error) {
	return scanItem(i.db.QueryRowContext(ctx, `
        SELECT i.id, i.collection_id, i.name, i.description, i.created
        FROM items i JOIN collections c ON c.id = i.collection_id
        WHERE c.id=? AND c.owner_id=? AND lower(i.name)=lower(?)`, collectionID, ownerID, name))
}

func (i *items) ListByCollection(ctx context.Context, ownerID, collectionID int64) ([]*model.Item, error) {
	rows, err := i.db.QueryContext(ctx, `
        SELECT i.id, i.collection_id, i.name, i.description, i.created
        FROM items i JOIN collections c ON c.id = i.collection_id
        WHERE c.id=? AND c.owner_id=?
        ORDER BY i.name COLLATE NOCASE`, collectionID, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Item
	for rows.Next() {
		var out model.Item
		if err := rows.Scan(&out.ID, &out.CollectionID, &out.Name, &out.Description, &out.Created); err != nil {
			return nil, err
		}
		res = append(res, &out)
	}
	return res, rows.Err()
}

func (i *items) Update(ctx context.Context, ownerID int64, in *model.Item) (*model.Item, error) {
	res, err := i.db.ExecContext(ctx, `
        UPDATE items SET name=?, description=?
        WHERE id=? AND collection_id IN (SELECT id FROM collections WHERE owner_id=?)`,
		in.Name, in.Description, in.ID, ownerID)
	if err != nil {
		return nil, translate(err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return i.GetByID(ctx, ownerID, in.ID)
}

func (i *items) Delete(ctx context.Context, ownerID, id int64) error {
	res, err := i.db.ExecContext(ctx, `
        DELETE FROM items
        WHERE id=? AND collection_id IN (SELECT id FROM collections WHERE owner_id=?)`, id, ownerID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (i *items) ownsCollection(ctx context.Context, ownerID, collectionID int64) error {
	var one int
	err := i.db.QueryRowContext(ctx,
		`SELECT 1 FROM collections WHERE id=? AND owner_id=?`, collectionID, ownerID).Scan(&one)
	return translate(err)
}

func scanItem(row *sql.Row) (*model.Item, error) {
	var out model.Item
	if err := row.Scan(&out.ID, &out.CollectionID, &out.Name, &out.Description, &out.Created); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// --- Events ---

type events struct{ db *sql.DB }

func (e *events) Create(ctx context.Context, ownerID int64, in *model.Event) (*model.Event, error) {
	var itemName string
	err := e.db.QueryRowContext(ctx, `
        SELECT i.name FROM items i JOIN collections c ON c.id = i.collection_id
        WHERE i.id=? AND c.owner_id=?`, in.ItemID, ownerID).Scan(&itemName)
	if err != nil {
		return nil, translate(err)
	}
	now := time.Now().UTC()
	res, err := e.db.ExecContext(ctx,
		`INSERT INTO events (item_id, comment, created) VALUES (?,?,?)`, in.ItemID, in.Comment, now)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Event{ID: id, ItemID: in.ItemID, ItemName: itemName, Comment: in.Comment, Created: now}, nil
}

func (e *events) GetByID(ctx context.Context, ownerID, id int64) (*model.Event, error) {
	var out model.Event
	err := e.db.QueryRowContext(ctx, `
        SELECT e.id, e.item_id, i.name, e.comment, e.created
        FROM events e
        JOIN items i ON i.id = e.item_id
        JOIN collections c ON c.id = i.collection_id
        WHERE e.id=? AND c.owner_id=?`, id, ownerID).
		Scan(&out.ID, &out.ItemID, &out.ItemName, &out.Comment, &out.Created)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func eventQuery() sq.SelectBuilder {
	return sq.Select("e.id", "e.item_id", "i.name", "e.comment", "e.created").
		From("events e").
		Join("items i ON i.id = e.item_id").
		Join("collections c ON c.id = i.collection_id").
		OrderBy("e.created DESC", "e.id DESC")
}

func (e *events) ListByCollection(ctx context.Context, ownerID, collectionID int64, limit, offset int) ([]*model.Event, error) {
	q := eventQuery().Where(sq.Eq{"c.id": collectionID, "c.owner_id": ownerID})
	if limit > 0 {
		q = q.Limit(uint64(limit)).Offset(uint64(offset))
	}
	return e.query(ctx, q)
}

func (e *events) CountByCollection(ctx context.Context, ownerID, collectionID int64) (int, error) {
	var n int
	err := e.db.QueryRowContext(ctx, `
        SELECT COUNT(*) FROM events e
        JOIN items i ON i.id = e.item_id
        JOIN collections c ON c.id = i.collection_id
        WHERE c.id=? AND c.owner_id=?`, collectionID, ownerID).Scan(&n)
	return n, err
}

func (e *events) Search(ctx context.Context, ownerID int64, query string, limit int) ([]*model.Event, error) {
	if query == "" {
		return nil, nil
	}
	q := eventQuery().
		Where(sq.Eq{"c.owner_id": ownerID}).
		Where(sq.Expr("instr(lower(i.name), lower(?)) > 0", query))
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return e.query(ctx, q)
}

func (e *events) Delete(ctx context.Context, ownerID, id int64) error {
	res, err := e.db.ExecContext(ctx, `
        DELETE FROM events
        WHERE id=? AND item_id IN (
            SELECT i.id FROM items i JOIN collections c ON c.id = i.collection_id
            WHERE c.owner_id=?)`, id, ownerID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (e *events) query(ctx context.Context, q sq.SelectBuilder) ([]*model.Event, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := e.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Event
	for rows.Next() {
		var out model.Event
		if err := rows.Scan(&out.ID, &out.ItemID, &out.ItemName, &out.Comment, &out.Created); err != nil {
			return nil, err
		}
		res = append(res, &out)
	}
	return res, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}
