package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	drv "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"travel_cms/internal/domain"
)

const errDuplicateEntry = 1062

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func valRole(r domain.Option[domain.Role]) any {
	if v, ok := r.Get(); ok {
		return string(v)
	}
	return nil
}

func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var me *drv.MySQLError
	if errors.As(err, &me) && me.Number == errDuplicateEntry {
		return domain.ErrConflict
	}
	return err
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repo stores every collection in one documents table and users in their own.
type Repo struct {
	db   *sql.DB
	q    querier
	inTx bool
	now  func() time.Time
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db, q: db, now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }}
}

func (r *Repo) Insert(ctx context.Context, coll string, d domain.Document) (domain.Document, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = r.now()
	}
	d.UpdatedAt = d.CreatedAt
	_, err := r.q.ExecContext(ctx, insertDocumentSQL,
		d.ID, coll, valStr(d.Slug), string(d.Body), d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return domain.Document{}, fmt.Errorf("insert %s: %w", coll, mapErr(err))
	}
	return d, nil
}

func scanDocument(sc interface{ Scan(...any) error }) (domain.Document, error) {
	var d domain.Document
	var slug sql.NullString
	var body []byte
	if err := sc.Scan(&d.ID, &slug, &body, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return domain.Document{}, err
	}
	d.Slug = slug.String
	d.Body = body
	return d, nil
}

func (r *Repo) Get(ctx context.Context, coll, id string) (domain.Document, error) {
	d, err := scanDocument(r.q.QueryRowContext(ctx, getDocumentSQL, coll, id))
	if err != nil {
		return domain.Document{}, mapErr(err)
	}
	return d, nil
}

func (r *Repo) FindBySlug(ctx context.Context, coll, slug string) (domain.Document, error) {
	d, err := scanDocument(r.q.QueryRowContext(ctx, findBySlugSQL, coll, slug))
	if err != nil {
		return domain.Document{}, mapErr(err)
	}
	return d, nil
}

// List locks the scanned range when called inside Atomic, so a concurrent
// insert into the same collection waits for the transaction.
func (r *Repo) List(ctx context.Context, coll string) ([]domain.Document, error) {
	q := listDocumentsSQL
	if r.inTx {
		q += " FOR UPDATE"
	}
	rows, err := r.q.QueryContext(ctx, q, coll)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", coll, err)
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) Replace(ctx context.Context, coll string, d domain.Document) (domain.Document, error) {
	cur, err := r.Get(ctx, coll, d.ID)
	if err != nil {
		return domain.Document{}, err
	}
	d.CreatedAt = cur.CreatedAt
	d.UpdatedAt = r.now()
	if _, err := r.q.ExecContext(ctx, replaceDocumentSQL,
		valStr(d.Slug), string(d.Body), d.UpdatedAt, coll, d.ID); err != nil {
		return domain.Document{}, fmt.Errorf("replace %s/%s: %w", coll, d.ID, mapErr(err))
	}
	return d, nil
}

func (r *Repo) Delete(ctx context.Context, coll, id string) error {
	res, err := r.q.ExecContext(ctx, deleteDocumentSQL, coll, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", coll, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) Atomic(ctx context.Context, fn func(ctx context.Context, tx domain.DocumentStore) error) error {
	if r.inTx {
		return fn(ctx, r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	inner := &Repo{db: r.db, q: tx, inTx: true, now: r.now}
	if err := fn(ctx, inner); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ---- users ----

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var role sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return domain.User{}, mapErr(err)
	}
	if role.Valid {
		if r, ok := domain.ParseRole(role.String); ok {
			u.Role = domain.Some(r)
		}
	}
	return u, nil
}

func (r *Repo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.now()
	}
	u.Email = strings.ToLower(u.Email)
	if _, err := r.q.ExecContext(ctx, insertUserSQL,
		u.ID, u.Email, u.PasswordHash, valRole(u.Role), u.CreatedAt); err != nil {
		return domain.User{}, mapErr(err)
	}
	return u, nil
}

func (r *Repo) GetUser(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx, getUserSQL, id))
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx, getUserByEmailSQL, strings.ToLower(email)))
}

func (r *Repo) SetUserRole(ctx context.Context, id string, role domain.Option[domain.Role]) (domain.User, error) {
	// RowsAffected is 0 when the role is unchanged; existence is checked by the read-back.
	if _, err := r.q.ExecContext(ctx, setUserRoleSQL, valRole(role), id); err != nil {
		return domain.User{}, err
	}
	return r.GetUser(ctx, id)
}
