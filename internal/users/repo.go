package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")

// User is the locally cached profile of an identity provider account.
type User struct {
	FirebaseUID string    `json:"firebase_uid"`
	Email       *string   `json:"email,omitempty"`
	DisplayName *string   `json:"display_name,omitempty"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type UpsertUser struct {
	FirebaseUID string
	Email       string
	DisplayName string
	PhotoURL    string
}

// EnsureUser inserts the profile or refreshes the fields the token carries.
// A display name set through UpdateDisplayName is kept.
func (r *Repo) EnsureUser(ctx context.Context, u UpsertUser) error {
	if u.FirebaseUID == "" {
		return fmt.Errorf("firebase_uid required")
	}

	const q = `
insert into users (firebase_uid, email, display_name, photo_url, updated_at)
values ($1, nullif($2,''), nullif($3,''), nullif($4,''), now())
on conflict (firebase_uid) do update
set
  email = coalesce(excluded.email, users.email),
  display_name = coalesce(users.display_name, excluded.display_name),
  photo_url = coalesce(excluded.photo_url, users.photo_url),
  updated_at = now();
`
	_, err := r.db.Exec(ctx, q, u.FirebaseUID, u.Email, u.DisplayName, u.PhotoURL)
	return err
}

func (r *Repo) Get(ctx context.Context, firebaseUID string) (*User, error) {
	const q = `
select firebase_uid, email, display_name, photo_url, created_at, updated_at
from users
where firebase_uid = $1;
`
	return r.scanOne(ctx, q, firebaseUID)
}

// UpdateDisplayName sets the name shown as creator in the public listing.
func (r *Repo) UpdateDisplayName(ctx context.Context, firebaseUID, name string) (*User, error) {
	const q = `
update users
set display_name = nullif($2,''), updated_at = now()
where firebase_uid = $1
returning firebase_uid, email, display_name, photo_url, created_at, updated_at;
`
	return r.scanOne(ctx, q, firebaseUID, name)
}

func (r *Repo) scanOne(ctx context.Context, q string, args ...any) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx, q, args...).Scan(&u.FirebaseUID, &u.Email, &u.DisplayName, &u.PhotoURL, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
