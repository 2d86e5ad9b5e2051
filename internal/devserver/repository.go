package devserver

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"sace/internal/errdefs"
	"sace/internal/model"
)

var (
	usersBucket       = []byte("Users")
	emailsBucket      = []byte("Emails")
	submissionsBucket = []byte("Submissions")
)

type userRecord struct {
	model.User
	PasswordHash []byte `json:"passwordHash,omitempty"`
	GoogleID     string `json:"googleId,omitempty"`
}

type submissionRecord struct {
	model.Submission
	OwnerID int64 `json:"ownerId"`
}

// Repository keeps users and submissions in a single bbolt file.
type Repository struct {
	db  *bbolt.DB
	now func() time.Time
}

func OpenRepository(path string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{usersBucket, emailsBucket, submissionsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db, now: time.Now}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func emailKey(email string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(email)))
}

func put[T any](b *bbolt.Bucket, key []byte, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}

func get[T any](b *bbolt.Bucket, key []byte) (*T, error) {
	v := b.Get(key)
	if v == nil {
		return nil, errdefs.ErrNotFound
	}
	var out T
	if err := json.Unmarshal(v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── Users ───────────────────────────────────────────────────────────

func (r *Repository) CreateUser(u *userRecord) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		emails := tx.Bucket(emailsBucket)
		if emails.Get(emailKey(u.Email)) != nil {
			return fmt.Errorf("%w: email %s", errdefs.ErrConflict, u.Email)
		}
		users := tx.Bucket(usersBucket)
		seq, err := users.NextSequence()
		if err != nil {
			return err
		}
		u.ID = int64(seq)
		u.CreatedAt = model.NewTimestamp(r.now())
		if err := put(users, itob(u.ID), u); err != nil {
			return err
		}
		return emails.Put(emailKey(u.Email), itob(u.ID))
	})
}

func (r *Repository) UserByID(id int64) (*userRecord, error) {
	var out *userRecord
	err := r.db.View(func(tx *bbolt.Tx) error {
		var err error
		out, err = get[userRecord](tx.Bucket(usersBucket), itob(id))
		return err
	})
	return out, err
}

func (r *Repository) UserByEmail(email string) (*userRecord, error) {
	var out *userRecord
	err := r.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(emailsBucket).Get(emailKey(email))
		if id == nil {
			return errdefs.ErrNotFound
		}
		var err error
		out, err = get[userRecord](tx.Bucket(usersBucket), id)
		return err
	})
	return out, err
}

func (r *Repository) UserByGoogleID(googleID string) (*userRecord, error) {
	var out *userRecord
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(usersBucket).ForEach(func(_, v []byte) error {
			var u userRecord
			if err := json.Unmarshal(v, &u); err != nil {
				return err
			}
			if out == nil && u.GoogleID == googleID {
				out = &u
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errdefs.ErrNotFound
	}
	return out, nil
}

// UpdateUser applies fn to user id in one transaction. An email change is
// checked for uniqueness and carried onto the user's submissions.
func (r *Repository) UpdateUser(id int64, fn func(*userRecord) error) (*userRecord, error) {
	var out *userRecord
	err := r.db.Update(func(tx *bbolt.Tx) error {
		users := tx.Bucket(usersBucket)
		u, err := get[userRecord](users, itob(id))
		if err != nil {
			return err
		}
		oldEmail := u.Email
		if err := fn(u); err != nil {
			return err
		}

		if !strings.EqualFold(oldEmail, u.Email) {
			emails := tx.Bucket(emailsBucket)
			if emails.Get(emailKey(u.Email)) != nil {
				return fmt.Errorf("%w: email %s", errdefs.ErrConflict, u.Email)
			}
			if err := emails.Delete(emailKey(oldEmail)); err != nil {
				return err
			}
			if err := emails.Put(emailKey(u.Email), itob(u.ID)); err != nil {
				return err
			}
			if err := r.reassignOwnerEmail(tx, u.ID, u.Email); err != nil {
				return err
			}
		}

		out = u
		return put(users, itob(u.ID), u)
	})
	return out, err
}

func (r *Repository) reassignOwnerEmail(tx *bbolt.Tx, ownerID int64, email string) error {
	subs := tx.Bucket(submissionsBucket)
	var updated []submissionRecord
	err := subs.ForEach(func(_, v []byte) error {
		var s submissionRecord
		if err := json.Unmarshal(v, &s); err != nil {
			return err
		}
		if s.OwnerID == ownerID {
			s.OwnerEmail = email
			updated = append(updated, s)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, s := range updated {
		if err := put(subs, itob(s.ID), s); err != nil {
			return err
		}
	}
	return nil
}

// DeleteUser removes the user and every submission they own.
func (r *Repository) DeleteUser(id int64) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		users := tx.Bucket(usersBucket)
		u, err := get[userRecord](users, itob(id))
		if err != nil {
			return err
		}

		subs := tx.Bucket(submissionsBucket)
		var owned [][]byte
		err = subs.ForEach(func(k, v []byte) error {
			var s submissionRecord
			if err := json.Unmarshal(v, &s); err != nil {
				return err
			}
			if s.OwnerID == id {
				owned = append(owned, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range owned {
			if err := subs.Delete(k); err != nil {
				return err
			}
		}

		if err := tx.Bucket(emailsBucket).Delete(emailKey(u.Email)); err != nil {
			return err
		}
		return users.Delete(itob(id))
	})
}

// ── Submissions ─────────────────────────────────────────────────────

func (r *Repository) CreateSubmission(s *submissionRecord) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		subs := tx.Bucket(submissionsBucket)
		seq, err := subs.NextSequence()
		if err != nil {
			return err
		}
		now := model.NewTimestamp(r.now())
		s.ID = int64(seq)
		s.CreatedAt = now
		s.UpdatedAt = now
		return put(subs, itob(s.ID), s)
	})
}

func (r *Repository) Submission(id int64) (*submissionRecord, error) {
	var out *submissionRecord
	err := r.db.View(func(tx *bbolt.Tx) error {
		var err error
		out, err = get[submissionRecord](tx.Bucket(submissionsBucket), itob(id))
		return err
	})
	return out, err
}

// ListSubmissions returns ownerID's submissions, or all of them when ownerID
// is zero, newest first.
func (r *Repository) ListSubmissions(ownerID int64) ([]submissionRecord, error) {
	var out []submissionRecord
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(submissionsBucket).ForEach(func(_, v []byte) error {
			var s submissionRecord
			if err := json.Unmarshal(v, &s); err != nil {
				return err
			}
			if ownerID == 0 || s.OwnerID == ownerID {
				out = append(out, s)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CreatedAt.Time, out[j].CreatedAt.Time
		if !a.Equal(b) {
			return a.After(b)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// UpdateSubmission applies fn to submission id in one transaction.
func (r *Repository) UpdateSubmission(id int64, fn func(*submissionRecord) error) (*submissionRecord, error) {
	var out *submissionRecord
	err := r.db.Update(func(tx *bbolt.Tx) error {
		subs := tx.Bucket(submissionsBucket)
		s, err := get[submissionRecord](subs, itob(id))
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		s.UpdatedAt = model.NewTimestamp(r.now())
		out = s
		return put(subs, itob(id), s)
	})
	return out, err
}

func (r *Repository) DeleteSubmission(id int64) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		subs := tx.Bucket(submissionsBucket)
		if subs.Get(itob(id)) == nil {
			return errdefs.ErrNotFound
		}
		return subs.Delete(itob(id))
	})
}
