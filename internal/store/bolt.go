package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"timeclock/internal/models"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketEmployees = []byte("employees")
	bucketAdmins    = []byte("admins")
	bucketRecords   = []byte("records")
	bucketSessions  = []byte("sessions")
	bucketAudit     = []byte("audit")
	bucketMeta      = []byte("meta")

	keyRecordFormat = []byte("record_key_format")
)

// recordKeyFormat 2 stores the time prefix with its sign bit flipped.
const recordKeyFormat = 2

// BoltStore keeps everything in a single bbolt file. Values are JSON; records
// are keyed by time then insertion sequence so a cursor walk is chronological.
type BoltStore struct {
	db  *bolt.DB
	now func() time.Time
}

func OpenBolt(path string, timeout time.Duration) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketEmployees, bucketAdmins, bucketRecords, bucketSessions, bucketAudit, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return migrateRecordKeys(tx)
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &BoltStore{db: db, now: time.Now}, nil
}

func recordKey(t time.Time, seq uint64) []byte {
	key := make([]byte, 16)
	copy(key, timePrefix(t))
	binary.BigEndian.PutUint64(key[8:], seq)
	return key
}

// timePrefix flips the sign bit so pre-1970 instants sort before later ones.
func timePrefix(t time.Time) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(t.UnixNano())^1<<63)
	return key
}

// migrateRecordKeys rewrites records keyed by the raw nanosecond count.
func migrateRecordKeys(tx *bolt.Tx) error {
	meta := tx.Bucket(bucketMeta)
	if v := meta.Get(keyRecordFormat); len(v) == 8 && binary.BigEndian.Uint64(v) >= recordKeyFormat {
		return nil
	}

	b := tx.Bucket(bucketRecords)
	type entry struct{ key, value []byte }
	var rekeyed []entry
	err := b.ForEach(func(k, v []byte) error {
		if len(k) != 16 {
			return fmt.Errorf("unexpected record key length %d", len(k))
		}
		var r models.Record
		if err := json.Unmarshal(v, &r); err != nil {
			return err
		}
		rekeyed = append(rekeyed, entry{
			key:   recordKey(r.Time, binary.BigEndian.Uint64(k[8:])),
			value: append([]byte(nil), v...),
		})
		return nil
	})
	if err != nil {
		return err
	}

	if len(rekeyed) > 0 {
		seq := b.Sequence()
		if err := tx.DeleteBucket(bucketRecords); err != nil {
			return err
		}
		if b, err = tx.CreateBucket(bucketRecords); err != nil {
			return err
		}
		if err := b.SetSequence(seq); err != nil {
			return err
		}
		for _, e := range rekeyed {
			if err := b.Put(e.key, e.value); err != nil {
				return err
			}
		}
	}

	version := make([]byte, 8)
	binary.BigEndian.PutUint64(version, recordKeyFormat)
	return meta.Put(keyRecordFormat, version)
}

func putJSON(b *bolt.Bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}

func (s *BoltStore) AppendRecord(ctx context.Context, r *models.Record) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Time = r.Time.UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return putJSON(b, recordKey(r.Time, seq), r)
	})
	if err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

func (s *BoltStore) ListRecords(ctx context.Context, f RecordFilter) ([]models.Record, error) {
	var records []models.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketRecords).Cursor()

		var k, v []byte
		if f.From.IsZero() {
			k, v = c.First()
		} else {
			k, v = c.Seek(timePrefix(f.From))
		}

		var end []byte
		if !f.To.IsZero() {
			end = timePrefix(f.To)
		}

		for ; k != nil; k, v = c.Next() {
			if end != nil && bytes.Compare(k[:8], end) > 0 {
				break
			}
			var r models.Record
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			if f.Match(&r) {
				records = append(records, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

func (s *BoltStore) FindEmployee(ctx context.Context, pin string) (*models.Employee, error) {
	var e models.Employee
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketEmployees).Get([]byte(pin))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &e)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *BoltStore) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketEmployees).ForEach(func(k, v []byte) error {
			var e models.Employee
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			employees = append(employees, e)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	sort.SliceStable(employees, func(i, j int) bool {
		return strings.ToLower(employees[i].Name) < strings.ToLower(employees[j].Name)
	})
	return employees, nil
}

func (s *BoltStore) CreateEmployee(ctx context.Context, e *models.Employee) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := s.now()
	e.CreatedAt, e.UpdatedAt = now, now
	if e.Tags == nil {
		e.Tags = models.StringArray{}
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEmployees)
		if b.Get([]byte(e.PIN)) != nil {
			return ErrDuplicate
		}
		return putJSON(b, []byte(e.PIN), e)
	})
}

func (s *BoltStore) DeleteEmployee(ctx context.Context, pin string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEmployees)
		if b.Get([]byte(pin)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(pin))
	})
}

func (s *BoltStore) UpdateEmployeeTags(ctx context.Context, pin string, tags models.StringArray) (*models.Employee, error) {
	var e models.Employee
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEmployees)
		v := b.Get([]byte(pin))
		if v == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(v, &e); err != nil {
			return err
		}
		e.Tags = tags
		e.UpdatedAt = s.now()
		return putJSON(b, []byte(pin), &e)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *BoltStore) FindAdmin(ctx context.Context, username string) (*models.Admin, error) {
	var ar adminRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketAdmins).Get([]byte(username))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &ar)
	})
	if err != nil {
		return nil, err
	}
	a := ar.Admin
	a.PasswordHash = ar.PasswordHash
	return &a, nil
}

// adminRecord carries the hash, which models.Admin hides from JSON.
type adminRecord struct {
	models.Admin
	PasswordHash string `json:"password_hash"`
}

func (s *BoltStore) CreateAdmin(ctx context.Context, a *models.Admin) error {
	now := s.now()
	a.CreatedAt, a.UpdatedAt = now, now

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAdmins)
		if b.Get([]byte(a.Username)) != nil {
			return ErrDuplicate
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		a.ID = uint(seq)
		return putJSON(b, []byte(a.Username), adminRecord{Admin: *a, PasswordHash: a.PasswordHash})
	})
}

func (s *BoltStore) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.View(func(tx *bolt.Tx) error {
		n = int64(tx.Bucket(bucketAdmins).Stats().KeyN)
		return nil
	})
	return n, err
}

func (s *BoltStore) CreateSession(ctx context.Context, sess *models.Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now()
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		sess.ID = uint(seq)
		return putJSON(b, []byte(sess.Token), &boltSession{Session: *sess, Token: sess.Token})
	})
}

// boltSession carries the token, which models.Session hides from JSON.
type boltSession struct {
	models.Session
	Token string `json:"token"`
}

func (s *BoltStore) GetSession(ctx context.Context, token string, now time.Time) (*models.Session, error) {
	var bs boltSession
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSessions).Get([]byte(token))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &bs)
	})
	if err != nil {
		return nil, err
	}
	if !bs.ExpiresAt.After(now) {
		return nil, ErrNotFound
	}
	sess := bs.Session
	sess.Token = bs.Token
	return &sess, nil
}

func (s *BoltStore) DeleteSession(ctx context.Context, token string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Delete([]byte(token))
	})
}

func (s *BoltStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	var deleted int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		var expired [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var sess models.Session
			if err := json.Unmarshal(v, &sess); err != nil {
				return err
			}
			if !sess.ExpiresAt.After(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		deleted = int64(len(expired))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return deleted, nil
}

func (s *BoltStore) AppendAudit(ctx context.Context, entry *models.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAudit)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		entry.ID = uint(seq)
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return putJSON(b, key, entry)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
