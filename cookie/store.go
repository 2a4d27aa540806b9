package cookie

import (
	"errors"
	"net/http"
	"sort"
	"time"
)

// DefaultMaxBytes is the serialized-size budget for the whole cookie value.
// It is a soft backstop against the browser's 4 KiB per-cookie limit, not a
// correctness guarantee.
const DefaultMaxBytes = 2048

// DefaultName is the cookie name used when the configuration leaves it empty.
const DefaultName = "sessions"

var (
	// ErrNotFound is returned by lookups that match no stored record.
	ErrNotFound = errors.New("session record not found")
	// ErrRecordTooLarge is returned when a single record exceeds the byte
	// budget even with every other record evicted.
	ErrRecordTooLarge = errors.New("session record exceeds cookie byte budget")
)

// Options configures a Store.
//
// Options instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Options struct {
	// Name of the HTTP cookie. Defaults to DefaultName.
	Name string
	// MaxBytes caps the encoded cookie value. Defaults to DefaultMaxBytes.
	MaxBytes int
	// Secure marks written cookies Secure (set in production).
	Secure bool
	// SameSite is the default SameSite policy; individual writes may
	// override it.
	SameSite http.SameSite
	// OnEvict, when set, is invoked for every record dropped by the byte
	// budget. Expiry cleanup does not trigger it.
	OnEvict func(Record)

	now func() time.Time
}

// Store is a bounded, ordered list of session records persisted in one
// signed cookie, keyed by session id with a secondary lookup on login name.
// It is built per request around a Jar; the cookie round-trip through the
// client is the only persistence, so concurrent requests from the same
// browser can clobber each other's writes. That race is accepted.
type Store struct {
	codec *Codec
	jar   Jar
	opts  Options
}

// NewStore returns a store bound to jar.
func NewStore(codec *Codec, jar Jar, opts Options) *Store {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.SameSite == 0 {
		opts.SameSite = http.SameSiteLaxMode
	}
	if opts.now == nil {
		opts.now = time.Now
	}
	return &Store{codec: codec, jar: jar, opts: opts}
}

// load reads the current list. A missing cookie is an empty store, and so is
// a cookie that fails signature verification: a tampered or stale-format
// value must degrade to a fresh login, never to an error loop.
func (s *Store) load() []Record {
	value, ok := s.jar.Get(s.opts.Name)
	if !ok {
		return nil
	}
	records, err := s.codec.Decode(value)
	if err != nil {
		return nil
	}
	return records
}

// write encodes the list and sets the cookie, evicting the oldest record
// (by creation timestamp) while the encoded value exceeds the byte budget.
// protectedID names the record that must survive eviction.
func (s *Store) write(records []Record, protectedID string, sameSite http.SameSite) error {
	if sameSite == 0 {
		sameSite = s.opts.SameSite
	}

	for {
		value, err := s.codec.Encode(records)
		if err != nil {
			return err
		}
		if len(value) <= s.opts.MaxBytes {
			s.jar.Set(&http.Cookie{
				Name:     s.opts.Name,
				Value:    value,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.opts.Secure,
				SameSite: sameSite,
			})
			return nil
		}

		oldest := -1
		for i, r := range records {
			if r.ID == protectedID {
				continue
			}
			if oldest < 0 || r.CreationTS < records[oldest].CreationTS {
				oldest = i
			}
		}
		if oldest < 0 {
			return ErrRecordTooLarge
		}
		evicted := records[oldest]
		records = append(records[:oldest:oldest], records[oldest+1:]...)
		if s.opts.OnEvict != nil {
			s.opts.OnEvict(evicted)
		}
	}
}

func dropExpired(records []Record, now time.Time) []Record {
	kept := records[:0:0]
	for _, r := range records {
		if !r.Expired(now) {
			kept = append(kept, r)
		}
	}
	return kept
}

// Add inserts rec, replacing any existing record with the same login name
// (update semantics), otherwise prepending it. When the encoded list would
// exceed the byte budget the oldest record of the current list is evicted
// and the write retried; the newly added record always survives. With
// cleanup set, expired records are dropped before writing.
//
// Add may return an error when input validation, dependency calls, or security checks fail.
func (s *Store) Add(rec Record, cleanup bool, sameSite http.SameSite) error {
	records := s.load()
	if cleanup {
		records = dropExpired(records, s.opts.now())
	}

	replaced := false
	for i, r := range records {
		if r.LoginName == rec.LoginName {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append([]Record{rec}, records...)
	}

	return s.write(records, rec.ID, sameSite)
}

// Update replaces the record whose id matches.
//
// Update may return an error when input validation, dependency calls, or security checks fail.
func (s *Store) Update(id string, rec Record, cleanup bool, sameSite http.SameSite) error {
	records := s.load()
	if cleanup {
		records = dropExpired(records, s.opts.now())
	}

	found := false
	for i, r := range records {
		if r.ID == id {
			records[i] = rec
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}

	return s.write(records, rec.ID, sameSite)
}

// Remove drops the record matching rec's id. Removing an absent record is
// not an error.
//
// Remove may return an error when input validation, dependency calls, or security checks fail.
func (s *Store) Remove(rec Record, cleanup bool, sameSite http.SameSite) error {
	records := s.load()
	if cleanup {
		records = dropExpired(records, s.opts.now())
	}

	kept := records[:0:0]
	for _, r := range records {
		if r.ID != rec.ID {
			kept = append(kept, r)
		}
	}

	return s.write(kept, "", sameSite)
}

// GetMostRecent returns the record with the maximum change timestamp.
//
// GetMostRecent may return an error when input validation, dependency calls, or security checks fail.
func (s *Store) GetMostRecent() (Record, error) {
	return mostRecent(s.load())
}

// GetByID returns the record with the given id, additionally constrained by
// organization when non-empty.
//
// GetByID may return an error when input validation, dependency calls, or security checks fail.
func (s *Store) GetByID(id, organization string) (Record, error) {
	for _, r := range s.load() {
		if r.ID == id && (organization == "" || r.Organization == organization) {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

// GetByLoginName returns the record with the given login name, additionally
// constrained by organization when non-empty.
//
// GetByLoginName may return an error when input validation, dependency calls, or security checks fail.
func (s *Store) GetByLoginName(loginName, organization string) (Record, error) {
	for _, r := range s.load() {
		if r.LoginName == loginName && (organization == "" || r.Organization == organization) {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

// GetAll returns every stored record, dropping expired ones when cleanup is
// set. An absent cookie yields an empty list.
func (s *Store) GetAll(cleanup bool) []Record {
	records := s.load()
	if cleanup {
		records = dropExpired(records, s.opts.now())
	}
	return records
}

// GetAllIDs returns the ids of every stored record, dropping expired ones
// when cleanup is set.
func (s *Store) GetAllIDs(cleanup bool) []string {
	records := s.GetAll(cleanup)
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}

// GetMostRecentMatching filters by optional login name and organization and
// returns the most recently changed record of the filtered set.
//
// GetMostRecentMatching may return an error when input validation, dependency calls, or security checks fail.
func (s *Store) GetMostRecentMatching(loginName, organization string) (Record, error) {
	matched := []Record{}
	for _, r := range s.load() {
		if loginName != "" && r.LoginName != loginName {
			continue
		}
		if organization != "" && r.Organization != organization {
			continue
		}
		matched = append(matched, r)
	}
	return mostRecent(matched)
}

func mostRecent(records []Record) (Record, error) {
	if len(records) == 0 {
		return Record{}, ErrNotFound
	}
	sorted := append([]Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ChangeTS > sorted[j].ChangeTS
	})
	return sorted[0], nil
}
