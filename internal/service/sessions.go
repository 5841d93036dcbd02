package service

import (
	"time"

	"github.com/jellydator/ttlcache/v2"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// SessionCookie is the name of the cookie carrying the opaque session ID.
const SessionCookie = "session_id"

const sidCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// PendingSignup holds the data a caller submitted to register,
// parked between the register and verify calls. It only ever lives in
// this in-memory store, never in the database, because it carries the
// plaintext password.
type PendingSignup struct {
	Username  string
	Email     string
	Password  string
	CreatedAt time.Time
}

// Session is the server-side state bound to a session_id cookie.
// UserID is zero for anonymous sessions.
type Session struct {
	UserID  uint
	Pending *PendingSignup
}

// SessionStore keeps sessions in memory with a sliding TTL. Losing the
// store on restart logs everyone out and drops pending signups, which
// is acceptable: issued email codes live in the database and a caller
// can simply register again.
type SessionStore struct {
	cache *ttlcache.Cache
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	c := ttlcache.NewCache()
	c.SetTTL(ttl)
	c.SkipTTLExtensionOnHit(false)

	return &SessionStore{cache: c}
}

// NewID mints a fresh session ID for the cookie.
func (s *SessionStore) NewID() string {
	return gonanoid.MustGenerate(sidCharset, 32)
}

// Current returns the session bound to sid, or nil if it never existed
// or expired.
func (s *SessionStore) Current(sid string) *Session {
	v, err := s.cache.Get(sid)
	if err != nil {
		return nil
	}

	return v.(*Session)
}

func (s *SessionStore) put(sid string, sess *Session) {
	_ = s.cache.Set(sid, sess)
}

// BindUser marks the session as authenticated as userID.
func (s *SessionStore) BindUser(sid string, userID uint) {
	sess := s.Current(sid)
	if sess == nil {
		sess = &Session{}
	}
	sess.UserID = userID
	s.put(sid, sess)
}

// Drop removes the session entirely. Used when the ID is rotated at
// login and the old one must stop resolving.
func (s *SessionStore) Drop(sid string) {
	_ = s.cache.Remove(sid)
}

// Unbind drops the authenticated identity but keeps the session alive.
func (s *SessionStore) Unbind(sid string) {
	sess := s.Current(sid)
	if sess == nil {
		return
	}
	sess.UserID = 0
	s.put(sid, sess)
}

// SetPending parks a signup on the session, replacing any earlier one.
func (s *SessionStore) SetPending(sid string, p PendingSignup) {
	sess := s.Current(sid)
	if sess == nil {
		sess = &Session{}
	}
	p.CreatedAt = time.Now()
	sess.Pending = &p
	s.put(sid, sess)
}

// Pending returns the parked signup, or nil.
func (s *SessionStore) Pending(sid string) *PendingSignup {
	sess := s.Current(sid)
	if sess == nil {
		return nil
	}
	return sess.Pending
}

// ClearPending removes the parked signup once verification completes.
func (s *SessionStore) ClearPending(sid string) {
	sess := s.Current(sid)
	if sess == nil {
		return
	}
	sess.Pending = nil
	s.put(sid, sess)
}

func (s *SessionStore) Close() {
	_ = s.cache.Close()
}
