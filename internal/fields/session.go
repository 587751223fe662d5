package fields

import "sync"

// Session holds the most recent raw OCR text and extraction for a single
// interactive user, so a later verification request does not have to
// resend the original extraction. A Session serves one document at a time:
// a second Extract before a Verify silently supersedes the first
// (last-write-wins), and no locking is applied inside a Session. Callers
// that serve multiple users must give each one its own Session via
// SessionStore.
type Session struct {
	rawText    string
	extraction Result
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{extraction: NewResult()}
}

// Extract runs field extraction on rawText and records both the text and
// the resulting extraction as the session's current document.
func (s *Session) Extract(rawText string) Result {
	res := Extract(rawText)
	s.rawText = rawText
	s.extraction = res
	return res.Clone()
}

// Verify scores submitted form data against the session's current
// extraction.
func (s *Session) Verify(submitted Submission) VerificationResult {
	return Verify(s.extraction, submitted)
}

// RawText returns the raw OCR text of the current document.
func (s *Session) RawText() string {
	return s.rawText
}

// Extraction returns a copy of the current extraction.
func (s *Session) Extraction() Result {
	return s.extraction.Clone()
}

// Reset clears the session back to its defaults.
func (s *Session) Reset() {
	s.rawText = ""
	s.extraction = NewResult()
}

// SessionStore hands out one Session per opaque token. The store itself is
// safe for concurrent use; the individual sessions are not, matching the
// one-user-per-session model. The pattern catalog is immutable and shared
// read-only across all sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Get returns the session for token, creating it on first use.
func (st *SessionStore) Get(token string) *Session {
	st.mu.RLock()
	s, ok := st.sessions[token]
	st.mu.RUnlock()
	if ok {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok = st.sessions[token]; ok {
		return s
	}
	s = NewSession()
	st.sessions[token] = s
	return s
}

// Reset clears the session for token, if any.
func (st *SessionStore) Reset(token string) {
	st.mu.RLock()
	s, ok := st.sessions[token]
	st.mu.RUnlock()
	if ok {
		s.Reset()
	}
}

// Remove drops the session for token entirely.
func (st *SessionStore) Remove(token string) {
	st.mu.Lock()
	delete(st.sessions, token)
	st.mu.Unlock()
}

// Len reports the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
