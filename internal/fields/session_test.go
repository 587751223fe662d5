package fields

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionExtractRecordsDocument(t *testing.T) {
	s := NewSession()
	res := s.Extract("Name: Alice\nPhone: 9876543210")

	require.Equal(t, "Alice", res[Name])
	require.Equal(t, "Name: Alice\nPhone: 9876543210", s.RawText())
	require.Equal(t, "Alice", s.Extraction()[Name])
}

func TestSessionSecondExtractSupersedes(t *testing.T) {
	s := NewSession()
	s.Extract("Name: Alice")
	s.Extract("Name: Bob")

	require.Equal(t, "Bob", s.Extraction()[Name])
	require.Equal(t, "Name: Bob", s.RawText())
}

func TestSessionVerifyUsesCurrentExtraction(t *testing.T) {
	s := NewSession()
	s.Extract("Name: Alice")

	res := s.Verify(Submission{Name: "Alice"})
	require.Equal(t, 100, res.Fields[Name])
}

func TestSessionReset(t *testing.T) {
	s := NewSession()
	s.Extract("Name: Alice")
	s.Reset()

	require.Empty(t, s.RawText())
	for _, f := range AllFields {
		require.Empty(t, s.Extraction()[f])
	}
}

func TestSessionExtractionIsCopied(t *testing.T) {
	s := NewSession()
	s.Extract("Name: Alice")

	got := s.Extraction()
	got[Name] = "tampered"
	require.Equal(t, "Alice", s.Extraction()[Name])
}

func TestSessionStoreIsolatesTokens(t *testing.T) {
	store := NewSessionStore()
	store.Get("user-a").Extract("Name: Alice")
	store.Get("user-b").Extract("Name: Bob")

	require.Equal(t, "Alice", store.Get("user-a").Extraction()[Name])
	require.Equal(t, "Bob", store.Get("user-b").Extraction()[Name])
	require.Equal(t, 2, store.Len())
}

func TestSessionStoreGetReturnsSameSession(t *testing.T) {
	store := NewSessionStore()
	require.Same(t, store.Get("tok"), store.Get("tok"))
}

func TestSessionStoreResetAndRemove(t *testing.T) {
	store := NewSessionStore()
	store.Get("tok").Extract("Name: Alice")

	store.Reset("tok")
	require.Empty(t, store.Get("tok").RawText())

	store.Reset("unknown") // no-op, does not create a session
	require.Equal(t, 1, store.Len())

	store.Remove("tok")
	require.Equal(t, 0, store.Len())
}
