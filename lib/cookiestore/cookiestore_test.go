package cookiestore

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	store, err := Open(path)
	require.NoError(t, err)

	err = store.Merge("atcoder.jp", []*http.Cookie{
		{Name: "REVEL_SESSION", Value: "deadbeef", Path: "/"},
		{Name: "language", Value: "ja", Domain: "atcoder.jp"},
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	records := reopened.All()
	require.Len(t, records, 2)
	require.Equal(t, "REVEL_SESSION", records[0].Name)
	require.Equal(t, "deadbeef", records[0].Value)
	require.Equal(t, "atcoder.jp", records[0].Domain)
	require.Equal(t, "ja", records[1].Value)
}

func TestOpenCreatesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	store, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, 0, store.Len())
	require.NoError(t, store.Close())

	// the empty set must already be durable
	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	require.Equal(t, 0, reopened.Len())
}

func TestOpenCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "share", "contest-assist", "cookies.json")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.FileExists(t, path)
}

func TestOpenFailsWhenLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	_, err = Open(path)
	require.ErrorIs(t, err, ErrLocked)
}

func TestReopenAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, reopened.Close())
}

func TestMergeReplacesByKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	err = store.Merge("atcoder.jp", []*http.Cookie{
		{Name: "REVEL_SESSION", Value: "first", Path: "/"},
	})
	require.NoError(t, err)
	err = store.Merge("atcoder.jp", []*http.Cookie{
		{Name: "REVEL_SESSION", Value: "second", Path: "/"},
	})
	require.NoError(t, err)

	records := store.All()
	require.Len(t, records, 1)
	require.Equal(t, "second", records[0].Value)

	// a different path is a different cookie
	err = store.Merge("atcoder.jp", []*http.Cookie{
		{Name: "REVEL_SESSION", Value: "third", Path: "/contests"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())
}

func TestCookiesForHost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	err = store.Merge("atcoder.jp", []*http.Cookie{
		{Name: "session", Value: "a"},
		{Name: "tracking", Value: "b", Domain: ".atcoder.jp"},
	})
	require.NoError(t, err)
	err = store.Merge("example.com", []*http.Cookie{
		{Name: "other", Value: "c"},
	})
	require.NoError(t, err)

	testCases := []struct {
		host     string
		expected []string
	}{
		{host: "atcoder.jp", expected: []string{"session", "tracking"}},
		{host: "img.atcoder.jp", expected: []string{"session", "tracking"}},
		{host: "example.com", expected: []string{"other"}},
		{host: "atcoder.jp.evil.net", expected: nil},
	}
	for _, test := range testCases {
		var names []string
		for _, c := range store.Cookies(test.host) {
			names = append(names, c.Name)
		}
		require.Equal(t, test.expected, names, "host %s", test.host)
	}
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	store, err := Open(path)
	require.NoError(t, err)

	err = store.Merge("atcoder.jp", []*http.Cookie{{Name: "session", Value: "a"}})
	require.NoError(t, err)
	require.NoError(t, store.Clear())
	require.Equal(t, 0, store.Len())
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	require.Equal(t, 0, reopened.Len())
}
