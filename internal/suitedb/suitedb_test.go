package suitedb

import (
	"context"
	"testing"
	"time"

	"contest-assist/lib/scrapers/atcoder"
	"contest-assist/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	defer telemetry.SetupForTesting(t, "test:suitedb")()

	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	contest := atcoder.ABC(120)
	first := atcoder.SimpleSuite(2*time.Second, []atcoder.Sample{
		{Input: "1 2\n", Output: "3\n"},
	})
	err = store.SaveSuite(ctx, contest, atcoder.Task{
		Name: "A", URL: "/contests/abc120/tasks/abc120_a",
	}, first)
	require.NoError(t, err)
	err = store.SaveSuite(ctx, contest, atcoder.Task{
		Name: "B", URL: "/contests/abc120/tasks/abc120_b",
	}, atcoder.UnsubmittableSuite())
	require.NoError(t, err)

	saved, err := store.Suites(ctx, "abc120")
	require.NoError(t, err)
	require.Len(t, saved, 2)
	require.Equal(t, "A", saved[0].Task)
	require.Equal(t, "/contests/abc120/tasks/abc120_a", saved[0].URL)
	require.Equal(t, first, saved[0].Suite)
	require.Equal(t, "B", saved[1].Task)
	require.Equal(t, atcoder.UnsubmittableSuite(), saved[1].Suite)

	empty, err := store.Suites(ctx, "arc100")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestStoreReplacesOnRedownload(t *testing.T) {
	defer telemetry.SetupForTesting(t, "test:suitedb")()

	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	task := atcoder.Task{Name: "A", URL: "/contests/abc120/tasks/abc120_a"}
	err = store.SaveSuite(ctx, atcoder.ABC(120), task, atcoder.SimpleSuite(
		2*time.Second,
		[]atcoder.Sample{{Input: "1 2\n", Output: "3\n"}},
	))
	require.NoError(t, err)

	updated := atcoder.SimpleSuite(4*time.Second, []atcoder.Sample{
		{Input: "1 2\n", Output: "3\n"},
		{Input: "10 20\n", Output: "30\n"},
	})
	err = store.SaveSuite(ctx, atcoder.ABC(120), task, updated)
	require.NoError(t, err)

	saved, err := store.Suites(ctx, "abc120")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.Equal(t, updated, saved[0].Suite)
}
