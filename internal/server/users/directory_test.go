package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dmitrijs2005/fibkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeList(t *testing.T, b []byte) map[string]User {
	t.Helper()
	var list []User
	require.NoError(t, json.Unmarshal(b, &list))
	out := make(map[string]User, len(list))
	for _, u := range list {
		out[u.ID] = u
	}
	return out
}

func TestDirectory_UpsertThenGet(t *testing.T) {
	d := NewDirectory()

	require.NoError(t, d.Upsert(User{ID: "u1", Name: "Ann", Age: 30}))

	got, err := d.Get("u1")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"id\": \"u1\",\n  \"name\": \"Ann\",\n  \"age\": 30\n}", string(got))
}

func TestDirectory_UpsertReplacesWholeRecord(t *testing.T) {
	d := NewDirectory()

	require.NoError(t, d.Upsert(User{ID: "u1", Name: "Ann", Age: 30}))
	require.NoError(t, d.Upsert(User{ID: "u1", Name: "Bob"}))

	got, err := d.Get("u1")
	require.NoError(t, err)

	var u User
	require.NoError(t, json.Unmarshal(got, &u))
	assert.Equal(t, User{ID: "u1", Name: "Bob", Age: 0}, u)
}

func TestDirectory_GetUnknown(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.Upsert(User{ID: "u1", Name: "Ann", Age: 30}))

	_, err := d.Get("nobody")
	require.ErrorIs(t, err, common.ErrorUnknownUser)
}

func TestDirectory_ListEmpty(t *testing.T) {
	d := NewDirectory()

	got, err := d.List()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestDirectory_ListReflectsLatestUpserts(t *testing.T) {
	d := NewDirectory()

	require.NoError(t, d.Upsert(User{ID: "a", Name: "A", Age: 1}))
	require.NoError(t, d.Upsert(User{ID: "b", Name: "B", Age: 2}))
	require.NoError(t, d.Upsert(User{ID: "a", Name: "A2", Age: 255}))

	got, err := d.List()
	require.NoError(t, err)

	assert.Equal(t, map[string]User{
		"a": {ID: "a", Name: "A2", Age: 255},
		"b": {ID: "b", Name: "B", Age: 2},
	}, decodeList(t, got))

	n, err := d.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDirectory_SerializationFailure(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.Upsert(User{ID: "u1", Name: "Ann", Age: 30}))
	d.marshal = func(any, string, string) ([]byte, error) { return nil, errors.New("encoder broke") }

	_, err := d.List()
	require.ErrorIs(t, err, common.ErrorSerialization)

	_, err = d.Get("u1")
	require.ErrorIs(t, err, common.ErrorSerialization)

	_, err = d.Get("missing")
	require.ErrorIs(t, err, common.ErrorUnknownUser, "lookup happens before encoding")
}

func TestDirectory_PoisonedByWriterPanic(t *testing.T) {
	d := NewDirectory()

	err := d.guard.Write(func() error { panic("torn write") })
	require.ErrorIs(t, err, common.ErrorLock)

	_, err = d.List()
	require.ErrorIs(t, err, common.ErrorLock)
	_, err = d.Get("u1")
	require.ErrorIs(t, err, common.ErrorLock)
	require.ErrorIs(t, d.Upsert(User{ID: "u1"}), common.ErrorLock)
}

func TestDirectory_ConcurrentUpsertsAndListsNeverTear(t *testing.T) {
	d := NewDirectory()
	const writers, rounds = 16, 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := fmt.Sprintf("u%d", w)
			for r := 0; r < rounds; r++ {
				age := uint8(r)
				_ = d.Upsert(User{ID: id, Name: fmt.Sprintf("%s-%d", id, age), Age: age})
			}
		}(w)
	}

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				b, err := d.List()
				if !assert.NoError(t, err) {
					return
				}
				var list []User
				if !assert.NoError(t, json.Unmarshal(b, &list)) {
					return
				}
				for _, u := range list {
					assert.Equal(t, fmt.Sprintf("%s-%d", u.ID, u.Age), u.Name, "record fields must come from one upsert")
				}
			}
		}()
	}
	wg.Wait()

	got, err := d.List()
	require.NoError(t, err)
	final := decodeList(t, got)
	require.Len(t, final, writers)
	for id, u := range final {
		assert.Equal(t, uint8(rounds-1), u.Age, id)
	}
}
