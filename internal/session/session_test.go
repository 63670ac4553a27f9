package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"schoolcomm/client/internal/models"
	"schoolcomm/client/internal/storage"
)

func testUser() *models.User {
	return &models.User{
		ID:    1,
		Name:  "A",
		Email: "a@x",
		Role:  models.Role{ID: 1, Slug: models.RoleAdmin, Name: "Admin"},
	}
}

func TestSetSessionPersists(t *testing.T) {
	kv := storage.NewMemory()
	store := New(kv)

	store.SetSession(testUser(), "T")

	require.True(t, store.Authenticated())
	require.Equal(t, "T", store.Token())
	require.Equal(t, "A", store.User().Name)

	token, err := kv.Get(TokenKey)
	require.NoError(t, err)
	require.Equal(t, "T", token)

	raw, err := kv.Get(UserKey)
	require.NoError(t, err)
	require.Contains(t, raw, `"name":"A"`)
}

func TestClearSessionIsIdempotent(t *testing.T) {
	kv := storage.NewMemory()
	store := New(kv)
	store.SetSession(testUser(), "T")

	store.ClearSession()
	store.ClearSession()

	require.False(t, store.Authenticated())
	require.Empty(t, store.Token())
	require.Nil(t, store.User())

	token, _ := kv.Get(TokenKey)
	require.Empty(t, token)
}

func TestHydrateFromStorage(t *testing.T) {
	kv := storage.NewMemory()
	first := New(kv)
	first.SetSession(testUser(), "T")

	second := New(kv)
	second.HydrateFromStorage()

	require.True(t, second.Authenticated())
	require.Equal(t, "T", second.Token())
	require.Equal(t, "A", second.User().Name)
}

func TestHydrateCorruptUserIsDiscarded(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(TokenKey, "T"))
	require.NoError(t, kv.Set(UserKey, "{not json"))

	store := New(kv)
	store.HydrateFromStorage()

	// Token-only sessions are valid: the identity is resolved by the
	// first authenticated call.
	require.True(t, store.Authenticated())
	require.Equal(t, "T", store.Token())
	require.Nil(t, store.User())

	raw, err := kv.Get(UserKey)
	require.NoError(t, err)
	require.Empty(t, raw)
}

func TestHydrateWithoutTokenStaysAnonymous(t *testing.T) {
	store := New(storage.NewMemory())
	store.HydrateFromStorage()

	require.False(t, store.Authenticated())
	require.Empty(t, store.Token())
}

type brokenKV struct{}

func (brokenKV) Get(string) (string, error) { return "", errors.New("storage unavailable") }
func (brokenKV) Set(string, string) error   { return errors.New("storage unavailable") }
func (brokenKV) Delete(string) error        { return errors.New("storage unavailable") }

func TestStorageFailuresAreSwallowed(t *testing.T) {
	store := New(brokenKV{})

	store.HydrateFromStorage()
	store.SetSession(testUser(), "T")

	// In-memory state still works; persistence silently degraded.
	require.True(t, store.Authenticated())
	require.Equal(t, "T", store.Token())

	store.ClearSession()
	require.False(t, store.Authenticated())
}
