package keystore

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testPool is the shared connection pool for all DB tests in this package.
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	if os.Getenv("ARCRYPT_SKIP_DB_TESTS") != "" {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		log.Fatalf("starting postgres container: %v", err)
	}
	defer func() {
		_ = container.Terminate(ctx)
	}()

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("getting container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		log.Fatalf("getting container port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	if err := RunMigrations(ctx, dsn); err != nil {
		log.Fatalf("running migrations: %v", err)
	}

	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connecting to test db: %v", err)
	}
	defer testPool.Close()

	os.Exit(m.Run())
}

// setupStore truncates the secrets table and returns a Store over the
// shared pool, keeping tests isolated from each other.
func setupStore(t *testing.T) *Store {
	t.Helper()
	if testPool == nil {
		t.Skip("database tests skipped")
	}
	_, err := testPool.Exec(context.Background(), "TRUNCATE secrets")
	require.NoError(t, err)
	return NewWithPool(testPool)
}

func TestStorePutGet(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	e, err := Seal("api_token", []byte("tok-123"), []byte("master"))
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, e))

	got, err := s.Get(ctx, "api_token")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, e.Name, got.Name)
	assert.Equal(t, e.Value, got.Value)
	assert.Equal(t, e.IV, got.IV)
	assert.Equal(t, e.KeyFingerprint, got.KeyFingerprint)
	assert.False(t, got.UpdatedAt.IsZero())

	pt, err := Open(*got, []byte("master"))
	require.NoError(t, err)
	assert.Equal(t, []byte("tok-123"), pt)
}

func TestStorePutReplaces(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	key := []byte("master")

	first, err := Seal("dsn", []byte("old"), key)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, first))

	second, err := Seal("dsn", []byte("new"), key)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, second))

	got, err := s.Get(ctx, "dsn")
	require.NoError(t, err)
	require.NotNil(t, got)

	pt, err := Open(*got, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), pt)
}

func TestStoreGetMissing(t *testing.T) {
	s := setupStore(t)

	got, err := s.Get(context.Background(), "no_such_secret")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStoreDelete(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	e, err := Seal("doomed", []byte("v"), []byte("k"))
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, e))

	deleted, err := s.Delete(ctx, "doomed")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Delete(ctx, "doomed")
	require.NoError(t, err)
	assert.False(t, deleted, "second delete must report no row")

	got, err := s.Get(ctx, "doomed")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStoreList(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	key := []byte("master")

	for _, name := range []string{"zeta", "alpha", "mid"} {
		e, err := Seal(name, []byte("v-"+name), key)
		require.NoError(t, err)
		require.NoError(t, s.Put(ctx, e))
	}

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "alpha", entries[0].Name)
	assert.Equal(t, "mid", entries[1].Name)
	assert.Equal(t, "zeta", entries[2].Name)
	for _, e := range entries {
		assert.Equal(t, Fingerprint(key), e.KeyFingerprint)
		assert.Nil(t, e.Value, "List must not return ciphertext")
	}
}

func TestStoreRejectsInvalidName(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.Put(ctx, Entry{Name: "bad name"}), ErrInvalidName)

	_, err := s.Get(ctx, "../escape")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = s.Delete(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidName)
}
