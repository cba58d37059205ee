package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/files-manager/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newUser(email string) *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestUserRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	user := newUser("bob@example.com")
	require.NoError(t, db.CreateUser(ctx, user))

	byEmail, err := db.GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, user.PasswordHash, byEmail.PasswordHash)

	byID, err := db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	_, err = db.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDuplicateEmailHitsUniqueIndex(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateUser(ctx, newUser("bob@example.com")))
	assert.ErrorIs(t, db.CreateUser(ctx, newUser("bob@example.com")), ErrDuplicate)
}

func TestFileRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	owner := uuid.New()

	node := &models.FileNode{
		ID:         uuid.New(),
		Name:       "notes.txt",
		Type:       models.TypeFile,
		ParentID:   uuid.Nil,
		IsPublic:   false,
		OwnerID:    owner,
		ContentRef: uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, db.CreateFile(ctx, node))

	got, err := db.GetFile(ctx, node.ID)
	require.NoError(t, err)
	assert.Equal(t, node.Name, got.Name)
	assert.Equal(t, node.OwnerID, got.OwnerID)
	assert.Equal(t, node.ContentRef, got.ContentRef)
	assert.False(t, got.IsPublic)

	owned, err := db.FindOwnedFile(ctx, owner, node.ID)
	require.NoError(t, err)
	assert.Equal(t, node.ID, owned.ID)

	_, err = db.FindOwnedFile(ctx, uuid.New(), node.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.GetFile(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetFilePublicMatchesOwnerOnly(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	owner := uuid.New()

	node := &models.FileNode{
		ID:        uuid.New(),
		Name:      "notes.txt",
		Type:      models.TypeFile,
		OwnerID:   owner,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.CreateFile(ctx, node))

	require.NoError(t, db.SetFilePublic(ctx, owner, node.ID, true))
	got, err := db.GetFile(ctx, node.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPublic)

	// Zero rows matched reads the same as a missing node.
	assert.ErrorIs(t, db.SetFilePublic(ctx, uuid.New(), node.ID, false), ErrNotFound)
	assert.ErrorIs(t, db.SetFilePublic(ctx, owner, uuid.New(), false), ErrNotFound)

	// Setting the current value again still matches the row.
	require.NoError(t, db.SetFilePublic(ctx, owner, node.ID, true))
}

func TestListFilesScoping(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	owner := uuid.New()
	folder := uuid.New()

	base := time.Now().UTC()
	for i, tc := range []struct {
		name   string
		parent uuid.UUID
		who    uuid.UUID
	}{
		{"a.txt", uuid.Nil, owner},
		{"b.txt", uuid.Nil, owner},
		{"c.txt", folder, owner},
		{"theirs.txt", uuid.Nil, uuid.New()},
	} {
		require.NoError(t, db.CreateFile(ctx, &models.FileNode{
			ID:        uuid.New(),
			Name:      tc.name,
			Type:      models.TypeFile,
			ParentID:  tc.parent,
			OwnerID:   tc.who,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	root, err := db.ListFiles(ctx, owner, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, root, 2)
	assert.Equal(t, "a.txt", root[0].Name)
	assert.Equal(t, "b.txt", root[1].Name)

	inFolder, err := db.ListFiles(ctx, owner, folder)
	require.NoError(t, err)
	require.Len(t, inFolder, 1)
	assert.Equal(t, "c.txt", inFolder[0].Name)
}

func TestCounts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	users, err := db.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, users)

	require.NoError(t, db.CreateUser(ctx, newUser("bob@example.com")))
	require.NoError(t, db.CreateFile(ctx, &models.FileNode{
		ID: uuid.New(), Name: "a", Type: models.TypeFolder,
		OwnerID: uuid.New(), CreatedAt: time.Now().UTC(),
	}))

	users, err = db.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, users)

	files, err := db.CountFiles(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, files)
}
