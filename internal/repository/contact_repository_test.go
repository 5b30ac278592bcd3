package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cshealth/reminder-gateway/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func signupRequest(name, phone string) model.ContactCreateRequest {
	return model.ContactCreateRequest{
		Name:           name,
		PhoneNumber:    phone,
		Language:       model.LanguageEnglish,
		DateOfBirth:    day(2017, time.January, 30),
		DateOfSignUp:   day(2017, time.July, 17),
		MethodOfSignUp: "text",
	}
}

func TestContactRepository_UpsertBy(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()

	t.Run("creates a new contact", func(t *testing.T) {
		c, created, err := repo.UpsertBy(ctx, signupRequest("TestPerson", "+15551234567"))
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "TestPerson", c.Name)
		assert.Equal(t, "+15551234567", c.PhoneNumber)
		assert.Equal(t, model.LanguageEnglish, c.Language)
		assert.False(t, c.PregSignup)
		assert.False(t, c.Cancelled)
	})

	t.Run("same natural key updates instead of duplicating", func(t *testing.T) {
		req := signupRequest("TestPerson", "+15551234567")
		req.DateOfBirth = day(2017, time.February, 1)
		req.Language = model.LanguageHindi

		c, created, err := repo.UpsertBy(ctx, req)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, day(2017, time.February, 1), c.DateOfBirth)
		assert.Equal(t, model.LanguageHindi, c.Language)

		found, err := repo.FindByPhone(ctx, "+15551234567")
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("same phone different name is a second contact", func(t *testing.T) {
		_, created, err := repo.UpsertBy(ctx, signupRequest("Sibling", "+15551234567"))
		require.NoError(t, err)
		assert.True(t, created)

		found, err := repo.FindByPhone(ctx, "+15551234567")
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("preg signup when dob is after signup date", func(t *testing.T) {
		req := signupRequest("Expected", "+919876543210")
		req.DateOfBirth = day(2017, time.December, 1)

		c, _, err := repo.UpsertBy(ctx, req)
		require.NoError(t, err)
		assert.True(t, c.PregSignup)
	})

	t.Run("empty language defaults to english", func(t *testing.T) {
		req := signupRequest("NoLang", "+919876500000")
		req.Language = ""

		c, _, err := repo.UpsertBy(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, model.LanguageEnglish, c.Language)
	})

	t.Run("upsert never resurrects a cancelled contact", func(t *testing.T) {
		_, _, err := repo.UpsertBy(ctx, signupRequest("Gone", "+919876511111"))
		require.NoError(t, err)

		n, err := repo.CancelByPhone(ctx, "+919876511111")
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		c, created, err := repo.UpsertBy(ctx, signupRequest("Gone", "+919876511111"))
		require.NoError(t, err)
		assert.False(t, created)
		assert.True(t, c.Cancelled)
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		_, _, err := repo.UpsertBy(ctx, model.ContactCreateRequest{Name: "X"})
		assert.Error(t, err)
	})
}

func TestContactRepository_CancelByPhone(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()

	_, _, err := repo.UpsertBy(ctx, signupRequest("ChildOne", "+15551112222"))
	require.NoError(t, err)
	_, _, err = repo.UpsertBy(ctx, signupRequest("ChildTwo", "+15551112222"))
	require.NoError(t, err)
	_, _, err = repo.UpsertBy(ctx, signupRequest("Other", "+15559998888"))
	require.NoError(t, err)

	t.Run("cancels every contact at the number", func(t *testing.T) {
		n, err := repo.CancelByPhone(ctx, "+15551112222")
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		active, err := repo.AllActive(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "Other", active[0].Name)
	})

	t.Run("second stop flips nothing", func(t *testing.T) {
		n, err := repo.CancelByPhone(ctx, "+15551112222")
		require.NoError(t, err)
		assert.EqualValues(t, 0, n)
	})

	t.Run("unknown number flips nothing", func(t *testing.T) {
		n, err := repo.CancelByPhone(ctx, "+447700900000")
		require.NoError(t, err)
		assert.EqualValues(t, 0, n)
	})
}

func TestContactRepository_FindByPhone_Canonicalizes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()

	_, _, err := repo.UpsertBy(ctx, signupRequest("Rahul", "98765 43210"))
	require.NoError(t, err)

	found, err := repo.FindByPhone(ctx, "98765-43210")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "9876543210", found[0].PhoneNumber)
}

func TestContactRepository_Groups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()

	c, _, err := repo.UpsertBy(ctx, signupRequest("TestPerson", "+15551234567"))
	require.NoError(t, err)

	t.Run("groups are created on first reference", func(t *testing.T) {
		require.NoError(t, repo.AddToGroup(ctx, c.ID, "Text Sign Ups"))
		require.NoError(t, repo.AddToGroup(ctx, c.ID, "Everyone - English"))

		names, err := repo.GroupsOf(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Everyone - English", "Text Sign Ups"}, names)
	})

	t.Run("re-adding is a no-op", func(t *testing.T) {
		require.NoError(t, repo.AddToGroup(ctx, c.ID, "Text Sign Ups"))

		names, err := repo.GroupsOf(ctx, c.ID)
		require.NoError(t, err)
		assert.Len(t, names, 2)
	})

	t.Run("two contacts share one group row", func(t *testing.T) {
		c2, _, err := repo.UpsertBy(ctx, signupRequest("Second", "+919876543210"))
		require.NoError(t, err)
		require.NoError(t, repo.AddToGroup(ctx, c2.ID, "Text Sign Ups"))

		names, err := repo.GroupsOf(ctx, c2.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Text Sign Ups"}, names)
	})
}

func TestContactRepository_Timestamps(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()

	c, _, err := repo.UpsertBy(ctx, signupRequest("TestPerson", "+15551234567"))
	require.NoError(t, err)
	require.Nil(t, c.LastContacted)

	at := time.Date(2017, time.July, 17, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastContacted(ctx, c.ID, at))
	require.NoError(t, repo.UpdateLastHeardFrom(ctx, c.ID, at))

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastContacted)
	require.NotNil(t, got.LastHeardFrom)
	assert.True(t, got.LastContacted.Equal(at))
	assert.True(t, got.LastHeardFrom.Equal(at))
}
