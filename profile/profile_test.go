package profile_test

import (
	"context"
	"strings"
	"testing"

	"campusbite/backend"
	"campusbite/internal/apptest"
	"campusbite/models"
	"campusbite/profile"
	"campusbite/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfileAndRole(t *testing.T) {
	a := apptest.NewApp(t, apptest.NewStore(t))
	user := apptest.Register(t, a, "abel", models.RoleDelivery)
	ctx := context.Background()

	got, err := a.Resolver.GetProfile(ctx, user.AccountID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	role, err := a.Resolver.GetRole(ctx, user.AccountID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDelivery, role)
}

func TestGetProfileMissing(t *testing.T) {
	a := apptest.NewApp(t, apptest.NewStore(t))
	ctx := context.Background()

	_, err := a.Resolver.GetProfile(ctx, "account-without-profile")
	var nf *profile.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "account-without-profile", nf.AccountID)
	assert.True(t, backend.IsNotFound(err))

	_, err = a.Resolver.GetRole(ctx, "account-without-profile")
	assert.True(t, profile.IsNotFound(err))

	_, err = a.Resolver.GetProfile(ctx, "")
	assert.Error(t, err)
}

func TestRegisterStudent(t *testing.T) {
	a := apptest.NewApp(t, apptest.NewStore(t))
	user := apptest.Register(t, a, "bethel", models.RoleStudent)

	assert.NotEmpty(t, user.AccountID)
	assert.Equal(t, models.LanguageEnglish, user.Language)
	assert.True(t, user.IsPublic)
	assert.True(t, strings.HasPrefix(user.AvatarURL, apptest.Endpoint+"/avatars/initials?name=bethel"))

	// Students are not signed in by registration.
	token, _ := a.Sessions.Load()
	assert.Empty(t, token)
}

func TestRegisterManagerGetsRestaurant(t *testing.T) {
	store := apptest.NewStore(t)
	a := apptest.NewApp(t, store)
	user := apptest.Register(t, a, "dagim", models.RoleHotelManager)
	ctx := context.Background()

	token, _ := a.Sessions.Load()
	assert.NotEmpty(t, token)

	restaurants, err := a.Client.Restaurants.FindByOwner(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, restaurants, 1)
	assert.Equal(t, "dagim's Restaurant", restaurants[0].Name)
}

func TestRegisterValidation(t *testing.T) {
	a := apptest.NewApp(t, apptest.NewStore(t))
	ctx := context.Background()

	cases := []profile.RegisterInput{
		{Email: "", Password: apptest.Password, Username: "x", Role: models.RoleStudent},
		{Email: "x@campus.edu", Password: "short", Username: "x", Role: models.RoleStudent},
		{Email: "x@campus.edu", Password: apptest.Password, Username: " ", Role: models.RoleStudent},
		{Email: "x@campus.edu", Password: apptest.Password, Username: "x", Role: "admin"},
	}
	for _, in := range cases {
		_, err := a.Profiles.Register(ctx, in)
		assert.Error(t, err, "%+v", in)
	}
}

func TestUpdateSettings(t *testing.T) {
	store := apptest.NewStore(t)
	a, user := apptest.SignedIn(t, store, "elsa", models.RoleStudent)
	ctx := context.Background()

	name := "Elsa M."
	lang := models.LanguageAmharic
	updated, err := a.Profiles.UpdateSettings(ctx, user.ID, profile.SettingsUpdate{
		Username: &name,
		Language: &lang,
		IsPublic: models.Bool(false),
		Avatar:   &backend.FileInput{Name: "me.gif", Data: apptest.GIF},
	})
	require.NoError(t, err)
	assert.Equal(t, "Elsa M.", updated.Username)
	assert.Equal(t, user.Email, updated.Email, "email stays with the account")
	assert.Equal(t, "am", updated.Language)
	assert.False(t, updated.IsPublic)
	assert.Contains(t, updated.AvatarURL, "/storage/buckets/"+apptest.Bucket+"/files/")

	bad := "fr"
	_, err = a.Profiles.UpdateSettings(ctx, user.ID, profile.SettingsUpdate{Language: &bad})
	assert.Error(t, err)
}

func TestUpdateSettingsRequiresOwnSession(t *testing.T) {
	store := apptest.NewStore(t)
	a, _ := apptest.SignedIn(t, store, "fasil", models.RoleStudent)
	other := apptest.Register(t, apptest.NewApp(t, store), "gelila", models.RoleStudent)

	lang := models.LanguageAmharic
	_, err := a.Profiles.UpdateSettings(context.Background(), other.ID, profile.SettingsUpdate{Language: &lang})
	assert.True(t, session.IsSessionError(err))
}

func TestDeliveryPersonnel(t *testing.T) {
	store := apptest.NewStore(t)
	a := apptest.NewApp(t, store)
	apptest.Register(t, a, "henok", models.RoleDelivery)
	apptest.Register(t, a, "ibsa", models.RoleDelivery)
	apptest.Register(t, a, "jalene", models.RoleStudent)

	couriers, err := a.Profiles.DeliveryPersonnel(context.Background())
	require.NoError(t, err)
	require.Len(t, couriers, 2)
	for _, c := range couriers {
		assert.Equal(t, models.RoleDelivery, c.Role)
	}
}
