//go:build api

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"micasa/internal/models"
	"micasa/test/api/testserver"
	"micasa/test/fixtures"
	"micasa/test/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetProfile tests GET /api/users/profile.
func TestGetProfile(t *testing.T) {
	testServer.CleanupBetweenTests(t)

	session := testserver.NewAuthHelper(testServer).Owner(t)

	t.Run("success - returns own profile with home route", func(t *testing.T) {
		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodGet, "/api/users/profile", session.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		user := testutil.ParseData[models.User](t, w)
		assert.Equal(t, session.UID, user.UID)
		assert.Equal(t, models.RoleOwner, user.Role)
		assert.Equal(t, "/owner/dashboard", user.HomeRoute)
		assert.Empty(t, user.Wishlist)
		assert.Equal(t, models.DefaultPreferences(), user.Preferences)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("error - unauthorized without token", func(t *testing.T) {
		w := testutil.MakeRequest(t, testServer.Router, http.MethodGet, "/api/users/profile", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("error - user deleted behind a valid token", func(t *testing.T) {
		ghost := testserver.NewAuthHelper(testServer).Hunter(t)
		_, err := testServer.UserRepo.Delete(context.Background(), ghost.UID)
		require.NoError(t, err)

		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodGet, "/api/users/profile", ghost.AccessToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// TestUpdateProfile tests PUT /api/users/profile with JSON and multipart bodies.
func TestUpdateProfile(t *testing.T) {
	testServer.CleanupBetweenTests(t)

	authHelper := testserver.NewAuthHelper(testServer)
	session := authHelper.Hunter(t)

	t.Run("json - updates fields and preferences", func(t *testing.T) {
		body := map[string]interface{}{"name": "Hana H.", "locale": "es-MX", "currency": "MXN", "pushNotifications": true}

		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodPut, "/api/users/profile", session.AccessToken, body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		user := testutil.ParseData[models.User](t, w)
		assert.Equal(t, "Hana H.", user.Name)
		assert.Equal(t, "es-MX", user.Preferences.Locale)
		assert.Equal(t, "MXN", user.Preferences.Currency)
		assert.True(t, user.Preferences.PushNotifications)
		assert.True(t, user.Preferences.EmailNotifications, "untouched preference keeps its value")

		// The cached profile was invalidated.
		w = testutil.MakeAuthRequest(t, testServer.Router, http.MethodGet, "/api/users/profile", session.AccessToken, nil)
		assert.Equal(t, "Hana H.", testutil.ParseData[models.User](t, w).Name)
	})

	t.Run("multipart - stores profile image and serves it", func(t *testing.T) {
		img := fixtures.RedPNG()

		w := testutil.MakeMultipartRequest(t, testServer.Router, http.MethodPut, "/api/users/profile", session.AccessToken,
			[][2]string{{"name", "Hana Pic"}},
			testutil.File{Field: "profileImage", Name: "me.png", Content: img})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		user := testutil.ParseData[models.User](t, w)
		assert.Equal(t, "Hana Pic", user.Name)
		require.True(t, strings.HasPrefix(user.ProfileImageURL, testserver.TestPublicBaseURL+"/uploads/"), user.ProfileImageURL)

		path := strings.TrimPrefix(user.ProfileImageURL, testserver.TestPublicBaseURL)
		w = testutil.MakeRequest(t, testServer.Router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, img, w.Body.Bytes())

		// Replacing the image removes the previous object.
		firstKey := strings.TrimPrefix(path, "/uploads/")
		w = testutil.MakeMultipartRequest(t, testServer.Router, http.MethodPut, "/api/users/profile", session.AccessToken, nil,
			testutil.File{Field: "profileImage", Name: "me2.png", Content: fixtures.RedPNG()})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.False(t, testServer.MinIO.ObjectExists(context.Background(), firstKey))
	})

	t.Run("multipart - rejects a non-image upload", func(t *testing.T) {
		w := testutil.MakeMultipartRequest(t, testServer.Router, http.MethodPut, "/api/users/profile", session.AccessToken, nil,
			testutil.File{Field: "profileImage", Name: "notes.png", Content: fixtures.PlainText()})
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("error - email taken by another user", func(t *testing.T) {
		other := authHelper.Hunter(t)

		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodPut, "/api/users/profile", session.AccessToken,
			map[string]string{"email": other.Email})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("error - invalid email", func(t *testing.T) {
		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodPut, "/api/users/profile", session.AccessToken,
			map[string]string{"email": "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestDeleteProfile checks that deleting an account revokes sessions and releases likes.
func TestDeleteProfile(t *testing.T) {
	testServer.CleanupBetweenTests(t)

	authHelper := testserver.NewAuthHelper(testServer)
	listingHelper := testserver.NewListingHelper(testServer)
	owner := authHelper.Owner(t)
	hunter := authHelper.Hunter(t)

	listing := listingHelper.CreateDefaultListing(t, owner.AccessToken)
	status := listingHelper.Toggle(t, hunter.AccessToken, listing.LID)
	require.Equal(t, 1, status.Likes)

	w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodDelete, "/api/users/profile", hunter.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	likes, err := testServer.ListingRepo.LikesOf(context.Background(), listing.LID)
	require.NoError(t, err)
	assert.Equal(t, 0, likes)

	w = testutil.MakeRequest(t, testServer.Router, http.MethodPost, "/api/auth/refresh", models.RefreshRequest{RefreshToken: hunter.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.MakeAuthRequest(t, testServer.Router, http.MethodGet, "/api/users/profile", hunter.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestChangeOwnRole tests PUT /api/users/profile/role.
func TestChangeOwnRole(t *testing.T) {
	testServer.CleanupBetweenTests(t)

	authHelper := testserver.NewAuthHelper(testServer)
	session := authHelper.Hunter(t)

	t.Run("success - returns tokens carrying the new role", func(t *testing.T) {
		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodPut, "/api/users/profile/role", session.AccessToken,
			models.ChangeRoleRequest{Role: models.RoleOwner})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		auth := testutil.ParseData[models.AuthResponse](t, w)
		assert.Equal(t, models.RoleOwner, auth.User.Role)
		assert.Equal(t, "/owner/dashboard", auth.User.HomeRoute)

		// The fresh token can create listings right away.
		listing := testserver.NewListingHelper(testServer).CreateDefaultListing(t, auth.AccessToken)
		assert.Equal(t, session.UID, listing.OwnerUID)
	})

	t.Run("error - admin cannot be self-assigned", func(t *testing.T) {
		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodPut, "/api/users/profile/role", session.AccessToken,
			models.ChangeRoleRequest{Role: models.RoleAdmin})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("error - unknown role", func(t *testing.T) {
		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodPut, "/api/users/profile/role", session.AccessToken,
			map[string]string{"role": "landlord"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestAdminUserManagement tests GET /api/users and PUT /api/users/:uid/role.
func TestAdminUserManagement(t *testing.T) {
	testServer.CleanupBetweenTests(t)

	authHelper := testserver.NewAuthHelper(testServer)
	admin := authHelper.Admin(t)
	hunter := authHelper.Hunter(t)

	t.Run("admin lists users", func(t *testing.T) {
		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodGet, "/api/users", admin.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		users := testutil.ParseData[[]models.User](t, w)
		assert.Len(t, users, 2)
	})

	t.Run("non-admin cannot list users", func(t *testing.T) {
		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodGet, "/api/users", hunter.AccessToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin assigns a role and the user is notified", func(t *testing.T) {
		path := fmt.Sprintf("/api/users/%s/role", hunter.UID)
		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodPut, path, admin.AccessToken,
			models.ChangeRoleRequest{Role: models.RoleMover})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, models.RoleMover, testutil.ParseData[models.User](t, w).Role)

		testutil.WaitFor(t, func() bool {
			w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodGet, "/api/users/notifications", hunter.AccessToken, nil)
			notifications := testutil.ParseData[[]models.Notification](t, w)
			return len(notifications) == 1 && notifications[0].Type == models.NotificationSystem
		}, "role change notification")
	})

	t.Run("assigning to an unknown user is not found", func(t *testing.T) {
		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodPut, "/api/users/nobody/role", admin.AccessToken,
			models.ChangeRoleRequest{Role: models.RoleOwner})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-admin cannot assign roles", func(t *testing.T) {
		path := fmt.Sprintf("/api/users/%s/role", admin.UID)
		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodPut, path, hunter.AccessToken,
			models.ChangeRoleRequest{Role: models.RoleHunter})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

// TestNotificationsAndActivity follows the background jobs a review produces.
func TestNotificationsAndActivity(t *testing.T) {
	testServer.CleanupBetweenTests(t)

	authHelper := testserver.NewAuthHelper(testServer)
	listingHelper := testserver.NewListingHelper(testServer)
	owner := authHelper.Owner(t)
	hunter := authHelper.Hunter(t)

	listing := listingHelper.CreateDefaultListing(t, owner.AccessToken)
	listingHelper.Review(t, hunter.AccessToken, listing.LID, 5, "Great place")
	listingHelper.Review(t, hunter.AccessToken, listing.LID, 4, "Still great")

	notificationsOf := func(token string) []models.Notification {
		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodGet, "/api/users/notifications", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return testutil.ParseData[[]models.Notification](t, w)
	}

	testutil.WaitFor(t, func() bool { return len(notificationsOf(owner.AccessToken)) == 2 }, "owner notifications")

	notifications := notificationsOf(owner.AccessToken)
	assert.Equal(t, models.NotificationReview, notifications[0].Type)
	assert.Equal(t, listing.LID, notifications[0].ListingID)

	t.Run("mark one read", func(t *testing.T) {
		path := fmt.Sprintf("/api/users/notifications/%s/read", notifications[0].ID.Hex())
		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodPut, path, owner.AccessToken, nil)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		after := notificationsOf(owner.AccessToken)
		assert.True(t, after[0].Read)
		assert.False(t, after[1].Read)
	})

	t.Run("mark unknown notification", func(t *testing.T) {
		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodPut, "/api/users/notifications/not-an-id/read", owner.AccessToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("mark all read", func(t *testing.T) {
		w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodPut, "/api/users/notifications/read-all", owner.AccessToken, nil)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		for _, n := range notificationsOf(owner.AccessToken) {
			assert.True(t, n.Read)
		}
	})

	t.Run("activity logs", func(t *testing.T) {
		activityOf := func(token string) []models.ActivityEntry {
			w := testutil.MakeAuthRequest(t, testServer.Router, http.MethodGet, "/api/users/activity", token, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			return testutil.ParseData[[]models.ActivityEntry](t, w)
		}

		testutil.WaitFor(t, func() bool { return len(activityOf(hunter.AccessToken)) == 2 }, "hunter activity")
		var details []string
		for _, e := range activityOf(hunter.AccessToken) {
			assert.Equal(t, models.ActivityReviewPosted, e.Action)
			assert.Equal(t, listing.LID, e.ListingID)
			details = append(details, e.Detail)
		}
		assert.ElementsMatch(t, []string{"rated 5", "rated 4"}, details)

		testutil.WaitFor(t, func() bool { return len(activityOf(owner.AccessToken)) == 1 }, "owner activity")
		assert.Equal(t, models.ActivityListingCreated, activityOf(owner.AccessToken)[0].Action)
	})
}
