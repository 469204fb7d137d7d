package state

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const communityC1 = `{"data":{"_id":"c1","name":"Chess","isFollowing":false,"isCreator":false,"followersCount":10,"creatorsCount":2}}`

const mineBody = `{"data":{
	"statistics":{"foundedCount":1,"creatorCount":0,"followingCount":1},
	"founded":[{"_id":"f1","name":"Founded"}],
	"creator":[],
	"following":[{"_id":"c2","name":"Go","joinedAt":"2024-03-01T00:00:00Z"}]}}`

func communityApp(t *testing.T, f *fakeAPI) *App {
	t.Helper()
	app, _ := signedInApp(t, f)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	app.Community.now = func() time.Time { return fixed }
	return app
}

func followingIds(state CommunityState) []string {
	var out []string
	for _, c := range state.UserCommunities.Following {
		out = append(out, c.Id)
	}
	return out
}

func TestToggleFollowFromDetail(t *testing.T) {
	f := newFakeAPI(t)
	f.reply("GET /api/communities/c1", http.StatusOK, communityC1)
	f.reply("POST /api/communities/c1/follow", http.StatusOK, `{"message":"Followed"}`)
	app := communityApp(t, f)
	ctx := context.Background()

	require.NoError(t, app.Community.FetchCommunityByID(ctx, "c1"))
	require.NoError(t, app.Community.ToggleFollowCommunity(ctx, "c1"))

	state := app.Community.Snapshot()
	require.NotNil(t, state.Current.Data)
	assert.True(t, state.Current.Data.IsFollowing)
	assert.Equal(t, 11, state.Current.Data.FollowersCount)
	assert.Equal(t, []string{"c1"}, followingIds(state))
	assert.Equal(t, 1, state.UserCommunities.Statistics.FollowingCount)
	require.NotNil(t, state.UserCommunities.Following[0].JoinedAt)
	assert.True(t, state.Action.Success)
	assert.Equal(t, "Followed", state.Action.Message)
}

func TestToggleFollowTwiceRestoresState(t *testing.T) {
	f := newFakeAPI(t)
	f.reply("GET /api/communities/c1", http.StatusOK, communityC1)
	f.reply("POST /api/communities/c1/follow", http.StatusOK, `{"message":"ok"}`)
	app := communityApp(t, f)
	ctx := context.Background()

	require.NoError(t, app.Community.FetchCommunityByID(ctx, "c1"))
	require.NoError(t, app.Community.ToggleFollowCommunity(ctx, "c1"))
	require.NoError(t, app.Community.ToggleFollowCommunity(ctx, "c1"))

	state := app.Community.Snapshot()
	assert.False(t, state.Current.Data.IsFollowing)
	assert.Equal(t, 10, state.Current.Data.FollowersCount)
	assert.Empty(t, state.UserCommunities.Following)
	assert.Equal(t, 0, state.UserCommunities.Statistics.FollowingCount)
	assert.Equal(t, 2, f.count("POST /api/communities/c1/follow"))
}

func TestListAndDetailAgreeAfterUnfollow(t *testing.T) {
	f := newFakeAPI(t)
	f.reply("GET /api/communities/mine", http.StatusOK, mineBody)
	f.reply("GET /api/communities/c2", http.StatusOK,
		`{"data":{"_id":"c2","name":"Go","isFollowing":true,"followersCount":5}}`)
	f.reply("POST /api/communities/c2/follow", http.StatusOK, `{"message":"Unfollowed"}`)
	app := communityApp(t, f)
	ctx := context.Background()

	require.NoError(t, app.Community.FetchUserCommunities(ctx))
	require.NoError(t, app.Community.FetchCommunityByID(ctx, "c2"))
	require.NoError(t, app.Community.ToggleFollowCommunity(ctx, "c2"))

	state := app.Community.Snapshot()
	assert.False(t, state.Current.Data.IsFollowing)
	assert.Equal(t, 4, state.Current.Data.FollowersCount)
	assert.Empty(t, followingIds(state))
	assert.Equal(t, 0, state.UserCommunities.Statistics.FollowingCount)
	assert.Equal(t, 1, state.UserCommunities.Statistics.FoundedCount)
}

func TestFetchUserCommunities(t *testing.T) {
	f := newFakeAPI(t)
	f.reply("GET /api/communities/mine", http.StatusOK, mineBody)
	app := communityApp(t, f)

	require.NoError(t, app.Community.FetchUserCommunities(context.Background()))

	lists := app.Community.Snapshot().UserCommunities
	assert.True(t, lists.Loaded)
	require.Len(t, lists.Founded, 1)
	assert.True(t, lists.Founded[0].IsFounder)
	require.Len(t, lists.Following, 1)
	assert.True(t, lists.Following[0].IsFollowing)
	require.NotNil(t, lists.Following[0].JoinedAt)
	assert.Equal(t, 2024, lists.Following[0].JoinedAt.Year())
	assert.Equal(t, models.CommunityStatistics{FoundedCount: 1, FollowingCount: 1}, lists.Statistics)
}

func TestFetchUserCommunitiesFailureKeepsLists(t *testing.T) {
	f := newFakeAPI(t)
	var failing atomic.Bool
	f.handle("GET /api/communities/mine", func(w http.ResponseWriter, r *http.Request) {
		if !failing.Load() {
			respond(w, http.StatusOK, mineBody)
			return
		}
		respond(w, http.StatusInternalServerError, `{"message":"try later"}`)
	})
	app := communityApp(t, f)
	ctx := context.Background()

	require.NoError(t, app.Community.FetchUserCommunities(ctx))
	failing.Store(true)
	require.Error(t, app.Community.FetchUserCommunities(ctx))

	lists := app.Community.Snapshot().UserCommunities
	assert.Len(t, lists.Following, 1)
	assert.Equal(t, "try later", lists.Error)
}

func TestBecomeCreatorIsOneWay(t *testing.T) {
	f := newFakeAPI(t)
	f.reply("GET /api/communities/c1", http.StatusOK, communityC1)
	f.reply("POST /api/communities/c1/become-creator", http.StatusOK, `{"message":"You are now a creator"}`)
	app := communityApp(t, f)
	ctx := context.Background()

	require.NoError(t, app.Community.FetchCommunityByID(ctx, "c1"))
	require.NoError(t, app.Community.BecomeCreator(ctx, "c1"))
	require.NoError(t, app.Community.BecomeCreator(ctx, "c1"))

	state := app.Community.Snapshot()
	assert.True(t, state.Current.Data.IsCreator)
	assert.Equal(t, 3, state.Current.Data.CreatorsCount)
	require.Len(t, state.UserCommunities.Creator, 1)
	assert.Equal(t, "c1", state.UserCommunities.Creator[0].Id)
	assert.Equal(t, 1, state.UserCommunities.Statistics.CreatorCount)
}

func TestActionFailureAndClear(t *testing.T) {
	f := newFakeAPI(t)
	f.reply("GET /api/communities/c1", http.StatusOK, communityC1)
	f.reply("POST /api/communities/c1/follow", http.StatusForbidden, `{"message":"Not allowed"}`)
	app := communityApp(t, f)
	ctx := context.Background()

	require.NoError(t, app.Community.FetchCommunityByID(ctx, "c1"))
	require.Error(t, app.Community.ToggleFollowCommunity(ctx, "c1"))

	state := app.Community.Snapshot()
	assert.Equal(t, "Not allowed", state.Action.Error)
	assert.False(t, state.Current.Data.IsFollowing)
	assert.Equal(t, 10, state.Current.Data.FollowersCount)

	app.Community.ClearActionStatus()
	assert.Equal(t, ActionStatus{}, app.Community.Snapshot().Action)
}

func TestCreateCommunityRefreshesLists(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("POST /api/communities", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Founded", r.FormValue("name"))
		respond(w, http.StatusCreated, `{"data":{"_id":"f1","name":"Founded"}}`)
	})
	f.reply("GET /api/communities/mine", http.StatusOK, mineBody)
	app := communityApp(t, f)

	require.NoError(t, app.Community.CreateCommunity(context.Background(), models.NewCommunity{
		Name: "Founded",
		Cost: "10",
		ProfilePhoto: &models.Upload{
			FileName:    "logo.png",
			ContentType: "image/png",
			Data:        []byte{1},
		},
	}))

	state := app.Community.Snapshot()
	assert.True(t, state.Action.Success)
	assert.Equal(t, "Community created successfully!", state.Action.Message)
	assert.Equal(t, 1, f.count("GET /api/communities/mine"))
	require.Len(t, state.UserCommunities.Founded, 1)
	assert.Equal(t, "f1", state.UserCommunities.Founded[0].Id)
}

func TestCreateCommunityRejectsBadPhoto(t *testing.T) {
	f := newFakeAPI(t)
	app := communityApp(t, f)

	err := app.Community.CreateCommunity(context.Background(), models.NewCommunity{
		Name:         "X",
		ProfilePhoto: &models.Upload{FileName: "a.svg", ContentType: "image/svg+xml"},
	})

	assert.True(t, validation.IsValidationError(err))
	assert.Equal(t, 0, f.count("POST /api/communities"))
	assert.NotEmpty(t, app.Community.Snapshot().Action.Error)
}

func TestActionsRejectEmptyIdLocally(t *testing.T) {
	f := newFakeAPI(t)
	app := communityApp(t, f)
	ctx := context.Background()

	err := app.Community.ToggleFollowCommunity(ctx, "")
	assert.True(t, validation.IsValidationError(err))
	err = app.Community.BecomeCreator(ctx, "")
	assert.True(t, validation.IsValidationError(err))

	assert.Equal(t, 0, f.count("POST /api/communities//follow"))
	assert.Equal(t, 0, f.count("POST /api/communities//become-creator"))
	assert.Equal(t, "Community id is required", app.Community.Snapshot().Action.Error)
}

func TestBecomeCreatorOnUnknownCommunityRefreshesLists(t *testing.T) {
	f := newFakeAPI(t)
	f.reply("POST /api/communities/c9/become-creator", http.StatusOK, `{"message":"You are now a creator"}`)
	f.reply("GET /api/communities/mine", http.StatusOK, `{"data":{
		"founded":[],
		"creator":[{"_id":"c9","name":"Poetry","creatorsCount":4}],
		"following":[]}}`)
	app := communityApp(t, f)

	require.NoError(t, app.Community.BecomeCreator(context.Background(), "c9"))

	state := app.Community.Snapshot()
	assert.Equal(t, 1, f.count("GET /api/communities/mine"))
	require.Len(t, state.UserCommunities.Creator, 1)
	assert.Equal(t, "Poetry", state.UserCommunities.Creator[0].Name)
	assert.Equal(t, 4, state.UserCommunities.Creator[0].CreatorsCount)
	assert.True(t, state.Action.Success)
}

func TestToggleFollowOnUnknownCommunityRefreshesLists(t *testing.T) {
	f := newFakeAPI(t)
	f.reply("POST /api/communities/c2/follow", http.StatusOK, `{"message":"Followed"}`)
	f.reply("GET /api/communities/mine", http.StatusOK, mineBody)
	app := communityApp(t, f)

	require.NoError(t, app.Community.ToggleFollowCommunity(context.Background(), "c2"))

	state := app.Community.Snapshot()
	assert.Equal(t, 1, f.count("GET /api/communities/mine"))
	assert.Equal(t, []string{"c2"}, followingIds(state))
	assert.Equal(t, "Go", state.UserCommunities.Following[0].Name)
}
