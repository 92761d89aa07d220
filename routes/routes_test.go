package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirp/auth"
	"chirp/content"
	"chirp/counter"
	"chirp/engagement"
	"chirp/feed"
	"chirp/handlers"
	"chirp/search"
	"chirp/social"
	"chirp/store/memstore"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := memstore.New()
	tokens := auth.NewJWTIssuer("test-secret", time.Hour)
	counters := counter.NewLedger(s)
	graph := social.NewGraph(s, nil)

	api := &handlers.API{
		Accounts:   auth.NewAccounts(s, tokens, auth.BcryptHasher{}, nil),
		Content:    content.NewService(s, counters, nil),
		Engagement: engagement.NewService(s, counters, nil),
		Graph:      graph,
		Feed:       feed.NewAssembler(s, graph, nil),
		Search:     search.NewIndex(s),
		Store:      s,
	}
	return SetupRouter(api, tokens)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/register", "",
		`{"username":"`+username+`","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterLoginFlow(t *testing.T) {
	router := newTestRouter(t)

	register(t, router, "alice")

	w := doJSON(t, router, http.MethodPost, "/api/login", "",
		`{"username":"alice","password":"hunter22"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/login", "",
		`{"username":"alice","password":"wrongpass"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/register", "",
		`{"username":"alice","password":"hunter22"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPostLikeFeedFlow(t *testing.T) {
	router := newTestRouter(t)

	aliceToken := register(t, router, "alice")
	bobToken := register(t, router, "bob")

	w := doJSON(t, router, http.MethodPost, "/api/posts", aliceToken,
		`{"body":"first post"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var post struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))

	// anonymous creation is rejected
	w = doJSON(t, router, http.MethodPost, "/api/posts", "", `{"body":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/posts/"+post.ID+"/like", bobToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	var liked struct {
		AmtLikes int `json:"amtLikes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &liked))
	assert.Equal(t, 1, liked.AmtLikes)

	// feed is public
	w = doJSON(t, router, http.MethodGet, "/api/posts?filter=LATEST", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var posts []struct {
		ID       string `json:"id"`
		AmtLikes int    `json:"amtLikes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, 1, posts[0].AmtLikes)

	// bob cannot delete alice's post
	w = doJSON(t, router, http.MethodDelete, "/api/posts/"+post.ID, bobToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/posts/"+post.ID, aliceToken, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFollowingFeedOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	aliceToken := register(t, router, "alice")
	bobToken := register(t, router, "bob")
	register(t, router, "carol")

	w := doJSON(t, router, http.MethodPost, "/api/posts", bobToken, `{"body":"from bob"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// following feed needs a viewer
	w = doJSON(t, router, http.MethodGet, "/api/posts?filter=FOLLOWING", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// alice follows bob, then sees bob's post
	w = doJSON(t, router, http.MethodPost, "/api/users/bob/follow", aliceToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/posts?filter=FOLLOWING", aliceToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	var posts []struct {
		Author string `json:"author"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "bob", posts[0].Author)
}

func TestSearchOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	aliceToken := register(t, router, "alice")
	w := doJSON(t, router, http.MethodPost, "/api/posts", aliceToken, `{"body":"searchable text"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/search?q=alice", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var results []struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	// username match plus the author match on the post, users first
	require.Len(t, results, 2)
	assert.Equal(t, "User", results[0].Type)
	assert.Equal(t, "Post", results[1].Type)
}
