package storefront_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenseam/storefront/internal/identity"
	"github.com/greenseam/storefront/internal/reviews"
)

func TestReviewsAPI_CreateRequiresAuth(t *testing.T) {
	srv := newTestServer(t, identity.Guest{})
	client := newTestClient(t)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/products/1/reviews", map[string]any{
		"rating":  5,
		"title":   "Great wallet",
		"comment": "Holds up well.",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestReviewsAPI_ListIsPublic(t *testing.T) {
	srv := newTestServer(t, identity.Guest{})
	client := newTestClient(t)

	resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/products/1/reviews", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Reviews []reviews.Review `json:"reviews"`
		Count   int              `json:"count"`
	}
	decodeBody(t, resp, &body)
	assert.Empty(t, body.Reviews)
	assert.Zero(t, body.Count)
}

func TestReviewsAPI_UnknownProduct(t *testing.T) {
	srv := newTestServer(t, identity.Guest{})
	client := newTestClient(t)

	resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/products/999/reviews", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReviewsAPI_CreateAndList(t *testing.T) {
	srv := newTestServer(t, identity.Static{User: identity.User{ID: "u-1", Email: "avery@example.com"}})
	client := newTestClient(t)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/products/1/reviews", map[string]any{
		"rating":  4,
		"title":   "Solid wallet",
		"comment": "Leather feels sturdy.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created reviews.Review
	decodeBody(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "avery", created.Author)
	assert.Equal(t, 4, created.Rating)

	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/products/1/reviews", map[string]any{
		"rating":  5,
		"title":   "Even better the second time",
		"comment": "Bought another as a gift.",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, client, http.MethodGet, srv.URL+"/api/products/1/reviews", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Reviews       []reviews.Review `json:"reviews"`
		Count         int              `json:"count"`
		AverageRating string           `json:"average_rating"`
	}
	decodeBody(t, resp, &body)
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "Even better the second time", body.Reviews[0].Title)
	assert.Equal(t, "4.5", body.AverageRating)
}

func TestReviewsAPI_ValidationErrors(t *testing.T) {
	srv := newTestServer(t, identity.Static{User: identity.User{ID: "u-1", Email: "avery@example.com"}})
	client := newTestClient(t)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/products/1/reviews", map[string]any{
		"rating": 0,
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Error struct {
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "Rating must be between 1 and 5", body.Error.Fields["rating"])
	assert.Equal(t, "This field is required", body.Error.Fields["title"])
}
