package ynr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBallotPagePaging(t *testing.T) {
	var gotAuth, gotFirstQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		switch r.URL.Query().Get("page") {
		case "":
			gotFirstQuery = r.URL.RawQuery
			_ = json.NewEncoder(w).Encode(map[string]any{
				"count": 2,
				"next":  "http://" + r.Host + "/api/next/ballots/?page=2",
				"results": []map[string]any{
					{"ballot_paper_id": "local.sheffield.ecclesall.2023-05-04"},
				},
			})
		case "2":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"count": 2,
				"next":  "",
				"results": []map[string]any{
					{"ballot_paper_id": "local.sheffield.crookes.2023-05-04"},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(Opts{BaseURL: srv.URL, APIKey: "sekrit", PageSize: 25})

	since := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	first, err := c.BallotPage(context.Background(), "", &since)
	require.NoError(t, err)

	assert.Equal(t, "Token sekrit", gotAuth)
	assert.Contains(t, gotFirstQuery, "page_size=25")
	assert.Contains(t, gotFirstQuery, "last_updated=2023-04-01T12%3A00%3A00Z")

	require.Len(t, first.Results, 1)
	assert.Equal(t, "local.sheffield.ecclesall.2023-05-04", first.Results[0].BallotPaperID)
	require.NotEmpty(t, first.Next)

	second, err := c.BallotPage(context.Background(), first.Next, nil)
	require.NoError(t, err)
	require.Len(t, second.Results, 1)
	assert.Empty(t, second.Next)
}

func TestBallotPageUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Opts{BaseURL: srv.URL})
	_, err := c.BallotPage(context.Background(), "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestDateUnmarshal(t *testing.T) {
	var got struct {
		Registered   *Date `json:"date_registered"`
		Deregistered *Date `json:"date_deregistered"`
		Poll         Date  `json:"election_date"`
	}
	raw := `{"date_registered":"1998-11-13","date_deregistered":null,"election_date":"2023-05-04"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &got))

	require.NotNil(t, got.Registered)
	assert.Equal(t, 1998, got.Registered.Year())
	assert.Nil(t, got.Deregistered)
	assert.Equal(t, time.Date(2023, 5, 4, 0, 0, 0, 0, time.UTC), got.Poll.Time)
}

func TestHustingsFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				"ballot_paper_id": "local.sheffield.ecclesall.2023-05-04",
				"title":           "Ecclesall hustings",
				"starts":          "2023-04-20T19:00:00Z",
			},
		})
	}))
	defer srv.Close()

	c := New(Opts{BaseURL: srv.URL})
	feed, err := c.Hustings(context.Background(), srv.URL+"/hustings.json")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "Ecclesall hustings", feed[0].Title)
	assert.Equal(t, 19, feed[0].Starts.Hour())
}
