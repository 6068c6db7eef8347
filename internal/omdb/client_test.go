package omdb

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewHTTPClient(srv.URL, "testkey", 2*time.Second, 100, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	return client
}

func TestFetchFullPayload(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"Title": "The Dark Knight",
			"imdbRating": "9.0",
			"imdbVotes": "2,654,264",
			"Ratings": [
				{"Source": "Internet Movie Database", "Value": "9.0/10"},
				{"Source": "Rotten Tomatoes", "Value": "94%"}
			]
		}`))
	})

	rating, err := client.Fetch(context.Background(), "The Dark Knight", 2008)
	require.NoError(t, err)

	require.NotNil(t, rating.IMDBScore)
	assert.InDelta(t, 9.0, *rating.IMDBScore, 0.001)
	require.NotNil(t, rating.IMDBVotes)
	assert.Equal(t, int64(2654264), *rating.IMDBVotes)
	require.NotNil(t, rating.RTScore)
	assert.InDelta(t, 94.0, *rating.RTScore, 0.001)

	// Spaces in the title must encode as '+'.
	assert.Contains(t, gotQuery, "t=The+Dark+Knight")
	assert.Contains(t, gotQuery, "y=2008")
	assert.Contains(t, gotQuery, "apikey=testkey")
}

func TestFetchUnmatchedTitle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Response": "False", "Error": "Movie not found!"}`))
	})

	rating, err := client.Fetch(context.Background(), "Nonexistent", 1999)
	require.NoError(t, err)
	assert.Nil(t, rating.IMDBScore)
	assert.Nil(t, rating.IMDBVotes)
	assert.Nil(t, rating.RTScore)
}

func TestFetchUpstreamFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := client.Fetch(context.Background(), "Anything", 2000)
	require.Error(t, err)
}

func TestConvertToRating(t *testing.T) {
	tests := []struct {
		name      string
		payload   apiResponse
		wantScore *float64
		wantVotes *int64
		wantRT    *float64
	}{
		{
			name: "all fields valid",
			payload: apiResponse{
				ImdbRating: "8.5",
				ImdbVotes:  "1,234,567",
				Ratings: []apiSource{
					{Source: "Internet Movie Database", Value: "8.5/10"},
					{Source: "Rotten Tomatoes", Value: "87%"},
				},
			},
			wantScore: f64(8.5),
			wantVotes: i64(1234567),
			wantRT:    f64(87),
		},
		{
			name:      "not available placeholders",
			payload:   apiResponse{ImdbRating: "N/A", ImdbVotes: "N/A"},
			wantScore: nil,
			wantVotes: nil,
			wantRT:    nil,
		},
		{
			name: "missing rotten tomatoes source",
			payload: apiResponse{
				ImdbRating: "7.2",
				ImdbVotes:  "980",
				Ratings: []apiSource{
					{Source: "Internet Movie Database", Value: "7.2/10"},
				},
			},
			wantScore: f64(7.2),
			wantVotes: i64(980),
			wantRT:    nil,
		},
		{
			name: "garbage percentage",
			payload: apiResponse{
				ImdbRating: "6.0",
				ImdbVotes:  "100",
				Ratings: []apiSource{
					{Source: "Internet Movie Database", Value: "6.0/10"},
					{Source: "Rotten Tomatoes", Value: "fresh"},
				},
			},
			wantScore: f64(6.0),
			wantVotes: i64(100),
			wantRT:    nil,
		},
		{
			name:      "empty payload",
			payload:   apiResponse{},
			wantScore: nil,
			wantVotes: nil,
			wantRT:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertToRating(tt.payload)
			assertPtrEqual(t, "IMDBScore", tt.wantScore, got.IMDBScore)
			assertPtrEqual(t, "IMDBVotes", tt.wantVotes, got.IMDBVotes)
			assertPtrEqual(t, "RTScore", tt.wantRT, got.RTScore)
		})
	}
}

func assertPtrEqual[T comparable](t *testing.T, field string, want, got *T) {
	t.Helper()
	switch {
	case want == nil && got != nil:
		t.Fatalf("%s = %v, want nil", field, *got)
	case want != nil && got == nil:
		t.Fatalf("%s = nil, want %v", field, *want)
	case want != nil && *want != *got:
		t.Fatalf("%s = %v, want %v", field, *got, *want)
	}
}

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64 { return &v }
