package httpserver

import (
	"net/url"
	"testing"

	"github.com/lhollands/mediaserver/internal/domain"
)

func TestMetricParam(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    domain.RatingMetric
		wantErr bool
	}{
		{"default", "", domain.MetricIMDB, false},
		{"imdb", "by=IMDB", domain.MetricIMDB, false},
		{"rt", "by=RT", domain.MetricRT, false},
		{"whitespace", "by=+RT+", domain.MetricRT, false},
		{"lowercase rejected", "by=imdb", "", true},
		{"unknown", "by=METACRITIC", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			got, err := metricParam(values)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("metricParam(%q) expected error", tt.query)
				}
				return
			}
			if err != nil {
				t.Fatalf("metricParam(%q) unexpected error: %v", tt.query, err)
			}
			if got != tt.want {
				t.Fatalf("metricParam(%q) = %s, want %s", tt.query, got, tt.want)
			}
		})
	}
}

func TestVerifyBearer(t *testing.T) {
	srv := &Server{}
	srv.cfg.AuthToken = "secret"

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"valid", "Bearer secret", true},
		{"missing", "", false},
		{"wrong scheme", "Basic secret", false},
		{"wrong token", "Bearer nope", false},
		{"extra whitespace", "Bearer  secret ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := srv.verifyBearer(tt.header); got != tt.want {
				t.Fatalf("verifyBearer(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}
