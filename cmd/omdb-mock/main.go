package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
)

type ratingSource struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

type movieEntry struct {
	Title      string         `json:"Title"`
	Year       string         `json:"Year"`
	ImdbRating string         `json:"imdbRating"`
	ImdbVotes  string         `json:"imdbVotes"`
	Ratings    []ratingSource `json:"Ratings"`
}

func main() {
	var (
		port = flag.String("port", "9099", "port to listen on")
		data = flag.String("data", "mock-omdb.json", "path to mock data file")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}

	var payload map[string]movieEntry
	if err := json.Unmarshal(file, &payload); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		title := r.URL.Query().Get("t")
		entry, ok := payload[title]
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			// Upstream signals a miss inside a 200 payload.
			_ = json.NewEncoder(w).Encode(map[string]string{
				"Response": "False",
				"Error":    "Movie not found!",
			})
			return
		}
		if err := json.NewEncoder(w).Encode(entry); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	addr := ":" + *port
	log.Printf("mock omdb listening on %s (%d entries)", addr, len(payload))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
