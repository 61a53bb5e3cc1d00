package dummy

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

type ServerConfig struct {
	Port int
}

// row shapes the dummy result payload so its byte size scales with the
// requested limit, like a real query endpoint.
type row struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

func Start(cfg ServerConfig) {
	mux := http.NewServeMux()

	// /query?limit=N: latency grows with the result size plus jitter.
	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		limit := parseLimit(r)
		delay := 5*time.Millisecond +
			time.Duration(limit)*200*time.Microsecond +
			time.Duration(rand.Intn(10))*time.Millisecond
		time.Sleep(delay)
		writeRows(w, limit)
	})

	// /flaky?limit=N: same payload, random 429/500 responses.
	mux.HandleFunc("/flaky", func(w http.ResponseWriter, r *http.Request) {
		limit := parseLimit(r)
		time.Sleep(time.Duration(rand.Intn(30)+10) * time.Millisecond)

		rnd := rand.Float32()
		if rnd < 0.2 {
			http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
			return
		} else if rnd < 0.4 {
			http.Error(w, "429 Too Many Requests", http.StatusTooManyRequests)
			return
		}
		writeRows(w, limit)
	})

	// /slow stalls for seconds, good for exercising the call timeout.
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Duration(rand.Intn(2000)+1000) * time.Millisecond)
		writeRows(w, parseLimit(r))
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	fmt.Printf("Dummy query server running on http://localhost%s\n", addr)
	fmt.Println("   Endpoints: /query, /flaky, /slow (all take ?limit=N)")

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server failed: %v\n", err)
		}
	}()
}

func parseLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		return 1
	}
	return limit
}

func writeRows(w http.ResponseWriter, limit int) {
	rows := make([]row, limit)
	for i := range rows {
		rows[i] = row{
			ID:    i + 1,
			Name:  fmt.Sprintf("row-%d", i+1),
			Value: "0123456789abcdef0123456789abcdef",
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}
