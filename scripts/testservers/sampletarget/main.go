// Command sampletarget runs a small HTTP server with tunable latency and
// failure behavior, something to aim lagtap at while trying it out.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func main() {
	port := flag.Int("port", 8080, "Listening port")
	flag.Parse()

	if *port <= 0 {
		log.Fatalf("port must be > 0")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", handleOK)
	mux.HandleFunc("/slow", handleSlow)
	mux.HandleFunc("/status/", handleStatus)
	mux.HandleFunc("/flaky", handleFlaky)
	mux.HandleFunc("/echo", handleEcho)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{"ok": true, "path": r.URL.Path})
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("sample target listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}

func handleOK(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleSlow sleeps for ms milliseconds, plus up to jitter-ms extra, before
// responding. Good for driving visible latency percentiles.
func handleSlow(w http.ResponseWriter, r *http.Request) {
	ms := queryInt(r, "ms", 100)
	jitter := queryInt(r, "jitter-ms", 0)

	delay := time.Duration(ms) * time.Millisecond
	if jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(jitter))) * time.Millisecond
	}
	time.Sleep(delay)

	respondJSON(w, http.StatusOK, map[string]any{"ok": true, "delay_ms": delay.Milliseconds()})
}

// handleStatus responds with the status code named in the path, e.g.
// /status/503.
func handleStatus(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/status/")
	code, err := strconv.Atoi(raw)
	if err != nil || code < 100 || code > 599 {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "status code must be 100-599"})
		return
	}
	respondJSON(w, code, map[string]any{"status": code})
}

// handleFlaky fails with 500 at the probability given by the rate query
// parameter, a float in [0, 1].
func handleFlaky(w http.ResponseWriter, r *http.Request) {
	rate := 0.1
	if raw := r.URL.Query().Get("rate"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			respondJSON(w, http.StatusBadRequest, map[string]any{"error": "rate must be in [0, 1]"})
			return
		}
		rate = parsed
	}

	if rand.Float64() < rate {
		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": "injected failure"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func handleEcho(w http.ResponseWriter, r *http.Request) {
	body := ""
	if r.Body != nil {
		bodyBytes, _ := io.ReadAll(r.Body)
		body = string(bodyBytes)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"method":       r.Method,
		"path":         r.URL.Path,
		"query":        r.URL.RawQuery,
		"headers":      r.Header,
		"body":         body,
		"content_type": r.Header.Get("Content-Type"),
		"timestamp":    time.Now().UnixNano(),
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return fallback
	}
	return val
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
