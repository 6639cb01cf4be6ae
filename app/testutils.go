package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fitnova/clubapi/internal/bookingservice"
	"github.com/fitnova/clubapi/internal/common"
	"github.com/fitnova/clubapi/internal/contentservice"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, envelope
}

// capturingProducer records published messages so booking handler tests can
// run without a broker.
type capturingProducer struct {
	published [][]byte
}

func (p *capturingProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	p.published = append(p.published, msg)
	return nil
}

// newTestUpstream serves a minimal content API for handler tests.
func newTestUpstream(t *testing.T) *httptest.Server {
	imageURL := func(host string) string {
		return fmt.Sprintf("http://%s/wp-content/uploads/2025/01/sala-pesi.jpg", host)
	}

	mux := http.NewServeMux()

	slugMiss := func(w http.ResponseWriter, r *http.Request, known string) bool {
		slug := r.URL.Query().Get("slug")
		if slug != "" && slug != known {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `[]`)
			return true
		}
		return false
	}

	mux.HandleFunc("/wp-json/wp/v2/posts", func(w http.ResponseWriter, r *http.Request) {
		if slugMiss(w, r, "apertura-estiva") {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-WP-Total", "1")
		w.Header().Set("X-WP-TotalPages", "1")
		fmt.Fprintf(w, `[{
			"id": 1,
			"slug": "apertura-estiva",
			"title": {"rendered": "Apertura estiva"},
			"content": {"rendered": "<p><img src=\"%s\"></p>"},
			"excerpt": {"rendered": "<p>Orari estivi del club.</p>"}
		}]`, imageURL(r.Host))
	})

	mux.HandleFunc("/wp-json/wp/v2/courses", func(w http.ResponseWriter, r *http.Request) {
		if slugMiss(w, r, "functional-training") {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{
			"id": 10,
			"slug": "functional-training",
			"title": {"rendered": "Functional Training"},
			"acf": {"description": "Allenamento funzionale."}
		}]`)
	})

	mux.HandleFunc("/wp-json/wp/v2/trainers", func(w http.ResponseWriter, r *http.Request) {
		if slugMiss(w, r, "marco-rossi") {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{
			"id": 7,
			"slug": "marco-rossi",
			"title": {"rendered": "Marco Rossi"},
			"acf": {"role": "Personal Trainer"}
		}]`)
	})

	mux.HandleFunc("/wp-json/wp/v2/gallery", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `[{
			"id": 20,
			"slug": "sala-pesi",
			"title": {"rendered": "Sala pesi"},
			"acf": {"image": {"url": %q}}
		}]`, imageURL(r.Host))
	})

	mux.HandleFunc("/wp-json/wp/v2/categories", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id": 3, "name": "Novità", "slug": "novita", "count": 1}]`)
	})

	mux.HandleFunc("/wp-content/uploads/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return ts
}

func newTestApplication(t *testing.T) (*application, *capturingProducer) {
	upstream := newTestUpstream(t)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	contentService, err := contentservice.NewContentService(upstream.URL+"/wp-json", "club", "secret", time.Minute, common.NewCache(), logger)
	assert.NoError(t, err)

	producer := &capturingProducer{}

	cfg := &Config{
		Port:             ":4000",
		Environment:      "test",
		Version:          "1.0.0",
		RevalidateSecret: "test-revalidate-secret",
	}

	app := &application{
		config:         cfg,
		logger:         logger,
		contentService: contentService,
		bookingService: bookingservice.NewBookingService(producer),
	}

	return app, producer
}

func (ts *testServer) post(t *testing.T, path string, data any) (int, http.Header, envelope) {
	jsonPayload, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}

	body := bytes.NewReader(jsonPayload)
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	req.Header.Set("Content-Type", "application/json")
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) get(t *testing.T, path string) (int, http.Header, envelope) {
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}
