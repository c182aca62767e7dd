package tests_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/lithammer/shortuuid/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mamajin/Event-Reservation-sub000/config"
	"github.com/Mamajin/Event-Reservation-sub000/db"
	"github.com/Mamajin/Event-Reservation-sub000/service"
)

const baseURL = "http://localhost:8080"

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR is not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() {
		assert.NoError(t, rdb.Close())
	})
	return rdb
}

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()

	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL is not set")
	}

	dbConn, err := sqlx.Open("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, dbConn.Close())
	})

	require.NoError(t, db.InitialiseDB(context.Background(), dbConn))
	return dbConn
}

func startService(t *testing.T, rdb *redis.Client, dbConn *sqlx.DB, transport *MockTransport) {
	t.Helper()

	cfg := config.Config{
		HTTPAddr:            ":8080",
		NotificationTimeout: time.Second,
		Reminder: config.Reminder{
			Cron:     "0 * * * *",
			Location: time.UTC,
		},
	}

	svc, err := service.New(cfg, watermill.NewStdLogger(false, false), rdb, dbConn, transport, clockwork.NewRealClock())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	waitForHttpServer(t)
}

func waitForHttpServer(t *testing.T) {
	t.Helper()

	require.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			resp, err := http.Get(baseURL + "/health")
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()

			assert.Less(t, resp.StatusCode, 300, "API not ready, http status: %d", resp.StatusCode)
		},
		time.Second*10,
		time.Millisecond*50,
	)
}

// send returns the response status and decodes the body into out when out is not nil.
func send(t *testing.T, method, path, userID string, body any, out any) int {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, baseURL+path, bytes.NewReader(payload))
	require.NoError(t, err)

	req.Header.Set("Correlation-ID", shortuuid.New())
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("User-ID", userID)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

type attendee struct {
	ID    string `json:"attendee_id"`
	Email string `json:"email"`
}

func createAttendee(t *testing.T, name string) attendee {
	t.Helper()

	var a attendee
	email := strings.ToLower(name) + "-" + shortuuid.New() + "@example.com"
	code := send(t, http.MethodPost, "/attendees", "", map[string]string{
		"email":      email,
		"name":       name,
		"birth_date": "1990-01-01",
	}, &a)
	require.Equal(t, http.StatusCreated, code)
	return a
}

func assertEmailSent(t *testing.T, transport *MockTransport, to, subjectPart string) {
	t.Helper()

	assert.EventuallyWithT(
		t,
		func(collectT *assert.CollectT) {
			var subjects []string
			for _, e := range transport.SentTo(to) {
				subjects = append(subjects, e.Subject)
				if strings.Contains(e.Subject, subjectPart) {
					return
				}
			}
			collectT.Errorf("no email with subject containing %q sent to %s, got %v", subjectPart, to, subjects)
		},
		10*time.Second,
		100*time.Millisecond,
	)
}
