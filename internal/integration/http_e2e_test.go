//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"travel_cms/internal/adapters/blob"
	"travel_cms/internal/adapters/cmsclient"
	httpserver "travel_cms/internal/adapters/http_server"
	redisad "travel_cms/internal/adapters/redis"
	"travel_cms/internal/adapters/session"
	"travel_cms/internal/app"
	"travel_cms/internal/domain"
	mysqlrepo "travel_cms/internal/storage/mysql"
)

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest unavailable: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=travel",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/travel?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// startServer wires the full API the way cmd/api does, on top of MySQL.
func startServer(t *testing.T, db *sql.DB) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	if err := mysqlrepo.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := mysqlrepo.New(db)

	mr := miniredis.RunT(t)
	rc := redisad.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rc.Close() })
	cache := redisad.NewCache(rc)

	blobs, err := blob.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("blobs: %v", err)
	}
	sessions, err := session.NewJWT("e2e-secret-0123456789", time.Hour)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	accounts := app.NewAccountService(repo, sessions)
	if err := accounts.EnsureAdmin(ctx, "admin@example.com", "admin-pass"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}

	s := httpserver.New(10 * time.Second)
	srv := httptest.NewServer(s.Mux())
	t.Cleanup(srv.Close)
	s.MountHandlers(&httpserver.Handlers{
		Content:        app.NewContentService(repo, blobs, cache, srv.URL),
		Query:          app.NewQueryService(repo, cache, time.Minute),
		Uploads:        app.NewUploadService(repo, blobs, redisad.NewTickets(rc), srv.URL, time.Minute),
		Accounts:       accounts,
		Sessions:       sessions,
		MaxUploadBytes: 4 << 20,
	})
	return srv
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestHTTP_EndToEnd_PackageLifecycle(t *testing.T) {
	db := startMySQL(t)
	srv := startServer(t, db)
	ctx := context.Background()

	admin, err := cmsclient.New(srv.URL, 50)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := admin.SignIn(ctx, "admin@example.com", "admin-pass"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	up, err := admin.UploadImage(ctx, pngBytes(t, 64, 48), "image/png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if up.StorageID == "" {
		t.Fatalf("expected storage id")
	}

	// validation errors come back as a list
	err = admin.Post(ctx, "/v1/admin/packages", app.PackageInput{Title: "Mara", Destination: "Mars", ImageID: up.StorageID}, nil)
	if !cmsclient.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var created domain.Package
	in := app.PackageInput{Title: "Masai Mara", Destination: "Kenya", Price: 1200, Days: 5,
		Highlight: []string{"Big five"}, Itinerary: []string{"Day 1"}, ImageID: up.StorageID}
	if err := admin.Post(ctx, "/v1/admin/packages", in, &created); err != nil {
		t.Fatalf("create package: %v", err)
	}
	if created.ID == "" || created.Image != srv.URL+"/media/"+up.StorageID {
		t.Fatalf("unexpected package: %+v", created)
	}

	public, err := cmsclient.New(srv.URL, 50)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	var list []domain.Package
	if err := public.Get(ctx, "/v1/packages", &list); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Masai Mara" || list[0].Days != 5 {
		t.Fatalf("unexpected list: %+v", list)
	}

	resp, err := http.Get(created.Image)
	if err != nil {
		t.Fatalf("get media: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("media: status=%d type=%q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	// anonymous writes are rejected
	err = public.Post(ctx, "/v1/admin/packages", in, nil)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}

	if err := admin.Delete(ctx, "/v1/admin/packages/"+created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := admin.Delete(ctx, "/v1/admin/packages/"+created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: expected not found, got %v", err)
	}

	list = nil
	if err := public.Get(ctx, "/v1/packages", &list); err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(list))
	}
	resp, err = http.Get(created.Image)
	if err != nil {
		t.Fatalf("get media: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("media after delete: status=%d", resp.StatusCode)
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE collection = ?", domain.CollMedia).Scan(&n); err != nil {
		t.Fatalf("count media: %v", err)
	}
	if n != 0 {
		t.Fatalf("media records left behind: %d", n)
	}
}

func TestHTTP_EndToEnd_ServiceSlugsSurviveRestart(t *testing.T) {
	db := startMySQL(t)
	srv := startServer(t, db)
	ctx := context.Background()

	admin, err := cmsclient.New(srv.URL, 50)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := admin.SignIn(ctx, "admin@example.com", "admin-pass"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	for i := 0; i < 2; i++ {
		in := app.ServiceInput{Title: "Airport Transfers", Subtitle: "Door to door", Description: "We pick you up"}
		if err := admin.Post(ctx, "/v1/admin/services", in, nil); err != nil {
			t.Fatalf("create service %d: %v", i, err)
		}
	}

	// second server on the same database sees the same documents
	srv2 := startServer(t, db)
	public, err := cmsclient.New(srv2.URL, 50)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	var svc domain.Service
	if err := public.Get(ctx, "/v1/services/airport-transfers-2", &svc); err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if svc.Slug != "airport-transfers-2" {
		t.Fatalf("unexpected slug %q", svc.Slug)
	}
	err = public.Get(ctx, "/v1/services/airport-transfers-3", &svc)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
