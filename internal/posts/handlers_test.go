package posts

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ShaileshBisht/DecentraLink/internal/auth"
	"github.com/ShaileshBisht/DecentraLink/internal/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

// echoTokens treats the bearer token itself as the wallet address.
type echoTokens struct{}

func (echoTokens) Validate(token string) (string, error) {
	if token == "bad" {
		return "", errors.New("bad token")
	}
	return token, nil
}

func newPostsApp(svc *Service) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app.Group("/posts"), svc, auth.RequireWallet(echoTokens{}), auth.OptionalWallet(echoTokens{}))
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func TestPostsHandlersCreateAndList(t *testing.T) {
	svc, mock, _ := newMockService(t)
	app := newPostsApp(svc)

	createdAt := time.Now()
	expectEnsureUser(mock, walletA)
	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs(walletA, "hello").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), createdAt))

	resp := doRequest(t, app, http.MethodPost, "/posts", walletA, contentRequest{Content: "hello"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %d", resp.StatusCode)
	}
	var created Post
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil || created.ID != 1 {
		t.Fatalf("decode created: %+v %v", created, err)
	}

	mock.ExpectQuery(`FROM posts p`).
		WithArgs("").
		WillReturnRows(pgxmock.NewRows(feedColumns).AddRow(int64(1), walletA, "hello", createdAt, "", "", 0, 0, false))
	expectNoComments(mock)

	resp = doRequest(t, app, http.MethodGet, "/posts", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %d", resp.StatusCode)
	}
	var list []Post
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil || len(list) != 1 {
		t.Fatalf("decode list: %+v %v", list, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostsHandlersViewerFromToken(t *testing.T) {
	svc, mock, _ := newMockService(t)
	app := newPostsApp(svc)

	mock.ExpectQuery(`FROM posts p`).
		WithArgs(walletB, int64(1)).
		WillReturnRows(pgxmock.NewRows(feedColumns).AddRow(int64(1), walletA, "hello", time.Now(), "", "", 1, 0, true))
	expectNoComments(mock)

	resp := doRequest(t, app, http.MethodGet, "/posts/1", walletB, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status: %d", resp.StatusCode)
	}
	var post Post
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil || !post.HasLiked {
		t.Fatalf("expected has_liked for viewer: %+v %v", post, err)
	}
}

func TestPostsHandlersEngagement(t *testing.T) {
	svc, mock, _ := newMockService(t)
	app := newPostsApp(svc)

	expectPostExists(mock, 1, true)
	expectEnsureUser(mock, walletB)
	mock.ExpectQuery(`INSERT INTO likes`).
		WithArgs(int64(1), walletB).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	if resp := doRequest(t, app, http.MethodPost, "/posts/1/like", walletB, nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("like status: %d", resp.StatusCode)
	}

	expectPostExists(mock, 1, true)
	expectEnsureUser(mock, walletB)
	mock.ExpectQuery(`INSERT INTO likes`).
		WithArgs(int64(1), walletB).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}))
	if resp := doRequest(t, app, http.MethodPost, "/posts/1/like", walletB, nil); resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate like status: %d", resp.StatusCode)
	}

	expectPostExists(mock, 1, true)
	mock.ExpectExec(`DELETE FROM likes`).
		WithArgs(int64(1), walletB).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	resp := doRequest(t, app, http.MethodDelete, "/posts/1/like", walletB, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unlike status: %d", resp.StatusCode)
	}
	var unliked map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&unliked); err != nil || unliked["message"] != "Post unliked successfully" {
		t.Fatalf("unexpected unlike body: %v %v", unliked, err)
	}

	expectPostExists(mock, 1, true)
	expectEnsureUser(mock, walletB)
	mock.ExpectQuery(`INSERT INTO comments`).
		WithArgs(int64(1), walletB, "nice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), time.Now()))
	if resp := doRequest(t, app, http.MethodPost, "/posts/1/comment", walletB, contentRequest{Content: "nice"}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("comment status: %d", resp.StatusCode)
	}

	expectPostExists(mock, 1, true)
	mock.ExpectQuery(`SELECT post_id, wallet_address FROM comments`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"post_id", "wallet_address"}).AddRow(int64(1), walletB))
	mock.ExpectExec(`DELETE FROM comments`).
		WithArgs(int64(3), int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	resp = doRequest(t, app, http.MethodDelete, "/posts/1/comments/3", walletB, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete comment status: %d", resp.StatusCode)
	}
	var deleted map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&deleted); err != nil || deleted["message"] != "Comment deleted successfully" {
		t.Fatalf("unexpected delete comment body: %v %v", deleted, err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT wallet_address FROM posts`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"wallet_address"}).AddRow(walletA))
	mock.ExpectRollback()
	if resp := doRequest(t, app, http.MethodDelete, "/posts/1", walletB, nil); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign delete status: %d", resp.StatusCode)
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT wallet_address FROM posts`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"wallet_address"}).AddRow(walletA))
	mock.ExpectExec(`DELETE FROM likes`).WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM comments`).WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM posts`).WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()
	resp = doRequest(t, app, http.MethodDelete, "/posts/1", walletA, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("author delete status: %d", resp.StatusCode)
	}
	var removed map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&removed); err != nil || removed["message"] != "Post deleted successfully" {
		t.Fatalf("unexpected delete post body: %v %v", removed, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostsHandlersBadRequest(t *testing.T) {
	app := newPostsApp(NewService(nil, nil, logging.Nop()))

	cases := []struct {
		method, path string
		body         any
		want         int
	}{
		{http.MethodPost, "/posts", contentRequest{}, http.StatusBadRequest},
		{http.MethodGet, "/posts/abc", nil, http.StatusBadRequest},
		{http.MethodPost, "/posts/0/like", nil, http.StatusBadRequest},
		{http.MethodDelete, "/posts/x/like", nil, http.StatusBadRequest},
		{http.MethodPost, "/posts/-1/comment", contentRequest{Content: "hi"}, http.StatusBadRequest},
		{http.MethodDelete, "/posts/1/comments/nope", nil, http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp := doRequest(t, app, tc.method, tc.path, walletA, tc.body)
		if resp.StatusCode != tc.want {
			t.Fatalf("%s %s: expected %d got %d", tc.method, tc.path, tc.want, resp.StatusCode)
		}
	}
}

func TestPostsHandlersRequireToken(t *testing.T) {
	app := newPostsApp(NewService(nil, nil, logging.Nop()))

	if resp := doRequest(t, app, http.MethodPost, "/posts", "", contentRequest{Content: "hi"}); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	if resp := doRequest(t, app, http.MethodDelete, "/posts/1", "bad", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", resp.StatusCode)
	}
}

func TestPostsHandlersInternalError(t *testing.T) {
	svc, mock, _ := newMockService(t)
	app := newPostsApp(svc)

	mock.ExpectQuery(`FROM posts p`).WithArgs("").WillReturnError(errors.New("db down"))
	resp := doRequest(t, app, http.MethodGet, "/posts", "", nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}
