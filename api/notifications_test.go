package api_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/expertlane/matchd/internal/models"
)

func TestNotificationsListAndRead(t *testing.T) {
	srv, repo := setupServer(t)
	ctx := context.Background()

	var firstID int64
	for i := 0; i < 3; i++ {
		id, err := repo.CreateNotification(ctx, &models.Notification{
			AccountID: 7,
			Title:     fmt.Sprintf("note %d", i),
			Body:      "body",
			ActionURL: "/invites",
		})
		if err != nil {
			t.Fatalf("seed notification: %v", err)
		}
		if i == 0 {
			firstID = id
		}
	}
	// a different account's notification must not leak
	if _, err := repo.CreateNotification(ctx, &models.Notification{AccountID: 8, Title: "other", Body: "b"}); err != nil {
		t.Fatalf("seed other notification: %v", err)
	}

	bearer := token(t, 7, models.RoleExpert)

	res := doJSON(t, http.MethodGet, srv.URL+"/v1/notifications", bearer, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", res.StatusCode)
	}
	items := decodeBody(t, res)["items"].([]any)
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}

	res = doJSON(t, http.MethodGet, srv.URL+"/v1/notifications?limit=2", bearer, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("paged list status = %d", res.StatusCode)
	}
	if items := decodeBody(t, res)["items"].([]any); len(items) != 2 {
		t.Fatalf("paged items = %d, want 2", len(items))
	}

	res = doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/notifications/%d/read", srv.URL, firstID), bearer, nil)
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("mark read status = %d", res.StatusCode)
	}

	res = doJSON(t, http.MethodGet, srv.URL+"/v1/notifications", bearer, nil)
	var readCount int
	for _, it := range decodeBody(t, res)["items"].([]any) {
		if it.(map[string]any)["read_at"] != nil {
			readCount++
		}
	}
	if readCount != 1 {
		t.Fatalf("read notifications = %d, want 1", readCount)
	}
}
