package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/listoflists/go-survey-backend/internal/domain"
	"github.com/listoflists/go-survey-backend/internal/services"
)

func TestListFriends_ReturnsBuckets(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := newTestHandlers(fakes{friend: fakeFriendSvc{
		list: func(ctx context.Context, acting string) (*services.FriendsView, error) {
			if acting != "alice" {
				t.Fatalf("acting user = %q", acting)
			}
			return &services.FriendsView{
				Friends:  []string{"bob"},
				Incoming: []string{"charlie"},
				Outgoing: []string{"dora"},
			}, nil
		},
	}})
	u := &domain.User{ID: 1, Username: "alice"}
	r := gin.New()
	r.GET("/friends", loggedIn(u), h.ListFriends)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/friends", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d body=%s", w.Code, w.Body.String())
	}
	var view services.FriendsView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Friends) != 1 || view.Friends[0] != "bob" {
		t.Fatalf("friends bucket: %v", view.Friends)
	}
	if len(view.Incoming) != 1 || view.Incoming[0] != "charlie" {
		t.Fatalf("incoming bucket: %v", view.Incoming)
	}
	if len(view.Outgoing) != 1 || view.Outgoing[0] != "dora" {
		t.Fatalf("outgoing bucket: %v", view.Outgoing)
	}
}

func TestRequestFriend_ForwardsTrimmedName(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotActing, gotOther string
	h := newTestHandlers(fakes{friend: fakeFriendSvc{
		requestOrConfirm: func(ctx context.Context, acting, theirName string) error {
			gotActing, gotOther = acting, theirName
			return nil
		},
	}})
	u := &domain.User{ID: 1, Username: "alice"}
	r := gin.New()
	r.POST("/friends", loggedIn(u), h.RequestFriend)

	w := httptest.NewRecorder()
	body := `{"username":"  bob  "}`
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/friends", bytes.NewBufferString(body)))

	if w.Code != http.StatusNoContent {
		t.Fatalf("request -> %d body=%s", w.Code, w.Body.String())
	}
	if gotActing != "alice" || gotOther != "bob" {
		t.Fatalf("names lost: acting=%q other=%q", gotActing, gotOther)
	}
}

func TestRequestFriend_Errors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	u := &domain.User{ID: 1, Username: "alice"}

	// Malformed body
	{
		h := newTestHandlers(fakes{})
		r := gin.New()
		r.POST("/friends", loggedIn(u), h.RequestFriend)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/friends", bytes.NewBufferString("{}")))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("missing username -> %d", w.Code)
		}
	}

	// Unknown account
	{
		h := newTestHandlers(fakes{friend: fakeFriendSvc{
			requestOrConfirm: func(ctx context.Context, acting, theirName string) error {
				return services.ErrNotFound
			},
		}})
		r := gin.New()
		r.POST("/friends", loggedIn(u), h.RequestFriend)

		w := httptest.NewRecorder()
		body := `{"username":"nobody"}`
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/friends", bytes.NewBufferString(body)))
		if w.Code != http.StatusNotFound {
			t.Fatalf("unknown user -> %d", w.Code)
		}
	}

	// Self-friendship
	{
		h := newTestHandlers(fakes{friend: fakeFriendSvc{
			requestOrConfirm: func(ctx context.Context, acting, theirName string) error {
				return services.ErrInvalidInput
			},
		}})
		r := gin.New()
		r.POST("/friends", loggedIn(u), h.RequestFriend)

		w := httptest.NewRecorder()
		body := `{"username":"alice"}`
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/friends", bytes.NewBufferString(body)))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("self request -> %d", w.Code)
		}
	}
}

func TestRemoveFriend_NameFromPath(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotOther string
	h := newTestHandlers(fakes{friend: fakeFriendSvc{
		remove: func(ctx context.Context, acting, theirName string) error {
			gotOther = theirName
			return nil
		},
	}})
	u := &domain.User{ID: 1, Username: "alice"}
	r := gin.New()
	r.DELETE("/friends/:username", loggedIn(u), h.RemoveFriend)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/friends/bob", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("remove -> %d", w.Code)
	}
	if gotOther != "bob" {
		t.Fatalf("other = %q", gotOther)
	}
}

