package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shoplist/internal/config"
	"shoplist/internal/database/dbtest"
	"shoplist/internal/shopping"
	"shoplist/internal/shoppingapi"
)

const testKey = "server:000102030405060708090a0b0c0d0e0f"

func newTestServer(t *testing.T, withKey bool) *httptest.Server {
	t.Helper()

	var key *shoppingapi.Key
	if withKey {
		k, err := shoppingapi.ParseKey(testKey)
		if err != nil {
			t.Fatalf("Failed to parse key: %v", err)
		}
		key = &k
	}

	srv := httptest.NewServer(New(shopping.NewRepository(dbtest.New(t)), key).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t, false)

	t.Run("Health", func(t *testing.T) {
		resp := do(t, http.MethodGet, srv.URL+"/health", "")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected 200, got %d", resp.StatusCode)
		}
	})

	var fruit shopping.Category
	t.Run("CreateCategory", func(t *testing.T) {
		resp := do(t, http.MethodPost, srv.URL+"/api/categories", `{"name":"Fruit"}`)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&fruit); err != nil {
			t.Fatalf("Failed to decode category: %v", err)
		}
		if fruit.ID == "" || fruit.Name != "Fruit" {
			t.Errorf("Unexpected category: %+v", fruit)
		}
	})

	t.Run("CreateCategoryBlank", func(t *testing.T) {
		resp := do(t, http.MethodPost, srv.URL+"/api/categories", `{"name":"  "}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("InvalidBody", func(t *testing.T) {
		resp := do(t, http.MethodPost, srv.URL+"/api/shopping-lists", `{`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", resp.StatusCode)
		}
	})

	var created shopping.ShoppingList
	t.Run("CreateListWithStoredShape", func(t *testing.T) {
		body := `{"name":"Weekly","items":[{"name":"Apple","category":"` + fruit.ID + `","quantity":3}]}`
		resp := do(t, http.MethodPost, srv.URL+"/api/shopping-lists", body)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			t.Fatalf("Failed to decode list: %v", err)
		}
		if len(created.Items) != 1 || created.Items[0].Category != fruit.ID {
			t.Errorf("Unexpected items: %+v", created.Items)
		}
	})

	t.Run("GetList", func(t *testing.T) {
		resp := do(t, http.MethodGet, srv.URL+"/api/shopping-lists/"+created.ID, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		var got shopping.ShoppingList
		if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
			t.Fatalf("Failed to decode list: %v", err)
		}
		if got.Name != "Weekly" || got.Items[0].Quantity != 3 {
			t.Errorf("Unexpected list: %+v", got)
		}
	})

	t.Run("UpdateInvalidItem", func(t *testing.T) {
		body := `{"name":"Weekly","items":[{"name":"Apple","categoryId":"` + fruit.ID + `","quantity":0}]}`
		resp := do(t, http.MethodPut, srv.URL+"/api/shopping-lists/"+created.ID, body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		body := `{"name":"Weekly","items":[]}`
		resp := do(t, http.MethodPut, srv.URL+"/api/shopping-lists/nope", body)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		resp := do(t, http.MethodDelete, srv.URL+"/api/shopping-lists/"+created.ID, "")
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("Expected 204, got %d", resp.StatusCode)
		}
		resp = do(t, http.MethodGet, srv.URL+"/api/shopping-lists/"+created.ID, "")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
		}
	})
}

func TestServer_RequireToken(t *testing.T) {
	srv := newTestServer(t, true)
	key, _ := shoppingapi.ParseKey(testKey)

	t.Run("MissingToken", func(t *testing.T) {
		resp := do(t, http.MethodGet, srv.URL+"/api/categories", "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		token, _ := shoppingapi.NewToken(key, time.Now().Add(-time.Hour))
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/categories", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("HealthIsOpen", func(t *testing.T) {
		resp := do(t, http.MethodGet, srv.URL+"/health", "")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected 200, got %d", resp.StatusCode)
		}
	})
}

// TestServer_SessionOverClient drives a full create then edit flow through
// the HTTP client against the server.
func TestServer_SessionOverClient(t *testing.T) {
	srv := newTestServer(t, true)
	ctx := context.Background()

	client, err := shoppingapi.NewClient(&config.Config{APIURL: srv.URL + "/api", APIKey: testKey})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	fruit, err := client.CreateCategory(ctx, "Fruit")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	s := shopping.NewSession(client)
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	s.SetName("Weekly")
	s.AddItem("Apple", fruit.ID, 2)
	s.AddItem("Apple", fruit.ID, 1)

	list, err := s.Submit(ctx)
	if err != nil {
		t.Fatalf("Failed to submit: %v", err)
	}
	if s.ID() != list.ID {
		t.Errorf("Expected session to adopt id %s, got %s", list.ID, s.ID())
	}

	edit := shopping.NewEditSession(client, list.ID)
	if err := edit.Load(ctx); err != nil {
		t.Fatalf("Failed to load edit session: %v", err)
	}
	if edit.Total() != 3 {
		t.Errorf("Expected total 3, got %d", edit.Total())
	}
	groups := edit.Groups()
	if len(groups) != 1 || groups[0].Category.Name != "Fruit" {
		t.Errorf("Unexpected groups: %+v", groups)
	}

	missing := shopping.NewEditSession(client, "nope")
	err = missing.Load(ctx)
	if !errors.Is(err, shopping.ErrLoad) || !errors.Is(err, shopping.ErrNotFound) {
		t.Errorf("Expected ErrLoad wrapping ErrNotFound, got %v", err)
	}
}
