package app

import (
	"testing"

	"shoplist/internal/config"
	"shoplist/internal/database/dbtest"
	"shoplist/internal/shopping"
	"shoplist/internal/shoppingapi"
)

func TestNewBackend(t *testing.T) {
	db := dbtest.New(t)

	t.Run("Local", func(t *testing.T) {
		b, err := NewBackend(&config.Config{}, db)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if _, ok := b.(*shopping.Repository); !ok {
			t.Errorf("Expected a repository, got %T", b)
		}
	})

	t.Run("Remote", func(t *testing.T) {
		b, err := NewBackend(&config.Config{APIURL: "http://localhost:3001/api"}, db)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if _, ok := b.(*shoppingapi.Client); !ok {
			t.Errorf("Expected an API client, got %T", b)
		}
	})

	t.Run("InvalidKey", func(t *testing.T) {
		_, err := NewBackend(&config.Config{APIURL: "http://localhost:3001/api", APIKey: "nocolon"}, db)
		if err == nil {
			t.Fatal("Expected an error for an invalid API key, got nil")
		}
	})
}
