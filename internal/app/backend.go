package app

import (
	"database/sql"
	"log"

	"shoplist/internal/config"
	"shoplist/internal/shopping"
	"shoplist/internal/shoppingapi"
)

// NewBackend returns the remote API client when SHOPLIST_API_URL is set and
// the local database repository otherwise.
func NewBackend(cfg *config.Config, db *sql.DB) (shopping.Backend, error) {
	if cfg.APIURL == "" {
		log.Printf("Using local database %s", cfg.DatabasePath)
		return shopping.NewRepository(db), nil
	}

	client, err := shoppingapi.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("Using shopping list API at %s", cfg.APIURL)
	return client, nil
}
