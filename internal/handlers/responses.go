package handlers

import (
	"time"

	"github.com/abrezinsky/iftarlantern/internal/models"
)

// InfoResponse describes the running picker
type InfoResponse struct {
	App     string `json:"app"`
	BaseURL string `json:"base_url"`
}

// DishResponse is the response for dish operations
type DishResponse struct {
	Category  string         `json:"category"`
	Name      string         `json:"name"`
	Remaining map[string]int `json:"remaining"`
}

// ServingsResponse is the response for servings changes
type ServingsResponse struct {
	Category string `json:"category"`
	Servings int    `json:"servings"`
}

// EnabledResponse is the response for category toggles
type EnabledResponse struct {
	Category string `json:"category"`
	Enabled  bool   `json:"enabled"`
}

// GenerateResponse is the response for a generated combo
type GenerateResponse struct {
	Combo     models.Combo   `json:"combo"`
	Refilled  []string       `json:"refilled"`
	Remaining map[string]int `json:"remaining"`
	At        time.Time      `json:"at"`
	Message   string         `json:"message"`
}

// ComboTextResponse is the response for the shareable combo text
type ComboTextResponse struct {
	Text string `json:"text"`
}
