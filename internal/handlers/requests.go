package handlers

// AddDishRequest represents a request to add a dish to a category
type AddDishRequest struct {
	Name string `json:"name"`
}

// ServingsRequest represents a request to change a category's servings
type ServingsRequest struct {
	Servings *int `json:"servings"`
}

// EnabledRequest represents a request to turn a category on or off
type EnabledRequest struct {
	Enabled *bool `json:"enabled"`
}
