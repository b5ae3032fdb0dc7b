package model

// Category represents a row in the `categories` table. Categories group
// games and are never hard-deleted; deactivation hides them from public
// listings while keeping referential integrity for existing games.
type Category struct {
	ID       uint64 // categories.id
	Name     string // categories.name
	IsActive bool   // categories.is_active
}

// Game represents a row in the `games` table. Each game belongs to exactly
// one category and may carry any number of product types.
type Game struct {
	ID          uint64 // games.id
	Name        string // games.name
	Description string // games.description (may be empty)
	CategoryID  uint64 // games.category_id
	IsActive    bool   // games.is_active
}

// GameProductType represents a row in the `game_product_types` table, e.g.
// a denomination or edition sold for a particular game.
type GameProductType struct {
	ID       uint64 // game_product_types.id
	Name     string // game_product_types.name
	GameID   uint64 // game_product_types.game_id
	IsActive bool   // game_product_types.is_active
}
