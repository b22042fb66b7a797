package store

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func provideStores(db *gorm.DB) (Stores, Atomic) {
	g := NewGorm(db)
	return g.Stores(), g
}

var Module = fx.Options(
	fx.Provide(provideStores),
)
