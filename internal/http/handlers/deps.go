package handlers

import (
	"math/rand"

	"github.com/jmoiron/sqlx"

	"fashionstore/internal/repos"
	"fashionstore/internal/services"
)

type Deps struct {
	ProductHandler *ProductHandler
	OrderHandler   *OrderHandler
	AdminHandler   *AdminHandler
	AuthHandler    *AuthHandler
	ChatHandler    *ChatHandler
}

func NewDeps(db *sqlx.DB, auth *services.AuthService, rng *rand.Rand) *Deps {
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo)
	orderSvc := services.NewOrderService(prodRepo, orderRepo)
	chatSvc := services.NewChatService(rng)

	return &Deps{
		ProductHandler: &ProductHandler{Catalog: catalogSvc},
		OrderHandler:   &OrderHandler{Order: orderSvc, Repo: orderRepo, Auth: auth},
		AdminHandler:   &AdminHandler{Orders: orderRepo},
		AuthHandler:    &AuthHandler{Auth: auth},
		ChatHandler:    &ChatHandler{Chat: chatSvc},
	}
}
