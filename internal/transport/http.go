package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loja-escolar/backend/internal/auth"
	"github.com/loja-escolar/backend/internal/catalog"
	"github.com/loja-escolar/backend/internal/checkout"
	"github.com/loja-escolar/backend/internal/handler"
	"github.com/loja-escolar/backend/internal/user"
)

// NewRouter wires services into the HTTP surface. Catalog reads and cart
// confirmation are public; product mutations require the admin flag; profile
// routes require a valid token.
func NewRouter(
	catalogSvc catalog.Service,
	checkoutSvc checkout.Service,
	userSvc user.Service,
	tokens *auth.Manager,
	avatarDir string,
) *chi.Mux {
	productHandler := handler.NewProductHandler(catalogSvc)
	checkoutHandler := handler.NewCheckoutHandler(checkoutSvc)
	userHandler := handler.NewUserHandler(userSvc, tokens, avatarDir)

	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/produtos", productHandler.ListProducts)
	r.Get("/produtos/{id}", productHandler.GetProduct)
	r.Get("/categorias", productHandler.ListCategories)

	r.Group(func(r chi.Router) {
		r.Use(tokens.Authenticate, auth.RequireAdmin)
		r.Post("/produtos", productHandler.CreateProduct)
		r.Put("/produtos/{id}", productHandler.UpdateProduct)
		r.Delete("/produtos/{id}", productHandler.DeleteProduct)
	})

	r.Post("/carrinho/confirmar", checkoutHandler.ConfirmCart)

	r.Post("/auth/register", userHandler.Register)
	r.Post("/auth/login", userHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(tokens.Authenticate)
		r.Get("/users/me", userHandler.GetProfile)
		r.Put("/users/me", userHandler.UpdateProfile)
		r.Post("/users/avatar", userHandler.UploadAvatar)
	})

	return r
}
