// routes/routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"go-storefront/controllers"
	"go-storefront/middleware"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, auth *middleware.AuthMiddleware, userController *controllers.UserController, productController *controllers.ProductController, cartController *controllers.CartController, uploadDir string) {
	api := router.PathPrefix("/api").Subrouter()

	// User routes
	users := api.PathPrefix("/users").Subrouter()
	users.HandleFunc("/register", userController.Register).Methods(http.MethodPost)
	users.HandleFunc("/admin/register", userController.RegisterAdmin).Methods(http.MethodPost)
	users.HandleFunc("/login", userController.Login).Methods(http.MethodPost)
	users.Handle("/profile", auth.Authenticate(http.HandlerFunc(userController.GetProfile))).Methods(http.MethodGet)

	// Product routes: public list, authenticated read, admin writes
	api.HandleFunc("/products", productController.GetProducts).Methods(http.MethodGet)
	api.Handle("/products/{id}", auth.Authenticate(http.HandlerFunc(productController.GetProductByID))).Methods(http.MethodGet)
	api.Handle("/products", adminChain(auth, productController.CreateProduct)).Methods(http.MethodPost)
	api.Handle("/products/{id}", adminChain(auth, productController.UpdateProduct)).Methods(http.MethodPut)
	api.Handle("/products/{id}", adminChain(auth, productController.DeleteProduct)).Methods(http.MethodDelete)

	// Cart routes
	cart := api.PathPrefix("/cart").Subrouter()
	cart.Use(auth.Authenticate)
	cart.HandleFunc("", cartController.GetCart).Methods(http.MethodGet)
	cart.HandleFunc("", cartController.AddToCart).Methods(http.MethodPost)
	cart.HandleFunc("/{id}", cartController.UpdateCartQuantity).Methods(http.MethodPut)
	cart.HandleFunc("/{id}", cartController.RemoveFromCart).Methods(http.MethodDelete)

	// Derived images are served statically under /uploads
	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))),
	)
}

func adminChain(auth *middleware.AuthMiddleware, handler http.HandlerFunc) http.Handler {
	return auth.Authenticate(auth.RequireAdmin(handler))
}
