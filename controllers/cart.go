package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/repository"
	"go-storefront/utils"
)

// cartRetryAttempts bounds the optimistic-concurrency retry loop on cart
// mutations.
const cartRetryAttempts = 3

// CartController handles cart requests. Every mutation is a read, an
// in-memory change and a versioned replace; version conflicts are retried.
type CartController struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

// NewCartController creates a new CartController.
func NewCartController(carts repository.CartRepository, products repository.ProductRepository) *CartController {
	return &CartController{carts: carts, products: products}
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// loadOrCreate fetches the user's cart, lazily creating and persisting an
// empty one on first access. A raced create falls back to re-reading.
func (cc *CartController) loadOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := cc.carts.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrCartNotFound) {
		return nil, err
	}

	cart = models.NewCart(userID)
	err = cc.carts.Insert(ctx, cart)
	if errors.Is(err, repository.ErrCartExists) {
		return cc.carts.FindByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// GetCart retrieves the current user's cart, creating an empty one on
// first access.
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	cart, err := cc.loadOrCreate(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to retrieve cart", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to retrieve cart")
		return
	}

	utils.RespondJSON(w, http.StatusOK, cart)
}

// AddToCart adds a product to the user's cart, merging quantities when the
// product is already present.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.Quantity <= 0 {
		utils.RespondError(w, http.StatusBadRequest, "Invalid quantity. Quantity must be a positive number.")
		return
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	product, err := cc.products.FindByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Product not found")
			return
		}
		slog.Error("failed to fetch product", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to add product to cart")
		return
	}

	for attempt := 0; attempt < cartRetryAttempts; attempt++ {
		cart, err := cc.loadOrCreate(r.Context(), user.ID)
		if err != nil {
			slog.Error("failed to load cart", "error", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to add product to cart")
			return
		}

		cart.AddItem(product.ID, product.Price, req.Quantity)

		err = cc.carts.ReplaceVersioned(r.Context(), cart)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			slog.Error("failed to save cart", "error", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to add product to cart")
			return
		}

		utils.RespondJSON(w, http.StatusCreated, cart)
		return
	}

	utils.RespondError(w, http.StatusConflict, "Cart was modified concurrently, please retry")
}

// UpdateCartQuantity sets the absolute quantity of a line item.
func (cc *CartController) UpdateCartQuantity(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.Quantity <= 0 {
		utils.RespondError(w, http.StatusBadRequest, "Invalid quantity. Quantity must be a positive number.")
		return
	}

	productID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "Item not found in cart")
		return
	}

	for attempt := 0; attempt < cartRetryAttempts; attempt++ {
		cart, err := cc.carts.FindByUser(r.Context(), user.ID)
		if err != nil {
			if errors.Is(err, repository.ErrCartNotFound) {
				utils.RespondError(w, http.StatusNotFound, "Cart not found")
				return
			}
			slog.Error("failed to load cart", "error", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update cart")
			return
		}

		if !cart.SetQuantity(productID, req.Quantity) {
			utils.RespondError(w, http.StatusNotFound, "Item not found in cart")
			return
		}

		err = cc.carts.ReplaceVersioned(r.Context(), cart)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			slog.Error("failed to save cart", "error", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update cart")
			return
		}

		utils.RespondJSON(w, http.StatusOK, cart)
		return
	}

	utils.RespondError(w, http.StatusConflict, "Cart was modified concurrently, please retry")
}

// RemoveFromCart removes a product from the user's cart. Removal is
// idempotent: an absent product still succeeds.
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	productID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	for attempt := 0; attempt < cartRetryAttempts; attempt++ {
		cart, err := cc.carts.FindByUser(r.Context(), user.ID)
		if err != nil {
			if errors.Is(err, repository.ErrCartNotFound) {
				utils.RespondError(w, http.StatusNotFound, "Cart not found")
				return
			}
			slog.Error("failed to load cart", "error", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to remove product from cart")
			return
		}

		cart.RemoveItem(productID)

		err = cc.carts.ReplaceVersioned(r.Context(), cart)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			slog.Error("failed to save cart", "error", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to remove product from cart")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Product removed from cart",
			"cart":    cart,
		})
		return
	}

	utils.RespondError(w, http.StatusConflict, "Cart was modified concurrently, please retry")
}
