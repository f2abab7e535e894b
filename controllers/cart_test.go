package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/middleware"
	"go-storefront/models"
)

func newCartFixture() (*CartController, *mockCartRepository, *mockProductRepository, *models.User) {
	carts := newMockCartRepository()
	products := newMockProductRepository()
	user := &models.User{ID: primitive.NewObjectID(), Name: "Alice", Email: "a@x.com", Role: models.RoleUser}
	return NewCartController(carts, products), carts, products, user
}

func cartRequest(user *models.User, method, path string, payload interface{}) *http.Request {
	var body bytes.Buffer
	if payload != nil {
		json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithUser(req.Context(), user))
}

func decodeCart(t *testing.T, data []byte) models.Cart {
	t.Helper()
	var cart models.Cart
	require.NoError(t, json.Unmarshal(data, &cart))
	return cart
}

func addToCart(t *testing.T, cc *CartController, user *models.User, productID primitive.ObjectID, quantity int) *httptest.ResponseRecorder {
	t.Helper()
	req := cartRequest(user, http.MethodPost, "/api/cart", map[string]interface{}{
		"productId": productID.Hex(),
		"quantity":  quantity,
	})
	rec := httptest.NewRecorder()
	cc.AddToCart(rec, req)
	return rec
}

func TestGetCartLazilyCreates(t *testing.T) {
	cc, carts, _, user := newCartFixture()

	req := cartRequest(user, http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	cc.GetCart(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	cart := decodeCart(t, rec.Body.Bytes())
	assert.Equal(t, user.ID, cart.UserID)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.TotalAmount)

	// The empty cart was persisted, not just returned.
	_, err := carts.FindByUser(req.Context(), user.ID)
	assert.NoError(t, err)
}

func TestAddToCartScenario(t *testing.T) {
	cc, _, products, user := newCartFixture()
	productID := products.seed(models.Product{Name: "Red Shirt", Category: "apparel", Price: 10})

	// Add quantity 2 at price 10 -> total 20.
	rec := addToCart(t, cc, user, productID, 2)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cart := decodeCart(t, rec.Body.Bytes())
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 20.0, cart.TotalAmount)

	// Set quantity to 5 -> total 50.
	req := cartRequest(user, http.MethodPut, "/api/cart/"+productID.Hex(), map[string]int{"quantity": 5})
	req = mux.SetURLVars(req, map[string]string{"id": productID.Hex()})
	rec = httptest.NewRecorder()
	cc.UpdateCartQuantity(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart = decodeCart(t, rec.Body.Bytes())
	assert.Equal(t, 50.0, cart.TotalAmount)

	// Remove the item -> empty cart, total 0.
	req = cartRequest(user, http.MethodDelete, "/api/cart/"+productID.Hex(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": productID.Hex()})
	rec = httptest.NewRecorder()
	cc.RemoveFromCart(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Message string      `json:"message"`
		Cart    models.Cart `json:"cart"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Product removed from cart", resp.Message)
	assert.Empty(t, resp.Cart.Items)
	assert.Equal(t, 0.0, resp.Cart.TotalAmount)
}

func TestAddToCartMergesLikeSingleAdd(t *testing.T) {
	cc, _, products, user := newCartFixture()
	productID := products.seed(models.Product{Name: "Mug", Category: "kitchen", Price: 5})

	rec := addToCart(t, cc, user, productID, 3)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = addToCart(t, cc, user, productID, 4)
	require.Equal(t, http.StatusCreated, rec.Code)
	merged := decodeCart(t, rec.Body.Bytes())

	other := &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	rec = addToCart(t, cc, other, productID, 7)
	require.Equal(t, http.StatusCreated, rec.Code)
	single := decodeCart(t, rec.Body.Bytes())

	require.Len(t, merged.Items, 1)
	assert.Equal(t, single.Items[0].Quantity, merged.Items[0].Quantity)
	assert.Equal(t, single.TotalAmount, merged.TotalAmount)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	cc, _, _, user := newCartFixture()

	rec := addToCart(t, cc, user, primitive.NewObjectID(), 1)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddToCartRejectsNonPositiveQuantity(t *testing.T) {
	cc, _, products, user := newCartFixture()
	productID := products.seed(models.Product{Name: "Mug", Category: "kitchen", Price: 5})

	for _, quantity := range []int{0, -3} {
		rec := addToCart(t, cc, user, productID, quantity)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "quantity %d", quantity)
	}
}

func TestUpdateCartQuantityErrors(t *testing.T) {
	cc, _, products, user := newCartFixture()
	productID := products.seed(models.Product{Name: "Mug", Category: "kitchen", Price: 5})

	// No cart yet.
	req := cartRequest(user, http.MethodPut, "/api/cart/"+productID.Hex(), map[string]int{"quantity": 2})
	req = mux.SetURLVars(req, map[string]string{"id": productID.Hex()})
	rec := httptest.NewRecorder()
	cc.UpdateCartQuantity(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Cart exists but the item does not.
	rec = addToCart(t, cc, user, productID, 1)
	require.Equal(t, http.StatusCreated, rec.Code)
	missing := primitive.NewObjectID()
	req = cartRequest(user, http.MethodPut, "/api/cart/"+missing.Hex(), map[string]int{"quantity": 2})
	req = mux.SetURLVars(req, map[string]string{"id": missing.Hex()})
	rec = httptest.NewRecorder()
	cc.UpdateCartQuantity(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Non-positive quantity.
	req = cartRequest(user, http.MethodPut, "/api/cart/"+productID.Hex(), map[string]int{"quantity": 0})
	req = mux.SetURLVars(req, map[string]string{"id": productID.Hex()})
	rec = httptest.NewRecorder()
	cc.UpdateCartQuantity(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveFromCartIsIdempotent(t *testing.T) {
	cc, _, products, user := newCartFixture()
	productID := products.seed(models.Product{Name: "Mug", Category: "kitchen", Price: 5})

	rec := addToCart(t, cc, user, productID, 2)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Removing a product that was never added still succeeds and leaves the
	// cart unchanged.
	absent := primitive.NewObjectID()
	req := cartRequest(user, http.MethodDelete, "/api/cart/"+absent.Hex(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": absent.Hex()})
	rec = httptest.NewRecorder()
	cc.RemoveFromCart(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Cart models.Cart `json:"cart"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Cart.Items, 1)
	assert.Equal(t, 10.0, resp.Cart.TotalAmount)
}

func TestRemoveFromCartWithoutCart(t *testing.T) {
	cc, _, _, user := newCartFixture()

	id := primitive.NewObjectID()
	req := cartRequest(user, http.MethodDelete, "/api/cart/"+id.Hex(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": id.Hex()})
	rec := httptest.NewRecorder()
	cc.RemoveFromCart(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddToCartRetriesOnVersionConflict(t *testing.T) {
	cc, carts, products, user := newCartFixture()
	productID := products.seed(models.Product{Name: "Mug", Category: "kitchen", Price: 5})

	// One spurious conflict: the retry succeeds and the item lands once.
	carts.conflicts = 1
	rec := addToCart(t, cc, user, productID, 2)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cart := decodeCart(t, rec.Body.Bytes())
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	// Conflicts on every attempt exhaust the retries.
	carts.conflicts = cartRetryAttempts
	rec = addToCart(t, cc, user, productID, 1)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
