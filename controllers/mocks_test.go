package controllers

import (
	"context"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/models"
	"go-storefront/repository"
)

type mockUserRepository struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: map[primitive.ObjectID]models.User{}}
}

func (m *mockUserRepository) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	user.ID = primitive.NewObjectID()
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	found := u
	return &found, nil
}

// mockProductRepository applies the documented filter semantics in memory:
// case-insensitive substring keyword, exact category, inclusive price
// bounds, AND-combined.
type mockProductRepository struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]models.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: map[primitive.ObjectID]models.Product{}}
}

func (m *mockProductRepository) Find(_ context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []models.Product{}
	for _, p := range m.products {
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Keyword)) {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.MinPrice != nil && p.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (m *mockProductRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	found := p
	return &found, nil
}

func (m *mockProductRepository) Insert(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product.ID = primitive.NewObjectID()
	m.products[product.ID] = *product
	return nil
}

func (m *mockProductRepository) Update(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = *product
	return nil
}

func (m *mockProductRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) seed(p models.Product) primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.products[p.ID] = p
	return p.ID
}

// mockCartRepository honors the versioned-replace contract: a replace only
// succeeds when the stored version matches the one the caller read.
// conflicts injects spurious version conflicts to exercise retries.
type mockCartRepository struct {
	mu        sync.Mutex
	carts     map[primitive.ObjectID]models.Cart
	conflicts int
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{carts: map[primitive.ObjectID]models.Cart{}}
}

func (m *mockCartRepository) FindByUser(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	found := c
	found.Items = append([]models.CartItem(nil), c.Items...)
	return &found, nil
}

func (m *mockCartRepository) Insert(_ context.Context, cart *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.carts[cart.UserID]; ok {
		return repository.ErrCartExists
	}
	cart.ID = primitive.NewObjectID()
	m.carts[cart.UserID] = *cart
	return nil
}

func (m *mockCartRepository) ReplaceVersioned(_ context.Context, cart *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflicts > 0 {
		m.conflicts--
		return repository.ErrVersionConflict
	}
	stored, ok := m.carts[cart.UserID]
	if !ok {
		return repository.ErrCartNotFound
	}
	if stored.Version != cart.Version {
		return repository.ErrVersionConflict
	}
	cart.Version++
	m.carts[cart.UserID] = *cart
	return nil
}
