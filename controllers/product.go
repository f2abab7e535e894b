package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/models"
	"go-storefront/repository"
	"go-storefront/utils"
)

// maxUploadSize caps multipart request memory buffering.
const maxUploadSize = 32 << 20

// ProductController handles catalog requests.
type ProductController struct {
	products repository.ProductRepository
	images   *utils.ImageProcessor
}

// NewProductController creates a new ProductController.
func NewProductController(products repository.ProductRepository, images *utils.ImageProcessor) *ProductController {
	return &ProductController{products: products, images: images}
}

// GetProducts retrieves all products matching the AND of the provided
// filters. Absent filters impose no constraint.
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repository.ProductFilter{
		Keyword:  query.Get("keyword"),
		Category: query.Get("category"),
	}

	if raw := query.Get("minPrice"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid minPrice")
			return
		}
		filter.MinPrice = &min
	}
	if raw := query.Get("maxPrice"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid maxPrice")
			return
		}
		filter.MaxPrice = &max
	}

	products, err := pc.products.Find(r.Context(), filter)
	if err != nil {
		slog.Error("failed to fetch products", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}

	utils.RespondJSON(w, http.StatusOK, products)
}

// GetProductByID retrieves a single product.
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	product, err := pc.products.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Product not found")
			return
		}
		slog.Error("failed to fetch product", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}

	utils.RespondJSON(w, http.StatusOK, product)
}

// CreateProduct handles adding a new product with its image upload (admin
// only). The upload is derived into four resolution variants before the
// record is persisted.
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	name := r.FormValue("name")
	category := r.FormValue("category")
	priceRaw := r.FormValue("price")
	if name == "" || category == "" || priceRaw == "" {
		utils.RespondError(w, http.StatusBadRequest, "Name, category, and price are required")
		return
	}

	price, err := strconv.ParseFloat(priceRaw, 64)
	if err != nil || price < 0 {
		utils.RespondError(w, http.StatusBadRequest, "Price must be a non-negative number")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	image, err := pc.images.Generate(file)
	if err != nil {
		slog.Error("failed to process image", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	product := &models.Product{
		Name:     name,
		Category: category,
		Price:    price,
		Image:    image,
	}
	if err := pc.products.Insert(r.Context(), product); err != nil {
		pc.images.Remove(image)
		slog.Error("failed to create product", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles updating a product (admin only). Fields are
// independently optional; an explicit price of 0 is a valid update. A new
// image replaces all four variants and the previous files are removed
// best-effort.
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	product, err := pc.products.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Product not found")
			return
		}
		slog.Error("failed to fetch product", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}

	if name := r.FormValue("name"); name != "" {
		product.Name = name
	}
	if category := r.FormValue("category"); category != "" {
		product.Category = category
	}
	// Key presence, not value truthiness, decides whether price changes, so
	// an explicit 0 is honored.
	if _, ok := r.Form["price"]; ok {
		price, err := strconv.ParseFloat(r.FormValue("price"), 64)
		if err != nil || price < 0 {
			utils.RespondError(w, http.StatusBadRequest, "Price must be a non-negative number")
			return
		}
		product.Price = price
	}

	file, _, err := r.FormFile("image")
	if err == nil {
		defer file.Close()

		newImage, genErr := pc.images.Generate(file)
		if genErr != nil {
			slog.Error("failed to process image", "error", genErr)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update product")
			return
		}
		pc.images.Remove(product.Image)
		product.Image = newImage
	} else if !errors.Is(err, http.ErrMissingFile) {
		utils.RespondError(w, http.StatusBadRequest, "Invalid image upload")
		return
	}

	if err := pc.products.Update(r.Context(), product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Product not found")
			return
		}
		slog.Error("failed to update product", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}

	utils.RespondJSON(w, http.StatusOK, product)
}

// DeleteProduct handles deleting a product and its image files (admin
// only). File removal is best-effort; a record-deletion failure after the
// files are gone surfaces as 500 without rollback.
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	product, err := pc.products.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Product not found")
			return
		}
		slog.Error("failed to fetch product", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	pc.images.Remove(product.Image)

	if err := pc.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Product not found")
			return
		}
		slog.Error("failed to delete product", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to delete product from database")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}
