package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"sneaker-shop/internal/storage"

	"github.com/gorilla/mux"
)

// maxImageMemory bounds the in-memory part of multipart parsing.
const maxImageMemory = 10 << 20

// ProductsView carries the list page data.
type ProductsView struct {
	Products []ProductItem
}

// ProductItem pairs a product with its image URL for rendering.
type ProductItem struct {
	ID       int64
	Name     string
	Price    float64
	ImageURL string
}

// Products lists the catalog and handles creation via _acao=novo.
// Requires an authenticated session for both.
func (h *Handlers) Products(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		if err := h.parseProductForm(r); err != nil {
			h.addFlash(w, r, "erro", "Envio de formulário inválido.")
			http.Redirect(w, r, "/produtos", http.StatusFound)
			return
		}
		if r.FormValue("_acao") == "novo" {
			h.createProduct(w, r)
			return
		}
	}

	view, err := h.productsView()
	if err != nil {
		h.logger.Error().Err(err).Msg("list products")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "produtos.html", view)
}

// productsView loads all products, newest first, with resolved image URLs.
func (h *Handlers) productsView() (ProductsView, error) {
	products, err := h.db.ListProducts()
	if err != nil {
		return ProductsView{}, err
	}

	view := ProductsView{}
	for _, p := range products {
		item := ProductItem{ID: p.ID, Name: p.Name, Price: p.Price}
		if p.Image != "" {
			item.ImageURL = h.uploads.URL(p.Image)
		}
		view.Products = append(view.Products, item)
	}
	return view, nil
}

func (h *Handlers) createProduct(w http.ResponseWriter, r *http.Request) {
	name, price, ok := h.productFields(w, r)
	if !ok {
		return
	}

	image := ""
	if file, header, err := r.FormFile("imagem"); err == nil && header.Filename != "" {
		defer file.Close()
		image, err = h.saveImage(r, file, header)
		if err != nil {
			h.logger.Error().Err(err).Msg("save image")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
	}

	if _, err := h.db.CreateProduct(name, price, image); err != nil {
		h.logger.Error().Err(err).Msg("create product")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.addFlash(w, r, "sucesso", "Produto adicionado!")
	http.Redirect(w, r, "/produtos", http.StatusFound)
}

// EditProduct updates one product. A missing id is a hard 404; validation
// failures flash and redirect like creation does.
func (h *Handlers) EditProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	product, err := h.db.GetProduct(id)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("get product")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.parseProductForm(r); err != nil {
		h.addFlash(w, r, "erro", "Envio de formulário inválido.")
		http.Redirect(w, r, "/produtos", http.StatusFound)
		return
	}
	name, price, ok := h.productFields(w, r)
	if !ok {
		return
	}

	product.Name = name
	product.Price = price

	if file, header, err := r.FormFile("imagem"); err == nil && header.Filename != "" {
		defer file.Close()
		// Replacing the image removes the old file first
		if product.Image != "" {
			if err := h.uploads.Delete(r.Context(), product.Image); err != nil {
				h.logger.Error().Err(err).Str("image", product.Image).Msg("delete old image")
			}
		}
		newImage, err := h.saveImage(r, file, header)
		if err != nil {
			h.logger.Error().Err(err).Msg("save image")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		product.Image = newImage
	}

	if err := h.db.UpdateProduct(product); err != nil {
		h.logger.Error().Err(err).Msg("update product")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.addFlash(w, r, "sucesso", "Produto atualizado!")
	http.Redirect(w, r, "/produtos", http.StatusFound)
}

// DeleteProduct removes a product and its stored image, if any.
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	product, err := h.db.GetProduct(id)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("get product")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if product.Image != "" {
		if err := h.uploads.Delete(r.Context(), product.Image); err != nil {
			h.logger.Error().Err(err).Str("image", product.Image).Msg("delete image")
		}
	}

	if err := h.db.DeleteProduct(product.ID); err != nil {
		h.logger.Error().Err(err).Msg("delete product")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.addFlash(w, r, "sucesso", "Produto removido.")
	http.Redirect(w, r, "/produtos", http.StatusFound)
}

// parseProductForm parses either a multipart submission (with a file
// input) or a plain form one.
func (h *Handlers) parseProductForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxImageMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// productFields validates name and price the same way for create and
// edit: a decimal comma is accepted, the price must be a non-negative
// number. On failure it flashes, redirects, and returns ok=false.
func (h *Handlers) productFields(w http.ResponseWriter, r *http.Request) (string, float64, bool) {
	name := strings.TrimSpace(r.FormValue("nome"))
	priceStr := strings.TrimSpace(strings.ReplaceAll(r.FormValue("preco"), ",", "."))

	if name == "" || priceStr == "" {
		h.addFlash(w, r, "erro", "Nome e preço são obrigatórios.")
		http.Redirect(w, r, "/produtos", http.StatusFound)
		return "", 0, false
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price < 0 {
		h.addFlash(w, r, "erro", "Preço inválido.")
		http.Redirect(w, r, "/produtos", http.StatusFound)
		return "", 0, false
	}

	return name, price, true
}

func (h *Handlers) saveImage(r *http.Request, file multipart.File, header *multipart.FileHeader) (string, error) {
	return h.uploads.Save(r.Context(), filepath.Ext(header.Filename), file)
}
