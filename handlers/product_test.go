package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/ecomapp/storefront/internal/models"
	"github.com/ecomapp/storefront/internal/payment"
	"github.com/ecomapp/storefront/internal/products"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func productInput(name string, price float64, cat primitive.ObjectID) products.Input {
	return products.Input{Name: name, Description: name + " description", Price: price, Category: cat, Quantity: 5}
}

// multipartRequest builds a product form; photo may be nil.
func (e *testEnv) multipart(method, path string, fields map[string]string, photo []byte, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(e.t, mw.WriteField(k, v))
	}
	if photo != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="photo"; filename="photo.png"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		require.NoError(e.t, err)
		_, err = part.Write(photo)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) category(name string) *models.Category {
	e.t.Helper()
	c, err := e.svc.Categories.Create(context.Background(), name)
	require.NoError(e.t, err)
	return c
}

func (e *testEnv) product(name string, price float64, cat primitive.ObjectID) *models.Product {
	e.t.Helper()
	p, err := e.svc.Products.Create(context.Background(), productInput(name, price, cat), nil)
	require.NoError(e.t, err)
	return p
}

func TestCreateProductForm(t *testing.T) {
	env := newTestEnv(t)
	_, adminTok := env.account("admin@example.com", true)
	cat := env.category("Books")

	fields := map[string]string{
		"name": "Go in Action", "description": "a book", "price": "39.99",
		"category": cat.ID.Hex(), "quantity": "10", "shipping": "1",
	}
	for _, missing := range []string{"name", "description", "price", "category", "quantity"} {
		form := map[string]string{}
		for k, v := range fields {
			if k != missing {
				form[k] = v
			}
		}
		w := env.multipart(http.MethodPost, "/api/v1/product/create-product", form, nil, adminTok)
		require.Equal(t, http.StatusBadRequest, w.Code, missing)
		assert.Contains(t, decode(t, w)["error"], "is Required")
	}

	w := env.multipart(http.MethodPost, "/api/v1/product/create-product", fields, make([]byte, products.MaxPhotoSize+1), adminTok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	png := []byte("\x89PNG\r\n\x1a\nfake")
	w = env.multipart(http.MethodPost, "/api/v1/product/create-product", fields, png, adminTok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)["products"].(map[string]interface{})
	assert.Equal(t, "go-in-action", created["slug"])
	assert.Equal(t, true, created["shipping"])
	assert.NotContains(t, created, "photoKey")
	pid := created["_id"].(string)

	w = env.do(http.MethodGet, "/api/v1/product/product-photo/"+pid, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, png, w.Body.Bytes())

	fields["price"] = "45"
	w = env.multipart(http.MethodPut, "/api/v1/product/update-product/"+pid, fields, nil, adminTok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 45, decode(t, w)["products"].(map[string]interface{})["price"])
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/v1/product/product-photo/"+pid, nil, "").Code)

	w = env.multipart(http.MethodPut, "/api/v1/product/update-product/"+primitive.NewObjectID().Hex(), fields, nil, adminTok)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, http.StatusOK, env.do(http.MethodDelete, "/api/v1/product/delete-product/"+pid, nil, adminTok).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/product/product-photo/"+pid, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/api/v1/product/delete-product/"+pid, nil, adminTok).Code)
}

func TestCreateProductRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	_, userTok := env.account("user@example.com", false)
	cat := env.category("Books")
	w := env.multipart(http.MethodPost, "/api/v1/product/create-product", map[string]string{"name": "x", "category": cat.ID.Hex()}, nil, userTok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCatalogueQueries(t *testing.T) {
	env := newTestEnv(t)
	books := env.category("Books")
	games := env.category("Games")
	var first *models.Product
	for i := 0; i < 8; i++ {
		p := env.product(fmt.Sprintf("Book %d", i), float64(10+i), books.ID)
		if i == 0 {
			first = p
		}
	}
	env.product("Chess Set", 80, games.ID)

	w := env.do(http.MethodGet, "/api/v1/product/get-product", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 9, body["counTotal"])
	list := body["products"].([]interface{})
	newest := list[0].(map[string]interface{})
	assert.Equal(t, "Chess Set", newest["name"])
	assert.Equal(t, "Games", newest["category"].(map[string]interface{})["name"])

	w = env.do(http.MethodGet, "/api/v1/product/get-product/book-3", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Book 3", decode(t, w)["product"].(map[string]interface{})["name"])
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/product/get-product/nothing", nil, "").Code)

	w = env.do(http.MethodGet, "/api/v1/product/product-count", nil, "")
	assert.EqualValues(t, 9, decode(t, w)["total"])

	w = env.do(http.MethodGet, "/api/v1/product/product-list/2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["products"], 3)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/v1/product/product-list/0", nil, "").Code)

	w = env.do(http.MethodPost, "/api/v1/product/product-filters", map[string]interface{}{
		"checked": []string{books.ID.Hex()}, "radio": []float64{12, 14},
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["products"], 3)

	w = env.do(http.MethodGet, "/api/v1/product/search/chess", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var found []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Chess Set", found[0]["name"])

	w = env.do(http.MethodGet, "/api/v1/product/search/.*", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	w = env.do(http.MethodGet, fmt.Sprintf("/api/v1/product/related-product/%s/%s", first.ID.Hex(), books.ID.Hex()), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	related := decode(t, w)["products"].([]interface{})
	assert.Len(t, related, 3)
	for _, r := range related {
		assert.NotEqual(t, first.ID.Hex(), r.(map[string]interface{})["_id"])
	}

	w = env.do(http.MethodGet, "/api/v1/product/product-category/games", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "Games", body["category"].(map[string]interface{})["name"])
	assert.Len(t, body["products"], 1)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/product/product-category/toys", nil, "").Code)
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t)
	buyer, tok := env.account("buyer@example.com", false)
	cat := env.category("Books")
	a := env.product("A", 19.99, cat.ID)
	b := env.product("B", 0.01, cat.ID)

	w := env.do(http.MethodGet, "/api/v1/product/braintree/token", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["clientToken"])

	cart := []map[string]string{{"_id": a.ID.Hex()}, {"_id": b.ID.Hex()}}
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/v1/product/braintree/payment", map[string]interface{}{"nonce": "n", "cart": cart}, "").Code)

	w = env.do(http.MethodPost, "/api/v1/product/braintree/payment", map[string]interface{}{"nonce": "n", "cart": []string{}}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	unknown := []map[string]string{{"_id": primitive.NewObjectID().Hex()}}
	w = env.do(http.MethodPost, "/api/v1/product/braintree/payment", map[string]interface{}{"nonce": "n", "cart": unknown}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/v1/product/braintree/payment", map[string]interface{}{"nonce": payment.DeclineNonce, "cart": cart}, tok)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, false, decode(t, w)["ok"])

	w = env.do(http.MethodPost, "/api/v1/product/braintree/payment", map[string]interface{}{"nonce": "fake-valid-nonce", "cart": cart}, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["ok"])

	placed, err := env.svc.Orders.ForBuyer(context.Background(), buyer.ID)
	require.NoError(t, err)
	require.Len(t, placed, 1)
	assert.Equal(t, "20.00", placed[0].Payment.Amount)
	assert.Equal(t, models.StatusNotProcessed, placed[0].Status)
}
