package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/attire-backend/pkg/errors"
	"github.com/angelmondragon/attire-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestAPIClientLoginAttachesToken(t *testing.T) {
	var seenToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "ada@example.com", body["email"])
			writeEnvelope(w, http.StatusOK, types.SuccessEnvelope{Data: types.AuthResult{Token: "tok-1"}})
		case "/api/cart":
			seenToken = r.Header.Get(AuthTokenHeader)
			writeEnvelope(w, http.StatusOK, types.SuccessEnvelope{Data: []types.CartLine{{ProductID: uuid.New(), Quantity: 2}}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := NewAPIClient(srv.URL+"/", "", srv.Client())
	require.NoError(t, err)

	res, err := client.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", res.Token)
	assert.Equal(t, "tok-1", client.Token())

	lines, err := client.GetCart(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "tok-1", seenToken)
}

func TestAPIClientMapsErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, types.ErrorEnvelope{Error: types.APIError{
			Code:    string(pkgerrors.CodeNotFound),
			Message: "Item not found in cart",
		}})
	}))
	defer srv.Close()

	client, err := NewAPIClient(srv.URL, "tok", nil)
	require.NoError(t, err)

	_, err = client.UpdateCartItem(context.Background(), types.CartMutation{ProductID: uuid.New(), Quantity: 2})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "Item not found in cart", pkgerrors.As(err).Message())
}

func TestAPIClientUnexpectedStatusIsDependencyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewAPIClient(srv.URL, "tok", nil)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	err = client.ClearCart(context.Background())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestNewAPIClientRejectsBadURL(t *testing.T) {
	_, err := NewAPIClient("not a url", "", nil)
	require.Error(t, err)
}

func TestAPIClientDrivesRemoteSession(t *testing.T) {
	product := testProduct("shirt", 500)
	var lines []types.CartLine
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/cart" && r.Method == http.MethodPost:
			var in types.CartMutation
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			lines = append(lines, types.NewCartLine(product, in.Size, in.Color, in.Quantity))
			writeEnvelope(w, http.StatusOK, types.SuccessEnvelope{Data: lines})
		case r.URL.Path == "/api/cart":
			writeEnvelope(w, http.StatusOK, types.SuccessEnvelope{Data: lines})
		case r.URL.Path == "/api/wishlist":
			writeEnvelope(w, http.StatusOK, types.SuccessEnvelope{Data: []types.WishlistItem{}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := NewAPIClient(srv.URL, "tok", srv.Client())
	require.NoError(t, err)
	s, err := NewRemoteSession(context.Background(), client, nil, Options{})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Cart().AddToCart(context.Background(), product, "", ""))
	require.Len(t, s.Cart().Lines(), 1)
	assert.Equal(t, "S", s.Cart().Lines()[0].Size)
}
