package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/attire-backend/pkg/errors"
	"github.com/angelmondragon/attire-backend/pkg/types"
	"github.com/google/uuid"
)

// AuthTokenHeader carries the access token on authenticated requests.
const AuthTokenHeader = "X-Auth-Token"

const defaultAPITimeout = 15 * time.Second

// APIClient talks to the storefront REST API. It implements Remote.
type APIClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewAPIClient builds a client for baseURL. A nil httpClient gets a default with a timeout.
func NewAPIClient(baseURL, token string, httpClient *http.Client) (*APIClient, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultAPITimeout}
	}
	return &APIClient{
		baseURL: strings.TrimRight(u.String(), "/"),
		token:   token,
		http:    httpClient,
	}, nil
}

// Token returns the access token currently attached to requests.
func (c *APIClient) Token() string {
	return c.token
}

// Login exchanges credentials for a token and attaches it to the client.
func (c *APIClient) Login(ctx context.Context, email, password string) (*types.AuthResult, error) {
	var out types.AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// Logout revokes the token server side and detaches it.
func (c *APIClient) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

func (c *APIClient) ListProducts(ctx context.Context, query url.Values) ([]types.Product, error) {
	var page struct {
		Items []types.Product `json:"items"`
	}
	path := "/api/products"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (c *APIClient) GetProduct(ctx context.Context, id uuid.UUID) (*types.Product, error) {
	var out types.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) GetCart(ctx context.Context) ([]types.CartLine, error) {
	var out []types.CartLine
	err := c.do(ctx, http.MethodGet, "/api/cart", nil, &out)
	return out, err
}

func (c *APIClient) AddToCart(ctx context.Context, input types.CartMutation) ([]types.CartLine, error) {
	var out []types.CartLine
	err := c.do(ctx, http.MethodPost, "/api/cart", input, &out)
	return out, err
}

func (c *APIClient) UpdateCartItem(ctx context.Context, input types.CartMutation) ([]types.CartLine, error) {
	var out []types.CartLine
	err := c.do(ctx, http.MethodPut, "/api/cart/update", input, &out)
	return out, err
}

func (c *APIClient) RemoveFromCart(ctx context.Context, key types.LineKey) ([]types.CartLine, error) {
	var out []types.CartLine
	err := c.do(ctx, http.MethodDelete, "/api/cart", key, &out)
	return out, err
}

func (c *APIClient) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/cart/clear", nil, nil)
}

func (c *APIClient) GetWishlist(ctx context.Context) ([]types.WishlistItem, error) {
	var out []types.WishlistItem
	err := c.do(ctx, http.MethodGet, "/api/wishlist", nil, &out)
	return out, err
}

func (c *APIClient) AddToWishlist(ctx context.Context, productID uuid.UUID) ([]types.WishlistItem, error) {
	var out []types.WishlistItem
	err := c.do(ctx, http.MethodPost, "/api/wishlist/"+productID.String(), nil, &out)
	return out, err
}

func (c *APIClient) RemoveFromWishlist(ctx context.Context, productID uuid.UUID) ([]types.WishlistItem, error) {
	var out []types.WishlistItem
	err := c.do(ctx, http.MethodDelete, "/api/wishlist/"+productID.String(), nil, &out)
	return out, err
}

func (c *APIClient) PlaceOrder(ctx context.Context, req types.PlaceOrderRequest) (*types.Order, error) {
	var out types.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) ListOrders(ctx context.Context) ([]types.Order, error) {
	var page struct {
		Items []types.Order `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Close drops idle connections held by the underlying transport.
func (c *APIClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// do sends body as JSON and decodes the data field of the success envelope
// into out. Error envelopes come back as *pkgerrors.Error with the server's code.
func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(AuthTokenHeader, c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storefront api unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var envelope types.ErrorEnvelope
		if jsonErr := json.Unmarshal(raw, &envelope); jsonErr == nil && envelope.Error.Code != "" {
			return pkgerrors.New(pkgerrors.Code(envelope.Error.Code), envelope.Error.Message).
				WithDetails(envelope.Error.Details)
		}
		return pkgerrors.Newf(pkgerrors.CodeDependency, "%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response data")
	}
	return nil
}
