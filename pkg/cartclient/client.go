// Package cartclient talks to the cart service over HTTP and drives a
// cartstate reducer with the results.
package cartclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alimikegami/fashion-store/cart-service/pkg/contract"
	"github.com/alimikegami/fashion-store/cart-service/pkg/errs"
	"github.com/alimikegami/fashion-store/cart-service/pkg/httpclient"
	"github.com/sony/gobreaker/v2"
)

// APIError is a non 2xx answer from the cart service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.StatusCode)
	}
	return e.Message
}

type API interface {
	GetCart(ctx context.Context) (contract.Cart, error)
	AddItem(ctx context.Context, req contract.AddCartItemRequest) (contract.AddCartItemResponse, error)
	UpdateItem(ctx context.Context, itemID string, req contract.UpdateCartItemRequest) (contract.UpdateCartItemResponse, error)
	RemoveItem(ctx context.Context, itemID string) (contract.RemoveCartItemResponse, error)
	ClearCart(ctx context.Context) error
	GetWishlist(ctx context.Context) (contract.WishlistResponse, error)
	AddToWishlist(ctx context.Context, req contract.WishlistRequest) (contract.WishlistResponse, error)
	RemoveFromWishlist(ctx context.Context, productID string) (contract.WishlistResponse, error)
	ClearWishlist(ctx context.Context) error
	MoveToCart(ctx context.Context, productID string, req contract.MoveToCartRequest) (contract.MoveToCartResponse, error)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

func WithCircuitBreaker(cb *gobreaker.CircuitBreaker[[]byte]) Option {
	return func(c *Client) {
		c.cb = cb
	}
}

// NewCircuitBreaker opens after three calls with a 60% failure ratio. Client
// errors (4xx) do not count as failures.
func NewCircuitBreaker(name string, timeout time.Duration) *gobreaker.CircuitBreaker[[]byte] {
	var st gobreaker.Settings
	st.Name = name
	st.Timeout = timeout
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 3 && failureRatio >= 0.6
	}
	st.IsSuccessful = func(err error) bool {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr.StatusCode < http.StatusInternalServerError
		}
		return err == nil
	}

	return gobreaker.NewCircuitBreaker[[]byte](st)
}

// NewClient builds a client for the API rooted at baseURL, e.g.
// http://localhost:8080/api/v1, authenticating with a bearer token.
func NewClient(baseURL string, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewClient(httpclient.DefaultTimeout)
	}
	if c.cb == nil {
		c.cb = NewCircuitBreaker("cart-client", 30*time.Second)
	}
	return c
}

func (c *Client) do(ctx context.Context, method string, path string, body interface{}, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	headers := map[string]string{
		"Accept":        "application/json",
		"Authorization": "Bearer " + c.token,
	}
	if payload != nil {
		headers["Content-Type"] = "application/json"
	}

	data, err := c.cb.Execute(func() ([]byte, error) {
		status, respBody, err := httpclient.SendRequest(ctx, c.http, httpclient.HttpRequest{
			URL:     c.baseURL + path,
			Method:  method,
			Body:    payload,
			Headers: headers,
		})
		if err != nil {
			return nil, err
		}
		if status < 200 || status >= 300 {
			return nil, decodeError(status, respBody)
		}
		return respBody, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", errs.ErrUpstream, err)
		}
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}

	var resp contract.ErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		apiErr.Message = resp.Message
	}
	return apiErr
}

func (c *Client) GetCart(ctx context.Context) (contract.Cart, error) {
	var resp contract.CartResponse
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &resp); err != nil {
		return contract.Cart{}, err
	}
	if resp.Cart.Items == nil {
		resp.Cart.Items = []contract.CartItem{}
	}
	return resp.Cart, nil
}

func (c *Client) AddItem(ctx context.Context, req contract.AddCartItemRequest) (resp contract.AddCartItemResponse, err error) {
	err = c.do(ctx, http.MethodPost, "/cart", req, &resp)
	return
}

func (c *Client) UpdateItem(ctx context.Context, itemID string, req contract.UpdateCartItemRequest) (resp contract.UpdateCartItemResponse, err error) {
	err = c.do(ctx, http.MethodPut, "/cart/"+url.PathEscape(itemID), req, &resp)
	return
}

func (c *Client) RemoveItem(ctx context.Context, itemID string) (resp contract.RemoveCartItemResponse, err error) {
	err = c.do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(itemID), nil, &resp)
	return
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart", nil, nil)
}

func (c *Client) GetWishlist(ctx context.Context) (resp contract.WishlistResponse, err error) {
	err = c.do(ctx, http.MethodGet, "/wishlist", nil, &resp)
	return resp, normalizeWishlist(&resp, err)
}

func (c *Client) AddToWishlist(ctx context.Context, req contract.WishlistRequest) (resp contract.WishlistResponse, err error) {
	err = c.do(ctx, http.MethodPost, "/wishlist", req, &resp)
	return resp, normalizeWishlist(&resp, err)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) (resp contract.WishlistResponse, err error) {
	err = c.do(ctx, http.MethodDelete, "/wishlist/"+url.PathEscape(productID), nil, &resp)
	return resp, normalizeWishlist(&resp, err)
}

func (c *Client) ClearWishlist(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/wishlist", nil, nil)
}

func (c *Client) MoveToCart(ctx context.Context, productID string, req contract.MoveToCartRequest) (resp contract.MoveToCartResponse, err error) {
	err = c.do(ctx, http.MethodPost, "/wishlist/"+url.PathEscape(productID)+"/move-to-cart", req, &resp)
	return
}

func normalizeWishlist(resp *contract.WishlistResponse, err error) error {
	if err == nil && resp.Wishlist == nil {
		resp.Wishlist = []contract.WishlistEntry{}
	}
	return err
}
