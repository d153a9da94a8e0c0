package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"quickcompare/models"
	"quickcompare/utils"
)

// Client talks to the comparison backend: product search, trending
// lists, the obfuscated credential endpoint, and the auth endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *utils.Logger
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, logger *utils.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		logger:  logger,
	}
}

type searchRequest struct {
	ItemName string  `json:"item_name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

type searchOffer struct {
	Store    string `json:"store"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
	URL      string `json:"url"`
}

type searchProduct struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Image string        `json:"image"`
	Price []searchOffer `json:"price"`
}

type searchEnvelope struct {
	Data struct {
		Data []searchProduct `json:"data"`
	} `json:"data"`
}

// SearchResults posts the query and the user's coordinates to the
// backend and flattens the doubly-nested response envelope.
func (c *Client) SearchResults(ctx context.Context, itemName string, lat, lon float64) ([]models.ProductComparison, error) {
	var env searchEnvelope
	err := c.postJSON(ctx, "/get-search-results", searchRequest{ItemName: itemName, Lat: lat, Lon: lon}, &env)
	if err != nil {
		return nil, fmt.Errorf("search results: %w", err)
	}

	products := make([]models.ProductComparison, 0, len(env.Data.Data))
	for i, p := range env.Data.Data {
		id := p.ID
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		product := models.ProductComparison{
			ID:     id,
			Name:   p.Name,
			Image:  p.Image,
			Offers: make([]models.VendorOffer, 0, len(p.Price)),
		}
		for _, o := range p.Price {
			product.Offers = append(product.Offers, models.VendorOffer{
				Store:    o.Store,
				Price:    o.Price,
				Quantity: o.Quantity,
				URL:      o.URL,
			})
		}
		products = append(products, product)
	}
	return products, nil
}

type trendingEnvelope struct {
	Status string `json:"status"`
	Data   struct {
		Trending   []string `json:"trending"`
		DailyNeeds []string `json:"daily_needs"`
	} `json:"data"`
}

// Trending fetches the home-screen suggestion lists.
func (c *Client) Trending(ctx context.Context) (models.TrendingLists, error) {
	var env trendingEnvelope
	if err := c.postJSON(ctx, "/trending", struct{}{}, &env); err != nil {
		return models.TrendingLists{}, fmt.Errorf("trending: %w", err)
	}
	return models.TrendingLists{
		Trending:   env.Data.Trending,
		DailyNeeds: env.Data.DailyNeeds,
	}, nil
}

// FetchEncodedKey posts an empty body to the credential endpoint and
// returns the raw encoded response text. Decoding is the caller's job.
func (c *Client) FetchEncodedKey(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/get-api-key", nil)
	if err != nil {
		return "", fmt.Errorf("api key request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("api key fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api key fetch: unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("api key read: %w", err)
	}
	return string(raw), nil
}

// SignUpRequest carries the signup form fields.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers a new account.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.postJSON(ctx, "/signup", req, &out); err != nil {
		return models.AuthResponse{}, fmt.Errorf("signup: %w", err)
	}
	return out, nil
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn authenticates an existing account.
func (c *Client) SignIn(ctx context.Context, email, password string) (models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.postJSON(ctx, "/login", signInRequest{Email: email, Password: password}, &out); err != nil {
		return models.AuthResponse{}, fmt.Errorf("signin: %w", err)
	}
	return out, nil
}

// postJSON posts body as JSON to path and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
