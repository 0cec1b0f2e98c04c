package controlplane

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"dbscale/pkg/config"
	"dbscale/pkg/logger"
)

// AzureClient implements Client against the Azure Resource Manager SQL
// database API.
type AzureClient struct {
	baseURL    string
	apiVersion string
	token      string
	httpClient *http.Client
}

// NewAzureClient creates a new ARM client. The bearer token is read from the
// environment variable named by cfg.TokenEnv; acquiring it is the caller's
// responsibility.
func NewAzureClient(cfg *config.ControlPlaneConfig) *AzureClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://management.azure.com"
	}

	token := os.Getenv(cfg.TokenEnv)
	if token == "" {
		logger.Warnf("control-plane token env %s is empty, ARM requests will be unauthenticated", cfg.TokenEnv)
	}

	return &AzureClient{
		baseURL:    baseURL,
		apiVersion: cfg.APIVersion,
		token:      token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// armDatabase is the subset of the ARM database resource we read.
type armDatabase struct {
	ID  string `json:"id"`
	SKU struct {
		Name     string `json:"name"`
		Capacity int    `json:"capacity"`
	} `json:"sku"`
}

// armCapacityPatch is the PATCH body for a capacity change.
type armCapacityPatch struct {
	SKU struct {
		Capacity int `json:"capacity"`
	} `json:"sku"`
}

func (c *AzureClient) databaseURL(id DatabaseID) string {
	return fmt.Sprintf("%s/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Sql/servers/%s/databases/%s?api-version=%s",
		c.baseURL, id.SubscriptionID, id.ResourceGroup, id.Server, id.Name, c.apiVersion)
}

// GetDatabase reads the database resource and extracts its SKU and capacity.
func (c *AzureClient) GetDatabase(ctx context.Context, id DatabaseID) (*Snapshot, error) {
	respData, err := c.doRequest(ctx, http.MethodGet, c.databaseURL(id), nil)
	if err != nil {
		return nil, err
	}

	var db armDatabase
	if err := json.Unmarshal(respData, &db); err != nil {
		return nil, fmt.Errorf("failed to parse database response: %w", err)
	}

	return &Snapshot{
		Capacity:   db.SKU.Capacity,
		SKUName:    db.SKU.Name,
		ResourceID: db.ID,
	}, nil
}

// SetCapacity PATCHes the database SKU capacity. ARM accepts the change with
// 200 or 202 and converges asynchronously.
func (c *AzureClient) SetCapacity(ctx context.Context, id DatabaseID, cores int) error {
	var patch armCapacityPatch
	patch.SKU.Capacity = cores

	_, err := c.doRequest(ctx, http.MethodPatch, c.databaseURL(id), &patch)
	return err
}

// doRequest performs an HTTP request with proper authentication
func (c *AzureClient) doRequest(ctx context.Context, method, url string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)

		logger.Debugf("ARM request: %s %s, body: %s", method, url, string(jsonData))
	} else {
		logger.Debugf("ARM request: %s %s", method, url)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	logger.Debugf("ARM response: status %d, body: %s", resp.StatusCode, string(respData))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("ARM returned status %d: %s", resp.StatusCode, string(respData))
	}

	return respData, nil
}
