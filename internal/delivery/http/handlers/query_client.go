package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/LavaJover/credit-ledger/internal/delivery/http/dto/response"
	ledgerdto "github.com/LavaJover/credit-ledger/internal/usecase/dto/ledger"
)

// HTTPQueryClient reads from a running ledger's query API.
type HTTPQueryClient struct {
	Address string
	client  *http.Client
}

func NewHTTPQueryClient(address string) (*HTTPQueryClient, error) {
	if address == "" {
		return nil, errors.New("query api address is empty")
	}
	return &HTTPQueryClient{
		Address: address,
		client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (c *HTTPQueryClient) GetLoan(ctx context.Context, loanID uint64) (*ledgerdto.LoanOutput, error) {
	var out ledgerdto.LoanOutput
	if err := c.get(ctx, fmt.Sprintf("/api/v1/loans/%d", loanID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPQueryClient) Reserve(ctx context.Context) (*ledgerdto.ReserveOutput, error) {
	var out ledgerdto.ReserveOutput
	if err := c.get(ctx, "/api/v1/reserve", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPQueryClient) Balance(ctx context.Context, owner string) (*ledgerdto.BalanceOutput, error) {
	var out ledgerdto.BalanceOutput
	if err := c.get(ctx, fmt.Sprintf("/api/v1/accounts/%s/balance", owner), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPQueryClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Address+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return json.Unmarshal(body, out)
	}
	var errorResponse response.ErrorResponse
	if err := json.Unmarshal(body, &errorResponse); err != nil {
		return fmt.Errorf("query api returned %d", resp.StatusCode)
	}
	return errors.New(errorResponse.Error)
}
