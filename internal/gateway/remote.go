package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexanderramin/goaltree/internal/contract"
	"github.com/alexanderramin/goaltree/internal/domain"
)

// Remote talks to a goaltree server over /progressBars. The bearer token is
// the user id the server resolves against its users table.
type Remote struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewRemote creates a Remote gateway for the server at baseURL.
func NewRemote(baseURL, token string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
	}
}

func (r *Remote) LoadTree(ctx context.Context, scope Scope) (*domain.Tree, error) {
	path := "/progressBars"
	q := url.Values{}
	if scope.All {
		q.Set("all", "true")
	} else if scope.OwnerID != "" {
		q.Set("owner", scope.OwnerID)
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var resp contract.TreeResponse
	if err := r.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ToTree()
}

func (r *Remote) PersistAdd(ctx context.Context, parentID string, e domain.Entity) (Result, error) {
	var resp contract.Entity
	if err := r.do(ctx, http.MethodPost, "/progressBars", contract.FromEntity(e, parentID), &resp); err != nil {
		return Result{}, err
	}
	return Result{ID: resp.ID, Version: resp.Version}, nil
}

func (r *Remote) PersistEdit(ctx context.Context, e domain.Entity) (Result, error) {
	var resp contract.Entity
	path := "/progressBars/" + url.PathEscape(e.ID())
	if err := r.do(ctx, http.MethodPut, path, contract.FromEntity(e, ""), &resp); err != nil {
		return Result{}, err
	}
	return Result{ID: resp.ID, Version: resp.Version}, nil
}

func (r *Remote) PersistDelete(ctx context.Context, id string) (Result, error) {
	if err := r.do(ctx, http.MethodDelete, "/progressBars/"+url.PathEscape(id), nil, nil); err != nil {
		return Result{}, err
	}
	return Result{ID: id}, nil
}

func (r *Remote) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var e contract.ErrorResponse
		msg := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return contract.ErrorFromStatus(resp.StatusCode, fmt.Sprintf("%s %s", method, msg))
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
