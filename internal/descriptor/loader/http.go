package loader

import (
	"context"
	"errors"
	"time"

	"github.com/go-resty/resty/v2"
)

func loadHTTP(ctx context.Context, client *resty.Client, url string, timeout time.Duration) ([]byte, error) {
	if client == nil {
		return nil, errors.New("screener loader: http client is not configured")
	}
	if url == "" {
		return nil, errors.New("screener loader: url is required")
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := client.R().SetContext(reqCtx).Get(url)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, errors.New("screener loader: unexpected status " + resp.Status())
	}
	return resp.Body(), nil
}
