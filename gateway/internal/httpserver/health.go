package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	echo "github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/classroom/pkg/logging"
)

const defaultReadyTimeout = 2 * time.Second

// ready reports 200 only when every upstream answers its own /health/ready.
func ready(ups []Upstream, timeout time.Duration) echo.HandlerFunc {
	if timeout <= 0 {
		timeout = defaultReadyTimeout
	}
	client := &http.Client{Transport: baseTransport(), Timeout: timeout}

	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()

		var (
			mu     sync.Mutex
			status = make(map[string]string, len(ups))
			g      errgroup.Group
		)
		for _, up := range ups {
			g.Go(func() error {
				state := "up"
				if err := checkReady(ctx, client, up.URL); err != nil {
					logging.FromContext(ctx).Warn("upstream_not_ready", "upstream", up.Name, "error", err)
					state = "down"
				}
				mu.Lock()
				status[up.Name] = state
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		code := http.StatusOK
		for _, s := range status {
			if s != "up" {
				code = http.StatusServiceUnavailable
				break
			}
		}
		return c.JSON(code, map[string]any{"upstreams": status})
	}
}

func checkReady(ctx context.Context, client *http.Client, base string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+"/health/ready", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
