package httpserver

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	echo "github.com/labstack/echo/v4"

	"github.com/Skotchmaster/classroom/pkg/apperr"
	"github.com/Skotchmaster/classroom/pkg/logging"
)

const apiPrefix = "/api/v1"

// Upstream is a service the gateway forwards API traffic to.
type Upstream struct {
	Name string
	URL  string
	// Timeout bounds how long the gateway waits for response headers.
	// Zero leaves it unbounded.
	Timeout time.Duration
}

func baseTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// newProxy forwards to up with the API prefix removed, so a service sees
// /courses/abc where the client asked for /api/v1/courses/abc.
func newProxy(up Upstream) (echo.HandlerFunc, error) {
	target, err := url.Parse(up.URL)
	if err != nil {
		return nil, err
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.New(up.Name + ": upstream url must be absolute")
	}

	tr := baseTransport()
	tr.ResponseHeaderTimeout = up.Timeout

	p := &httputil.ReverseProxy{
		Transport:     tr,
		FlushInterval: 100 * time.Millisecond,
		Rewrite: func(pr *httputil.ProxyRequest) {
			out := pr.Out.URL
			out.Path = trimAPIPrefix(out.Path)
			if out.RawPath != "" {
				out.RawPath = trimAPIPrefix(out.RawPath)
			}
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Header.Set("X-Forwarded-Prefix", apiPrefix)
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			body := apperr.New(http.StatusBadGateway, apperr.CodeBadGateway, up.Name+" unavailable")
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				body = apperr.New(http.StatusGatewayTimeout, apperr.CodeGatewayTimeout, up.Name+" timed out")
			}
			logging.FromContext(r.Context()).Error("proxy_error", "upstream", up.Name, "status", body.Status, "error", err)

			w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w.WriteHeader(body.Status)
			_ = json.NewEncoder(w).Encode(body)
		},
	}

	return func(c echo.Context) error {
		p.ServeHTTP(c.Response(), c.Request())
		return nil
	}, nil
}

func trimAPIPrefix(path string) string {
	if rest, ok := strings.CutPrefix(path, apiPrefix); ok {
		if rest == "" {
			return "/"
		}
		return rest
	}
	return path
}
