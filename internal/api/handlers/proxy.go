package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/linkboost/internal/gateway"
	"github.com/pratik-mahalle/linkboost/internal/pkg/errors"
	"github.com/pratik-mahalle/linkboost/internal/pkg/utils"
)

// ProxyHandler exposes the upstream services through the gateway proxy
type ProxyHandler struct {
	proxy        *gateway.Proxy
	analyticsURL string
	gatewayURL   string
}

// NewProxyHandler creates a proxy handler
func NewProxyHandler(proxy *gateway.Proxy, analyticsURL, gatewayURL string) *ProxyHandler {
	return &ProxyHandler{
		proxy:        proxy,
		analyticsURL: analyticsURL,
		gatewayURL:   gatewayURL,
	}
}

// Predictions forwards /api/v1/predictions/* to the analytics service
// @Summary Predictions proxy
// @Tags Proxy
// @Produce json
// @Param path path string true "Prediction path"
// @Failure 400 {object} utils.ErrorResponse "Path outside /api/v1/predictions"
// @Failure 500 {object} utils.ErrorResponse "Upstream unavailable"
// @Router /predictions/{path} [get]
func (h *ProxyHandler) Predictions(w http.ResponseWriter, r *http.Request) {
	rest := chi.URLParam(r, "*")
	// chi routes on RawPath when the request carried escapes
	if r.URL.RawPath != "" {
		decoded, err := url.PathUnescape(rest)
		if err != nil {
			utils.WriteError(w, errors.ValidationError("Invalid path", nil))
			return
		}
		rest = decoded
	}

	target, appErr := gateway.PrefixTarget("analytics", h.analyticsURL, "/api/v1/predictions", rest, r.URL.Query())
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	h.proxy.Forward(w, r, target)
}

// AuthAction forwards /api/v1/auth?action=login|register to the gateway
// @Summary Auth action proxy
// @Tags Proxy
// @Accept json
// @Produce json
// @Param action query string true "login or register"
// @Failure 400 {object} utils.ErrorResponse "Action not allowed"
// @Failure 500 {object} utils.ErrorResponse "Upstream unavailable"
// @Router /auth [post]
func (h *ProxyHandler) AuthAction(w http.ResponseWriter, r *http.Request) {
	target, appErr := gateway.AuthActions.ActionTarget("gateway", h.gatewayURL, "/api/v1/auth", r.URL.Query())
	if appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	h.proxy.Forward(w, r, target)
}

// Gateway forwards the request to the gateway under the same path
func (h *ProxyHandler) Gateway(w http.ResponseWriter, r *http.Request) {
	h.proxy.Forward(w, r, gateway.Target{
		Name:    "gateway",
		BaseURL: h.gatewayURL,
		Path:    r.URL.Path,
		Query:   r.URL.Query(),
	})
}
