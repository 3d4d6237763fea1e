package adapter

import (
	"context"
	"strings"

	"campus/internal/pkg/apperr"
	"campus/internal/pkg/httpclient"
	"campus/internal/service/checkout/domain/port"
)

// HTTPPaymentGateway 通过 HTTP 调用远端支付提供方。
// 提供方约定: POST {base}/authorize 授权，POST {base}/cancel 撤销；
// 授权被拒时返回 declined=true 而不是错误状态码。
type HTTPPaymentGateway struct {
	client  *httpclient.Client
	baseURL string
}

func NewHTTPPaymentGateway(client *httpclient.Client, baseURL string) *HTTPPaymentGateway {
	return &HTTPPaymentGateway{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

type authorizeRequest struct {
	OrderID     string `json:"orderId"`
	AmountCents int64  `json:"amountCents"`
}

type authorizeResponse struct {
	GatewayRef string `json:"gatewayRef"`
	Declined   bool   `json:"declined"`
}

func (g *HTTPPaymentGateway) Authorize(ctx context.Context, orderID string, amountCents int64) (string, error) {
	var resp authorizeResponse
	err := g.client.PostJSON(ctx, g.baseURL+"/authorize", authorizeRequest{
		OrderID:     orderID,
		AmountCents: amountCents,
	}, &resp)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "payment provider unreachable", err)
	}
	if resp.Declined {
		return "", port.ErrPaymentDeclined
	}
	return resp.GatewayRef, nil
}

type cancelRequest struct {
	GatewayRef string `json:"gatewayRef"`
}

func (g *HTTPPaymentGateway) Cancel(ctx context.Context, gatewayRef string) error {
	return g.client.PostJSON(ctx, g.baseURL+"/cancel", cancelRequest{GatewayRef: gatewayRef}, nil)
}
