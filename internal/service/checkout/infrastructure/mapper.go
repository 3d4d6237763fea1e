package infrastructure

import (
	"encoding/json"

	"campus/internal/service/checkout/domain"

	pkgerrors "github.com/pkg/errors"
)

type orderItemRecord struct {
	ProductID      string `json:"productId"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// FromDomainOrder 将领域模型转换为数据库模型。
func FromDomainOrder(order *domain.Order) (*OrderModel, error) {
	records := make([]orderItemRecord, 0, len(order.Items))
	for _, item := range order.Items {
		records = append(records, orderItemRecord{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "marshal order items")
	}

	return &OrderModel{
		ID:         order.ID,
		Tenant:     order.Tenant,
		BuyerID:    order.BuyerID,
		Items:      string(data),
		TotalCents: order.TotalCents,
		Status:     string(order.Status),
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}, nil
}

// ToDomainOrder 将数据库模型转换为领域模型。
func ToDomainOrder(model *OrderModel) (*domain.Order, error) {
	if model == nil {
		return nil, nil
	}
	var records []orderItemRecord
	if err := json.Unmarshal([]byte(model.Items), &records); err != nil {
		return nil, pkgerrors.Wrap(err, "unmarshal order items")
	}
	items := make([]domain.OrderItem, 0, len(records))
	for _, record := range records {
		items = append(items, domain.OrderItem{
			ProductID:      record.ProductID,
			Quantity:       record.Quantity,
			UnitPriceCents: record.UnitPriceCents,
		})
	}

	return &domain.Order{
		ID:         model.ID,
		Tenant:     model.Tenant,
		BuyerID:    model.BuyerID,
		Items:      items,
		TotalCents: model.TotalCents,
		Status:     domain.OrderStatus(model.Status),
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}, nil
}

// FromDomainPayment 将领域模型转换为数据库模型。
func FromDomainPayment(payment *domain.Payment) *PaymentModel {
	return &PaymentModel{
		ID:          payment.ID,
		OrderID:     payment.OrderID,
		AmountCents: payment.AmountCents,
		Status:      string(payment.Status),
		GatewayRef:  payment.GatewayRef,
		CreatedAt:   payment.CreatedAt,
		UpdatedAt:   payment.UpdatedAt,
	}
}

// ToDomainPayment 将数据库模型转换为领域模型。
func ToDomainPayment(model *PaymentModel) *domain.Payment {
	if model == nil {
		return nil
	}
	return &domain.Payment{
		ID:          model.ID,
		OrderID:     model.OrderID,
		AmountCents: model.AmountCents,
		Status:      domain.PaymentStatus(model.Status),
		GatewayRef:  model.GatewayRef,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// ToDomainStockLine 将数据库模型转换为领域模型。
func ToDomainStockLine(model *StockLineModel) *domain.StockLine {
	if model == nil {
		return nil
	}
	return &domain.StockLine{
		ProductID:      model.ProductID,
		Tenant:         model.Tenant,
		AvailableQty:   model.AvailableQty,
		UnitPriceCents: model.UnitPriceCents,
	}
}
