package infrastructure

import "time"

// ResourceModel 是 Resource 领域对象在数据库中的表示。
type ResourceModel struct {
	ID       string `gorm:"primaryKey;size:36"`
	Tenant   string `gorm:"size:64;index:idx_resources_tenant"`
	Name     string `gorm:"size:128"`
	Type     string `gorm:"size:64"`
	Capacity int
}

func (ResourceModel) TableName() string {
	return "resources"
}

// ReservationModel 是 Reservation 领域对象在数据库中的表示。
// (resource_id, tenant, status) 上的组合索引服务于重叠检查的快照查询。
type ReservationModel struct {
	ID         string `gorm:"primaryKey;size:36"`
	ResourceID string `gorm:"size:36;index:idx_reservations_slot"`
	Tenant     string `gorm:"size:64;index:idx_reservations_slot"`
	UserID     string `gorm:"size:64"`
	StartTime  time.Time
	EndTime    time.Time
	Status     string `gorm:"size:16;index:idx_reservations_slot"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ReservationModel) TableName() string {
	return "reservations"
}
