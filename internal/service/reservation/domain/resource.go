package domain

// Resource 是可被预约的校园资源（教室、实验台、场馆等）。
// 资源归属于单一租户，本服务范围内只创建不修改。
type Resource struct {
	ID       string
	Tenant   string
	Name     string
	Type     string
	Capacity int
}
