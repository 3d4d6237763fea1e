package domain

// BookingFact 是策略引擎评估预约请求时可见的事实集合。
type BookingFact struct {
	ResourceType    string
	Capacity        int
	DurationMinutes int64
	StartHour       int
	Weekday         int
}

// BookingPolicy 允许租户在内置校验之外附加自己的预约规则。
// 返回 nil 表示放行；违反规则返回 Validation 类错误。
type BookingPolicy interface {
	Evaluate(tenant string, fact BookingFact) error
}
