package rule

import (
	"campus/internal/pkg/apperr"
	"campus/internal/service/reservation/domain"

	"github.com/google/cel-go/cel"
	pkgerrors "github.com/pkg/errors"
)

// CelPolicyEngine 是 domain.BookingPolicy 的 CEL 实现。
// 租户的预约规则以 CEL 表达式配置，例如
// "duration_minutes <= 240 && start_hour >= 8"。
// 表达式在引擎构造时编译，配置错误在启动阶段即暴露。
type CelPolicyEngine struct {
	programs map[string]cel.Program
}

// NewCelPolicyEngine 编译每个租户的策略表达式。
// 表达式必须求值为 bool: true 放行，false 拒绝。
func NewCelPolicyEngine(tenantPolicies map[string]string) (*CelPolicyEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("resource_type", cel.StringType),
		cel.Variable("capacity", cel.IntType),
		cel.Variable("duration_minutes", cel.IntType),
		cel.Variable("start_hour", cel.IntType),
		cel.Variable("weekday", cel.IntType),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "create cel environment")
	}

	programs := make(map[string]cel.Program, len(tenantPolicies))
	for tenant, expr := range tenantPolicies {
		ast, issues := env.Compile(expr)
		if issues != nil && issues.Err() != nil {
			return nil, pkgerrors.Wrapf(issues.Err(), "compile booking policy for tenant %s", tenant)
		}
		if ast.OutputType() != cel.BoolType {
			return nil, pkgerrors.Errorf("booking policy for tenant %s must evaluate to bool", tenant)
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "build program for tenant %s", tenant)
		}
		programs[tenant] = program
	}

	return &CelPolicyEngine{programs: programs}, nil
}

// Evaluate 对租户策略求值。未配置策略的租户一律放行。
func (e *CelPolicyEngine) Evaluate(tenant string, fact domain.BookingFact) error {
	program, ok := e.programs[tenant]
	if !ok {
		return nil
	}

	out, _, err := program.Eval(map[string]interface{}{
		"resource_type":    fact.ResourceType,
		"capacity":         fact.Capacity,
		"duration_minutes": fact.DurationMinutes,
		"start_hour":       fact.StartHour,
		"weekday":          fact.Weekday,
	})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "evaluate booking policy", err)
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		return apperr.New(apperr.KindInternal, "booking policy did not evaluate to bool")
	}
	if !allowed {
		return apperr.Newf(apperr.KindValidation, "reservation violates tenant %s booking policy", tenant)
	}
	return nil
}
