package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/arcty/pkg/domain"
)

// PlanInterceptor decides whether a UI plan attached to an answer may be
// replayed. It returns true if replay should proceed.
type PlanInterceptor func(ctx context.Context, plan domain.Plan) (bool, error)

// MultiInterceptor chains interceptors. The first refusal wins.
func MultiInterceptor(interceptors ...PlanInterceptor) PlanInterceptor {
	return func(ctx context.Context, plan domain.Plan) (bool, error) {
		for _, interceptor := range interceptors {
			allowed, err := interceptor(ctx, plan)
			if err != nil {
				return false, err
			}
			if !allowed {
				return false, nil
			}
		}
		return true, nil
	}
}

// ConfirmationMiddleware lists the steps through the handler and asks the
// visitor before allowing the replay.
func ConfirmationMiddleware(handler IOHandler) PlanInterceptor {
	return func(ctx context.Context, plan domain.Plan) (bool, error) {
		if err := handler.SystemOutput(ctx, describePlan(plan)+"\nRun these steps? [y/N]"); err != nil {
			return false, err
		}

		input, err := handler.Input(ctx)
		if err != nil {
			return false, err
		}

		input = strings.TrimSpace(strings.ToLower(input))
		return input == "y" || input == "yes", nil
	}
}

// AutoApproveMiddleware allows everything.
func AutoApproveMiddleware() PlanInterceptor {
	return func(ctx context.Context, plan domain.Plan) (bool, error) {
		return true, nil
	}
}

func describePlan(plan domain.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This answer comes with %d UI step(s):", len(plan))
	for _, a := range plan {
		fmt.Fprintf(&b, "\n  %s %s", a.Type, a.Selector)
		if a.Text != "" {
			fmt.Fprintf(&b, " %q", a.Text)
		}
	}
	return b.String()
}
