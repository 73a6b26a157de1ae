package health

import "fmt"

// StructureCheck reports the graph unhealthy when its structural
// invariants fail. validate is typically (*chain.Synchronized).Validate.
func StructureCheck(validate func() error) CheckFunc {
	return func() Check {
		if err := validate(); err != nil {
			return Check{Status: StatusUnhealthy, Message: err.Error()}
		}
		return Check{Status: StatusHealthy, Message: "consistent"}
	}
}

// BacklogCheck reports the lazy backlog: degraded once dirty nodes plus
// deferred deliveries exceed limit. A limit of 0 never degrades.
func BacklogCheck(backlog func() (dirty, pending int), limit int) CheckFunc {
	return func() Check {
		dirty, pending := backlog()
		check := Check{
			Status: StatusHealthy,
			Details: map[string]any{
				"dirty_nodes":        dirty,
				"pending_deliveries": pending,
			},
		}
		if limit > 0 && dirty+pending > limit {
			check.Status = StatusDegraded
			check.Message = fmt.Sprintf("backlog %d exceeds %d", dirty+pending, limit)
		}
		return check
	}
}
