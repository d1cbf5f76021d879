package grpc

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/furniture-factory/internal/application/enterprise"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
)

// Amounts are encoded as decimal strings

func snapshotToStruct(snap enterprise.Snapshot) (*structpb.Struct, error) {
	staff := func(list []enterprise.EmployeeSnapshot) []interface{} {
		out := make([]interface{}, 0, len(list))
		for _, s := range list {
			out = append(out, employeeToMap(s))
		}
		return out
	}

	machines := make([]interface{}, 0, len(snap.Machines))
	for _, m := range snap.Machines {
		machines = append(machines, map[string]interface{}{
			"id":             m.ID,
			"durability":     m.Durability,
			"max_durability": m.MaxDurability,
			"occupied":       m.Occupied,
			"broken":         m.Broken,
			"repair_time":    m.RepairTime.String(),
		})
	}

	raw := make(map[string]interface{}, len(snap.RawMaterials))
	for kind, qty := range snap.RawMaterials {
		raw[string(kind)] = qty
	}

	finished := make(map[string]interface{}, len(snap.FinishedProducts))
	for _, pc := range snap.FinishedProducts {
		finished[pc.Product.String()] = pc.Quantity
	}

	pending := make([]interface{}, 0, len(snap.PendingOrders))
	for _, o := range snap.PendingOrders {
		pending = append(pending, map[string]interface{}{
			"order_id":    o.ID,
			"furniture":   string(o.Furniture),
			"material":    string(o.Material),
			"quantity":    o.Quantity,
			"total_price": o.TotalPrice.String(),
		})
	}

	jobs := make([]interface{}, 0, len(snap.Jobs))
	for _, j := range snap.Jobs {
		jobs = append(jobs, jobToMap(j))
	}

	m := map[string]interface{}{
		"taken_at": snap.TakenAt.Format(time.RFC3339Nano),
		"budget": map[string]interface{}{
			"starting": snap.Budget.Starting.String(),
			"income":   snap.Budget.Income.String(),
			"expenses": snap.Budget.Expenses.String(),
			"current":  snap.Budget.Current.String(),
		},
		"carpenters":        staff(snap.Carpenters),
		"repairmen":         staff(snap.Repairmen),
		"machines":          machines,
		"raw_materials":     raw,
		"finished_products": finished,
		"pending_orders":    pending,
		"jobs":              jobs,
	}
	if snap.Manager != nil {
		m["manager"] = employeeToMap(*snap.Manager)
	}
	return structpb.NewStruct(m)
}

func employeeToMap(s enterprise.EmployeeSnapshot) map[string]interface{} {
	m := map[string]interface{}{
		"id":     s.ID,
		"name":   s.Name,
		"role":   string(s.Role),
		"busy":   s.Busy,
		"salary": s.Salary.String(),
	}
	switch s.Role {
	case factory.RoleCarpenter:
		m["produced"] = s.Produced
	case factory.RoleRepairman:
		m["repaired"] = s.Repaired
	}
	return m
}

func jobToMap(j factory.JobState) map[string]interface{} {
	m := map[string]interface{}{
		"order_id":   j.OrderID,
		"product":    j.Product.String(),
		"quantity":   j.Quantity,
		"assignee":   j.Assignee,
		"status":     string(j.Status),
		"created_at": j.CreatedAt.Format(time.RFC3339Nano),
		"runtime":    j.Runtime.String(),
	}
	if j.StartedAt != nil {
		m["started_at"] = j.StartedAt.Format(time.RFC3339Nano)
	}
	if j.FinishedAt != nil {
		m["finished_at"] = j.FinishedAt.Format(time.RFC3339Nano)
	}
	if j.Error != "" {
		m["error"] = j.Error
	}
	return m
}
