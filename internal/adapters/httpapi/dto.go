package httpapi

import (
	"time"

	"github.com/andrescamacho/furniture-factory/internal/application/enterprise"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
)

type errorResponse struct {
	Error string `json:"error"`
}

type budgetResponse struct {
	Starting string `json:"starting"`
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Current  string `json:"current"`
}

type employeeResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Busy     bool   `json:"busy"`
	Produced int    `json:"produced,omitempty"`
	Repaired int    `json:"repaired,omitempty"`
	Salary   string `json:"salary"`
}

type machineResponse struct {
	ID            string `json:"id"`
	Durability    int    `json:"durability"`
	MaxDurability int    `json:"max_durability"`
	Occupied      bool   `json:"occupied"`
	Broken        bool   `json:"broken"`
	RepairTime    string `json:"repair_time"`
}

type orderResponse struct {
	ID         string    `json:"order_id"`
	Furniture  string    `json:"furniture"`
	Material   string    `json:"material"`
	Quantity   int       `json:"quantity"`
	TotalPrice string    `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}

type jobResponse struct {
	OrderID    string     `json:"order_id"`
	Product    string     `json:"product"`
	Quantity   int        `json:"quantity"`
	Assignee   string     `json:"assignee,omitempty"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Runtime    string     `json:"runtime"`
	Error      string     `json:"error,omitempty"`
}

type snapshotResponse struct {
	TakenAt          time.Time          `json:"taken_at"`
	Budget           budgetResponse     `json:"budget"`
	Manager          *employeeResponse  `json:"manager,omitempty"`
	Carpenters       []employeeResponse `json:"carpenters"`
	Repairmen        []employeeResponse `json:"repairmen"`
	Machines         []machineResponse  `json:"machines"`
	RawMaterials     map[string]int     `json:"raw_materials"`
	FinishedProducts map[string]int     `json:"finished_products"`
	PendingOrders    []orderResponse    `json:"pending_orders"`
	Jobs             []jobResponse      `json:"jobs"`
}

type ledgerEntryResponse struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Amount        string    `json:"amount"`
	BalanceBefore string    `json:"balance_before"`
	BalanceAfter  string    `json:"balance_after"`
	Description   string    `json:"description"`
	Timestamp     time.Time `json:"timestamp"`
}

func newSnapshotResponse(snap enterprise.Snapshot) snapshotResponse {
	resp := snapshotResponse{
		TakenAt: snap.TakenAt,
		Budget: budgetResponse{
			Starting: snap.Budget.Starting.String(),
			Income:   snap.Budget.Income.String(),
			Expenses: snap.Budget.Expenses.String(),
			Current:  snap.Budget.Current.String(),
		},
		Carpenters:       make([]employeeResponse, 0, len(snap.Carpenters)),
		Repairmen:        make([]employeeResponse, 0, len(snap.Repairmen)),
		Machines:         make([]machineResponse, 0, len(snap.Machines)),
		RawMaterials:     make(map[string]int, len(snap.RawMaterials)),
		FinishedProducts: make(map[string]int, len(snap.FinishedProducts)),
		PendingOrders:    make([]orderResponse, 0, len(snap.PendingOrders)),
		Jobs:             make([]jobResponse, 0, len(snap.Jobs)),
	}
	if snap.Manager != nil {
		m := newEmployeeResponse(*snap.Manager)
		resp.Manager = &m
	}
	for _, c := range snap.Carpenters {
		resp.Carpenters = append(resp.Carpenters, newEmployeeResponse(c))
	}
	for _, r := range snap.Repairmen {
		resp.Repairmen = append(resp.Repairmen, newEmployeeResponse(r))
	}
	for _, m := range snap.Machines {
		resp.Machines = append(resp.Machines, machineResponse{
			ID:            m.ID,
			Durability:    m.Durability,
			MaxDurability: m.MaxDurability,
			Occupied:      m.Occupied,
			Broken:        m.Broken,
			RepairTime:    m.RepairTime.String(),
		})
	}
	for kind, qty := range snap.RawMaterials {
		resp.RawMaterials[string(kind)] = qty
	}
	for _, pc := range snap.FinishedProducts {
		resp.FinishedProducts[pc.Product.String()] = pc.Quantity
	}
	for _, o := range snap.PendingOrders {
		resp.PendingOrders = append(resp.PendingOrders, orderResponse{
			ID:         o.ID,
			Furniture:  string(o.Furniture),
			Material:   string(o.Material),
			Quantity:   o.Quantity,
			TotalPrice: o.TotalPrice.String(),
			CreatedAt:  o.CreatedAt,
		})
	}
	for _, j := range snap.Jobs {
		resp.Jobs = append(resp.Jobs, newJobResponse(j))
	}
	return resp
}

func newEmployeeResponse(s enterprise.EmployeeSnapshot) employeeResponse {
	return employeeResponse{
		ID:       s.ID,
		Name:     s.Name,
		Role:     string(s.Role),
		Busy:     s.Busy,
		Produced: s.Produced,
		Repaired: s.Repaired,
		Salary:   s.Salary.String(),
	}
}

func newOrderResponse(o *factory.Order) orderResponse {
	return orderResponse{
		ID:         o.ID(),
		Furniture:  string(o.Furniture()),
		Material:   string(o.Material()),
		Quantity:   o.Quantity(),
		TotalPrice: o.TotalPrice().String(),
		CreatedAt:  o.CreatedAt(),
	}
}

func newJobResponse(j factory.JobState) jobResponse {
	return jobResponse{
		OrderID:    j.OrderID,
		Product:    j.Product.String(),
		Quantity:   j.Quantity,
		Assignee:   j.Assignee,
		Status:     string(j.Status),
		CreatedAt:  j.CreatedAt,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
		Runtime:    j.Runtime.String(),
		Error:      j.Error,
	}
}

func newLedgerEntryResponse(e *factory.LedgerEntry) ledgerEntryResponse {
	return ledgerEntryResponse{
		ID:            e.ID(),
		Kind:          string(e.Kind()),
		Amount:        e.Amount().String(),
		BalanceBefore: e.BalanceBefore().String(),
		BalanceAfter:  e.BalanceAfter().String(),
		Description:   e.Description(),
		Timestamp:     e.Timestamp(),
	}
}
