package factory

// The four notification classes raised by the factory.
// Delivery order across different classes is unspecified.

// OrderReceived is raised when an order is enqueued
type OrderReceived struct {
	Order *Order
}

// MachineBroken is raised exactly once when a machine's durability reaches zero
type MachineBroken struct {
	Machine *Machine
}

// MaterialDepleted is raised when a material runs out or cannot satisfy a request
type MaterialDepleted struct {
	Material MaterialKind
}

// ProductionCompleted is raised by a carpenter after the whole order is produced
type ProductionCompleted struct {
	Order       *Order
	CarpenterID string
}
