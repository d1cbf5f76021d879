package factory_test

import (
	"sync"

	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
)

// recordingSink captures every event raised by domain objects
type recordingSink struct {
	mu        sync.Mutex
	broken    []factory.MachineBroken
	depleted  []factory.MaterialDepleted
	completed []factory.ProductionCompleted
}

func (s *recordingSink) MachineBroken(e factory.MachineBroken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken = append(s.broken, e)
}

func (s *recordingSink) MaterialDepleted(e factory.MaterialDepleted) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.depleted = append(s.depleted, e)
}

func (s *recordingSink) ProductionCompleted(e factory.ProductionCompleted) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, e)
}

func (s *recordingSink) brokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.broken)
}

func (s *recordingSink) depletedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.depleted)
}
