package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/code-payments/crowdfund/pkg/ledger/account"
)

type store struct {
	mu      sync.Mutex
	records map[string]*account.Record
	last    uint64
}

// New returns a new in memory account.Store
func New() account.Store {
	return &store{
		records: make(map[string]*account.Record),
	}
}

// Get implements account.Store.Get
func (s *store) Get(_ context.Context, address string) (*account.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.records[address]
	if !ok {
		return nil, account.ErrAccountNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

// GetAllByOwner implements account.Store.GetAllByOwner
func (s *store) GetAllByOwner(_ context.Context, owner string) ([]*account.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*account.Record
	for _, item := range s.records {
		if item.Owner != owner {
			continue
		}

		cloned := item.Clone()
		res = append(res, &cloned)
	}

	if len(res) == 0 {
		return nil, account.ErrAccountNotFound
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].Address < res[j].Address
	})
	return res, nil
}

// SaveAll implements account.Store.SaveAll
func (s *store) SaveAll(_ context.Context, records ...*account.Record) error {
	if err := account.ValidateBatch(records); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Check every version before mutating anything, so a stale record leaves
	// the whole batch unapplied
	for _, record := range records {
		var currentVersion uint64
		if item, ok := s.records[record.Address]; ok {
			currentVersion = item.Version
		}

		if record.Version != currentVersion {
			return account.ErrStaleVersion
		}
	}

	now := time.Now()
	for _, record := range records {
		item, ok := s.records[record.Address]
		if !ok {
			s.last++
			item = &account.Record{Id: s.last}
			s.records[record.Address] = item
		}

		id := item.Id
		record.CopyTo(item)
		item.Id = id
		item.Version++
		item.LastUpdatedAt = now
		if item.Data == nil {
			item.Data = []byte{}
		}

		item.CopyTo(record)
	}

	return nil
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*account.Record)
	s.last = 0
}
