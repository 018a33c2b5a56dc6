package service

import (
	"fmt"
	"log/slog"

	"nftStatApp/internal/domain/model"
)

// Observer receives store notifications. Calls are synchronous, in subscription
// order, after the state change and before the triggering call returns.
// Observers must not apply events to the store from inside a callback.
type Observer interface {
	TransactionsUpdated(transactions []model.TransactionRecord)
	GlobalStatsUpdated(stats model.GlobalMarketStats)
	AssetPriceHistoryUpdated(assetID string, history model.AssetPriceHistory)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnTransactions func([]model.TransactionRecord)
	OnGlobalStats  func(model.GlobalMarketStats)
	OnPriceHistory func(string, model.AssetPriceHistory)
}

func (f ObserverFuncs) TransactionsUpdated(transactions []model.TransactionRecord) {
	if f.OnTransactions != nil {
		f.OnTransactions(transactions)
	}
}

func (f ObserverFuncs) GlobalStatsUpdated(stats model.GlobalMarketStats) {
	if f.OnGlobalStats != nil {
		f.OnGlobalStats(stats)
	}
}

func (f ObserverFuncs) AssetPriceHistoryUpdated(assetID string, history model.AssetPriceHistory) {
	if f.OnPriceHistory != nil {
		f.OnPriceHistory(assetID, history)
	}
}

type subscription struct {
	id       uint64
	observer Observer
}

// notification is the payload of one round of observer calls.
type notification struct {
	transactions []model.TransactionRecord
	stats        *model.GlobalMarketStats
	history      *model.AssetPriceHistory
}

// Subscribe registers an observer and returns a function that removes it.
func (s *AnalyticsStore) Subscribe(o Observer) (unsubscribe func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.observers = append(s.observers, subscription{id: id, observer: o})

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		for i, sub := range s.observers {
			if sub.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *AnalyticsStore) subscribers() []subscription {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	return append([]subscription(nil), s.observers...)
}

// notify delivers n to every observer. Each observer gets its own copies so one
// cannot change what the next one sees.
func (s *AnalyticsStore) notify(n notification) {
	for _, sub := range s.subscribers() {
		if n.transactions != nil {
			transactions := cloneTransactions(n.transactions)
			s.deliver(sub, "transactions", func() { sub.observer.TransactionsUpdated(transactions) })
		}
		if n.stats != nil {
			stats := n.stats.Clone()
			s.deliver(sub, "global_stats", func() { sub.observer.GlobalStatsUpdated(stats) })
		}
		if n.history != nil {
			history := n.history.Clone()
			s.deliver(sub, "price_history", func() { sub.observer.AssetPriceHistoryUpdated(history.AssetID, history) })
		}
	}
}

// deliver runs one observer callback, recovering panics so a broken observer
// cannot affect the store or the remaining observers.
func (s *AnalyticsStore) deliver(sub subscription, topic string, call func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("observer panicked",
				slog.Uint64("subscription", sub.id),
				slog.String("topic", topic),
				slog.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	call()
}
