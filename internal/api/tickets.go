package api

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CatchTicketTTL is how long a victor may wait before claiming the defeated Pokémon.
const CatchTicketTTL = 10 * time.Minute

var (
	// ErrTicketNotFound is returned for an unknown, spent, or foreign ticket.
	ErrTicketNotFound = errors.New("catch ticket not found")
	// ErrTicketExpired is returned for a ticket older than CatchTicketTTL.
	ErrTicketExpired = errors.New("catch ticket expired")
)

// Catch is what a redeemed ticket grants.
type Catch struct {
	PokemonID int
	Name      string
}

type ticket struct {
	user    uuid.UUID
	catch   Catch
	expires time.Time
}

// TicketLedger issues and redeems single-use catch tickets in memory.
type TicketLedger struct {
	mu      sync.Mutex
	tickets map[uuid.UUID]ticket
	ttl     time.Duration
	now     func() time.Time
}

// NewTicketLedger creates an empty ledger. A nil now uses time.Now.
func NewTicketLedger(ttl time.Duration, now func() time.Time) *TicketLedger {
	if now == nil {
		now = time.Now
	}
	return &TicketLedger{tickets: make(map[uuid.UUID]ticket), ttl: ttl, now: now}
}

// Issue grants user the right to catch c once.
//
// Postcondition: Returns a fresh ticket id. Expired tickets are purged.
func (l *TicketLedger) Issue(user uuid.UUID, c Catch) uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for id, t := range l.tickets {
		if now.After(t.expires) {
			delete(l.tickets, id)
		}
	}
	id := uuid.New()
	l.tickets[id] = ticket{user: user, catch: c, expires: now.Add(l.ttl)}
	return id
}

// Redeem spends ticket id on behalf of user.
//
// Postcondition: A successful redeem removes the ticket. Returns
// ErrTicketNotFound or ErrTicketExpired otherwise.
func (l *TicketLedger) Redeem(id, user uuid.UUID) (Catch, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.tickets[id]
	if !ok || t.user != user {
		return Catch{}, ErrTicketNotFound
	}
	delete(l.tickets, id)
	if l.now().After(t.expires) {
		return Catch{}, ErrTicketExpired
	}
	return t.catch, nil
}

// Restore puts back a redeemed ticket when recording the catch failed.
func (l *TicketLedger) Restore(id, user uuid.UUID, c Catch) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tickets[id] = ticket{user: user, catch: c, expires: l.now().Add(l.ttl)}
}

// pendingBattles allows at most one battle in flight per user.
type pendingBattles struct {
	mu    sync.Mutex
	users map[uuid.UUID]struct{}
}

func newPendingBattles() *pendingBattles {
	return &pendingBattles{users: make(map[uuid.UUID]struct{})}
}

// acquire reports whether user had no battle in flight and marks one.
func (p *pendingBattles) acquire(user uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.users[user]; busy {
		return false
	}
	p.users[user] = struct{}{}
	return true
}

func (p *pendingBattles) release(user uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.users, user)
}
