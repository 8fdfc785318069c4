package signaling

import "sync"

// Member is a connection that can receive broadcast payloads. Deliver must
// be safe to call after the member has disconnected; late deliveries are
// discarded by the member itself.
type Member interface {
	Deliver(payload []byte)
}

// Registry tracks which members belong to which room group and fans
// broadcasts out to everyone in a group except the sender.
type Registry interface {
	Join(group string, m Member)
	Leave(group string, m Member)
	Broadcast(group string, sender Member, payload []byte)
}

// MemoryRegistry is the in-process Registry. Membership mutation holds the
// lock; delivery happens outside it against a snapshot, so a slow receiver
// cannot block joins or leaves.
type MemoryRegistry struct {
	mu     sync.Mutex
	groups map[string]map[Member]struct{}
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		groups: make(map[string]map[Member]struct{}),
	}
}

func (r *MemoryRegistry) Join(group string, m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.groups[group]
	if !ok {
		members = make(map[Member]struct{})
		r.groups[group] = members
	}
	members[m] = struct{}{}
}

// Leave is idempotent: removing an absent member is a no-op. The group is
// dropped once its last member leaves.
func (r *MemoryRegistry) Leave(group string, m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.groups[group]
	if !ok {
		return
	}
	delete(members, m)
	if len(members) == 0 {
		delete(r.groups, group)
	}
}

func (r *MemoryRegistry) Broadcast(group string, sender Member, payload []byte) {
	r.mu.Lock()
	snapshot := make([]Member, 0, len(r.groups[group]))
	for m := range r.groups[group] {
		if m != sender {
			snapshot = append(snapshot, m)
		}
	}
	r.mu.Unlock()

	for _, m := range snapshot {
		m.Deliver(payload)
	}
}

// Size reports the current membership count of a group.
func (r *MemoryRegistry) Size(group string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.groups[group])
}
