package usecase

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	qport "github.com/Spana-App/SPANA-SERVER-sub002/internal/infrastructure/queue/port"
	comm "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/domain"
	repository "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/persistence/repository/port"
)

// fakeDirectory serves identities and bookings from maps, standing in for the
// marketplace's users and bookings tables.
type fakeDirectory struct {
	identities map[string]comm.Identity
	bookings   map[string]comm.BookingContext
	activePair map[[2]string]bool
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		identities: make(map[string]comm.Identity),
		bookings:   make(map[string]comm.BookingContext),
		activePair: make(map[[2]string]bool),
	}
}

func (d *fakeDirectory) addIdentity(id string, role comm.Role, phone string) {
	d.identities[id] = comm.Identity{ID: id, Role: role, Phone: phone}
}

func (d *fakeDirectory) addBooking(b comm.BookingContext) {
	d.bookings[b.ID] = b
	if b.Status.Live() {
		d.activePair[pairOf(b.CustomerID, b.ProviderID)] = true
	}
}

func pairOf(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func (d *fakeDirectory) GetIdentity(_ context.Context, id string) (comm.Identity, error) {
	ident, ok := d.identities[id]
	if !ok {
		return comm.Identity{}, fmt.Errorf("%w: identity %s", comm.ErrNotFound, id)
	}
	return ident, nil
}

func (d *fakeDirectory) GetBookingParticipants(_ context.Context, bookingID string) (comm.BookingContext, error) {
	b, ok := d.bookings[bookingID]
	if !ok {
		return comm.BookingContext{}, fmt.Errorf("%w: booking %s", comm.ErrNotFound, bookingID)
	}
	return b, nil
}

func (d *fakeDirectory) HasActiveBooking(_ context.Context, userA, userB string) (bool, error) {
	return d.activePair[pairOf(userA, userB)], nil
}

// fakeMessageRepo is an in-memory append-only log implementing the repository
// port, including the channel filtering semantics of the SQL adapter.
type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []comm.Message
	nextID   int
	calls    map[string]int
	saveErr  error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{calls: make(map[string]int)}
}

func (r *fakeMessageRepo) Save(_ context.Context, m comm.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["Save"]++
	if r.saveErr != nil {
		return "", r.saveErr
	}
	r.nextID++
	m.ID = "m" + strconv.Itoa(r.nextID)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC().Add(time.Duration(r.nextID) * time.Millisecond)
	}
	r.messages = append(r.messages, m)
	return m.ID, nil
}

func (r *fakeMessageRepo) ListByChannel(_ context.Context, q repository.ChannelQuery, limit, offset int) ([]comm.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["ListByChannel"]++
	var out []comm.Message
	for _, m := range r.messages {
		if q.BookingID != "" {
			if m.ChatType == comm.ChannelBooking && m.BookingID != nil && *m.BookingID == q.BookingID {
				out = append(out, m)
			}
			continue
		}
		if m.ChatType == comm.ChannelBooking {
			continue
		}
		receiver := ""
		if m.ReceiverID != nil {
			receiver = *m.ReceiverID
		}
		if (m.SenderID == q.IdentityID && receiver == q.PeerID) ||
			(m.SenderID == q.PeerID && receiver == q.IdentityID) {
			out = append(out, m)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) ListByIdentity(_ context.Context, identityID string) ([]comm.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["ListByIdentity"]++
	var out []comm.Message
	for _, m := range r.messages {
		if m.SenderID == identityID || (m.ReceiverID != nil && *m.ReceiverID == identityID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, q repository.ChannelQuery) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["MarkRead"]++
	var n int64
	for i := range r.messages {
		m := &r.messages[i]
		if m.IsRead || m.ReceiverID == nil || *m.ReceiverID != q.IdentityID {
			continue
		}
		if q.BookingID != "" {
			if m.BookingID != nil && *m.BookingID == q.BookingID {
				m.IsRead = true
				n++
			}
			continue
		}
		if m.SenderID == q.PeerID && m.ChatType != comm.ChannelBooking {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

// fakeNotifier captures live-relay payloads per recipient.
type fakeNotifier struct {
	mu        sync.Mutex
	delivered map[string][][]byte
	online    map[string]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{delivered: make(map[string][][]byte), online: make(map[string]bool)}
}

func (n *fakeNotifier) DeliverChat(toID string, payload []byte) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delivered[toID] = append(n.delivered[toID], payload)
	if n.online[toID] {
		return 1
	}
	return 0
}

func (n *fakeNotifier) payloadsFor(toID string) [][]byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.delivered[toID]
}

// fakeQueue records enqueued tasks without a broker.
type fakeQueue struct {
	mu    sync.Mutex
	tasks []qport.Task
}

func (q *fakeQueue) Enqueue(_ context.Context, t qport.Task, _ ...qport.EnqueueOption) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, t)
	return "task-" + strconv.Itoa(len(q.tasks)), nil
}

func (q *fakeQueue) Close() error { return nil }

func (q *fakeQueue) typesSeen() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.tasks))
	for _, t := range q.tasks {
		out = append(out, t.Type)
	}
	return out
}

// fakePresence marks a fixed set of identities online.
type fakePresence struct{ online map[string]bool }

func (p *fakePresence) IsOnline(_ context.Context, userID string) bool { return p.online[userID] }
