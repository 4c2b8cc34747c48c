package realtime

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// EnvelopeType enumerates the ephemeral payloads the relay routes.
type EnvelopeType string

// Chat traffic is not an envelope type: persisted messages fan out through
// DeliverChat so the live frame and the stored row stay one artifact.
const (
	TypeOffer  EnvelopeType = "offer"
	TypeAnswer EnvelopeType = "answer"
	TypeICE    EnvelopeType = "ice"
	TypeEnd    EnvelopeType = "end"
	TypeTyping EnvelopeType = "typing"
)

// Envelope is a transient signaling payload. It exists only for the duration
// of relay and is never persisted.
type Envelope struct {
	ID        string          `json:"id"`
	Type      EnvelopeType    `json:"type"`
	FromID    string          `json:"from_id"`
	ToID      string          `json:"to_id"`
	BookingID string          `json:"booking_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// ErrOffline is returned when a signaling envelope addresses an identity with
// no open connection. A call cannot proceed to an offline peer; chat traffic
// never sees this error because it falls back to offline persistence.
var ErrOffline = errors.New("realtime: recipient has no open connection")

type callState int

const (
	callOfferSent callState = iota
	callAnswerReceived
)

// pairKey orders the two peer ids so both directions address the same session.
type pairKey struct{ a, b string }

func newPairKey(x, y string) pairKey {
	if strings.Compare(x, y) > 0 {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// Relay routes ephemeral envelopes between two identities located via the
// Registry. It is transport, not a call-session authority: it tracks just
// enough per-pair state to drop post-termination traffic quietly, because
// call teardown races are expected and must not crash the relay.
type Relay struct {
	registry *Registry

	mu    sync.Mutex
	calls map[pairKey]callState
}

// NewRelay constructs a Relay over the given registry.
func NewRelay(registry *Registry) *Relay {
	return &Relay{
		registry: registry,
		calls:    make(map[pairKey]callState),
	}
}

// Signal routes one call-negotiation or typing envelope to every connection
// of the addressee, in the order received from the sender's connection.
//
// A fresh offer opens a new call session for the pair. Answer, ice and end
// addressed to a pair with no live session are dropped with a debug no-op,
// never an error. Negotiation frames that reach an offline peer return
// ErrOffline and end the session; a call cannot proceed without the other
// end. Typing frames and end signals to an offline peer are simply lost.
func (r *Relay) Signal(env Envelope) error {
	if env.ID == "" {
		env.ID = uuid.NewString()
	}
	key := newPairKey(env.FromID, env.ToID)

	switch env.Type {
	case TypeOffer:
		if !r.registry.Online(env.ToID) {
			return ErrOffline
		}
		r.mu.Lock()
		r.calls[key] = callOfferSent
		r.mu.Unlock()

	case TypeAnswer:
		r.mu.Lock()
		_, live := r.calls[key]
		if live {
			r.calls[key] = callAnswerReceived
		}
		r.mu.Unlock()
		if !live {
			log.Printf("realtime: drop %s for ended pair %s<->%s", env.Type, env.FromID, env.ToID)
			return nil
		}

	case TypeICE:
		r.mu.Lock()
		_, live := r.calls[key]
		r.mu.Unlock()
		if !live {
			log.Printf("realtime: drop %s for ended pair %s<->%s", env.Type, env.FromID, env.ToID)
			return nil
		}

	case TypeEnd:
		r.mu.Lock()
		_, live := r.calls[key]
		delete(r.calls, key)
		r.mu.Unlock()
		if !live {
			// End for an already-ended call: the expected teardown race.
			return nil
		}

	case TypeTyping:
		// No session semantics; typing to an offline peer is simply lost.

	default:
		return errors.New("realtime: unknown envelope type " + string(env.Type))
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	delivered := r.registry.Deliver(env.ToID, payload)
	if delivered == 0 {
		switch env.Type {
		case TypeOffer, TypeAnswer, TypeICE:
			// The peer went fully offline under a live session. The call
			// cannot proceed; tear the session down and tell the sender.
			r.mu.Lock()
			delete(r.calls, key)
			r.mu.Unlock()
			return ErrOffline
		}
	}
	return nil
}

// DeliverChat fans a persisted chat payload out to the recipient's open
// connections. Offline recipients read it later via history; the returned
// count is informational only.
func (r *Relay) DeliverChat(toID string, payload []byte) int {
	return r.registry.Deliver(toID, payload)
}

// DropPeer ends every call session involving userID, propagating a single end
// signal to each counterpart. Called when a peer disconnects its last device.
func (r *Relay) DropPeer(userID string) {
	r.mu.Lock()
	var counterparts []string
	for key := range r.calls {
		switch userID {
		case key.a:
			counterparts = append(counterparts, key.b)
		case key.b:
			counterparts = append(counterparts, key.a)
		default:
			continue
		}
		delete(r.calls, key)
	}
	r.mu.Unlock()

	for _, peer := range counterparts {
		end := Envelope{ID: uuid.NewString(), Type: TypeEnd, FromID: userID, ToID: peer}
		if payload, err := json.Marshal(end); err == nil {
			r.registry.Deliver(peer, payload)
		}
	}
}

// TerminatePair ends any call session between the two identities without
// notification. Used by the lifecycle binder on channel termination; the
// binder sends its own system notice.
func (r *Relay) TerminatePair(a, b string) {
	r.mu.Lock()
	delete(r.calls, newPairKey(a, b))
	r.mu.Unlock()
}
