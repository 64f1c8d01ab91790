package client

import (
	"sync"

	"github.com/cskr/pubsub"
)

const (
	//SENDING is the pubsub topic carrying sending-state change events
	SENDING = "sending"
)

// Event reports that a recipient's send settled.
type Event struct {
	Email string
	Sent  bool
}

// SendingState tracks which recipients are currently being sent to and which
// have been sent during the current bulk run. It is ephemeral: reset at the
// start of every run, never persisted.
type SendingState struct {
	mu           sync.Mutex
	ps           *pubsub.PubSub
	bulkInFlight bool
	inFlight     map[string]struct{}
	sent         map[string]struct{}
}

func NewSendingState() *SendingState {
	return &SendingState{
		ps:       pubsub.New(100),
		inFlight: map[string]struct{}{},
		sent:     map[string]struct{}{},
	}
}

// BeginBulk resets the run state and marks every email as in flight.
func (s *SendingState) BeginBulk(emails []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bulkInFlight = true
	s.inFlight = map[string]struct{}{}
	s.sent = map[string]struct{}{}
	for _, email := range emails {
		s.inFlight[email] = struct{}{}
	}
}

// Settle clears the email from the in-flight set the moment its send settles
// and records a success in the sent set.
func (s *SendingState) Settle(email string, sent bool) {
	s.mu.Lock()
	delete(s.inFlight, email)
	if sent {
		s.sent[email] = struct{}{}
	}
	s.mu.Unlock()

	s.ps.Pub(Event{Email: email, Sent: sent}, SENDING)
}

func (s *SendingState) EndBulk() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bulkInFlight = false
	s.inFlight = map[string]struct{}{}
}

func (s *SendingState) IsBulkInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bulkInFlight
}

func (s *SendingState) IsSending(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[email]
	return ok
}

func (s *SendingState) IsSent(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sent[email]
	return ok
}

func (s *SendingState) Subscribe() chan interface{} {
	return s.ps.Sub(SENDING)
}

func (s *SendingState) Unsubscribe(ch chan interface{}) {
	s.ps.Unsub(ch, SENDING)
}
