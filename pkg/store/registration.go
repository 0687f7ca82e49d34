package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/kv"
	"go-rise-platform/pkg/logger"

	"github.com/asaskevich/EventBus"
)

// Payment is the wizard's view of the payment. Status here is what the
// backend last reported, never what the checkout widget claimed.
type Payment struct {
	ID             string          `json:"id,omitempty"`
	Type           string          `json:"type,omitempty"`
	Status         string          `json:"status,omitempty"`
	ProofFileID    string          `json:"proof_file_id,omitempty"`
	GatewayPayload json.RawMessage `json:"gateway_payload,omitempty"`
}

type Step2 struct {
	FullyFunded domain.FullyFundedData `json:"fully_funded"`
	SelfFunded  domain.SelfFundedData  `json:"self_funded"`
}

type Draft struct {
	Step1   domain.Step1 `json:"step1"`
	Step2   Step2        `json:"step2"`
	Payment Payment      `json:"payment"`
}

func (d Draft) clone() Draft {
	d.Payment.GatewayPayload = append(json.RawMessage(nil), d.Payment.GatewayPayload...)
	return d
}

// Input builds the submit payload for the chosen scholarship branch.
func (d Draft) Input() domain.RegistrationInput {
	in := domain.RegistrationInput{Step1: d.Step1}
	switch d.Step1.ScholarshipType {
	case domain.ScholarshipFullyFunded:
		ff := d.Step2.FullyFunded
		in.FullyFunded = &ff
	case domain.ScholarshipSelfFunded:
		sf := d.Step2.SelfFunded
		in.SelfFunded = &sf
	}
	return in
}

func newDraft() Draft {
	return Draft{Payment: Payment{Status: domain.PaymentPending}}
}

const persistTimeout = 2 * time.Second

// RegistrationStore holds the wizard's data. With persistDraft it is mirrored
// under kv.KeyDraft after every change.
type RegistrationStore struct {
	kv           kv.Store
	notify       notifier
	persistDraft bool

	mu    sync.RWMutex
	draft Draft
}

func NewRegistrationStore(store kv.Store, bus EventBus.Bus, persistDraft bool) *RegistrationStore {
	return &RegistrationStore{kv: store, notify: notifier{bus: bus}, persistDraft: persistDraft, draft: newDraft()}
}

// Init restores a persisted draft when draft persistence is on.
func (s *RegistrationStore) Init(ctx context.Context) error {
	if !s.persistDraft {
		return nil
	}
	draft := newDraft()
	found, err := kv.GetJSON(ctx, s.kv, kv.KeyDraft, &draft)
	if err != nil || !found {
		return err
	}
	s.mu.Lock()
	s.draft = draft
	s.mu.Unlock()
	return nil
}

func (s *RegistrationStore) update(field string, fn func(d *Draft)) {
	s.mu.Lock()
	fn(&s.draft)
	snapshot := s.draft.clone()
	s.mu.Unlock()

	s.persist(snapshot)
	s.notify.publish(TopicRegistrationChanged, RegistrationChanged{Field: field})
}

func (s *RegistrationStore) persist(d Draft) {
	if !s.persistDraft {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := kv.SetJSON(ctx, s.kv, kv.KeyDraft, d); err != nil {
		logger.Log.Warn("failed to persist registration draft", "error", err)
	}
}

func (s *RegistrationStore) SetStep1(step1 domain.Step1) {
	s.update("step1", func(d *Draft) { d.Step1 = step1 })
}

func (s *RegistrationStore) SetFullyFunded(data domain.FullyFundedData) {
	s.update("fully_funded", func(d *Draft) { d.Step2.FullyFunded = data })
}

func (s *RegistrationStore) SetSelfFunded(data domain.SelfFundedData) {
	s.update("self_funded", func(d *Draft) { d.Step2.SelfFunded = data })
}

func (s *RegistrationStore) SetEssayFile(fileID string) {
	s.update("essay_file", func(d *Draft) { d.Step2.FullyFunded.EssayFileID = fileID })
}

func (s *RegistrationStore) SetHeadshotFile(fileID string) {
	s.update("headshot_file", func(d *Draft) { d.Step2.SelfFunded.HeadshotFileID = fileID })
}

func (s *RegistrationStore) SetPaymentType(paymentType string) {
	s.update("payment.type", func(d *Draft) { d.Payment.Type = paymentType })
}

func (s *RegistrationStore) SetPaymentStatus(status string) {
	s.update("payment.status", func(d *Draft) { d.Payment.Status = status })
}

func (s *RegistrationStore) SetPaymentID(id string) {
	s.update("payment.id", func(d *Draft) { d.Payment.ID = id })
}

func (s *RegistrationStore) SetPaymentProof(fileID string) {
	s.update("payment.proof", func(d *Draft) { d.Payment.ProofFileID = fileID })
}

func (s *RegistrationStore) SetGatewayPayload(payload json.RawMessage) {
	payload = append(json.RawMessage(nil), payload...)
	s.update("payment.gateway", func(d *Draft) { d.Payment.GatewayPayload = payload })
}

func (s *RegistrationStore) ResetPayment() {
	s.update("payment", func(d *Draft) { d.Payment = newDraft().Payment })
}

// ResetAll clears the wizard and removes the persisted draft.
func (s *RegistrationStore) ResetAll() {
	s.mu.Lock()
	s.draft = newDraft()
	s.mu.Unlock()

	if s.persistDraft {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.kv.Delete(ctx, kv.KeyDraft); err != nil {
			logger.Log.Warn("failed to remove registration draft", "error", err)
		}
	}
	s.notify.publish(TopicRegistrationChanged, RegistrationChanged{Field: "all"})
}

func (s *RegistrationStore) Data() Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft.clone()
}

func (s *RegistrationStore) Step1() domain.Step1 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft.Step1
}

func (s *RegistrationStore) Step2() Step2 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft.Step2
}

func (s *RegistrationStore) Payment() Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft.clone().Payment
}
