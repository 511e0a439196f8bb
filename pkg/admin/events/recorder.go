package events

import (
	"context"
	"sync"

	"regdesk-be/internal/entity"
)

// Recorded is one call captured by Recorder
type Recorded struct {
	Type  string
	Id    string
	Actor string
}

// Recorder is an in-memory Publisher for tests
type Recorder struct {
	mu     sync.Mutex
	Events []Recorded
}

func (r *Recorder) add(e Recorded) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, e)
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		types = append(types, e.Type)
	}
	return types
}

func (r *Recorder) PublishRegistrationChanged(ctx context.Context, eventType string, reg *entity.Registration, actor string) {
	r.add(Recorded{Type: eventType, Id: reg.Id.String(), Actor: actor})
}

func (r *Recorder) PublishTransferRequested(ctx context.Context, req *entity.CategoryTransferRequest) {
	r.add(Recorded{Type: "CATEGORY_TRANSFER_REQUESTED", Id: req.Id.String()})
}

func (r *Recorder) PublishTransferResolved(ctx context.Context, req *entity.CategoryTransferRequest) {
	actor := ""
	if req.ResolvedBy != nil {
		actor = *req.ResolvedBy
	}
	r.add(Recorded{Type: "CATEGORY_TRANSFER_RESOLVED", Id: req.Id.String(), Actor: actor})
}

func (r *Recorder) PublishExpiryAlertsSurfaced(ctx context.Context, expiredCount, expiringSoonCount int) {
	r.add(Recorded{Type: "EXPIRY_ALERTS_SURFACED"})
}
