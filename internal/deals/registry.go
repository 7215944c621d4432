// Package deals tracks the deal metadata the analysis surface hangs off:
// an id, a title, the property's location, and the few figures known before
// any questionnaire is filled in.
package deals

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mgirard/rentadesk/internal/rentab"
)

type Meta struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Address       string    `json:"address,omitempty"`
	ZipCode       string    `json:"zipCode,omitempty"`
	City          string    `json:"city,omitempty"`
	PurchasePrice float64   `json:"purchasePrice,omitempty"`
	Surface       float64   `json:"surface,omitempty"`
	ResaleTarget  float64   `json:"resaleTarget,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type CreateInput struct {
	Title         string  `json:"title"`
	Address       string  `json:"address"`
	ZipCode       string  `json:"zipCode"`
	City          string  `json:"city"`
	PurchasePrice float64 `json:"purchasePrice"`
	Surface       float64 `json:"surface"`
	ResaleTarget  float64 `json:"resaleTarget"`
}

type Config struct {
	Clock func() time.Time
	NewID func() string
}

// Registry is an in-memory deal directory. Snapshots live in the deal
// store; the registry only answers "does this deal exist and what do we
// know about the property".
type Registry struct {
	mu    sync.Mutex
	cfg   Config
	deals map[string]*Meta
}

func NewRegistry(cfg Config) *Registry {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Registry{
		cfg:   cfg,
		deals: map[string]*Meta{},
	}
}

func (r *Registry) Create(input CreateInput) (*Meta, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	meta := &Meta{
		ID:            r.cfg.NewID(),
		Title:         title,
		Address:       strings.TrimSpace(input.Address),
		ZipCode:       strings.TrimSpace(input.ZipCode),
		City:          strings.TrimSpace(input.City),
		PurchasePrice: input.PurchasePrice,
		Surface:       input.Surface,
		ResaleTarget:  input.ResaleTarget,
		CreatedAt:     r.cfg.Clock().UTC(),
	}

	r.mu.Lock()
	r.deals[meta.ID] = meta
	r.mu.Unlock()

	cp := *meta
	return &cp, nil
}

func (r *Registry) Get(id string) (*Meta, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	meta, ok := r.deals[id]
	if !ok {
		return nil, false
	}
	cp := *meta
	return &cp, true
}

// List returns all deals, oldest first, ties broken by id so the order is
// stable under an injected fixed clock.
func (r *Registry) List() []Meta {
	r.mu.Lock()
	out := make([]Meta, 0, len(r.deals))
	for _, meta := range r.deals {
		out = append(out, *meta)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PrefillForm builds the first-load questionnaire for a deal that has no
// snapshot yet. Only figures the metadata actually carries are filled in;
// everything else stays blank and falls to zero during normalization.
func PrefillForm(meta *Meta) rentab.Form {
	form := rentab.Form{
		Strategy: string(rentab.StrategyResale),
	}
	if meta == nil {
		return form
	}
	if meta.PurchasePrice > 0 {
		form.PurchasePrice = formatAmount(meta.PurchasePrice)
	}
	if meta.Surface > 0 {
		form.Surface = formatAmount(meta.Surface)
	}
	if meta.ResaleTarget > 0 {
		form.TargetResalePrice = formatAmount(meta.ResaleTarget)
	}
	return form
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
