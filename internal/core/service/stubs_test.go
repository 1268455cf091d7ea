package service

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Permissions = slices.Clone(u.Permissions)
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	c := cloneUser(user)
	if c.ID == "" {
		r.nextID++
		c.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, update ports.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Role != nil {
		u.Role = *update.Role
		u.Permissions = slices.Clone(update.Permissions)
	}
	if update.IsActive != nil {
		u.IsActive = *update.IsActive
	}
	if update.PasswordHash != nil {
		u.PasswordHash = *update.PasswordHash
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *stubUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type stubVendorRepo struct {
	mu      sync.Mutex
	vendors map[string]*domain.Vendor
	nextID  int
	saveErr error
}

func newStubVendorRepo() *stubVendorRepo {
	return &stubVendorRepo{vendors: make(map[string]*domain.Vendor)}
}

func cloneVendor(v *domain.Vendor) *domain.Vendor {
	if v == nil {
		return nil
	}
	clone := *v
	clone.ServiceCategories = slices.Clone(v.ServiceCategories)
	return &clone
}

func (r *stubVendorRepo) Create(_ context.Context, v *domain.Vendor) (*domain.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.vendors {
		if existing.Email == v.Email {
			return nil, domain.ErrVendorExists
		}
	}
	c := cloneVendor(v)
	if c.ID == "" {
		r.nextID++
		c.ID = fmt.Sprintf("vendor-%d", r.nextID)
	}
	r.vendors[c.ID] = c
	return cloneVendor(c), nil
}

func (r *stubVendorRepo) FindByEmail(_ context.Context, email string) (*domain.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.vendors {
		if v.Email == email {
			return cloneVendor(v), nil
		}
	}
	return nil, domain.ErrVendorNotFound
}

func (r *stubVendorRepo) FindByID(_ context.Context, id string) (*domain.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vendors[id]
	if !ok {
		return nil, domain.ErrVendorNotFound
	}
	return cloneVendor(v), nil
}

func (r *stubVendorRepo) List(_ context.Context, f ports.VendorFilter) ([]*domain.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Vendor
	for _, v := range r.vendors {
		if f.VerificationStatus != "" && string(v.VerificationStatus) != f.VerificationStatus {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(v.BusinessName), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, cloneVendor(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubVendorRepo) Save(_ context.Context, v *domain.Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if _, ok := r.vendors[v.ID]; !ok {
		return domain.ErrVendorNotFound
	}
	r.vendors[v.ID] = cloneVendor(v)
	return nil
}

func (r *stubVendorRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vendors[id]
	if !ok {
		return domain.ErrVendorNotFound
	}
	v.LastLogin = &at
	return nil
}

func (r *stubVendorRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vendors[id]; !ok {
		return domain.ErrVendorNotFound
	}
	delete(r.vendors, id)
	return nil
}

// stubInventoryRepo mirrors the Mongo repository's filtering and sort order.
type stubInventoryRepo struct {
	mu      sync.Mutex
	items   map[string]map[string]*domain.Item // collection -> id -> item
	nextOID int
	findErr error
	updates int
	queries []ports.ItemQuery
}

func newStubInventoryRepo() *stubInventoryRepo {
	return &stubInventoryRepo{items: make(map[string]map[string]*domain.Item)}
}

func cloneItem(it *domain.Item) *domain.Item {
	if it == nil {
		return nil
	}
	clone := *it
	clone.Tags = slices.Clone(it.Tags)
	clone.Images = slices.Clone(it.Images)
	clone.Attributes = make(map[string]any, len(it.Attributes))
	for k, v := range it.Attributes {
		if s, ok := v.([]string); ok {
			v = slices.Clone(s)
		}
		clone.Attributes[k] = v
	}
	return &clone
}

func (r *stubInventoryRepo) Insert(_ context.Context, cat domain.CategoryDescriptor, item *domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == "" {
		r.nextOID++
		item.ID = fmt.Sprintf("%024x", r.nextOID)
	}
	coll := r.items[cat.Collection]
	if coll == nil {
		coll = make(map[string]*domain.Item)
		r.items[cat.Collection] = coll
	}
	if _, exists := coll[item.ID]; exists {
		return domain.ErrDuplicateItem
	}
	coll[item.ID] = cloneItem(item)
	return nil
}

func (r *stubInventoryRepo) FindByID(_ context.Context, cat domain.CategoryDescriptor, id, vendorID string) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	it, ok := r.items[cat.Collection][id]
	if !ok || (vendorID != "" && it.VendorID != vendorID) {
		return nil, domain.ErrItemNotFound
	}
	return cloneItem(it), nil
}

func (r *stubInventoryRepo) Find(_ context.Context, cat domain.CategoryDescriptor, q ports.ItemQuery) ([]*domain.Item, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, q)
	if r.findErr != nil {
		return nil, 0, r.findErr
	}
	var matched []*domain.Item
	for _, it := range r.items[cat.Collection] {
		if q.VendorID != "" && it.VendorID != q.VendorID {
			continue
		}
		if q.Available != nil && it.Available != *q.Available {
			continue
		}
		if q.Search != "" && !matchesSearch(it, q.Search) {
			continue
		}
		matched = append(matched, cloneItem(it))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	total := int64(len(matched))
	if q.Limit > 0 {
		start := min(int(q.Skip), len(matched))
		end := min(start+int(q.Limit), len(matched))
		matched = matched[start:end]
	}
	return matched, total, nil
}

func matchesSearch(it *domain.Item, term string) bool {
	term = strings.ToLower(term)
	hay := []string{it.Name, it.Description}
	hay = append(hay, it.Tags...)
	for _, h := range hay {
		if strings.Contains(strings.ToLower(h), term) {
			return true
		}
	}
	return false
}

func (r *stubInventoryRepo) UpdateFields(_ context.Context, cat domain.CategoryDescriptor, id string, fields map[string]any) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[cat.Collection][id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	merged := it.Fields()
	for k, v := range fields {
		merged[k] = v
	}
	next := cat.NewItem(merged)
	next.ID = it.ID
	next.VendorID = it.VendorID
	next.CreatedAt = it.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	r.items[cat.Collection][id] = next
	r.updates++
	return cloneItem(next), nil
}

func (r *stubInventoryRepo) AppendImage(_ context.Context, cat domain.CategoryDescriptor, id, url string) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[cat.Collection][id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	it.Images = append(it.Images, url)
	return cloneItem(it), nil
}

func (r *stubInventoryRepo) Delete(_ context.Context, cat domain.CategoryDescriptor, id, vendorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[cat.Collection][id]
	if !ok || (vendorID != "" && it.VendorID != vendorID) {
		return domain.ErrItemNotFound
	}
	delete(r.items[cat.Collection], id)
	return nil
}

func (r *stubInventoryRepo) MaxSequence(_ context.Context, cat domain.CategoryDescriptor) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var max int64
	for id := range r.items[cat.Collection] {
		if n, ok := cat.ParseSequence(id); ok && n > max {
			max = n
		}
	}
	return max, nil
}

type stubSequence struct {
	mu   sync.Mutex
	next map[string]int64
}

func newStubSequence() *stubSequence {
	return &stubSequence{next: make(map[string]int64)}
}

func (s *stubSequence) Next(_ context.Context, cat domain.CategoryDescriptor) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next[cat.Collection]++
	return s.next[cat.Collection], nil
}

type stubPublisher struct {
	mu     sync.Mutex
	events []domain.InventoryEvent
}

func (p *stubPublisher) Publish(e domain.InventoryEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *stubPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type stubAudit struct {
	mu     sync.Mutex
	events []*domain.AuditEvent
	err    error
}

func (a *stubAudit) InsertEvent(_ context.Context, e *domain.AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, e)
	return nil
}

type stubQueue struct {
	mu     sync.Mutex
	sent   []ports.Notification
	reject bool
}

func (q *stubQueue) Enqueue(n ports.Notification) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.reject {
		return false
	}
	q.sent = append(q.sent, n)
	return true
}

func (q *stubQueue) last() (ports.Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.sent) == 0 {
		return ports.Notification{}, false
	}
	return q.sent[len(q.sent)-1], true
}

type stubImageStore struct {
	keys []string
}

func (s *stubImageStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	return "https://cdn.example.com/" + key, nil
}
