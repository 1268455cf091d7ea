package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/core/ports"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100

	// maxPage keeps (page-1)*limit within int range.
	maxPage = math.MaxInt / maxLimit
)

// InventoryService implements item CRUD over the six category collections
// and the aggregated listing.
type InventoryService struct {
	repo   ports.InventoryRepository
	seq    ports.SequenceAllocator
	events ports.EventPublisher
	images ports.ImageStore
	audit  ports.AuditRepository
	logger zerolog.Logger

	now func() time.Time
}

func NewInventoryService(repo ports.InventoryRepository, seq ports.SequenceAllocator, events ports.EventPublisher, audit ports.AuditRepository, logger zerolog.Logger) *InventoryService {
	return &InventoryService{
		repo:   repo,
		seq:    seq,
		events: events,
		audit:  audit,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithImageStore enables image uploads.
func (s *InventoryService) WithImageStore(store ports.ImageStore) *InventoryService {
	s.images = store
	return s
}

func (s *InventoryService) Create(ctx context.Context, actor *domain.Identity, input ports.CreateItemInput) (*domain.Item, error) {
	if err := actor.Authorize(domain.PermInventory); err != nil {
		return nil, err
	}
	desc, err := domain.ResolveCategory(input.Category)
	if err != nil {
		return nil, err
	}
	if actor.IsVendor() && len(actor.ServiceCategories) > 0 && !slices.Contains(actor.ServiceCategories, string(desc.Category)) {
		return nil, fmt.Errorf("%w: vendor is not registered for %s", domain.ErrForbidden, desc.Category)
	}

	fields, err := desc.Sanitize(input.Fields, true)
	if err != nil {
		return nil, err
	}
	if err := domain.RequireDisplayFields(fields); err != nil {
		return nil, err
	}

	item := desc.NewItem(fields)
	if actor.IsVendor() {
		item.VendorID = actor.ID
	} else {
		item.VendorID = strings.TrimSpace(input.VendorID)
	}
	now := s.now()
	item.CreatedAt = now
	item.UpdatedAt = now

	if input.Scheme == ports.IDSequential {
		n, err := s.seq.Next(ctx, desc)
		if err != nil {
			return nil, fmt.Errorf("allocate id: %w", err)
		}
		item.ID = desc.SequentialID(n)
	}

	if err := s.repo.Insert(ctx, desc, item); err != nil {
		s.logger.Error().Err(err).Str("category", string(desc.Category)).Msg("failed to create item")
		return nil, err
	}

	s.logger.Info().Str("item_id", item.ID).Str("category", string(desc.Category)).Str("actor_id", actor.ID).Msg("item created")
	s.publish(domain.EventItemCreated, actor, item)
	recordAudit(ctx, s.audit, s.logger, &domain.AuditEvent{
		Action:   domain.EventItemCreated,
		Entity:   string(desc.Category),
		EntityID: item.ID,
		ActorID:  actor.ID,
	})
	return item, nil
}

func (s *InventoryService) Get(ctx context.Context, actor *domain.Identity, category, id string) (*domain.Item, error) {
	if err := actor.Authorize(domain.PermInventory); err != nil {
		return nil, err
	}
	_, item, err := s.locate(ctx, actor, category, id)
	return item, err
}

// Update applies a partial change. Fields equal to the stored values are
// ignored; when nothing differs the stored item is returned unmodified.
func (s *InventoryService) Update(ctx context.Context, actor *domain.Identity, category, id string, fields map[string]any) (*ports.UpdateItemResult, error) {
	if err := actor.Authorize(domain.PermInventory); err != nil {
		return nil, err
	}
	desc, current, err := s.locate(ctx, actor, category, id)
	if err != nil {
		return nil, err
	}

	update, err := desc.Sanitize(fields, false)
	if err != nil {
		return nil, err
	}
	existing := current.Fields()
	merged := make(map[string]any, len(existing)+len(update))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range update {
		merged[k] = v
	}
	if err := domain.RequireDisplayFields(merged); err != nil {
		return nil, err
	}

	changed := domain.Diff(existing, update)
	if len(changed) == 0 {
		return &ports.UpdateItemResult{Item: current, Modified: false}, nil
	}

	item, err := s.repo.UpdateFields(ctx, desc, current.ID, changed)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(changed))
	for k := range changed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.logger.Info().Str("item_id", item.ID).Strs("fields", keys).Str("actor_id", actor.ID).Msg("item updated")
	s.publish(domain.EventItemUpdated, actor, item)
	recordAudit(ctx, s.audit, s.logger, &domain.AuditEvent{
		Action:   domain.EventItemUpdated,
		Entity:   string(desc.Category),
		EntityID: item.ID,
		ActorID:  actor.ID,
		Details:  map[string]any{"fields": keys},
	})
	return &ports.UpdateItemResult{Item: item, Modified: true}, nil
}

func (s *InventoryService) Delete(ctx context.Context, actor *domain.Identity, category, id string) error {
	if err := actor.Authorize(domain.PermInventory); err != nil {
		return err
	}
	desc, item, err := s.locate(ctx, actor, category, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, desc, item.ID, vendorScope(actor)); err != nil {
		return err
	}

	s.logger.Info().Str("item_id", item.ID).Str("category", string(desc.Category)).Str("actor_id", actor.ID).Msg("item deleted")
	s.publish(domain.EventItemDeleted, actor, item)
	recordAudit(ctx, s.audit, s.logger, &domain.AuditEvent{
		Action:   domain.EventItemDeleted,
		Entity:   string(desc.Category),
		EntityID: item.ID,
		ActorID:  actor.ID,
	})
	return nil
}

// List serves both the per-category listing and the aggregated view. With
// no category every collection is queried concurrently and the union is
// paginated in memory.
func (s *InventoryService) List(ctx context.Context, actor *domain.Identity, input ports.ListItemsInput) (*ports.ListItemsResult, error) {
	if err := actor.Authorize(domain.PermInventory); err != nil {
		return nil, err
	}
	page, limit := normalizePage(input.Page, input.Limit)
	available, err := parseStatus(input.Status)
	if err != nil {
		return nil, err
	}
	base := ports.ItemQuery{
		VendorID:  vendorScope(actor),
		Available: available,
		Search:    strings.TrimSpace(input.Search),
	}

	result := &ports.ListItemsResult{Page: page, Limit: limit}

	if input.Category != "" {
		desc, err := domain.ResolveCategory(input.Category)
		if err != nil {
			return nil, err
		}
		q := base
		q.Skip = int64((page - 1) * limit)
		q.Limit = int64(limit)
		items, total, err := s.repo.Find(ctx, desc, q)
		if err != nil {
			return nil, err
		}
		result.Items = items
		result.Total = total
	} else {
		all, err := s.findAll(ctx, base)
		if err != nil {
			return nil, err
		}
		result.Total = int64(len(all))
		start := (page - 1) * limit
		if start < 0 || start > len(all) {
			start = len(all)
		}
		end := min(start+limit, len(all))
		result.Items = all[start:end]
	}

	if result.Items == nil {
		result.Items = []*domain.Item{}
	}
	result.TotalPages = int((result.Total + int64(limit) - 1) / int64(limit))
	return result, nil
}

func (s *InventoryService) AttachImage(ctx context.Context, actor *domain.Identity, category, id string, img ports.ImageUpload) (*domain.Item, error) {
	if err := actor.Authorize(domain.PermInventory); err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, domain.ErrStorageDisabled
	}
	if img.Body == nil || img.Size <= 0 {
		return nil, domain.Invalid("image", "is required")
	}
	if img.ContentType != "" && !strings.HasPrefix(img.ContentType, "image/") {
		return nil, domain.Invalid("image", "must be an image")
	}
	desc, current, err := s.locate(ctx, actor, category, id)
	if err != nil {
		return nil, err
	}

	key := path.Join("inventory", string(desc.Category), current.ID, ulid.Make().String()+strings.ToLower(path.Ext(img.Filename)))
	url, err := s.images.Put(ctx, key, img.Body, img.Size, img.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	item, err := s.repo.AppendImage(ctx, desc, current.ID, url)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("item_id", item.ID).Str("key", key).Msg("item image attached")
	s.publish(domain.EventItemUpdated, actor, item)
	recordAudit(ctx, s.audit, s.logger, &domain.AuditEvent{
		Action:   "item.image_attached",
		Entity:   string(desc.Category),
		EntityID: item.ID,
		ActorID:  actor.ID,
		Details:  map[string]any{"url": url},
	})
	return item, nil
}

// locate finds an item given an optional category. Bare ObjectIDs are
// searched in every collection at once; prefixed ids carry their category.
func (s *InventoryService) locate(ctx context.Context, actor *domain.Identity, category, id string) (domain.CategoryDescriptor, *domain.Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.CategoryDescriptor{}, nil, domain.ErrItemNotFound
	}
	scope := vendorScope(actor)

	if category != "" {
		desc, err := domain.ResolveCategory(category)
		if err != nil {
			return desc, nil, err
		}
		item, err := s.repo.FindByID(ctx, desc, id, scope)
		return desc, item, err
	}
	if !domain.IsObjectIDHex(id) {
		desc, ok := domain.CategoryForID(id)
		if !ok {
			return domain.CategoryDescriptor{}, nil, domain.ErrItemNotFound
		}
		item, err := s.repo.FindByID(ctx, desc, id, scope)
		return desc, item, err
	}

	cats := domain.Categories()
	found := make([]*domain.Item, len(cats))
	g, gctx := errgroup.WithContext(ctx)
	for i, desc := range cats {
		g.Go(func() error {
			item, err := s.repo.FindByID(gctx, desc, id, scope)
			if errors.Is(err, domain.ErrItemNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", desc.Collection, err)
			}
			found[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.CategoryDescriptor{}, nil, err
	}
	for i, item := range found {
		if item != nil {
			return cats[i], item, nil
		}
	}
	return domain.CategoryDescriptor{}, nil, domain.ErrItemNotFound
}

func (s *InventoryService) findAll(ctx context.Context, q ports.ItemQuery) ([]*domain.Item, error) {
	cats := domain.Categories()
	parts := make([][]*domain.Item, len(cats))

	g, gctx := errgroup.WithContext(ctx)
	for i, desc := range cats {
		g.Go(func() error {
			items, _, err := s.repo.Find(gctx, desc, q)
			if err != nil {
				return fmt.Errorf("%s: %w", desc.Collection, err)
			}
			parts[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*domain.Item
	for _, p := range parts {
		all = append(all, p...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

func (s *InventoryService) publish(kind string, actor *domain.Identity, item *domain.Item) {
	if s.events == nil {
		return
	}
	s.events.Publish(domain.InventoryEvent{
		ID:        ulid.Make().String(),
		Type:      kind,
		Category:  item.Category,
		ItemID:    item.ID,
		VendorID:  item.VendorID,
		Item:      item,
		ActorID:   actor.ID,
		Timestamp: s.now(),
	})
}

func vendorScope(actor *domain.Identity) string {
	if actor.IsVendor() {
		return actor.ID
	}
	return ""
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func parseStatus(status string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", "all":
		return nil, nil
	case "available":
		v := true
		return &v, nil
	case "unavailable":
		v := false
		return &v, nil
	}
	return nil, domain.Invalid("status", "must be available or unavailable")
}
