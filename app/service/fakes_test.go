package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vibast-solutions/ms-go-purchases/app/entity"
	"github.com/vibast-solutions/ms-go-purchases/app/provider"
	"github.com/vibast-solutions/ms-go-purchases/app/repository"
)

type serviceVideoRepo struct {
	videos map[string]*entity.Video
	err    error
}

func newServiceVideoRepo(videos ...*entity.Video) *serviceVideoRepo {
	items := make(map[string]*entity.Video, len(videos))
	for _, v := range videos {
		items[v.ID] = v
	}
	return &serviceVideoRepo{videos: items}
}

func (r *serviceVideoRepo) FindByID(_ context.Context, id string) (*entity.Video, error) {
	if r.err != nil {
		return nil, r.err
	}
	item, ok := r.videos[id]
	if !ok {
		return nil, nil
	}
	copyItem := *item
	return &copyItem, nil
}

type serviceGrantRepo struct {
	mu        sync.Mutex
	grants    map[string]*entity.PurchaseGrant
	nextID    uint64
	existsErr error
	existsN   int
}

func newServiceGrantRepo() *serviceGrantRepo {
	return &serviceGrantRepo{grants: map[string]*entity.PurchaseGrant{}, nextID: 1}
}

func (r *serviceGrantRepo) CreateIfAbsent(_ context.Context, grant *entity.PurchaseGrant) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.grants[grant.TransactionID]; ok {
		return false, nil
	}
	copyItem := *grant
	copyItem.ID = r.nextID
	grant.ID = r.nextID
	r.nextID++
	r.grants[grant.TransactionID] = &copyItem
	return true, nil
}

func (r *serviceGrantRepo) ExistsForViewerVideo(_ context.Context, viewerID, videoID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.existsN++
	if r.existsErr != nil {
		return false, r.existsErr
	}
	for _, item := range r.grants {
		if item.ViewerID == viewerID && item.VideoID == videoID {
			return true, nil
		}
	}
	return false, nil
}

func (r *serviceGrantRepo) ListByViewer(_ context.Context, viewerID string, limit, offset int32) ([]*entity.PurchaseGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]*entity.PurchaseGrant, 0)
	for _, item := range r.grants {
		if item.ViewerID == viewerID {
			copyItem := *item
			items = append(items, &copyItem)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })

	start := int(offset)
	if start > len(items) {
		return []*entity.PurchaseGrant{}, nil
	}
	end := start + int(limit)
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], nil
}

func (r *serviceGrantRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.grants)
}

type serviceAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*entity.PaymentAccount

	// beforeAttach runs inside AttachExternalAccount before the conditional
	// write, so tests can simulate a concurrent winner.
	beforeAttach func(creatorID string)
	overwrites   int
}

func newServiceAccountRepo(accounts ...*entity.PaymentAccount) *serviceAccountRepo {
	items := make(map[string]*entity.PaymentAccount, len(accounts))
	for _, a := range accounts {
		items[a.CreatorID] = a
	}
	return &serviceAccountRepo{accounts: items}
}

func (r *serviceAccountRepo) CreateIfAbsent(_ context.Context, creatorID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[creatorID]; ok {
		return nil
	}
	r.accounts[creatorID] = &entity.PaymentAccount{
		CreatorID:    creatorID,
		Requirements: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return nil
}

func (r *serviceAccountRepo) AttachExternalAccount(_ context.Context, creatorID, externalAccountID string, now time.Time) (bool, error) {
	if r.beforeAttach != nil {
		r.beforeAttach(creatorID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.accounts[creatorID]
	if !ok || item.HasExternalAccount() {
		return false, nil
	}
	id := externalAccountID
	item.ExternalAccountID = &id
	item.UpdatedAt = now
	return true, nil
}

func (r *serviceAccountRepo) OverwriteCapabilities(_ context.Context, account *entity.PaymentAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.accounts[account.CreatorID]
	if !ok {
		return repository.ErrPaymentAccountNotFound
	}
	r.overwrites++
	item.DetailsSubmitted = account.DetailsSubmitted
	item.ChargesEnabled = account.ChargesEnabled
	item.PayoutsEnabled = account.PayoutsEnabled
	item.Requirements = append([]string{}, account.Requirements...)
	item.RefreshedAt = account.RefreshedAt
	item.UpdatedAt = account.UpdatedAt
	return nil
}

func (r *serviceAccountRepo) FindByCreatorID(_ context.Context, creatorID string) (*entity.PaymentAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.accounts[creatorID]
	if !ok {
		return nil, nil
	}
	copyItem := *item
	return &copyItem, nil
}

func (r *serviceAccountRepo) FindByExternalAccountID(_ context.Context, externalAccountID string) (*entity.PaymentAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.accounts {
		if item.HasExternalAccount() && *item.ExternalAccountID == externalAccountID {
			copyItem := *item
			return &copyItem, nil
		}
	}
	return nil, nil
}

func (r *serviceAccountRepo) ListDueRefresh(_ context.Context, before time.Time, limit int32) ([]*entity.PaymentAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]*entity.PaymentAccount, 0)
	for _, item := range r.accounts {
		if !item.HasExternalAccount() || item.FullyCapable() {
			continue
		}
		if item.RefreshedAt != nil && item.RefreshedAt.After(before) {
			continue
		}
		copyItem := *item
		items = append(items, &copyItem)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatorID < items[j].CreatorID })
	if limit > 0 && int(limit) < len(items) {
		items = items[:limit]
	}
	return items, nil
}

type serviceViewerRepo struct {
	byEmail map[string]string
	err     error
}

func (r *serviceViewerRepo) FindIDByEmail(_ context.Context, email string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return r.byEmail[strings.ToLower(strings.TrimSpace(email))], nil
}

type serviceOrphanRepo struct {
	orphans map[string]*entity.OrphanedPayment
}

func newServiceOrphanRepo() *serviceOrphanRepo {
	return &serviceOrphanRepo{orphans: map[string]*entity.OrphanedPayment{}}
}

func (r *serviceOrphanRepo) Record(_ context.Context, orphan *entity.OrphanedPayment) error {
	if existing, ok := r.orphans[orphan.TransactionID]; ok {
		existing.Occurrences++
		existing.LastSeenAt = orphan.LastSeenAt
		return nil
	}
	copyItem := *orphan
	copyItem.Occurrences = 1
	r.orphans[orphan.TransactionID] = &copyItem
	return nil
}

type serviceDeliveryRepo struct {
	mu         sync.Mutex
	deliveries []*entity.WebhookDelivery
}

func (r *serviceDeliveryRepo) Create(_ context.Context, delivery *entity.WebhookDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copyItem := *delivery
	r.deliveries = append(r.deliveries, &copyItem)
	return nil
}

func (r *serviceDeliveryRepo) statuses() []int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int32, 0, len(r.deliveries))
	for _, d := range r.deliveries {
		out = append(out, d.Status)
	}
	return out
}

type serviceCache struct {
	mu      sync.Mutex
	granted map[string]bool
	readErr error
	reads   int
	writes  int
}

func newServiceCache() *serviceCache {
	return &serviceCache{granted: map[string]bool{}}
}

func (c *serviceCache) IsGranted(_ context.Context, viewerID, videoID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	if c.readErr != nil {
		return false, c.readErr
	}
	return c.granted[viewerID+"|"+videoID], nil
}

func (c *serviceCache) MarkGranted(_ context.Context, viewerID, videoID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes++
	c.granted[viewerID+"|"+videoID] = true
	return nil
}

// serviceProvider is a scriptable processor. Each call is counted; the xxxFn
// hooks override the default canned answers.
type serviceProvider struct {
	mu sync.Mutex

	checkoutFn   func(*provider.CheckoutInput) (*provider.CheckoutOutput, error)
	createAcctFn func(*provider.CreateAccountInput) (*provider.AccountSnapshot, error)
	getAcctFn    func(string) (*provider.AccountSnapshot, error)
	eventFn      func(payload []byte, signature string) (*provider.Event, error)

	checkoutInputs []*provider.CheckoutInput
	createAcctN    int
	getAcctN       int
	linkInputs     []*provider.OnboardingLinkInput
}

func (p *serviceProvider) Code() string {
	return provider.CodeStripe
}

func (p *serviceProvider) CreateCheckout(_ context.Context, input *provider.CheckoutInput) (*provider.CheckoutOutput, error) {
	p.mu.Lock()
	p.checkoutInputs = append(p.checkoutInputs, input)
	p.mu.Unlock()

	if p.checkoutFn != nil {
		return p.checkoutFn(input)
	}
	expiresAt := time.Now().Add(30 * time.Minute).UTC()
	return &provider.CheckoutOutput{
		TransactionID: "tx_1",
		RedirectURL:   "https://checkout.stripe.test/c/pay/tx_1",
		ExpiresAt:     &expiresAt,
	}, nil
}

func (p *serviceProvider) CreateAccount(_ context.Context, input *provider.CreateAccountInput) (*provider.AccountSnapshot, error) {
	p.mu.Lock()
	p.createAcctN++
	p.mu.Unlock()

	if p.createAcctFn != nil {
		return p.createAcctFn(input)
	}
	return &provider.AccountSnapshot{ExternalAccountID: "acct_" + input.CreatorID, Requirements: []string{}}, nil
}

func (p *serviceProvider) GetAccount(_ context.Context, externalAccountID string) (*provider.AccountSnapshot, error) {
	p.mu.Lock()
	p.getAcctN++
	p.mu.Unlock()

	if p.getAcctFn != nil {
		return p.getAcctFn(externalAccountID)
	}
	return &provider.AccountSnapshot{
		ExternalAccountID: externalAccountID,
		DetailsSubmitted:  true,
		ChargesEnabled:    true,
		PayoutsEnabled:    true,
		Requirements:      []string{},
	}, nil
}

func (p *serviceProvider) CreateOnboardingLink(_ context.Context, input *provider.OnboardingLinkInput) (*provider.OnboardingLink, error) {
	p.mu.Lock()
	p.linkInputs = append(p.linkInputs, input)
	p.mu.Unlock()

	return &provider.OnboardingLink{
		URL:       "https://connect.stripe.test/setup/" + input.ExternalAccountID,
		ExpiresAt: time.Now().Add(5 * time.Minute).UTC(),
	}, nil
}

func (p *serviceProvider) VerifyAndParseEvent(_ context.Context, payload []byte, signature string) (*provider.Event, error) {
	if p.eventFn != nil {
		return p.eventFn(payload, signature)
	}
	return &provider.Event{Kind: provider.EventIgnored, EventType: "noop"}, nil
}

func (p *serviceProvider) checkoutCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.checkoutInputs)
}

func stringPtr(v string) *string {
	return &v
}

func capableAccount(creatorID string) *entity.PaymentAccount {
	return &entity.PaymentAccount{
		CreatorID:         creatorID,
		ExternalAccountID: stringPtr("acct_" + creatorID),
		DetailsSubmitted:  true,
		ChargesEnabled:    true,
		PayoutsEnabled:    true,
		Requirements:      []string{},
	}
}
