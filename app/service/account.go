package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-purchases/app/entity"
	"github.com/vibast-solutions/ms-go-purchases/app/provider"
	"github.com/vibast-solutions/ms-go-purchases/app/repository"
	"github.com/vibast-solutions/ms-go-purchases/config"
)

const defaultBatchSize = int32(100)

type creatorRequest interface {
	GetCreatorId() string
}

type paymentAccountRepository interface {
	CreateIfAbsent(ctx context.Context, creatorID string, now time.Time) error
	AttachExternalAccount(ctx context.Context, creatorID, externalAccountID string, now time.Time) (bool, error)
	OverwriteCapabilities(ctx context.Context, account *entity.PaymentAccount) error
	FindByCreatorID(ctx context.Context, creatorID string) (*entity.PaymentAccount, error)
	FindByExternalAccountID(ctx context.Context, externalAccountID string) (*entity.PaymentAccount, error)
	ListDueRefresh(ctx context.Context, before time.Time, limit int32) ([]*entity.PaymentAccount, error)
}

type AccountService struct {
	accountRepo    paymentAccountRepository
	processor      provider.Provider
	marketplaceCfg config.MarketplaceConfig
	jobsCfg        config.JobsConfig
}

func NewAccountService(
	accountRepo paymentAccountRepository,
	processor provider.Provider,
	marketplaceCfg config.MarketplaceConfig,
	jobsCfg config.JobsConfig,
) *AccountService {
	return &AccountService{
		accountRepo:    accountRepo,
		processor:      processor,
		marketplaceCfg: marketplaceCfg,
		jobsCfg:        jobsCfg,
	}
}

// BeginOnboarding makes sure the creator has an external account and mints a
// fresh onboarding link for it. Repeated calls reuse the stored account.
func (s *AccountService) BeginOnboarding(ctx context.Context, req creatorRequest) (*provider.OnboardingLink, error) {
	creatorID := strings.TrimSpace(req.GetCreatorId())
	if creatorID == "" {
		return nil, ErrInvalidRequest
	}

	now := time.Now().UTC()
	if err := s.accountRepo.CreateIfAbsent(ctx, creatorID, now); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByCreatorID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("payment account row for creator %s missing after create", creatorID)
	}

	externalAccountID, err := s.ensureExternalAccount(ctx, account, now)
	if err != nil {
		return nil, err
	}

	link, err := s.processor.CreateOnboardingLink(ctx, &provider.OnboardingLinkInput{
		ExternalAccountID: externalAccountID,
		RefreshURL:        expandURLTemplate(s.marketplaceCfg.OnboardingRefreshURL, creatorIDPlaceholder, creatorID),
		ReturnURL:         expandURLTemplate(s.marketplaceCfg.OnboardingReturnURL, creatorIDPlaceholder, creatorID),
	})
	if err != nil {
		return nil, wrapProviderErr(err)
	}

	return link, nil
}

func (s *AccountService) ensureExternalAccount(ctx context.Context, account *entity.PaymentAccount, now time.Time) (string, error) {
	if account.HasExternalAccount() {
		return *account.ExternalAccountID, nil
	}

	created, err := s.processor.CreateAccount(ctx, &provider.CreateAccountInput{
		CreatorID: account.CreatorID,
		Country:   s.marketplaceCfg.AccountCountry,
	})
	if err != nil {
		return "", wrapProviderErr(err)
	}

	attached, err := s.accountRepo.AttachExternalAccount(ctx, account.CreatorID, created.ExternalAccountID, now)
	if err != nil {
		return "", err
	}
	if attached {
		return created.ExternalAccountID, nil
	}

	// A concurrent call attached an account first; use the stored one.
	stored, err := s.accountRepo.FindByCreatorID(ctx, account.CreatorID)
	if err != nil {
		return "", err
	}
	if !stored.HasExternalAccount() {
		return "", fmt.Errorf("external account for creator %s was not stored", account.CreatorID)
	}
	return *stored.ExternalAccountID, nil
}

// RefreshStatus overwrites the local capability flags with the processor's
// current view of the account.
func (s *AccountService) RefreshStatus(ctx context.Context, req creatorRequest) (*entity.PaymentAccount, error) {
	creatorID := strings.TrimSpace(req.GetCreatorId())
	if creatorID == "" {
		return nil, ErrInvalidRequest
	}

	account, err := s.accountRepo.FindByCreatorID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if !account.HasExternalAccount() {
		return nil, ErrAccountNotFound
	}

	return s.refresh(ctx, account)
}

// RefreshByExternalAccount refreshes the account owning the given processor
// id. It never trusts flags carried by a webhook and re-reads them instead.
func (s *AccountService) RefreshByExternalAccount(ctx context.Context, externalAccountID string) (*entity.PaymentAccount, error) {
	externalAccountID = strings.TrimSpace(externalAccountID)
	if externalAccountID == "" {
		return nil, ErrInvalidRequest
	}

	account, err := s.accountRepo.FindByExternalAccountID(ctx, externalAccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	return s.refresh(ctx, account)
}

// GetStatus serves the locally cached snapshot. A creator who never started
// onboarding gets an empty snapshot.
func (s *AccountService) GetStatus(ctx context.Context, req creatorRequest) (*entity.PaymentAccount, error) {
	creatorID := strings.TrimSpace(req.GetCreatorId())
	if creatorID == "" {
		return nil, ErrInvalidRequest
	}

	account, err := s.accountRepo.FindByCreatorID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return &entity.PaymentAccount{CreatorID: creatorID, Requirements: []string{}}, nil
	}

	return account, nil
}

func (s *AccountService) RunRefreshBatch(ctx context.Context) error {
	staleAfter := s.jobsCfg.AccountRefreshStaleAfter
	if staleAfter < 0 {
		staleAfter = 0
	}
	before := time.Now().UTC().Add(-staleAfter)

	items, err := s.accountRepo.ListDueRefresh(ctx, before, s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, account := range items {
		if !account.HasExternalAccount() {
			continue
		}
		if _, err := s.refresh(ctx, account); err != nil {
			firstErr = keepFirstErr(firstErr, err)
		}
	}

	return firstErr
}

func (s *AccountService) refresh(ctx context.Context, account *entity.PaymentAccount) (*entity.PaymentAccount, error) {
	snapshot, err := s.processor.GetAccount(ctx, *account.ExternalAccountID)
	if err != nil {
		return nil, wrapProviderErr(err)
	}

	now := time.Now().UTC()
	account.DetailsSubmitted = snapshot.DetailsSubmitted
	account.ChargesEnabled = snapshot.ChargesEnabled
	account.PayoutsEnabled = snapshot.PayoutsEnabled
	account.Requirements = snapshot.Requirements
	if account.Requirements == nil {
		account.Requirements = []string{}
	}
	account.RefreshedAt = &now
	account.UpdatedAt = now

	if err := s.accountRepo.OverwriteCapabilities(ctx, account); err != nil {
		if errors.Is(err, repository.ErrPaymentAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	return account, nil
}

func (s *AccountService) batchSize() int32 {
	if s.jobsCfg.BatchSize > 0 {
		return s.jobsCfg.BatchSize
	}
	return defaultBatchSize
}

func wrapProviderErr(err error) error {
	if errors.Is(err, provider.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return err
}

func keepFirstErr(current error, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
