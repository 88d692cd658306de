package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-purchases/app/entity"
	"github.com/vibast-solutions/ms-go-purchases/app/factory"
)

const (
	defaultListLimit = int32(100)
	maxListLimit     = int32(500)
)

// GrantChecker answers whether any purchase grant exists for the pair.
type GrantChecker interface {
	HasGrant(ctx context.Context, viewerID, videoID string) (bool, error)
}

// CanWatch is the single watch-permission decision. An empty viewerID is an
// anonymous viewer. Rules apply in order: free video, owner, recorded grant.
func CanWatch(ctx context.Context, viewerID string, video *entity.Video, grants GrantChecker) (bool, error) {
	if video == nil {
		return false, ErrVideoNotFound
	}
	if video.IsFree() {
		return true, nil
	}

	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return false, nil
	}
	if viewerID == video.CreatorID {
		return true, nil
	}

	return grants.HasGrant(ctx, viewerID, video.ID)
}

type getEntitlementRequest interface {
	GetVideoId() string
	GetViewerId() string
}

type listGrantsRequest interface {
	GetViewerId() string
	GetLimit() int32
	GetOffset() int32
}

type videoRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Video, error)
}

type purchaseGrantRepository interface {
	CreateIfAbsent(ctx context.Context, grant *entity.PurchaseGrant) (bool, error)
	ExistsForViewerVideo(ctx context.Context, viewerID, videoID string) (bool, error)
	ListByViewer(ctx context.Context, viewerID string, limit, offset int32) ([]*entity.PurchaseGrant, error)
}

type entitlementCache interface {
	IsGranted(ctx context.Context, viewerID, videoID string) (bool, error)
	MarkGranted(ctx context.Context, viewerID, videoID string) error
}

type EntitlementService struct {
	videoRepo videoRepository
	grantRepo purchaseGrantRepository
	cache     entitlementCache
	logger    logrus.FieldLogger
}

// NewEntitlementService wires the evaluator to its stores. cache may be nil.
func NewEntitlementService(videoRepo videoRepository, grantRepo purchaseGrantRepository, cache entitlementCache) *EntitlementService {
	return &EntitlementService{
		videoRepo: videoRepo,
		grantRepo: grantRepo,
		cache:     cache,
		logger:    factory.NewModuleLogger("entitlement-service"),
	}
}

type Entitlement struct {
	VideoID  string
	ViewerID string
	CanWatch bool
}

func (s *EntitlementService) CanWatch(ctx context.Context, req getEntitlementRequest) (*Entitlement, error) {
	videoID := strings.TrimSpace(req.GetVideoId())
	viewerID := strings.TrimSpace(req.GetViewerId())
	if videoID == "" {
		return nil, ErrInvalidRequest
	}

	video, err := s.videoRepo.FindByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, ErrVideoNotFound
	}

	allowed, err := CanWatch(ctx, viewerID, video, s)
	if err != nil {
		return nil, err
	}

	return &Entitlement{VideoID: videoID, ViewerID: viewerID, CanWatch: allowed}, nil
}

// HasGrant consults the positive-only cache first. Cache failures fall through
// to the grant store.
func (s *EntitlementService) HasGrant(ctx context.Context, viewerID, videoID string) (bool, error) {
	if s.cache != nil {
		cached, err := s.cache.IsGranted(ctx, viewerID, videoID)
		if err != nil {
			s.logger.WithError(err).Warn("entitlement cache lookup failed")
		} else if cached {
			return true, nil
		}
	}

	exists, err := s.grantRepo.ExistsForViewerVideo(ctx, viewerID, videoID)
	if err != nil {
		return false, err
	}
	if exists {
		s.primeCache(ctx, viewerID, videoID)
	}
	return exists, nil
}

func (s *EntitlementService) ListGrants(ctx context.Context, req listGrantsRequest) ([]*entity.PurchaseGrant, error) {
	viewerID := strings.TrimSpace(req.GetViewerId())
	if viewerID == "" || req.GetOffset() < 0 {
		return nil, ErrInvalidRequest
	}

	limit := req.GetLimit()
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	return s.grantRepo.ListByViewer(ctx, viewerID, limit, req.GetOffset())
}

func (s *EntitlementService) primeCache(ctx context.Context, viewerID, videoID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.MarkGranted(ctx, viewerID, videoID); err != nil {
		s.logger.WithError(err).Warn("entitlement cache write failed")
	}
}
