package food

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const featuredCacheKey = "foods:featured"

// Service coordinates listing reads, ownership-checked writes and the claim
// workflow. The redis client is optional; caching is best-effort and a nil
// client disables it.
type Service struct {
	repo        *Repository
	cache       *redis.Client
	featuredTTL time.Duration
}

// NewService creates a service backed by a repository and an optional cache.
func NewService(repo *Repository, cache *redis.Client, featuredTTL time.Duration) *Service {
	if featuredTTL <= 0 {
		featuredTTL = 30 * time.Second
	}
	return &Service{repo: repo, cache: cache, featuredTTL: featuredTTL}
}

// ListFoods returns listings matching the filter.
func (s *Service) ListFoods(ctx context.Context, filter ListingFilter) ([]Listing, error) {
	return s.repo.ListFoods(ctx, filter)
}

// FeaturedFoods returns the top-donations view, served from cache when warm.
func (s *Service) FeaturedFoods(ctx context.Context) ([]Listing, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, featuredCacheKey).Bytes(); err == nil {
			var cached []Listing
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}
	foods, err := s.repo.FeaturedFoods(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if raw, err := json.Marshal(foods); err == nil {
			if err := s.cache.Set(ctx, featuredCacheKey, raw, s.featuredTTL).Err(); err != nil {
				log.Printf("featured cache set failed: %v", err)
			}
		}
	}
	return foods, nil
}

func (s *Service) bustFeatured(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, featuredCacheKey).Err(); err != nil {
		log.Printf("featured cache bust failed: %v", err)
	}
}

// GetFood returns a single listing or ErrNotFound.
func (s *Service) GetFood(ctx context.Context, id string) (Listing, error) {
	return s.repo.GetFood(ctx, id)
}

// ListFoodsByDonator returns the donor's own listings, newest first.
func (s *Service) ListFoodsByDonator(ctx context.Context, email string) ([]Listing, error) {
	return s.repo.ListFoodsByDonator(ctx, email)
}

// CreateFood inserts a new listing and returns it with its assigned id.
func (s *Service) CreateFood(ctx context.Context, l Listing) (Listing, error) {
	if l.FoodName == "" || l.Donator.Email == "" {
		return Listing{}, ErrInvalid
	}
	created, err := s.repo.InsertFood(ctx, l)
	if err != nil {
		return Listing{}, err
	}
	s.bustFeatured(ctx)
	return created, nil
}

// UpdateFood modifies a listing's mutable fields when callerEmail owns it.
func (s *Service) UpdateFood(ctx context.Context, id, callerEmail string, upd ListingUpdate) error {
	if err := s.repo.UpdateFood(ctx, id, callerEmail, upd); err != nil {
		return err
	}
	s.bustFeatured(ctx)
	return nil
}

// DeleteFood removes a listing by id, reporting how many rows matched.
func (s *Service) DeleteFood(ctx context.Context, id string) (int64, error) {
	n, err := s.repo.DeleteFood(ctx, id)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.bustFeatured(ctx)
	}
	return n, nil
}

// SubmitClaim runs the claim workflow for the authenticated caller. The
// payload must name the caller as requester; the insert and the status
// transition commit together or not at all.
func (s *Service) SubmitClaim(ctx context.Context, callerEmail string, claim Claim) (Claim, error) {
	if claim.UserEmail == "" || claim.UserEmail != callerEmail {
		return Claim{}, ErrIdentityMismatch
	}
	created, err := s.repo.SubmitClaim(ctx, claim)
	if err != nil {
		return Claim{}, err
	}
	s.bustFeatured(ctx)
	return created, nil
}

// ClaimsByRequester returns every claim the principal has submitted.
func (s *Service) ClaimsByRequester(ctx context.Context, email string) ([]Claim, error) {
	return s.repo.ListClaimsByRequester(ctx, email)
}
