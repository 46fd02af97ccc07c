package app

import (
	"context"
	"encoding/json"
	"time"

	"travel_cms/internal/domain"
)

func cacheKey(coll string) string { return "content:" + coll }

// QueryService serves the public site. Whole collections are cached per
// collection and dropped by ContentService on every successful write.
type QueryService struct {
	store    domain.DocumentStore
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(st domain.DocumentStore, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: st, cache: c, cacheTTL: ttl}
}

// cached is the cache-aside read shared by every public list.
func cached[T any](ctx context.Context, q *QueryService, coll string, load func() (T, error)) (T, error) {
	key := cacheKey(coll)
	var out T
	if q.cache != nil {
		if ok, _ := q.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}
	out, err := load()
	if err != nil {
		return out, err
	}
	// optional size guard
	if q.cache != nil {
		if b, _ := json.Marshal(out); len(b) < 1_000_000 {
			_ = q.cache.Set(ctx, key, out, int(q.cacheTTL.Seconds()))
		}
	}
	return out, nil
}

func listCached[T any](ctx context.Context, q *QueryService, coll string) ([]T, error) {
	return cached(ctx, q, coll, func() ([]T, error) { return listAs[T](ctx, q.store, coll) })
}

func singletonCached[T any](ctx context.Context, q *QueryService, coll string) (domain.Option[T], error) {
	return cached(ctx, q, coll, func() (domain.Option[T], error) { return firstAs[T](ctx, q.store, coll) })
}

func (q *QueryService) Carousel(ctx context.Context) ([]domain.HeroSlide, error) {
	return listCached[domain.HeroSlide](ctx, q, domain.CollHeroCarousel)
}

func (q *QueryService) Packages(ctx context.Context) ([]domain.Package, error) {
	return listCached[domain.Package](ctx, q, domain.CollPackages)
}

func (q *QueryService) Services(ctx context.Context) ([]domain.Service, error) {
	return listCached[domain.Service](ctx, q, domain.CollServices)
}

func (q *QueryService) ServiceBySlug(ctx context.Context, s string) (domain.Service, error) {
	return bySlugAs[domain.Service](ctx, q.store, domain.CollServices, s)
}

func (q *QueryService) Blog(ctx context.Context) ([]domain.BlogPost, error) {
	return listCached[domain.BlogPost](ctx, q, domain.CollBlog)
}

func (q *QueryService) BlogPostBySlug(ctx context.Context, s string) (domain.BlogPost, error) {
	return bySlugAs[domain.BlogPost](ctx, q.store, domain.CollBlog, s)
}

// PublishedPages is newest first.
func (q *QueryService) PublishedPages(ctx context.Context) ([]domain.Page, error) {
	return cached(ctx, q, domain.CollPages, func() ([]domain.Page, error) {
		return listPages(ctx, q.store, true)
	})
}

// PublishedPage hides drafts behind ErrNotFound.
func (q *QueryService) PublishedPage(ctx context.Context, s string) (domain.Page, error) {
	p, err := bySlugAs[domain.Page](ctx, q.store, domain.CollPages, s)
	if err != nil {
		return p, err
	}
	if !p.Published {
		return domain.Page{}, domain.ErrNotFound
	}
	return p, nil
}

func (q *QueryService) CompanyInfo(ctx context.Context) (domain.Option[domain.CompanyInfo], error) {
	return singletonCached[domain.CompanyInfo](ctx, q, domain.CollCompanyInfo)
}

func (q *QueryService) Socials(ctx context.Context) (domain.Option[domain.Socials], error) {
	return singletonCached[domain.Socials](ctx, q, domain.CollSocials)
}

func (q *QueryService) AboutHero(ctx context.Context) (domain.Option[domain.AboutHero], error) {
	return singletonCached[domain.AboutHero](ctx, q, domain.CollAboutHero)
}

func (q *QueryService) WhoWeAre(ctx context.Context) (domain.Option[domain.WhoWeAre], error) {
	return singletonCached[domain.WhoWeAre](ctx, q, domain.CollWhoWeAre)
}

func (q *QueryService) WhatWeOffer(ctx context.Context) (domain.Option[domain.WhatWeOffer], error) {
	return singletonCached[domain.WhatWeOffer](ctx, q, domain.CollWhatWeOffer)
}

func (q *QueryService) OurStrength(ctx context.Context) (domain.Option[domain.OurStrength], error) {
	return singletonCached[domain.OurStrength](ctx, q, domain.CollOurStrength)
}

func (q *QueryService) WhyChooseUs(ctx context.Context) (domain.Option[domain.WhyChooseUs], error) {
	return singletonCached[domain.WhyChooseUs](ctx, q, domain.CollWhyChooseUs)
}
