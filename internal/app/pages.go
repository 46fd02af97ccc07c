package app

import (
	"context"
	"errors"
	"strings"

	"travel_cms/internal/domain"
	"travel_cms/internal/slug"
)

type PageInput struct {
	Title       string                `json:"title"`
	Content     any                   `json:"content"`
	Excerpt     domain.Option[string] `json:"excerpt"`
	HeroImageID domain.Option[string] `json:"heroImageId"`
	Published   bool                  `json:"published"`
}

// UpsertPage creates or replaces the page stored under pageSlug.
func (s *ContentService) UpsertPage(ctx context.Context, ac domain.AuthContext, pageSlug string, in PageInput) (out domain.Page, err error) {
	defer func() { s.done(ctx, domain.CollPages, "set", err) }()
	if err = requireAdmin(ac); err != nil {
		return out, err
	}
	p := domain.Page{
		Slug:        strings.TrimSpace(pageSlug),
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		Excerpt:     trimOpt(in.Excerpt),
		HeroImageID: trimOpt(in.HeroImageID),
		Published:   in.Published,
		UpdatedAt:   s.now(),
	}
	var ve domain.ValidationErrors
	if p.Slug == "" || slug.Make(p.Slug) != p.Slug {
		ve.Add("slug", "Slug must use lowercase letters, digits and single hyphens")
	}
	required(&ve, "title", p.Title, "Title is required")
	if err = ve.Err(); err != nil {
		return out, err
	}
	if id, ok := p.HeroImageID.Get(); ok {
		if _, err = s.resolveImage(ctx, id); err != nil {
			return out, err
		}
	}
	err = s.store.Atomic(ctx, func(ctx context.Context, tx domain.DocumentStore) error {
		cur, err := tx.FindBySlug(ctx, domain.CollPages, p.Slug)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			out, err = insertAs(ctx, tx, domain.CollPages, p.Slug, p)
			return err
		case err != nil:
			return err
		}
		out, err = replaceAs(ctx, tx, domain.CollPages, cur.ID, p.Slug, p)
		return err
	})
	return out, err
}

// RemovePage reports whether a page existed under pageSlug.
func (s *ContentService) RemovePage(ctx context.Context, ac domain.AuthContext, pageSlug string) (removed bool, err error) {
	defer func() { s.done(ctx, domain.CollPages, "delete", err) }()
	if err = requireAdmin(ac); err != nil {
		return false, err
	}
	d, err := s.store.FindBySlug(ctx, domain.CollPages, pageSlug)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err = s.store.Delete(ctx, domain.CollPages, d.ID); err != nil {
		return false, err
	}
	return true, nil
}

// ListPages returns every page, newest first, drafts included.
func (s *ContentService) ListPages(ctx context.Context, ac domain.AuthContext) ([]domain.Page, error) {
	if err := requireAdmin(ac); err != nil {
		return nil, err
	}
	return listPages(ctx, s.store, false)
}

func listPages(ctx context.Context, st domain.DocumentStore, publishedOnly bool) ([]domain.Page, error) {
	all, err := listAs[domain.Page](ctx, st, domain.CollPages)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Page, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if publishedOnly && !all[i].Published {
			continue
		}
		out = append(out, all[i])
	}
	return out, nil
}
