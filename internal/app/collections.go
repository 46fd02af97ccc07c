package app

import (
	"context"
	"strings"

	"travel_cms/internal/domain"
	"travel_cms/internal/slug"
)

// ---- packages ----

type PackageInput struct {
	Title       string   `json:"title"`
	Destination string   `json:"destination"`
	Price       float64  `json:"price"`
	Days        float64  `json:"days"`
	Highlight   []string `json:"highlight"`
	Itinerary   []string `json:"itinerary"`
	ImageID     string   `json:"imageId"`
}

func (in PackageInput) normalize() (domain.Package, error) {
	p := domain.Package{
		Title:       strings.TrimSpace(in.Title),
		Destination: domain.Destination(strings.TrimSpace(in.Destination)),
		Price:       in.Price,
		Highlight:   trimLines(in.Highlight),
		Itinerary:   trimLines(in.Itinerary),
	}
	var ve domain.ValidationErrors
	required(&ve, "title", p.Title, "Title is required")
	switch {
	case p.Destination == "":
		ve.Add("destination", "Destination is required")
	case !p.Destination.Valid():
		ve.Add("destination", "Destination must be Kenya, Uganda, Tanzania or Dubai")
	}
	if !positive(in.Price) {
		ve.Add("price", "Price must be > 0")
	}
	if positiveInt(in.Days) {
		p.Days = int(in.Days)
	} else {
		ve.Add("days", "Days must be an integer > 0")
	}
	if len(p.Highlight) == 0 {
		ve.Add("highlight", "Highlights are required")
	}
	if len(p.Itinerary) == 0 {
		ve.Add("itinerary", "Itinerary is required")
	}
	required(&ve, "imageId", strings.TrimSpace(in.ImageID), "Image is required")
	return p, ve.Err()
}

func (s *ContentService) AddPackage(ctx context.Context, ac domain.AuthContext, in PackageInput) (out domain.Package, err error) {
	defer func() { s.done(ctx, domain.CollPackages, "insert", err) }()
	if err = requireAdmin(ac); err != nil {
		return out, err
	}
	p, err := in.normalize()
	if err != nil {
		return out, err
	}
	if p.ImageRef, err = s.resolveImage(ctx, strings.TrimSpace(in.ImageID)); err != nil {
		return out, err
	}
	return insertAs(ctx, s.store, domain.CollPackages, "", p)
}

func (s *ContentService) UpdatePackage(ctx context.Context, ac domain.AuthContext, id string, in PackageInput) (out domain.Package, err error) {
	defer func() { s.done(ctx, domain.CollPackages, "update", err) }()
	if err = requireAdmin(ac); err != nil {
		return out, err
	}
	p, err := in.normalize()
	if err != nil {
		return out, err
	}
	cur, err := getAs[domain.Package](ctx, s.store, domain.CollPackages, id)
	if err != nil {
		return out, err
	}
	if p.ImageRef, err = s.resolveImage(ctx, strings.TrimSpace(in.ImageID)); err != nil {
		return out, err
	}
	if out, err = replaceAs(ctx, s.store, domain.CollPackages, id, "", p); err != nil {
		return out, err
	}
	if cur.ImageID != p.ImageID {
		s.releaseImage(ctx, domain.CollPackages, id, cur.ImageID)
	}
	return out, nil
}

func (s *ContentService) DeletePackage(ctx context.Context, ac domain.AuthContext, id string) error {
	return deleteImageBearing(ctx, s, ac, domain.CollPackages, id, func(p domain.Package) domain.ImageRef { return p.ImageRef })
}

// ---- hero carousel ----

type SlideInput struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	ImageID  string `json:"imageId"`
}

func (in SlideInput) normalize() (domain.HeroSlide, error) {
	sl := domain.HeroSlide{Title: strings.TrimSpace(in.Title), Subtitle: strings.TrimSpace(in.Subtitle)}
	var ve domain.ValidationErrors
	required(&ve, "title", sl.Title, "Title is required")
	required(&ve, "subtitle", sl.Subtitle, "Subtitle is required")
	required(&ve, "imageId", strings.TrimSpace(in.ImageID), "Image is required")
	return sl, ve.Err()
}

func (s *ContentService) AddSlide(ctx context.Context, ac domain.AuthContext, in SlideInput) (out domain.HeroSlide, err error) {
	defer func() { s.done(ctx, domain.CollHeroCarousel, "insert", err) }()
	if err = requireAdmin(ac); err != nil {
		return out, err
	}
	sl, err := in.normalize()
	if err != nil {
		return out, err
	}
	if sl.ImageRef, err = s.resolveImage(ctx, strings.TrimSpace(in.ImageID)); err != nil {
		return out, err
	}
	return insertAs(ctx, s.store, domain.CollHeroCarousel, "", sl)
}

func (s *ContentService) UpdateSlide(ctx context.Context, ac domain.AuthContext, id string, in SlideInput) (out domain.HeroSlide, err error) {
	defer func() { s.done(ctx, domain.CollHeroCarousel, "update", err) }()
	if err = requireAdmin(ac); err != nil {
		return out, err
	}
	sl, err := in.normalize()
	if err != nil {
		return out, err
	}
	cur, err := getAs[domain.HeroSlide](ctx, s.store, domain.CollHeroCarousel, id)
	if err != nil {
		return out, err
	}
	if sl.ImageRef, err = s.resolveImage(ctx, strings.TrimSpace(in.ImageID)); err != nil {
		return out, err
	}
	if out, err = replaceAs(ctx, s.store, domain.CollHeroCarousel, id, "", sl); err != nil {
		return out, err
	}
	if cur.ImageID != sl.ImageID {
		s.releaseImage(ctx, domain.CollHeroCarousel, id, cur.ImageID)
	}
	return out, nil
}

func (s *ContentService) DeleteSlide(ctx context.Context, ac domain.AuthContext, id string) error {
	return deleteImageBearing(ctx, s, ac, domain.CollHeroCarousel, id, func(h domain.HeroSlide) domain.ImageRef { return h.ImageRef })
}

// ---- services ----

type ServiceInput struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
}

func (in ServiceInput) normalize() (domain.Service, error) {
	sv := domain.Service{
		Title:       strings.TrimSpace(in.Title),
		Subtitle:    strings.TrimSpace(in.Subtitle),
		Description: strings.TrimSpace(in.Description),
	}
	var ve domain.ValidationErrors
	required(&ve, "title", sv.Title, "Title is required")
	required(&ve, "subtitle", sv.Subtitle, "Subtitle is required")
	required(&ve, "description", sv.Description, "Description is required")
	return sv, ve.Err()
}

func (s *ContentService) AddService(ctx context.Context, ac domain.AuthContext, in ServiceInput) (out domain.Service, err error) {
	defer func() { s.done(ctx, domain.CollServices, "insert", err) }()
	if err = requireAdmin(ac); err != nil {
		return out, err
	}
	sv, err := in.normalize()
	if err != nil {
		return out, err
	}
	err = s.store.Atomic(ctx, func(ctx context.Context, tx domain.DocumentStore) error {
		if sv.Slug, err = uniqueSlug(ctx, tx, domain.CollServices, slug.Make(sv.Title), ""); err != nil {
			return err
		}
		out, err = insertAs(ctx, tx, domain.CollServices, sv.Slug, sv)
		return err
	})
	return out, err
}

func (s *ContentService) UpdateService(ctx context.Context, ac domain.AuthContext, id string, in ServiceInput) (out domain.Service, err error) {
	defer func() { s.done(ctx, domain.CollServices, "update", err) }()
	if err = requireAdmin(ac); err != nil {
		return out, err
	}
	sv, err := in.normalize()
	if err != nil {
		return out, err
	}
	err = s.store.Atomic(ctx, func(ctx context.Context, tx domain.DocumentStore) error {
		cur, err := getAs[domain.Service](ctx, tx, domain.CollServices, id)
		if err != nil {
			return err
		}
		sv.Slug = cur.Slug
		if cur.Title != sv.Title {
			if sv.Slug, err = uniqueSlug(ctx, tx, domain.CollServices, slug.Make(sv.Title), id); err != nil {
				return err
			}
		}
		out, err = replaceAs(ctx, tx, domain.CollServices, id, sv.Slug, sv)
		return err
	})
	return out, err
}

func (s *ContentService) DeleteService(ctx context.Context, ac domain.AuthContext, id string) error {
	return deleteByID(ctx, s, ac, domain.CollServices, id)
}

// ---- blog ----

type BlogInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	ImageID string `json:"imageId"`
}

func (s *ContentService) normalizeBlog(in BlogInput) (domain.BlogPost, error) {
	bp := domain.BlogPost{
		Title:   strings.TrimSpace(in.Title),
		Content: strings.TrimSpace(s.html.Sanitize(strings.TrimSpace(in.Content))),
	}
	var ve domain.ValidationErrors
	required(&ve, "title", bp.Title, "Title is required")
	required(&ve, "content", bp.Content, "Content is required")
	required(&ve, "imageId", strings.TrimSpace(in.ImageID), "Image is required")
	return bp, ve.Err()
}

func (s *ContentService) AddBlogPost(ctx context.Context, ac domain.AuthContext, in BlogInput) (out domain.BlogPost, err error) {
	defer func() { s.done(ctx, domain.CollBlog, "insert", err) }()
	if err = requireAdmin(ac); err != nil {
		return out, err
	}
	bp, err := s.normalizeBlog(in)
	if err != nil {
		return out, err
	}
	if bp.ImageRef, err = s.resolveImage(ctx, strings.TrimSpace(in.ImageID)); err != nil {
		return out, err
	}
	err = s.store.Atomic(ctx, func(ctx context.Context, tx domain.DocumentStore) error {
		if bp.Slug, err = uniqueSlug(ctx, tx, domain.CollBlog, slug.Make(bp.Title), ""); err != nil {
			return err
		}
		out, err = insertAs(ctx, tx, domain.CollBlog, bp.Slug, bp)
		return err
	})
	return out, err
}

func (s *ContentService) UpdateBlogPost(ctx context.Context, ac domain.AuthContext, id string, in BlogInput) (out domain.BlogPost, err error) {
	defer func() { s.done(ctx, domain.CollBlog, "update", err) }()
	if err = requireAdmin(ac); err != nil {
		return out, err
	}
	bp, err := s.normalizeBlog(in)
	if err != nil {
		return out, err
	}
	if bp.ImageRef, err = s.resolveImage(ctx, strings.TrimSpace(in.ImageID)); err != nil {
		return out, err
	}
	var prevImage string
	err = s.store.Atomic(ctx, func(ctx context.Context, tx domain.DocumentStore) error {
		cur, err := getAs[domain.BlogPost](ctx, tx, domain.CollBlog, id)
		if err != nil {
			return err
		}
		prevImage = cur.ImageID
		bp.Slug = cur.Slug
		if cur.Title != bp.Title {
			if bp.Slug, err = uniqueSlug(ctx, tx, domain.CollBlog, slug.Make(bp.Title), id); err != nil {
				return err
			}
		}
		out, err = replaceAs(ctx, tx, domain.CollBlog, id, bp.Slug, bp)
		return err
	})
	if err == nil && prevImage != bp.ImageID {
		s.releaseImage(ctx, domain.CollBlog, id, prevImage)
	}
	return out, err
}

func (s *ContentService) DeleteBlogPost(ctx context.Context, ac domain.AuthContext, id string) error {
	return deleteImageBearing(ctx, s, ac, domain.CollBlog, id, func(b domain.BlogPost) domain.ImageRef { return b.ImageRef })
}
