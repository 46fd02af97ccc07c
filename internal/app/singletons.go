package app

import (
	"context"
	"strings"

	"travel_cms/internal/domain"
)

// firstAs returns the first document of a singleton collection.
func firstAs[T any](ctx context.Context, st domain.DocumentStore, coll string) (domain.Option[T], error) {
	docs, err := st.List(ctx, coll)
	if err != nil || len(docs) == 0 {
		return domain.None[T](), err
	}
	v, err := decode[T](docs[0])
	if err != nil {
		return domain.None[T](), err
	}
	return domain.Some(v), nil
}

// setSingleton patches the first document of coll or inserts one if the
// collection is empty. It returns the replaced value, if any.
func setSingleton[T any](ctx context.Context, s *ContentService, ac domain.AuthContext, coll string, v T) (out T, prev domain.Option[T], err error) {
	defer func() { s.done(ctx, coll, "set", err) }()
	if err = requireAdmin(ac); err != nil {
		return out, prev, err
	}
	err = s.store.Atomic(ctx, func(ctx context.Context, tx domain.DocumentStore) error {
		docs, err := tx.List(ctx, coll)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			out, err = insertAs(ctx, tx, coll, "", v)
			return err
		}
		old, err := decode[T](docs[0])
		if err != nil {
			return err
		}
		prev = domain.Some(old)
		out, err = replaceAs(ctx, tx, coll, docs[0].ID, "", v)
		return err
	})
	return out, prev, err
}

type CompanyInfoInput struct {
	Name          string                 `json:"name"`
	Address       string                 `json:"address"`
	Phones        []string               `json:"phones"`
	Email         string                 `json:"email"`
	Instagram     string                 `json:"instagram"`
	Facebook      string                 `json:"facebook"`
	BusinessHours []domain.BusinessHours `json:"businessHours"`
}

const maxPhones = 2

func (s *ContentService) SetCompanyInfo(ctx context.Context, ac domain.AuthContext, in CompanyInfoInput) (domain.CompanyInfo, error) {
	if err := requireAdmin(ac); err != nil {
		return domain.CompanyInfo{}, s.reject(ctx, domain.CollCompanyInfo, "set", err)
	}
	ci := domain.CompanyInfo{
		Name:      strings.TrimSpace(in.Name),
		Address:   strings.TrimSpace(in.Address),
		Phones:    trimLines(in.Phones),
		Email:     strings.TrimSpace(in.Email),
		Instagram: strings.TrimSpace(in.Instagram),
		Facebook:  strings.TrimSpace(in.Facebook),
	}
	for _, bh := range in.BusinessHours {
		bh.Label, bh.Hours = strings.TrimSpace(bh.Label), strings.TrimSpace(bh.Hours)
		if bh.Label != "" || bh.Hours != "" {
			ci.BusinessHours = append(ci.BusinessHours, bh)
		}
	}
	if len(ci.Phones) > maxPhones {
		err := domain.ValidationErrors{{Field: "phones", Message: "At most 2 phone numbers are allowed"}}
		return domain.CompanyInfo{}, s.reject(ctx, domain.CollCompanyInfo, "set", err)
	}
	out, _, err := setSingleton(ctx, s, ac, domain.CollCompanyInfo, ci)
	return out, err
}

type SocialsInput struct {
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
}

func (s *ContentService) SetSocials(ctx context.Context, ac domain.AuthContext, in SocialsInput) (domain.Socials, error) {
	out, _, err := setSingleton(ctx, s, ac, domain.CollSocials, domain.Socials{
		Facebook:  strings.TrimSpace(in.Facebook),
		Instagram: strings.TrimSpace(in.Instagram),
	})
	return out, err
}

type AboutHeroInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageID     string `json:"imageId"`
}

func (s *ContentService) SetAboutHero(ctx context.Context, ac domain.AuthContext, in AboutHeroInput) (domain.AboutHero, error) {
	if err := requireAdmin(ac); err != nil {
		return domain.AboutHero{}, s.reject(ctx, domain.CollAboutHero, "set", err)
	}
	ah := domain.AboutHero{Title: strings.TrimSpace(in.Title), Description: strings.TrimSpace(in.Description)}
	var ve domain.ValidationErrors
	required(&ve, "title", ah.Title, "Title is required")
	required(&ve, "description", ah.Description, "Description is required")
	required(&ve, "imageId", strings.TrimSpace(in.ImageID), "Image is required")
	if err := ve.Err(); err != nil {
		return domain.AboutHero{}, s.reject(ctx, domain.CollAboutHero, "set", err)
	}
	ref, err := s.resolveImage(ctx, strings.TrimSpace(in.ImageID))
	if err != nil {
		return domain.AboutHero{}, s.reject(ctx, domain.CollAboutHero, "set", err)
	}
	ah.ImageRef = ref
	out, prev, err := setSingleton(ctx, s, ac, domain.CollAboutHero, ah)
	if err != nil {
		return out, err
	}
	if old, ok := prev.Get(); ok && old.ImageID != ah.ImageID {
		s.releaseImage(ctx, domain.CollAboutHero, out.ID, old.ImageID)
	}
	return out, nil
}

type WhoWeAreInput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *ContentService) SetWhoWeAre(ctx context.Context, ac domain.AuthContext, in WhoWeAreInput) (domain.WhoWeAre, error) {
	out, _, err := setSingleton(ctx, s, ac, domain.CollWhoWeAre, domain.WhoWeAre{
		Title: strings.TrimSpace(in.Title),
		Body:  strings.TrimSpace(in.Body),
	})
	return out, err
}

type WhatWeOfferInput struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

func (s *ContentService) SetWhatWeOffer(ctx context.Context, ac domain.AuthContext, in WhatWeOfferInput) (domain.WhatWeOffer, error) {
	out, _, err := setSingleton(ctx, s, ac, domain.CollWhatWeOffer, domain.WhatWeOffer{
		Title: strings.TrimSpace(in.Title),
		Items: trimLines(in.Items),
	})
	return out, err
}

type PointsInput struct {
	Items []domain.Point `json:"items"`
}

func (s *ContentService) SetOurStrength(ctx context.Context, ac domain.AuthContext, in PointsInput) (domain.OurStrength, error) {
	out, _, err := setSingleton(ctx, s, ac, domain.CollOurStrength, domain.OurStrength{Items: trimPoints(in.Items)})
	return out, err
}

func (s *ContentService) SetWhyChooseUs(ctx context.Context, ac domain.AuthContext, in PointsInput) (domain.WhyChooseUs, error) {
	out, _, err := setSingleton(ctx, s, ac, domain.CollWhyChooseUs, domain.WhyChooseUs{Items: trimPoints(in.Items)})
	return out, err
}
