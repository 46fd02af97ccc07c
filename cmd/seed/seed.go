package main

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"travel_cms/internal/adapters/cmsclient"
	"travel_cms/internal/app"
	"travel_cms/internal/domain"
)

// SeedFile is the YAML layout read by the seed command. Image fields are
// paths relative to the seed file.
type SeedFile struct {
	CompanyInfo *struct {
		Name          string   `yaml:"name"`
		Address       string   `yaml:"address"`
		Phones        []string `yaml:"phones"`
		Email         string   `yaml:"email"`
		Instagram     string   `yaml:"instagram"`
		Facebook      string   `yaml:"facebook"`
		BusinessHours []struct {
			Label string `yaml:"label"`
			Hours string `yaml:"hours"`
		} `yaml:"businessHours"`
	} `yaml:"companyInfo"`
	Socials *struct {
		Facebook  string `yaml:"facebook"`
		Instagram string `yaml:"instagram"`
	} `yaml:"socials"`
	AboutHero *struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		Image       string `yaml:"image"`
	} `yaml:"aboutHero"`
	WhoWeAre *struct {
		Title string `yaml:"title"`
		Body  string `yaml:"body"`
	} `yaml:"whoWeAre"`
	WhatWeOffer *struct {
		Title string   `yaml:"title"`
		Items []string `yaml:"items"`
	} `yaml:"whatWeOffer"`
	OurStrength []seedPoint `yaml:"ourStrength"`
	WhyChooseUs []seedPoint `yaml:"whyChooseUs"`

	Carousel []struct {
		Title    string `yaml:"title"`
		Subtitle string `yaml:"subtitle"`
		Image    string `yaml:"image"`
	} `yaml:"carousel"`
	Packages []struct {
		Title       string   `yaml:"title"`
		Destination string   `yaml:"destination"`
		Price       float64  `yaml:"price"`
		Days        float64  `yaml:"days"`
		Highlight   []string `yaml:"highlight"`
		Itinerary   []string `yaml:"itinerary"`
		Image       string   `yaml:"image"`
	} `yaml:"packages"`
	Services []struct {
		Title       string `yaml:"title"`
		Subtitle    string `yaml:"subtitle"`
		Description string `yaml:"description"`
	} `yaml:"services"`
	Blog []struct {
		Title   string `yaml:"title"`
		Content string `yaml:"content"`
		Image   string `yaml:"image"`
	} `yaml:"blog"`
	Pages []struct {
		Slug      string `yaml:"slug"`
		Title     string `yaml:"title"`
		Content   any    `yaml:"content"`
		Excerpt   string `yaml:"excerpt"`
		HeroImage string `yaml:"heroImage"`
		Published bool   `yaml:"published"`
	} `yaml:"pages"`
}

type seedPoint struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

func points(in []seedPoint) app.PointsInput {
	out := app.PointsInput{Items: make([]domain.Point, 0, len(in))}
	for _, p := range in {
		out.Items = append(out.Items, domain.Point{Title: p.Title, Description: p.Description})
	}
	return out
}

func loadSeed(path string) (SeedFile, error) {
	var sf SeedFile
	b, err := os.ReadFile(path)
	if err != nil {
		return sf, err
	}
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return sf, fmt.Errorf("parse %s: %w", path, err)
	}
	return sf, nil
}

// job is one independent write against the CMS.
type job struct {
	name string
	run  func(ctx context.Context) error
}

// api is the part of cmsclient.Client the seeder needs.
type api interface {
	UploadImage(ctx context.Context, data []byte, contentType string) (cmsclient.Uploaded, error)
	Post(ctx context.Context, path string, in, out any) error
	Put(ctx context.Context, path string, in, out any) error
}

type seeder struct {
	cl  api
	dir string
}

// image uploads the file at rel and returns its storage id.
func (s seeder) image(ctx context.Context, rel string) (string, error) {
	if rel == "" {
		return "", nil
	}
	p := rel
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.dir, rel)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	ct := mime.TypeByExtension(filepath.Ext(p))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	up, err := s.cl.UploadImage(ctx, data, ct)
	if err != nil {
		return "", fmt.Errorf("%s: %w", rel, err)
	}
	log.Debug().
		Str("file", rel).
		Stringer("outcome", up.Image.Outcome).
		Str("reason", up.Image.Reason).
		Int("bytes", len(up.Image.Data)).
		Msg("image uploaded")
	return up.StorageID, nil
}

func (s seeder) put(path string, in any) func(context.Context) error {
	return func(ctx context.Context) error { return s.cl.Put(ctx, path, in, nil) }
}

func (s seeder) post(path string, in any) func(context.Context) error {
	return func(ctx context.Context) error { return s.cl.Post(ctx, path, in, nil) }
}

// jobs expands the seed file into independent writes.
func (s seeder) jobs(sf SeedFile) []job {
	var out []job
	if c := sf.CompanyInfo; c != nil {
		in := app.CompanyInfoInput{Name: c.Name, Address: c.Address, Phones: c.Phones, Email: c.Email,
			Instagram: c.Instagram, Facebook: c.Facebook}
		for _, bh := range c.BusinessHours {
			in.BusinessHours = append(in.BusinessHours, domain.BusinessHours{Label: bh.Label, Hours: bh.Hours})
		}
		out = append(out, job{"company-info", s.put("/v1/admin/company-info", in)})
	}
	if c := sf.Socials; c != nil {
		out = append(out, job{"socials", s.put("/v1/admin/socials", app.SocialsInput{Facebook: c.Facebook, Instagram: c.Instagram})})
	}
	if c := sf.AboutHero; c != nil {
		out = append(out, job{"about-hero", func(ctx context.Context) error {
			id, err := s.image(ctx, c.Image)
			if err != nil {
				return err
			}
			return s.cl.Put(ctx, "/v1/admin/about/hero", app.AboutHeroInput{Title: c.Title, Description: c.Description, ImageID: id}, nil)
		}})
	}
	if c := sf.WhoWeAre; c != nil {
		out = append(out, job{"who-we-are", s.put("/v1/admin/about/who-we-are", app.WhoWeAreInput{Title: c.Title, Body: c.Body})})
	}
	if c := sf.WhatWeOffer; c != nil {
		out = append(out, job{"what-we-offer", s.put("/v1/admin/about/what-we-offer", app.WhatWeOfferInput{Title: c.Title, Items: c.Items})})
	}
	if len(sf.OurStrength) > 0 {
		out = append(out, job{"our-strength", s.put("/v1/admin/about/our-strength", points(sf.OurStrength))})
	}
	if len(sf.WhyChooseUs) > 0 {
		out = append(out, job{"why-choose-us", s.put("/v1/admin/about/why-choose-us", points(sf.WhyChooseUs))})
	}
	for _, c := range sf.Carousel {
		out = append(out, job{"carousel " + c.Title, func(ctx context.Context) error {
			id, err := s.image(ctx, c.Image)
			if err != nil {
				return err
			}
			return s.cl.Post(ctx, "/v1/admin/carousel", app.SlideInput{Title: c.Title, Subtitle: c.Subtitle, ImageID: id}, nil)
		}})
	}
	for _, c := range sf.Packages {
		out = append(out, job{"package " + c.Title, func(ctx context.Context) error {
			id, err := s.image(ctx, c.Image)
			if err != nil {
				return err
			}
			return s.cl.Post(ctx, "/v1/admin/packages", app.PackageInput{Title: c.Title, Destination: c.Destination,
				Price: c.Price, Days: c.Days, Highlight: c.Highlight, Itinerary: c.Itinerary, ImageID: id}, nil)
		}})
	}
	for _, c := range sf.Services {
		out = append(out, job{"service " + c.Title, s.post("/v1/admin/services",
			app.ServiceInput{Title: c.Title, Subtitle: c.Subtitle, Description: c.Description})})
	}
	for _, c := range sf.Blog {
		out = append(out, job{"blog " + c.Title, func(ctx context.Context) error {
			id, err := s.image(ctx, c.Image)
			if err != nil {
				return err
			}
			return s.cl.Post(ctx, "/v1/admin/blog", app.BlogInput{Title: c.Title, Content: c.Content, ImageID: id}, nil)
		}})
	}
	for _, c := range sf.Pages {
		out = append(out, job{"page " + c.Slug, func(ctx context.Context) error {
			in := app.PageInput{Title: c.Title, Content: c.Content, Excerpt: domain.NonEmpty(c.Excerpt), Published: c.Published}
			id, err := s.image(ctx, c.HeroImage)
			if err != nil {
				return err
			}
			in.HeroImageID = domain.NonEmpty(id)
			return s.cl.Put(ctx, "/v1/admin/pages/"+c.Slug, in, nil)
		}})
	}
	return out
}
