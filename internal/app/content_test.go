package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel_cms/internal/app"
	"travel_cms/internal/domain"
	"travel_cms/internal/storage/memory"
)

type contentFixture struct {
	store *memory.Store
	blobs *fakeBlobs
	cache *fakeCache
	svc   *app.ContentService
}

func newContent(t *testing.T) contentFixture {
	t.Helper()
	f := contentFixture{store: memory.New(), blobs: newFakeBlobs(), cache: &fakeCache{}}
	f.svc = app.NewContentService(f.store, f.blobs, f.cache, "https://cms.example.com/")
	return f
}

func validPackage(imageID string) app.PackageInput {
	return app.PackageInput{
		Title:       "Masai Mara Safari",
		Destination: "Kenya",
		Price:       1200,
		Days:        5,
		Highlight:   []string{"Big five", "  ", "Balloon ride"},
		Itinerary:   []string{"Day 1: Nairobi"},
		ImageID:     imageID,
	}
}

func TestAddPackage_PriceBoundary(t *testing.T) {
	f := newContent(t)
	ctx := context.Background()

	in := validPackage(f.blobs.seed())
	in.Price = 0
	_, err := f.svc.AddPackage(ctx, admin, in)
	var ve domain.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "price", ve[0].Field)

	in.Price = 0.01
	p, err := f.svc.AddPackage(ctx, admin, in)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, []string{"Big five", "Balloon ride"}, p.Highlight)
	assert.Equal(t, "https://cms.example.com/media/"+in.ImageID, p.Image)
}

func TestAddPackage_CollectsEveryViolation(t *testing.T) {
	f := newContent(t)
	_, err := f.svc.AddPackage(context.Background(), admin, app.PackageInput{
		Destination: "Mars",
		Price:       -1,
		Days:        2.5,
		Highlight:   []string{" "},
	})
	var ve domain.ValidationErrors
	require.ErrorAs(t, err, &ve)
	fields := map[string]bool{}
	for _, fe := range ve {
		fields[fe.Field] = true
	}
	for _, want := range []string{"title", "destination", "price", "days", "highlight", "itinerary", "imageId"} {
		assert.True(t, fields[want], "missing %s", want)
	}
}

func TestAddPackage_UnknownImage(t *testing.T) {
	f := newContent(t)
	_, err := f.svc.AddPackage(context.Background(), admin, validPackage("no-such-upload"))
	assert.ErrorIs(t, err, domain.ErrImageUnresolvable)
	assert.Equal(t, "Failed to resolve image URL", err.Error())
}

func TestAdminGate(t *testing.T) {
	f := newContent(t)
	ctx := context.Background()

	_, err := f.svc.AddService(ctx, domain.Anonymous(), app.ServiceInput{Title: "x", Subtitle: "y", Description: "z"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = f.svc.AddService(ctx, member, app.ServiceInput{Title: "x", Subtitle: "y", Description: "z"})
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	_, err = f.svc.SetCompanyInfo(ctx, member, app.CompanyInfoInput{Phones: []string{"1", "2", "3"}})
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	docs, _ := f.store.List(ctx, domain.CollServices)
	assert.Empty(t, docs)
}

func TestServiceSlugs_Disambiguated(t *testing.T) {
	f := newContent(t)
	ctx := context.Background()
	in := app.ServiceInput{Title: "Airport Transfers!", Subtitle: "s", Description: "d"}

	a, err := f.svc.AddService(ctx, admin, in)
	require.NoError(t, err)
	b, err := f.svc.AddService(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, "airport-transfers", a.Slug)
	assert.Equal(t, "airport-transfers-2", b.Slug)

	// same title keeps the slug
	in.Subtitle = "changed"
	b2, err := f.svc.UpdateService(ctx, admin, b.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "airport-transfers-2", b2.Slug)

	// a new title frees the old slug
	in.Title = "Car Hire"
	a2, err := f.svc.UpdateService(ctx, admin, a.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "car-hire", a2.Slug)

	got, err := app.NewQueryService(f.store, nil, 0).ServiceBySlug(ctx, "car-hire")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.CreatedAt, got.CreatedAt)
}

func TestBlogPost_SanitizedAndSlugged(t *testing.T) {
	f := newContent(t)
	p, err := f.svc.AddBlogPost(context.Background(), admin, app.BlogInput{
		Title:   "Zanzibar in June",
		Content: `<p>Spice tour</p><script>alert(1)</script>`,
		ImageID: f.blobs.seed(),
	})
	require.NoError(t, err)
	assert.Equal(t, "zanzibar-in-june", p.Slug)
	assert.Equal(t, "<p>Spice tour</p>", p.Content)
}

func TestDeleteImageBearing_ReleasesUpload(t *testing.T) {
	f := newContent(t)
	ctx := context.Background()
	img := f.blobs.seed()
	_, err := f.store.Insert(ctx, domain.CollMedia, domain.Document{Slug: img, Body: []byte(`{"storageId":"` + img + `"}`)})
	require.NoError(t, err)

	s, err := f.svc.AddSlide(ctx, admin, app.SlideInput{Title: "Serengeti", Subtitle: "Migration", ImageID: img})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSlide(ctx, admin, s.ID))
	assert.Equal(t, []string{img}, f.blobs.deleted)

	_, err = f.store.Get(ctx, domain.CollHeroCarousel, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.store.FindBySlug(ctx, domain.CollMedia, img)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// the reference no longer resolves
	_, err = f.svc.AddSlide(ctx, admin, app.SlideInput{Title: "a", Subtitle: "b", ImageID: img})
	assert.ErrorIs(t, err, domain.ErrImageUnresolvable)
}

func TestUpdatePackage_ReleasesReplacedImage(t *testing.T) {
	f := newContent(t)
	ctx := context.Background()
	first, second := f.blobs.seed(), f.blobs.seed()

	p, err := f.svc.AddPackage(ctx, admin, validPackage(first))
	require.NoError(t, err)
	_, err = f.svc.UpdatePackage(ctx, admin, p.ID, validPackage(second))
	require.NoError(t, err)

	assert.Equal(t, []string{first}, f.blobs.deleted)
}

func TestDeleteSlide_ReleaseFailureStillDeletes(t *testing.T) {
	f := newContent(t)
	ctx := context.Background()
	img := f.blobs.seed()
	s, err := f.svc.AddSlide(ctx, admin, app.SlideInput{Title: "t", Subtitle: "s", ImageID: img})
	require.NoError(t, err)

	require.NoError(t, f.blobs.Delete(ctx, img))
	require.NoError(t, f.svc.DeleteSlide(ctx, admin, s.ID))

	_, err = f.store.Get(ctx, domain.CollHeroCarousel, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSingleton_SetTwiceKeepsOneDocument(t *testing.T) {
	f := newContent(t)
	ctx := context.Background()

	_, err := f.svc.SetSocials(ctx, admin, app.SocialsInput{Facebook: "fb/one"})
	require.NoError(t, err)
	_, err = f.svc.SetSocials(ctx, admin, app.SocialsInput{Facebook: " fb/two ", Instagram: "ig"})
	require.NoError(t, err)

	docs, err := f.store.List(ctx, domain.CollSocials)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	got, err := app.NewQueryService(f.store, nil, 0).Socials(ctx)
	require.NoError(t, err)
	s, ok := got.Get()
	require.True(t, ok)
	assert.Equal(t, "fb/two", s.Facebook)
	assert.Equal(t, "ig", s.Instagram)
}

func TestCompanyInfo_PhoneLimit(t *testing.T) {
	f := newContent(t)
	ctx := context.Background()

	_, err := f.svc.SetCompanyInfo(ctx, admin, app.CompanyInfoInput{Phones: []string{"1", "2", "3"}})
	var ve domain.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "At most 2 phone numbers are allowed", ve[0].Message)

	ci, err := f.svc.SetCompanyInfo(ctx, admin, app.CompanyInfoInput{
		Name:          "Safari Co",
		Phones:        []string{"+254 700", " ", "+254 701"},
		BusinessHours: []domain.BusinessHours{{Label: "Mon-Fri", Hours: "8-5"}, {}},
	})
	require.NoError(t, err)
	assert.Len(t, ci.Phones, 2)
	assert.Len(t, ci.BusinessHours, 1)
}

func TestAboutHero_ReplacingImageReleasesOld(t *testing.T) {
	f := newContent(t)
	ctx := context.Background()
	first, second := f.blobs.seed(), f.blobs.seed()

	_, err := f.svc.SetAboutHero(ctx, admin, app.AboutHeroInput{Title: "t", Description: "d", ImageID: first})
	require.NoError(t, err)
	out, err := f.svc.SetAboutHero(ctx, admin, app.AboutHeroInput{Title: "t", Description: "d", ImageID: second})
	require.NoError(t, err)

	assert.Equal(t, second, out.ImageID)
	assert.Equal(t, []string{first}, f.blobs.deleted)
}

func TestBooking_ReversedDatesAccepted(t *testing.T) {
	f := newContent(t)
	ctx := context.Background()
	from := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)

	b, err := f.svc.SubmitBooking(ctx, app.BookingInput{
		PackageTitle: "Masai Mara Safari",
		FullName:     "Ana Lima",
		Email:        "ana@example.com",
		Phone:        "+1 555",
		FromDate:     from.UnixMilli(),
		ToDate:       from.AddDate(0, 0, -3).UnixMilli(),
		Rooms:        1,
	})
	require.NoError(t, err)
	assert.True(t, b.ToDate.Before(b.FromDate))
	assert.False(t, b.Status.IsSome())

	b, err = f.svc.SubmitBooking(ctx, app.BookingInput{
		PackageTitle: "Masai Mara Safari", FullName: "Ana Lima", Email: "ana@example.com", Phone: "+1 555",
		FromDate: from.UnixMilli(), ToDate: from.AddDate(0, 0, 3).UnixMilli(), Rooms: 1,
		Status: domain.Some("  pending "),
	})
	require.NoError(t, err)
	status, ok := b.Status.Get()
	require.True(t, ok)
	assert.Equal(t, "pending", status)

	stored, err := f.svc.ListBookings(ctx, admin, app.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, domain.Some("pending"), stored[0].Status)
}

func TestBooking_MissingFields(t *testing.T) {
	f := newContent(t)
	_, err := f.svc.SubmitBooking(context.Background(), app.BookingInput{FullName: "x"})
	var ve domain.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve, 6)
}

func TestListBookings_FilterAndLimit(t *testing.T) {
	f := newContent(t)
	ctx := context.Background()
	for _, email := range []string{"a@example.com", "B@example.com", "b@example.com", "b@example.com"} {
		_, err := f.svc.SubmitBooking(ctx, app.BookingInput{
			PackageTitle: "p", FullName: "n", Email: email, Phone: "1",
			FromDate: 1, ToDate: 2, Rooms: 1,
		})
		require.NoError(t, err)
	}

	_, err := f.svc.ListBookings(ctx, member, app.BookingFilter{})
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	all, err := f.svc.ListBookings(ctx, admin, app.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "b@example.com", all[0].Email)
	assert.Equal(t, "a@example.com", all[3].Email)

	bs, err := f.svc.ListBookings(ctx, admin, app.BookingFilter{Email: domain.Some("b@example.com"), Limit: domain.Some(5)})
	require.NoError(t, err)
	assert.Len(t, bs, 2)

	// exact match: a differently cased address is a different submitter
	bs, err = f.svc.ListBookings(ctx, admin, app.BookingFilter{Email: domain.Some("B@example.com")})
	require.NoError(t, err)
	assert.Len(t, bs, 1)

	bs, err = f.svc.ListBookings(ctx, admin, app.BookingFilter{Email: domain.Some("b@EXAMPLE.com")})
	require.NoError(t, err)
	assert.Empty(t, bs)
}

func TestContact_RequiredFields(t *testing.T) {
	f := newContent(t)
	ctx := context.Background()

	_, err := f.svc.SubmitContact(ctx, app.ContactInput{FullName: "Ana"})
	var ve domain.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve, 3)

	c, err := f.svc.SubmitContact(ctx, app.ContactInput{FullName: "Ana", Email: "a@x", Phone: "1", Comment: "hi"})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteContact(ctx, admin, c.ID))
	assert.ErrorIs(t, f.svc.DeleteContact(ctx, admin, c.ID), domain.ErrNotFound)
}

func TestPages_UpsertByPathAndVisibility(t *testing.T) {
	f := newContent(t)
	ctx := context.Background()
	q := app.NewQueryService(f.store, nil, 0)

	_, err := f.svc.UpsertPage(ctx, admin, "Bad Slug", app.PageInput{Title: "x"})
	var ve domain.ValidationErrors
	require.ErrorAs(t, err, &ve)

	draft, err := f.svc.UpsertPage(ctx, admin, "terms", app.PageInput{Title: "Terms", Content: map[string]any{"blocks": []any{}}})
	require.NoError(t, err)
	_, err = q.PublishedPage(ctx, "terms")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	pub, err := f.svc.UpsertPage(ctx, admin, "terms", app.PageInput{Title: "Terms v2", Published: true})
	require.NoError(t, err)
	assert.Equal(t, draft.ID, pub.ID)

	got, err := q.PublishedPage(ctx, "terms")
	require.NoError(t, err)
	assert.Equal(t, "Terms v2", got.Title)

	_, err = f.svc.UpsertPage(ctx, admin, "privacy", app.PageInput{Title: "Privacy"})
	require.NoError(t, err)
	all, err := f.svc.ListPages(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "privacy", all[0].Slug)

	public, err := q.PublishedPages(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)

	removed, err := f.svc.RemovePage(ctx, admin, "terms")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = f.svc.RemovePage(ctx, admin, "terms")
	require.NoError(t, err)
	assert.False(t, removed)
}
