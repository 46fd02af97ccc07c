package app

import (
	"context"
	"strings"
	"time"

	"travel_cms/internal/domain"
)

type ContactInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Comment  string `json:"comment"`
}

// SubmitContact is public; only presence is checked.
func (s *ContentService) SubmitContact(ctx context.Context, in ContactInput) (out domain.Contact, err error) {
	defer func() { s.done(ctx, domain.CollContact, "insert", err) }()
	c := domain.Contact{
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Comment:  strings.TrimSpace(in.Comment),
	}
	var ve domain.ValidationErrors
	required(&ve, "fullName", c.FullName, "Full name is required")
	required(&ve, "email", c.Email, "Email is required")
	required(&ve, "phone", c.Phone, "Phone is required")
	required(&ve, "comment", c.Comment, "Comment is required")
	if err = ve.Err(); err != nil {
		return out, err
	}
	return insertAs(ctx, s.store, domain.CollContact, "", c)
}

func (s *ContentService) ListContacts(ctx context.Context, ac domain.AuthContext) ([]domain.Contact, error) {
	if err := requireAdmin(ac); err != nil {
		return nil, err
	}
	return listAs[domain.Contact](ctx, s.store, domain.CollContact)
}

func (s *ContentService) DeleteContact(ctx context.Context, ac domain.AuthContext, id string) error {
	return deleteByID(ctx, s, ac, domain.CollContact, id)
}

// BookingInput dates are epoch milliseconds, as sent by the booking form.
type BookingInput struct {
	PackageTitle string                 `json:"packageTitle"`
	PriceFromUSD domain.Option[float64] `json:"priceFromUsd"`
	FullName     string                 `json:"fullName"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone"`
	Nationality  domain.Option[string]  `json:"nationality"`
	Passport     domain.Option[string]  `json:"passport"`
	FromDate     int64                  `json:"fromDate"`
	ToDate       int64                  `json:"toDate"`
	Rooms        int                    `json:"rooms"`
	RoomType     domain.Option[string]  `json:"roomType"`
	MealPlan     domain.Option[string]  `json:"mealPlan"`
	Travelers    domain.Travelers       `json:"travelers"`
	Comments     domain.Option[string]  `json:"comments"`
	Status       domain.Option[string]  `json:"status"`
}

// SubmitBooking is public. Only presence is checked: a toDate before
// fromDate, or any email/phone shape, is accepted as given.
func (s *ContentService) SubmitBooking(ctx context.Context, in BookingInput) (out domain.Booking, err error) {
	defer func() { s.done(ctx, domain.CollBookings, "insert", err) }()
	now := s.now()
	b := domain.Booking{
		PackageTitle: strings.TrimSpace(in.PackageTitle),
		PriceFromUSD: in.PriceFromUSD,
		FullName:     strings.TrimSpace(in.FullName),
		Email:        strings.TrimSpace(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		Nationality:  trimOpt(in.Nationality),
		Passport:     trimOpt(in.Passport),
		Rooms:        in.Rooms,
		RoomType:     trimOpt(in.RoomType),
		MealPlan:     trimOpt(in.MealPlan),
		Travelers:    in.Travelers,
		Comments:     trimOpt(in.Comments),
		Status:       trimOpt(in.Status),
		UpdatedAt:    now,
	}
	var ve domain.ValidationErrors
	required(&ve, "packageTitle", b.PackageTitle, "Package is required")
	required(&ve, "fullName", b.FullName, "Full name is required")
	required(&ve, "email", b.Email, "Email is required")
	required(&ve, "phone", b.Phone, "Phone is required")
	if in.FromDate == 0 {
		ve.Add("fromDate", "From date is required")
	}
	if in.ToDate == 0 {
		ve.Add("toDate", "To date is required")
	}
	if in.Rooms == 0 {
		ve.Add("rooms", "Rooms is required")
	}
	if err = ve.Err(); err != nil {
		return out, err
	}
	b.FromDate = time.UnixMilli(in.FromDate).UTC()
	b.ToDate = time.UnixMilli(in.ToDate).UTC()
	return insertAs(ctx, s.store, domain.CollBookings, "", b)
}

type BookingFilter struct {
	Email domain.Option[string]
	Limit domain.Option[int]
}

// ListBookings returns bookings newest first, optionally for one email.
// The email must match the submitted address exactly (after trimming).
func (s *ContentService) ListBookings(ctx context.Context, ac domain.AuthContext, f BookingFilter) ([]domain.Booking, error) {
	if err := requireAdmin(ac); err != nil {
		return nil, err
	}
	all, err := listAs[domain.Booking](ctx, s.store, domain.CollBookings)
	if err != nil {
		return nil, err
	}
	email, byEmail := f.Email.Get()
	email = strings.TrimSpace(email)
	limit, limited := f.Limit.Get()
	out := make([]domain.Booking, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if limited && len(out) >= limit {
			break
		}
		if byEmail && all[i].Email != email {
			continue
		}
		out = append(out, all[i])
	}
	return out, nil
}

func (s *ContentService) DeleteBooking(ctx context.Context, ac domain.AuthContext, id string) error {
	return deleteByID(ctx, s, ac, domain.CollBookings, id)
}
