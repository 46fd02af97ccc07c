package domain

import "time"

// Collection names as stored in the document store.
const (
	CollCompanyInfo  = "companyInfo"
	CollHeroCarousel = "heroCarousel"
	CollPackages     = "packages"
	CollServices     = "services"
	CollBlog         = "blog"
	CollContact      = "contact"
	CollBookings     = "bookings"
	CollAboutHero    = "aboutHero"
	CollWhoWeAre     = "whoWeAre"
	CollWhatWeOffer  = "whatWeOffer"
	CollOurStrength  = "ourStrength"
	CollWhyChooseUs  = "whyChooseUs"
	CollSocials      = "socials"
	CollPages        = "pages"
	CollMedia        = "media"
)

// Meta is the store-assigned identity of every document.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

func (m *Meta) SetMeta(id string, createdAt time.Time) {
	m.ID = id
	m.CreatedAt = createdAt
}

// ImageRef is an upload reference plus the public URL it resolved to at write time.
type ImageRef struct {
	ImageID string `json:"imageId"`
	Image   string `json:"image"`
}

type Destination string

const (
	Kenya    Destination = "Kenya"
	Uganda   Destination = "Uganda"
	Tanzania Destination = "Tanzania"
	Dubai    Destination = "Dubai"
)

var Destinations = []Destination{Kenya, Uganda, Tanzania, Dubai}

func (d Destination) Valid() bool {
	for _, x := range Destinations {
		if d == x {
			return true
		}
	}
	return false
}

type BusinessHours struct {
	Label string `json:"label"`
	Hours string `json:"hours"`
}

type CompanyInfo struct {
	Meta
	Name          string          `json:"name"`
	Address       string          `json:"address"`
	Phones        []string        `json:"phones"`
	Email         string          `json:"email"`
	Instagram     string          `json:"instagram"`
	Facebook      string          `json:"facebook"`
	BusinessHours []BusinessHours `json:"businessHours"`
}

type HeroSlide struct {
	Meta
	ImageRef
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

type Package struct {
	Meta
	ImageRef
	Title       string      `json:"title"`
	Destination Destination `json:"destination"`
	Price       float64     `json:"price"`
	Days        int         `json:"days"`
	Highlight   []string    `json:"highlight"`
	Itinerary   []string    `json:"itinerary"`
}

type Service struct {
	Meta
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
}

type BlogPost struct {
	Meta
	ImageRef
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Contact struct {
	Meta
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Comment  string `json:"comment"`
}

type Travelers struct {
	Adults int `json:"adults"`
	Teens  int `json:"teens"`
	Kids   int `json:"kids"`
}

type Booking struct {
	Meta
	PackageTitle string          `json:"packageTitle"`
	PriceFromUSD Option[float64] `json:"priceFromUsd"`
	FullName     string          `json:"fullName"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Nationality  Option[string]  `json:"nationality"`
	Passport     Option[string]  `json:"passport"`
	FromDate     time.Time       `json:"fromDate"`
	ToDate       time.Time       `json:"toDate"`
	Rooms        int             `json:"rooms"`
	RoomType     Option[string]  `json:"roomType"`
	MealPlan     Option[string]  `json:"mealPlan"`
	Travelers    Travelers       `json:"travelers"`
	Comments     Option[string]  `json:"comments"`
	Status       Option[string]  `json:"status"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type AboutHero struct {
	Meta
	ImageRef
	Title       string `json:"title"`
	Description string `json:"description"`
}

type WhoWeAre struct {
	Meta
	Title string `json:"title"`
	Body  string `json:"body"`
}

type WhatWeOffer struct {
	Meta
	Title string   `json:"title"`
	Items []string `json:"items"`
}

type Point struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type OurStrength struct {
	Meta
	Items []Point `json:"items"`
}

type WhyChooseUs struct {
	Meta
	Items []Point `json:"items"`
}

type Socials struct {
	Meta
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
}

// Page is a free-form content page addressed by a caller-chosen slug.
type Page struct {
	Meta
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Content     any            `json:"content"`
	Excerpt     Option[string] `json:"excerpt"`
	HeroImageID Option[string] `json:"heroImageId"`
	Published   bool           `json:"published"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Media records what was stored for an upload.
type Media struct {
	Meta
	StorageID   string      `json:"storageId"`
	ContentType string      `json:"contentType"`
	Width       Option[int] `json:"width"`
	Height      Option[int] `json:"height"`
	Size        int64       `json:"size"`
}
