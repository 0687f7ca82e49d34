package domain

import (
	"context"
	"time"
)

// CatalogKind distinguishes the four academy products that share one shape.
type CatalogKind string

const (
	KindProgram  CatalogKind = "program"
	KindBootcamp CatalogKind = "bootcamp"
	KindAcademy  CatalogKind = "academy"
	KindCourse   CatalogKind = "course"

	CatalogPublished = "published"
	CatalogDraft     = "draft"
)

var catalogRoutes = map[string]CatalogKind{
	"programs":  KindProgram,
	"bootcamps": KindBootcamp,
	"academies": KindAcademy,
	"courses":   KindCourse,
}

// ParseCatalogKind accepts both the route segment ("bootcamps") and the kind itself.
func ParseCatalogKind(s string) (CatalogKind, bool) {
	if kind, ok := catalogRoutes[s]; ok {
		return kind, true
	}
	switch CatalogKind(s) {
	case KindProgram, KindBootcamp, KindAcademy, KindCourse:
		return CatalogKind(s), true
	}
	return "", false
}

type Pricing struct {
	OriginalPrice int64  `json:"original_price"`
	DiscountPrice int64  `json:"discount_price,omitempty"`
	Currency      string `json:"currency"`
}

// Effective is the price a buyer pays: the discount when it actually undercuts the original.
func (p Pricing) Effective() int64 {
	if p.DiscountPrice > 0 && p.DiscountPrice < p.OriginalPrice {
		return p.DiscountPrice
	}
	return p.OriginalPrice
}

type Session struct {
	Title    string `json:"title"`
	Duration string `json:"duration,omitempty"`
}

type Topic struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Sessions    []Session `json:"sessions"`
}

type Instructor struct {
	Name        string `json:"name"`
	Expertise   string `json:"expertise,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Description string `json:"description,omitempty"`
}

type Testimonial struct {
	Name    string `json:"name"`
	Avatar  string `json:"avatar,omitempty"`
	Comment string `json:"comment"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CatalogContent is the nested part of an item, persisted as one JSON document.
type CatalogContent struct {
	Topics       []Topic       `json:"topics"`
	Instructors  []Instructor  `json:"instructors"`
	Testimonials []Testimonial `json:"testimonials"`
	FAQ          []FAQ         `json:"faq"`
}

type CatalogItem struct {
	ID          int64       `json:"id"`
	Kind        CatalogKind `json:"kind"`
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle,omitempty"`
	Description string      `json:"description"`
	Category    string      `json:"category,omitempty"`
	Level       string      `json:"level,omitempty"`
	Duration    string      `json:"duration,omitempty"`
	Format      string      `json:"format,omitempty"`
	Image       string      `json:"image,omitempty"`
	Pricing     Pricing     `json:"pricing"`
	Features    []string    `json:"features"`
	CatalogContent
	Rating      float64   `json:"rating"`
	RatingCount int       `json:"rating_count"`
	Certificate bool      `json:"certificate"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TotalSessions counts sessions across every topic of the syllabus.
func (c *CatalogItem) TotalSessions() int {
	total := 0
	for _, t := range c.Topics {
		total += len(t.Sessions)
	}
	return total
}

// HasSession reports whether title names a session of the syllabus.
func (c *CatalogItem) HasSession(title string) bool {
	for _, t := range c.Topics {
		for _, s := range t.Sessions {
			if s.Title == title {
				return true
			}
		}
	}
	return false
}

func (c *CatalogItem) ApplyDefaults() {
	if c.Status == "" {
		c.Status = CatalogPublished
	}
	if c.Pricing.Currency == "" {
		c.Pricing.Currency = DefaultCurrency
	}
	if c.Features == nil {
		c.Features = []string{}
	}
	if c.Topics == nil {
		c.Topics = []Topic{}
	}
	if c.Instructors == nil {
		c.Instructors = []Instructor{}
	}
	if c.Testimonials == nil {
		c.Testimonials = []Testimonial{}
	}
	if c.FAQ == nil {
		c.FAQ = []FAQ{}
	}
}

type CatalogRepository interface {
	List(ctx context.Context, kind CatalogKind) ([]CatalogItem, error)
	GetBySlug(ctx context.Context, kind CatalogKind, slug string) (*CatalogItem, error)
	Upsert(ctx context.Context, item *CatalogItem) error
	Delete(ctx context.Context, kind CatalogKind, slug string) error
}

type CatalogUsecase interface {
	List(ctx context.Context, kind CatalogKind) ([]CatalogItem, error)
	Get(ctx context.Context, kind CatalogKind, slug string) (*CatalogItem, error)
	Upsert(ctx context.Context, item *CatalogItem) error
	Delete(ctx context.Context, kind CatalogKind, slug string) error
}
