// Package seed loads the sample catalog into an empty or existing database.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sakif/theme-store/internal/model"
)

// Store is what seeding needs from the storage layer. *sqlite.DB satisfies it.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
	Reset(ctx context.Context) error
	CreateTheme(ctx context.Context, theme *model.Theme) error
	CreateUser(ctx context.Context, user *model.User) error
	CreateReview(ctx context.Context, review *model.Review) error
}

// Hasher hashes the optional admin password.
type Hasher interface {
	Hash(plaintext string) (string, error)
}

// Options controls the optional admin account and sample reviews.
type Options struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// SampleReviews adds password-less reviewer accounts and a few reviews
	// per theme, so theme detail pages have something to show.
	SampleReviews bool
}

// Result reports what was written.
type Result struct {
	Themes  int
	Reviews int
	Admin   *model.User
}

// Run wipes every table and loads the sample themes. It is all-or-nothing:
// a failure leaves the database as it was.
//
// Themes are created one minute apart in list order, so the last one is the
// newest.
func Run(ctx context.Context, store Store, hasher Hasher, opts Options, logger *slog.Logger) (*Result, error) {
	if (opts.AdminEmail == "") != (opts.AdminPassword == "") {
		return nil, fmt.Errorf("seed: admin email and password must be given together")
	}

	var res Result
	err := store.InTx(ctx, func(ctx context.Context) error {
		if err := store.Reset(ctx); err != nil {
			return err
		}

		base := time.Now().UTC().Add(-time.Duration(len(catalog)) * time.Minute)
		themes := make([]*model.Theme, 0, len(catalog))
		for i, t := range catalog {
			theme := t.theme()
			theme.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			if err := store.CreateTheme(ctx, theme); err != nil {
				return fmt.Errorf("seed: creating theme %q: %w", theme.Name, err)
			}
			themes = append(themes, theme)
			res.Themes++
		}

		if opts.SampleReviews {
			n, err := createReviews(ctx, store, themes, base)
			if err != nil {
				return err
			}
			res.Reviews = n
		}

		if opts.AdminEmail == "" {
			return nil
		}

		hash, err := hasher.Hash(opts.AdminPassword)
		if err != nil {
			return fmt.Errorf("seed: hashing admin password: %w", err)
		}
		name := opts.AdminName
		if name == "" {
			name = "Admin"
		}
		admin := &model.User{
			Name:         name,
			Email:        strings.ToLower(strings.TrimSpace(opts.AdminEmail)),
			PasswordHash: hash,
			Role:         model.RoleAdmin,
		}
		if err := store.CreateUser(ctx, admin); err != nil {
			return fmt.Errorf("seed: creating admin: %w", err)
		}
		res.Admin = admin
		return nil
	})
	if err != nil {
		return nil, err
	}

	attrs := []any{slog.Int("themes", res.Themes), slog.Int("reviews", res.Reviews)}
	if res.Admin != nil {
		attrs = append(attrs, slog.String("admin", res.Admin.Email))
	}
	logger.Info("database seeded", attrs...)

	return &res, nil
}

// createReviews adds the sample reviewers and gives every theme one review
// from each, the second an hour after the first.
func createReviews(ctx context.Context, store Store, themes []*model.Theme, base time.Time) (int, error) {
	authors := make([]*model.User, 0, len(reviewers))
	for _, r := range reviewers {
		u := &model.User{Name: r.name, Email: r.email, Image: r.image}
		if err := store.CreateUser(ctx, u); err != nil {
			return 0, fmt.Errorf("seed: creating reviewer %s: %w", r.email, err)
		}
		authors = append(authors, u)
	}

	n := 0
	for i, theme := range themes {
		for j, author := range authors {
			sample := reviewTexts[(i+j)%len(reviewTexts)]
			review := &model.Review{
				UserID:    author.ID,
				ThemeID:   theme.ID,
				Rating:    sample.rating,
				Comment:   sample.comment,
				CreatedAt: base.Add(time.Duration(i)*time.Minute + time.Duration(j)*time.Hour),
			}
			if err := store.CreateReview(ctx, review); err != nil {
				return 0, fmt.Errorf("seed: reviewing %q: %w", theme.Name, err)
			}
			n++
		}
	}
	return n, nil
}

var reviewers = []struct{ name, email, image string }{
	{"Maya Chen", "maya.reviewer@example.com", "https://i.pravatar.cc/150?u=maya"},
	{"Tom Okafor", "tom.reviewer@example.com", "https://i.pravatar.cc/150?u=tom"},
}

var reviewTexts = []struct {
	rating  int
	comment string
}{
	{5, "Set up in an afternoon and the layout looks great on mobile."},
	{4, "Solid theme. The docs could cover customization in more depth."},
	{5, "Clean code and fast pages. Exactly what we needed."},
	{4, "Good value for the price, a couple of sections needed tweaks."},
}

type sampleTheme struct {
	name, description, longDescription string
	price                              string
	category                           string
	image                              string
	features                           []string
	screenshots                        []string
	demoURL                            string
	rating                             float64
	sales                              int
}

func (s sampleTheme) theme() *model.Theme {
	return &model.Theme{
		Name:            s.name,
		Description:     s.description,
		LongDescription: s.longDescription,
		Price:           decimal.RequireFromString(s.price),
		Category:        s.category,
		Image:           s.image,
		Features:        append([]string(nil), s.features...),
		Screenshots:     append([]string(nil), s.screenshots...),
		DemoURL:         s.demoURL,
		Rating:          s.rating,
		Sales:           s.sales,
	}
}

func unsplash(id string) string {
	return "https://images.unsplash.com/photo-" + id + "?q=80&w=1000&auto=format&fit=crop"
}

var catalog = []sampleTheme{
	{
		name:            "Modern Portfolio",
		description:     "A clean and modern portfolio theme perfect for showcasing your work.",
		longDescription: "This theme is designed for creative professionals who want to showcase their work in a clean and modern way. Features include a responsive gallery, smooth animations, and customizable sections.",
		price:           "49.99",
		category:        "Portfolio",
		image:           unsplash("1522542550221-31fd19575a2d"),
		features:        []string{"Responsive Design", "Portfolio Gallery", "Blog Section", "Contact Form", "SEO Optimized"},
		screenshots: []string{
			unsplash("1522542550221-31fd19575a2d"),
			unsplash("1522199755839-a2bacb67c546"),
			unsplash("1522199755839-a2bacb67c546"),
		},
		demoURL: "https://demo.example.com/modern-portfolio",
		rating:  4.5,
		sales:   150,
	},
	{
		name:            "E-commerce Pro",
		description:     "A full-featured e-commerce theme with everything you need to start selling online.",
		longDescription: "Built for online stores, this theme includes product galleries, shopping cart, checkout process, and inventory management. Perfect for any size of online store.",
		price:           "79.99",
		category:        "E-commerce",
		image:           unsplash("1519389950473-47ba0277781c"),
		features:        []string{"Product Gallery", "Shopping Cart", "Secure Checkout", "Inventory Management", "Mobile Responsive"},
		screenshots: []string{
			unsplash("1519389950473-47ba0277781c"),
			unsplash("1460925895917-afdab827c52f"),
			unsplash("1460925895917-afdab827c52f"),
		},
		demoURL: "https://demo.example.com/ecommerce-pro",
		rating:  4.8,
		sales:   280,
	},
	{
		name:            "Business Elite",
		description:     "Professional theme for corporate websites with a modern and trustworthy design.",
		longDescription: "Perfect for businesses looking to establish a strong online presence. Includes team sections, service showcases, and testimonial features.",
		price:           "59.99",
		category:        "Corporate",
		image:           unsplash("1497215728101-856f4ea42174"),
		features:        []string{"Team Section", "Service Showcase", "Testimonials", "Contact Forms", "Newsletter Integration"},
		screenshots: []string{
			unsplash("1497215728101-856f4ea42174"),
			unsplash("1486406146926-c627a92ad1ab"),
			unsplash("1486406146926-c627a92ad1ab"),
		},
		demoURL: "https://demo.example.com/business-elite",
		rating:  4.6,
		sales:   200,
	},
	{
		name:            "Restaurant Deluxe",
		description:     "Premium theme for restaurants, cafes, and food businesses.",
		longDescription: "Showcase your culinary delights with style. Includes menu layouts, reservation system, and food gallery features.",
		price:           "69.99",
		category:        "Restaurant",
		image:           unsplash("1517248135467-4c7edcad34c4"),
		features:        []string{"Menu Management", "Reservation System", "Food Gallery", "Online Ordering", "Events Calendar"},
		screenshots: []string{
			unsplash("1517248135467-4c7edcad34c4"),
			unsplash("1424847651672-bf20a4b0982b"),
			unsplash("1515669097368-22e68427d265"),
		},
		demoURL: "https://demo.example.com/restaurant-deluxe",
		rating:  4.7,
		sales:   175,
	},
	{
		name:            "Creative Blog",
		description:     "Modern and minimalist blog theme for creative writers.",
		longDescription: "Perfect for bloggers who want to focus on content. Features clean typography and excellent readability.",
		price:           "44.99",
		category:        "Blog",
		image:           unsplash("1499750310107-5fef28a66643"),
		features:        []string{"Multiple Blog Layouts", "Reading Time Estimation", "Social Sharing", "Newsletter Integration", "Dark Mode Support"},
		screenshots: []string{
			unsplash("1499750310107-5fef28a66643"),
			unsplash("1488190211105-8b0e65b80b4e"),
			unsplash("1455390582262-044cdead277a"),
		},
		demoURL: "https://demo.example.com/creative-blog",
		rating:  4.4,
		sales:   220,
	},
	{
		name:            "Real Estate Pro",
		description:     "Professional theme for real estate agencies and property listings.",
		longDescription: "Showcase your properties with advanced search features and virtual tour integration.",
		price:           "89.99",
		category:        "Real Estate",
		image:           unsplash("1560518883-ce09059eeffa"),
		features:        []string{"Property Listings", "Advanced Search", "Virtual Tours", "Agent Profiles", "Mortgage Calculator"},
		screenshots: []string{
			unsplash("1560518883-ce09059eeffa"),
			unsplash("1431540015161-0bf868a2d407"),
			unsplash("1523217582562-09d0def993a6"),
		},
		demoURL: "https://demo.example.com/real-estate-pro",
		rating:  4.9,
		sales:   165,
	},
}
