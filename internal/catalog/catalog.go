// Package catalog holds the static entity registries used to resolve and
// validate action parameters: navigable pages, bookable tutors, joinable
// study groups, and available quizzes. The catalog is immutable for the
// lifetime of the process and sourced from static configuration, never from
// user input.
package catalog

import "strings"

// Page is a navigable frontend route.
type Page struct {
	Title string `json:"title"`
	Route string `json:"route"`
}

// Tutor is a bookable peer tutor.
type Tutor struct {
	Name     string   `json:"name"`
	Subjects []string `json:"subjects"`
	Price    string   `json:"price"`
	Image    string   `json:"image"`
}

// StudyGroup is a joinable study group.
type StudyGroup struct {
	Title    string `json:"title"`
	Schedule string `json:"schedule"`
}

// Quiz is an available practice quiz.
type Quiz struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// Catalog bundles the four registries.
type Catalog struct {
	Pages       []Page       `json:"pages"`
	Tutors      []Tutor      `json:"tutors"`
	StudyGroups []StudyGroup `json:"study_groups"`
	Quizzes     []Quiz       `json:"quizzes"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Pages: []Page{
			{Title: "Home", Route: "/"},
			{Title: "About", Route: "/about"},
			{Title: "Resources", Route: "/resources"},
			{Title: "Dashboard", Route: "/dashboard"},
			{Title: "Schedule", Route: "/schedule"},
			{Title: "Tutors", Route: "/tutors"},
			{Title: "Community", Route: "/community"},
			{Title: "Study Groups", Route: "/study-groups"},
			{Title: "Support", Route: "/support"},
			{Title: "Sign In", Route: "/auth"},
		},
		Tutors: []Tutor{
			{Name: "Sarah Johnson", Subjects: []string{"Algebra", "Geometry"}, Price: "$15/hr", Image: "/images/tutors/sarah.jpg"},
			{Name: "Marcus Lee", Subjects: []string{"Calculus", "Precalculus"}, Price: "$18/hr", Image: "/images/tutors/marcus.jpg"},
			{Name: "Priya Patel", Subjects: []string{"Statistics", "Algebra"}, Price: "$16/hr", Image: "/images/tutors/priya.jpg"},
			{Name: "Diego Ramirez", Subjects: []string{"Trigonometry", "Geometry"}, Price: "$14/hr", Image: "/images/tutors/diego.jpg"},
		},
		StudyGroups: []StudyGroup{
			{Title: "Calculus Crew", Schedule: "Tuesdays 5 PM"},
			{Title: "Algebra Allies", Schedule: "Wednesdays 4 PM"},
			{Title: "Geometry Gang", Schedule: "Thursdays 6 PM"},
			{Title: "Stats Squad", Schedule: "Mondays 5 PM"},
		},
		Quizzes: []Quiz{
			{Title: "Algebra Basics", Slug: "algebra-basics"},
			{Title: "Geometry Essentials", Slug: "geometry-essentials"},
			{Title: "Calculus Warm-Up", Slug: "calculus-warmup"},
			{Title: "Statistics Starter", Slug: "statistics-starter"},
		},
	}
}

// ValidRoute reports whether route is a member of the static page allow-list.
// Navigation targets outside this set are rejected to prevent open redirects
// to arbitrary strings returned by the model service.
func (c *Catalog) ValidRoute(route string) bool {
	for _, p := range c.Pages {
		if p.Route == route {
			return true
		}
	}
	return false
}

// QuizBySlug returns the quiz with the given slug, or false when the slug is
// not in the catalog.
func (c *Catalog) QuizBySlug(slug string) (Quiz, bool) {
	for _, q := range c.Quizzes {
		if strings.EqualFold(q.Slug, slug) {
			return q, true
		}
	}
	return Quiz{}, false
}

// GroupByTitle returns the study group with the given title,
// case-insensitively.
func (c *Catalog) GroupByTitle(title string) (StudyGroup, bool) {
	for _, g := range c.StudyGroups {
		if strings.EqualFold(g.Title, title) {
			return g, true
		}
	}
	return StudyGroup{}, false
}
