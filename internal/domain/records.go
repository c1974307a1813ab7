package domain

import (
	"fmt"
	"time"
)

// Booking is a tutoring session booked for a user.
type Booking struct {
	ID        string    `json:"id"`
	TutorName string    `json:"tutor_name"`
	Subject   string    `json:"subject"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Duration  string    `json:"duration"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ScheduleItem is a custom entry on a user's schedule.
type ScheduleItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// Goal is a study goal with progress tracked out of a target count.
type Goal struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Target    int       `json:"target"`
	Progress  int       `json:"progress"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// ProgressLabel renders the "progress/target" display label.
func ProgressLabel(progress, target int) string {
	return fmt.Sprintf("%d/%d", progress, target)
}

// Post is a forum post.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Tag       string    `json:"tag"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}
