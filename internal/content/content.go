// Package content holds the static portfolio data rendered by the marketing
// pages: site info, projects, work history, skills and the Q&A board.
package content

import (
	"sort"
	"time"
)

type SiteInfo struct {
	Name        string
	Description string
	Author      string
	Email       string
	URL         string
	GitHub      string
	LinkedIn    string
	Twitter     string
}

type Project struct {
	ID           string
	Title        string
	Description  string
	Image        string
	Technologies []string
	LiveURL      string
	GitHubURL    string
	Featured     bool
}

// Experience is one position. An empty EndDate means current.
type Experience struct {
	ID           string
	Company      string
	Position     string
	StartDate    string // YYYY-MM
	EndDate      string
	Description  string
	Technologies []string
}

type Education struct {
	ID        string
	School    string
	Degree    string
	StartDate string
	EndDate   string
}

type Certification struct {
	ID     string
	Name   string
	Issuer string
	Date   string
}

type SkillGroup struct {
	Category string
	Items    []string
}

type QAAnswer struct {
	ID        string
	PostID    string
	Content   string
	Author    string
	CreatedAt time.Time
}

type QAPost struct {
	ID        string
	Title     string
	Content   string
	Author    string
	CreatedAt time.Time
	UpdatedAt time.Time
	Answers   []QAAnswer
}

// Content is the full fixture set. Handlers read it and never modify it.
type Content struct {
	Site           SiteInfo
	Projects       []Project
	Experiences    []Experience
	Education      []Education
	Certifications []Certification
	Skills         []SkillGroup
	QnA            []QAPost
}

// Project looks a project up by id.
func (c *Content) Project(id string) (*Project, bool) {
	for i := range c.Projects {
		if c.Projects[i].ID == id {
			return &c.Projects[i], true
		}
	}
	return nil, false
}

// FeaturedProjects returns the projects flagged for the home page.
func (c *Content) FeaturedProjects() []Project {
	var out []Project
	for _, p := range c.Projects {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

func (c *Content) Question(id string) (*QAPost, bool) {
	for i := range c.QnA {
		if c.QnA[i].ID == id {
			return &c.QnA[i], true
		}
	}
	return nil, false
}

// Questions returns the Q&A posts newest first.
func (c *Content) Questions() []QAPost {
	out := make([]QAPost, len(c.QnA))
	copy(out, c.QnA)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
