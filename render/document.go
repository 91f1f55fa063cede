package render

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

var (
	ErrNoPoster      = errors.New("no poster image found")
	ErrNoTemplate    = errors.New("no tile template image found")
	ErrNoPhoto       = errors.New("tile has no photo")
	ErrPhotoNotFound = errors.New("photo not found")
	ErrLogoNotFound  = errors.New("logo not found")
)

// Step names the drawing step an Issue was absorbed in
type Step string

const (
	StepPoster   Step = "poster"
	StepTemplate Step = "template"
	StepPhoto    Step = "photo"
	StepLogo     Step = "logo"
)

// Issue is a failure absorbed while drawing. The page was still completed
// using the fallback for that step.
type Issue struct {
	Page int
	Step Step
	Ref  string
	Err  error
}

func (i Issue) Error() string {
	if i.Ref == "" {
		return fmt.Sprintf("page %d %s: %v", i.Page, i.Step, i.Err)
	}
	return fmt.Sprintf("page %d %s %s: %v", i.Page, i.Step, i.Ref, i.Err)
}

func (i Issue) Unwrap() error { return i.Err }

// Document is a finalized PDF
type Document struct {
	Data   []byte
	Pages  int
	Issues []Issue
}

// IssuesFor returns the issues recorded for step
func (d *Document) IssuesFor(step Step) []Issue {
	return lo.Filter(d.Issues, func(issue Issue, _ int) bool {
		return issue.Step == step
	})
}
