// Package roster groups people into debut cohorts and selects the members shown
// for one cohort. Everything here is a pure function of its inputs.
package roster

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kapu/higapro-site/internal/constants"
	"github.com/kapu/higapro-site/internal/domain"
	"github.com/kapu/higapro-site/internal/util"
)

var (
	ErrEmptyRoster    = errors.New("roster: no cohorts in an empty roster")
	ErrPersonNotFound = errors.New("roster: person not found")
)

// Selection is the cohort requested by navigation. Kind names the roster the
// selection was made on; it is empty when no type parameter was given.
type Selection struct {
	Debut    string
	HasDebut bool
	Kind     domain.Kind
}

// Card is the display projection of a roster member.
type Card struct {
	ID       string
	Name     string
	Furigana string
	ImageURL string
}

// HasImage is false when ImageURL is the placeholder.
func (c Card) HasImage() bool {
	return c.ImageURL != constants.NoImagePath
}

type Cohort struct {
	Key    string
	Label  string
	Active bool
}

type Roster struct {
	Kind     domain.Kind
	Cohorts  []Cohort
	Selected string
	Members  []Card
}

// CohortKey formats a debut date as its YYYY-MM bucket in Japan time.
func CohortKey(debut time.Time) string {
	return util.FormatJST(debut, "2006-01")
}

// CohortLabel renders "2023-04" as "2023.4".
func CohortLabel(key string) string {
	parts := strings.Split(key, "-")
	for i, part := range parts {
		if n, err := strconv.Atoi(part); err == nil {
			parts[i] = strconv.Itoa(n)
		}
	}
	return strings.Join(parts, ".")
}

// Cohorts returns the distinct cohort keys of people in calendar order.
func Cohorts(people []domain.Person) []string {
	seen := make(map[string]struct{}, len(people))
	keys := make([]string, 0, len(people))
	for _, person := range people {
		key := CohortKey(person.Debut)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	// Zero-padded YYYY-MM sorts lexically in calendar order.
	sort.Strings(keys)
	return keys
}

// Resolve picks the effective cohort of a roster of the given kind. The selection
// only applies when it was made on this roster; otherwise the earliest cohort is
// used. A selected key is not checked against cohorts.
func Resolve(cohorts []string, kind domain.Kind, sel Selection) (string, error) {
	if sel.HasDebut && sel.Kind == kind {
		return sel.Debut, nil
	}
	if len(cohorts) == 0 {
		return "", ErrEmptyRoster
	}
	return cohorts[0], nil
}

// Members returns the cards of people in cohort, ordered by furigana. People
// sharing a furigana keep their input order.
func Members(people []domain.Person, cohort string) []Card {
	members := make([]domain.Person, 0, len(people))
	for _, person := range people {
		if CohortKey(person.Debut) == cohort {
			members = append(members, person)
		}
	}

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Furigana < members[j].Furigana
	})

	cards := make([]Card, len(members))
	for i, person := range members {
		cards[i] = Project(person)
	}
	return cards
}

// Project maps a person to its card, falling back to the placeholder image.
func Project(person domain.Person) Card {
	imageURL, ok := person.FirstImageURL()
	if !ok || imageURL == "" {
		imageURL = constants.NoImagePath
	}
	return Card{
		ID:       person.ID,
		Name:     person.Name,
		Furigana: person.Furigana,
		ImageURL: imageURL,
	}
}

// Build runs the listing pipeline for one roster.
func Build(people []domain.Person, kind domain.Kind, sel Selection) (*Roster, error) {
	cohorts := Cohorts(people)
	selected, err := Resolve(cohorts, kind, sel)
	if err != nil {
		return nil, err
	}
	return assemble(people, kind, cohorts, selected), nil
}

// BuildAround runs the pipeline for the related rail of a detail page: an explicit
// debut selection wins regardless of kind, otherwise the viewed person's cohort.
func BuildAround(people []domain.Person, kind domain.Kind, personID string, sel Selection) (*Roster, error) {
	cohorts := Cohorts(people)

	selected := sel.Debut
	if !sel.HasDebut {
		person, ok := domain.NewPeople(people).FindByID(personID)
		if !ok {
			return nil, ErrPersonNotFound
		}
		selected = CohortKey(person.Debut)
	}

	return assemble(people, kind, cohorts, selected), nil
}

func assemble(people []domain.Person, kind domain.Kind, cohorts []string, selected string) *Roster {
	entries := make([]Cohort, len(cohorts))
	for i, key := range cohorts {
		entries[i] = Cohort{
			Key:    key,
			Label:  CohortLabel(key),
			Active: key == selected,
		}
	}

	return &Roster{
		Kind:     kind,
		Cohorts:  entries,
		Selected: selected,
		Members:  Members(people, selected),
	}
}
