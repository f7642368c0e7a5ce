package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kapu/higapro-site/internal/util"
)

// Kind classifies a talents-endpoint record.
type Kind string

const (
	KindTalent  Kind = "talent"
	KindManager Kind = "manager"
)

// CMS authors tag records with these substrings in the free-text type field.
var kindMarkers = map[Kind]string{
	KindTalent:  "タレント",
	KindManager: "マネージャー",
}

// ParseKind accepts the navigation values "talent" and "manager".
func ParseKind(value string) (Kind, bool) {
	switch Kind(value) {
	case KindTalent, KindManager:
		return Kind(value), true
	default:
		return "", false
	}
}

// PathSegment is the URL prefix of the detail route for this kind.
func (k Kind) PathSegment() string {
	if k == KindManager {
		return "managers"
	}
	return "talents"
}

type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Person is a record of the talents endpoint: a talent or a manager.
type Person struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Furigana   string    `json:"furigana"`
	Debut      time.Time `json:"-"`
	Images     []Image   `json:"images"`
	Type       string    `json:"type"`
	Profile    string    `json:"profile,omitempty"`
	IriamURL   string    `json:"iriamUrl,omitempty"`
	TwitterURL string    `json:"twitterUrl,omitempty"`
	Rank       *int      `json:"rank,omitempty"`
}

type personJSON Person

type personWire struct {
	personJSON
	Debut string `json:"debut,omitempty"`
}

// UnmarshalJSON parses debut strictly. An absent debut (field restricted away by the
// query) leaves the zero time; a present but invalid one is an error.
func (p *Person) UnmarshalJSON(data []byte) error {
	var wire personWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*p = Person(wire.personJSON)
	if wire.Debut == "" {
		return nil
	}

	debut, err := util.ParseISODate(wire.Debut)
	if err != nil {
		return fmt.Errorf("person %s: %w", wire.ID, err)
	}
	p.Debut = debut
	return nil
}

func (p Person) MarshalJSON() ([]byte, error) {
	wire := personWire{personJSON: personJSON(p)}
	if !p.Debut.IsZero() {
		wire.Debut = p.Debut.UTC().Format(time.RFC3339)
	}
	return json.Marshal(wire)
}

func (p Person) HasKind(kind Kind) bool {
	marker, ok := kindMarkers[kind]
	if !ok {
		return false
	}
	return strings.Contains(p.Type, marker)
}

// FirstImageURL returns the URL of the first image, if any.
func (p Person) FirstImageURL() (string, bool) {
	if len(p.Images) == 0 {
		return "", false
	}
	return p.Images[0].URL, true
}

// FilterKind keeps the people tagged with kind, preserving order.
func FilterKind(people []Person, kind Kind) []Person {
	filtered := make([]Person, 0, len(people))
	for _, person := range people {
		if person.HasKind(kind) {
			filtered = append(filtered, person)
		}
	}
	return filtered
}

// People indexes a fetched roster by id.
type People struct {
	All  []Person
	byID map[string]int
}

func NewPeople(people []Person) *People {
	index := make(map[string]int, len(people))
	for i, person := range people {
		index[person.ID] = i
	}
	return &People{All: people, byID: index}
}

func (p *People) FindByID(id string) (Person, bool) {
	if p == nil {
		return Person{}, false
	}
	i, ok := p.byID[id]
	if !ok {
		return Person{}, false
	}
	return p.All[i], true
}
