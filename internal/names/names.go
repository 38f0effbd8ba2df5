// Package names supplies random "Name Color" display names for new sessions.
package names

import (
	"regexp"
	"sync"

	"github.com/brianvoe/gofakeit/v7"
)

// maxLength matches the display name limit enforced on set-username.
const maxLength = 32

const maxAttempts = 10

var word = regexp.MustCompile(`^[A-Za-z]+$`)

// Generator picks a first name and a color from gofakeit's dictionaries.
type Generator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

// New returns a randomly seeded generator.
func New() *Generator {
	return NewSeeded(0)
}

// NewSeeded returns a generator whose output is fixed by seed. A zero seed
// picks a random one.
func NewSeeded(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Generate returns a name such as "Alice Teal". Picks that would not survive
// display name normalization are redrawn.
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	for range maxAttempts {
		first, color := g.faker.FirstName(), g.faker.Color()
		if !word.MatchString(first) || !word.MatchString(color) {
			continue
		}
		if name := first + " " + color; len(name) <= maxLength {
			return name
		}
	}
	return "Guest"
}
