// Package library ships the built-in crews. Each crew is a ready-made
// team of role-prompted agents for a common deliverable; callers can
// run them directly or use them as starting points for crew files.
package library

import (
	"fmt"
	"sort"

	"crewforge/pkg/models"
)

// builders maps crew name to its constructor. Constructors return
// fresh values so callers can mutate them safely.
var builders = map[string]func() *models.Crew{
	"blog-writer":       blogWriter,
	"resume-tailor":     resumeTailor,
	"travel-planner":    travelPlanner,
	"event-planner":     eventPlanner,
	"customer-outreach": customerOutreach,
	"customer-support":  customerSupport,
}

// List returns all built-in crews sorted by name.
func List() []*models.Crew {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)

	crews := make([]*models.Crew, 0, len(names))
	for _, name := range names {
		crews = append(crews, builders[name]())
	}
	return crews
}

// Get returns the named built-in crew.
func Get(name string) (*models.Crew, error) {
	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("no built-in crew named %q (run 'crewforge crews' to list them)", name)
	}
	return build(), nil
}
