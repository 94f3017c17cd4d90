package inherit

import (
	"time"

	"github.com/clubworks/hookconf/pkg/log"
	"github.com/clubworks/hookconf/pkg/types"
)

// Engine resolves effective configurations through environment inheritance.
type Engine struct {
	hierarchies map[string]*Hierarchy
	logger      log.Logger
}

// NewEngine creates an inheritance engine over the given hierarchies.
func NewEngine(hierarchies []Hierarchy, logger log.Logger) *Engine {
	byEnv := make(map[string]*Hierarchy, len(hierarchies))
	for i := range hierarchies {
		h := hierarchies[i]
		byEnv[h.Environment] = &h
	}
	return &Engine{
		hierarchies: byEnv,
		logger:      logger.WithComponent("inheritance"),
	}
}

// Register adds or replaces the hierarchy of one environment.
func (e *Engine) Register(h Hierarchy) {
	e.hierarchies[h.Environment] = &h
}

// Chain builds the inheritance chain for an environment via depth-first
// traversal of inheritsFrom: root ancestors first, the target environment
// last. A node revisited during traversal is a circular-inheritance error.
func (e *Engine) Chain(environment string) ([]string, error) {
	var chain []string
	visited := make(map[string]bool)

	var walk func(env string) error
	walk = func(env string) error {
		if visited[env] {
			return types.NewInheritanceError(environment,
				"circular inheritance involving %q", env)
		}
		visited[env] = true

		if h, ok := e.hierarchies[env]; ok {
			for _, parent := range h.InheritsFrom {
				if err := walk(parent); err != nil {
					return err
				}
			}
		}
		chain = append(chain, env)
		return nil
	}

	if err := walk(environment); err != nil {
		return nil, err
	}
	return chain, nil
}

// Resolve derives the configuration for an environment by applying the
// rules of every chain member in order, each environment's rules by
// ascending priority. Paths covered by an ignore rule anywhere in the chain
// are skipped entirely, which stops ancestor overrides from propagating.
func (e *Engine) Resolve(base types.Document, environment string) (types.Document, error) {
	chain, err := e.Chain(environment)
	if err != nil {
		return nil, err
	}

	ignored := make(map[string]bool)
	for _, env := range chain {
		h, ok := e.hierarchies[env]
		if !ok {
			continue
		}
		for _, rule := range h.Rules {
			if rule.Kind == RuleIgnore {
				ignored[rule.Path] = true
			}
		}
	}

	doc := types.CloneDocument(base)
	for _, env := range chain {
		h, ok := e.hierarchies[env]
		if !ok {
			continue
		}
		for _, rule := range h.sortedRules() {
			if rule.Kind == RuleIgnore || ignored[rule.Path] {
				continue
			}
			if err := applyRule(doc, rule); err != nil {
				return nil, types.NewInheritanceError(environment,
					"rule %q in %q: %v", rule.Path, env, err)
			}
		}
	}

	e.stampMetadata(doc, environment)

	e.logger.Debug("configuration resolved",
		log.Str("environment", environment),
		log.Int("chain", len(chain)))
	return doc, nil
}

// stampMetadata records the resolved environment on the document.
func (e *Engine) stampMetadata(doc types.Document, environment string) {
	meta, ok := doc["metadata"].(map[string]interface{})
	if !ok {
		meta = make(map[string]interface{})
		doc["metadata"] = meta
	}
	meta["environment"] = environment
	meta["updatedAt"] = time.Now().UTC().Format(time.RFC3339)
}
