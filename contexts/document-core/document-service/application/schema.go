package application

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	domainerrors "papyrus/contexts/document-core/document-service/domain/errors"
	"papyrus/contexts/document-core/document-service/ports"
	"papyrus/internal/shared/jsonptr"
)

const refKey = "$ref"

// SchemaResolver loads schemas by id and inlines every $ref so the
// result is self-contained and usable for validation. Resolved schemas
// are cached per id; the cache hands out deep copies only, so callers
// cannot corrupt it.
type SchemaResolver struct {
	fetcher ports.SchemaFetcher
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]map[string]any
}

func NewSchemaResolver(fetcher ports.SchemaFetcher, logger *slog.Logger) *SchemaResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchemaResolver{
		fetcher: fetcher,
		logger:  logger,
		cache:   make(map[string]map[string]any),
	}
}

// Load returns the fully resolved schema, from cache when available.
func (r *SchemaResolver) Load(ctx context.Context, schemaID string) (map[string]any, error) {
	r.mu.Lock()
	cached, ok := r.cache[schemaID]
	r.mu.Unlock()
	if ok {
		return jsonptr.Clone(cached).(map[string]any), nil
	}

	raw, err := r.fetch(ctx, schemaID)
	if err != nil {
		return nil, err
	}

	resolved := jsonptr.Clone(raw).(map[string]any)
	visited := map[string]struct{}{schemaID: {}}
	if err := r.resolveRefs(ctx, resolved, schemaID, visited); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[schemaID] = resolved
	r.mu.Unlock()

	r.logger.Debug("schema resolved",
		"event", "schema_resolved",
		"module", "document-core/document-service",
		"layer", "application",
		"schema_id", schemaID,
	)
	return jsonptr.Clone(resolved).(map[string]any), nil
}

// LoadRaw returns a copy of the stored schema without resolving refs.
func (r *SchemaResolver) LoadRaw(ctx context.Context, schemaID string) (map[string]any, error) {
	raw, err := r.fetch(ctx, schemaID)
	if err != nil {
		return nil, err
	}
	return jsonptr.Clone(raw).(map[string]any), nil
}

func (r *SchemaResolver) fetch(ctx context.Context, schemaID string) (map[string]any, error) {
	raw, err := r.fetcher.ReadDocument(ctx, schemaID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, &domainerrors.SchemaNotFoundError{SchemaID: schemaID}
		}
		return nil, err
	}
	return raw, nil
}

// resolveRefs rewrites node in place. Local "#/" refs navigate the
// original base schema (fetched fresh, never the partially rewritten
// copy). Cross-schema refs fetch the target, which becomes the new base
// for everything inlined beneath it; only cross-schema refs grow the
// visited set.
func (r *SchemaResolver) resolveRefs(ctx context.Context, node any, baseID string, visited map[string]struct{}) error {
	switch n := node.(type) {
	case map[string]any:
		ref, isRef := n[refKey].(string)
		if !isRef {
			for _, value := range n {
				if err := r.resolveRefs(ctx, value, baseID, visited); err != nil {
					return err
				}
			}
			return nil
		}

		if strings.HasPrefix(ref, "#/") {
			base, err := r.fetch(ctx, baseID)
			if err != nil {
				return err
			}
			target, err := navigateRefPath(base, strings.Split(ref[2:], "/"))
			if err != nil {
				return err
			}
			replaceNode(n, target)
			return r.resolveRefs(ctx, n, baseID, visited)
		}

		if _, seen := visited[ref]; seen {
			return domainerrors.NewCircularReference(ref)
		}
		next := make(map[string]struct{}, len(visited)+1)
		for id := range visited {
			next[id] = struct{}{}
		}
		next[ref] = struct{}{}

		target, err := r.fetch(ctx, ref)
		if err != nil {
			return err
		}
		replaceNode(n, target)
		return r.resolveRefs(ctx, n, ref, next)
	case []any:
		for _, item := range n {
			if err := r.resolveRefs(ctx, item, baseID, visited); err != nil {
				return err
			}
		}
	}
	return nil
}

// replaceNode swaps the contents of a ref marker for a deep copy of its
// referent, keeping the enclosing container's reference to the map.
func replaceNode(node map[string]any, referent map[string]any) {
	for key := range node {
		delete(node, key)
	}
	for key, value := range referent {
		node[key] = jsonptr.Clone(value)
	}
}

func navigateRefPath(base map[string]any, path []string) (map[string]any, error) {
	var current any = base
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, refPathError(path)
		}
		current, ok = obj[key]
		if !ok {
			return nil, refPathError(path)
		}
	}
	referent, ok := current.(map[string]any)
	if !ok {
		return nil, refPathError(path)
	}
	return referent, nil
}

func refPathError(path []string) error {
	return &domainerrors.ValidationFailedError{Violations: []domainerrors.Violation{{
		Message: "cannot resolve reference path: " + strings.Join(path, "/"),
		Path:    []string{},
		Rule:    "ref_resolution",
	}}}
}

// Dependencies scans a schema without resolving it and returns the
// distinct cross-schema ids it references at any depth. Local "#/" refs
// are ignored.
func (r *SchemaResolver) Dependencies(ctx context.Context, schemaID string) ([]string, error) {
	raw, err := r.fetch(ctx, schemaID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	collectDependencies(raw, seen)
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func collectDependencies(node any, out map[string]struct{}) {
	switch n := node.(type) {
	case map[string]any:
		if ref, ok := n[refKey].(string); ok {
			if !strings.HasPrefix(ref, "#/") {
				out[ref] = struct{}{}
			}
			return
		}
		for _, value := range n {
			collectDependencies(value, out)
		}
	case []any:
		for _, item := range n {
			collectDependencies(item, out)
		}
	}
}

// RequiredFields reads the top-level required list of a resolved schema.
func RequiredFields(schema map[string]any) []string {
	raw, ok := schema["required"].([]any)
	if !ok {
		return nil
	}
	fields := make([]string, 0, len(raw))
	for _, item := range raw {
		if name, ok := item.(string); ok {
			fields = append(fields, name)
		}
	}
	return fields
}

// DefaultValues maps each top-level property with a declared default to
// that default.
func DefaultValues(schema map[string]any) map[string]any {
	defaults := make(map[string]any)
	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		return defaults
	}
	for name, raw := range properties {
		property, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if value, has := property["default"]; has {
			defaults[name] = value
		}
	}
	return defaults
}

// ClearCache empties the resolved-schema cache.
func (r *SchemaResolver) ClearCache() {
	r.mu.Lock()
	r.cache = make(map[string]map[string]any)
	r.mu.Unlock()
}
