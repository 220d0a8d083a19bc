package jsonschema

// Entry is a named registry schema in declaration-ready order.
type Entry struct {
	Name   string
	Schema Node
}

// Sorted returns the registry entries ordered so that a schema's resolvable
// dependencies appear before it. The sort never fails: a cycle simply stops
// recursion along that edge, so the cycle's first-visited member is emitted
// in place and the remaining members follow. Dangling references are ignored
// for ordering since they cannot affect declaration order. Root iteration is
// declaration order, keeping the output deterministic.
func (r *Registry) Sorted() []Entry {
	out := make([]Entry, 0, r.Len())
	visited := make(map[string]bool, r.Len())
	visiting := make(map[string]bool)

	var visit func(name string, node Node)
	visit = func(name string, node Node) {
		if visited[name] {
			return
		}

		visiting[name] = true
		for _, dep := range dependencies(node) {
			if visiting[dep] {
				continue
			}
			if depNode, ok := r.Get(dep); ok {
				visit(dep, depNode)
			}
		}
		delete(visiting, name)

		visited[name] = true
		out = append(out, Entry{Name: name, Schema: node})
	}

	for name, node := range r.All() {
		visit(name, node)
	}

	return out
}

// SortedBatches groups the sorted entries into dependency levels: every
// acyclic dependency of an entry lives in a strictly earlier batch. Entries
// within a batch have no ordering constraints between them, so they may be
// compiled concurrently.
func (r *Registry) SortedBatches() [][]Entry {
	levels := make(map[string]int, r.Len())
	visiting := make(map[string]bool)

	var level func(name string, node Node) int
	level = func(name string, node Node) int {
		if l, ok := levels[name]; ok {
			return l
		}

		visiting[name] = true
		deepest := 0
		for _, dep := range dependencies(node) {
			if visiting[dep] {
				continue
			}
			depNode, ok := r.Get(dep)
			if !ok {
				continue
			}
			if l := level(dep, depNode); l > deepest {
				deepest = l
			}
		}
		delete(visiting, name)

		levels[name] = deepest + 1
		return deepest + 1
	}

	maxLevel := 0
	for name, node := range r.All() {
		if l := level(name, node); l > maxLevel {
			maxLevel = l
		}
	}

	batches := make([][]Entry, maxLevel)
	for _, entry := range r.Sorted() {
		l := levels[entry.Name] - 1
		batches[l] = append(batches[l], entry)
	}

	return batches
}

// dependencies collects every reference name reachable from node without
// crossing into other registry entries, deduplicated in first-encounter
// order. Malformed reference strings are skipped here; resolution reports
// them.
func dependencies(node Node) []string {
	var deps []string
	seen := make(map[string]bool)

	var walk func(n Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *Reference:
			name, err := RefName(n.Ref)
			if err != nil || seen[name] {
				return
			}
			seen[name] = true
			deps = append(deps, name)
		case *Object:
			for _, prop := range n.Properties.All() {
				walk(prop.Schema)
			}
			if n.AdditionalSchema != nil {
				walk(n.AdditionalSchema)
			}
		case *Array:
			if n.Items != nil {
				walk(n.Items)
			}
		case *Combinator:
			for _, member := range n.Members {
				walk(member)
			}
		case *Nullable:
			if n.Inner != nil {
				walk(n.Inner)
			}
		}
	}

	walk(node)
	return deps
}
