package reviews

// identityMap tracks ticker renames as a union-find over symbols: renaming
// old to new makes new the representative of old. Resolving follows the
// chain with path compression, so repeated lookups are cheap even for
// securities renamed several times.
type identityMap struct {
	parent map[string]string
}

func newIdentityMap() *identityMap {
	return &identityMap{parent: make(map[string]string)}
}

// rename records that 'old' is now known as 'new'. Self-renames are ignored.
func (m *identityMap) rename(old, new string) {
	if old == "" || new == "" || old == new {
		return
	}
	m.parent[old] = new
}

// resolve returns the current symbol for s. A visited set guards against
// rename cycles in bad data; the walk stops at the first repeated symbol,
// which becomes the representative for every member of the cycle.
func (m *identityMap) resolve(s string) string {
	visited := map[string]bool{s: true}
	cur := s
	for {
		next, ok := m.parent[cur]
		if !ok || visited[next] {
			break
		}
		visited[next] = true
		cur = next
	}
	// a cycle would leave cur pointing back into the walk; drop the
	// closing link so later lookups all settle on cur.
	if next, ok := m.parent[cur]; ok && visited[next] {
		delete(m.parent, cur)
	}
	// path compression: point every symbol on the walk at the result.
	for sym := range visited {
		if sym != cur {
			m.parent[sym] = cur
		}
	}
	return cur
}

// renamed reports whether s resolves to a different symbol.
func (m *identityMap) renamed(s string) bool { return m.resolve(s) != s }
