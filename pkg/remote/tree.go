package remote

// links tracks the parent/child edges a stream has seen, so a detached
// subtree can be released as a whole. Child order is not kept.
type links[K comparable] struct {
	parent map[K]K
	kids   map[K]map[K]struct{}
}

func newLinks[K comparable]() links[K] {
	return links[K]{
		parent: make(map[K]K),
		kids:   make(map[K]map[K]struct{}),
	}
}

// attach records child under parent, unlinking it from any previous parent.
func (l *links[K]) attach(parent, child K) {
	l.unlink(child)
	set := l.kids[parent]
	if set == nil {
		set = make(map[K]struct{})
		l.kids[parent] = set
	}
	set[child] = struct{}{}
	l.parent[child] = parent
}

func (l *links[K]) unlink(child K) {
	p, ok := l.parent[child]
	if !ok {
		return
	}
	delete(l.parent, child)
	if set := l.kids[p]; set != nil {
		delete(set, child)
		if len(set) == 0 {
			delete(l.kids, p)
		}
	}
}

// release unlinks n and calls drop for n and each of its descendants.
func (l *links[K]) release(n K, drop func(K)) {
	l.unlink(n)
	l.releaseChildren(n, drop)
	drop(n)
}

// releaseChildren calls drop for every descendant of n. n stays linked.
func (l *links[K]) releaseChildren(n K, drop func(K)) {
	set := l.kids[n]
	delete(l.kids, n)
	for c := range set {
		delete(l.parent, c)
		l.releaseChildren(c, drop)
		drop(c)
	}
}
