package distcounter

// link is the membership hook embedded in every element of an ilist.
type link[E any] struct {
	prev, next *link[E]
	elem       *E
}

// ilist is an intrusive doubly linked list headed by a sentinel link.
// Elements carry their own link, so insertion and removal never allocate.
// The zero value is an empty list.
type ilist[E any] struct {
	root link[E]
	len  int
}

func (l *ilist[E]) lazyInit() {
	if l.root.next == nil {
		l.root.next = &l.root
		l.root.prev = &l.root
	}
}

// pushBack links n at the tail and binds it to e.
func (l *ilist[E]) pushBack(n *link[E], e *E) {
	l.lazyInit()
	n.elem = e
	n.prev = l.root.prev
	n.next = &l.root
	l.root.prev.next = n
	l.root.prev = n
	l.len++
}

// remove unlinks n. It reports false if n was not linked.
func (l *ilist[E]) remove(n *link[E]) bool {
	if n.next == nil {
		return false
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
	l.len--
	return true
}

func (l *ilist[E]) empty() bool {
	return l.len == 0
}

// do runs fn on every element, front to back.
func (l *ilist[E]) do(fn func(e *E)) {
	if l.root.next == nil {
		return
	}
	for n := l.root.next; n != &l.root; n = n.next {
		fn(n.elem)
	}
}
