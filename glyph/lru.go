package glyph

// lruNode is a node in the recency list of cached runes.
type lruNode struct {
	r    rune
	prev *lruNode
	next *lruNode
}

// lruList orders cached runes by last use. Head is the most recently used,
// tail the least. Not safe for concurrent use.
type lruList struct {
	head *lruNode
	tail *lruNode
	len  int
}

// pushFront adds r as the most recently used rune.
func (l *lruList) pushFront(r rune) *lruNode {
	n := &lruNode{r: r, next: l.head}
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.len++
	return n
}

// moveToFront marks n as most recently used.
func (l *lruList) moveToFront(n *lruNode) {
	if n == l.head {
		return
	}
	l.remove(n)
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.len++
}

// remove unlinks n.
func (l *lruList) remove(n *lruNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	l.len--
}

// oldest returns the least recently used node, or nil.
func (l *lruList) oldest() *lruNode {
	return l.tail
}

func (l *lruList) clear() {
	l.head, l.tail, l.len = nil, nil, 0
}
