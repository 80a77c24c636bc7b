package session

// lru is a least-recently-used index of sessions. It is not synchronized;
// Registry guards it.
type lru struct {
	maxEntries int
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
	onEvict    func(*Session)
}

type entry struct {
	key   string
	value *Session
	prev  *entry
	next  *entry
}

func newLRU(maxEntries int, onEvict func(*Session)) *lru {
	return &lru{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
		onEvict:    onEvict,
	}
}

func (c *lru) get(key string) (*Session, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lru) put(key string, value *Session) {
	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lru) delete(key string) bool {
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	delete(c.entries, key)
	c.remove(e)
	return true
}

func (c *lru) len() int { return len(c.entries) }

func (c *lru) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lru) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lru) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lru) evictTail() {
	if c.tail == nil {
		return
	}
	victim := c.tail
	delete(c.entries, victim.key)
	c.remove(victim)
	if c.onEvict != nil {
		c.onEvict(victim.value)
	}
}
