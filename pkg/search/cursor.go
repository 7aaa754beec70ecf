package search

// Cursor tracks keyboard selection over a result list. The index never leaves
// [0, size) while results exist, and is -1 when there are none.
type Cursor struct {
	index int
	size  int
}

func NewCursor(size int) *Cursor {
	c := &Cursor{}
	c.Reset(size)
	return c
}

// Reset points at the first result of a fresh list.
func (c *Cursor) Reset(size int) {
	if size < 0 {
		size = 0
	}
	c.size = size
	c.index = -1
	if size > 0 {
		c.index = 0
	}
}

func (c *Cursor) Next() int {
	if c.size == 0 {
		return -1
	}
	if c.index < c.size-1 {
		c.index++
	}
	return c.index
}

func (c *Cursor) Prev() int {
	if c.size == 0 {
		return -1
	}
	if c.index > 0 {
		c.index--
	}
	return c.index
}

func (c *Cursor) Index() int {
	return c.index
}
