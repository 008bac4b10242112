package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Task is a single bucket list item.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// IsZero returns true if the task is empty (has no ID).
func (t Task) IsZero() bool {
	return t.ID == ""
}

// Collection maps task ids to tasks and remembers insertion order.
//
// A Collection is treated as immutable: the transforms in this package
// return new values and never write through to their input. The zero value
// is an empty collection.
type Collection struct {
	order []string
	items map[string]Task
}

// NewCollection builds a collection from tasks in the given order.
// A later task with the same id replaces an earlier one in place.
func NewCollection(tasks ...Task) Collection {
	c := Collection{
		order: make([]string, 0, len(tasks)),
		items: make(map[string]Task, len(tasks)),
	}
	for _, t := range tasks {
		if _, ok := c.items[t.ID]; !ok {
			c.order = append(c.order, t.ID)
		}
		c.items[t.ID] = t
	}
	return c
}

// Len returns the number of tasks.
func (c Collection) Len() int {
	return len(c.order)
}

// Get returns the task stored under id.
func (c Collection) Get(id string) (Task, bool) {
	t, ok := c.items[id]
	return t, ok
}

// Has reports whether id is present.
func (c Collection) Has(id string) bool {
	_, ok := c.items[id]
	return ok
}

// IDs returns the task ids in insertion order.
func (c Collection) IDs() []string {
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	return ids
}

// Tasks returns the tasks in insertion order.
func (c Collection) Tasks() []Task {
	tasks := make([]Task, 0, len(c.order))
	for _, id := range c.order {
		tasks = append(tasks, c.items[id])
	}
	return tasks
}

// Reversed returns the tasks newest first, the order they are displayed in.
func (c Collection) Reversed() []Task {
	tasks := make([]Task, 0, len(c.order))
	for i := len(c.order) - 1; i >= 0; i-- {
		tasks = append(tasks, c.items[c.order[i]])
	}
	return tasks
}

// CountCompleted returns the number of completed tasks.
func (c Collection) CountCompleted() int {
	n := 0
	for _, t := range c.items {
		if t.Completed {
			n++
		}
	}
	return n
}

// Equal reports whether both collections hold the same tasks under the same
// keys. Insertion order is ignored.
func (c Collection) Equal(other Collection) bool {
	if len(c.items) != len(other.items) {
		return false
	}
	for id, t := range c.items {
		o, ok := other.items[id]
		if !ok || o != t {
			return false
		}
	}
	return true
}

func (c Collection) clone() Collection {
	out := Collection{
		order: make([]string, len(c.order), len(c.order)+1),
		items: make(map[string]Task, len(c.items)+1),
	}
	copy(out.order, c.order)
	for id, t := range c.items {
		out.items[id] = t
	}
	return out
}

// MarshalJSON writes the collection as a JSON object keyed by id, keys in
// insertion order.
func (c Collection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(c.items[id])
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", id, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keyed by id, keeping key order.
// Empty input and null decode to an empty collection.
func (c *Collection) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = Collection{}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object, got %v", tok)
	}

	out := Collection{items: make(map[string]Task)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected an object key, got %v", tok)
		}
		var t Task
		if err := dec.Decode(&t); err != nil {
			return fmt.Errorf("task %q: %w", key, err)
		}
		if t.ID == "" {
			t.ID = key
		} else if t.ID != key {
			return fmt.Errorf("task %q: id %q does not match its key", key, t.ID)
		}
		if _, seen := out.items[key]; !seen {
			out.order = append(out.order, key)
		}
		out.items[key] = t
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after the task object")
	}

	*c = out
	return nil
}
