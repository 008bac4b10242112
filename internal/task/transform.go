package task

// Add inserts a new, not completed task with the given text under a fresh id
// from ids. It returns the new collection and the created task.
func Add(c Collection, text string, ids IDSource) (Collection, Task) {
	id := ids.NewID()
	for c.Has(id) {
		id = ids.NewID()
	}
	t := Task{ID: id, Text: text, Completed: false}

	out := c.clone()
	out.order = append(out.order, id)
	out.items[id] = t
	return out, t
}

// Remove deletes the task stored under id. Removing an absent id returns c
// unchanged.
func Remove(c Collection, id string) Collection {
	if !c.Has(id) {
		return c
	}
	out := Collection{
		order: make([]string, 0, len(c.order)-1),
		items: make(map[string]Task, len(c.items)-1),
	}
	for _, key := range c.order {
		if key == id {
			continue
		}
		out.order = append(out.order, key)
		out.items[key] = c.items[key]
	}
	return out
}

// ToggleCompleted flips the completed flag of the task stored under id.
func ToggleCompleted(c Collection, id string) (Collection, error) {
	t, ok := c.Get(id)
	if !ok {
		return c, &NotFoundError{ID: id}
	}
	t.Completed = !t.Completed

	out := c.clone()
	out.items[id] = t
	return out, nil
}

// Update stores t under t.ID, replacing any existing task wholesale. A task
// whose id is not present yet is appended.
func Update(c Collection, t Task) Collection {
	out := c.clone()
	if _, ok := out.items[t.ID]; !ok {
		out.order = append(out.order, t.ID)
	}
	out.items[t.ID] = t
	return out
}

// RemoveAllCompleted deletes every completed task.
func RemoveAllCompleted(c Collection) Collection {
	out := Collection{
		order: make([]string, 0, len(c.order)),
		items: make(map[string]Task, len(c.items)),
	}
	for _, id := range c.order {
		t := c.items[id]
		if t.Completed {
			continue
		}
		out.order = append(out.order, id)
		out.items[id] = t
	}
	return out
}
