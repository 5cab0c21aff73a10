package config

import "fmt"

// Edits locate entries by value, the way the editor identifies the row it
// is changing. Each returns a new task slice; the caller saves the whole
// configuration afterwards.

// IndexOf returns the position of the first descriptor equal to d, or -1.
func (c Configuration) IndexOf(d Descriptor) int {
	for i, t := range c.Tasks {
		if t == d {
			return i
		}
	}
	return -1
}

// Add appends d.
func (c Configuration) Add(d Descriptor) (Configuration, error) {
	if err := ValidateDescriptor(d); err != nil {
		return c, err
	}
	out := c
	out.Tasks = append(append(make([]Descriptor, 0, len(c.Tasks)+1), c.Tasks...), d)
	return out, nil
}

// Replace swaps the entry equal to old for updated, keeping its position.
// The type of an entry cannot change.
func (c Configuration) Replace(old, updated Descriptor) (Configuration, error) {
	i := c.IndexOf(old)
	if i < 0 {
		return c, fmt.Errorf("task %q not found", old.DisplayName())
	}
	if updated.Type != old.Type {
		return c, fmt.Errorf("%w: type cannot change from %s to %s", ErrInvalidTask, old.Type, updated.Type)
	}
	if err := ValidateDescriptor(updated); err != nil {
		return c, err
	}
	out := c
	out.Tasks = append([]Descriptor(nil), c.Tasks...)
	out.Tasks[i] = updated
	return out, nil
}

// Remove deletes the entry equal to d.
func (c Configuration) Remove(d Descriptor) (Configuration, error) {
	i := c.IndexOf(d)
	if i < 0 {
		return c, fmt.Errorf("task %q not found", d.DisplayName())
	}
	out := c
	out.Tasks = make([]Descriptor, 0, len(c.Tasks)-1)
	out.Tasks = append(out.Tasks, c.Tasks[:i]...)
	out.Tasks = append(out.Tasks, c.Tasks[i+1:]...)
	return out, nil
}
