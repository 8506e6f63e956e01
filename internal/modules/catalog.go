package modules

// Catalog holds the most recent module list fetched from the server. The
// list is replaced wholesale on every successful refresh; there is no
// partial merge.
type Catalog struct {
	modules []Module
	active  int
}

// ApplyResult reports what a refresh changed so the caller can decide
// whether cached quiz content and an open session survive.
type ApplyResult struct {
	// Changed is true when the new list differs structurally from the
	// previous one (length, ids in order, or per-module serialization).
	Changed bool
	// Empty is true when the server returned no modules at all.
	Empty bool
}

// Apply replaces the catalog with a fresh fetch and re-resolves the active
// module. When prevModuleID is non-empty and still present, that module
// stays selected; otherwise the first module below 100% progress wins,
// falling back to the first module when everything is complete.
func (c *Catalog) Apply(next []Module, prevModuleID string) ApplyResult {
	res := ApplyResult{Changed: !modulesEqual(c.modules, next), Empty: len(next) == 0}
	c.modules = next
	if res.Empty {
		c.active = 0
		return res
	}

	idx := -1
	if prevModuleID != "" {
		idx = c.indexOf(prevModuleID)
	}
	if idx < 0 {
		idx = c.firstPending()
	}
	c.active = idx
	return res
}

func (c *Catalog) indexOf(moduleID string) int {
	for i := range c.modules {
		if c.modules[i].ID == moduleID {
			return i
		}
	}
	return -1
}

func (c *Catalog) firstPending() int {
	for i := range c.modules {
		if c.modules[i].Progress.Percentage < 100 {
			return i
		}
	}
	return 0
}

func (c *Catalog) Modules() []Module { return c.modules }

func (c *Catalog) Empty() bool { return len(c.modules) == 0 }

func (c *Catalog) ActiveIndex() int { return c.active }

// ActiveModule returns the selected module, or nil when the catalog is
// empty.
func (c *Catalog) ActiveModule() *Module {
	if c.active < 0 || c.active >= len(c.modules) {
		return nil
	}
	return &c.modules[c.active]
}

// Select activates the module with the given id.
func (c *Catalog) Select(moduleID string) error {
	idx := c.indexOf(moduleID)
	if idx < 0 {
		return &NotFoundError{What: "module " + moduleID}
	}
	c.active = idx
	return nil
}
