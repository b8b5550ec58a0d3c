package style

import "sort"

/**
 * @brief Named styles plus the resource libraries they refer to.
 */
type StyleSheet struct {
	Styles    map[string]*Style           `toml:"styles"`
	Libraries map[string]*ResourceLibrary `toml:"libraries"`
}

func NewStyleSheet() *StyleSheet {
	return &StyleSheet{
		Styles:    make(map[string]*Style),
		Libraries: make(map[string]*ResourceLibrary),
	}
}

// Normalize names every style and library after its key.
func (s *StyleSheet) Normalize() {
	for name, st := range s.Styles {
		if st == nil {
			delete(s.Styles, name)
			continue
		}
		st.Name = name
	}
	for name, lib := range s.Libraries {
		if lib == nil {
			delete(s.Libraries, name)
			continue
		}
		lib.Name = name
	}
}

func (s *StyleSheet) AddStyle(st *Style) {
	if s.Styles == nil {
		s.Styles = make(map[string]*Style)
	}
	s.Styles[st.Name] = st
}

func (s *StyleSheet) AddLibrary(lib *ResourceLibrary) {
	if s.Libraries == nil {
		s.Libraries = make(map[string]*ResourceLibrary)
	}
	s.Libraries[lib.Name] = lib
}

func (s *StyleSheet) Style(name string) (*Style, bool) {
	if s == nil {
		return nil, false
	}
	st, ok := s.Styles[name]
	return st, ok
}

func (s *StyleSheet) ResourceLibrary(name string) (*ResourceLibrary, bool) {
	if s == nil {
		return nil, false
	}
	lib, ok := s.Libraries[name]
	return lib, ok
}

// StyleNames returns the style names in sorted order.
func (s *StyleSheet) StyleNames() []string {
	names := make([]string, 0, len(s.Styles))
	for name := range s.Styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
