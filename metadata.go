package dotthz

import (
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/dotthztag/go-dotthz/internal/hdf5"
)

// Attribute names of the dotThz group schema.
const (
	attrDescription   = "description"
	attrDate          = "date"
	attrInstrument    = "instrument"
	attrMode          = "mode"
	attrTime          = "time"
	attrVersion       = "thzVer"
	attrUser          = "user"
	attrMDDescription = "mdDescription"
	attrDSDescription = "dsDescription"
)

// mdAttrName returns the attribute name for the i-th free-form metadata
// value (1-based on disk).
func mdAttrName(i int) string {
	return "md" + strconv.Itoa(i)
}

// Metadata describes one measurement group. The fixed fields map to named
// group attributes; MD holds arbitrary key/value pairs in insertion order.
//
// On disk the ORCID, User, Email and Institution fields share the single
// "user" attribute, joined with "/". MD keys are stored joined in the
// "mdDescription" attribute with the values in "md1".."mdN".
type Metadata struct {
	User          string                                 `json:"user"`
	Email         string                                 `json:"email"`
	ORCID         string                                 `json:"orcid"`
	Institution   string                                 `json:"institution"`
	Description   string                                 `json:"description"`
	MD            *orderedmap.OrderedMap[string, string] `json:"md"`
	DsDescription []string                               `json:"dsDescription"`
	Version       string                                 `json:"version"`
	Mode          string                                 `json:"mode"`
	Instrument    string                                 `json:"instrument"`
	Time          string                                 `json:"time"`
	Date          string                                 `json:"date"`
}

// NewMetadata returns a Metadata with an empty, initialized MD map.
func NewMetadata() *Metadata {
	return &Metadata{MD: orderedmap.New[string, string]()}
}

// SetMD sets a free-form metadata key, initializing the map when needed.
// Existing keys keep their original insertion position.
func (m *Metadata) SetMD(key, value string) {
	if m.MD == nil {
		m.MD = orderedmap.New[string, string]()
	}
	m.MD.Set(key, value)
}

// GetMD returns a free-form metadata value.
func (m *Metadata) GetMD(key string) (string, bool) {
	if m.MD == nil {
		return "", false
	}
	return m.MD.Get(key)
}

// writeTo writes every metadata field as a group attribute, overwriting
// attributes that already exist. Stale mdN attributes from a previously
// larger map are removed so a later read does not resurrect them.
func (m *Metadata) writeTo(g *hdf5.Group) error {
	fixed := []struct {
		name  string
		value string
	}{
		{attrDescription, m.Description},
		{attrDate, m.Date},
		{attrInstrument, m.Instrument},
		{attrMode, m.Mode},
		{attrTime, m.Time},
		{attrVersion, m.Version},
		{attrUser, strings.Join([]string{m.ORCID, m.User, m.Email, m.Institution}, "/")},
	}

	for _, a := range fixed {
		if err := g.SetAttr(a.name, a.value); err != nil {
			return fmt.Errorf("writing attribute %q: %w", a.name, err)
		}
	}

	var keys []string
	n := 0
	if m.MD != nil {
		for pair := m.MD.Oldest(); pair != nil; pair = pair.Next() {
			keys = append(keys, pair.Key)
			n++
			if err := g.SetAttr(mdAttrName(n), pair.Value); err != nil {
				return fmt.Errorf("writing attribute %q: %w", mdAttrName(n), err)
			}
		}
	}

	if err := cleanStaleMD(g, n); err != nil {
		return err
	}

	if n > 0 {
		if err := g.SetAttr(attrMDDescription, strings.Join(keys, ", ")); err != nil {
			return fmt.Errorf("writing attribute %q: %w", attrMDDescription, err)
		}
	} else if g.HasAttr(attrMDDescription) {
		if err := g.DeleteAttr(attrMDDescription); err != nil {
			return err
		}
	}

	if len(m.DsDescription) > 0 {
		if err := g.SetAttr(attrDSDescription, strings.Join(m.DsDescription, ", ")); err != nil {
			return fmt.Errorf("writing attribute %q: %w", attrDSDescription, err)
		}
	} else if g.HasAttr(attrDSDescription) {
		if err := g.DeleteAttr(attrDSDescription); err != nil {
			return err
		}
	}

	return nil
}

// cleanStaleMD deletes mdN value attributes with an index above keep.
func cleanStaleMD(g *hdf5.Group, keep int) error {
	for _, name := range g.Attrs() {
		idx, ok := mdAttrIndex(name)
		if !ok || idx <= keep {
			continue
		}
		if err := g.DeleteAttr(name); err != nil {
			return err
		}
	}
	return nil
}

// mdAttrIndex reports whether name is an mdN value attribute and returns N.
func mdAttrIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, "md") || name == attrMDDescription {
		return 0, false
	}
	idx, err := strconv.Atoi(name[2:])
	if err != nil || idx < 1 {
		return 0, false
	}
	return idx, true
}

// readMetadata reads a group's attributes into a Metadata. Every attribute
// is individually optional: a missing one leaves the field at its zero
// value, so partially written files stay readable.
func readMetadata(g *hdf5.Group) *Metadata {
	m := NewMetadata()

	m.Description = attrString(g, attrDescription)
	m.Date = attrString(g, attrDate)
	m.Instrument = attrString(g, attrInstrument)
	m.Mode = attrString(g, attrMode)
	m.Time = attrString(g, attrTime)
	m.Version = attrString(g, attrVersion)

	if user := attrString(g, attrUser); user != "" {
		parts := strings.Split(user, "/")
		fields := []*string{&m.ORCID, &m.User, &m.Email, &m.Institution}
		for i, p := range parts {
			if i >= len(fields) {
				break
			}
			*fields[i] = strings.TrimSpace(p)
		}
	}

	if keys := splitList(attrString(g, attrMDDescription)); len(keys) > 0 {
		for i, key := range keys {
			m.MD.Set(key, attrString(g, mdAttrName(i+1)))
		}
	}

	m.DsDescription = splitList(attrString(g, attrDSDescription))

	return m
}

// attrString reads an attribute as a string, formatting numeric values
// written by other tools. Missing or unreadable attributes yield "".
func attrString(g *hdf5.Group, name string) string {
	attr := g.Attr(name)
	if attr == nil {
		return ""
	}

	val, err := attr.Value()
	if err != nil {
		return ""
	}

	switch v := val.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 32)
	default:
		return ""
	}
}

// splitList parses a ", "-joined attribute value back into its entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
