package contacts

import (
	"github.com/custodia-labs/gdata/internal/connectors/gd"
	"github.com/custodia-labs/gdata/internal/core/model"
	"github.com/custodia-labs/gdata/internal/core/parsable"
)

// Contact is an address book entry.
type Contact struct {
	model.Entry

	phoneNumbers []*gd.PhoneNumber
	deleted      bool
}

// NewContact creates an uninserted contact.
func NewContact() *Contact {
	return &Contact{}
}

// PhoneNumbers returns the contact's phone numbers.
func (c *Contact) PhoneNumbers() []*gd.PhoneNumber {
	return append([]*gd.PhoneNumber(nil), c.phoneNumbers...)
}

// AddPhoneNumber adds p unless an equal number is present. A primary number
// demotes the previous primary one.
func (c *Contact) AddPhoneNumber(p *gd.PhoneNumber) bool {
	for _, existing := range c.phoneNumbers {
		if existing.Equal(p) {
			return false
		}
	}
	if p.Primary {
		for _, existing := range c.phoneNumbers {
			existing.Primary = false
		}
	}
	c.phoneNumbers = append(c.phoneNumbers, p)
	return true
}

// RemovePhoneNumbers removes every phone number.
func (c *Contact) RemovePhoneNumbers() { c.phoneNumbers = nil }

// PrimaryPhoneNumber returns the primary number, or nil.
func (c *Contact) PrimaryPhoneNumber() *gd.PhoneNumber {
	for _, p := range c.phoneNumbers {
		if p.Primary {
			return p
		}
	}
	return nil
}

// IsDeleted reports whether the server marked the contact as deleted.
func (c *Contact) IsDeleted() bool { return c.deleted }

// Namespaces implements parsable.Parsable.
func (c *Contact) Namespaces() map[string]string {
	ns := c.Entry.Namespaces()
	for _, p := range c.phoneNumbers {
		parsable.MergeNamespaces(ns, p)
	}
	return ns
}

// ParseXML handles the contact elements and defers the rest to the entry.
func (c *Contact) ParseXML(child *parsable.Element) error {
	switch {
	case child.Is(parsable.NSGData, "phoneNumber"):
		p := &gd.PhoneNumber{}
		if err := parsable.DecodeXML(child, p, c.ParseOptions()); err != nil {
			return err
		}
		c.AddPhoneNumber(p)
		return nil
	case child.Is(parsable.NSGData, "deleted"):
		c.deleted = true
		return nil
	default:
		return c.Entry.ParseXML(child)
	}
}

// GetXML writes the entry and the phone numbers. The deleted marker is
// server state and is not written.
func (c *Contact) GetXML(w *parsable.XMLWriter) {
	c.Entry.GetXML(w)
	for _, p := range c.phoneNumbers {
		w.Child(p)
	}
}
