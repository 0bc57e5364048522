package contacts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gdata/internal/connectors/gd"
	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/parsable"
)

const contactXML = `<entry xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005"
       gd:etag="&quot;Qn04eTVSLyp7ImA9WxRbGEUORAQ.&quot;">
  <id>http://www.google.com/m8/feeds/contacts/jo%40example.com/base/c1</id>
  <title>Elizabeth Bennet</title>
  <gd:phoneNumber rel="http://schemas.google.com/g/2005#work" primary="true">
    (206)555-1212
  </gd:phoneNumber>
  <gd:phoneNumber rel="http://schemas.google.com/g/2005#home">(206)555-1213</gd:phoneNumber>
  <gd:phoneNumber label="Holiday">(206)555-1212</gd:phoneNumber>
</entry>`

func TestContact_FromXML(t *testing.T) {
	c := NewContact()
	require.NoError(t, parsable.FromXML([]byte(contactXML), c, parsable.Options{}))

	assert.Equal(t, "Elizabeth Bennet", c.Title())
	assert.False(t, c.IsDeleted())

	numbers := c.PhoneNumbers()
	require.Len(t, numbers, 2, "duplicate numbers collapse")
	assert.Equal(t, "(206)555-1212", numbers[0].Number())
	assert.Equal(t, gd.PhoneWork, numbers[0].Relation)
	assert.Equal(t, "(206)555-1213", numbers[1].Number())

	require.NotNil(t, c.PrimaryPhoneNumber())
	assert.Equal(t, "(206)555-1212", c.PrimaryPhoneNumber().Number())
}

func TestContact_Deleted(t *testing.T) {
	doc := `<entry xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005">
	  <id>c2</id><gd:deleted/></entry>`
	c := NewContact()
	require.NoError(t, parsable.FromXML([]byte(doc), c, parsable.Options{}))
	assert.True(t, c.IsDeleted())
	assert.NotContains(t, string(parsable.ToXML(c)), "deleted")
}

func TestContact_InvalidPhoneNumber(t *testing.T) {
	doc := `<entry xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005">
	  <gd:phoneNumber rel="">555</gd:phoneNumber></entry>`
	err := parsable.FromXML([]byte(doc), NewContact(), parsable.Options{})
	assert.True(t, errors.Is(err, domain.ErrRequiredFieldMissing), "got %v", err)
}

func TestContact_PrimaryDemotion(t *testing.T) {
	c := NewContact()
	assert.True(t, c.AddPhoneNumber(gd.NewPhoneNumber("111", gd.PhoneHome, "", "", true)))
	assert.True(t, c.AddPhoneNumber(gd.NewPhoneNumber("222", gd.PhoneMobile, "", "", true)))
	assert.False(t, c.AddPhoneNumber(gd.NewPhoneNumber(" 222 ", gd.PhoneWork, "", "", false)))

	assert.Equal(t, "222", c.PrimaryPhoneNumber().Number())
	assert.False(t, c.PhoneNumbers()[0].Primary)

	c.RemovePhoneNumbers()
	assert.Empty(t, c.PhoneNumbers())
	assert.Nil(t, c.PrimaryPhoneNumber())
}

func TestContact_ToXML(t *testing.T) {
	c := NewContact()
	c.SetTitle("Jane")
	c.AddPhoneNumber(gd.NewPhoneNumber("555 0100", gd.PhoneMobile, "", "", true))

	out := string(parsable.ToXML(c))
	assert.Contains(t, out, "<gd:phoneNumber rel='http://schemas.google.com/g/2005#mobile' primary='true'>555 0100</gd:phoneNumber>")

	again := NewContact()
	require.NoError(t, parsable.FromXML([]byte(out), again, parsable.Options{}))
	require.Len(t, again.PhoneNumbers(), 1)
	assert.True(t, again.PhoneNumbers()[0].Primary)
}
