package record

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestNormalizeVenueKind(t *testing.T) {
	cases := []struct {
		rawType, venue string
		expect         VenueKind
	}{
		{" Conference ", "SIGMOD", VenueConference},
		{"JOURNAL", "VLDB Journal", VenueJournal},
		{"", "Some Venue", VenueOther},
		{"book series", "Lecture Notes", VenueOther},
		{"conference", "Intl. WORKSHOP on Graph Data", VenueWorkshop},
		{"journal", "workshop proceedings", VenueWorkshop},
	}

	for _, c := range cases {
		assert.Equalf(t, c.expect, NormalizeVenueKind(c.rawType, c.venue), "%#v / %#v", c.rawType, c.venue)
	}
}

func TestParseTopics(t *testing.T) {
	assert.Equal(t, []string{"Computer Science", "Mathematics"}, ParseTopics(`['Computer Science', 'Mathematics']`))
	assert.Equal(t, []string{"Big Data"}, ParseTopics(`["Big Data"]`))
	assert.Equal(t, []string{"it's"}, ParseTopics(`['it\'s', None]`))
	assert.Equal(t, []string{"Indexing"}, ParseTopics(" Indexing "))
	assert.Equal(t, []string{}, ParseTopics("[]"))
	assert.Equal(t, []string{}, ParseTopics(""))
	assert.Equal(t, []string{}, ParseTopics("   "))
	assert.Equal(t, []string{}, ParseTopics(NoTopicSentinel))
}

func TestParseTopics_MalformedFailsSoft(t *testing.T) {
	for _, raw := range []string{
		`['unterminated]`,
		`['a' 'b']`,
		`[1, 2]`,
		`['a',, 'b']`,
		`[Nonesuch]`,
	} {
		assert.NotPanics(t, func() {
			assert.Equalf(t, []string{}, ParseTopics(raw), "%#v", raw)
		})
	}
}

func TestParseVolume(t *testing.T) {
	v := ParseVolume("12")
	require.NotNil(t, v)
	assert.Equal(t, 12, *v)

	v = ParseVolume("7.0")
	require.NotNil(t, v)
	assert.Equal(t, 7, *v)

	assert.Nil(t, ParseVolume(NoVolumeSentinel))
	assert.Nil(t, ParseVolume(""))
	assert.Nil(t, ParseVolume("12-13"))
	assert.Nil(t, ParseVolume("vol. 3"))
}

func TestNormalize_KeepsCardinality(t *testing.T) {
	raw := []RawRow{
		{PaperID: " p1 ", Year: "2020", MainAuthor: "1", VenueType: "Journal", VenueName: "TODS", Topics: "['Indexing']", Volume: "45"},
		{PaperID: "p2", Year: "bad", MainAuthor: "0", VenueType: "", Topics: "[broken", Volume: "<no_volume_data>"},
		{},
	}

	rows := Normalize(raw)
	require.Equal(t, 3, len(rows))

	assert.Equal(t, "p1", rows[0].PaperID)
	assert.Equal(t, 2020, rows[0].Year)
	assert.True(t, rows[0].MainAuthor)
	assert.Equal(t, VenueJournal, rows[0].VenueKind)
	assert.Equal(t, []string{"Indexing"}, rows[0].Topics)
	require.NotNil(t, rows[0].Volume)
	assert.Equal(t, 45, *rows[0].Volume)

	assert.Equal(t, 0, rows[1].Year)
	assert.False(t, rows[1].MainAuthor)
	assert.Equal(t, VenueOther, rows[1].VenueKind)
	assert.Equal(t, []string{}, rows[1].Topics)
	assert.Nil(t, rows[1].Volume)

	assert.Equal(t, VenueOther, rows[2].VenueKind)
	assert.NotNil(t, rows[2].Topics)
}

func TestReadCSV(t *testing.T) {
	input := "PaperId,Title,Year,AuthorId,Author,Main_Author,Venue,Type,FieldOfStudy,Volume,ReferenceId\n" +
		"p1,Title One,2021,a1,Alice,1,SIGMOD,conference,\"['Indexing', 'Big Data']\",<no_volume_data>,p2\n" +
		"p2,Title Two,2020,a2,Bob,0,VLDB,journal,Data Storage,12,\n"

	raw, err := ReadCSV(strings.NewReader(input))
	require.Nil(t, err)
	require.Equal(t, 2, len(raw))

	assert.Equal(t, "p1", raw[0].PaperID)
	assert.Equal(t, "['Indexing', 'Big Data']", raw[0].Topics)
	assert.Equal(t, "p2", raw[0].CitedPaperID)
	assert.Equal(t, "", raw[1].CitedPaperID)
	assert.Equal(t, "", raw[1].Abstract)
}

func TestReadCSV_ErrorLineCountsQuotedNewlines(t *testing.T) {
	input := "PaperId,Title,Abstract\n" +
		"p1,One,\"first line\nsecond line\"\n" +
		"p2,Two,\"first line\nsecond line\"\n"
	errBroken := errors.New("connection reset")

	_, err := ReadCSV(io.MultiReader(strings.NewReader(input), iotest.ErrReader(errBroken)))
	require.NotNil(t, err)
	assert.ErrorIs(t, err, errBroken)
	assert.Contains(t, err.Error(), "line 6")
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyInput)
}
