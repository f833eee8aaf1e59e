package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", CSV(nil))
	})

	t.Run("quotes every field and doubles inner quotes", func(t *testing.T) {
		comment := `ask for "Bob"`
		rows := []Row{
			{{"carrier", "Blue Line"}, {"rate", 1850.5}, {"comment", &comment}},
		}
		want := "\"carrier\",\"rate\",\"comment\"\n" +
			"\"Blue Line\",\"1850.5\",\"ask for \"\"Bob\"\"\"\n"
		assert.Equal(t, want, CSV(rows))
	})

	t.Run("nil values render empty", func(t *testing.T) {
		var rate *float64
		var when *time.Time
		rows := []Row{
			{{"rate", rate}, {"submitted_at", when}, {"note", nil}},
		}
		assert.Equal(t, "\"rate\",\"submitted_at\",\"note\"\n\"\",\"\",\"\"\n", CSV(rows))
	})

	t.Run("header follows first row", func(t *testing.T) {
		ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		rows := []Row{
			{{"b", int64(1)}, {"a", ts}},
			{{"b", int64(2)}},
		}
		want := "\"b\",\"a\"\n" +
			"\"1\",\"2024-06-01T12:00:00Z\"\n" +
			"\"2\",\"\"\n"
		assert.Equal(t, want, CSV(rows))
	})

	t.Run("embedded commas and newlines stay inside quotes", func(t *testing.T) {
		rows := []Row{{{"lane", "Chicago, IL\nDallas, TX"}}}
		assert.Equal(t, "\"lane\"\n\"Chicago, IL\nDallas, TX\"\n", CSV(rows))
	})
}
