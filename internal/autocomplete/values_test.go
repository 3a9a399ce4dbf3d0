package autocomplete

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filterbar/internal/filter"
)

func TestNumber(t *testing.T) {
	n := NewNumber().WithRange(0, 5)
	ctx := context.Background()

	t.Run("ParsesInput", func(t *testing.T) {
		items, err := n.Suggestions(ctx, input(" 3 "))
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "3", items[0].Label)
		assert.Equal(t, 3.0, items[0].Value)
	})

	t.Run("InvalidInputYieldsNothing", func(t *testing.T) {
		items, err := n.Suggestions(ctx, input("three"))
		assert.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("FormatFraction", func(t *testing.T) {
		assert.Equal(t, "2.5", n.Format(2.5))
	})

	t.Run("Range", func(t *testing.T) {
		assert.True(t, n.Validate(filter.ConditionValue{Raw: 4.0, Display: "4"}).Valid)
		assert.False(t, n.Validate(filter.ConditionValue{Raw: 9.0, Display: "9"}).Valid)
		assert.False(t, n.Validate(filter.TextValue("abc")).Valid)
	})

	t.Run("ValueFromText", func(t *testing.T) {
		v, ok := filter.ValueFromText("1e1", n)
		require.True(t, ok)
		assert.Equal(t, 10.0, v.Raw)
		assert.Equal(t, "10", v.Display)

		_, ok = filter.ValueFromText("x", n)
		assert.False(t, ok)
	})

	t.Run("Integer", func(t *testing.T) {
		i := &Number{Integer: true}
		_, ok := i.Parse("1.5")
		assert.False(t, ok)
	})
}

func TestDate(t *testing.T) {
	now := time.Date(2024, time.March, 10, 15, 4, 5, 0, time.UTC)
	d := NewDate().WithNow(func() time.Time { return now })
	ctx := context.Background()

	cases := map[string]string{
		"today":        "2024-03-10",
		"Yesterday":    "2024-03-09",
		"7d":           "2024-03-03",
		"2023-12-25":   "2023-12-25",
		"2023/12/25":   "2023-12-25",
		"Dec 25, 2023": "2023-12-25",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			raw, ok := d.Parse(in)
			require.True(t, ok)
			assert.Equal(t, want, raw)
		})
	}

	t.Run("Presets", func(t *testing.T) {
		items, err := d.Suggestions(ctx, input(""))
		require.NoError(t, err)
		require.Len(t, items, 4)
		assert.Equal(t, "2024-03-10", items[0].Label)
		assert.Equal(t, "today", items[0].Description)
	})

	t.Run("InvalidInputYieldsNothing", func(t *testing.T) {
		items, err := d.Suggestions(ctx, input("someday"))
		assert.NoError(t, err)
		assert.Empty(t, items)
		assert.False(t, d.Validate(filter.TextValue("someday")).Valid)
	})

	t.Run("Widget", func(t *testing.T) {
		w := d.Widget()
		assert.Equal(t, "date", w.Name())
		v, ok := w.Commit("yesterday")
		require.True(t, ok)
		assert.Equal(t, "2024-03-09", v.Display)
	})
}

func TestCache(t *testing.T) {
	c := NewCache[int]()
	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}
