package cart_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cart-service/internal/cart"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertTotal(t *testing.T, want string, c *cart.Cart) {
	t.Helper()
	got := c.Total()
	assert.True(t, price(want).Equal(got), "total: want %s, got %s", want, got)
}

func dumplings(qty int, spice string) cart.Line {
	return cart.Line{
		ItemID:         "dumplings",
		Name:           "Pork Dumplings",
		Price:          price("8.00"),
		Quantity:       qty,
		Customizations: cart.Customizations{{Group: "Spice", Options: []string{spice}}},
	}
}

func TestCart_AddSameSelectionMerges(t *testing.T) {
	c := cart.New()

	k1, err := c.Add(dumplings(2, "Mild"))
	require.NoError(t, err)
	k2, err := c.Add(dumplings(1, "Mild"))
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	require.Equal(t, 1, c.Len())
	line, ok := c.Line(k1)
	require.True(t, ok)
	assert.Equal(t, 3, line.Quantity)
	assertTotal(t, "24.00", c)
}

func TestCart_AddDifferentSelectionCreatesLine(t *testing.T) {
	c := cart.New()
	_, err := c.Add(dumplings(2, "Mild"))
	require.NoError(t, err)
	_, err = c.Add(dumplings(1, "Mild"))
	require.NoError(t, err)
	_, err = c.Add(dumplings(1, "Hot"))
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 4, c.ItemCount())
	assertTotal(t, "32.00", c)
}

func TestCart_PlainAndCustomizedAreDistinct(t *testing.T) {
	c := cart.New()
	plain := dumplings(1, "Mild")
	plain.Customizations = nil

	_, err := c.Add(plain)
	require.NoError(t, err)
	_, err = c.Add(dumplings(1, "Mild"))
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())

	c2 := cart.New()
	_, err = c2.Add(dumplings(1, "Mild"))
	require.NoError(t, err)
	_, err = c2.Add(plain)
	require.NoError(t, err)

	assert.Equal(t, 2, c2.Len())
}

func TestCart_MergeKeepsExistingSnapshot(t *testing.T) {
	c := cart.New()
	first := dumplings(1, "Mild")
	first.Notes = "extra napkins"
	key, err := c.Add(first)
	require.NoError(t, err)

	second := dumplings(2, "Mild")
	second.Name = "Renamed Dumplings"
	second.Price = price("9.50")
	second.Notes = "no onions"
	_, err = c.Add(second)
	require.NoError(t, err)

	line, _ := c.Line(key)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, "Pork Dumplings", line.Name)
	assert.True(t, price("8.00").Equal(line.Price))
	assert.Equal(t, "extra napkins", line.Notes)
}

func TestCart_AddRejectsInvalidInput(t *testing.T) {
	c := cart.New()
	_, err := c.Add(dumplings(1, "Mild"))
	require.NoError(t, err)

	tests := []struct {
		name string
		line cart.Line
		want error
	}{
		{name: "zero quantity", line: dumplings(0, "Mild"), want: cart.ErrInvalidQuantity},
		{name: "negative quantity", line: dumplings(-2, "Mild"), want: cart.ErrInvalidQuantity},
		{name: "empty item id", line: cart.Line{Quantity: 1, Price: price("1")}, want: cart.ErrEmptyItemID},
		{
			name: "duplicate option",
			line: cart.Line{ItemID: "x", Quantity: 1, Customizations: cart.Customizations{{Group: "G", Options: []string{"a", "a"}}}},
			want: cart.ErrInvalidCustomization,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Add(tt.line)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, c.Len())
			assert.Equal(t, 1, c.ItemCount())
		})
	}
}

func TestCart_SetQuantity(t *testing.T) {
	c := cart.New()
	key, _ := c.Add(dumplings(2, "Mild"))
	other, _ := c.Add(dumplings(1, "Hot"))

	require.NoError(t, c.SetQuantity(key, 5))
	line, _ := c.Line(key)
	assert.Equal(t, 5, line.Quantity, "quantity is absolute, not additive")

	require.NoError(t, c.SetQuantity(key, 0))
	_, ok := c.Line(key)
	assert.False(t, ok)
	assertTotal(t, "8.00", c)

	require.NoError(t, c.SetQuantity(other, -1))
	assert.Equal(t, 0, c.Len())
	assertTotal(t, "0", c)
}

func TestCart_QuantityCap(t *testing.T) {
	c := cart.New()

	_, err := c.Add(dumplings(math.MaxInt, "Mild"))
	require.ErrorIs(t, err, cart.ErrInvalidQuantity)
	assert.Zero(t, c.Len())

	key, err := c.Add(dumplings(cart.MaxQuantity, "Mild"))
	require.NoError(t, err)

	_, err = c.Add(dumplings(1, "Mild"))
	require.ErrorIs(t, err, cart.ErrInvalidQuantity)
	line, _ := c.Line(key)
	assert.Equal(t, cart.MaxQuantity, line.Quantity)

	require.ErrorIs(t, c.SetQuantity(key, cart.MaxQuantity+1), cart.ErrInvalidQuantity)
	require.ErrorIs(t, c.SetQuantity(key, math.MaxInt), cart.ErrInvalidQuantity)
	line, _ = c.Line(key)
	assert.Equal(t, cart.MaxQuantity, line.Quantity)

	for _, l := range c.Lines() {
		assert.True(t, l.Subtotal().IsPositive())
	}
	assertTotal(t, "7992.00", c)
}

func TestCart_ReplaceCustomizationsRejectsMergeOverCap(t *testing.T) {
	c := cart.New()
	mild, _ := c.Add(dumplings(cart.MaxQuantity-1, "Mild"))
	hot, _ := c.Add(dumplings(2, "Hot"))

	_, err := c.ReplaceCustomizations(hot, cart.Customizations{{Group: "Spice", Options: []string{"Mild"}}})
	require.ErrorIs(t, err, cart.ErrInvalidQuantity)

	require.Equal(t, 2, c.Len())
	line, _ := c.Line(mild)
	assert.Equal(t, cart.MaxQuantity-1, line.Quantity)
	line, _ = c.Line(hot)
	assert.Equal(t, 2, line.Quantity)
}

func TestCart_UnknownKeysAreNoOps(t *testing.T) {
	c := cart.New()
	key, _ := c.Add(dumplings(2, "Mild"))
	before := c.Lines()

	require.NoError(t, c.SetQuantity("unknown", 5))
	c.RemoveLine("unknown")
	c.SetNotes("unknown", "hello")
	newKey, err := c.ReplaceCustomizations("unknown", cart.Customizations{{Group: "Spice", Options: []string{"Hot"}}})

	require.NoError(t, err)
	assert.Empty(t, newKey)
	assert.Equal(t, before, c.Lines())

	c.RemoveLine(key)
	c.RemoveLine(key)
	assert.Equal(t, 0, c.Len())
}

func TestCart_SetNotes(t *testing.T) {
	c := cart.New()
	key, _ := c.Add(dumplings(2, "Mild"))

	c.SetNotes(key, "no cilantro")

	line, _ := c.Line(key)
	assert.Equal(t, "no cilantro", line.Notes)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, key, line.Key())
}

func TestCart_ReplaceCustomizationsMovesLine(t *testing.T) {
	c := cart.New()
	first, _ := c.Add(cart.Line{ItemID: "rice", Name: "Fried Rice", Price: price("10"), Quantity: 1})
	key, _ := c.Add(dumplings(2, "Mild"))
	last, _ := c.Add(cart.Line{ItemID: "tea", Name: "Tea", Price: price("2"), Quantity: 1})
	c.SetNotes(key, "well done")

	newKey, err := c.ReplaceCustomizations(key, cart.Customizations{{Group: "Spice", Options: []string{"Hot"}}})
	require.NoError(t, err)

	assert.NotEqual(t, key, newKey)
	_, ok := c.Line(key)
	assert.False(t, ok)

	line, ok := c.Line(newKey)
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "well done", line.Notes)
	assert.True(t, price("8.00").Equal(line.Price))
	assert.Equal(t, []string{"Hot"}, line.Customizations.Options("Spice"))
	assert.Equal(t, []cart.Key{first, newKey, last}, c.Keys(), "line keeps its position")
}

func TestCart_ReplaceCustomizationsMergesOnCollision(t *testing.T) {
	c := cart.New()
	existing, _ := c.Add(dumplings(3, "Hot"))
	c.SetNotes(existing, "keep me")
	moving, _ := c.Add(dumplings(2, "Mild"))
	c.SetNotes(moving, "drop me")

	newKey, err := c.ReplaceCustomizations(moving, cart.Customizations{{Group: "Spice", Options: []string{"Hot"}}})
	require.NoError(t, err)

	assert.Equal(t, existing, newKey)
	require.Equal(t, 1, c.Len())
	line, _ := c.Line(existing)
	assert.Equal(t, 5, line.Quantity)
	assert.Equal(t, "keep me", line.Notes)
	assertTotal(t, "40.00", c)
}

func TestCart_ReplaceCustomizationsSameSelection(t *testing.T) {
	c := cart.New()
	key, _ := c.Add(cart.Line{
		ItemID:   "noodles",
		Price:    price("12"),
		Quantity: 1,
		Customizations: cart.Customizations{
			{Group: "Spice", Options: []string{"Hot"}},
			{Group: "Toppings", Options: []string{"Egg", "Scallion"}},
		},
	})

	newKey, err := c.ReplaceCustomizations(key, cart.Customizations{
		{Group: "Toppings", Options: []string{"Scallion", "Egg"}},
		{Group: "Spice", Options: []string{"Hot"}},
	})
	require.NoError(t, err)

	assert.Equal(t, key, newKey)
	line, _ := c.Line(key)
	assert.Equal(t, []string{"Toppings: Scallion, Egg", "Spice: Hot"}, cart.FormatCustomizations(line.Customizations))
}

func TestCart_ReplaceCustomizationsRejectsInvalid(t *testing.T) {
	c := cart.New()
	key, _ := c.Add(dumplings(1, "Mild"))

	_, err := c.ReplaceCustomizations(key, cart.Customizations{{Group: "", Options: []string{"Hot"}}})

	require.ErrorIs(t, err, cart.ErrInvalidCustomization)
	_, ok := c.Line(key)
	assert.True(t, ok)
}

func TestCart_ReplaceWithNoSelectionBecomesPlain(t *testing.T) {
	c := cart.New()
	key, _ := c.Add(dumplings(1, "Mild"))

	newKey, err := c.ReplaceCustomizations(key, nil)
	require.NoError(t, err)

	assert.Equal(t, cart.Key("dumplings"), newKey)
	line, _ := c.Line(newKey)
	assert.False(t, line.Customizable())
}

func TestCart_LinesAreCopies(t *testing.T) {
	c := cart.New()
	key, _ := c.Add(dumplings(1, "Mild"))

	lines := c.Lines()
	lines[0].Price = price("0.01")
	lines[0].Customizations[0].Options[0] = "Hot"

	line, _ := c.Line(key)
	assert.True(t, price("8.00").Equal(line.Price))
	assert.Equal(t, []string{"Mild"}, line.Customizations.Options("Spice"))
}

func TestCart_Clear(t *testing.T) {
	c := cart.New()
	_, _ = c.Add(dumplings(1, "Mild"))
	_, _ = c.Add(dumplings(1, "Hot"))

	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Lines())
	assertTotal(t, "0", c)
}

func TestLine_Hints(t *testing.T) {
	hours := func(h int) *int { return &h }

	assert.True(t, cart.Line{AdvanceNoticeHours: hours(24)}.RequiresAdvanceNotice())
	assert.True(t, cart.Line{AdvanceNoticeHours: hours(48)}.RequiresAdvanceNotice())
	assert.False(t, cart.Line{AdvanceNoticeHours: hours(2)}.RequiresAdvanceNotice())
	assert.False(t, cart.Line{}.RequiresAdvanceNotice())

	assert.True(t, dumplings(1, "Mild").Customizable())
	assert.False(t, cart.Line{ItemID: "tea"}.Customizable())

	assert.True(t, price("24.00").Equal(dumplings(3, "Mild").Subtotal()))
}
