package entities

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooyer/cad/core"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"12.50", 12.5, true},
		{"R5", 5, true},
		{"%%c20", 20, true},
		{`\A1;1200`, 1200, true},
		{"-3.25 mm", -3.25, true},
		{".5", 0.5, true},
		{"长 30 宽 40", 30, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseValue(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "10.00", FormatValue(10))
	assert.Equal(t, "3.14", FormatValue(3.14159))
	assert.Equal(t, "0.00", FormatValue(-0.0))
	assert.Equal(t, "", FormatValue(1/zero()))
}

func zero() float64 { return 0 }

func TestDimension_Measure(t *testing.T) {
	linear := NewDimension(DimLinear, core.Pt(0, 0), core.Pt(30, 40))
	v, ok := linear.Measure()
	require.True(t, ok)
	assert.InDelta(t, 30, v, 1e-9)

	linear.Angle = 90
	v, _ = linear.Measure()
	assert.InDelta(t, 40, v, 1e-9)

	aligned := NewDimension(DimAligned, core.Pt(0, 0), core.Pt(30, 40))
	v, _ = aligned.Measure()
	assert.InDelta(t, 50, v, 1e-9)

	angular := NewDimension(DimAngular, core.Pt(0, 0), core.Pt(1, 0), core.Pt(0, 5))
	v, _ = angular.Measure()
	assert.InDelta(t, 90, v, 1e-9)

	radial := NewDimension(DimRadial, core.Pt(1, 1), core.Pt(4, 5))
	v, _ = radial.Measure()
	assert.InDelta(t, 5, v, 1e-9)

	diam := NewDimension(DimDiametrical, core.Pt(1, 1), core.Pt(4, 5))
	v, _ = diam.Measure()
	assert.InDelta(t, 10, v, 1e-9)

	chain := NewDimension(DimChain, core.Pt(0, 0), core.Pt(10, 0), core.Pt(25, 0))
	v, _ = chain.Measure()
	assert.InDelta(t, 25, v, 1e-9)

	_, ok = NewDimension(DimAngular, core.Pt(0, 0), core.Pt(0, 0), core.Pt(1, 1)).Measure()
	assert.False(t, ok, "零长度边")
	_, ok = NewDimension(DimLinear, core.Pt(0, 0)).Measure()
	assert.False(t, ok)
}

func TestDimension_SetValue(t *testing.T) {
	d := NewDimension(DimLinear, core.Pt(0, 0), core.Pt(10, 0))
	_, ok := d.Value()
	assert.False(t, ok)

	d.SetValue(12.346)
	assert.Equal(t, "12.35", d.Text)
	v, ok := d.Value()
	assert.True(t, ok)
	assert.Equal(t, 12.35, v)

	require.NoError(t, ApplyDimension(d, Fields{"value": 7.0}))
	assert.Equal(t, "7.00", d.Text)
	assert.ErrorIs(t, ApplyDimension(d, Fields{"value": "7"}), ErrFieldType)
}

func TestDimension_Parse(t *testing.T) {
	dxf := strings.Join([]string{
		"8", "BZ", "3", "iso-25", "70", "32",
		"10", "0", "20", "5",
		"11", "5", "21", "6",
		"13", "0", "23", "0",
		"14", "10", "24", "0",
		"50", "0",
		"1", "<>",
		"0", "ENDSEC",
	}, "\n") + "\n"

	scanner := core.NewScanner(strings.NewReader(dxf))
	require.True(t, scanner.Next())
	d := &Dimension{BaseEntity: NewBase("0")}
	require.NoError(t, d.Parse(scanner))

	assert.Equal(t, DimLinear, d.Kind)
	assert.Equal(t, "ISO-25", d.StyleName)
	assert.Equal(t, "BZ", d.LayerName)
	assert.Equal(t, "10.00", d.Text)
	assert.InDelta(t, 5, d.Offset, 1e-9)

	s, e, ok := d.ExtensionPoints()
	require.True(t, ok)
	assert.InDelta(t, 5, s.Y, 1e-9)
	assert.InDelta(t, 10, e.X, 1e-9)
	box := d.BBox()
	assert.Equal(t, 6.0, box.Max.Y)
}
